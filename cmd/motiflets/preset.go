package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"motifapi/internal/dataset"
)

func newPresetCmd(g *globalFlags) *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "preset NAME",
		Short: "Run a named experiment from a presets file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			presets, err := dataset.LoadPresets(path)
			if err != nil {
				return err
			}
			p, err := presets.Get(args[0])
			if err != nil {
				return fmt.Errorf("%w (available: %s)", err, joinNames(presets.Names()))
			}
			s, err := p.Load()
			if err != nil {
				return err
			}
			return g.run(cmd, s, p.Params)
		},
	}
	cmd.PersistentFlags().StringVar(&path, "presets", "presets.yaml", "YAML file with named presets")

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List the presets in the presets file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			presets, err := dataset.LoadPresets(path)
			if err != nil {
				return err
			}
			for _, name := range presets.Names() {
				p := presets[name]
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", name, p.Mode, p.File)
			}
			return nil
		},
	})
	return cmd
}
