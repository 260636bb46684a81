package main

import (
	"github.com/spf13/cobra"

	"motifapi/internal/discovery"
)

func newKElbowCmd(g *globalFlags) *cobra.Command {
	sf := &searchFlags{}
	var kMax, length int
	cmd := &cobra.Command{
		Use:   "k-elbow",
		Short: "Find k-Motiflets for k in [2, k-max] at a fixed motif length",
		Example: `  motiflets k-elbow -f walk.csv --k-max 10 --length 50
  motiflets k-elbow -f eeg.csv -c C3,C4,Cz --k-max 8 --length 125 --n-dims 2`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := sf.load()
			if err != nil {
				return err
			}
			return g.run(cmd, s, discovery.Params{
				Mode:         discovery.ModeKElbow,
				Channels:     sf.channels,
				KMax:         kMax,
				MotifLength:  length,
				NoZNormalize: sf.noZNormalize,
				Options:      sf.options(),
			})
		},
	}
	sf.register(cmd)
	cmd.Flags().IntVar(&kMax, "k-max", 10, "largest motif set size")
	cmd.Flags().IntVarP(&length, "length", "l", 0, "motif length")
	_ = cmd.MarkFlagRequired("length")
	return cmd
}

func newDimsCmd(g *globalFlags) *cobra.Command {
	sf := &searchFlags{}
	var k, length int
	cmd := &cobra.Command{
		Use:   "dims",
		Short: "Find the k-Motiflet for every number of dimensions at fixed k and length",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := sf.load()
			if err != nil {
				return err
			}
			return g.run(cmd, s, discovery.Params{
				Mode:         discovery.ModeDimsElbow,
				Channels:     sf.channels,
				K:            k,
				MotifLength:  length,
				NoZNormalize: sf.noZNormalize,
				Options:      sf.options(),
			})
		},
	}
	sf.register(cmd)
	cmd.Flags().IntVar(&k, "k", 5, "motif set size")
	cmd.Flags().IntVarP(&length, "length", "l", 0, "motif length")
	_ = cmd.MarkFlagRequired("length")
	return cmd
}

func newLengthCmd(g *globalFlags) *cobra.Command {
	sf := &searchFlags{}
	var kMax, subsample int
	var lr discovery.LengthRange
	cmd := &cobra.Command{
		Use:   "length",
		Short: "Rank motif lengths in [min, max) by the area under their elbow function",
		Example: `  motiflets length -f walk.csv --k-max 10 --min 20 --max 100 --step 5`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := sf.load()
			if err != nil {
				return err
			}
			opts := sf.options()
			opts.Subsample = subsample
			return g.run(cmd, s, discovery.Params{
				Mode:         discovery.ModeMotifLength,
				Channels:     sf.channels,
				KMax:         kMax,
				Lengths:      &lr,
				NoZNormalize: sf.noZNormalize,
				Options:      opts,
			})
		},
	}
	sf.register(cmd)
	fl := cmd.Flags()
	fl.IntVar(&kMax, "k-max", 10, "largest motif set size")
	fl.IntVar(&lr.Min, "min", 0, "smallest motif length")
	fl.IntVar(&lr.Max, "max", 0, "motif length upper bound (exclusive)")
	fl.IntVar(&lr.Step, "step", 1, "motif length step")
	fl.IntVar(&subsample, "subsample", 1, "keep every n-th observation while searching")
	_ = cmd.MarkFlagRequired("min")
	_ = cmd.MarkFlagRequired("max")
	return cmd
}
