package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"motifapi/internal/dataset"
	"motifapi/internal/discovery"
	applog "motifapi/internal/log"
	"motifapi/internal/motiflet"
)

// globalFlags are shared by every subcommand.
type globalFlags struct {
	logLevel string
	output   string
	compact  bool
	resample int
}

// searchFlags describe the input series and the search options.
type searchFlags struct {
	file           string
	layout         string
	channels       []string
	slack          float64
	elbowDeviation float64
	nDims          int
	noFilter       bool
	noZNormalize   bool
	workers        int
}

func (f *searchFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVarP(&f.file, "file", "f", "", "CSV file with the time series")
	fl.StringVar(&f.layout, "layout", string(dataset.LayoutColumns), "CSV layout: columns or rows")
	fl.StringSliceVarP(&f.channels, "channels", "c", nil, "channels to use, by label (default all)")
	fl.Float64Var(&f.slack, "slack", motiflet.DefaultSlack, "exclusion zone as a fraction of the motif length")
	fl.Float64Var(&f.elbowDeviation, "elbow-deviation", motiflet.DefaultElbowDeviation, "minimal relative extent increase at an elbow")
	fl.IntVar(&f.nDims, "n-dims", 0, "dimensions a motiflet spans (0 = all)")
	fl.BoolVar(&f.noFilter, "no-filter", false, "keep overlapping elbow motiflets")
	fl.BoolVar(&f.noZNormalize, "no-znormalize", false, "search the raw values instead of z-scored channels")
	fl.IntVar(&f.workers, "workers", 0, "goroutines for the distance matrix (0 = GOMAXPROCS)")
	_ = cmd.MarkFlagRequired("file")
}

func (f *searchFlags) options() motiflet.Options {
	return motiflet.Options{
		Slack:          f.slack,
		ElbowDeviation: f.elbowDeviation,
		NDims:          f.nDims,
		NoFilter:       f.noFilter,
		Workers:        f.workers,
	}
}

func (f *searchFlags) load() (motiflet.Series, error) {
	layout, err := dataset.ParseLayout(f.layout)
	if err != nil {
		return motiflet.Series{}, err
	}
	fh, err := os.Open(f.file)
	if err != nil {
		return motiflet.Series{}, err
	}
	defer fh.Close()
	s, err := dataset.Parse(fh, layout)
	if err != nil {
		return motiflet.Series{}, fmt.Errorf("%s: %w", f.file, err)
	}
	return s, nil
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}
	root := &cobra.Command{
		Use:   "motiflets",
		Short: "Multivariate k-Motiflet discovery",
		Long: `motiflets finds k-Motiflets in multivariate time series read from CSV files.

It can learn the motif set size k (k-elbow), the number of dimensions a motif
spans (dims) or the motif length (length), or run named presets from a YAML file.
Results are written as JSON.`,
		SilenceUsage: true,
	}
	pf := root.PersistentFlags()
	pf.StringVar(&g.logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	pf.StringVarP(&g.output, "output", "o", "", "write the JSON result to this file instead of stdout")
	pf.BoolVar(&g.compact, "compact", false, "write compact JSON")
	pf.IntVar(&g.resample, "resample", 10000, "thin longer series to about this many points (0 = never)")

	root.AddCommand(
		newKElbowCmd(g),
		newDimsCmd(g),
		newLengthCmd(g),
		newPresetCmd(g),
	)
	return root
}

func (g *globalFlags) logger(cmd *cobra.Command) *zerolog.Logger {
	l := applog.New(applog.Config{Level: g.logLevel, Output: cmd.ErrOrStderr(), Service: "motiflets"})
	return &l
}

// run executes p on s and writes the result.
func (g *globalFlags) run(cmd *cobra.Command, s motiflet.Series, p discovery.Params) error {
	logger := g.logger(cmd)
	logger.Info().
		Str("mode", string(p.Mode)).
		Int("dimensions", s.Dims()).
		Int("length", s.Len()).
		Strs("channels", p.Channels).
		Msg("discovery started")

	res, err := discovery.Run(cmd.Context(), s, p, discovery.RunConfig{
		Logger: logger,
		Limits: discovery.Limits{MaxPoints: g.resample},
	})
	if err != nil {
		return err
	}

	logger.Info().
		Int("best_length", res.BestLength()).
		Ints("elbows", res.Elbows()).
		Int("resample_factor", res.Resample).
		Msg("discovery finished")
	return g.write(cmd, res)
}

func (g *globalFlags) write(cmd *cobra.Command, v any) error {
	var w io.Writer = cmd.OutOrStdout()
	if g.output != "" {
		fh, err := os.Create(g.output)
		if err != nil {
			return err
		}
		defer fh.Close()
		w = fh
	}
	enc := json.NewEncoder(w)
	if !g.compact {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}

func joinNames(names []string) string {
	if len(names) == 0 {
		return "(none)"
	}
	return strings.Join(names, ", ")
}
