package motiflet

import (
	"runtime"

	"github.com/rs/zerolog"
)

// Default search parameters.
const (
	DefaultSlack          = 0.5
	DefaultElbowDeviation = 1.0
	DefaultAlpha          = 2.0
)

// Options tunes a motiflet search. The zero value is usable; see withDefaults.
type Options struct {
	// Slack is the exclusion zone around each subsequence, as a fraction of the motif
	// length. Zero selects DefaultSlack; an exclusion zone cannot be empty.
	Slack float64 `json:"slack" yaml:"slack"`
	// ElbowDeviation is the minimal relative increase of the extent from k to k+1 for an elbow.
	ElbowDeviation float64 `json:"elbow_deviation" yaml:"elbow_deviation"`
	// Alpha is the slope ratio an elbow must exceed.
	Alpha float64 `json:"alpha" yaml:"alpha"`
	// NDims is the number of dimensions a motiflet spans. 0 means all dimensions.
	NDims int `json:"n_dims" yaml:"n_dims"`
	// NoFilter keeps overlapping elbow motiflets.
	NoFilter bool `json:"no_filter" yaml:"no_filter"`
	// Subsample speeds up motif length search by skipping observations.
	Subsample int `json:"subsample" yaml:"subsample"`
	// Workers bounds the goroutines used for the distance matrix.
	Workers int `json:"workers" yaml:"workers"`

	Logger *zerolog.Logger `json:"-" yaml:"-"`
}

func (o Options) withDefaults() Options {
	if o.Slack <= 0 {
		o.Slack = DefaultSlack
	}
	if o.ElbowDeviation <= 0 {
		o.ElbowDeviation = DefaultElbowDeviation
	}
	if o.Alpha <= 0 {
		o.Alpha = DefaultAlpha
	}
	if o.Subsample < 1 {
		o.Subsample = 1
	}
	if o.Workers <= 0 {
		o.Workers = runtime.GOMAXPROCS(0)
	}
	if o.Logger == nil {
		nop := zerolog.Nop()
		o.Logger = &nop
	}
	return o
}

// exclusion is the half width of the trivial-match zone for motif length m.
func (o Options) exclusion(m int) int {
	return int(float64(m) * o.Slack)
}
