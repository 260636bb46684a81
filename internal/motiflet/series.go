package motiflet

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"gonum.org/v1/gonum/stat"
)

var (
	ErrEmptySeries   = errors.New("series is empty")
	ErrRaggedSeries  = errors.New("series dimensions have different lengths")
	ErrNonFinite     = errors.New("series contains NaN or Inf values")
	ErrInvalidLength = errors.New("invalid motif length")
	ErrInvalidK      = errors.New("invalid k")
	ErrUnknownLabel  = errors.New("unknown dimension label")
)

// Series is a multivariate time series stored dimension-major: Values[d][t].
type Series struct {
	Labels []string    `json:"labels"`
	Values [][]float64 `json:"values"`
}

// NewSeries builds a Series and fills in default labels ("0", "1", ...) when none are given.
func NewSeries(values [][]float64, labels []string) Series {
	if len(labels) != len(values) {
		labels = make([]string, len(values))
		for i := range labels {
			labels[i] = strconv.Itoa(i)
		}
	}
	return Series{Labels: labels, Values: values}
}

// Dims returns the number of dimensions.
func (s Series) Dims() int { return len(s.Values) }

// Len returns the number of observations per dimension.
func (s Series) Len() int {
	if len(s.Values) == 0 {
		return 0
	}
	return len(s.Values[0])
}

// Validate checks that the series is non-empty, rectangular and finite.
func (s Series) Validate() error {
	if len(s.Values) == 0 || len(s.Values[0]) == 0 {
		return ErrEmptySeries
	}
	n := len(s.Values[0])
	for d, row := range s.Values {
		if len(row) != n {
			return fmt.Errorf("dimension %d has %d points, want %d: %w", d, len(row), n, ErrRaggedSeries)
		}
		for t, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("dimension %d at %d: %w", d, t, ErrNonFinite)
			}
		}
	}
	return nil
}

// ZNormalize returns a copy where every dimension has zero mean and unit population variance.
// Constant dimensions are only centered.
func (s Series) ZNormalize() Series {
	out := make([][]float64, len(s.Values))
	for d, row := range s.Values {
		mean, std := stat.PopMeanStdDev(row, nil)
		if std == 0 || math.IsNaN(std) {
			std = 1
		}
		z := make([]float64, len(row))
		for t, v := range row {
			z[t] = (v - mean) / std
		}
		out[d] = z
	}
	return Series{Labels: append([]string(nil), s.Labels...), Values: out}
}

// Subsample keeps every step-th observation. A step <= 1 returns s unchanged.
func (s Series) Subsample(step int) Series {
	if step <= 1 {
		return s
	}
	out := make([][]float64, len(s.Values))
	for d, row := range s.Values {
		sub := make([]float64, 0, len(row)/step+1)
		for t := 0; t < len(row); t += step {
			sub = append(sub, row[t])
		}
		out[d] = sub
	}
	return Series{Labels: s.Labels, Values: out}
}

// Resample shrinks the series to roughly target points by skipping observations.
// It returns the resampled series and the factor that was applied.
func (s Series) Resample(target int) (Series, int) {
	n := s.Len()
	if target <= 0 || n <= target {
		return s, 1
	}
	factor := n / target
	return s.Subsample(factor), factor
}

// Select returns the dimensions named by labels, in the given order.
// Labels that parse as integers and do not match a label are used as indices.
func (s Series) Select(labels []string) (Series, error) {
	if len(labels) == 0 {
		return s, nil
	}
	index := make(map[string]int, len(s.Labels))
	for i, l := range s.Labels {
		index[l] = i
	}

	out := Series{Labels: make([]string, 0, len(labels)), Values: make([][]float64, 0, len(labels))}
	for _, l := range labels {
		i, ok := index[l]
		if !ok {
			n, err := strconv.Atoi(l)
			if err != nil || n < 0 || n >= len(s.Values) {
				return Series{}, fmt.Errorf("%q: %w", l, ErrUnknownLabel)
			}
			i = n
		}
		out.Labels = append(out.Labels, s.Labels[i])
		out.Values = append(out.Values, s.Values[i])
	}
	return out, nil
}
