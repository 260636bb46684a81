package motiflet

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeries_Validate(t *testing.T) {
	tests := []struct {
		name    string
		series  Series
		wantErr error
	}{
		{name: "valid", series: NewSeries([][]float64{{1, 2}, {3, 4}}, nil)},
		{name: "empty", series: Series{}, wantErr: ErrEmptySeries},
		{name: "empty row", series: NewSeries([][]float64{{}}, nil), wantErr: ErrEmptySeries},
		{name: "ragged", series: NewSeries([][]float64{{1, 2}, {3}}, nil), wantErr: ErrRaggedSeries},
		{name: "nan", series: NewSeries([][]float64{{1, math.NaN()}}, nil), wantErr: ErrNonFinite},
		{name: "inf", series: NewSeries([][]float64{{math.Inf(-1), 1}}, nil), wantErr: ErrNonFinite},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.series.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNewSeries_DefaultLabels(t *testing.T) {
	s := NewSeries([][]float64{{1}, {2}, {3}}, []string{"only-one"})
	assert.Equal(t, []string{"0", "1", "2"}, s.Labels)
	assert.Equal(t, 3, s.Dims())
	assert.Equal(t, 1, s.Len())
}

func TestSeries_Select(t *testing.T) {
	s := NewSeries([][]float64{{1}, {2}, {3}}, []string{"X-Acc", "Y-Acc", "Pressure"})

	got, err := s.Select([]string{"Pressure", "0"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Pressure", "X-Acc"}, got.Labels)
	assert.Equal(t, [][]float64{{3}, {1}}, got.Values)

	_, err = s.Select([]string{"Z-Acc"})
	assert.ErrorIs(t, err, ErrUnknownLabel)

	_, err = s.Select([]string{"7"})
	assert.ErrorIs(t, err, ErrUnknownLabel)

	same, err := s.Select(nil)
	require.NoError(t, err)
	assert.Equal(t, s, same)
}

func TestSeries_SubsampleAndResample(t *testing.T) {
	s := NewSeries([][]float64{{0, 1, 2, 3, 4, 5, 6}}, nil)

	assert.Equal(t, []float64{0, 2, 4, 6}, s.Subsample(2).Values[0])
	assert.Equal(t, s, s.Subsample(1))

	r, factor := s.Resample(3)
	assert.Equal(t, 2, factor)
	assert.Equal(t, []float64{0, 2, 4, 6}, r.Values[0])

	r, factor = s.Resample(100)
	assert.Equal(t, 1, factor)
	assert.Equal(t, s, r)
}

func TestSeries_ZNormalize(t *testing.T) {
	s := NewSeries([][]float64{{1, 2, 3, 4}, {5, 5, 5, 5}}, nil)
	z := s.ZNormalize()

	var mean, sq float64
	for _, v := range z.Values[0] {
		mean += v
		sq += v * v
	}
	assert.InDelta(t, 0, mean/4, 1e-12)
	assert.InDelta(t, 1, sq/4, 1e-12)
	assert.Equal(t, []float64{0, 0, 0, 0}, z.Values[1])
	// the input is left untouched
	assert.Equal(t, []float64{1, 2, 3, 4}, s.Values[0])
}
