package motiflet

import (
	"math"

	"gonum.org/v1/gonum/dsp/fourier"
)

// minStd is the smallest window standard deviation used as-is. Flatter windows are
// treated as having unit deviation so near-constant segments do not blow up distances.
const minStd = 0.1

// slidingMeanStd returns the n-m+1 window means and standard deviations of ts in O(n).
func slidingMeanStd(ts []float64, m int) (means, stds []float64) {
	n := len(ts) - m + 1
	means = make([]float64, n)
	stds = make([]float64, n)

	sum := make([]float64, len(ts)+1)
	sumSq := make([]float64, len(ts)+1)
	for i, v := range ts {
		sum[i+1] = sum[i] + v
		sumSq[i+1] = sumSq[i] + v*v
	}

	fm := float64(m)
	for i := 0; i < n; i++ {
		seg := sum[i+m] - sum[i]
		segSq := sumSq[i+m] - sumSq[i]
		mean := seg / fm
		variance := segSq/fm - mean*mean
		if variance < 0 {
			variance = 0
		}
		std := math.Sqrt(variance)
		if std < minStd {
			std = 1
		}
		means[i] = mean
		stds[i] = std
	}
	return means, stds
}

// slidingDotProduct returns the dot product of query with every len(query) window of ts,
// computed as an FFT cross-correlation.
func slidingDotProduct(query, ts []float64) []float64 {
	m, n := len(query), len(ts)
	if m == 0 || m > n {
		return nil
	}

	rev := make([]float64, n)
	for i := 0; i < m; i++ {
		rev[i] = query[m-1-i]
	}

	fft := fourier.NewFFT(n)
	a := fft.Coefficients(nil, ts)
	b := fft.Coefficients(nil, rev)
	for i := range a {
		a[i] *= b[i]
	}
	conv := fft.Sequence(nil, a)

	out := make([]float64, n-m+1)
	scale := float64(n)
	for j := range out {
		out[j] = conv[j+m-1] / scale
	}
	return out
}
