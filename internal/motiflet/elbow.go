package motiflet

import (
	"math"
	"slices"
)

// FindElbowPoints detects sharp increases in an extent curve indexed by k (or by the
// number of dimensions). A point i is an elbow when the slope after it, relative to the
// slope before it, exceeds alpha and the curve grows by more than deviation from i to
// i+1. Elbows are returned in ascending order; without any elbow the result is [2].
func FindElbowPoints(dists []float64, alpha, deviation float64) []int {
	peaks := make([]float64, len(dists))
	for i := 3; i < len(dists)-1; i++ {
		prev, cur, next := dists[i-1], dists[i], dists[i+1]
		if math.IsInf(prev, 0) || math.IsInf(cur, 0) || math.IsInf(next, 0) {
			continue
		}

		m1 := (next - cur) + 0.00001
		m2 := (cur - prev) + 0.00001
		// flat segments would otherwise produce huge ratios
		if prev == cur {
			m2 = 1.0
		}
		if cur > 0 && next/cur > deviation {
			peaks[i] = m1 / m2
		}
	}

	var elbows []int
	for {
		p := argmax(peaks)
		if p < 0 || peaks[p] <= alpha {
			break
		}
		elbows = append(elbows, p)
		for j := max(p-1, 0); j <= min(p+1, len(peaks)-1); j++ {
			peaks[j] = 0
		}
	}
	if len(elbows) == 0 {
		return []int{2}
	}
	slices.Sort(elbows)
	return slices.Compact(elbows)
}

func argmax(xs []float64) int {
	best := -1
	for i, v := range xs {
		if best < 0 || v > xs[best] {
			best = i
		}
	}
	return best
}

// FilterUnique drops elbows whose motiflet overlaps the motiflet of a larger elbow.
// candidates is indexed by elbow; nil entries never overlap.
func FilterUnique(elbows []int, candidates [][]int, m int) []int {
	out := make([]int, 0, len(elbows))
	for i, e := range elbows {
		unique := true
		for _, later := range elbows[i+1:] {
			a, b := candidateAt(candidates, e), candidateAt(candidates, later)
			if a == nil || b == nil {
				continue
			}
			if !isUnique(a, b, m) {
				unique = false
				break
			}
		}
		if unique {
			out = append(out, e)
		}
	}
	return out
}

func candidateAt(candidates [][]int, i int) []int {
	if i < 0 || i >= len(candidates) {
		return nil
	}
	return candidates[i]
}

// isUnique reports whether fewer than half of the smaller set's positions lie within
// m/4 of some position in the larger set.
func isUnique(smaller, larger []int, m int) bool {
	limit := float64(m) / 4
	half := float64(len(smaller)) / 2
	count := 0
	for _, a := range smaller {
		for _, b := range larger {
			if math.Abs(float64(a-b)) < limit {
				count++
				break
			}
		}
		if float64(count) >= half {
			return false
		}
	}
	return true
}
