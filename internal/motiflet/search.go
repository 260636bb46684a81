package motiflet

import (
	"cmp"
	"math"
	"slices"
)

// Motiflet is a set of K subsequences of a common length that are mutually close in
// the given dimensions. Extent is the largest pairwise distance within the set.
type Motiflet struct {
	K          int      `json:"k"`
	Positions  []int    `json:"positions"`
	Dimensions []int    `json:"dimensions"`
	Extent     Distance `json:"extent"`
}

// Scaled returns a copy of m with every position multiplied by step.
func (m Motiflet) Scaled(step int) Motiflet {
	if step <= 1 {
		return m
	}
	pos := make([]int, len(m.Positions))
	for i, p := range m.Positions {
		pos[i] = p * step
	}
	m.Positions = pos
	return m
}

// RelevantDimensions picks, for every subsequence, the nDims dimensions in which its
// k-th nearest neighbor is closest. A missing k-th neighbor ranks last.
func RelevantDimensions(dm *DistanceMatrix, k, nDims int) [][]int {
	nDims = min(max(nDims, 1), dm.Dims)
	out := make([][]int, dm.N)
	kth := make([]float64, dm.Dims)

	for order := 0; order < dm.N; order++ {
		for d := 0; d < dm.Dims; d++ {
			kth[d] = math.Inf(1)
			if k >= 1 && k <= dm.K {
				if last := dm.Neighbors(d, order)[k-1]; last >= 0 {
					kth[d] = dm.At(d, order, int(last))
				}
			}
		}
		dims := make([]int, dm.Dims)
		for d := range dims {
			dims[d] = d
		}
		slices.SortStableFunc(dims, func(a, b int) int {
			return cmp.Compare(kth[a], kth[b])
		})
		out[order] = dims[:nDims]
	}
	return out
}

// PairwiseExtent returns the largest mean distance, averaged over dims, between any two
// positions. It returns +Inf for incomplete sets or as soon as upperBound is exceeded.
func PairwiseExtent(dm *DistanceMatrix, positions []int, dims []int, upperBound float64) float64 {
	for _, p := range positions {
		if p < 0 {
			return math.Inf(1)
		}
	}

	var extent float64
	for a := 0; a < len(positions)-1; a++ {
		for b := a + 1; b < len(positions); b++ {
			extent = max(extent, dm.meanAt(dims, positions[a], positions[b]))
			if extent > upperBound {
				return math.Inf(1)
			}
		}
	}
	return extent
}

// ApproximateMotiflet searches the k-NN sets of every subsequence, in each of its
// relevant dimensions, for the set with the smallest extent not above upperBound.
// The boolean is false when no candidate qualifies.
func ApproximateMotiflet(dm *DistanceMatrix, k int, bestDims [][]int, upperBound float64) (Motiflet, bool) {
	if k < 2 || k > dm.K {
		return Motiflet{}, false
	}

	best := upperBound
	var (
		candidate []int
		candDims  []int
		found     bool
	)
	positions := make([]int, k)

	for order := 0; order < dm.N; order++ {
		dims := bestDims[order]
		for _, d := range dims {
			nn := dm.Neighbors(d, order)
			if nn[k-1] < 0 {
				continue
			}
			if dm.meanAt(dims, order, int(nn[k-1])) > best {
				continue
			}
			for r := 0; r < k; r++ {
				positions[r] = int(nn[r])
			}
			extent := PairwiseExtent(dm, positions, dims, best)
			if extent <= best {
				best = extent
				candidate = append(candidate[:0], positions...)
				candDims = dims
				found = true
			}
		}
	}
	if !found {
		return Motiflet{}, false
	}

	sorted := slices.Clone(candidate)
	slices.Sort(sorted)
	return Motiflet{
		K:          k,
		Positions:  sorted,
		Dimensions: slices.Clone(candDims),
		Extent:     Distance(best),
	}, true
}
