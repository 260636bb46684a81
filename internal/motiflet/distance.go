package motiflet

import (
	"cmp"
	"context"
	"fmt"
	"math"
	"slices"

	"golang.org/x/sync/errgroup"
)

// DistanceMatrix holds, per dimension, the z-normalized squared Euclidean distances
// between all pairs of subsequences of length M and the K nearest neighbors of each
// subsequence.
type DistanceMatrix struct {
	Dims int
	N    int
	M    int
	K    int

	dist [][]float32 // dist[d][i*N+j]
	knn  [][]int32   // knn[d][i*K+r], -1 when fewer than K neighbors exist
}

// At returns the distance between subsequences i and j in dimension d.
func (dm *DistanceMatrix) At(d, i, j int) float64 {
	return float64(dm.dist[d][i*dm.N+j])
}

// Row returns the distance row of subsequence i in dimension d. The slice aliases the matrix.
func (dm *DistanceMatrix) Row(d, i int) []float32 {
	return dm.dist[d][i*dm.N : (i+1)*dm.N]
}

// Neighbors returns the K nearest neighbor offsets of subsequence i in dimension d.
// The subsequence itself is always its own first neighbor.
func (dm *DistanceMatrix) Neighbors(d, i int) []int32 {
	return dm.knn[d][i*dm.K : (i+1)*dm.K]
}

// meanAt averages the distance between i and j over dims.
func (dm *DistanceMatrix) meanAt(dims []int, i, j int) float64 {
	var sum float64
	for _, d := range dims {
		sum += dm.At(d, i, j)
	}
	return sum / float64(len(dims))
}

// ComputeDistanceMatrix computes all pairwise subsequence distances for motif length m
// and the k nearest non-trivial neighbors of every subsequence, per dimension.
//
// Rows are split into bins computed concurrently. Each bin seeds its first row with an
// FFT-based sliding dot product and derives the following rows in O(n) each.
func ComputeDistanceMatrix(ctx context.Context, s Series, m, k int, opts Options) (*DistanceMatrix, error) {
	opts = opts.withDefaults()
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if m < 3 || m >= s.Len() {
		return nil, fmt.Errorf("motif length %d for series of length %d: %w", m, s.Len(), ErrInvalidLength)
	}
	if k < 1 {
		return nil, fmt.Errorf("k=%d: %w", k, ErrInvalidK)
	}

	n := s.Len() - m + 1
	dm := &DistanceMatrix{
		Dims: s.Dims(),
		N:    n,
		M:    m,
		K:    k,
		dist: make([][]float32, s.Dims()),
		knn:  make([][]int32, s.Dims()),
	}
	for d := range dm.dist {
		dm.dist[d] = make([]float32, n*n)
		dm.knn[d] = make([]int32, n*k)
	}

	workers := min(opts.Workers, n)
	binSize := (n + workers - 1) / workers

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for start := 0; start < n; start += binSize {
		start, end := start, min(start+binSize, n)
		g.Go(func() error {
			return dm.fillBin(gctx, s, start, end, opts)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	opts.Logger.Debug().
		Int("dims", dm.Dims).
		Int("subsequences", n).
		Int("motif_length", m).
		Int("k", k).
		Msg("distance matrix computed")
	return dm, nil
}

func (dm *DistanceMatrix) fillBin(ctx context.Context, s Series, start, end int, opts Options) error {
	m, n := dm.M, dm.N
	halve := opts.exclusion(m)

	for d, ts := range s.Values {
		means, stds := slidingMeanStd(ts, m)
		first := slidingDotProduct(ts[:m], ts)

		var dot []float64
		for order := start; order < end; order++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			if order == start {
				dot = slidingDotProduct(ts[order:order+m], ts)
			} else {
				head, tail := ts[order+m-1], ts[order-1]
				for j := n - 1; j >= 1; j-- {
					dot[j] = dot[j-1] + head*ts[j+m-1] - tail*ts[j-1]
				}
				dot[0] = first[order]
			}
			fillDistanceRow(dm.Row(d, order), dot, means, stds, order, m, halve)
		}
	}

	for d := 0; d < dm.Dims; d++ {
		for order := start; order < end; order++ {
			nn := argKNN(dm.Row(d, order), dm.K, halve)
			dst := dm.Neighbors(d, order)
			copy(dst, nn)
			for r := len(nn); r < len(dst); r++ {
				dst[r] = -1
			}
		}
	}
	return nil
}

func fillDistanceRow(row []float32, dot, means, stds []float64, order, m, halve int) {
	fm := float64(m)
	for j := range row {
		v := 2 * fm * (1 - (dot[j]-fm*means[j]*means[order])/(fm*stds[j]*stds[order]))
		if v < 0 {
			v = 0
		}
		row[j] = float32(v)
	}

	inf := float32(math.Inf(1))
	for j := max(0, order-halve); j < min(order+halve, len(row)); j++ {
		row[j] = inf
	}
	row[order] = 0
}

// argKNN greedily picks up to k offsets with the smallest finite distances in row,
// excluding [p-halve, p+halve) around every pick p.
func argKNN(row []float32, k, halve int) []int32 {
	order := make([]int, len(row))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		return cmp.Compare(sortKey(row[a]), sortKey(row[b]))
	})

	excluded := make([]bool, len(row))
	out := make([]int32, 0, k)
	for _, p := range order {
		v := float64(row[p])
		if math.IsInf(v, 1) || math.IsNaN(v) {
			break
		}
		if excluded[p] {
			continue
		}
		out = append(out, int32(p))
		if len(out) == k {
			break
		}
		excluded[p] = true
		for j := max(0, p-halve); j < min(p+halve, len(row)); j++ {
			excluded[j] = true
		}
	}
	return out
}

func sortKey(v float32) float64 {
	if math.IsNaN(float64(v)) {
		return math.Inf(1)
	}
	return float64(v)
}
