package motiflet

import (
	"context"
	"fmt"
	"math"
)

// SearchKElbow computes the k-Motiflets for k in [2, kMax] at motif length m and finds
// the characteristic k's as elbows of the extent curve.
//
// kMax is capped by how many non-overlapping subsequences fit into the series, but
// never below 3. The search runs from the largest k down so that each extent bounds
// the next, smaller one.
func SearchKElbow(ctx context.Context, s Series, m, kMax int, opts Options) (*KElbowResult, error) {
	opts = opts.withDefaults()
	if kMax < 2 {
		return nil, fmt.Errorf("k_max=%d: %w", kMax, ErrInvalidK)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if m < 3 || m >= s.Len() {
		return nil, fmt.Errorf("motif length %d for series of length %d: %w", m, s.Len(), ErrInvalidLength)
	}

	n := s.Len() - m + 1
	kMax = max(3, min(int(float64(n)/(float64(m)*opts.Slack)), kMax))
	nDims := dimsToUse(opts.NDims, s.Dims())

	dm, err := ComputeDistanceMatrix(ctx, s, m, kMax, opts)
	if err != nil {
		return nil, err
	}

	extents := make([]float64, kMax+1)
	motiflets := make([]*Motiflet, kMax+1)
	upper := math.Inf(1)
	for k := kMax; k >= 2; k-- {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		best := RelevantDimensions(dm, k, nDims)
		mot, ok := ApproximateMotiflet(dm, k, best, upper)
		extents[k] = upper
		if ok {
			extents[k] = float64(mot.Extent)
			motiflets[k] = &mot
			upper = min(upper, float64(mot.Extent))
		}
		opts.Logger.Debug().Int("k", k).Float64("extent", extents[k]).Msg("k-motiflet searched")
	}
	extents[0], extents[1] = extents[2], extents[2]

	elbows := FindElbowPoints(extents, opts.Alpha, opts.ElbowDeviation)
	if !opts.NoFilter {
		elbows = FilterUnique(elbows, positionsByIndex(motiflets), m)
	}

	return &KElbowResult{
		MotifLength: m,
		KMax:        kMax,
		ElbowCurve: ElbowCurve{
			Extents:   toDistances(extents),
			Motiflets: motiflets,
			Elbows:    elbows,
		},
	}, nil
}

// SearchDimsElbow computes the k-Motiflet at motif length m for every number of
// dimensions from opts.NDims (or all) down to 1 and finds elbows over that axis.
func SearchDimsElbow(ctx context.Context, s Series, m, k int, opts Options) (*DimsElbowResult, error) {
	opts = opts.withDefaults()
	if k < 2 {
		return nil, fmt.Errorf("k=%d: %w", k, ErrInvalidK)
	}

	dm, err := ComputeDistanceMatrix(ctx, s, m, k, opts)
	if err != nil {
		return nil, err
	}
	useDims := dimsToUse(opts.NDims, s.Dims())

	extents := make([]float64, useDims+1)
	motiflets := make([]*Motiflet, useDims+1)
	for dims := useDims; dims >= 1; dims-- {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		best := RelevantDimensions(dm, k, dims)
		mot, ok := ApproximateMotiflet(dm, k, best, math.Inf(1))
		extents[dims] = math.Inf(1)
		if ok {
			extents[dims] = float64(mot.Extent)
			motiflets[dims] = &mot
		}
		opts.Logger.Debug().Int("dims", dims).Float64("extent", extents[dims]).Msg("dimension count searched")
	}
	extents[0] = extents[1]

	elbows := FindElbowPoints(extents, opts.Alpha, opts.ElbowDeviation)
	if useDims < 2 {
		elbows = []int{useDims}
	}
	if !opts.NoFilter {
		elbows = FilterUnique(elbows, positionsByIndex(motiflets), m)
	}

	return &DimsElbowResult{
		MotifLength: m,
		K:           k,
		ElbowCurve: ElbowCurve{
			Extents:   toDistances(extents),
			Motiflets: motiflets,
			Elbows:    elbows,
		},
	}, nil
}

// FindMotifLength scores every candidate motif length by the area under its normalized
// elbow function (AU-EF) and returns the lowest-scoring length along with all local
// minima. opts.Subsample thins the series for the scan; the best length is then
// searched again on the full series.
func FindMotifLength(ctx context.Context, s Series, kMax int, lengths []int, opts Options) (*LengthResult, error) {
	opts = opts.withDefaults()
	if len(lengths) == 0 {
		return nil, fmt.Errorf("no motif lengths given: %w", ErrInvalidLength)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}

	step := opts.Subsample
	data := s.Subsample(step)

	entries := make([]LengthEntry, len(lengths))
	scores := make([]float64, len(lengths))
	for i, m := range lengths {
		entries[i] = LengthEntry{MotifLength: m, AUEF: Distance(math.Inf(1))}
		scores[i] = math.Inf(1)

		// the winner is searched again at full resolution, so m must fit s too
		ms := m / step
		if ms < 3 || ms >= data.Len() || m >= s.Len() {
			continue
		}
		res, err := SearchKElbow(ctx, data, ms, kMax, opts)
		if err != nil {
			return nil, fmt.Errorf("motif length %d: %w", m, err)
		}

		score := areaUnderElbow(res.Extents)
		elbows := res.Elbows
		motiflets := res.ElbowMotiflets()
		if len(elbows) == 0 || len(motiflets) == 0 {
			// only the pair motif exists
			elbows = []int{2}
			motiflets = nil
			if res.Motiflets[2] != nil {
				motiflets = []Motiflet{*res.Motiflets[2]}
			}
			score = 1.0
		}
		for j := range motiflets {
			motiflets[j] = motiflets[j].Scaled(step)
		}

		entries[i].AUEF = Distance(score)
		entries[i].Elbows = elbows
		entries[i].Motiflets = motiflets
		scores[i] = score

		opts.Logger.Debug().Int("motif_length", m).Float64("au_ef", score).Ints("elbows", elbows).Msg("motif length scored")
	}

	bestIdx := -1
	for i, v := range scores {
		if !math.IsInf(v, 1) && (bestIdx < 0 || v < scores[bestIdx]) {
			bestIdx = i
		}
	}
	if bestIdx < 0 {
		return nil, fmt.Errorf("no candidate length fits a series of length %d: %w", s.Len(), ErrInvalidLength)
	}

	minima := make([]int, 0)
	for _, i := range localMinima(scores, step) {
		minima = append(minima, lengths[i])
	}

	best, err := SearchKElbow(ctx, s, lengths[bestIdx], kMax, opts)
	if err != nil {
		return nil, fmt.Errorf("best motif length %d: %w", lengths[bestIdx], err)
	}

	return &LengthResult{
		KMax:       kMax,
		Subsample:  step,
		Lengths:    entries,
		BestLength: lengths[bestIdx],
		Minima:     minima,
		Best:       best,
	}, nil
}

// areaUnderElbow min-max normalizes the finite extents and returns their mean.
// A flat curve scores 1.
func areaUnderElbow(extents []Distance) float64 {
	lo, hi := math.Inf(1), math.Inf(-1)
	finite := make([]float64, 0, len(extents))
	for _, e := range extents {
		v := float64(e)
		if math.IsInf(v, 0) || math.IsNaN(v) {
			continue
		}
		finite = append(finite, v)
		lo, hi = min(lo, v), max(hi, v)
	}
	if len(finite) == 0 || hi-lo == 0 {
		return 1.0
	}
	var sum float64
	for _, v := range finite {
		sum += (v - lo) / (hi - lo)
	}
	return sum / float64(len(finite))
}

// localMinima returns every index whose value is <= all values within order positions
// on either side, clipping at the borders. Unscored (infinite) entries never qualify.
func localMinima(xs []float64, order int) []int {
	order = max(order, 1)
	var out []int
	for i, v := range xs {
		if math.IsInf(v, 1) {
			continue
		}
		ok := true
		for j := 1; j <= order && ok; j++ {
			left := xs[max(0, i-j)]
			right := xs[min(len(xs)-1, i+j)]
			ok = v <= left && v <= right
		}
		if ok {
			out = append(out, i)
		}
	}
	return out
}

func dimsToUse(nDims, dims int) int {
	if nDims <= 0 || nDims > dims {
		return dims
	}
	return nDims
}
