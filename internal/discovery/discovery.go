package discovery

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"motifapi/internal/motiflet"
)

// Mode selects which elbow function a discovery computes.
type Mode string

const (
	// ModeKElbow searches k in [2, k_max] at a fixed motif length.
	ModeKElbow Mode = "k_elbow"
	// ModeDimsElbow searches the number of dimensions at fixed k and motif length.
	ModeDimsElbow Mode = "dims_elbow"
	// ModeMotifLength ranks a range of motif lengths by AU-EF.
	ModeMotifLength Mode = "motif_length"
)

var (
	ErrInvalidParams = errors.New("invalid discovery parameters")
	ErrTooLarge      = errors.New("series too large for a discovery")
)

// LengthRange is a half-open range of motif lengths [Min, Max) with the given Step.
type LengthRange struct {
	Min  int `json:"min" yaml:"min"`
	Max  int `json:"max" yaml:"max"`
	Step int `json:"step" yaml:"step"`
}

// Values expands the range.
func (r LengthRange) Values() []int {
	step := r.Step
	if step <= 0 {
		step = 1
	}
	var out []int
	for m := r.Min; m < r.Max; m += step {
		out = append(out, m)
	}
	return out
}

// Params describes one discovery run.
type Params struct {
	Mode        Mode         `json:"mode" yaml:"mode"`
	Channels    []string     `json:"channels,omitempty" yaml:"channels"`
	KMax        int          `json:"k_max,omitempty" yaml:"k_max"`
	K           int          `json:"k,omitempty" yaml:"k"`
	MotifLength int          `json:"motif_length,omitempty" yaml:"motif_length"`
	Lengths     *LengthRange `json:"lengths,omitempty" yaml:"lengths"`
	// NoZNormalize searches the raw values instead of z-scoring every channel first.
	NoZNormalize bool             `json:"no_znormalize,omitempty" yaml:"no_znormalize"`
	Options      motiflet.Options `json:"options" yaml:"options"`
}

// Validate checks that the parameters required by the mode are present.
func (p Params) Validate() error {
	switch p.Mode {
	case ModeKElbow:
		if p.KMax < 2 {
			return fmt.Errorf("k_max must be at least 2: %w", ErrInvalidParams)
		}
		if p.MotifLength < 3 {
			return fmt.Errorf("motif_length must be at least 3: %w", ErrInvalidParams)
		}
	case ModeDimsElbow:
		if p.K < 2 {
			return fmt.Errorf("k must be at least 2: %w", ErrInvalidParams)
		}
		if p.MotifLength < 3 {
			return fmt.Errorf("motif_length must be at least 3: %w", ErrInvalidParams)
		}
	case ModeMotifLength:
		if p.KMax < 2 {
			return fmt.Errorf("k_max must be at least 2: %w", ErrInvalidParams)
		}
		if p.Lengths == nil || len(p.Lengths.Values()) == 0 {
			return fmt.Errorf("lengths must describe a non-empty range: %w", ErrInvalidParams)
		}
	default:
		return fmt.Errorf("unknown mode %q: %w", p.Mode, ErrInvalidParams)
	}
	if p.Options.Slack < 0 || p.Options.Slack > 1 {
		return fmt.Errorf("slack must be within [0, 1], 0 selecting the default: %w", ErrInvalidParams)
	}
	if p.Options.NDims < 0 {
		return fmt.Errorf("n_dims must not be negative: %w", ErrInvalidParams)
	}
	return nil
}

// Limits bounds the work of a single run.
type Limits struct {
	// MaxPoints resamples longer series down to about this many points. 0 keeps every point.
	MaxPoints int
	// MaxCells caps dims x n x n, the size of the distance matrix. 0 means unbounded.
	MaxCells int64
}

// Factor is the resample factor applied to a series of n points.
func (l Limits) Factor(n int) int {
	if l.MaxPoints <= 0 || n <= l.MaxPoints {
		return 1
	}
	return n / l.MaxPoints
}

// Fit checks p against a series of dims channels and n points once it has been
// resampled under l. Motif lengths are given in points of the original series.
func (l Limits) Fit(p Params, dims, n int) error {
	f := l.Factor(n)
	rn := (n + f - 1) / f
	if cells := int64(dims) * int64(rn) * int64(rn); l.MaxCells > 0 && cells > l.MaxCells {
		return fmt.Errorf("%d channels of %d points need %d distances, limit is %d: %w",
			dims, rn, cells, l.MaxCells, ErrTooLarge)
	}

	switch p.Mode {
	case ModeKElbow, ModeDimsElbow:
		if p.MotifLength >= n {
			return fmt.Errorf("motif_length %d must be shorter than the series (%d): %w", p.MotifLength, n, ErrInvalidParams)
		}
		if p.MotifLength/f < 3 {
			return fmt.Errorf("motif_length %d is under 3 points once resampled by %d: %w", p.MotifLength, f, ErrInvalidParams)
		}
	case ModeMotifLength:
		if p.Lengths != nil && p.Lengths.Min >= n {
			return fmt.Errorf("lengths must start below the series length (%d): %w", n, ErrInvalidParams)
		}
	}
	return nil
}

// RunConfig carries the process level settings of a run. Requests cannot change them.
type RunConfig struct {
	// Workers caps the goroutines of the distance matrix.
	Workers int
	Logger  *zerolog.Logger
	Limits  Limits
}

// Result is the outcome of a discovery run. Exactly one of the mode results is set.
// Positions and motif lengths refer to the original series; Resample is the
// factor the series was thinned by for the search.
type Result struct {
	Mode        Mode                      `json:"mode"`
	Labels      []string                  `json:"labels"`
	Resample    int                       `json:"resample_factor"`
	KElbow      *motiflet.KElbowResult    `json:"k_elbow,omitempty"`
	DimsElbow   *motiflet.DimsElbowResult `json:"dims_elbow,omitempty"`
	MotifLength *motiflet.LengthResult    `json:"motif_length,omitempty"`
}

// Elbows returns the elbow points of the primary curve.
func (r *Result) Elbows() []int {
	switch {
	case r.KElbow != nil:
		return r.KElbow.Elbows
	case r.DimsElbow != nil:
		return r.DimsElbow.Elbows
	case r.MotifLength != nil && r.MotifLength.Best != nil:
		return r.MotifLength.Best.Elbows
	}
	return nil
}

// BestLength returns the motif length the result settled on.
func (r *Result) BestLength() int {
	switch {
	case r.KElbow != nil:
		return r.KElbow.MotifLength
	case r.DimsElbow != nil:
		return r.DimsElbow.MotifLength
	case r.MotifLength != nil:
		return r.MotifLength.BestLength
	}
	return 0
}

// Run selects the requested channels of s, z-normalizes and resamples them and
// executes the discovery described by p.
func Run(ctx context.Context, s motiflet.Series, p Params, cfg RunConfig) (*Result, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	sel, err := s.Select(p.Channels)
	if err != nil {
		return nil, err
	}
	if err := sel.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Limits.Fit(p, sel.Dims(), sel.Len()); err != nil {
		return nil, err
	}

	work, factor := sel.Resample(cfg.Limits.MaxPoints)
	if !p.NoZNormalize {
		work = work.ZNormalize()
	}

	o := p.Options
	if cfg.Workers > 0 && (o.Workers <= 0 || o.Workers > cfg.Workers) {
		o.Workers = cfg.Workers
	}
	if cfg.Logger != nil {
		o.Logger = cfg.Logger
		if factor > 1 {
			cfg.Logger.Info().Int("points", sel.Len()).Int("factor", factor).Msg("series resampled")
		}
	}

	res := &Result{Mode: p.Mode, Labels: sel.Labels, Resample: factor}
	switch p.Mode {
	case ModeKElbow:
		res.KElbow, err = motiflet.SearchKElbow(ctx, work, p.MotifLength/factor, p.KMax, o)
		if err == nil {
			res.KElbow.MotifLength = p.MotifLength
			res.KElbow.Rescale(factor)
		}
	case ModeDimsElbow:
		res.DimsElbow, err = motiflet.SearchDimsElbow(ctx, work, p.MotifLength/factor, p.K, o)
		if err == nil {
			res.DimsElbow.MotifLength = p.MotifLength
			res.DimsElbow.Rescale(factor)
		}
	case ModeMotifLength:
		res.MotifLength, err = findLength(ctx, work, p.KMax, p.Lengths.Values(), factor, o)
	}
	if err != nil {
		return nil, err
	}
	return res, nil
}

// findLength runs the motif length search on a series resampled by factor and
// reports lengths and positions in points of the original series. Lengths that
// collapse onto the same resampled length are searched once.
func findLength(ctx context.Context, s motiflet.Series, kMax int, lengths []int, factor int, o motiflet.Options) (*motiflet.LengthResult, error) {
	if factor <= 1 {
		return motiflet.FindMotifLength(ctx, s, kMax, lengths, o)
	}

	orig := make(map[int]int, len(lengths))
	scaled := make([]int, 0, len(lengths))
	for _, m := range lengths {
		sm := m / factor
		if _, seen := orig[sm]; seen {
			continue
		}
		orig[sm] = m
		scaled = append(scaled, sm)
	}

	res, err := motiflet.FindMotifLength(ctx, s, kMax, scaled, o)
	if err != nil {
		return nil, err
	}
	for i := range res.Lengths {
		e := &res.Lengths[i]
		e.MotifLength = orig[e.MotifLength]
		for j := range e.Motiflets {
			e.Motiflets[j] = e.Motiflets[j].Scaled(factor)
		}
	}
	for i, m := range res.Minima {
		res.Minima[i] = orig[m]
	}
	res.BestLength = orig[res.BestLength]
	res.Best.MotifLength = res.BestLength
	res.Best.Rescale(factor)
	return res, nil
}
