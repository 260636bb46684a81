package motiflet

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
)

// Distance is a float64 that encodes +Inf and NaN as JSON null.
type Distance float64

// IsInf reports whether the distance is unbounded.
func (d Distance) IsInf() bool { return math.IsInf(float64(d), 1) }

func (d Distance) MarshalJSON() ([]byte, error) {
	f := float64(d)
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return []byte("null"), nil
	}
	return strconv.AppendFloat(nil, f, 'g', -1, 64), nil
}

func (d *Distance) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		*d = Distance(math.Inf(1))
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	*d = Distance(f)
	return nil
}

func toDistances(xs []float64) []Distance {
	out := make([]Distance, len(xs))
	for i, x := range xs {
		out[i] = Distance(x)
	}
	return out
}

// ElbowCurve is an extent curve with the motiflet found at every point and the
// detected elbows. Index i of Extents and Motiflets is k (or the number of dimensions).
type ElbowCurve struct {
	Extents   []Distance  `json:"extents"`
	Motiflets []*Motiflet `json:"motiflets"`
	Elbows    []int       `json:"elbows"`
}

// ElbowMotiflets returns the motiflets at the elbow points, skipping missing ones.
func (c ElbowCurve) ElbowMotiflets() []Motiflet {
	out := make([]Motiflet, 0, len(c.Elbows))
	for _, e := range c.Elbows {
		if e >= 0 && e < len(c.Motiflets) && c.Motiflets[e] != nil {
			out = append(out, *c.Motiflets[e])
		}
	}
	return out
}

// Rescale maps every motiflet found on a series thinned by factor back onto
// the original positions.
func (c *ElbowCurve) Rescale(factor int) {
	if factor <= 1 {
		return
	}
	for i, m := range c.Motiflets {
		if m != nil {
			scaled := m.Scaled(factor)
			c.Motiflets[i] = &scaled
		}
	}
}

// Best returns the motiflet of the largest elbow, or nil.
func (c ElbowCurve) Best() *Motiflet {
	ms := c.ElbowMotiflets()
	if len(ms) == 0 {
		return nil
	}
	return &ms[len(ms)-1]
}

func positionsByIndex(motiflets []*Motiflet) [][]int {
	out := make([][]int, len(motiflets))
	for i, m := range motiflets {
		if m != nil {
			out[i] = m.Positions
		}
	}
	return out
}

// KElbowResult is the elbow function over k in [2, KMax] for a fixed motif length.
type KElbowResult struct {
	MotifLength int `json:"motif_length"`
	KMax        int `json:"k_max"`
	ElbowCurve
}

// DimsElbowResult is the elbow function over the number of dimensions for fixed k and motif length.
type DimsElbowResult struct {
	MotifLength int `json:"motif_length"`
	K           int `json:"k"`
	ElbowCurve
}

// LengthEntry is the AU-EF outcome for a single candidate motif length.
type LengthEntry struct {
	MotifLength int        `json:"motif_length"`
	AUEF        Distance   `json:"au_ef"`
	Elbows      []int      `json:"elbows"`
	Motiflets   []Motiflet `json:"motiflets"`
}

// LengthResult ranks candidate motif lengths by their area under the elbow function.
type LengthResult struct {
	KMax       int           `json:"k_max"`
	Subsample  int           `json:"subsample"`
	Lengths    []LengthEntry `json:"lengths"`
	BestLength int           `json:"best_length"`
	Minima     []int         `json:"minima"`
	Best       *KElbowResult `json:"best"`
}
