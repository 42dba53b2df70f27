// 14 Feb 2023

package search

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"
)

// ErrConfig is returned for settings which cannot work. It is checked
// before any sampling is done.
var ErrConfig = errors.New("invalid configuration")

// NullModel gives the score a window of size positions has to beat to
// be called significant, given the scores of the whole sequence.
type NullModel interface {
	Threshold(scores []float64, size int) (float64, error)
}

// Permutation is the null model used by default. It draws NSamples
// sums of size scores, picked with replacement, and returns the
// (1 - SigP) quantile of the sorted sums.
// Rnd is owned by the model. Give each concurrent search its own.
type Permutation struct {
	NSamples int
	SigP     float64
	Rnd      *rand.Rand
}

// NewPermutation checks the settings and returns a model whose random
// numbers start from seed.
func NewPermutation(nSamples int, sigP float64, seed int64) (*Permutation, error) {
	p := &Permutation{NSamples: nSamples, SigP: sigP, Rnd: rand.New(rand.NewSource(seed))}
	if err := p.check(); err != nil {
		return nil, err
	}
	return p, nil
}

// check makes sure the quantile index is not degenerate.
func (p *Permutation) check() error {
	if p.SigP <= 0 || p.SigP >= 1 {
		return fmt.Errorf("%w: significance level %g not in (0,1)", ErrConfig, p.SigP)
	}
	if float64(p.NSamples-1)*p.SigP <= 1.0 {
		return fmt.Errorf("%w: %d samples too few for p = %g, increase number of samples",
			ErrConfig, p.NSamples, p.SigP)
	}
	return nil
}

// Threshold implements NullModel.
func (p *Permutation) Threshold(scores []float64, size int) (float64, error) {
	if err := p.check(); err != nil {
		return 0, err
	}
	if size < 1 || len(scores) == 0 {
		return 0, fmt.Errorf("%w: window size %d on %d scores", ErrConfig, size, len(scores))
	}
	if p.Rnd == nil {
		return 0, fmt.Errorf("%w: permutation model without a random source", ErrConfig)
	}
	n := len(scores)
	samples := make([]float64, p.NSamples)
	for i := range samples {
		var s float64
		for k := 0; k < size; k++ {
			s += scores[p.Rnd.Intn(n)]
		}
		samples[i] = s
	}
	sort.Float64s(samples)
	ndx := int((1 - p.SigP) * float64(p.NSamples))
	if ndx >= len(samples) { // rounding, cannot really happen after check()
		ndx = len(samples) - 1
	}
	return samples[ndx], nil
}

// ThresholdTable caches thresholds by window size. It belongs to one
// search of one score vector and should never be shared, since the
// thresholds depend on the scores.
type ThresholdTable struct {
	model  NullModel
	scores []float64
	thresh map[int]float64
}

// NewThresholdTable returns an empty table. Thresholds are calculated
// the first time they are asked for.
func NewThresholdTable(model NullModel, scores []float64) *ThresholdTable {
	return &ThresholdTable{model: model, scores: scores, thresh: make(map[int]float64)}
}

// Get returns the threshold for a window size, calculating it if
// necessary.
func (t *ThresholdTable) Get(size int) (float64, error) {
	if v, ok := t.thresh[size]; ok {
		return v, nil
	}
	v, err := t.model.Threshold(t.scores, size)
	if err != nil {
		return 0, fmt.Errorf("threshold for size %d: %w", size, err)
	}
	t.thresh[size] = v
	return v, nil
}

// Thresholds returns a copy of what has been calculated so far.
func (t *ThresholdTable) Thresholds() map[int]float64 {
	m := make(map[int]float64, len(t.thresh))
	for k, v := range t.thresh {
		m[k] = v
	}
	return m
}
