// 9 Mar 2023

package align

import (
	"fmt"

	"github.com/andrew-torda/matrix"
	log "github.com/sirupsen/logrus"

	"github.com/andrew-torda/metamotif/pkg/wmat"
)

// frame holds the accumulated matrix and where the seed starts in it.
// Callers talk in positions relative to the start of the seed. The
// frame grows on either side when asked for rows it does not have.
type frame struct {
	buf    *matrix.FMatrix2d
	origin int // row in buf of seed position 0
}

// reserve makes sure seed-relative rows [rel, rel+n) exist and returns
// the row in buf where they start, along with how many rows had to be
// added on the left and right.
func (f *frame) reserve(rel, n int) (row, left, right int) {
	if start := f.origin + rel; start < 0 {
		left = -start
	}
	if end := f.origin + rel + n; end > wmat.Len(f.buf) {
		right = end - wmat.Len(f.buf)
	}
	if left > 0 || right > 0 {
		f.buf = wmat.Pad(f.buf, left, right)
		f.origin += left
	}
	return f.origin + rel, left, right
}

// Variable accumulates candidates of any length onto a seed of any
// length.
type Variable struct {
	seed    *matrix.FMatrix2d
	fr      frame
	support int
}

// NewVariable copies seed, which needs at least two positions.
func NewVariable(seed *matrix.FMatrix2d) (*Variable, error) {
	if n := wmat.Len(seed); n < 2 {
		return nil, fmt.Errorf("%w: seed has %d", ErrShort, n)
	}
	return &Variable{
		seed:    wmat.Copy(seed),
		fr:      frame{buf: wmat.Copy(seed)},
		support: 1,
	}, nil
}

// Align finds the best placement of cand relative to the seed.
// The longer of the two is padded by len(shorter)-1 on each side and
// the shorter slides over it, so placements with one position of
// overlap are considered. If two are the same length, the candidate
// slides. A nil sim means Dot.
// If the best score is below minScore, nothing changes. Otherwise the
// candidate is added and Offset in the Outcome is where it starts,
// relative to the start of the seed (negative is to the left).
func (v *Variable) Align(cand *matrix.FMatrix2d, sim Similarity, minScore float32) (Outcome, error) {
	if n := wmat.Len(cand); n < 2 {
		return Outcome{}, fmt.Errorf("%w: candidate has %d", ErrShort, n)
	}
	if err := checkWidth(cand, wmat.Width(v.seed)); err != nil {
		return Outcome{}, err
	}
	if sim == nil {
		sim = Dot
	}
	candLong := wmat.Len(cand) > wmat.Len(v.seed)
	long, short := v.seed, cand
	if candLong {
		long, short = cand, v.seed
	}
	pad := wmat.Len(short) - 1 // minimum overlap of one
	padded := wmat.Pad(long, pad, pad)
	off, score := bestOffset(padded.Mat, short.Mat, sim)
	if score < minScore {
		return Outcome{Score: score}, nil
	}

	var toSeed int
	if candLong {
		toSeed = pad - off
	} else {
		toSeed = off - pad
	}
	row, left, right := v.fr.reserve(toSeed, wmat.Len(cand))
	log.Debugf("align offset %d score %g to seed %d, pad left %d right %d, seed now at %d",
		off, score, toSeed, left, right, v.fr.origin)
	wmat.AddIn(v.fr.buf, cand, row)
	v.support++
	return Outcome{Accepted: true, Score: score, Offset: toSeed}, nil
}

// Support is the number of candidates merged, including the seed.
func (v *Variable) Support() int { return v.support }

// SeedOffset is the row of the accumulated matrix where the seed starts.
func (v *Variable) SeedOffset() int { return v.fr.origin }

// Len is the current length of the accumulated matrix.
func (v *Variable) Len() int { return wmat.Len(v.fr.buf) }

// SeedLen is the length of the original seed.
func (v *Variable) SeedLen() int { return wmat.Len(v.seed) }

// Seed returns a copy of the seed.
func (v *Variable) Seed() *matrix.FMatrix2d { return wmat.Copy(v.seed) }

// PFM returns a copy of the accumulated counts.
func (v *Variable) PFM() *matrix.FMatrix2d { return wmat.Copy(v.fr.buf) }

// PWM is the accumulated counts divided by the support.
func (v *Variable) PWM() *matrix.FMatrix2d { return wmat.Normalise(v.fr.buf, v.support) }
