package align

import (
	"fmt"

	"github.com/andrew-torda/matrix"

	"github.com/andrew-torda/metamotif/pkg/wmat"
)

// DefaultMinAgreement is the agreement a candidate needs with the
// seed, in the units of the dot product. For one-hot k-mers it is the
// number of identical positions.
const DefaultMinAgreement = 3

// Fixed accumulates candidates of one fixed length.
// The seed is stored with padding rows on each side, so candidates can
// overhang it by up to size - minAgreement positions. Scores are always
// against this padded seed, never against the running sum.
type Fixed struct {
	size         int
	minAgreement int
	padding      int
	padded       *matrix.FMatrix2d // seed with zero padding, never changes
	acc          *matrix.FMatrix2d // padded sum of everything accepted
	support      int
}

// NewFixed copies seed and returns an accumulator with support one.
func NewFixed(seed *matrix.FMatrix2d, minAgreement int) (*Fixed, error) {
	size := wmat.Len(seed)
	if size == 0 {
		return nil, fmt.Errorf("%w: empty seed", ErrShort)
	}
	if minAgreement < 0 || minAgreement > size {
		return nil, fmt.Errorf("%w: minimum agreement %d for seed of length %d",
			ErrConfig, minAgreement, size)
	}
	padding := size - minAgreement
	return &Fixed{
		size:         size,
		minAgreement: minAgreement,
		padding:      padding,
		padded:       wmat.Pad(seed, padding, padding),
		acc:          wmat.Pad(seed, padding, padding),
		support:      1,
	}, nil
}

// Align scans every offset of cand against the padded seed. If the
// best dot product reaches the minimum agreement, cand is added at
// that offset. Offset in the Outcome is in padded coordinates, so the
// seed itself sits at Padding().
func (f *Fixed) Align(cand *matrix.FMatrix2d) (Outcome, error) {
	if n := wmat.Len(cand); n != f.size {
		return Outcome{}, fmt.Errorf("%w: got %d positions, want %d", ErrLength, n, f.size)
	}
	if err := checkWidth(cand, wmat.Width(f.padded)); err != nil {
		return Outcome{}, err
	}
	off, score := bestOffset(f.padded.Mat, cand.Mat, Dot)
	if score < float32(f.minAgreement) {
		return Outcome{Score: score, Offset: off}, nil
	}
	wmat.AddIn(f.acc, cand, off)
	f.support++
	return Outcome{Accepted: true, Score: score, Offset: off}, nil
}

func (f *Fixed) Size() int         { return f.size }
func (f *Fixed) Padding() int      { return f.padding }
func (f *Fixed) MinAgreement() int { return f.minAgreement }

// Support is the number of candidates merged, including the seed.
func (f *Fixed) Support() int { return f.support }

// SeedLen is the length of the seed, the same as Size.
func (f *Fixed) SeedLen() int { return f.size }

// PFM returns a copy of the accumulated counts, padding included.
func (f *Fixed) PFM() *matrix.FMatrix2d { return wmat.Copy(f.acc) }

// PWM is the accumulated counts divided by the support.
func (f *Fixed) PWM() *matrix.FMatrix2d { return wmat.Normalise(f.acc, f.support) }
