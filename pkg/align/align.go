// 2 Mar 2023

// Package align accumulates candidate motifs onto a seed.
// There are two kinds of accumulator. Fixed works with candidates of
// exactly the length of its seed and always scores against the
// original seed. Variable takes candidates of any length (at least
// two) and grows its matrix to the left or right when a candidate
// hangs over the ends.
//
// A candidate which does not score well enough is not an error. Align
// returns an Outcome with Accepted false. Errors are kept for calls
// which break the rules (wrong length, wrong alphabet width).
package align

import (
	"errors"
	"fmt"
	"math"

	"github.com/andrew-torda/matrix"

	"github.com/andrew-torda/metamotif/pkg/wmat"
)

var (
	ErrLength  = errors.New("candidate length does not match accumulator")
	ErrShort   = errors.New("motif shorter than two positions")
	ErrColumns = errors.New("alphabet size does not match accumulator")
	ErrConfig  = errors.New("invalid accumulator settings")
)

// Outcome says what happened to a candidate.
type Outcome struct {
	Accepted bool    // merged into the accumulator
	Score    float32 // best score found, also when not accepted
	Offset   int     // where the candidate went. See Fixed.Align and Variable.Align
}

// Similarity scores two blocks of rows of the same shape.
type Similarity func(a, b [][]float32) float32

// Dot is the elementwise product sum. For one-hot matrices, it counts
// identical positions.
func Dot(a, b [][]float32) float32 { return wmat.Dot(a, b) }

// Cosine is the cosine similarity of the flattened blocks.
func Cosine(a, b [][]float32) float32 { return wmat.Cosine(a, b) }

// SimilarityByName maps the names used in configuration files.
func SimilarityByName(name string) (Similarity, error) {
	switch name {
	case "dot", "":
		return Dot, nil
	case "cosine":
		return Cosine, nil
	}
	return nil, fmt.Errorf("%w: unknown similarity %q", ErrConfig, name)
}

// NoMinScore can be given to Variable.Align to accept any candidate.
var NoMinScore = float32(math.Inf(-1))

// bestOffset slides short over every position of long and returns the
// first offset with the highest score.
func bestOffset(long, short [][]float32, sim Similarity) (int, float32) {
	best, bestScore := -1, float32(math.Inf(-1))
	for i := 0; i+len(short) <= len(long); i++ {
		if s := sim(long[i:i+len(short)], short); s > bestScore || best == -1 {
			best, bestScore = i, s
		}
	}
	return best, bestScore
}

// checkWidth makes sure a candidate has the right number of columns.
func checkWidth(m *matrix.FMatrix2d, ncol int) error {
	if w := wmat.Width(m); w != ncol {
		return fmt.Errorf("%w: got %d columns, want %d", ErrColumns, w, ncol)
	}
	return nil
}
