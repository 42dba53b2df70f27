// 3 Feb 2023

// Package wmat has the operations we need on weight matrices.
// A weight matrix is a matrix.FMatrix2d with one row per sequence
// position and one column per alphabet symbol. Frequency matrices
// (raw summed counts) and normalised weight matrices have the same
// shape, they only differ by a factor of the support.
// Functions that say they return a new matrix never touch their
// arguments. Functions with "In" in the name work in place.
package wmat

import (
	"fmt"
	"math"

	"github.com/andrew-torda/matrix"
)

// New returns a zeroed matrix of nrow positions by ncol symbols.
// The library does not allocate anything for zero rows, so we
// give back an empty, but usable, matrix in that case.
func New(nrow, ncol int) *matrix.FMatrix2d {
	if nrow == 0 {
		return new(matrix.FMatrix2d)
	}
	return matrix.NewFMatrix2d(nrow, ncol)
}

// Len is the number of positions (rows).
func Len(m *matrix.FMatrix2d) int { return len(m.Mat) }

// Width is the number of symbols (columns). Zero for an empty matrix.
func Width(m *matrix.FMatrix2d) int {
	_, ncol := m.Size()
	return ncol
}

// FromRows copies a slice of rows into a new matrix. Rows must all
// have the same length. It is mainly for tests and small literals.
func FromRows(rows [][]float32) *matrix.FMatrix2d {
	if len(rows) == 0 {
		return New(0, 0)
	}
	m := New(len(rows), len(rows[0]))
	for i, r := range rows {
		if len(r) != len(rows[0]) {
			panic(fmt.Sprintf("wmat.FromRows row %d has %d columns, want %d", i, len(r), len(rows[0])))
		}
		copy(m.Mat[i], r)
	}
	return m
}

// Copy returns a deep copy of m.
func Copy(m *matrix.FMatrix2d) *matrix.FMatrix2d {
	nrow, ncol := m.Size()
	t := New(nrow, ncol)
	for i, row := range m.Mat {
		copy(t.Mat[i], row)
	}
	return t
}

// Pad returns a new matrix with left zero rows before m and right zero
// rows after it.
func Pad(m *matrix.FMatrix2d, left, right int) *matrix.FMatrix2d {
	if left < 0 || right < 0 {
		panic(fmt.Sprintf("wmat.Pad negative padding %d %d", left, right))
	}
	nrow, ncol := m.Size()
	t := New(nrow+left+right, ncol)
	for i, row := range m.Mat {
		copy(t.Mat[i+left], row)
	}
	return t
}

// AddIn adds src into dst, elementwise, starting at row at of dst.
// The caller makes sure src fits.
func AddIn(dst, src *matrix.FMatrix2d, at int) {
	for i, row := range src.Mat {
		drow := dst.Mat[at+i]
		for j, x := range row {
			drow[j] += x
		}
	}
}

// Dot is the sum of the elementwise product of two blocks of rows
// of the same shape. This is the default agreement/similarity score.
func Dot(a, b [][]float32) float32 {
	var s float32
	for i, arow := range a {
		brow := b[i]
		for j, x := range arow {
			s += x * brow[j]
		}
	}
	return s
}

// Cosine treats the two blocks of rows as flat vectors and returns
// their cosine similarity. If either has no mass, the answer is zero.
func Cosine(a, b [][]float32) float32 {
	var a_sq, b_sq, res float64
	for i, arow := range a {
		brow := b[i]
		for j, x := range arow {
			y := brow[j]
			a_sq += float64(x * x)
			b_sq += float64(y * y)
			res += float64(x * y)
		}
	}
	if a_sq == 0 || b_sq == 0 {
		return 0
	}
	return float32(res / (math.Sqrt(a_sq) * math.Sqrt(b_sq)))
}

// Mass is the sum over every element.
func Mass(m *matrix.FMatrix2d) float64 {
	var s float64
	for _, row := range m.Mat {
		for _, x := range row {
			s += float64(x)
		}
	}
	return s
}

// Normalise returns a new matrix, m / support.
func Normalise(m *matrix.FMatrix2d, support int) *matrix.FMatrix2d {
	if support < 1 {
		panic(fmt.Sprintf("wmat.Normalise support %d", support))
	}
	t := Copy(m)
	ScaleIn(t, 1/float32(support))
	return t
}

// ScaleIn multiplies every element of m by f, in place.
func ScaleIn(m *matrix.FMatrix2d, f float32) {
	for _, row := range m.Mat {
		for j := range row {
			row[j] *= f
		}
	}
}

// Trim returns a new matrix without the rows at either end which sum
// to zero. Padding added during alignment shows up as zero rows. An
// empty row inside, from an unknown symbol, stays where it is.
func Trim(m *matrix.FMatrix2d) *matrix.FMatrix2d {
	empty := func(row []float32) bool {
		var s float32
		for _, x := range row {
			s += x
		}
		return s == 0
	}
	lo, hi := 0, len(m.Mat)
	for lo < hi && empty(m.Mat[lo]) {
		lo++
	}
	for hi > lo && empty(m.Mat[hi-1]) {
		hi--
	}
	t := New(hi-lo, Width(m))
	for i := range t.Mat {
		copy(t.Mat[i], m.Mat[lo+i])
	}
	return t
}

// Entropy gives the entropy at each position of a weight matrix.
// Each row is normalised to sum to one first, so it can be given a
// frequency matrix as well. Logarithms are taken to the base of the
// alphabet size, so a row of uniform symbols gives 1 and a
// completely conserved row gives 0. Rows with no mass give 0.
func Entropy(m *matrix.FMatrix2d) []float32 {
	ent := make([]float32, len(m.Mat))
	ncol := Width(m)
	if ncol < 2 {
		return ent
	}
	logfac := 1.0 / math.Log(float64(ncol)) // to change base of logs
	for i, row := range m.Mat {
		var tot float64
		for _, x := range row {
			tot += float64(x)
		}
		if tot <= 0 {
			continue
		}
		total := 0.0
		for _, x := range row {
			f := float64(x) / tot
			if f <= 0.0 {
				continue
			}
			total += f * math.Log(f) * logfac
		}
		ent[i] = float32(math.Abs(total))
	}
	return ent
}
