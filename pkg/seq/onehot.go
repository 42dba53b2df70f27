// 3 Mar 2023

package seq

import (
	"strings"

	"github.com/andrew-torda/matrix"

	"github.com/andrew-torda/metamotif/pkg/wmat"
)

// DNA is the default alphabet. Column i of a one-hot matrix is DNA[i].
const DNA = "ACGT"

// Unknown is written by Decode for a row with nothing in it.
const Unknown = '0'

// lookup gives the column for each byte, or -1.
func lookup(alphabet string) (t [256]int) {
	for i := range t {
		t[i] = -1
	}
	for i := 0; i < len(alphabet); i++ {
		c := alphabet[i]
		t[c] = i
		t[strings.ToLower(string(c))[0]] = i
		t[strings.ToUpper(string(c))[0]] = i
	}
	return t
}

// OneHot returns a len(s) x len(alphabet) matrix with a one in each row
// for the symbol at that position. Case does not matter. Symbols not in
// the alphabet, like N, give a row of zeros.
func OneHot(s []byte, alphabet string) *matrix.FMatrix2d {
	t := lookup(alphabet)
	m := wmat.New(len(s), len(alphabet))
	for i, c := range s {
		if j := t[c]; j >= 0 {
			m.Mat[i][j] = 1
		}
	}
	return m
}

// Decode goes back from a matrix to a string by taking the biggest
// element in each row. The first one wins a tie. An all-zero row
// gives Unknown.
func Decode(m *matrix.FMatrix2d, alphabet string) string {
	var sb strings.Builder
	for _, row := range m.Mat {
		best, at := float32(0), -1
		for j, x := range row {
			if x > best && j < len(alphabet) {
				best, at = x, j
			}
		}
		if at < 0 {
			sb.WriteByte(Unknown)
		} else {
			sb.WriteByte(alphabet[at])
		}
	}
	return sb.String()
}
