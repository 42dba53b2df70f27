package motifio

import (
	"bufio"
	"fmt"
	"io"
	"strconv"

	"github.com/andrew-torda/matrix"
)

// Meta is a key=value line at the top of a motif file. A slice keeps
// the order.
type Meta struct {
	Key   string
	Value string
}

func checkAlphabet(m *matrix.FMatrix2d, alphabet string) error {
	for i, row := range m.Mat {
		if len(row) != len(alphabet) {
			return fmt.Errorf("row %d has %d columns for alphabet %s", i, len(row), alphabet)
		}
	}
	return nil
}

// WriteMotifTSV writes "#key=value" lines, a header of the alphabet's
// symbols, then one row per position.
func WriteMotifTSV(w io.Writer, m *matrix.FMatrix2d, alphabet string, meta []Meta) error {
	if err := checkAlphabet(m, alphabet); err != nil {
		return err
	}
	bw := bufio.NewWriter(w)
	for _, kv := range meta {
		fmt.Fprintf(bw, "#%s=%s\n", kv.Key, kv.Value)
	}
	for i := 0; i < len(alphabet); i++ {
		if i > 0 {
			bw.WriteByte('\t')
		}
		bw.WriteByte(alphabet[i])
	}
	bw.WriteByte('\n')
	for _, row := range m.Mat {
		for j, x := range row {
			if j > 0 {
				bw.WriteByte('\t')
			}
			bw.WriteString(strconv.FormatFloat(float64(x), 'g', -1, 32))
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// WriteTransfac writes one matrix in TRANSFAC format. Values are
// truncated to integers. With no id, the AC and ID lines are bare.
func WriteTransfac(w io.Writer, m *matrix.FMatrix2d, id, alphabet string) error {
	if err := checkAlphabet(m, alphabet); err != nil {
		return err
	}
	bw := bufio.NewWriter(w)
	if id == "" {
		bw.WriteString("AC\nID\n")
	} else {
		fmt.Fprintf(bw, "AC %s\nID %s\n", id, id)
	}
	bw.WriteString("P0")
	for i := 0; i < len(alphabet); i++ {
		bw.WriteByte('\t')
		bw.WriteByte(alphabet[i])
	}
	bw.WriteByte('\n')
	for i, row := range m.Mat {
		fmt.Fprintf(bw, "%02d", i+1)
		for _, x := range row {
			fmt.Fprintf(bw, "\t%d", int64(x))
		}
		bw.WriteByte('\n')
	}
	bw.WriteString("XX\n//\n")
	return bw.Flush()
}

// WriteMEME is not there yet.
func WriteMEME(w io.Writer, m *matrix.FMatrix2d, id, alphabet string) error {
	return fmt.Errorf("MEME output: %w", ErrNotSupported)
}

// ReadTransfac is not there yet.
func ReadTransfac(r io.Reader) (*matrix.FMatrix2d, error) {
	return nil, fmt.Errorf("TRANSFAC input: %w", ErrNotSupported)
}
