// 3 Aug 2020

// Package scores reads the per-position importance scores which go
// with a set of sequences. There is one row of scores per sequence.
// They come from numpy .npy files, which are mapped rather than read,
// or from plain text with one sequence per line.
package scores

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/edsrzf/mmap-go"
	"github.com/sbinet/npyio"
	"gonum.org/v1/gonum/mat"
)

var ErrFormat = errors.New("bad score file")

// Table is a set of score rows. IDs is empty or has one entry per row.
type Table struct {
	IDs  []string
	Rows [][]float64
}

// Len is the number of rows.
func (t *Table) Len() int { return len(t.Rows) }

// shapeOf says how many rows and columns an array has. nbytes is the
// size of the whole file. No array can hold more values than that, so
// a shape which would not fit is rejected before anything is made.
func shapeOf(shape []int, size, nbytes int) (nrow, ncol int, err error) {
	switch len(shape) {
	case 1:
		nrow, ncol = 1, shape[0]
	case 2:
		nrow, ncol = shape[0], shape[1]
	default:
		return 0, 0, fmt.Errorf("%w: npy has %d dimensions", ErrFormat, len(shape))
	}
	switch {
	case nrow < 0 || ncol < 0:
		return 0, 0, fmt.Errorf("%w: npy shape %v", ErrFormat, shape)
	case nrow > nbytes:
		return 0, 0, fmt.Errorf("%w: npy shape %v for %d bytes", ErrFormat, shape, nbytes)
	case ncol > 0 && nrow > nbytes/size/ncol:
		return 0, 0, fmt.Errorf("%w: npy shape %v for %d bytes", ErrFormat, shape, nbytes)
	}
	return nrow, ncol, nil
}

// ParseNpy decodes a float32 or float64 array with one or two
// dimensions. A one dimensional array is a single row.
func ParseNpy(b []byte) (*Table, error) {
	r, err := npyio.NewReader(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	descr := r.Header.Descr
	if descr.Fortran {
		return nil, fmt.Errorf("%w: fortran order npy not handled", ErrFormat)
	}
	var size int
	switch {
	case len(descr.Type) == 3 && descr.Type[1:] == "f4":
		size = 4
	case len(descr.Type) == 3 && descr.Type[1:] == "f8":
		size = 8
	default:
		return nil, fmt.Errorf("%w: npy type %s, want f4 or f8", ErrFormat, descr.Type)
	}
	nrow, ncol, err := shapeOf(descr.Shape, size, len(b))
	if err != nil {
		return nil, err
	}

	t := &Table{Rows: make([][]float64, nrow)}
	if size == 4 {
		vals := make([]float32, nrow*ncol)
		if err := r.Read(&vals); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrFormat, err)
		}
		for i := range t.Rows {
			row := make([]float64, ncol)
			for j, x := range vals[i*ncol : (i+1)*ncol] {
				row[j] = float64(x)
			}
			t.Rows[i] = row
		}
		return t, nil
	}
	vals := make([]float64, nrow*ncol)
	if err := r.Read(&vals); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	for i := range t.Rows {
		t.Rows[i] = vals[i*ncol : (i+1)*ncol : (i+1)*ncol]
	}
	return t, nil
}

// ReadNpy maps a file and decodes it.
func ReadNpy(fname string) (*Table, error) {
	fp, err := os.Open(fname)
	if err != nil {
		return nil, err
	}
	defer fp.Close()
	fi, err := fp.Stat()
	if err != nil {
		return nil, err
	}
	if fi.Size() == 0 { // cannot map nothing
		return nil, fmt.Errorf("%w: %s is empty", ErrFormat, fname)
	}
	mm, err := mmap.Map(fp, mmap.RDONLY, 0)
	if err != nil {
		return nil, err
	}
	defer mm.Unmap()
	t, err := ParseNpy(mm)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", fname, err)
	}
	return t, nil
}

// WriteNpy writes rows as a float64 array with shape (rows, columns).
// Rows must all be the same length and there must be something to
// write.
func WriteNpy(w io.Writer, rows [][]float64) error {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return fmt.Errorf("%w: no scores to write", ErrFormat)
	}
	ncol := len(rows[0])
	flat := make([]float64, 0, len(rows)*ncol)
	for i, r := range rows {
		if len(r) != ncol {
			return fmt.Errorf("%w: row %d has %d values, first row %d", ErrFormat, i, len(r), ncol)
		}
		flat = append(flat, r...)
	}
	return npyio.Write(w, mat.NewDense(len(rows), ncol, flat))
}
