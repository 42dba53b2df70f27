package scores

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// IDMode says whether the first field of each text line is a row id.
type IDMode int

const (
	IDAuto IDMode = iota // decided by the first line
	IDYes
	IDNo
)

var idNames = []string{"auto", "yes", "no"}

func (m IDMode) String() string { return idNames[m] }

// ParseIDMode maps the names used in configuration files.
func ParseIDMode(s string) (IDMode, error) {
	for i, n := range idNames {
		if s == n {
			return IDMode(i), nil
		}
	}
	return IDAuto, fmt.Errorf("%w: ids %q, want auto, yes or no", ErrFormat, s)
}

// ReadTSV reads one row per line, fields split on tabs or spaces.
// With IDAuto, if the first field of the first line is not a number,
// the first field of every line is the row's id, whatever it looks
// like. Blank lines and lines starting with # are skipped. Rows can be
// different lengths.
func ReadTSV(r io.Reader, ids IDMode) (*Table, error) {
	t := new(Table)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 64*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || line[0] == '#' {
			continue
		}
		f := strings.Fields(line)
		if ids == IDAuto {
			ids = IDNo
			if _, err := strconv.ParseFloat(f[0], 64); err != nil {
				ids = IDYes
			}
		}
		if ids == IDYes {
			t.IDs = append(t.IDs, f[0])
			f = f[1:]
		}
		row := make([]float64, len(f))
		for i, s := range f {
			x, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d field %d: %v", ErrFormat, lineNo, i+1, err)
			}
			row[i] = x
		}
		t.Rows = append(t.Rows, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return t, nil
}

// WriteTSV writes rows with %g, one per line, ids first if there are
// any.
func WriteTSV(w io.Writer, t *Table) error {
	bw := bufio.NewWriter(w)
	for i, r := range t.Rows {
		if len(t.IDs) > 0 {
			bw.WriteString(t.IDs[i])
			bw.WriteByte('\t')
		}
		for j, x := range r {
			if j > 0 {
				bw.WriteByte('\t')
			}
			bw.WriteString(strconv.FormatFloat(x, 'g', -1, 64))
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// ReadFile picks the reader from the file extension. .npy is numpy,
// anything else is text. ids only matters for text.
func ReadFile(fname string, ids IDMode) (*Table, error) {
	if strings.EqualFold(filepath.Ext(fname), ".npy") {
		return ReadNpy(fname)
	}
	fp, err := os.Open(fname)
	if err != nil {
		return nil, err
	}
	defer fp.Close()
	t, err := ReadTSV(fp, ids)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", fname, err)
	}
	return t, nil
}
