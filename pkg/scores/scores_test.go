package scores_test

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	. "github.com/andrew-torda/metamotif/pkg/scores"
)

var rows = [][]float64{
	{0.5, -1, 2.25},
	{0, 3, -0.125},
}

func TestNpyRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteNpy(&buf, rows); err != nil {
		t.Fatal(err)
	}
	b := buf.Bytes()
	fname := filepath.Join(t.TempDir(), "s.npy")
	if err := os.WriteFile(fname, b, 0o644); err != nil {
		t.Fatal(err)
	}
	tbl, err := ReadFile(fname, IDAuto)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(rows, tbl.Rows); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}
	if len(tbl.IDs) != 0 {
		t.Fatal("npy has no ids, got", tbl.IDs)
	}
}

// mkNpy builds a float32 array by hand with a version 1 header.
func mkNpy(hdr string, vals []float32) []byte {
	var b bytes.Buffer
	b.WriteString("\x93NUMPY")
	b.Write([]byte{1, 0})
	binary.Write(&b, binary.LittleEndian, uint16(len(hdr)))
	b.WriteString(hdr)
	for _, x := range vals {
		binary.Write(&b, binary.LittleEndian, math.Float32bits(x))
	}
	return b.Bytes()
}

func TestParseNpy(t *testing.T) {
	one := mkNpy("{'descr': '<f4', 'fortran_order': False, 'shape': (4,), }\n", []float32{1, 2, 3, 4})
	tbl, err := ParseNpy(one)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([][]float64{{1, 2, 3, 4}}, tbl.Rows); diff != "" {
		t.Fatalf("one dimension (-want +got):\n%s", diff)
	}
	two := mkNpy("{'descr': '<f4', 'fortran_order': False, 'shape': (2, 2), }\n", []float32{1, 2, 3, 4})
	if tbl, err = ParseNpy(two); err != nil || tbl.Len() != 2 || tbl.Rows[1][0] != 3 {
		t.Fatal("two dimensions", err, tbl)
	}

	for name, b := range map[string][]byte{
		"magic":   []byte("not an npy file at all"),
		"type":    mkNpy("{'descr': '<i4', 'fortran_order': False, 'shape': (1,), }\n", []float32{1}),
		"fortran": mkNpy("{'descr': '<f4', 'fortran_order': True, 'shape': (1, 1), }\n", []float32{1}),
		"short":   mkNpy("{'descr': '<f4', 'fortran_order': False, 'shape': (3, 3), }\n", []float32{1}),
		"3d":      mkNpy("{'descr': '<f4', 'fortran_order': False, 'shape': (1, 1, 1), }\n", []float32{1}),
	} {
		if _, err := ParseNpy(b); !errors.Is(err, ErrFormat) {
			t.Error(name, "gave", err)
		}
	}
}

// TestNpyHugeShape has shapes whose size overflows or is far bigger
// than the file. They must be errors, not attempts to allocate.
func TestNpyHugeShape(t *testing.T) {
	for _, shape := range []string{
		"(2305843009213693952, 8)",
		"(8, 2305843009213693952)",
		"(2305843009213693952,)",
		"(2305843009213693952, 0)",
		"(4611686018427387904, 4611686018427387904)",
	} {
		b := mkNpy("{'descr': '<f8', 'fortran_order': False, 'shape': "+shape+", }\n", nil)
		var err error
		func() {
			defer func() {
				if r := recover(); r != nil {
					t.Fatal(shape, "panicked:", r)
				}
			}()
			_, err = ParseNpy(b)
		}()
		if !errors.Is(err, ErrFormat) {
			t.Error(shape, "gave", err)
		}
	}
}

func TestReadTSV(t *testing.T) {
	s := "# comment\n0.5\t-1 2.25\n\n0 3\t-0.125\n"
	tbl, err := ReadTSV(strings.NewReader(s), IDAuto)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(rows, tbl.Rows); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}

	s = "s1\t1 2 3\ns2\t4 5\n"
	if tbl, err = ReadTSV(strings.NewReader(s), IDAuto); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"s1", "s2"}, tbl.IDs); diff != "" {
		t.Fatalf("ids (-want +got):\n%s", diff)
	}
	if len(tbl.Rows[1]) != 2 {
		t.Fatal("ragged rows should be kept, got", tbl.Rows)
	}

	var buf bytes.Buffer
	if err := WriteTSV(&buf, tbl); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "s1\t1\t2\t3\ns2\t4\t5\n" {
		t.Fatalf("wrote %q", buf.String())
	}

	for _, bad := range []string{"1 2\ns2 3 4\n", "1 x 3\n"} {
		if _, err := ReadTSV(strings.NewReader(bad), IDAuto); !errors.Is(err, ErrFormat) {
			t.Errorf("%q gave %v", bad, err)
		}
	}
}

// TestNumericIDs has ids which look like numbers. Once the first line
// has an id, so do the rest, and ids can be forced.
func TestNumericIDs(t *testing.T) {
	tests := []struct {
		in   string
		ids  IDMode
		want []string
	}{
		{"s1 1 2\n3 4 5\ninf 6 7\n", IDAuto, []string{"s1", "3", "inf"}},
		{"1\t0.5 0.25\n2\t1 2\n", IDYes, []string{"1", "2"}},
		{"nan 1 2\n", IDYes, []string{"nan"}},
	}
	for _, tt := range tests {
		tbl, err := ReadTSV(strings.NewReader(tt.in), tt.ids)
		if err != nil {
			t.Fatal(tt.in, err)
		}
		if diff := cmp.Diff(tt.want, tbl.IDs); diff != "" {
			t.Errorf("%q ids (-want +got):\n%s", tt.in, diff)
		}
		for i, r := range tbl.Rows {
			if len(r) != 2 {
				t.Errorf("%q row %d is %v", tt.in, i, r)
			}
		}
	}
	if tbl, err := ReadTSV(strings.NewReader("1 2\n3 4\n"), IDNo); err != nil || len(tbl.IDs) != 0 {
		t.Fatal("no ids gave", tbl, err)
	}
	if _, err := ReadTSV(strings.NewReader("s1 2\n"), IDNo); !errors.Is(err, ErrFormat) {
		t.Fatal("id with ids off gave", err)
	}
	for _, n := range []string{"auto", "yes", "no"} {
		if m, err := ParseIDMode(n); err != nil || m.String() != n {
			t.Error(n, "gave", m, err)
		}
	}
	if _, err := ParseIDMode("maybe"); !errors.Is(err, ErrFormat) {
		t.Error("maybe gave", err)
	}
}

func TestWriteNpyBad(t *testing.T) {
	if err := WriteNpy(&bytes.Buffer{}, [][]float64{{1}, {1, 2}}); !errors.Is(err, ErrFormat) {
		t.Fatal("ragged rows gave", err)
	}
	if err := WriteNpy(&bytes.Buffer{}, nil); !errors.Is(err, ErrFormat) {
		t.Fatal("no rows gave", err)
	}
}

func TestEmptyNpyFile(t *testing.T) {
	fname := filepath.Join(t.TempDir(), "empty.npy")
	if err := os.WriteFile(fname, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadFile(fname, IDAuto); !errors.Is(err, ErrFormat) {
		t.Fatal("empty file gave", err)
	}
}
