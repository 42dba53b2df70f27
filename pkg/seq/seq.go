// 20 Dec 2017

// Package seq reads and writes sequences in fasta format and turns them
// into one-hot matrices.
package seq

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// We only read ascii characters, so anything bigger than this is not
// valid.
const MaxSym uint8 = 127

// Record is one sequence and the comment line which came before it,
// without the leading ">".
type Record struct {
	Cmmt string
	Seq  []byte
}

// Len is the number of residues.
func (r Record) Len() int { return len(r.Seq) }

// ID returns the first word of the comment, which is usually an
// identifier. It is empty if the comment is.
func (r Record) ID() string {
	if f := strings.Fields(r.Cmmt); len(f) > 0 {
		return f[0]
	}
	return ""
}

// trimStr trims a string to n bytes if it is longer
func trimStr(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

// Upper changes a sequence to upper case, in place.
// It only works with bytes, not runes.
// It returns an error if it meets a symbol above MaxSym.
func (r *Record) Upper() error {
	const diff = 'a' - 'A'
	const symerr = "bad sym \"%c\" at position %d starting \"%s\""
	s := r.Seq
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= MaxSym {
			return fmt.Errorf(symerr, c, i, trimStr(r.Cmmt, 40))
		}
		if 'a' <= c && c <= 'z' {
			s[i] -= diff
		}
	}
	return nil
}

// String returns a sequence, with its comment at the start as
// a single string
func (r Record) String() string {
	return fmt.Sprintf("%c%s\n%s", cmmtChar, r.Cmmt, r.Seq)
}

// Upper uppercases a set of records.
func Upper(recs []Record) error {
	for i := range recs {
		if err := recs[i].Upper(); err != nil {
			return err
		}
	}
	return nil
}

// Readfile reads sequences from a file. An empty name means stdin.
func Readfile(fname string) ([]Record, error) {
	var fp io.ReadCloser // don't use a file. It could be stdin.
	if fname != "" {
		var err error
		if fp, err = os.Open(fname); err != nil {
			return nil, err
		}
	} else {
		fp = os.Stdin
	}
	defer fp.Close()

	recs, err := ReadFasta(fp)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", fname, err)
	}
	return recs, nil
}

// WriteFasta writes records with at most perLine residues per line.
// perLine < 1 puts each sequence on one line.
func WriteFasta(w io.Writer, recs []Record, perLine int) error {
	bw := bufio.NewWriter(w)
	for _, r := range recs {
		fmt.Fprintf(bw, "%c%s\n", cmmtChar, r.Cmmt)
		s := r.Seq
		if perLine > 0 {
			for ; len(s) > perLine; s = s[perLine:] {
				bw.Write(s[:perLine])
				bw.WriteByte('\n')
			}
		}
		bw.Write(s)
		bw.WriteByte('\n')
	}
	return bw.Flush()
}
