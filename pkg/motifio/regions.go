// 20 Mar 2023

// Package motifio reads and writes the files passed between the
// commands: region records from the search, and motifs as weight
// matrices or TRANSFAC.
package motifio

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

var (
	ErrFormat       = errors.New("bad region file")
	ErrNotSupported = errors.New("not supported")
)

// Region is one line of search output. Start and Stop are a half-open
// range in the sequence called ID.
type Region struct {
	ID    string
	Kmer  string
	Score float64
	Start int
	Stop  int
}

// Len is the length of the region.
func (r Region) Len() int { return r.Stop - r.Start }

// WriteRegions writes one tab separated line per region:
// id, k-mer, score, start, stop, length.
func WriteRegions(w io.Writer, rs []Region) error {
	bw := bufio.NewWriter(w)
	for _, r := range rs {
		fmt.Fprintf(bw, "%s\t%s\t%.4f\t%d\t%d\t%d\n", r.ID, r.Kmer, r.Score, r.Start, r.Stop, r.Len())
	}
	return bw.Flush()
}

// ReadRegions reads what WriteRegions writes. Only the first three
// columns are needed. If there are fewer than five, Start and Stop
// are left at zero.
func ReadRegions(r io.Reader) ([]Region, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(b)) == 0 {
		return nil, nil
	}
	df := dataframe.ReadCSV(bytes.NewReader(b),
		dataframe.WithDelimiter('\t'),
		dataframe.HasHeader(false),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues([]string{}))
	if df.Err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFormat, df.Err)
	}
	if df.Ncol() < 3 {
		return nil, fmt.Errorf("%w: %d columns, want at least 3", ErrFormat, df.Ncol())
	}
	rs := make([]Region, df.Nrow())
	for i := range rs {
		rs[i].ID = df.Elem(i, 0).String()
		rs[i].Kmer = df.Elem(i, 1).String()
		if rs[i].Score, err = strconv.ParseFloat(df.Elem(i, 2).String(), 64); err != nil {
			return nil, fmt.Errorf("%w: line %d score: %v", ErrFormat, i+1, err)
		}
		if df.Ncol() < 5 {
			continue
		}
		if rs[i].Start, err = strconv.Atoi(df.Elem(i, 3).String()); err != nil {
			return nil, fmt.Errorf("%w: line %d start: %v", ErrFormat, i+1, err)
		}
		if rs[i].Stop, err = strconv.Atoi(df.Elem(i, 4).String()); err != nil {
			return nil, fmt.Errorf("%w: line %d stop: %v", ErrFormat, i+1, err)
		}
	}
	return rs, nil
}

// ReadRegionFile reads regions from a file. An empty name means stdin.
func ReadRegionFile(fname string) ([]Region, error) {
	var fp io.ReadCloser = os.Stdin
	if fname != "" {
		var err error
		if fp, err = os.Open(fname); err != nil {
			return nil, err
		}
	}
	defer fp.Close()
	rs, err := ReadRegions(fp)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", fname, err)
	}
	return rs, nil
}
