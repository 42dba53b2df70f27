// 29 Mar 2023

// Package transfac counts identical k-mers in a region file and writes
// the common ones as TRANSFAC count matrices.
package transfac

import (
	"bufio"
	"io"
	"os"
	"sort"
	"strconv"

	"github.com/dustin/go-humanize"
	log "github.com/sirupsen/logrus"

	"github.com/andrew-torda/metamotif/pkg/motifio"
	"github.com/andrew-torda/metamotif/pkg/seq"
	"github.com/andrew-torda/metamotif/pkg/wmat"
)

// Count is a k-mer and how often it was seen.
type Count struct {
	Kmer string
	N    int
}

// Tally counts k-mers and returns those seen at least minCount times,
// most common first. Equal counts stay in the order first seen.
func Tally(rs []motifio.Region, minCount int) []Count {
	at := make(map[string]int)
	var all []Count
	for _, r := range rs {
		if i, ok := at[r.Kmer]; ok {
			all[i].N++
			continue
		}
		at[r.Kmer] = len(all)
		all = append(all, Count{Kmer: r.Kmer, N: 1})
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].N > all[j].N })
	n := 0
	for n < len(all) && all[n].N >= minCount {
		n++
	}
	return all[:n]
}

// Write writes each k-mer as its one-hot matrix times its count.
// The ids are 0, 1, 2...
func Write(w io.Writer, counts []Count, alphabet string) error {
	bw := bufio.NewWriter(w)
	for i, c := range counts {
		m := seq.OneHot([]byte(c.Kmer), alphabet)
		wmat.ScaleIn(m, float32(c.N))
		if err := motifio.WriteTransfac(bw, m, strconv.Itoa(i), alphabet); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// RunFiles converts regionName, writing to outName or stdout.
func RunFiles(regionName, outName string, minCount int, alphabet string) error {
	rs, err := motifio.ReadRegionFile(regionName)
	if err != nil {
		return err
	}
	counts := Tally(rs, minCount)
	log.Infof("%s k-mers, %s seen at least %d times", humanize.Comma(int64(len(rs))),
		humanize.Comma(int64(len(counts))), minCount)

	w := os.Stdout
	if outName != "" {
		if w, err = os.Create(outName); err != nil {
			return err
		}
	}
	err = Write(w, counts, alphabet)
	if outName != "" {
		if cerr := w.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
