// 27 Mar 2023

// Package motifs turns region records into motifs. Regions are one-hot
// encoded, sorted by score, best first, and clustered. The accumulators
// with most support are written out as weight matrices.
package motifs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/dustin/go-humanize"
	log "github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"

	"github.com/andrew-torda/metamotif/pkg/cluster"
	"github.com/andrew-torda/metamotif/pkg/motifio"
	"github.com/andrew-torda/metamotif/pkg/progress"
	"github.com/andrew-torda/metamotif/pkg/seq"
	"github.com/andrew-torda/metamotif/pkg/wmat"
)

var ErrNoCandidates = errors.New("no usable k-mers")

// Options are the settings for a run.
type Options struct {
	Fixed      bool // only k-mers of the most common length are used
	Spawn      cluster.Spawn
	Alphabet   string
	MinSupport int
	MaxMotifs  int
	Quiet      bool
}

// Candidates drops k-mers shorter than two and, if fixed, those not of
// the most common length. The rest are sorted by decreasing score,
// keeping file order for equal scores.
func Candidates(rs []motifio.Region, fixed bool) []motifio.Region {
	var out []motifio.Region
	for i, r := range rs {
		if len(r.Kmer) < 2 {
			log.Warnf("k-mer %d (%s %q) is too short, skipped", i+1, r.ID, r.Kmer)
			continue
		}
		out = append(out, r)
	}
	if fixed && len(out) > 0 {
		n := commonLength(out)
		kept := out[:0]
		for _, r := range out {
			if len(r.Kmer) == n {
				kept = append(kept, r)
			}
		}
		if skipped := len(out) - len(kept); skipped > 0 {
			log.Infof("fixed size %d, skipped %s k-mers of other lengths", n, humanize.Comma(int64(skipped)))
		}
		out = kept
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}

// commonLength is the most frequent k-mer length. A tie goes to the
// shorter.
func commonLength(rs []motifio.Region) int {
	count := make(map[int]int)
	for _, r := range rs {
		count[len(r.Kmer)]++
	}
	best, bestN := 0, 0
	for n, c := range count {
		if c > bestN || (c == bestN && n < best) {
			best, bestN = n, c
		}
	}
	return best
}

// Find clusters the candidates in the order given.
func Find(cands []motifio.Region, opts *Options) (*cluster.Cluster, error) {
	if len(cands) == 0 {
		return nil, ErrNoCandidates
	}
	c := cluster.New(opts.Spawn)
	bar := progress.New("aligned k-mers: ", len(cands), opts.Quiet)
	for i, r := range cands {
		if _, err := c.Add(seq.OneHot([]byte(r.Kmer), opts.Alphabet)); err != nil {
			bar.Done(true)
			return nil, fmt.Errorf("k-mer %d (%s): %w", i, r.Kmer, err)
		}
		bar.Incr()
	}
	bar.Done(false)
	log.Infof("%s k-mers in %s accumulators", humanize.Comma(int64(len(cands))), humanize.Comma(int64(c.Len())))
	return c, nil
}

// Motif is one accumulator ready to write. Padding rows nobody
// reached are gone.
type Motif struct {
	PWM     [][]float32
	PFM     [][]float32
	Support int
	Entropy float64 // mean over positions
}

// Collect picks the accumulators to write.
func Collect(c *cluster.Cluster, minSupport, maxMotifs int) []Motif {
	var out []Motif
	for _, acc := range c.Top(minSupport, maxMotifs) {
		pfm := wmat.Trim(acc.PFM())
		pwm := wmat.Normalise(pfm, acc.Support())
		ent := wmat.Entropy(pwm)
		e := make([]float64, len(ent))
		for i, x := range ent {
			e[i] = float64(x)
		}
		m := Motif{PWM: pwm.Mat, PFM: pfm.Mat, Support: acc.Support()}
		if len(e) > 0 {
			m.Entropy = floats.Sum(e) / float64(len(e))
		}
		out = append(out, m)
	}
	return out
}

// Write puts motif-<i>.tsv and motif-<i>.transfac for each motif in dir.
func Write(dir string, ms []Motif, total int, alphabet string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	for i, m := range ms {
		base := filepath.Join(dir, "motif-"+strconv.Itoa(i))
		meta := []motifio.Meta{
			{Key: "support", Value: strconv.Itoa(m.Support)},
			{Key: "total", Value: strconv.Itoa(total)},
			{Key: "entropy", Value: strconv.FormatFloat(m.Entropy, 'f', 4, 64)},
		}
		if err := writeFile(base+".tsv", func(fp *os.File) error {
			return motifio.WriteMotifTSV(fp, wmat.FromRows(m.PWM), alphabet, meta)
		}); err != nil {
			return err
		}
		if err := writeFile(base+".transfac", func(fp *os.File) error {
			return motifio.WriteTransfac(fp, wmat.FromRows(m.PFM), strconv.Itoa(i), alphabet)
		}); err != nil {
			return err
		}
		log.Debugf("motif %d support %d length %d", i, m.Support, len(m.PWM))
	}
	return nil
}

func writeFile(fname string, f func(*os.File) error) error {
	fp, err := os.Create(fname)
	if err != nil {
		return err
	}
	err = f(fp)
	if cerr := fp.Close(); err == nil {
		err = cerr
	}
	return err
}

// RunFiles reads regions, clusters them and writes the motifs to outDir.
func RunFiles(regionName, outDir string, opts Options) ([]Motif, error) {
	rs, err := motifio.ReadRegionFile(regionName)
	if err != nil {
		return nil, err
	}
	cands := Candidates(rs, opts.Fixed)
	log.Infof("read %s k-mers, %s usable", humanize.Comma(int64(len(rs))), humanize.Comma(int64(len(cands))))
	c, err := Find(cands, &opts)
	if err != nil {
		return nil, err
	}
	ms := Collect(c, opts.MinSupport, opts.MaxMotifs)
	if len(ms) == 0 {
		log.Warnf("no motif has support %d or more", opts.MinSupport)
	}
	if err := Write(outDir, ms, len(cands), opts.Alphabet); err != nil {
		return nil, err
	}
	return ms, nil
}
