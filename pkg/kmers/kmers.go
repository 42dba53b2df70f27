// 24 Mar 2023

// Package kmers finds significant regions in a set of sequences, given
// a row of scores for each, and writes them as region records.
package kmers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"

	"github.com/andrew-torda/metamotif/pkg/motifio"
	"github.com/andrew-torda/metamotif/pkg/progress"
	"github.com/andrew-torda/metamotif/pkg/scores"
	"github.com/andrew-torda/metamotif/pkg/search"
	"github.com/andrew-torda/metamotif/pkg/seq"
)

var ErrMismatch = errors.New("sequences and scores do not match")

// Options are the settings for a run.
type Options struct {
	Search   search.Options
	SigP     float64
	NSamples int
	Seed     int64 // sequence i uses Seed + i
	Workers  int
	Quiet    bool          // no progress bar
	IDs      scores.IDMode // id column in text score files
}

// Stats summarises a run.
type Stats struct {
	NSeq     int
	NRegions int
	NBases   int
}

// pair checks the records and rows line up.
func pair(recs []seq.Record, tbl *scores.Table) error {
	if len(recs) != tbl.Len() {
		return fmt.Errorf("%w: %d sequences, %d rows of scores", ErrMismatch, len(recs), tbl.Len())
	}
	for i, r := range recs {
		if r.Len() != len(tbl.Rows[i]) {
			return fmt.Errorf("%w: sequence %d (%s) has length %d, %d scores",
				ErrMismatch, i, r.ID(), r.Len(), len(tbl.Rows[i]))
		}
		if len(tbl.IDs) > 0 && tbl.IDs[i] != r.ID() {
			log.Warnf("sequence %d is %s, but its scores say %s", i, r.ID(), tbl.IDs[i])
		}
	}
	return nil
}

// One searches a single sequence. idx only matters for the random
// number seed and the name if the record has none.
func One(rec seq.Record, row []float64, idx int, opts *Options) ([]motifio.Region, error) {
	model, err := search.NewPermutation(opts.NSamples, opts.SigP, opts.Seed+int64(idx))
	if err != nil {
		return nil, err
	}
	res, err := search.Search(row, model, opts.Search)
	if err != nil {
		return nil, err
	}
	id := rec.ID()
	if id == "" {
		id = strconv.Itoa(idx)
	}
	out := make([]motifio.Region, len(res.Regions))
	for i, r := range res.Regions {
		out[i] = motifio.Region{
			ID:    id,
			Kmer:  string(rec.Seq[r.Start:r.Stop]),
			Score: floats.Sum(row[r.Start:r.Stop]),
			Start: r.Start,
			Stop:  r.Stop,
		}
	}
	return out, nil
}

// Run searches every sequence and writes regions to w, in the order
// of the sequences. Sequences are shared out over opts.Workers
// goroutines, but each has its own random numbers, so the output does
// not depend on the number of workers.
func Run(ctx context.Context, recs []seq.Record, tbl *scores.Table, opts Options, w io.Writer) (Stats, error) {
	var st Stats
	if err := pair(recs, tbl); err != nil {
		return st, err
	}
	if err := opts.Search.Check(); err != nil {
		return st, err
	}
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}

	found := make([][]motifio.Region, len(recs))
	bar := progress.New("searched sequences: ", len(recs), opts.Quiet)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range recs {
		i := i
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			r, err := One(recs[i], tbl.Rows[i], i, &opts)
			if err != nil {
				return fmt.Errorf("sequence %d (%s): %w", i, recs[i].ID(), err)
			}
			found[i] = r
			bar.Incr()
			log.Debugf("%s: %d regions", recs[i].ID(), len(r))
			return nil
		})
	}
	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}
	bar.Done(err != nil)
	if err != nil {
		return st, err
	}

	for i, r := range found {
		if err := motifio.WriteRegions(w, r); err != nil {
			return st, err
		}
		st.NRegions += len(r)
		st.NBases += recs[i].Len()
	}
	st.NSeq = len(recs)
	return st, nil
}

// RunFiles reads the sequences and scores, and writes regions to
// outName, or stdout if it is empty.
func RunFiles(ctx context.Context, fastaName, scoreName, outName string, opts Options) error {
	start := time.Now()
	recs, err := seq.Readfile(fastaName)
	if err != nil {
		return err
	}
	tbl, err := scores.ReadFile(scoreName, opts.IDs)
	if err != nil {
		return err
	}
	log.Infof("read %s sequences and %s rows of scores", humanize.Comma(int64(len(recs))), humanize.Comma(int64(tbl.Len())))

	w := os.Stdout
	if outName != "" {
		if w, err = os.Create(outName); err != nil {
			return err
		}
	}
	st, err := Run(ctx, recs, tbl, opts, w)
	if outName != "" {
		if cerr := w.Close(); err == nil {
			err = cerr
		}
	}
	if err != nil {
		return err
	}
	log.Infof("%s regions in %s sequences (%s bases) in %s", humanize.Comma(int64(st.NRegions)),
		humanize.Comma(int64(st.NSeq)), humanize.Comma(int64(st.NBases)), time.Since(start).Round(time.Millisecond))
	return nil
}
