// 14 Feb 2023

// Package search finds short, significant regions in a vector of
// per-position scores (attributions, importances...).
//
// We visit every start position of a two-position window. From each,
// a window grows symmetrically, one position on each side at a time,
// as long as its summed score beats the null model threshold for its
// size. The last window which was accepted becomes a region. Regions
// are masked with -Inf in a working copy of the scores, so no later
// window can include them and regions never overlap.
// It is greedy and depends on the order positions are visited.
package search

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// Region is a half-open interval [Start, Stop) of score positions.
type Region struct {
	Start int
	Stop  int
}

// Len is the number of positions covered.
func (r Region) Len() int { return r.Stop - r.Start }

// Overlaps is true if the two regions share any position.
func (r Region) Overlaps(q Region) bool { return r.Start < q.Stop && q.Start < r.Stop }

func (r Region) String() string { return fmt.Sprintf("[%d,%d)", r.Start, r.Stop) }

// Order says in which order seed positions are visited, by the mean
// score of the two-position window starting there.
type Order int

const (
	Ascending  Order = iota // lowest mean first
	Descending              // highest mean first
)

// ParseOrder converts "ascending" or "descending".
func ParseOrder(s string) (Order, error) {
	switch s {
	case "ascending", "asc", "":
		return Ascending, nil
	case "descending", "desc":
		return Descending, nil
	}
	return Ascending, fmt.Errorf("%w: unknown visiting order %q", ErrConfig, s)
}

func (o Order) String() string {
	if o == Descending {
		return "descending"
	}
	return "ascending"
}

// Positions returns the indices of means, sorted by value. The sort is
// stable, so equal means are visited left to right.
func (o Order) Positions(means []float64) []int {
	ndx := make([]int, len(means))
	for i := range ndx {
		ndx[i] = i
	}
	if o == Descending {
		sort.SliceStable(ndx, func(a, b int) bool { return means[ndx[a]] > means[ndx[b]] })
	} else {
		sort.SliceStable(ndx, func(a, b int) bool { return means[ndx[a]] < means[ndx[b]] })
	}
	return ndx
}

// RunningMean returns the means of every window of k values in x.
// There are len(x)-k+1 of them, or none if x is shorter than k.
func RunningMean(x []float64, k int) []float64 {
	if k < 1 || len(x) < k {
		return nil
	}
	cum := make([]float64, len(x)+1)
	floats.CumSum(cum[1:], x)
	means := make([]float64, len(x)-k+1)
	for i := range means {
		means[i] = (cum[i+k] - cum[i]) / float64(k)
	}
	return means
}

// seedWindow is the size of the window used to rank seed positions.
const seedWindow = 2

// Options controls a search.
type Options struct {
	SeedSize     int   // size of the window we start growing from
	MaxSize      int   // windows never grow beyond this
	ExtendFlanks int   // extra positions added each side of a region
	Order        Order // order in which seed positions are visited
}

// DefaultOptions are the usual settings, seeds of two growing to twenty.
func DefaultOptions() Options {
	return Options{SeedSize: 2, MaxSize: 20}
}

// Check rejects sizes which make no sense.
func (o *Options) Check() error {
	switch {
	case o.SeedSize < 1:
		return fmt.Errorf("%w: seed size %d", ErrConfig, o.SeedSize)
	case o.MaxSize < o.SeedSize:
		return fmt.Errorf("%w: max size %d smaller than seed size %d", ErrConfig, o.MaxSize, o.SeedSize)
	case o.ExtendFlanks < 0:
		return fmt.Errorf("%w: negative flank extension %d", ErrConfig, o.ExtendFlanks)
	}
	return nil
}

// Result is what one search produces.
type Result struct {
	Regions    []Region        // in the order they were found
	Thresholds map[int]float64 // thresholds calculated, by window size
	Masked     []float64       // working copy of the scores after masking
}

// Search finds the significant regions in scores. scores is not
// changed. model gives the thresholds, each size is asked for once.
func Search(scores []float64, model NullModel, opts Options) (*Result, error) {
	if err := opts.Check(); err != nil {
		return nil, err
	}
	if model == nil {
		return nil, fmt.Errorf("%w: no null model", ErrConfig)
	}
	n := len(scores)
	work := make([]float64, n)
	copy(work, scores)
	table := NewThresholdTable(model, scores)
	res := &Result{Masked: work}

	for _, i := range opts.Order.Positions(RunningMean(scores, seedWindow)) {
		ext, ok, err := grow(work, i, table, &opts)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		last := ext - 1 // ext has gone one step past the last accepted window
		r := Region{Start: i - last, Stop: i + opts.SeedSize + last}
		r = flank(work, r, opts.ExtendFlanks)
		for k := r.Start; k < r.Stop; k++ {
			work[k] = math.Inf(-1)
		}
		res.Regions = append(res.Regions, r)
	}
	res.Thresholds = table.Thresholds()
	return res, nil
}

// grow extends the window at position i while it stays significant.
// It returns how often the window was extended and whether the seed
// window itself was significant. A window which would run off either
// end of the scores stops the growth.
func grow(work []float64, i int, table *ThresholdTable, opts *Options) (int, bool, error) {
	ext, sig := 0, false
	for size := opts.SeedSize; size <= opts.MaxSize; size = opts.SeedSize + 2*ext {
		lo, hi := i-ext, i+opts.SeedSize+ext
		if lo < 0 || hi > len(work) {
			break
		}
		thresh, err := table.Get(size)
		if err != nil {
			return 0, false, err
		}
		if !(floats.Sum(work[lo:hi]) > thresh) { // NaN and -Inf both fail
			break
		}
		sig = true
		ext++
	}
	return ext, sig, nil
}

// flank adds up to n positions on each side of r. Flanks stop at the
// ends of the vector and at positions already masked, so regions
// cannot overlap.
func flank(work []float64, r Region, n int) Region {
	for k := 0; k < n && r.Start > 0 && !math.IsInf(work[r.Start-1], -1); k++ {
		r.Start--
	}
	for k := 0; k < n && r.Stop < len(work) && !math.IsInf(work[r.Stop], -1); k++ {
		r.Stop++
	}
	return r
}
