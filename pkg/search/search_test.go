package search_test

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"

	. "github.com/andrew-torda/metamotif/pkg/search"
)

// fixedModel returns a fixed threshold per window size. Sizes which are
// not in the table can never be beaten.
type fixedModel map[int]float64

func (m fixedModel) Threshold(scores []float64, size int) (float64, error) {
	if v, ok := m[size]; ok {
		return v, nil
	}
	return math.Inf(1), nil
}

// countingModel remembers how often each size was asked for.
type countingModel struct {
	fixedModel
	calls map[int]int
}

func (m *countingModel) Threshold(scores []float64, size int) (float64, error) {
	m.calls[size]++
	return m.fixedModel.Threshold(scores, size)
}

func TestMiddlePair(t *testing.T) {
	scores := []float64{0, 0, 9, 9, 0, 0}
	res, err := Search(scores, fixedModel{2: 10}, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]Region{{Start: 2, Stop: 4}}, res.Regions); diff != "" {
		t.Fatalf("regions (-want +got):\n%s", diff)
	}
	ninf := math.Inf(-1)
	if diff := cmp.Diff([]float64{0, 0, ninf, ninf, 0, 0}, res.Masked); diff != "" {
		t.Fatalf("masked scores (-want +got):\n%s", diff)
	}
	if scores[2] != 9 {
		t.Fatal("search changed its input")
	}
}

func TestGrowth(t *testing.T) {
	scores := []float64{0, 1, 5, 5, 1, 0, 0, 0}
	tests := []struct {
		name  string
		model fixedModel
		opts  Options
		want  []Region
	}{
		{"seed only", fixedModel{2: 9}, DefaultOptions(), []Region{{2, 4}}},
		{"grow once", fixedModel{2: 9, 4: 11}, DefaultOptions(), []Region{{1, 5}}},
		{"max size stops growth", fixedModel{2: 9, 4: 11, 6: 0}, Options{SeedSize: 2, MaxSize: 4}, []Region{{1, 5}}},
		{"grow twice", fixedModel{2: 9, 4: 11, 6: 11}, DefaultOptions(), []Region{{0, 6}}},
		{"flanks", fixedModel{2: 9}, Options{SeedSize: 2, MaxSize: 20, ExtendFlanks: 1}, []Region{{1, 5}}},
		{"nothing significant", fixedModel{2: 10}, DefaultOptions(), nil},
	}
	for _, tt := range tests {
		res, err := Search(scores, tt.model, tt.opts)
		if err != nil {
			t.Fatal(tt.name, err)
		}
		if diff := cmp.Diff(tt.want, res.Regions); diff != "" {
			t.Errorf("%s: regions (-want +got):\n%s", tt.name, diff)
		}
	}
}

// TestEdges: windows which would run off the end stop growing, flanks
// are clamped.
func TestEdges(t *testing.T) {
	scores := []float64{5, 5, 0, 0}
	res, err := Search(scores, fixedModel{2: 9, 4: -100}, Options{SeedSize: 2, MaxSize: 20, ExtendFlanks: 3})
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]Region{{0, 4}}, res.Regions); diff != "" {
		t.Fatalf("regions (-want +got):\n%s", diff)
	}
	if res, err = Search([]float64{3}, fixedModel{2: 0}, DefaultOptions()); err != nil || len(res.Regions) != 0 {
		t.Fatal("single score gave", res.Regions, err)
	}
}

// TestFlanksStopAtMask makes sure flanks do not run into an earlier
// region.
func TestFlanksStopAtMask(t *testing.T) {
	scores := []float64{9, 9, 0, 0, 8, 8}
	opts := Options{SeedSize: 2, MaxSize: 2, ExtendFlanks: 2, Order: Descending}
	res, err := Search(scores, fixedModel{2: 10}, opts)
	if err != nil {
		t.Fatal(err)
	}
	want := []Region{{0, 4}, {4, 6}}
	if diff := cmp.Diff(want, res.Regions); diff != "" {
		t.Fatalf("regions (-want +got):\n%s", diff)
	}
}

func TestOrder(t *testing.T) {
	means := []float64{1, 3, 2, 3}
	if diff := cmp.Diff([]int{0, 2, 1, 3}, Ascending.Positions(means)); diff != "" {
		t.Error("ascending", diff)
	}
	if diff := cmp.Diff([]int{1, 3, 2, 0}, Descending.Positions(means)); diff != "" {
		t.Error("descending", diff)
	}
	if o, err := ParseOrder("descending"); err != nil || o != Descending {
		t.Error("ParseOrder descending gave", o, err)
	}
	if _, err := ParseOrder("sideways"); !errors.Is(err, ErrConfig) {
		t.Error("ParseOrder should reject sideways, got", err)
	}
}

// TestOrderMatters: with both orders, the same vector gives different
// regions, since the first region masks its neighbour.
func TestOrderMatters(t *testing.T) {
	scores := []float64{0, 6, 5, 9, 0}
	model := fixedModel{2: 10}
	asc, _ := Search(scores, model, Options{SeedSize: 2, MaxSize: 2})
	desc, _ := Search(scores, model, Options{SeedSize: 2, MaxSize: 2, Order: Descending})
	if diff := cmp.Diff([]Region{{1, 3}}, asc.Regions); diff != "" {
		t.Error("ascending", diff)
	}
	if diff := cmp.Diff([]Region{{2, 4}}, desc.Regions); diff != "" {
		t.Error("descending", diff)
	}
}

func TestRunningMean(t *testing.T) {
	got := RunningMean([]float64{0, 2, 4, 4}, 2)
	if diff := cmp.Diff([]float64{1, 3, 4}, got); diff != "" {
		t.Fatal(diff)
	}
	if got := RunningMean([]float64{1}, 2); len(got) != 0 {
		t.Fatal("short vector gave", got)
	}
}

func TestThresholdCache(t *testing.T) {
	m := &countingModel{fixedModel{2: 1, 4: 100}, make(map[int]int)}
	res, err := Search([]float64{0, 2, 2, 0, 3, 3, 0, 0}, m, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	for size, n := range m.calls {
		if n != 1 {
			t.Error("size", size, "asked for", n, "times")
		}
	}
	if res.Thresholds[2] != 1 || res.Thresholds[4] != 100 {
		t.Error("thresholds not reported", res.Thresholds)
	}
}

func TestBadOptions(t *testing.T) {
	bad := []Options{
		{SeedSize: 0, MaxSize: 20},
		{SeedSize: 4, MaxSize: 2},
		{SeedSize: 2, MaxSize: 20, ExtendFlanks: -1},
	}
	for _, o := range bad {
		if _, err := Search([]float64{1, 2, 3}, fixedModel{}, o); !errors.Is(err, ErrConfig) {
			t.Error("options", o, "gave", err)
		}
	}
	if _, err := Search([]float64{1, 2, 3}, nil, DefaultOptions()); !errors.Is(err, ErrConfig) {
		t.Error("nil model gave", err)
	}
}

func TestPermutation(t *testing.T) {
	if _, err := NewPermutation(100, 0.01, 1); !errors.Is(err, ErrConfig) {
		t.Error("100 samples at p=0.01 should be refused, got", err)
	}
	if _, err := NewPermutation(1000, 0, 1); !errors.Is(err, ErrConfig) {
		t.Error("p=0 should be refused, got", err)
	}
	p, err := NewPermutation(1000, 0.05, 1637)
	if err != nil {
		t.Fatal(err)
	}
	ones := []float64{1, 1, 1, 1}
	for _, size := range []int{1, 2, 7} {
		if v, err := p.Threshold(ones, size); err != nil || v != float64(size) {
			t.Error("constant scores size", size, "got", v, err)
		}
	}
	// Same seed, same answer.
	scores := []float64{-1, 0.5, 2, 0, 3, -2, 1}
	p1, _ := NewPermutation(1000, 0.05, 7)
	p2, _ := NewPermutation(1000, 0.05, 7)
	v1, _ := p1.Threshold(scores, 3)
	v2, _ := p2.Threshold(scores, 3)
	if v1 != v2 {
		t.Error("same seed gave", v1, v2)
	}
	if v1 > 9 || v1 < -6 {
		t.Error("threshold", v1, "outside possible sums")
	}
}

// TestRandomInvariants runs the real permutation model over random
// vectors with some planted peaks and checks regions never overlap and
// are all masked.
func TestRandomInvariants(t *testing.T) {
	rnd := rand.New(rand.NewSource(1637))
	for iter := 0; iter < 50; iter++ {
		n := 200 + rnd.Intn(200)
		scores := make([]float64, n)
		for i := range scores {
			scores[i] = rnd.Float64()*0.2 - 0.1
		}
		for _, at := range []int{rnd.Intn(n/2 - 4), n/2 + rnd.Intn(n/2-4)} {
			for j := at; j < at+4; j++ {
				scores[j] = 5
			}
		}
		model, err := NewPermutation(1000, 0.01, int64(iter))
		if err != nil {
			t.Fatal(err)
		}
		opts := DefaultOptions()
		opts.ExtendFlanks = iter % 3
		res, err := Search(scores, model, opts)
		if err != nil {
			t.Fatal(err)
		}
		if len(res.Regions) == 0 {
			t.Error("iteration", iter, "found nothing in planted peaks")
		}
		for a, ra := range res.Regions {
			if ra.Start < 0 || ra.Stop > n || ra.Start >= ra.Stop {
				t.Fatal("bad region", ra, "for length", n)
			}
			for j := ra.Start; j < ra.Stop; j++ {
				if !math.IsInf(res.Masked[j], -1) {
					t.Fatal("region", ra, "not masked at", j)
				}
			}
			for _, rb := range res.Regions[a+1:] {
				if ra.Overlaps(rb) {
					t.Fatal("regions overlap", ra, rb)
				}
			}
		}
	}
}
