package motifs_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/andrew-torda/metamotif/pkg/cluster"
	"github.com/andrew-torda/metamotif/pkg/motifio"
	. "github.com/andrew-torda/metamotif/pkg/motifs"
	"github.com/andrew-torda/metamotif/pkg/seq"
	"github.com/andrew-torda/metamotif/pkg/wmat"
)

var regions = []motifio.Region{
	{ID: "f", Kmer: "TTTTA", Score: 4},
	{ID: "b", Kmer: "GTAC", Score: 8},
	{ID: "a", Kmer: "ACGTAC", Score: 9},
	{ID: "e", Kmer: "A", Score: 5},
	{ID: "c", Kmer: "TTTT", Score: 7},
	{ID: "d", Kmer: "CGTACG", Score: 6},
}

func kmersOf(rs []motifio.Region) []string {
	var s []string
	for _, r := range rs {
		s = append(s, r.Kmer)
	}
	return s
}

func TestCandidates(t *testing.T) {
	got := kmersOf(Candidates(regions, false))
	want := []string{"ACGTAC", "GTAC", "TTTT", "CGTACG", "TTTTA"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("variable (-want +got):\n%s", diff)
	}
	// lengths 6 and 4 are both there twice, the shorter wins
	got = kmersOf(Candidates(regions, true))
	if diff := cmp.Diff([]string{"GTAC", "TTTT"}, got); diff != "" {
		t.Fatalf("fixed (-want +got):\n%s", diff)
	}
	tied := []motifio.Region{{ID: "x", Kmer: "AA", Score: 1}, {ID: "y", Kmer: "CC", Score: 1}}
	if got := Candidates(tied, false); got[0].ID != "x" {
		t.Fatal("equal scores should keep file order")
	}
}

func opts() Options {
	return Options{
		Spawn:      cluster.VariableSpawn(cluster.DefaultVariablePolicy()),
		Alphabet:   seq.DNA,
		MinSupport: 2,
		MaxMotifs:  5,
		Quiet:      true,
	}
}

func TestFindCollect(t *testing.T) {
	o := opts()
	c, err := Find(Candidates(regions, false), &o)
	if err != nil {
		t.Fatal(err)
	}
	if c.Len() != 2 {
		t.Fatal(c.Len(), "accumulators, want 2")
	}
	ms := Collect(c, 2, 5)
	if len(ms) != 2 || ms[0].Support != 3 || ms[1].Support != 2 {
		t.Fatal("wrong motifs", ms)
	}
	wantPFM := [][]float32{
		{1, 0, 0, 0},
		{0, 2, 0, 0},
		{0, 0, 3, 0},
		{0, 0, 0, 3},
		{3, 0, 0, 0},
		{0, 3, 0, 0},
		{0, 0, 1, 0},
	}
	if diff := cmp.Diff(wantPFM, ms[0].PFM); diff != "" {
		t.Fatalf("pfm (-want +got):\n%s", diff)
	}
	if ms[0].PWM[3][3] != 1 || ms[0].Entropy != 0 {
		t.Fatal("one-symbol columns, pwm", ms[0].PWM, "entropy", ms[0].Entropy)
	}
	if got := Collect(c, 3, 5); len(got) != 1 {
		t.Fatal("support 3 should leave one, got", len(got))
	}
	if got := Collect(c, 1, 1); len(got) != 1 {
		t.Fatal("max of one gave", len(got))
	}
	if _, err := Find(nil, &o); !errors.Is(err, ErrNoCandidates) {
		t.Fatal("nothing to find gave", err)
	}
}

// TestUnknownInside checks an N inside a k-mer keeps its column while
// those at the ends go.
func TestUnknownInside(t *testing.T) {
	o := opts()
	c, err := Find(Candidates([]motifio.Region{{ID: "n", Kmer: "NACNGTN", Score: 1}}, false), &o)
	if err != nil {
		t.Fatal(err)
	}
	ms := Collect(c, 1, 1)
	if len(ms) != 1 {
		t.Fatal("got", len(ms), "motifs")
	}
	want := [][]float32{
		{1, 0, 0, 0},
		{0, 1, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 1, 0},
		{0, 0, 0, 1},
	}
	if diff := cmp.Diff(want, ms[0].PFM); diff != "" {
		t.Fatalf("pfm (-want +got):\n%s", diff)
	}
	if got := seq.Decode(wmat.FromRows(ms[0].PWM), seq.DNA); got != "AC0GT" {
		t.Fatal("decoded", got)
	}
}

func TestRunFiles(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "kmers.tsv")
	fp, err := os.Create(in)
	if err != nil {
		t.Fatal(err)
	}
	if err := motifio.WriteRegions(fp, regions); err != nil {
		t.Fatal(err)
	}
	fp.Close()

	out := filepath.Join(dir, "motifs")
	ms, err := RunFiles(in, out, opts())
	if err != nil {
		t.Fatal(err)
	}
	if len(ms) != 2 {
		t.Fatal("wrote", len(ms), "motifs")
	}
	b, err := os.ReadFile(filepath.Join(out, "motif-0.tsv"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(b), "#support=3\n#total=5\n#entropy=0.0000\nA\tC\tG\tT\n") {
		t.Fatalf("motif-0.tsv starts\n%s", b)
	}
	b, err = os.ReadFile(filepath.Join(out, "motif-1.transfac"))
	if err != nil {
		t.Fatal(err)
	}
	want := "AC 1\nID 1\nP0\tA\tC\tG\tT\n01\t0\t0\t0\t2\n02\t0\t0\t0\t2\n03\t0\t0\t0\t2\n04\t0\t0\t0\t2\n05\t1\t0\t0\t0\nXX\n//\n"
	if string(b) != want {
		t.Fatalf("motif-1.transfac\n%s\nwant\n%s", b, want)
	}
	if _, err := os.Stat(filepath.Join(out, "motif-2.tsv")); !errors.Is(err, os.ErrNotExist) {
		t.Fatal("a third motif was written")
	}
}

func TestFixedRun(t *testing.T) {
	o := opts()
	o.Fixed = true
	o.Spawn = cluster.FixedSpawn(3)
	rs := []motifio.Region{
		{Kmer: "ACGTA", Score: 3}, {Kmer: "ACGTT", Score: 2}, {Kmer: "GGGGG", Score: 1}, {Kmer: "ACG", Score: 9},
	}
	c, err := Find(Candidates(rs, true), &o)
	if err != nil {
		t.Fatal(err)
	}
	ms := Collect(c, 1, -1)
	if len(ms) != 2 || ms[0].Support != 2 {
		t.Fatal("fixed motifs", ms)
	}
	if len(ms[0].PFM) != 5 {
		t.Fatal("padding not trimmed, length", len(ms[0].PFM))
	}
}
