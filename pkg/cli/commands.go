package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/andrew-torda/metamotif/pkg/kmers"
	"github.com/andrew-torda/metamotif/pkg/motifs"
	"github.com/andrew-torda/metamotif/pkg/randseq"
	"github.com/andrew-torda/metamotif/pkg/seq/common"
	"github.com/andrew-torda/metamotif/pkg/transfac"
)

func ctxOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func (a *app) searchCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "search <sequences.fasta> <scores.npy|scores.tsv>",
		Short: "Find significant regions in each sequence",
		Long: `Search pairs the i'th sequence with the i'th row of scores. In each, a
window starts at every pair of positions and grows by one on each side while
its summed score beats a permutation threshold for its size. Output is one
line per region: id, k-mer, score, start, stop, length.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sopts, err := a.cfg.SearchOptions()
			if err != nil {
				return err
			}
			ids, err := a.cfg.IDMode()
			if err != nil {
				return err
			}
			common.WarnExists(out)
			s := &a.cfg.Search
			return kmers.RunFiles(ctxOf(cmd), args[0], args[1], out, kmers.Options{
				Search:   sopts,
				SigP:     s.SigP,
				NSamples: s.NSamples,
				Seed:     s.Seed,
				Workers:  a.cfg.Workers,
				Quiet:    a.cfg.Quiet,
				IDs:      ids,
			})
		},
	}
	f := cmd.Flags()
	f.StringVarP(&out, "output", "o", "", "region file, default stdout")
	f.Float64("sig-p", 0.01, "significance level")
	f.Int("seed-size", 2, "size of the window regions grow from")
	f.Int("max-size", 20, "largest region")
	f.Int("extend-flanks", 0, "positions added to each side of a region")
	f.Int("n-samples", 1000, "random sums for each threshold")
	f.Int64("seed", 1637, "random number seed")
	f.String("order", "ascending", "visit windows by ascending or descending mean score")
	f.String("score-ids", "auto", "first field of each text score line is an id: auto, yes or no")
	names := []string{"sig-p", "seed-size", "max-size", "extend-flanks", "n-samples", "seed", "order", "score-ids"}
	keys := make([]string, len(names))
	for i, n := range names {
		keys[i] = "search." + n
	}
	bind(a.v, f, keys, names)
	return cmd
}

func (a *app) alignCmd() *cobra.Command {
	var outDir string
	cmd := &cobra.Command{
		Use:   "align <kmers.tsv>",
		Short: "Group regions into motifs",
		Long: `Align one-hot encodes the k-mers from search, best score first. Each is
offered to the motifs found so far, in the order they were started, and joins
the first which accepts it. Otherwise it starts a new one. The motifs with most
support are written to the output directory as motif-<i>.tsv (weights) and
motif-<i>.transfac (counts).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			spawn, err := a.cfg.Spawn()
			if err != nil {
				return err
			}
			al := &a.cfg.Align
			ms, err := motifs.RunFiles(args[0], outDir, motifs.Options{
				Fixed:      al.Mode == "fixed",
				Spawn:      spawn,
				Alphabet:   a.cfg.Alphabet,
				MinSupport: al.MinSupport,
				MaxMotifs:  al.MaxMotifs,
				Quiet:      a.cfg.Quiet,
			})
			if err != nil {
				return err
			}
			log.Infof("wrote %d motifs to %s", len(ms), outDir)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVarP(&outDir, "output-directory", "o", ".", "where motif files go")
	f.String("mode", "variable", "variable or fixed length alignment")
	f.Int("min-agreement", 3, "score a k-mer needs against a seed")
	f.Float64("min-agreement-frac", 0.5, "or this fraction of the shorter length, if more (variable mode)")
	f.String("similarity", "dot", "dot or cosine (variable mode)")
	f.Int("min-support", 100, "motifs with fewer k-mers are not written")
	f.Int("max-motifs", 5, "most motifs written")
	names := []string{"mode", "min-agreement", "min-agreement-frac", "similarity", "min-support", "max-motifs"}
	keys := make([]string, len(names))
	for i, n := range names {
		keys[i] = "align." + n
	}
	bind(a.v, f, keys, names)
	return cmd
}

func (a *app) transfacCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "transfac <kmers.tsv>",
		Short: "Write common k-mers as TRANSFAC count matrices",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			common.WarnExists(out)
			return transfac.RunFiles(args[0], out, a.cfg.Transfac.MinCount, a.cfg.Alphabet)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&out, "output", "o", "", "output file, default stdout")
	f.Int("min-count", 2, "k-mers seen fewer times are dropped")
	bind(a.v, f, []string{"transfac.min-count"}, []string{"min-count"})
	return cmd
}

// randseqCmd has its own flags, which are not part of the config.
func (a *app) randseqCmd() *cobra.Command {
	var args randseq.RandSeqArgs
	cmd := &cobra.Command{
		Use:   "randseq <out.fasta> <scores.tsv|scores.npy> nseq length",
		Short: "Make random sequences and scores with a planted motif",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, argv []string) error {
			const emsg = "%s is not a positive integer"
			n, err := strconv.ParseUint(argv[2], 10, 32)
			if err != nil || n == 0 {
				return fmt.Errorf(emsg, argv[2])
			}
			l, err := strconv.ParseUint(argv[3], 10, 32)
			if err != nil || l == 0 {
				return fmt.Errorf(emsg, argv[3])
			}
			args.Nseq, args.Len = int(n), int(l)
			args.Alphabet = a.cfg.Alphabet
			args.Npy = strings.EqualFold(filepath.Ext(argv[1]), ".npy")

			seqFp, err := os.Create(argv[0])
			if err != nil {
				return err
			}
			defer seqFp.Close()
			scoreFp, err := os.Create(argv[1])
			if err != nil {
				return err
			}
			defer scoreFp.Close()
			args.SeqWrtr, args.ScoreWrtr = seqFp, scoreFp
			if err := randseq.RandSeqMain(&args); err != nil {
				return err
			}
			if err := seqFp.Close(); err != nil {
				return err
			}
			return scoreFp.Close()
		},
	}
	f := cmd.Flags()
	f.Int64VarP(&args.Iseed, "rand-seed", "r", 1637, "random number seed")
	f.StringVar(&args.Motif, "motif", "TTGACA", "motif to plant, empty for none")
	f.Float64Var(&args.MotifScore, "motif-score", 1, "score at each motif position")
	f.StringVar(&args.Cmmt, "comment", "random", "comment for each sequence")
	f.BoolVar(&args.AddSpace, "space", false, "scatter white space through sequences")
	return cmd
}
