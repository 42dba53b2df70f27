// 31 July 2020

// Package randseq makes random DNA sequences with a motif planted in
// each, and a row of scores for each sequence which is high where the
// motif is. It is for testing the commands end to end.
package randseq

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"strconv"
	"sync"

	"github.com/andrew-torda/metamotif/pkg/scores"
	"github.com/andrew-torda/metamotif/pkg/seq"
)

const (
	nPadWhite = 9 // For padding for adding whitespace to sequences
)

var ErrArgs = errors.New("bad randseq arguments")

// RandSeqArgs is the set of arguments passed to the main function
type RandSeqArgs struct {
	Iseed      int64     // random number seed
	SeqWrtr    io.Writer // fasta goes here
	ScoreWrtr  io.Writer // scores go here, may be nil
	Npy        bool      // scores as a numpy array, not text
	Cmmt       string    // Comment for the sequences
	Nseq       int       // number of sequences
	Len        int       // Length of sequences
	Motif      string    // planted once in each sequence, empty for none
	MotifScore float64   // score at each motif position
	Alphabet   string    // symbols for the background, default ACGT
	AddSpace   bool      // sprinkle white space through the sequences
}

// item is one sequence on its way to the writer.
type item struct {
	n     int
	s     []byte
	score []float64
	at    int // where the motif went
}

// getseq returns a byte slice with a random sequence in it and
// room for some white space.
func getseq(seqlen int, alphabet string, rnd *rand.Rand) []byte {
	space := seqlen + (seqlen / nPadWhite) // about 10% rubbish white space
	ret := make([]byte, seqlen, space)
	l := len(alphabet)
	for i := 0; i < seqlen; i++ {
		ret[i] = alphabet[rnd.Intn(l)]
	}
	return ret
}

// getscores is background noise in [-0.1, 0.1).
func getscores(seqlen int, rnd *rand.Rand) []float64 {
	ret := make([]float64, seqlen)
	for i := range ret {
		ret[i] = rnd.Float64()*0.2 - 0.1
	}
	return ret
}

// addInner is used by addspace to add a space or newline
func addInner(s []byte, n int, c byte, spacernd *rand.Rand) []byte {
	for i := 0; i < n; i++ {
		s = append(s, 0)
		pos := spacernd.Intn(len(s))
		copy(s[pos+1:], s[pos:])
		s[pos] = c
	}
	return s
}

// addspace is given a byte array and adds white characters at random
// positions. We work out how much space is to be used. We flip a coin.
// Heads we don't add a newline. Tails we make about 1/10 (integer 1/9)
// of the spaces to be newlines.
func addspace(s []byte, spacernd *rand.Rand) []byte {
	toAdd := cap(s) - len(s)
	nNL := 0 // Number of new lines to add
	if spacernd.Intn(2) == 0 {
		nNL = toAdd / 9
	}
	s = addInner(s, toAdd-nNL, ' ', spacernd)
	s = addInner(s, nNL, '\n', spacernd)
	return s
}

// ID is the identifier written for sequence n of nseq, counting from 1.
func ID(n, nseq int) string {
	width := len(strconv.Itoa(nseq))
	return fmt.Sprintf("seq%0*d", width, n)
}

// writeseq takes items from the channel, writes the fasta and, if
// asked, the scores. The first error is kept and the rest of the
// channel is drained.
func writeseq(sChan <-chan item, args *RandSeqArgs, wg *sync.WaitGroup, errp *error) {
	defer wg.Done()
	spacernd := rand.New(rand.NewSource(args.Iseed))
	sw := bufio.NewWriter(args.SeqWrtr)
	var scw *bufio.Writer
	if args.ScoreWrtr != nil && !args.Npy {
		scw = bufio.NewWriter(args.ScoreWrtr)
	}
	var rows [][]float64 // only for npy, which needs its shape first
	tbl := scores.Table{IDs: make([]string, 1), Rows: make([][]float64, 1)}
	for it := range sChan {
		if *errp != nil {
			continue
		}
		id := ID(it.n, args.Nseq)
		fmt.Fprintf(sw, ">%s %s motif at %d\n", id, args.Cmmt, it.at)
		s := it.s
		if args.AddSpace {
			s = addspace(s, spacernd)
		}
		sw.Write(s)
		if _, err := sw.Write([]byte{'\n'}); err != nil {
			*errp = err
			continue
		}
		switch {
		case args.ScoreWrtr == nil:
		case args.Npy:
			rows = append(rows, it.score)
		default:
			tbl.IDs[0], tbl.Rows[0] = id, it.score
			if err := scores.WriteTSV(scw, &tbl); err != nil {
				*errp = err
			}
		}
	}
	if *errp != nil {
		return
	}
	if err := sw.Flush(); err != nil {
		*errp = err
		return
	}
	switch {
	case args.ScoreWrtr == nil:
	case args.Npy:
		*errp = scores.WriteNpy(args.ScoreWrtr, rows)
	default:
		*errp = scw.Flush()
	}
}

func (args *RandSeqArgs) check() error {
	switch {
	case args.SeqWrtr == nil:
		return fmt.Errorf("%w: nowhere to write sequences", ErrArgs)
	case args.Nseq < 1 || args.Len < 1:
		return fmt.Errorf("%w: %d sequences of length %d", ErrArgs, args.Nseq, args.Len)
	case len(args.Motif) > args.Len:
		return fmt.Errorf("%w: motif %s longer than the sequences", ErrArgs, args.Motif)
	}
	return nil
}

// RandSeqMain writes random sequences, and maybe their scores.
func RandSeqMain(args *RandSeqArgs) error {
	if err := args.check(); err != nil {
		return err
	}
	alphabet := args.Alphabet
	if alphabet == "" {
		alphabet = seq.DNA
	}
	var wg sync.WaitGroup
	var werr error
	rnd := rand.New(rand.NewSource(args.Iseed))
	sChan := make(chan item)
	wg.Add(1)
	go writeseq(sChan, args, &wg, &werr)
	for i := 0; i < args.Nseq; i++ {
		it := item{n: i + 1, s: getseq(args.Len, alphabet, rnd), score: getscores(args.Len, rnd), at: -1}
		if args.Motif != "" {
			it.at = rnd.Intn(args.Len - len(args.Motif) + 1)
			copy(it.s[it.at:], args.Motif)
			for j := range args.Motif {
				it.score[it.at+j] = args.MotifScore
			}
		}
		sChan <- it
	}
	close(sChan)
	wg.Wait()
	return werr
}
