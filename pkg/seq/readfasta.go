// Reader for fasta format files.

package seq

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/andrew-torda/metamotif/pkg/white"
)

// An item is terminated by a newline if we are in a comment or a comment
// character ">" if we are in a sequence.
const (
	NL       = '\n'
	cmmtChar = '>'
)

var ErrNoSeqs = errors.New("no sequences found")

type item struct {
	data     []byte
	complete bool
}

type lexer struct {
	input    []byte
	ichan    chan *item
	done     chan struct{}
	rdr      io.Reader
	itempool sync.Pool
	recs     []Record
	cmmt     string // partial comment
	seq      []byte // partial sequence
	pending  bool   // have a comment, waiting for its sequence
	term     byte
	rdErr    error // only set by next(), read after ichan is closed
	err      error
}

const defaultReadSize = 4 * 1024

var rdsize int = defaultReadSize

// setFastaRdSize is only used during testing and benchmarking
func setFastaRdSize(i int) {
	if i < 1 {
		panic("setFastaRdSize given buffer length less than 1")
	}
	rdsize = i
}

func newItem() interface{} { return new(item) }

// send passes an item on unless the reader has given up.
func (l *lexer) send(it *item) bool {
	select {
	case l.ichan <- it:
		return true
	case <-l.done:
		return false
	}
}

// next reads from the input and sends an item to channel, ichan.
// An item is terminated by l.term, or the end of the buffer.
// At the end of input, it sends an empty, complete item and closes
// the channel.
func (l *lexer) next() {
	defer close(l.ichan)
	for {
		item := l.itempool.Get().(*item)
		if len(l.input) == 0 {
			buf := make([]byte, rdsize)
			n, err := l.rdr.Read(buf)
			if n == 0 {
				if err == nil {
					l.itempool.Put(item)
					continue
				}
				if err != io.EOF {
					l.rdErr = err // signal that a real error occurred.
				}
				item.data = nil
				item.complete = true
				l.send(item) // we have to flush
				return
			}
			l.input = buf[:n]
		}

		if ndx := bytes.IndexByte(l.input, l.term); ndx == -1 {
			item.data = l.input // no terminator found, so just send
			l.input = nil       // back whatever we have in the buffer.
			item.complete = false
		} else { //                                We did find a terminator
			item.data = l.input[:ndx]
			item.complete = true
			l.input = l.input[ndx+1:] //           Set up for next loop
			if l.term == NL {
				l.term = cmmtChar
			} else {
				l.term = NL
			}
		}
		if !l.send(item) {
			return
		}
	}
}

type stateFn func(*lexer) stateFn

// gstart is anything before the first ">". Only white space is allowed.
func gstart(l *lexer) stateFn {
	item := <-l.ichan
	if item == nil {
		return nil
	}
	defer l.itempool.Put(item)
	if white.Remove(&item.data); len(item.data) != 0 {
		l.err = fmt.Errorf("not fasta, file starts with \"%s\"", trimStr(string(item.data), 20))
		return nil
	}
	if item.complete {
		return gcmmt
	}
	return gstart
}

// We are reading a sequence
func gseq(l *lexer) stateFn {
	item := <-l.ichan
	if item == nil {
		if l.pending {
			l.err = fmt.Errorf("zero length sequence after \"%s\"", l.cmmt)
		}
		return nil
	}
	defer l.itempool.Put(item)

	white.Remove(&item.data)
	l.seq = append(l.seq, item.data...)
	if item.complete {
		if len(l.seq) == 0 {
			l.err = fmt.Errorf("zero length sequence after \"%s\"", l.cmmt)
			return nil
		}
		l.recs = append(l.recs, Record{Cmmt: l.cmmt, Seq: l.seq})
		l.cmmt = ""
		l.seq = nil
		l.pending = false
		return gcmmt
	}
	return gseq
}

// We are reading a comment
func gcmmt(l *lexer) stateFn {
	item := <-l.ichan
	if item == nil {
		return nil
	}
	defer l.itempool.Put(item)

	l.cmmt = l.cmmt + string(item.data)
	if item.complete {
		l.cmmt = strings.TrimSpace(l.cmmt)
		l.pending = true
		return gseq
	}
	return gcmmt
}

// ReadFasta reads fasta formatted sequences. White space in sequences
// is removed. Case is left alone.
func ReadFasta(rdr io.Reader) ([]Record, error) {
	l := lexer{
		rdr:   rdr,
		ichan: make(chan *item, 2),
		done:  make(chan struct{}),
		term:  cmmtChar,
	}
	l.itempool.New = newItem

	go l.next()
	for state := gstart; state != nil; {
		state = state(&l)
	}
	close(l.done)
	for range l.ichan { // let next() finish before looking at rdErr
	}
	if l.rdErr != nil {
		return nil, l.rdErr
	}
	if l.err != nil {
		return nil, l.err
	}
	if len(l.recs) == 0 {
		return nil, ErrNoSeqs
	}
	return l.recs, nil
}
