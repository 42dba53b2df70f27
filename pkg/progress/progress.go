// Package progress puts a counting bar on stderr for the long loops in
// the commands.
package progress

import (
	"io"
	"os"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

// Bar counts up to a total. A nil *Bar does nothing, so quiet callers
// need no special cases.
type Bar struct {
	pbs *mpb.Progress
	bar *mpb.Bar
}

// New starts a bar called name on stderr. If quiet, it returns nil.
func New(name string, total int, quiet bool) *Bar {
	if quiet {
		return nil
	}
	return NewTo(os.Stderr, name, total)
}

// NewTo is New, writing to w.
func NewTo(w io.Writer, name string, total int) *Bar {
	pbs := mpb.New(mpb.WithWidth(40), mpb.WithOutput(w))
	bar := pbs.AddBar(int64(total),
		mpb.PrependDecorators(
			decor.Name(name, decor.WC{W: len(name) + 1, C: decor.DindentRight}),
			decor.CountersNoUnit("%d / %d", decor.WCSyncWidth),
		),
		mpb.AppendDecorators(
			decor.Name("ETA: ", decor.WC{W: len("ETA: ")}),
			decor.AverageETA(decor.ET_STYLE_GO),
			decor.OnComplete(decor.Name(""), ". done"),
		),
	)
	return &Bar{pbs: pbs, bar: bar}
}

// Incr adds one. It is safe from many goroutines.
func (b *Bar) Incr() {
	if b != nil {
		b.bar.Increment()
	}
}

// Done waits for the bar to be drawn for the last time. If the loop
// stopped early, the bar is abandoned, otherwise Wait would never
// return.
func (b *Bar) Done(failed bool) {
	if b == nil {
		return
	}
	if failed || !b.bar.Completed() {
		b.bar.Abort(false)
	}
	b.pbs.Wait()
}
