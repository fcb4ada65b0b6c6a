// Package splitter implements the streaming XML and GeoJSON splitters:
// state machines over event.Source + window.Window that turn
// an unbounded byte stream into a sequence of self-contained chunks.
package splitter

import (
	"context"
	"io"

	"github.com/oarkflow/georocket/chunk"
	"github.com/oarkflow/georocket/window"
)

// windowFeeder mirrors every byte read off the underlying stream into the
// Window, so the splitter can later slice out exact chunk byte ranges
// without re-reading the source.
type windowFeeder struct {
	win *window.Window
}

func (f *windowFeeder) Write(p []byte) (int, error) {
	f.win.Feed(p)
	return len(p), nil
}

// teeWindow wraps r so every byte the returned reader yields is also fed
// into win, in read order.
func teeWindow(r io.Reader, win *window.Window) io.Reader {
	return io.TeeReader(r, &windowFeeder{win: win})
}

// Emit sends a chunk downstream, blocking on backpressure until
// either the bounded channel accepts it or ctx is cancelled.
func Emit(ctx context.Context, out chan<- chunk.Chunk, c chunk.Chunk) error {
	select {
	case out <- c:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
