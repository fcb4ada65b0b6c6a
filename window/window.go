// Package window implements the sliding byte buffer the splitters read
// chunk bytes out of. A Window is fed bytes as they arrive from
// the event source and released as chunks are emitted, so the pipeline runs
// in bounded memory regardless of the total input size.
package window

import "fmt"

// Window is a sliding byte buffer addressed by absolute byte offsets into
// the original stream. It is owned by exactly one pipeline instance and is
// never shared.
type Window struct {
	buf      []byte
	base     int64 // absolute offset of buf[0]
	total    int64 // total bytes fed so far
	released int64 // no substring with start < released will be requested again
}

// New returns an empty Window.
func New() *Window {
	return &Window{}
}

// Feed appends bytes to the window.
func (w *Window) Feed(b []byte) {
	w.buf = append(w.buf, b...)
	w.total += int64(len(b))
}

// Len reports the number of bytes currently retained in memory.
func (w *Window) Len() int {
	return len(w.buf)
}

// Total reports the total number of bytes fed so far.
func (w *Window) Total() int64 {
	return w.total
}

// Released reports the current released prefix offset.
func (w *Window) Released() int64 {
	return w.released
}

// Substring returns the bytes in the half-open range [start, end). start
// must be >= the released prefix and end must be <= Total(), or Substring
// panics: both are pipeline programming invariants, never
// caller input.
func (w *Window) Substring(start, end int64) []byte {
	if start < w.released {
		panic(fmt.Sprintf("window: start %d already released (released=%d)", start, w.released))
	}
	if end > w.total {
		panic(fmt.Sprintf("window: end %d beyond fed bytes (total=%d)", end, w.total))
	}
	if end < start {
		panic(fmt.Sprintf("window: end %d before start %d", end, start))
	}
	lo := start - w.base
	hi := end - w.base
	out := make([]byte, hi-lo)
	copy(out, w.buf[lo:hi])
	return out
}

// AdvanceTo declares that no future Substring call will request a byte
// before pos. Bytes strictly before pos may be dropped. Splitters must call
// this after every emitted chunk to bound retained memory.
func (w *Window) AdvanceTo(pos int64) {
	if pos <= w.released {
		return
	}
	if pos > w.total {
		pos = w.total
	}
	drop := pos - w.base
	if drop > int64(len(w.buf)) {
		drop = int64(len(w.buf))
	}
	if drop > 0 {
		w.buf = w.buf[drop:]
		w.base += drop
	}
	w.released = pos
}
