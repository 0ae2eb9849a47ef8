// Package arena groups the resources of one connection or one request so
// they can be released together.
//
// An Arena is push-only: buffers, open files and cleanup functions are
// registered as they are acquired and released as a unit by Release, in
// reverse order of registration. Each entry is released exactly once no
// matter how many times Release is called. After Release the arena is empty
// and can be used again, which is how the per-request arena is recycled
// between request cycles.
//
// Buffers come from size-class pools and go back to them on release. Memory
// handed out by an arena must not be used after the arena is released.
package arena

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"unsafe"
)

// Buffer size classes.
const (
	Size1K  = 1 << 10
	Size8K  = 8 << 10
	Size64K = 64 << 10
)

var ( // pools
	pool1K  sync.Pool
	pool8K  sync.Pool
	pool64K sync.Pool
)

func getN(pool *sync.Pool, size int) []byte {
	if x := pool.Get(); x != nil {
		return *(x.(*[]byte))
	}
	return make([]byte, size)
}

func putN(p []byte) {
	p = p[:cap(p)]
	switch cap(p) {
	case Size1K:
		pool1K.Put(&p)
	case Size8K:
		pool8K.Put(&p)
	case Size64K:
		pool64K.Put(&p)
	}
}

type kind uint8

const (
	kindBuffer kind = iota
	kindCloser
	kindFunc
)

type entry struct {
	kind   kind
	buf    []byte
	closer io.Closer
	fn     func()
}

// Arena is a push-only set of releasable entries. The zero value is ready to
// use. An Arena is not safe for concurrent use.
type Arena struct {
	entries []entry
	text    []byte // scratch space for Sprintf, owned by an entry
}

// New returns an empty arena with room for n entries.
func New(n int) *Arena {
	return &Arena{entries: make([]entry, 0, n)}
}

// Buffer returns a pooled buffer of length n. Requests larger than the
// biggest size class are served from the heap and are not pooled.
func (a *Arena) Buffer(n int) []byte {
	var p []byte
	switch {
	case n <= Size1K:
		p = getN(&pool1K, Size1K)
	case n <= Size8K:
		p = getN(&pool8K, Size8K)
	case n <= Size64K:
		p = getN(&pool64K, Size64K)
	default:
		return make([]byte, n)
	}
	a.entries = append(a.entries, entry{kind: kindBuffer, buf: p})
	return p[:n]
}

// Track registers c to be closed on Release.
func (a *Arena) Track(c io.Closer) {
	if c == nil {
		return
	}
	a.entries = append(a.entries, entry{kind: kindCloser, closer: c})
}

// Defer registers fn to run on Release.
func (a *Arena) Defer(fn func()) {
	if fn == nil {
		return
	}
	a.entries = append(a.entries, entry{kind: kindFunc, fn: fn})
}

// Sprintf formats into arena memory. The returned string is valid until the
// arena is released.
func (a *Arena) Sprintf(format string, args ...any) string {
	if a.text == nil {
		a.text = a.Buffer(Size1K)[:0]
	}
	n := len(a.text)
	out := fmt.Appendf(a.text, format, args...)
	if cap(out) != cap(a.text) {
		// Did not fit. out lives on the heap; the scratch buffer keeps its
		// previous contents.
		return string(out[n:])
	}
	a.text = out
	s := out[n:]
	return unsafe.String(unsafe.SliceData(s), len(s))
}

// Len returns the number of registered entries.
func (a *Arena) Len() int { return len(a.entries) }

// Release releases every entry in reverse order of registration and empties
// the arena. Errors from closers are joined. Calling Release on an empty arena
// is a no-op.
func (a *Arena) Release() error {
	var errs []error
	for i := len(a.entries) - 1; i >= 0; i-- {
		e := &a.entries[i]
		switch e.kind {
		case kindBuffer:
			putN(e.buf)
		case kindCloser:
			if err := e.closer.Close(); err != nil {
				errs = append(errs, err)
			}
		case kindFunc:
			e.fn()
		}
		*e = entry{}
	}
	a.entries = a.entries[:0]
	a.text = nil
	return errors.Join(errs...)
}
