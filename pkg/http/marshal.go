package http

import (
	"io"
	"sync"
)

// bufPool pools []byte slices for the encoder fast path.
var bufPool = sync.Pool{
	New: func() interface{} {
		b := make([]byte, 0, 2048)
		return &b
	},
}

// WriteResponseHead encodes a response head into a pooled buffer and writes
// it to w with a single Write call.
func WriteResponseHead(w io.Writer, statusCode int, reason string, headers *Headers) (int, error) {
	bp := bufPool.Get().(*[]byte)
	buf := AppendResponseHead((*bp)[:0], statusCode, reason, headers)
	n, err := w.Write(buf)
	*bp = buf
	bufPool.Put(bp)
	return n, err
}
