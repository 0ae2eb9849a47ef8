package server

import (
	"io"
	"time"

	"github.com/shapestone/shape-httpd/internal/arena"
	"github.com/shapestone/shape-httpd/pkg/http"
)

// DateFormat is the RFC 1123 layout of the Date header, always in GMT.
const DateFormat = "Mon, 02 Jan 2006 15:04:05 GMT"

// Response accumulates the status and headers of one request cycle and
// writes them to the connection.
//
// Header values are formatted into the request arena, so a Response must be
// reset before that arena is released.
type Response struct {
	Status int
	Close  bool // send Connection: close

	w          io.Writer
	arena      *arena.Arena
	req        *http.Request
	serverName string
	now        func() time.Time

	headers http.Headers
	written int64
}

func newResponse(w io.Writer, a *arena.Arena, serverName string, now func() time.Time) *Response {
	return &Response{w: w, arena: a, serverName: serverName, now: now}
}

// reset prepares the response for the next request cycle.
func (r *Response) reset(req *http.Request) {
	r.Status = 0
	r.Close = false
	r.req = req
	r.headers.Reset()
	r.written = 0
}

// Set formats a header value into the request arena and stores it under
// key. An existing key keeps its position; a new key is emitted ahead of
// the keys set before it.
func (r *Response) Set(key, format string, args ...any) {
	r.headers.Set(key, r.arena.Sprintf(format, args...))
}

// Get looks key up in the request headers, not the response headers.
func (r *Response) Get(key string) string {
	if r.req == nil {
		return ""
	}
	return r.req.Get(key)
}

// Header returns a response header value.
func (r *Response) Header(key string) string { return r.headers.Get(key) }

// Headers returns the accumulated response headers.
func (r *Response) Headers() *http.Headers { return &r.headers }

// Written returns the number of bytes written in this cycle.
func (r *Response) Written() int64 { return r.written }

// Send writes the status line and headers. An unknown status is replaced by
// 500 once. Connection, Date and Server are set last so they are emitted
// first.
func (r *Response) Send() error {
	reason := r.reason()
	if r.Close {
		r.Set("Connection", "close")
	}
	r.Set("Date", "%s", r.now().UTC().Format(DateFormat))
	r.Set("Server", "%s", r.serverName)

	n, err := http.WriteResponseHead(r.w, r.Status, reason, &r.headers)
	r.written += int64(n)
	return err
}

// SendError writes an error response whose body is the reason phrase in an
// <h1> element. 101 and 505 also carry Upgrade: HTTP/1.1. Responses to HEAD
// get the headers only.
func (r *Response) SendError() error {
	reason := r.reason()
	if r.Status == http.StatusSwitchingProtocols || r.Status == http.StatusHTTPVersionNotSupported {
		r.Set("Upgrade", "HTTP/1.1")
	}
	body := r.arena.Sprintf("<h1>%s</h1>", reason)
	r.Set("Content-Length", "%d", len(body))
	if err := r.Send(); err != nil {
		return err
	}
	if r.req != nil && r.req.Method == http.MethodHEAD {
		return nil
	}
	_, err := io.WriteString(r, body)
	return err
}

// Write writes body bytes and counts them.
func (r *Response) Write(p []byte) (int, error) {
	n, err := r.w.Write(p)
	r.written += int64(n)
	return n, err
}

// reason returns the reason phrase for Status, falling back to 500.
func (r *Response) reason() string {
	if reason, ok := http.StatusText(r.Status); ok {
		return reason
	}
	r.Status = http.StatusInternalServerError
	reason, _ := http.StatusText(r.Status)
	return reason
}
