package http

import (
	"bytes"
	"errors"
	"testing"
)

func TestAppendResponseHead(t *testing.T) {
	var h Headers
	h.Set("Content-Length", "5")
	h.Set("Content-Type", "text/html")
	h.Set("Server", "shape-httpd/1.0")

	got := string(AppendResponseHead(nil, 200, "OK", &h))
	want := "HTTP/1.1 200 OK\r\n" +
		"Server: shape-httpd/1.0\r\n" +
		"Content-Type: text/html\r\n" +
		"Content-Length: 5\r\n" +
		"\r\n"
	if got != want {
		t.Errorf("AppendResponseHead() =\n%q\nwant\n%q", got, want)
	}
}

func TestAppendResponseHead_NoHeaders(t *testing.T) {
	var h Headers
	got := string(AppendResponseHead(nil, 404, "Not Found", &h))
	if got != "HTTP/1.1 404 Not Found\r\n\r\n" {
		t.Errorf("AppendResponseHead() = %q", got)
	}
}

func TestWriteResponseHead(t *testing.T) {
	var h Headers
	h.Set("Etag", "5121700000000")

	var buf bytes.Buffer
	n, err := WriteResponseHead(&buf, 304, "Not Modified", &h)
	if err != nil {
		t.Fatalf("WriteResponseHead() error = %v", err)
	}
	if n != buf.Len() {
		t.Errorf("n = %d, want %d", n, buf.Len())
	}
	if buf.String() != "HTTP/1.1 304 Not Modified\r\nEtag: 5121700000000\r\n\r\n" {
		t.Errorf("output = %q", buf.String())
	}
}

type failWriter struct{}

func (failWriter) Write(p []byte) (int, error) { return 0, errors.New("broken pipe") }

func TestWriteResponseHead_WriteError(t *testing.T) {
	var h Headers
	if _, err := WriteResponseHead(failWriter{}, 200, "OK", &h); err == nil {
		t.Error("WriteResponseHead() error = nil, want error")
	}
}
