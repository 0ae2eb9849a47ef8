package http

import (
	"bytes"
	"testing"
)

var simpleHead = []byte("GET /api/users HTTP/1.1\r\nHost: example.com\r\nAccept: application/json\r\nUser-Agent: shape-httpd/1.0")

var pipelinedStream = bytes.Repeat([]byte("GET /index.html HTTP/1.1\r\nHost: example.com\r\nAccept: */*\r\n\r\n"), 64)

func BenchmarkParseRequestHead(b *testing.B) {
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := ParseRequestHead(simpleHead); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkHeadReader_Pipelined(b *testing.B) {
	buf := make([]byte, 0, ReadSize)
	b.ReportAllocs()
	b.SetBytes(int64(len(pipelinedStream)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		hr := NewHeadReader(bytes.NewReader(pipelinedStream), buf)
		for {
			if _, err := hr.ReadHead(); err != nil {
				break
			}
		}
	}
}

func BenchmarkWriteResponseHead(b *testing.B) {
	var h Headers
	h.Set("Content-Length", "1024")
	h.Set("Content-Type", "text/html")
	h.Set("Etag", "10241700000000")
	h.Set("Date", "Mon, 02 Jan 2006 15:04:05 GMT")
	h.Set("Server", "shape-httpd/1.0")
	var out bytes.Buffer

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		out.Reset()
		if _, err := WriteResponseHead(&out, 200, "OK", &h); err != nil {
			b.Fatal(err)
		}
	}
}
