package http

import (
	"strings"
	"testing"
)

func TestReadResponse_WithBody(t *testing.T) {
	data := "HTTP/1.1 200 OK\r\nContent-Type: text/plain\r\nContent-Length: 5\r\n\r\nHello"
	resp, err := ReadResponse(NewHeadReader(strings.NewReader(data), nil), "GET")
	if err != nil {
		t.Fatalf("ReadResponse() error = %v", err)
	}

	if resp.Version != "HTTP/1.1" {
		t.Errorf("Version = %q, want HTTP/1.1", resp.Version)
	}
	if resp.StatusCode != 200 {
		t.Errorf("StatusCode = %d, want 200", resp.StatusCode)
	}
	if resp.Reason != "OK" {
		t.Errorf("Reason = %q, want OK", resp.Reason)
	}
	if string(resp.Body) != "Hello" {
		t.Errorf("Body = %q, want Hello", string(resp.Body))
	}
}

func TestReadResponse_HeadAndNotModifiedHaveNoBody(t *testing.T) {
	data := "HTTP/1.1 200 OK\r\nContent-Length: 5\r\n\r\n" +
		"HTTP/1.1 304 Not Modified\r\nContent-Length: 5\r\n\r\n" +
		"HTTP/1.1 404 Not Found\r\nContent-Length: 3\r\n\r\nnope"
	hr := NewHeadReader(strings.NewReader(data), nil)

	resp, err := ReadResponse(hr, "HEAD")
	if err != nil || resp.Body != nil {
		t.Fatalf("HEAD response = %+v, %v", resp, err)
	}
	resp, err = ReadResponse(hr, "GET")
	if err != nil || resp.StatusCode != 304 || resp.Body != nil {
		t.Fatalf("304 response = %+v, %v", resp, err)
	}
	resp, err = ReadResponse(hr, "GET")
	if err != nil {
		t.Fatalf("ReadResponse() error = %v", err)
	}
	if string(resp.Body) != "nop" {
		t.Errorf("Body = %q, want nop", resp.Body)
	}
}

func TestReadResponse_TruncatedBody(t *testing.T) {
	data := "HTTP/1.1 200 OK\r\nContent-Length: 10\r\n\r\nshort"
	if _, err := ReadResponse(NewHeadReader(strings.NewReader(data), nil), "GET"); err == nil {
		t.Error("ReadResponse() error = nil, want error")
	}
}
