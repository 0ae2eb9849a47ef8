package http

import (
	"testing"
)

func collect(h *Headers) []Header {
	var out []Header
	h.Range(func(key, value string) bool {
		out = append(out, Header{Key: key, Value: value})
		return true
	})
	return out
}

func TestHeaders_GetLastOccurrenceWins(t *testing.T) {
	var h Headers
	h.Add("X-A", "1")
	h.Add("Host", "example.com")
	h.Add("X-A", "2")

	if got := h.Get("X-A"); got != "2" {
		t.Errorf("Get(X-A) = %q, want 2", got)
	}
	if got := h.Get("Host"); got != "example.com" {
		t.Errorf("Get(Host) = %q, want example.com", got)
	}
	if h.Len() != 3 {
		t.Errorf("Len() = %d, want 3", h.Len())
	}
}

func TestHeaders_GetIsExact(t *testing.T) {
	var h Headers
	h.Add("Connection", "close")

	tests := []struct {
		key  string
		want string
	}{
		{"Connection", "close"},
		{"connection", ""},
		{"CONNECTION", ""},
		{"X-Missing", ""},
	}

	for _, tt := range tests {
		if got := h.Get(tt.key); got != tt.want {
			t.Errorf("Get(%q) = %q, want %q", tt.key, got, tt.want)
		}
	}
}

func TestHeaders_SetInsertsAtFrontAndUpdatesInPlace(t *testing.T) {
	var h Headers
	h.Set("Content-Length", "5")
	h.Set("Content-Type", "text/plain")
	h.Set("Etag", "51700000000")
	h.Set("Content-Length", "7")
	h.Set("Date", "now")

	want := []Header{
		{Key: "Date", Value: "now"},
		{Key: "Etag", Value: "51700000000"},
		{Key: "Content-Type", Value: "text/plain"},
		{Key: "Content-Length", Value: "7"},
	}
	got := collect(&h)
	if len(got) != len(want) {
		t.Fatalf("Range yielded %d headers, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("header[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestHeaders_RangeStops(t *testing.T) {
	var h Headers
	h.Add("A", "1")
	h.Add("B", "2")

	n := 0
	h.Range(func(key, value string) bool {
		n++
		return false
	})
	if n != 1 {
		t.Errorf("Range visited %d entries, want 1", n)
	}
}

func TestHeaders_Reset(t *testing.T) {
	var h Headers
	h.Add("A", "1")
	h.Reset()
	if h.Len() != 0 || h.Has("A") {
		t.Errorf("after Reset Len() = %d, Has(A) = %v", h.Len(), h.Has("A"))
	}
}

func TestHeaders_ContentLength(t *testing.T) {
	tests := []struct {
		value string
		want  int64
	}{
		{"11", 11},
		{" 0 ", 0},
		{"abc", -1},
		{"-4", -1},
	}

	for _, tt := range tests {
		var h Headers
		h.Add("content-length", tt.value)
		if got := h.ContentLength(); got != tt.want {
			t.Errorf("ContentLength(%q) = %d, want %d", tt.value, got, tt.want)
		}
	}

	var empty Headers
	if got := empty.ContentLength(); got != -1 {
		t.Errorf("ContentLength() on empty = %d, want -1", got)
	}
}

func TestHeaders_IsChunked(t *testing.T) {
	var h Headers
	h.Add("Transfer-Encoding", "gzip, Chunked")
	if !h.IsChunked() {
		t.Error("IsChunked() = false, want true")
	}
}

func TestRequest_Close(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"close", true},
		{"Close", false},
		{"keep-alive", false},
		{"", false},
	}

	for _, tt := range tests {
		req := &Request{}
		if tt.value != "" {
			req.Headers.Add("Connection", tt.value)
		}
		if got := req.Close(); got != tt.want {
			t.Errorf("Close() with %q = %v, want %v", tt.value, got, tt.want)
		}
	}
}

func TestMethodAndVersionStrings(t *testing.T) {
	if MethodHEAD.String() != "HEAD" {
		t.Errorf("MethodHEAD.String() = %q", MethodHEAD.String())
	}
	if MethodNone.String() != "NONE" {
		t.Errorf("MethodNone.String() = %q", MethodNone.String())
	}
	if Version10.String() != "HTTP/1.0" {
		t.Errorf("Version10.String() = %q", Version10.String())
	}
	if VersionNone.String() != "" {
		t.Errorf("VersionNone.String() = %q", VersionNone.String())
	}
}
