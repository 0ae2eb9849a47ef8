// Package http provides the HTTP/1.x wire layer of shape-httpd.
//
// It covers parsed request heads, ordered header storage, the status and
// MIME tables, request-head framing over a byte stream, and response-head
// encoding. It also has a small response decoder for clients and tests.
//
// # Thread Safety
//
// Package-level functions are safe for concurrent use. Request, Headers and
// HeadReader values belong to a single connection goroutine and must not be
// shared without external synchronization.
//
// # Header Order
//
// Headers keeps two properties of the server's header lists:
//
//   - Get returns the value most recently added or set for a key, so a
//     request header that appears twice resolves to its last occurrence.
//   - Iteration yields the most recently introduced key first. Set on a key
//     that is already present updates the value in place and keeps its
//     position.
package http

import (
	"strconv"
	"strings"

	"github.com/shapestone/shape-httpd/internal/fastparser"
)

// Method identifies a request method accepted by the server.
type Method uint8

// Accepted request methods. MethodNone marks a request whose method token was
// not recognized.
const (
	MethodNone    = Method(fastparser.MethodNone)
	MethodGET     = Method(fastparser.MethodGET)
	MethodHEAD    = Method(fastparser.MethodHEAD)
	MethodPOST    = Method(fastparser.MethodPOST)
	MethodOPTIONS = Method(fastparser.MethodOPTIONS)
	MethodPUT     = Method(fastparser.MethodPUT)
	MethodDELETE  = Method(fastparser.MethodDELETE)
	MethodTRACE   = Method(fastparser.MethodTRACE)
	MethodCONNECT = Method(fastparser.MethodCONNECT)
)

// String returns the method token, or "NONE".
func (m Method) String() string { return fastparser.MethodName(uint8(m)) }

// Version identifies an accepted protocol version.
type Version uint8

const (
	VersionNone = Version(fastparser.VersionNone)
	Version11   = Version(fastparser.Version11)
	Version10   = Version(fastparser.Version10)
)

// String returns "HTTP/1.1", "HTTP/1.0" or "".
func (v Version) String() string { return fastparser.VersionName(uint8(v)) }

// Request is one parsed request head. It is scoped to a single request cycle
// on a connection.
type Request struct {
	RawMethod  string  // method token as received
	Method     Method  // MethodNone if RawMethod is not accepted
	URI        string  // request-target as received
	RawVersion string  // version token as received
	Version    Version // VersionNone unless HTTP/1.1 or HTTP/1.0
	Headers    Headers // request header fields

	// Set by virtual host resolution.
	Host     string // resolved host name, port stripped
	PathInfo string // path used for file lookup, without query
	Query    string // text after '?', without the '?'
	CGIPath  string // reserved; never populated

	// Position of the body relative to the start of this request's bytes.
	// BodySize counts only body bytes that arrived with the head.
	BodyOffset int
	BodySize   int
}

// Get returns the value of the request header key, matched exactly.
func (r *Request) Get(key string) string { return r.Headers.Get(key) }

// Close reports whether the client asked to close the connection after
// this response. Only the exact value "close" counts.
func (r *Request) Close() bool { return r.Headers.Get("Connection") == "close" }

// Header is a single header field.
type Header struct {
	Key   string
	Value string
}

// Headers is an ordered header mapping. Keys are compared exactly, without
// case folding. See the package documentation for ordering rules.
//
// Entries are stored oldest first; Range walks them newest first.
type Headers struct {
	entries []Header
}

// Add introduces a new entry for key even if key is already present. The new
// entry shadows older ones for Get.
func (h *Headers) Add(key, value string) {
	h.entries = append(h.entries, Header{Key: key, Value: value})
}

// Set updates the newest entry for key in place, or adds key if absent.
func (h *Headers) Set(key, value string) {
	if i := h.index(key); i >= 0 {
		h.entries[i].Value = value
		return
	}
	h.Add(key, value)
}

// Get returns the newest value for key, or "" if key is absent.
func (h *Headers) Get(key string) string {
	if i := h.index(key); i >= 0 {
		return h.entries[i].Value
	}
	return ""
}

// Has reports whether key is present.
func (h *Headers) Has(key string) bool { return h.index(key) >= 0 }

// Len returns the number of entries.
func (h *Headers) Len() int { return len(h.entries) }

// Range calls fn for each entry, most recently introduced first, until fn
// returns false.
func (h *Headers) Range(fn func(key, value string) bool) {
	for i := len(h.entries) - 1; i >= 0; i-- {
		if !fn(h.entries[i].Key, h.entries[i].Value) {
			return
		}
	}
}

// Reset drops all entries and keeps the storage for reuse.
func (h *Headers) Reset() {
	clear(h.entries)
	h.entries = h.entries[:0]
}

func (h *Headers) index(key string) int {
	for i := len(h.entries) - 1; i >= 0; i-- {
		if h.entries[i].Key == key {
			return i
		}
	}
	return -1
}

// getFold is a case-insensitive Get for message framing fields, where
// clients are not consistent about case.
func (h *Headers) getFold(key string) (string, bool) {
	for i := len(h.entries) - 1; i >= 0; i-- {
		if strings.EqualFold(h.entries[i].Key, key) {
			return h.entries[i].Value, true
		}
	}
	return "", false
}

// ContentLength returns the Content-Length value, or -1 if absent or invalid.
func (h *Headers) ContentLength() int64 {
	v, ok := h.getFold("Content-Length")
	if !ok {
		return -1
	}
	n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	if err != nil || n < 0 {
		return -1
	}
	return n
}

// IsChunked returns true if Transfer-Encoding contains "chunked".
func (h *Headers) IsChunked() bool {
	v, _ := h.getFold("Transfer-Encoding")
	return strings.Contains(strings.ToLower(v), "chunked")
}
