package server

import (
	"testing"

	"github.com/shapestone/shape-httpd/pkg/config"
	"github.com/shapestone/shape-httpd/pkg/http"
)

func newRequest(t *testing.T, head string) *http.Request {
	t.Helper()
	req, err := http.ParseRequestHead([]byte(head))
	if err != nil {
		t.Fatalf("ParseRequestHead(%q) error = %v", head, err)
	}
	return req
}

func TestResolver_Resolve(t *testing.T) {
	r := NewResolver([]config.VirtualHost{
		{Hostname: "example.com", Root: "/srv/a"},
		{Hostname: "[::1]", Root: "/srv/v6"},
		{Hostname: "example.com", Root: "/srv/shadowed"},
	})

	tests := []struct {
		name       string
		head       string
		wantStatus int
		wantRoot   string
		wantHost   string
		wantPath   string
		wantQuery  string
	}{
		{"host header", "GET /index.html HTTP/1.1\r\nHost: example.com", 0, "/srv/a", "example.com", "/index.html", ""},
		{"host header with port", "GET / HTTP/1.1\r\nHost: example.com:8080", 0, "/srv/a", "example.com", "/", ""},
		{"query split", "GET /a/b?x=1&y=2 HTTP/1.1\r\nHost: example.com", 0, "/srv/a", "example.com", "/a/b", "x=1&y=2"},
		{"last host wins", "GET / HTTP/1.1\r\nHost: other.org\r\nHost: example.com", 0, "/srv/a", "example.com", "/", ""},
		{"absolute uri", "GET http://example.com/x.txt HTTP/1.1", 0, "/srv/a", "example.com", "/x.txt", ""},
		{"absolute uri with port", "GET http://example.com:81/x HTTP/1.1\r\nHost: other.org", 0, "/srv/a", "example.com", "/x", ""},
		{"absolute uri no path", "GET http://example.com HTTP/1.1", 0, "/srv/a", "example.com", "/", ""},
		{"absolute uri query no path", "GET http://example.com?q=1 HTTP/1.1", 0, "/srv/a", "example.com", "/", "q=1"},
		{"absolute uri empty authority", "GET http:///x HTTP/1.1\r\nHost: example.com", 0, "/srv/a", "example.com", "/x", ""},
		{"ipv6 literal", "GET / HTTP/1.1\r\nHost: [::1]:8080", 0, "/srv/v6", "[::1]", "/", ""},
		{"ipv6 literal no port", "GET / HTTP/1.1\r\nHost: [::1]", 0, "/srv/v6", "[::1]", "/", ""},
		{"unknown host", "GET / HTTP/1.1\r\nHost: nowhere.net", http.StatusNotFound, "", "nowhere.net", "/", ""},
		{"case sensitive", "GET / HTTP/1.1\r\nHost: EXAMPLE.com", http.StatusNotFound, "", "EXAMPLE.com", "/", ""},
		{"missing host", "GET / HTTP/1.1", http.StatusBadRequest, "", "", "", ""},
		{"empty host", "GET / HTTP/1.1\r\nHost: :80", http.StatusBadRequest, "", "", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := newRequest(t, tt.head)
			vh, status := r.Resolve(req)
			if status != tt.wantStatus {
				t.Fatalf("status = %d, want %d", status, tt.wantStatus)
			}
			if req.Host != tt.wantHost {
				t.Errorf("Host = %q, want %q", req.Host, tt.wantHost)
			}
			if req.PathInfo != tt.wantPath {
				t.Errorf("PathInfo = %q, want %q", req.PathInfo, tt.wantPath)
			}
			if req.Query != tt.wantQuery {
				t.Errorf("Query = %q, want %q", req.Query, tt.wantQuery)
			}
			if status != 0 {
				return
			}
			if vh.Root != tt.wantRoot {
				t.Errorf("Root = %q, want %q", vh.Root, tt.wantRoot)
			}
		})
	}
}

func TestStripPort(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"example.com", "example.com"},
		{"example.com:80", "example.com"},
		{"example.com:", "example.com"},
		{"example.com:http", "example.com:http"},
		{"[::1]", "[::1]"},
		{"[::1]:443", "[::1]"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := stripPort(tt.in); got != tt.want {
			t.Errorf("stripPort(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
