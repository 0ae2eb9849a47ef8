package server

import (
	"strings"

	"github.com/shapestone/shape-httpd/pkg/config"
	"github.com/shapestone/shape-httpd/pkg/http"
)

// Resolver maps requests to virtual hosts by exact host name, in
// configuration order.
type Resolver struct {
	hosts []config.VirtualHost
}

// NewResolver returns a resolver over hosts. The slice is not copied and
// must not be modified afterwards.
func NewResolver(hosts []config.VirtualHost) *Resolver {
	return &Resolver{hosts: hosts}
}

// Lookup returns the first virtual host named name.
func (r *Resolver) Lookup(name string) (*config.VirtualHost, bool) {
	for i := range r.hosts {
		if r.hosts[i].Hostname == name {
			return &r.hosts[i], true
		}
	}
	return nil, false
}

// Resolve fills in req.Host, req.PathInfo and req.Query and returns the
// matching virtual host. The status is 0 on success, 400 when no host name
// can be found and 404 when no virtual host has that name.
//
// For an absolute "http://" URI the host comes from the authority and the
// path defaults to "/"; otherwise it comes from the Host header. A ":port"
// suffix is dropped in both cases.
func (r *Resolver) Resolve(req *http.Request) (*config.VirtualHost, int) {
	host, path := "", req.URI
	if rest, ok := strings.CutPrefix(req.URI, "http://"); ok {
		path = "/"
		if i := strings.IndexAny(rest, "/?"); i >= 0 {
			host, path = rest[:i], rest[i:]
			if path[0] == '?' {
				path = "/" + path
			}
		} else {
			host = rest
		}
	}
	if host == "" {
		host = req.Get("Host")
	}
	host = stripPort(host)
	if host == "" {
		return nil, http.StatusBadRequest
	}

	req.Host = host
	req.PathInfo, req.Query, _ = strings.Cut(path, "?")

	vh, ok := r.Lookup(host)
	if !ok {
		return nil, http.StatusNotFound
	}
	return vh, 0
}

// stripPort removes a trailing ":digits" from host. A colon inside an IPv6
// literal ("[::1]") is left alone.
func stripPort(host string) string {
	i := strings.LastIndexByte(host, ':')
	if i < 0 || strings.IndexByte(host[i:], ']') >= 0 {
		return host
	}
	for _, b := range []byte(host[i+1:]) {
		if b < '0' || b > '9' {
			return host
		}
	}
	return host[:i]
}
