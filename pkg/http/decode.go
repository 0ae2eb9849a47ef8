package http

import (
	"fmt"
	"io"

	"github.com/shapestone/shape-httpd/internal/fastparser"
)

// Response is a response read back from the wire by ReadResponse, for
// clients and tests.
type Response struct {
	Version    string  // "HTTP/1.1"
	StatusCode int     // 200, 404, etc.
	Reason     string  // "OK", "Not Found"
	Headers    Headers // in the order received; Get returns the last occurrence
	Body       []byte  // raw body (nil if none)
}

// ReadResponse reads the next response from hr. It is the client side of
// the wire format: the server never calls it. Tests and clients use it to
// read back what a server wrote.
//
// method is the method of the request being answered: responses to HEAD,
// and 304 responses, have no body whatever their Content-Length says. Other
// bodies are framed by Content-Length; without it the response has no body.
func ReadResponse(hr *HeadReader, method string) (*Response, error) {
	head, err := hr.ReadHead()
	if err != nil {
		return nil, fmt.Errorf("http: read response: %w", err)
	}
	fp, err := fastparser.ParseResponseHead(head)
	if err != nil {
		return nil, err
	}

	resp := &Response{
		Version:    fp.Version,
		StatusCode: fp.StatusCode,
		Reason:     fp.Reason,
	}
	for _, h := range fp.Headers {
		resp.Headers.Add(h.Key, h.Value)
	}

	if method == "HEAD" || resp.StatusCode == StatusNotModified {
		return resp, nil
	}
	if cl := resp.Headers.ContentLength(); cl > 0 {
		resp.Body = make([]byte, cl)
		if _, err := io.ReadFull(hr, resp.Body); err != nil {
			return nil, fmt.Errorf("http: read response body: %w", err)
		}
	}
	return resp, nil
}
