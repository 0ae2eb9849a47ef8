package http

import (
	"github.com/shapestone/shape-httpd/internal/fastparser"
)

// ParseRequestHead parses a request header block as returned by
// HeadReader.ReadHead, without the terminating CRLF CRLF.
//
// The returned Request is never nil. When the head is rejected the error is
// a *ParseError carrying the status to answer with, and the Request holds
// whatever was parsed before the problem. Header fields parsed before a bad
// header line stay valid, so Close can still be honored.
func ParseRequestHead(head []byte) (*Request, error) {
	fp := fastparser.ParseRequestHead(head)
	req := &Request{
		RawMethod:  fp.Method,
		Method:     Method(fp.MethodCode),
		URI:        fp.URI,
		RawVersion: fp.Version,
		Version:    Version(fp.VersionCode),
		BodyOffset: len(head) + len(headEnd),
	}
	for _, h := range fp.Headers {
		req.Headers.Add(h.Key, h.Value)
	}
	if fp.Status != fastparser.StatusOK {
		return req, &ParseError{Status: fp.Status, Message: fp.Message, Line: fp.Line}
	}
	return req, nil
}
