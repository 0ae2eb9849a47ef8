// Package fastparser implements the byte-scanning HTTP/1.x head parser used
// by the server. It works on a header block that has already been framed
// (everything before the first CRLF CRLF) and never allocates an AST.
//
// Request heads are not rejected with an error. Parsing stops at the first
// problem and records the HTTP status the server must answer with.
package fastparser

import (
	"bytes"
	"fmt"
	"strconv"
)

// Status codes produced by request parsing.
const (
	StatusOK                      = 0
	StatusSwitchingProtocols      = 101
	StatusBadRequest              = 400
	StatusHTTPVersionNotSupported = 505
)

// Request is the result of parsing one request head.
type Request struct {
	Method      string
	MethodCode  uint8
	URI         string
	Version     string
	VersionCode uint8
	Headers     []Header // in arrival order

	Status  int    // StatusOK, or the error status to respond with
	Message string // why Status is not StatusOK
	Line    int    // 1-indexed line of the problem
}

// Response represents a parsed HTTP response head.
type Response struct {
	Version    string
	StatusCode int
	Reason     string
	Headers    []Header
}

// Header is a key-value pair.
type Header struct {
	Key   string
	Value string
}

var (
	crlf      = []byte("\r\n")
	fieldSep  = []byte(": ")
	httpSlash = []byte("HTTP/")
	httpURI   = []byte("http://")
)

// Parser walks a header block line by line. Lines are separated by CRLF only.
type Parser struct {
	data   []byte
	pos    int
	length int
	line   int // 1-indexed line number for error reporting
}

// initParser initializes a parser in-place (stack-friendly, avoids heap alloc).
func initParser(p *Parser, data []byte) {
	p.data = data
	p.pos = 0
	p.length = len(data)
	p.line = 0
}

// ParseRequestHead parses a request header block. The returned Request is
// never nil; when Status is not StatusOK the fields parsed before the
// problem are kept.
func ParseRequestHead(head []byte) *Request {
	var p Parser
	initParser(&p, head)
	return p.ParseRequest()
}

// ParseResponseHead parses a response header block.
func ParseResponseHead(head []byte) (*Response, error) {
	var p Parser
	initParser(&p, head)
	return p.ParseResponse()
}

// ParseRequest parses the request line and header fields.
func (p *Parser) ParseRequest() *Request {
	req := &Request{}
	if !p.parseRequestLine(req) {
		return req
	}
	p.parseRequestHeaders(req)
	return req
}

// parseRequestLine parses "METHOD SP URI SP VERSION". Exactly three tokens
// separated by single spaces are accepted.
func (p *Parser) parseRequestLine(req *Request) bool {
	line, ok := p.readLine()
	if !ok {
		return p.fail(req, StatusBadRequest, "missing request line")
	}

	sp1 := bytes.IndexByte(line, ' ')
	if sp1 <= 0 {
		return p.fail(req, StatusBadRequest, "malformed request line: no method separator")
	}
	rest := line[sp1+1:]
	sp2 := bytes.IndexByte(rest, ' ')
	if sp2 <= 0 {
		return p.fail(req, StatusBadRequest, "malformed request line: no version separator")
	}
	version := rest[sp2+1:]
	if len(version) == 0 || bytes.IndexByte(version, ' ') >= 0 {
		return p.fail(req, StatusBadRequest, "malformed request line: want 3 tokens")
	}

	req.Method = internMethod(line[:sp1])
	req.MethodCode = methodCode(req.Method)
	if req.MethodCode == MethodNone {
		return p.fail(req, StatusBadRequest, "unknown method "+strconv.Quote(req.Method))
	}

	uri := rest[:sp2]
	req.URI = string(uri)
	if uri[0] != '/' && !bytes.HasPrefix(uri, httpURI) {
		return p.fail(req, StatusBadRequest, "request-target must be absolute path or http:// URI")
	}

	req.Version = internVersion(version)
	req.VersionCode = versionCode(req.Version)
	if req.VersionCode == VersionNone {
		if bytes.HasPrefix(version, httpSlash) {
			return p.fail(req, StatusHTTPVersionNotSupported, "unsupported version "+req.Version)
		}
		return p.fail(req, StatusSwitchingProtocols, "unknown protocol "+strconv.Quote(req.Version))
	}
	return true
}

// parseRequestHeaders parses "Key: Value" lines until the end of the block.
// A line without ": " stops parsing; fields parsed so far stay on req.
func (p *Parser) parseRequestHeaders(req *Request) {
	req.Headers = make([]Header, 0, 8)
	for p.pos < p.length {
		line, _ := p.readLine()
		sep := bytes.Index(line, fieldSep)
		if sep < 0 {
			p.fail(req, StatusBadRequest, "malformed header line: "+strconv.Quote(string(line)))
			return
		}
		req.Headers = append(req.Headers, Header{
			Key:   internHeaderName(line[:sep]),
			Value: string(line[sep+len(fieldSep):]),
		})
	}
}

// ParseResponse parses a status line followed by header fields. Header
// lines are split on the first colon and optional whitespace is trimmed.
func (p *Parser) ParseResponse() (*Response, error) {
	version, statusCode, reason, err := p.parseStatusLine()
	if err != nil {
		return nil, err
	}

	headers := make([]Header, 0, 8)
	for p.pos < p.length {
		line, _ := p.readLine()
		colon := bytes.IndexByte(line, ':')
		if colon < 0 {
			return nil, p.errorf("malformed header line (no colon): %s", string(line))
		}
		headers = append(headers, Header{
			Key:   internHeaderName(line[:colon]),
			Value: string(trimOWS(line[colon+1:])),
		})
	}

	return &Response{
		Version:    version,
		StatusCode: statusCode,
		Reason:     reason,
		Headers:    headers,
	}, nil
}

// parseStatusLine parses "VERSION SP STATUS SP REASON".
func (p *Parser) parseStatusLine() (version string, statusCode int, reason string, err error) {
	line, ok := p.readLine()
	if !ok {
		return "", 0, "", p.errorf("missing status line")
	}

	// Find first SP
	sp1 := bytes.IndexByte(line, ' ')
	if sp1 < 0 {
		return "", 0, "", p.errorf("malformed status line: no version separator")
	}
	version = internVersion(line[:sp1])

	rest := line[sp1+1:]

	// Find second SP (separating status code from reason)
	sp2 := bytes.IndexByte(rest, ' ')
	if sp2 < 0 {
		// Allow status line with no reason phrase: "HTTP/1.1 200"
		code, convErr := strconv.Atoi(string(rest))
		if convErr != nil {
			return "", 0, "", p.errorf("invalid status code: %s", string(rest))
		}
		return version, code, "", nil
	}

	code, convErr := strconv.Atoi(string(rest[:sp2]))
	if convErr != nil {
		return "", 0, "", p.errorf("invalid status code: %s", string(rest[:sp2]))
	}
	reason = internReason(rest[sp2+1:])

	return version, code, reason, nil
}

// readLine returns the bytes up to the next CRLF, or the rest of the block
// for the last line. ok is false only when nothing is left.
func (p *Parser) readLine() (line []byte, ok bool) {
	if p.pos >= p.length {
		return nil, false
	}
	p.line++
	rest := p.data[p.pos:]
	if i := bytes.Index(rest, crlf); i >= 0 {
		p.pos += i + len(crlf)
		return rest[:i], true
	}
	p.pos = p.length
	return rest, true
}

func (p *Parser) fail(req *Request, status int, msg string) bool {
	req.Status = status
	req.Message = msg
	req.Line = p.line
	return false
}

// trimOWS trims optional whitespace (SP and HTAB) from both ends of b.
func trimOWS(b []byte) []byte {
	for len(b) > 0 && (b[0] == ' ' || b[0] == '\t') {
		b = b[1:]
	}
	for len(b) > 0 && (b[len(b)-1] == ' ' || b[len(b)-1] == '\t') {
		b = b[:len(b)-1]
	}
	return b
}

func (p *Parser) errorf(format string, args ...interface{}) error {
	msg := fmt.Sprintf(format, args...)
	return fmt.Errorf("http: parse error at line %d: %s", p.line, msg)
}
