package http

import (
	"errors"
	"fmt"
)

// ParseError reports a request head the server must reject. Status is the
// response code to send for it.
type ParseError struct {
	Status  int    // 101, 400 or 505
	Message string // human-readable error message
	Line    int    // 1-indexed line number where error occurred (0 if unknown)
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("http: parse error at line %d: %s", e.Line, e.Message)
	}
	return fmt.Sprintf("http: %s", e.Message)
}

// StatusOf returns the response status carried by err: 0 for nil, the
// ParseError status when err wraps one, and 500 for anything else.
func StatusOf(err error) int {
	if err == nil {
		return 0
	}
	var pe *ParseError
	if errors.As(err, &pe) {
		return pe.Status
	}
	return StatusInternalServerError
}

// Errors returned by HeadReader while framing a message.
var (
	ErrMalformedChunk = errors.New("http: malformed chunked encoding")
	ErrLineTooLong    = errors.New("http: chunk line too long")
)
