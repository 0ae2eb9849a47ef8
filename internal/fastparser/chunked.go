package fastparser

import (
	"bytes"
	"encoding/hex"
	"errors"
)

// ErrChunkSize is returned by ParseChunkSize for a size line that is not a
// hex number.
var ErrChunkSize = errors.New("invalid chunk size")

// maxChunkDigits keeps a chunk size within int64.
const maxChunkDigits = 15

// ParseChunkSize parses the size line of a chunked transfer-coding frame,
// without its line ending. Chunk extensions after ';' are ignored, as is
// whitespace around the number.
func ParseChunkSize(line []byte) (int64, error) {
	if semi := bytes.IndexByte(line, ';'); semi >= 0 {
		line = line[:semi]
	}
	line = bytes.TrimSpace(line)
	if len(line) == 0 {
		return 0, ErrChunkSize
	}
	// leading zeros do not count against the digit limit
	for len(line) > 1 && line[0] == '0' {
		line = line[1:]
	}
	if len(line) > maxChunkDigits {
		return 0, ErrChunkSize
	}

	var n int64
	for _, c := range line {
		v, ok := hexValue(c)
		if !ok {
			return 0, errors.Join(ErrChunkSize, hex.InvalidByteError(c))
		}
		n = n<<4 | int64(v)
	}
	return n, nil
}

func hexValue(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}
