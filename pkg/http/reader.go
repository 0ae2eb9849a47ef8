package http

import (
	"bytes"
	"io"

	"github.com/shapestone/shape-httpd/internal/fastparser"
)

// ReadSize is how many bytes HeadReader asks the underlying reader for at a
// time.
const ReadSize = 8192

// maxChunkLine bounds a chunk-size or trailer line while discarding a
// chunked body.
const maxChunkLine = 4096

var headEnd = []byte("\r\n\r\n")

// HeadReader frames HTTP messages on a byte stream. It accumulates bytes
// until the header terminator CRLF CRLF and keeps whatever follows it for
// the next call, so pipelined requests are served from the same buffer.
//
// A HeadReader is not safe for concurrent use.
type HeadReader struct {
	r   io.Reader
	buf []byte // buf[off:] holds bytes read but not yet consumed
	off int
}

// NewHeadReader returns a reader over r. buf supplies the initial storage
// (its length is ignored); it grows when a head does not fit.
func NewHeadReader(r io.Reader, buf []byte) *HeadReader {
	if cap(buf) < ReadSize {
		buf = make([]byte, 0, ReadSize)
	}
	return &HeadReader{r: r, buf: buf[:0]}
}

// ReadHead returns the next header block without its CRLF CRLF terminator.
// The returned slice aliases the internal buffer and is valid only until
// the next call on the HeadReader.
//
// Only the newly read window is searched, starting 3 bytes before it so a
// terminator split across reads is still found. Any read error before the
// terminator is returned as is; io.EOF means the peer closed.
func (hr *HeadReader) ReadHead() ([]byte, error) {
	scan := 0
	for {
		if head, ok := hr.cutHead(scan); ok {
			return head, nil
		}
		if n := len(hr.pending()); n > 3 {
			scan = n - 3
		}
		// fill compacts pending bytes to the front, which keeps scan valid.
		if n, err := hr.fill(); err != nil {
			if n > 0 {
				if head, ok := hr.cutHead(scan); ok {
					return head, nil
				}
			}
			return nil, err
		}
	}
}

func (hr *HeadReader) cutHead(scan int) ([]byte, bool) {
	p := hr.pending()
	i := bytes.Index(p[scan:], headEnd)
	if i < 0 {
		return nil, false
	}
	end := scan + i
	hr.off += end + len(headEnd)
	return p[:end], true
}

// Buffered returns the number of bytes read past the last head that have
// not been consumed yet.
func (hr *HeadReader) Buffered() int { return len(hr.pending()) }

// Read reads buffered bytes first, then from the underlying reader.
func (hr *HeadReader) Read(p []byte) (int, error) {
	if pending := hr.pending(); len(pending) > 0 {
		n := copy(p, pending)
		hr.off += n
		return n, nil
	}
	return hr.r.Read(p)
}

// DiscardBody skips the body of req as framed by Transfer-Encoding: chunked
// or Content-Length. A request with neither has no body.
func (hr *HeadReader) DiscardBody(req *Request) error {
	if req.Headers.IsChunked() {
		return hr.DiscardChunked()
	}
	if n := req.Headers.ContentLength(); n > 0 {
		return hr.Discard(n)
	}
	return nil
}

// Discard skips n bytes, consuming buffered bytes first.
func (hr *HeadReader) Discard(n int64) error {
	for n > 0 {
		p := hr.pending()
		if len(p) == 0 {
			if _, err := hr.fill(); err != nil && hr.Buffered() == 0 {
				if err == io.EOF {
					err = io.ErrUnexpectedEOF
				}
				return err
			}
			continue
		}
		k := int64(len(p))
		if k > n {
			k = n
		}
		hr.off += int(k)
		n -= k
	}
	return nil
}

// DiscardChunked skips a chunked body: chunk frames, the last-chunk and any
// trailer fields up to the final empty line.
func (hr *HeadReader) DiscardChunked() error {
	for {
		line, err := hr.readLine()
		if err != nil {
			return err
		}
		size, err := fastparser.ParseChunkSize(line)
		if err != nil {
			return ErrMalformedChunk
		}

		if size == 0 {
			for {
				trailer, err := hr.readLine()
				if err != nil {
					return err
				}
				if len(trailer) == 0 {
					return nil
				}
			}
		}

		if err := hr.Discard(size); err != nil {
			return err
		}
		if tail, err := hr.readLine(); err != nil {
			return err
		} else if len(tail) != 0 {
			return ErrMalformedChunk
		}
	}
}

// readLine returns the next line without its CRLF or LF ending.
func (hr *HeadReader) readLine() ([]byte, error) {
	scan := 0
	for {
		p := hr.pending()
		if i := bytes.IndexByte(p[scan:], '\n'); i >= 0 {
			end := scan + i
			hr.off += end + 1
			return bytes.TrimSuffix(p[:end], []byte{'\r'}), nil
		}
		scan = len(p)
		if scan > maxChunkLine {
			return nil, ErrLineTooLong
		}
		if n, err := hr.fill(); err != nil && n == 0 {
			if err == io.EOF {
				err = io.ErrUnexpectedEOF
			}
			return nil, err
		}
	}
}

func (hr *HeadReader) pending() []byte { return hr.buf[hr.off:] }

// fill moves pending bytes to the front of the buffer, grows it when less
// than ReadSize bytes are free, and performs one Read.
func (hr *HeadReader) fill() (int, error) {
	if hr.off > 0 {
		n := copy(hr.buf, hr.buf[hr.off:])
		hr.buf = hr.buf[:n]
		hr.off = 0
	}
	if cap(hr.buf)-len(hr.buf) < ReadSize {
		grown := make([]byte, len(hr.buf), 2*cap(hr.buf)+ReadSize)
		copy(grown, hr.buf)
		hr.buf = grown
	}
	n, err := hr.r.Read(hr.buf[len(hr.buf):cap(hr.buf)])
	hr.buf = hr.buf[:len(hr.buf)+n]
	return n, err
}
