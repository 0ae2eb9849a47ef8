package server

import (
	"errors"
	"io"
	"net"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/shapestone/shape-httpd/internal/arena"
	"github.com/shapestone/shape-httpd/pkg/http"
)

// Conn is one accepted connection and the state of its current request
// cycle.
//
// Two arenas own its resources. The connection arena holds the read buffer,
// the socket and the registry entry and is released once, on teardown. The
// request arena holds the open file, the body chunk buffer and formatted
// header values; it is released at the start of every cycle and again on
// teardown.
type Conn struct {
	id     uint64
	srv    *Server
	nc     net.Conn
	remote string
	log    zerolog.Logger

	connArena arena.Arena
	reqArena  arena.Arena

	hr       *http.HeadReader
	head     []byte
	req      *http.Request
	resp     *Response
	file     *os.File
	requests int
	closing  bool
	err      error // why the connection is closing, nil for a clean close
}

// stateFunc is one state of the connection. It returns the next state, or
// nil to close.
type stateFunc func(*Conn) stateFunc

func newConn(s *Server, nc net.Conn) *Conn {
	c := &Conn{
		srv:    s,
		nc:     nc,
		remote: nc.RemoteAddr().String(),
	}
	c.resp = newResponse(nc, &c.reqArena, s.opts.ServerName, s.opts.Now)
	return c
}

// serve runs the state machine until the connection closes. Teardown runs
// exactly once on every path.
func (c *Conn) serve() {
	defer c.srv.conns.Done()
	c.log = c.srv.log.With().Uint64("conn", c.id).Str("remote", c.remote).Logger()
	c.connArena.Track(c.nc)
	c.connArena.Defer(func() { c.srv.registry.remove(c.id) })
	c.hr = http.NewHeadReader(c.nc, c.connArena.Buffer(http.ReadSize)[:0])
	defer c.teardown()

	for state := stateReading; state != nil; {
		state = state(c)
	}
}

func (c *Conn) teardown() {
	c.resp.reset(nil)
	c.file = nil
	err := errors.Join(c.reqArena.Release(), c.connArena.Release())

	ev := c.log.Debug().Int("requests", c.requests)
	if c.err != nil && !errors.Is(c.err, io.EOF) {
		ev = ev.AnErr("cause", c.err)
	}
	if err != nil && !errors.Is(err, net.ErrClosed) {
		ev = ev.AnErr("release", err)
	}
	ev.Msg("connection closed")
}

// stateReading releases the previous cycle and waits for the next request
// head. EOF or a read error before the head is complete closes the
// connection without a response.
func stateReading(c *Conn) stateFunc {
	c.resp.reset(nil)
	c.file = nil
	c.req = nil
	if err := c.reqArena.Release(); err != nil {
		c.log.Debug().Err(err).Msg("release request resources")
	}

	c.armDeadline()
	head, err := c.hr.ReadHead()
	if err != nil {
		c.err = err
		return nil
	}
	c.head = head
	return stateParsing
}

// stateParsing turns the head into a request. A rejected head goes straight
// to an error response; the connection stays open unless the headers parsed
// so far asked for close.
func stateParsing(c *Conn) stateFunc {
	req, err := http.ParseRequestHead(c.head)
	c.head = nil
	c.req = req
	c.resp.reset(req)
	c.closing = req.Close()
	c.resp.Close = c.closing

	req.BodySize = bufferedBody(req, c.hr.Buffered())
	if err != nil {
		c.resp.Status = http.StatusOf(err)
		return stateResponding
	}
	return stateDispatching
}

// stateDispatching resolves the virtual host and opens the file.
func stateDispatching(c *Conn) stateFunc {
	vh, status := c.srv.hosts.Resolve(c.req)
	if status != 0 {
		c.resp.Status = status
		return stateResponding
	}
	c.file, c.resp.Status = openStatic(&c.reqArena, c.resp, vh.Root, c.req.PathInfo)
	return stateResponding
}

// stateResponding writes the response, skips any request body and logs the
// cycle. A write error closes the connection.
func stateResponding(c *Conn) stateFunc {
	var err error
	switch c.resp.Status {
	case http.StatusOK, http.StatusNotModified:
		err = c.resp.Send()
		if err == nil && c.resp.Status == http.StatusOK && c.req.Method != http.MethodHEAD && c.file != nil {
			err = copyBody(&c.reqArena, c.resp, c.file)
		}
	default:
		err = c.resp.SendError()
	}
	c.requests++
	c.srv.stats.record(c.resp.Status, c.resp.Written())
	c.logAccess()
	if err != nil {
		c.err = err
		return nil
	}

	if c.closing {
		return nil
	}
	c.armDeadline()
	if err := c.hr.DiscardBody(c.req); err != nil {
		c.err = err
		return nil
	}
	return stateReading
}

// bufferedBody returns how many of the request's Content-Length body bytes
// arrived together with its head.
func bufferedBody(req *http.Request, buffered int) int {
	n := req.Headers.ContentLength()
	if n <= 0 {
		return 0
	}
	return int(min(n, int64(buffered)))
}

func (c *Conn) logAccess() {
	c.log.Info().
		Str("host", c.req.Host).
		Str("method", c.req.RawMethod).
		Str("uri", c.req.URI).
		Int("status", c.resp.Status).
		Int64("bytes", c.resp.Written()).
		Int("request", c.requests).
		Msg("access")
}

func (c *Conn) armDeadline() {
	if d := c.srv.opts.IdleTimeout; d > 0 {
		_ = c.nc.SetReadDeadline(time.Now().Add(d))
	}
}
