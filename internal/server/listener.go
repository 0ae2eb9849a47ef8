package server

import (
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/shapestone/shape-httpd/pkg/config"
)

// Accept retry backoff bounds.
const (
	minAcceptDelay = 5 * time.Millisecond
	maxAcceptDelay = time.Second
)

// Listener is one configured listening address. It is owned by a single
// accept goroutine once the server starts.
type Listener struct {
	cfg     config.Listener
	ln      net.Listener
	running bool
}

func (l *Listener) bind() error {
	ln, err := net.Listen("tcp", l.cfg.Addr())
	if err != nil {
		return fmt.Errorf("httpd: listen %s: %w", l.cfg.Addr(), err)
	}
	l.ln = ln
	l.running = true
	return nil
}

func (l *Listener) close() error {
	if l.ln == nil {
		return nil
	}
	return l.ln.Close()
}

// Config returns the listener's configuration.
func (l *Listener) Config() config.Listener { return l.cfg }

// Running reports whether the listener was bound.
func (l *Listener) Running() bool { return l.running }

// Addr returns the bound address, or nil if the listener is not running.
func (l *Listener) Addr() net.Addr {
	if l.ln == nil {
		return nil
	}
	return l.ln.Addr()
}

// acceptLoop accepts connections until the listener is closed. Accept errors
// are retried with a doubling delay capped at maxAcceptDelay.
func (s *Server) acceptLoop(l *Listener) {
	defer s.accepts.Done()

	var delay time.Duration
	for {
		nc, err := l.ln.Accept()
		if err != nil {
			if s.closing.Load() || errors.Is(err, net.ErrClosed) {
				s.log.Debug().Str("addr", l.Addr().String()).Msg("accept loop stopped")
				return
			}
			if delay == 0 {
				delay = minAcceptDelay
			} else {
				delay *= 2
			}
			if delay > maxAcceptDelay {
				delay = maxAcceptDelay
			}
			s.log.Warn().Err(err).Dur("retry", delay).Msg("accept failed")
			time.Sleep(delay)
			continue
		}
		delay = 0
		s.admit(nc)
	}
}

// admit registers an accepted socket and starts serving it. A socket is
// closed unserved when the connection limit is reached, which counts as a
// rejection, or when the server is shutting down, which does not.
func (s *Server) admit(nc net.Conn) bool {
	c := newConn(s, nc)
	if s.registry.add(c, s.opts.MaxConnections) {
		s.stats.accepted.Inc()
		s.conns.Add(1)
		go c.serve()
		return true
	}
	_ = nc.Close()

	if s.closing.Load() {
		s.log.Debug().Str("remote", c.remote).Msg("connection dropped during shutdown")
		return false
	}
	s.stats.accepted.Inc()
	s.stats.rejected.Inc()
	s.log.Warn().Str("remote", c.remote).Int("limit", s.opts.MaxConnections).Msg("connection refused")
	return false
}
