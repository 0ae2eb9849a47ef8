// Package server implements the shape-httpd connection engine: listener
// pool, connection registry, per-connection request state machine, virtual
// host resolution, static file responses and the response builder.
//
// Every accepted connection is served by its own goroutine. Requests on one
// connection are handled strictly in order. The registry lock is the only
// state shared between connections; configuration is read-only once the
// server is built.
package server

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/shapestone/shape-httpd/pkg/config"
)

// ErrNoListeners is returned by Start when none of the configured listeners
// could be bound.
var ErrNoListeners = errors.New("httpd: no listener could be bound")

// Options are the server-wide settings.
type Options struct {
	Logger zerolog.Logger

	// ServerName is sent in the Server header of every response. Defaults
	// to config.DefaultServerName.
	ServerName string

	// IdleTimeout bounds how long a connection may wait for the next request
	// head. 0 waits forever.
	IdleTimeout time.Duration

	// MaxConnections caps the number of live connections. Sockets accepted
	// beyond it are closed without a response. 0 means no limit.
	MaxConnections int

	// Now returns the time used for the Date header. Defaults to time.Now.
	Now func() time.Time
}

// Server accepts connections on its listeners and serves static files from
// its virtual hosts.
type Server struct {
	opts      Options
	log       zerolog.Logger
	listeners []*Listener
	hosts     *Resolver
	registry  *Registry
	stats     *Stats

	closing atomic.Bool
	accepts sync.WaitGroup // accept loops
	conns   sync.WaitGroup // connection goroutines
}

// New builds a server from a loaded configuration.
func New(cfg *config.Config, logger zerolog.Logger) *Server {
	return NewWithOptions(cfg.Listeners, cfg.VirtualHosts, Options{
		Logger:         logger,
		ServerName:     cfg.ServerName,
		IdleTimeout:    cfg.IdleTimeout,
		MaxConnections: cfg.MaxConnections,
	})
}

// NewWithOptions builds a server for the given listeners and virtual hosts.
func NewWithOptions(listeners []config.Listener, hosts []config.VirtualHost, opts Options) *Server {
	if opts.ServerName == "" {
		opts.ServerName = config.DefaultServerName
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	s := &Server{
		opts:     opts,
		log:      opts.Logger,
		hosts:    NewResolver(hosts),
		registry: NewRegistry(),
		stats:    NewStats(),
	}
	for _, l := range listeners {
		s.listeners = append(s.listeners, &Listener{cfg: l})
	}
	return s
}

// Start binds every listener and starts one accept loop per bound listener.
// A listener that fails to bind is logged and left non-running; Start fails
// only when no listener could be bound.
func (s *Server) Start() error {
	running := 0
	for _, l := range s.listeners {
		if err := l.bind(); err != nil {
			s.log.Error().Err(err).Str("addr", l.cfg.Addr()).Int("line", l.cfg.Line).Msg("listener failed")
			continue
		}
		running++
		s.log.Info().Str("addr", l.Addr().String()).Msg("listening")
	}
	if running == 0 {
		return ErrNoListeners
	}

	for _, l := range s.listeners {
		if !l.Running() {
			continue
		}
		s.accepts.Add(1)
		go s.acceptLoop(l)
	}
	return nil
}

// Serve starts the server and blocks until it is closed and every
// connection has finished.
func (s *Server) Serve() error {
	if err := s.Start(); err != nil {
		return err
	}
	s.Wait()
	return nil
}

// Wait blocks until all accept loops have stopped and every connection has
// been torn down.
func (s *Server) Wait() {
	s.accepts.Wait()
	s.conns.Wait()
}

// Close stops accepting, then closes every live socket. Connections end on
// their next read or write and tear down on their own goroutine. Close does
// not wait; call Wait for that.
func (s *Server) Close() error {
	if !s.closing.CompareAndSwap(false, true) {
		return nil
	}
	var errs []error
	for _, l := range s.listeners {
		if err := l.close(); err != nil {
			errs = append(errs, err)
		}
	}
	for _, c := range s.registry.Shutdown() {
		_ = c.nc.Close()
	}
	return errors.Join(errs...)
}

// Listeners returns the configured listeners, bound or not.
func (s *Server) Listeners() []*Listener { return s.listeners }

// Registry returns the live connection registry.
func (s *Server) Registry() *Registry { return s.registry }

// Stats returns the server's counters.
func (s *Server) Stats() *Stats { return s.stats }
