// Command shape-httpd serves static files for name-based virtual hosts.
//
// Usage:
//
//	shape-httpd -f /etc/shape-httpd.conf
//	shape-httpd -addr :8080 -root ./public -host localhost
//
// -addr adds a listener and -root adds a virtual host named by -host to
// whatever the configuration file provides. The server runs until SIGINT or
// SIGTERM and then logs its counters.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/shapestone/shape-httpd/internal/server"
	"github.com/shapestone/shape-httpd/pkg/config"
)

type options struct {
	configFile string
	debug      bool
	addr       string
	root       string
	host       string
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	fs := flag.NewFlagSet("shape-httpd", flag.ContinueOnError)
	fs.SetOutput(stderr)
	opts := &options{}
	fs.StringVar(&opts.configFile, "f", "", "configuration file")
	fs.BoolVar(&opts.debug, "debug", false, "human-readable debug logging")
	fs.StringVar(&opts.addr, "addr", "", "extra listen address (host:port)")
	fs.StringVar(&opts.root, "root", "", "document root of the -host virtual host")
	fs.StringVar(&opts.host, "host", "localhost", "virtual host name for -root")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected argument %q", fs.Arg(0))
	}
	return opts, nil
}

// loadConfig merges the configuration file with the command-line listener
// and virtual host, then validates the result.
func loadConfig(opts *options) (*config.Config, error) {
	cfg := &config.Config{ServerName: config.DefaultServerName}
	if opts.configFile != "" {
		var err error
		if cfg, err = config.Load(opts.configFile); err != nil {
			return nil, err
		}
	}

	if opts.addr != "" {
		host, portStr, err := net.SplitHostPort(opts.addr)
		if err != nil {
			return nil, fmt.Errorf("-addr: %w", err)
		}
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return nil, fmt.Errorf("-addr: bad port %q", portStr)
		}
		if host == "" {
			host = "*"
		}
		cfg.Listeners = append(cfg.Listeners, config.Listener{Address: host, Port: port})
	}
	if opts.root != "" {
		cfg.VirtualHosts = append(cfg.VirtualHosts, config.VirtualHost{Hostname: opts.host, Root: opts.root})
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(w io.Writer, debug bool) zerolog.Logger {
	if debug {
		return zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}).
			Level(zerolog.DebugLevel).
			With().Timestamp().Logger()
	}
	return zerolog.New(w).Level(zerolog.InfoLevel).With().Timestamp().Logger()
}

func run(ctx context.Context, args []string, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		return 2
	}
	log := newLogger(stderr, opts.debug)

	cfg, err := loadConfig(opts)
	if err != nil {
		log.Error().Err(err).Msg("invalid configuration")
		return 1
	}

	srv := server.New(cfg, log)
	if err := srv.Start(); err != nil {
		log.Error().Err(err).Msg("startup failed")
		return 1
	}
	log.Info().
		Str("server_name", cfg.ServerName).
		Int("vhosts", len(cfg.VirtualHosts)).
		Dur("idle_timeout", cfg.IdleTimeout).
		Int("max_connections", cfg.MaxConnections).
		Msg("started")

	<-ctx.Done()
	log.Info().Msg("shutting down")
	if err := srv.Close(); err != nil {
		log.Warn().Err(err).Msg("close listeners")
	}
	srv.Wait()
	log.Info().Object("stats", srv.Stats().Snapshot()).Msg("stopped")
	return 0
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stderr)
	stop()
	os.Exit(code)
}
