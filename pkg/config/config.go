// Package config loads the shape-httpd configuration file.
//
// The file is a sequence of statements; newlines are not significant and
// '#' starts a comment that runs to the end of the line:
//
//	server_name "shape-httpd/1.0"
//	idle_timeout 30        # seconds, 0 = no limit
//	max_connections 1024   # 0 = no limit
//
//	listen on * port 8080
//	listen on "::1" port 8080
//
//	vhost "example.com" {
//		root "/var/www/example"
//	}
//
// A listener address of "*" binds all interfaces. Virtual hosts are matched
// against the request host exactly, in file order.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/shapestone/shape-core/pkg/ast"
	"github.com/shapestone/shape-httpd/internal/parser"
)

// DefaultServerName is the Server header value used when the configuration
// does not set one.
const DefaultServerName = "shape-httpd/1.0"

// Config is a loaded configuration.
type Config struct {
	ServerName     string
	IdleTimeout    time.Duration // 0 means no limit
	MaxConnections int           // 0 means no limit
	Listeners      []Listener
	VirtualHosts   []VirtualHost
}

// Listener is one "listen on" statement.
type Listener struct {
	Address string // "*" for all interfaces
	Port    int
	Line    int // source line, 0 if not from a file
}

// Addr returns the address in the form accepted by net.Listen.
func (l Listener) Addr() string {
	host := l.Address
	if host == "*" {
		host = ""
	}
	return net.JoinHostPort(host, strconv.Itoa(l.Port))
}

// VirtualHost maps a host name to a document root.
type VirtualHost struct {
	Hostname string
	Root     string
	CGI      string // parsed and kept; never used to serve requests
	Line     int
}

// Error reports a configuration problem. Line is 0 when the problem is not
// tied to a statement.
type Error struct {
	Line    int
	Message string
}

func (e *Error) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("config: line %d: %s", e.Line, e.Message)
	}
	return "config: " + e.Message
}

func errorf(line int, format string, args ...any) error {
	return &Error{Line: line, Message: fmt.Sprintf(format, args...)}
}

// Load reads, parses and validates the configuration file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return Parse(data)
}

// Parse parses and validates configuration text.
func Parse(data []byte) (*Config, error) {
	node, err := parser.NewParser(data).Parse()
	if err != nil {
		var se *parser.SyntaxError
		if errors.As(err, &se) {
			return nil, &Error{Line: se.Line, Message: se.Message}
		}
		return nil, fmt.Errorf("config: %w", err)
	}
	cfg, err := FromNode(node)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FromNode converts a configuration AST, as produced by internal/parser, to
// a Config. It does not validate the result.
func FromNode(node ast.SchemaNode) (*Config, error) {
	obj, ok := node.(*ast.ObjectNode)
	if !ok {
		return nil, errorf(0, "expected ObjectNode, got %T", node)
	}
	props := obj.Properties()

	cfg := &Config{ServerName: DefaultServerName}
	if v, ok := props["server_name"]; ok {
		s, err := stringValue(v, "server_name")
		if err != nil {
			return nil, err
		}
		cfg.ServerName = s
	}
	if v, ok := props["idle_timeout"]; ok {
		n, err := intValue(v, "idle_timeout")
		if err != nil {
			return nil, err
		}
		cfg.IdleTimeout = time.Duration(n) * time.Second
	}
	if v, ok := props["max_connections"]; ok {
		n, err := intValue(v, "max_connections")
		if err != nil {
			return nil, err
		}
		cfg.MaxConnections = int(n)
	}

	listeners, err := objects(props["listeners"], "listeners")
	if err != nil {
		return nil, err
	}
	for _, l := range listeners {
		line, _ := intValue(l["line"], "line")
		addr, err := stringValue(l["address"], "address")
		if err != nil {
			return nil, err
		}
		port, err := intValue(l["port"], "port")
		if err != nil {
			return nil, err
		}
		cfg.Listeners = append(cfg.Listeners, Listener{Address: addr, Port: int(port), Line: int(line)})
	}

	vhosts, err := objects(props["vhosts"], "vhosts")
	if err != nil {
		return nil, err
	}
	for _, v := range vhosts {
		line, _ := intValue(v["line"], "line")
		vh := VirtualHost{Line: int(line)}
		if vh.Hostname, err = stringValue(v["hostname"], "hostname"); err != nil {
			return nil, err
		}
		if vh.Root, err = stringValue(v["root"], "root"); err != nil {
			return nil, err
		}
		if n, ok := v["cgi"]; ok {
			if vh.CGI, err = stringValue(n, "cgi"); err != nil {
				return nil, err
			}
		}
		cfg.VirtualHosts = append(cfg.VirtualHosts, vh)
	}
	return cfg, nil
}

// Validate reports the first problem that would keep the server from
// running as configured.
func (c *Config) Validate() error {
	if len(c.Listeners) == 0 {
		return errorf(0, "no listen statements")
	}
	if len(c.VirtualHosts) == 0 {
		return errorf(0, "no vhost blocks")
	}
	if c.IdleTimeout < 0 {
		return errorf(0, "idle_timeout must not be negative")
	}
	if c.MaxConnections < 0 {
		return errorf(0, "max_connections must not be negative")
	}
	for _, l := range c.Listeners {
		if l.Port < 1 || l.Port > 65535 {
			return errorf(l.Line, "port %d out of range 1-65535", l.Port)
		}
	}
	seen := make(map[string]bool, len(c.VirtualHosts))
	for _, vh := range c.VirtualHosts {
		if vh.Hostname == "" {
			return errorf(vh.Line, "empty vhost name")
		}
		if vh.Root == "" {
			return errorf(vh.Line, "vhost %q has no root", vh.Hostname)
		}
		if seen[vh.Hostname] {
			return errorf(vh.Line, "duplicate vhost %q", vh.Hostname)
		}
		seen[vh.Hostname] = true
	}
	return nil
}

func stringValue(node ast.SchemaNode, name string) (string, error) {
	lit, ok := node.(*ast.LiteralNode)
	if !ok {
		return "", errorf(0, "%s: expected LiteralNode, got %T", name, node)
	}
	s, ok := lit.Value().(string)
	if !ok {
		return "", errorf(0, "%s: expected string, got %T", name, lit.Value())
	}
	return s, nil
}

func intValue(node ast.SchemaNode, name string) (int64, error) {
	lit, ok := node.(*ast.LiteralNode)
	if !ok {
		return 0, errorf(0, "%s: expected LiteralNode, got %T", name, node)
	}
	n, ok := lit.Value().(int64)
	if !ok {
		return 0, errorf(0, "%s: expected int64, got %T", name, lit.Value())
	}
	return n, nil
}

func objects(node ast.SchemaNode, name string) ([]map[string]ast.SchemaNode, error) {
	if node == nil {
		return nil, nil
	}
	arr, ok := node.(*ast.ArrayDataNode)
	if !ok {
		return nil, errorf(0, "%s: expected ArrayDataNode, got %T", name, node)
	}
	out := make([]map[string]ast.SchemaNode, 0, len(arr.Elements()))
	for i, elem := range arr.Elements() {
		obj, ok := elem.(*ast.ObjectNode)
		if !ok {
			return nil, errorf(0, "%s[%d]: expected ObjectNode, got %T", name, i, elem)
		}
		out = append(out, obj.Properties())
	}
	return out, nil
}
