package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/shapestone/shape-core/pkg/ast"
)

const sample = `# sample
server_name "test-server/2.0"
idle_timeout 15
max_connections 64

listen on * port 8080
listen on "::1" port 8443

vhost "example.com" {
	root "/var/www/example"
}
vhost "cgi.example.com" {
	root "/var/www/cgi"
	cgi "/var/www/cgi-bin"
}
`

func TestParse_Sample(t *testing.T) {
	cfg, err := Parse([]byte(sample))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	want := &Config{
		ServerName:     "test-server/2.0",
		IdleTimeout:    15 * time.Second,
		MaxConnections: 64,
		Listeners: []Listener{
			{Address: "*", Port: 8080, Line: 6},
			{Address: "::1", Port: 8443, Line: 7},
		},
		VirtualHosts: []VirtualHost{
			{Hostname: "example.com", Root: "/var/www/example", Line: 9},
			{Hostname: "cgi.example.com", Root: "/var/www/cgi", CGI: "/var/www/cgi-bin", Line: 12},
		},
	}
	if !reflect.DeepEqual(cfg, want) {
		t.Errorf("Parse() =\n%+v\nwant\n%+v", cfg, want)
	}
}

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse([]byte(`listen on * port 80
vhost "a" { root "/r" }`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if cfg.ServerName != DefaultServerName {
		t.Errorf("ServerName = %q, want %q", cfg.ServerName, DefaultServerName)
	}
	if cfg.IdleTimeout != 0 {
		t.Errorf("IdleTimeout = %v, want 0", cfg.IdleTimeout)
	}
	if cfg.MaxConnections != 0 {
		t.Errorf("MaxConnections = %d, want 0", cfg.MaxConnections)
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"syntax", "listen on * port 80\nfoo\n", `config: line 2: unknown keyword "foo"`},
		{"unterminated", "vhost \"a {\n", `config: line 1: unterminated string "a {"`},
		{"no listeners", `vhost "a" { root "/r" }`, "config: no listen statements"},
		{"no vhosts", "listen on * port 80", "config: no vhost blocks"},
		{"port zero", "listen on * port 0\nvhost \"a\" { root \"/r\" }", "config: line 1: port 0 out of range 1-65535"},
		{"port too big", "\nlisten on * port 65536\nvhost \"a\" { root \"/r\" }", "config: line 2: port 65536 out of range 1-65535"},
		{"empty root", "listen on * port 80\nvhost \"a\" { }", `config: line 2: vhost "a" has no root`},
		{"explicit empty root", "listen on * port 80\nvhost \"a\" { root \"\" }", `config: line 2: vhost "a" has no root`},
		{"empty name", "listen on * port 80\nvhost \"\" { root \"/r\" }", "config: line 2: empty vhost name"},
		{"duplicate vhost", "listen on * port 80\nvhost \"a\" { root \"/r\" }\nvhost \"a\" { root \"/s\" }", `config: line 3: duplicate vhost "a"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.input))
			if err == nil {
				t.Fatal("Parse() error = nil, want error")
			}
			var ce *Error
			if !errors.As(err, &ce) {
				t.Fatalf("Parse() error = %T, want *Error", err)
			}
			if err.Error() != tt.want {
				t.Errorf("Parse() error = %q, want %q", err.Error(), tt.want)
			}
		})
	}
}

func TestParse_QuotedValues(t *testing.T) {
	cfg, err := Parse([]byte("server_name \"\"\nlisten on \"::1\" port 80\nvhost \"a\" { root \"/srv/\\\"x\\\"\" }\n"))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if cfg.ServerName != "" {
		t.Errorf("ServerName = %q, want empty", cfg.ServerName)
	}
	if got := cfg.Listeners[0].Addr(); got != "[::1]:80" {
		t.Errorf("Addr() = %q, want [::1]:80", got)
	}
	if got := cfg.VirtualHosts[0].Root; got != `/srv/"x"` {
		t.Errorf("Root = %q, want %q", got, `/srv/"x"`)
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "httpd.conf")
	if err := os.WriteFile(path, []byte(sample), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(cfg.Listeners) != 2 || len(cfg.VirtualHosts) != 2 {
		t.Errorf("Load() = %+v", cfg)
	}
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.conf"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Load() error = %v, want os.ErrNotExist", err)
	}
}

func TestListener_Addr(t *testing.T) {
	tests := []struct {
		l    Listener
		want string
	}{
		{Listener{Address: "*", Port: 80}, ":80"},
		{Listener{Address: "127.0.0.1", Port: 8080}, "127.0.0.1:8080"},
		{Listener{Address: "::1", Port: 8443}, "[::1]:8443"},
		{Listener{Address: "localhost", Port: 1}, "localhost:1"},
	}
	for _, tt := range tests {
		if got := tt.l.Addr(); got != tt.want {
			t.Errorf("Addr(%+v) = %q, want %q", tt.l, got, tt.want)
		}
	}
}

func TestFromNode_TypeErrors(t *testing.T) {
	pos := ast.Position{}
	tests := []struct {
		name string
		node ast.SchemaNode
	}{
		{"not an object", ast.NewLiteralNode("x", pos)},
		{"server_name not string", ast.NewObjectNode(map[string]ast.SchemaNode{
			"server_name": ast.NewLiteralNode(int64(1), pos),
		}, pos)},
		{"listeners not array", ast.NewObjectNode(map[string]ast.SchemaNode{
			"listeners": ast.NewLiteralNode("x", pos),
		}, pos)},
		{"listener missing port", ast.NewObjectNode(map[string]ast.SchemaNode{
			"listeners": ast.NewArrayDataNode([]ast.SchemaNode{
				ast.NewObjectNode(map[string]ast.SchemaNode{
					"address": ast.NewLiteralNode("*", pos),
				}, pos),
			}, pos),
		}, pos)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromNode(tt.node)
			var ce *Error
			if !errors.As(err, &ce) {
				t.Errorf("FromNode() error = %v, want *Error", err)
			}
		})
	}
}

func TestValidate_Direct(t *testing.T) {
	cfg := &Config{
		Listeners:    []Listener{{Address: "*", Port: 80}},
		VirtualHosts: []VirtualHost{{Hostname: "a", Root: "/r"}},
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	cfg.MaxConnections = -1
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() error = nil for negative max_connections")
	}
}
