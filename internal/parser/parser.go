// Package parser implements an AST parser for the shape-httpd configuration
// file. It produces shape-core AST nodes (ObjectNode, LiteralNode,
// ArrayDataNode) from the token stream of internal/tokenizer.
//
// A configuration maps to an ObjectNode with the following structure:
//
//	{ "server_name": "shape-httpd/1.0", "idle_timeout": 30,
//	  "max_connections": 0,
//	  "listeners": [{"address": "*", "port": 8080, "line": 4}, ...],
//	  "vhosts": [{"hostname": "example.com", "root": "/var/www",
//	              "cgi": "", "line": 6}, ...] }
//
// Scalar statements that do not appear are absent from the object. Numbers
// are int64 literals. "line" records where a listener or vhost statement
// starts, for later validation messages.
package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shapestone/shape-core/pkg/ast"
	"github.com/shapestone/shape-httpd/internal/tokenizer"
)

var zeroPos = ast.Position{}

// SyntaxError reports a problem in the configuration text.
type SyntaxError struct {
	Line    int // 1-indexed
	Message string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Message)
}

type token struct {
	kind  string
	value string
	line  int
}

// Parser produces an AST from configuration text.
type Parser struct {
	data   string
	tokens []token
	pos    int
	line   int // line of the last token consumed, for errors at EOF

	props     map[string]ast.SchemaNode
	listeners []ast.SchemaNode
	vhosts    []ast.SchemaNode
}

// NewParser creates a new AST parser for the given input.
func NewParser(data []byte) *Parser {
	return &Parser{data: string(data)}
}

// Parse parses the configuration and returns an AST ObjectNode. Errors are
// *SyntaxError.
func (p *Parser) Parse() (ast.SchemaNode, error) {
	if err := p.lex(); err != nil {
		return nil, err
	}

	p.props = make(map[string]ast.SchemaNode)
	for p.pos < len(p.tokens) {
		if err := p.parseStatement(); err != nil {
			return nil, err
		}
	}
	p.props["listeners"] = ast.NewArrayDataNode(p.listeners, zeroPos)
	p.props["vhosts"] = ast.NewArrayDataNode(p.vhosts, zeroPos)
	return ast.NewObjectNode(p.props, zeroPos), nil
}

// lex tokenizes the input, dropping whitespace and comments and numbering
// lines.
func (p *Parser) lex() error {
	tok := tokenizer.NewTokenizer()
	tok.Initialize(p.data)
	raw, eos := tok.Tokenize()

	line := 1
	for _, t := range raw {
		switch t.Kind() {
		case tokenizer.TokenNewline:
			line++
		case tokenizer.TokenSpace, tokenizer.TokenComment:
		case tokenizer.TokenError:
			return p.errorf(line, "unterminated string %q", strings.TrimPrefix(t.ValueString(), `"`))
		case tokenizer.TokenString:
			p.tokens = append(p.tokens, token{kind: t.Kind(), value: unquote(t.ValueString()), line: line})
		default:
			p.tokens = append(p.tokens, token{kind: t.Kind(), value: t.ValueString(), line: line})
		}
	}
	if !eos {
		return p.errorf(line, "unexpected input")
	}
	p.line = 1
	return nil
}

func (p *Parser) parseStatement() error {
	kw, err := p.expect(tokenizer.TokenWord, "keyword")
	if err != nil {
		return err
	}

	switch kw.value {
	case "server_name":
		return p.parseScalar(kw, tokenizer.TokenString)
	case "idle_timeout", "max_connections":
		return p.parseScalar(kw, tokenizer.TokenNumber)
	case "listen":
		return p.parseListen(kw)
	case "vhost":
		return p.parseVhost(kw)
	default:
		return p.errorf(kw.line, "unknown keyword %q", kw.value)
	}
}

func (p *Parser) parseScalar(kw token, kind string) error {
	if _, dup := p.props[kw.value]; dup {
		return p.errorf(kw.line, "duplicate %s", kw.value)
	}
	v, err := p.value(kind, kw.value)
	if err != nil {
		return err
	}
	p.props[kw.value] = v
	return nil
}

// parseListen parses: listen on ADDRESS port NUMBER
func (p *Parser) parseListen(kw token) error {
	if err := p.keyword("on"); err != nil {
		return err
	}
	addr, ok := p.next()
	if !ok || (addr.kind != tokenizer.TokenWord && addr.kind != tokenizer.TokenString && addr.kind != tokenizer.TokenNumber) {
		return p.unexpected(addr, ok, "address")
	}
	if err := p.keyword("port"); err != nil {
		return err
	}
	port, err := p.value(tokenizer.TokenNumber, "port")
	if err != nil {
		return err
	}

	p.listeners = append(p.listeners, ast.NewObjectNode(map[string]ast.SchemaNode{
		"address": ast.NewLiteralNode(addr.value, zeroPos),
		"port":    port,
		"line":    ast.NewLiteralNode(int64(kw.line), zeroPos),
	}, zeroPos))
	return nil
}

// parseVhost parses: vhost STRING { (root STRING | cgi STRING)* }
func (p *Parser) parseVhost(kw token) error {
	name, err := p.expect(tokenizer.TokenString, "host name")
	if err != nil {
		return err
	}
	if _, err := p.expect(tokenizer.TokenLBrace, `"{"`); err != nil {
		return err
	}

	props := map[string]ast.SchemaNode{
		"hostname": ast.NewLiteralNode(name.value, zeroPos),
		"line":     ast.NewLiteralNode(int64(kw.line), zeroPos),
	}
	for {
		t, ok := p.next()
		if !ok {
			return p.errorf(p.line, "missing \"}\" for vhost %q", name.value)
		}
		if t.kind == tokenizer.TokenRBrace {
			break
		}
		if t.kind != tokenizer.TokenWord || (t.value != "root" && t.value != "cgi") {
			return p.unexpected(t, true, "root or cgi")
		}
		if _, dup := props[t.value]; dup {
			return p.errorf(t.line, "duplicate %s in vhost %q", t.value, name.value)
		}
		v, err := p.value(tokenizer.TokenString, t.value)
		if err != nil {
			return err
		}
		props[t.value] = v
	}
	for _, key := range []string{"root", "cgi"} {
		if _, ok := props[key]; !ok {
			props[key] = ast.NewLiteralNode("", zeroPos)
		}
	}

	p.vhosts = append(p.vhosts, ast.NewObjectNode(props, zeroPos))
	return nil
}

// value reads a literal of the given kind as the argument of what.
func (p *Parser) value(kind, what string) (ast.SchemaNode, error) {
	t, err := p.expect(kind, what+" value")
	if err != nil {
		return nil, err
	}
	if kind == tokenizer.TokenNumber {
		n, err := strconv.ParseInt(t.value, 10, 64)
		if err != nil {
			return nil, p.errorf(t.line, "%s value %s out of range", what, t.value)
		}
		return ast.NewLiteralNode(n, zeroPos), nil
	}
	return ast.NewLiteralNode(t.value, zeroPos), nil
}

func (p *Parser) keyword(word string) error {
	t, ok := p.next()
	if !ok || t.kind != tokenizer.TokenWord || t.value != word {
		return p.unexpected(t, ok, fmt.Sprintf("%q", word))
	}
	return nil
}

func (p *Parser) expect(kind, what string) (token, error) {
	t, ok := p.next()
	if !ok || t.kind != kind {
		return t, p.unexpected(t, ok, what)
	}
	return t, nil
}

func (p *Parser) next() (token, bool) {
	if p.pos >= len(p.tokens) {
		return token{}, false
	}
	t := p.tokens[p.pos]
	p.pos++
	p.line = t.line
	return t, true
}

func (p *Parser) unexpected(t token, ok bool, want string) error {
	if !ok {
		return p.errorf(p.line, "expected %s, got end of file", want)
	}
	return p.errorf(t.line, "expected %s, got %s", want, describe(t))
}

func (p *Parser) errorf(line int, format string, args ...any) error {
	return &SyntaxError{Line: line, Message: fmt.Sprintf(format, args...)}
}

// unquote strips the quotes from a string lexeme and resolves \" and \\.
// Any other backslash is kept.
func unquote(raw string) string {
	raw = strings.TrimPrefix(raw, `"`)
	raw = strings.TrimSuffix(raw, `"`)
	if !strings.Contains(raw, `\`) {
		return raw
	}
	var b strings.Builder
	b.Grow(len(raw))
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		if c == '\\' && i+1 < len(raw) && (raw[i+1] == '"' || raw[i+1] == '\\') {
			i++
			c = raw[i]
		}
		b.WriteByte(c)
	}
	return b.String()
}

func describe(t token) string {
	if t.kind == tokenizer.TokenString {
		return fmt.Sprintf("string %q", t.value)
	}
	return fmt.Sprintf("%q", t.value)
}
