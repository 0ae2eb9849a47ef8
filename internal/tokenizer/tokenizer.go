package tokenizer

import (
	"github.com/shapestone/shape-core/pkg/tokenizer"
)

// NewTokenizer creates a tokenizer for the configuration format.
// Matchers are tried in order:
// 1. Newline (kept so the parser can count lines)
// 2. Space
// 3. Comment
// 4. Braces
// 5. Quoted string
// 6. Word or number (everything else)
//
// Whitespace is not skipped by the framework because newlines carry line
// numbers; the parser drops Space, Newline and Comment tokens itself.
// Every input character is matched by one of the matchers, so Tokenize only
// stops early on a framework failure. The framework advances the stream by
// replaying each token value, so a matcher's value must be exactly the text
// it consumed and never empty.
func NewTokenizer() tokenizer.Tokenizer {
	return tokenizer.NewTokenizerWithoutWhitespace(
		NewlineMatcher(),
		SpaceMatcher(),
		CommentMatcher(),
		tokenizer.StringMatcherFunc(TokenLBrace, "{"),
		tokenizer.StringMatcherFunc(TokenRBrace, "}"),
		StringMatcher(),
		WordMatcher(),
	)
}

// NewTokenizerWithStream creates a configuration tokenizer over a
// pre-configured stream.
func NewTokenizerWithStream(stream tokenizer.Stream) tokenizer.Tokenizer {
	tok := NewTokenizer()
	tok.InitializeFromStream(stream)
	return tok
}

// NewlineMatcher matches a single \n.
func NewlineMatcher() tokenizer.Matcher {
	return func(stream tokenizer.Stream) *tokenizer.Token {
		r, ok := stream.PeekChar()
		if !ok || r != '\n' {
			return nil
		}
		stream.NextChar()
		return tokenizer.NewToken(TokenNewline, []rune{'\n'})
	}
}

// SpaceMatcher matches a run of blanks, tabs and carriage returns.
func SpaceMatcher() tokenizer.Matcher {
	return func(stream tokenizer.Stream) *tokenizer.Token {
		var value []rune
		for {
			r, ok := stream.PeekChar()
			if !ok || !isSpace(r) {
				break
			}
			stream.NextChar()
			value = append(value, r)
		}
		if len(value) == 0 {
			return nil
		}
		return tokenizer.NewToken(TokenSpace, value)
	}
}

// CommentMatcher matches '#' up to, but not including, the end of the line.
func CommentMatcher() tokenizer.Matcher {
	return func(stream tokenizer.Stream) *tokenizer.Token {
		r, ok := stream.PeekChar()
		if !ok || r != '#' {
			return nil
		}
		var value []rune
		for {
			r, ok := stream.PeekChar()
			if !ok || r == '\n' {
				break
			}
			stream.NextChar()
			value = append(value, r)
		}
		return tokenizer.NewToken(TokenComment, value)
	}
}

// StringMatcher matches a double-quoted string. The token value is the raw
// lexeme, quotes and escapes included; \" and \\ do not end the string.
// A string that reaches the end of the line or input without its closing
// quote becomes an Error token holding the text from the opening quote on.
func StringMatcher() tokenizer.Matcher {
	return func(stream tokenizer.Stream) *tokenizer.Token {
		r, ok := stream.PeekChar()
		if !ok || r != '"' {
			return nil
		}
		stream.NextChar()

		value := []rune{'"'}
		for {
			r, ok := stream.PeekChar()
			if !ok || r == '\n' {
				return tokenizer.NewToken(TokenError, value)
			}
			stream.NextChar()
			value = append(value, r)
			switch r {
			case '"':
				return tokenizer.NewToken(TokenString, value)
			case '\\':
				next, ok := stream.PeekChar()
				if ok && (next == '"' || next == '\\') {
					stream.NextChar()
					value = append(value, next)
				}
			}
		}
	}
}

// WordMatcher matches a run of characters up to whitespace, a brace, a quote
// or a comment. A run made only of ASCII digits is a Number.
func WordMatcher() tokenizer.Matcher {
	return func(stream tokenizer.Stream) *tokenizer.Token {
		var value []rune
		digits := true
		for {
			r, ok := stream.PeekChar()
			if !ok || isSpace(r) || r == '\n' || isDelimiter(r) {
				break
			}
			stream.NextChar()
			value = append(value, r)
			if r < '0' || r > '9' {
				digits = false
			}
		}
		if len(value) == 0 {
			return nil
		}
		if digits {
			return tokenizer.NewToken(TokenNumber, value)
		}
		return tokenizer.NewToken(TokenWord, value)
	}
}

func isSpace(r rune) bool { return r == ' ' || r == '\t' || r == '\r' }

func isDelimiter(r rune) bool { return r == '{' || r == '}' || r == '"' || r == '#' }
