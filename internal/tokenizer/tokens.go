// Package tokenizer provides configuration file tokenization using Shape's
// tokenizer framework.
package tokenizer

// Token type constants for the configuration format.
const (
	// Values
	TokenWord   = "Word"   // keyword or bare address: listen, on, 127.0.0.1, *
	TokenNumber = "Number" // decimal digits only: 8080
	TokenString = "String" // double-quoted, escapes removed

	// Structural tokens
	TokenLBrace  = "LBrace"  // {
	TokenRBrace  = "RBrace"  // }
	TokenNewline = "Newline" // \n
	TokenSpace   = "Space"   // blanks, tabs and \r
	TokenComment = "Comment" // # to end of line

	// Special
	TokenError = "Error" // unterminated string
)
