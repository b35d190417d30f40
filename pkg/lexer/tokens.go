// Package lexer tokenizes a JMESPath expression string into a lazy stream of
// positioned tokens, following the Rob Pike "Lexical Scanning in Go"
// technique the teacher module (gosonata) uses for its own lexer
// (pkg/parser/lexer.go in the retrieved module).
package lexer

import "github.com/quiverpath/jmespath/pkg/value"

// TokenType enumerates the fixed token set of spec.md §3.
type TokenType uint8

const (
	TokenEOF TokenType = iota
	TokenError

	TokenIdentifier
	TokenQuotedIdentifier
	TokenNumber
	TokenLiteral

	TokenDot
	TokenStar
	TokenFlatten
	TokenOr
	TokenPipe
	TokenFilter
	TokenLbracket
	TokenRbracket
	TokenComma
	TokenColon
	TokenNot
	TokenNe
	TokenEq
	TokenGt
	TokenGte
	TokenLt
	TokenLte
	TokenAt
	TokenAmpersand
	TokenLparen
	TokenRparen
	TokenLbrace
	TokenRbrace
)

// String returns the token's name, matching the Rust original's
// Token::token_name() (e.g. both Identifier and QuotedIdentifier report
// "Identifier").
func (t TokenType) String() string {
	switch t {
	case TokenEOF:
		return "Eof"
	case TokenError:
		return "Error"
	case TokenIdentifier, TokenQuotedIdentifier:
		return "Identifier"
	case TokenNumber:
		return "Number"
	case TokenLiteral:
		return "Literal"
	case TokenDot:
		return "Dot"
	case TokenStar:
		return "Star"
	case TokenFlatten:
		return "Flatten"
	case TokenOr:
		return "Or"
	case TokenPipe:
		return "Pipe"
	case TokenFilter:
		return "Filter"
	case TokenLbracket:
		return "Lbracket"
	case TokenRbracket:
		return "Rbracket"
	case TokenComma:
		return "Comma"
	case TokenColon:
		return "Colon"
	case TokenNot:
		return "Not"
	case TokenNe:
		return "Ne"
	case TokenEq:
		return "Eq"
	case TokenGt:
		return "Gt"
	case TokenGte:
		return "Gte"
	case TokenLt:
		return "Lt"
	case TokenLte:
		return "Lte"
	case TokenAt:
		return "At"
	case TokenAmpersand:
		return "Ampersand"
	case TokenLparen:
		return "Lparen"
	case TokenRparen:
		return "Rparen"
	case TokenLbrace:
		return "Lbrace"
	case TokenRbrace:
		return "Rbrace"
	default:
		return "Unknown"
	}
}

// lbpTable is the left-binding-power table of spec.md §3. Tokens absent from
// the map bind at 0, same as the Rust original's catch-all `_ => 0`.
var lbpTable = map[TokenType]int{
	TokenPipe:     1,
	TokenEq:       2,
	TokenGt:       2,
	TokenLt:       2,
	TokenGte:      2,
	TokenLte:      2,
	TokenNe:       2,
	TokenOr:       5,
	TokenFlatten:  6,
	TokenStar:     20,
	TokenFilter:   20,
	TokenDot:      40,
	TokenLbrace:   50,
	TokenLbracket: 55,
	TokenLparen:   60,
}

// Lbp returns the left binding power of t.
func (t TokenType) Lbp() int { return lbpTable[t] }

// Token is one lexical token plus its source offset and, for variable-width
// tokens, its value.
type Token struct {
	Type     TokenType
	Position int

	// Ident/QuotedIdent: the decoded name. Number: the parsed integer.
	// Literal: the decoded JSON value. Error: see ErrMsg/ErrValue.
	Ident     string
	Number    int
	Literal   *value.Value
	ErrValue  string
	ErrMsg    string
	RawLexeme string // source text of a Number or backtick Literal token
}

// Lexeme reconstructs the source text of the token, best-effort, matching
// the original Rust crate's Token::lexeme() (used only for diagnostics).
func (t Token) Lexeme() string {
	switch t.Type {
	case TokenIdentifier:
		return t.Ident
	case TokenQuotedIdentifier:
		return `"` + t.Ident + `"`
	case TokenNumber:
		return t.RawLexeme
	case TokenLiteral:
		return "`" + t.RawLexeme + "`"
	case TokenError:
		return t.ErrValue
	case TokenDot:
		return "."
	case TokenStar:
		return "*"
	case TokenFlatten:
		return "[]"
	case TokenOr:
		return "||"
	case TokenPipe:
		return "|"
	case TokenFilter:
		return "[?"
	case TokenLbracket:
		return "["
	case TokenRbracket:
		return "]"
	case TokenComma:
		return ","
	case TokenColon:
		return ":"
	case TokenNot:
		return "!"
	case TokenNe:
		return "!="
	case TokenEq:
		return "=="
	case TokenGt:
		return ">"
	case TokenGte:
		return ">="
	case TokenLt:
		return "<"
	case TokenLte:
		return "<="
	case TokenAt:
		return "@"
	case TokenAmpersand:
		return "&"
	case TokenLparen:
		return "("
	case TokenRparen:
		return ")"
	case TokenLbrace:
		return "{"
	case TokenRbrace:
		return "}"
	default:
		return ""
	}
}
