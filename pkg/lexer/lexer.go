package lexer

import (
	"bytes"
	"encoding/json"
	"sort"
	"strconv"
	"unicode/utf8"

	"github.com/quiverpath/jmespath/pkg/value"
)

const eof = -1

// Lexer converts a JMESPath expression into a sequence of tokens, one
// Next() call at a time. It mirrors the teacher's cursor-based scanner
// (start/current/width fields, an acceptRune helper) and the original
// Rust crate's single-pass Peekable<CharIndices> lexer.
type Lexer struct {
	input   string
	length  int
	start   int
	current int
	width   int
	sentEOF bool
}

// New returns a Lexer over expr. Tokens are produced lazily by Next.
func New(expr string) *Lexer {
	return &Lexer{input: expr, length: len(expr)}
}

// Next returns the next (offset, Token) pair. Offsets are monotonically
// non-decreasing; the stream ends with TokenEOF at len(source), and every
// call after that returns TokenEOF again.
func (l *Lexer) Next() (int, Token) {
	if l.sentEOF {
		return l.length, Token{Type: TokenEOF, Position: l.length}
	}

	l.skipWhitespace()
	l.start = l.current
	pos := l.start

	ch := l.peek()
	if ch == eof {
		l.sentEOF = true
		return l.length, Token{Type: TokenEOF, Position: l.length}
	}

	switch {
	case ch == '[':
		l.advance()
		return pos, l.consumeLbracket(pos)
	case ch == '.':
		l.advance()
		return pos, Token{Type: TokenDot, Position: pos}
	case ch == '*':
		l.advance()
		return pos, Token{Type: TokenStar, Position: pos}
	case ch == '@':
		l.advance()
		return pos, Token{Type: TokenAt, Position: pos}
	case ch == ']':
		l.advance()
		return pos, Token{Type: TokenRbracket, Position: pos}
	case ch == '{':
		l.advance()
		return pos, Token{Type: TokenLbrace, Position: pos}
	case ch == '}':
		l.advance()
		return pos, Token{Type: TokenRbrace, Position: pos}
	case ch == '&':
		l.advance()
		return pos, Token{Type: TokenAmpersand, Position: pos}
	case ch == '(':
		l.advance()
		return pos, Token{Type: TokenLparen, Position: pos}
	case ch == ')':
		l.advance()
		return pos, Token{Type: TokenRparen, Position: pos}
	case ch == ',':
		l.advance()
		return pos, Token{Type: TokenComma, Position: pos}
	case ch == ':':
		l.advance()
		return pos, Token{Type: TokenColon, Position: pos}
	case ch == '|':
		l.advance()
		return pos, l.alt('|', TokenOr, TokenPipe, pos)
	case ch == '>':
		l.advance()
		return pos, l.alt('=', TokenGte, TokenGt, pos)
	case ch == '<':
		l.advance()
		return pos, l.alt('=', TokenLte, TokenLt, pos)
	case ch == '!':
		l.advance()
		return pos, l.alt('=', TokenNe, TokenNot, pos)
	case ch == '=':
		l.advance()
		if l.acceptRune('=') {
			return pos, Token{Type: TokenEq, Position: pos}
		}
		return pos, Token{Type: TokenError, Position: pos, ErrValue: "=", ErrMsg: `Did you mean "=="?`}
	case ch == '"':
		return pos, l.consumeQuotedIdentifier(pos)
	case ch == '\'':
		return pos, l.consumeRawString(pos)
	case ch == '`':
		return pos, l.consumeLiteral(pos)
	case ch == '-':
		return pos, l.consumeNegativeNumber(pos)
	case ch >= '0' && ch <= '9':
		return pos, l.consumeNumber(pos, false)
	case isIdentStart(ch):
		return pos, l.consumeIdentifier(pos)
	default:
		l.advance()
		return pos, Token{Type: TokenError, Position: pos, ErrValue: string(rune(ch)), ErrMsg: ""}
	}
}

func isIdentStart(ch rune) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch == '_'
}

func isIdentPart(ch rune) bool {
	return isIdentStart(ch) || (ch >= '0' && ch <= '9')
}

func (l *Lexer) consumeLbracket(pos int) Token {
	switch l.peek() {
	case ']':
		l.advance()
		return Token{Type: TokenFlatten, Position: pos}
	case '?':
		l.advance()
		return Token{Type: TokenFilter, Position: pos}
	default:
		return Token{Type: TokenLbracket, Position: pos}
	}
}

func (l *Lexer) alt(expect rune, matchType, elseType TokenType, pos int) Token {
	if l.acceptRune(expect) {
		return Token{Type: matchType, Position: pos}
	}
	return Token{Type: elseType, Position: pos}
}

func (l *Lexer) consumeIdentifier(pos int) Token {
	for isIdentPart(l.peek()) {
		l.advance()
	}
	lexeme := l.input[l.start:l.current]
	return Token{Type: TokenIdentifier, Position: pos, Ident: lexeme}
}

func (l *Lexer) consumeNumber(pos int, negative bool) Token {
	digitsStart := l.current
	for {
		ch := l.peek()
		if ch < '0' || ch > '9' {
			break
		}
		l.advance()
	}
	lexeme := l.input[digitsStart:l.current]
	n, err := strconv.Atoi(lexeme)
	if err != nil {
		return Token{Type: TokenError, Position: pos, ErrValue: lexeme, ErrMsg: "invalid number literal"}
	}
	if negative {
		n = -n
	}
	raw := l.input[l.start:l.current]
	return Token{Type: TokenNumber, Position: pos, Number: n, RawLexeme: raw}
}

func (l *Lexer) consumeNegativeNumber(pos int) Token {
	l.advance() // consume '-'
	next := l.peek()
	if next >= '1' && next <= '9' {
		return l.consumeNumber(pos, true)
	}
	return Token{Type: TokenError, Position: pos, ErrValue: "-", ErrMsg: "Negative sign must be followed by numbers 1-9"}
}

// consumeInside reads characters up to (and consuming) the matching
// wrapper rune, honoring backslash-escapes by retaining both the backslash
// and the escaped character in the raw buffer (decoding happens in the
// caller). Returns the raw inner text and whether the wrapper was found.
func (l *Lexer) consumeInside(wrapper rune) (string, bool) {
	l.advance() // skip opening wrapper
	var buf bytes.Buffer
	for {
		ch := l.peek()
		if ch == eof {
			return buf.String(), false
		}
		if ch == wrapper {
			l.advance()
			return buf.String(), true
		}
		if ch == '\\' {
			buf.WriteRune(ch)
			l.advance()
			esc := l.peek()
			if esc == eof {
				return buf.String(), false
			}
			buf.WriteRune(esc)
			l.advance()
			continue
		}
		buf.WriteRune(ch)
		l.advance()
	}
}

func (l *Lexer) consumeQuotedIdentifier(pos int) Token {
	raw, closed := l.consumeInside('"')
	if !closed {
		return Token{Type: TokenError, Position: pos, ErrValue: `"` + raw, ErrMsg: `Unclosed " delimiter`}
	}
	// Re-decode as a JSON string to resolve escapes, matching the original
	// crate's `Json::from_str(format!(r#""{}""#, s))`.
	var decoded string
	dec := json.NewDecoder(bytes.NewReader([]byte(`"` + raw + `"`)))
	if err := dec.Decode(&decoded); err != nil {
		return Token{
			Type: TokenError, Position: pos,
			ErrValue: `"` + raw + `"`,
			ErrMsg:   "Unable to parse JSON value in quoted identifier: " + err.Error(),
		}
	}
	return Token{Type: TokenQuotedIdentifier, Position: pos, Ident: decoded}
}

func (l *Lexer) consumeRawString(pos int) Token {
	raw, closed := l.consumeInside('\'')
	if !closed {
		return Token{Type: TokenError, Position: pos, ErrValue: "'" + raw, ErrMsg: `Unclosed ' delimiter`}
	}
	return Token{Type: TokenLiteral, Position: pos, Literal: &value.Value{Kind: value.KindString, String: raw}}
}

func (l *Lexer) consumeLiteral(pos int) Token {
	raw, closed := l.consumeInside('`')
	if !closed {
		return Token{Type: TokenError, Position: pos, ErrValue: "`" + raw, ErrMsg: "Unclosed ` delimiter"}
	}
	v, err := decodeJSONValue(raw)
	if err != nil {
		return Token{
			Type: TokenError, Position: pos,
			ErrValue: "`" + raw + "`",
			ErrMsg:   "Unable to parse literal JSON: " + err.Error(),
		}
	}
	return Token{Type: TokenLiteral, Position: pos, Literal: v, RawLexeme: raw}
}

// decodeJSONValue decodes a JSON document into the value.Value tagged
// union, preserving the I64/U64/F64 distinction spec.md's data model
// requires via json.Number instead of collapsing every number to float64.
func decodeJSONValue(raw string) (*value.Value, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	dec.UseNumber()
	var anyVal interface{}
	if err := dec.Decode(&anyVal); err != nil {
		return nil, err
	}
	return fromGo(anyVal), nil
}

func fromGo(v interface{}) *value.Value {
	switch t := v.(type) {
	case nil:
		return &value.Value{Kind: value.KindNull}
	case bool:
		return &value.Value{Kind: value.KindBool, Bool: t}
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return &value.Value{Kind: value.KindI64, I64: i}
		}
		f, _ := t.Float64()
		return &value.Value{Kind: value.KindF64, F64: f}
	case string:
		return &value.Value{Kind: value.KindString, String: t}
	case []interface{}:
		arr := make([]*value.Value, len(t))
		for i, e := range t {
			arr[i] = fromGo(e)
		}
		return &value.Value{Kind: value.KindArray, Array: arr}
	case map[string]interface{}:
		obj := value.NewObject()
		// encoding/json doesn't preserve source key order for
		// map[string]interface{}; sort so that keys()/values() and
		// object-wildcard projection over a backtick literal are
		// deterministic across runs instead of following Go's randomized
		// map iteration order.
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			obj.Set(k, fromGo(t[k]))
		}
		return &value.Value{Kind: value.KindObject, Object: obj}
	default:
		return &value.Value{Kind: value.KindNull}
	}
}

func (l *Lexer) skipWhitespace() {
	for {
		ch := l.peek()
		switch ch {
		case ' ', '\t', '\n', '\r':
			l.advance()
		default:
			return
		}
	}
}

func (l *Lexer) peek() rune {
	if l.current >= l.length {
		return eof
	}
	r, w := utf8.DecodeRuneInString(l.input[l.current:])
	l.width = w
	return r
}

func (l *Lexer) advance() {
	if l.current >= l.length {
		return
	}
	_, w := utf8.DecodeRuneInString(l.input[l.current:])
	l.current += w
}

func (l *Lexer) acceptRune(r rune) bool {
	if l.peek() == r {
		l.advance()
		return true
	}
	return false
}
