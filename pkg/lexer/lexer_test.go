package lexer_test

import (
	"testing"

	"github.com/quiverpath/jmespath/pkg/lexer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tokenize(t *testing.T, expr string) []lexer.Token {
	t.Helper()
	l := lexer.New(expr)
	var toks []lexer.Token
	for {
		_, tok := l.Next()
		toks = append(toks, tok)
		if tok.Type == lexer.TokenEOF {
			return toks
		}
		if len(toks) > 1000 {
			t.Fatalf("tokenize did not reach EOF for %q", expr)
		}
	}
}

func types(toks []lexer.Token) []lexer.TokenType {
	out := make([]lexer.TokenType, len(toks))
	for i, tok := range toks {
		out[i] = tok.Type
	}
	return out
}

func TestSliceExpression(t *testing.T) {
	toks := tokenize(t, "foo[0::-1]")
	assert.Equal(t, []lexer.TokenType{
		lexer.TokenIdentifier,
		lexer.TokenLbracket,
		lexer.TokenNumber,
		lexer.TokenColon,
		lexer.TokenColon,
		lexer.TokenNumber,
		lexer.TokenRbracket,
		lexer.TokenEOF,
	}, types(toks))
	assert.Equal(t, "foo", toks[0].Ident)
	assert.Equal(t, 0, toks[2].Number)
	assert.Equal(t, -1, toks[5].Number)
}

func TestLeadingZeroNegativeNumberIsError(t *testing.T) {
	toks := tokenize(t, "-01")
	require.Len(t, toks, 3)
	assert.Equal(t, lexer.TokenError, toks[0].Type)
	assert.Equal(t, "Negative sign must be followed by numbers 1-9", toks[0].ErrMsg)
}

func TestWhitespaceIsSkippedBetweenTokens(t *testing.T) {
	toks := tokenize(t, "  foo  .   bar ")
	assert.Equal(t, []lexer.TokenType{
		lexer.TokenIdentifier, lexer.TokenDot, lexer.TokenIdentifier, lexer.TokenEOF,
	}, types(toks))
	assert.Equal(t, 2, toks[0].Position)
}

func TestSuccessiveTokenSequence(t *testing.T) {
	toks := tokenize(t, "a.b[*].c | d")
	assert.Equal(t, []lexer.TokenType{
		lexer.TokenIdentifier, lexer.TokenDot, lexer.TokenIdentifier,
		lexer.TokenLbracket, lexer.TokenStar, lexer.TokenRbracket,
		lexer.TokenDot, lexer.TokenIdentifier, lexer.TokenPipe, lexer.TokenIdentifier,
		lexer.TokenEOF,
	}, types(toks))
}

func TestFlattenAndFilterTokens(t *testing.T) {
	toks := tokenize(t, "a[].b[?c]")
	assert.Equal(t, []lexer.TokenType{
		lexer.TokenIdentifier, lexer.TokenFlatten, lexer.TokenDot, lexer.TokenIdentifier,
		lexer.TokenFilter, lexer.TokenIdentifier, lexer.TokenRbracket, lexer.TokenEOF,
	}, types(toks))
}

func TestOrAndPipeDisambiguation(t *testing.T) {
	toks := tokenize(t, "a || b | c")
	assert.Equal(t, []lexer.TokenType{
		lexer.TokenIdentifier, lexer.TokenOr, lexer.TokenIdentifier,
		lexer.TokenPipe, lexer.TokenIdentifier, lexer.TokenEOF,
	}, types(toks))
}

func TestComparisonOperators(t *testing.T) {
	toks := tokenize(t, "a ==b!=c<d<=e>f>=g")
	assert.Equal(t, []lexer.TokenType{
		lexer.TokenIdentifier, lexer.TokenEq, lexer.TokenIdentifier,
		lexer.TokenNe, lexer.TokenIdentifier, lexer.TokenLt, lexer.TokenIdentifier,
		lexer.TokenLte, lexer.TokenIdentifier, lexer.TokenGt, lexer.TokenIdentifier,
		lexer.TokenGte, lexer.TokenIdentifier, lexer.TokenEOF,
	}, types(toks))
}

func TestSingleEqualsIsError(t *testing.T) {
	toks := tokenize(t, "a=b")
	require.Len(t, toks, 4)
	assert.Equal(t, lexer.TokenError, toks[1].Type)
	assert.Equal(t, `Did you mean "=="?`, toks[1].ErrMsg)
}

func TestNotVsNotEqual(t *testing.T) {
	toks := tokenize(t, "!a != b")
	assert.Equal(t, []lexer.TokenType{
		lexer.TokenNot, lexer.TokenIdentifier, lexer.TokenNe, lexer.TokenIdentifier, lexer.TokenEOF,
	}, types(toks))
}

func TestQuotedIdentifierDecodesEscapes(t *testing.T) {
	toks := tokenize(t, `"foo\nbar"`)
	require.Equal(t, lexer.TokenQuotedIdentifier, toks[0].Type)
	assert.Equal(t, "foo\nbar", toks[0].Ident)
}

func TestUnclosedQuotedIdentifier(t *testing.T) {
	toks := tokenize(t, `"foo`)
	require.Equal(t, lexer.TokenError, toks[0].Type)
	assert.Equal(t, `Unclosed " delimiter`, toks[0].ErrMsg)
}

func TestRawStringLiteralDoesNotDecodeEscapes(t *testing.T) {
	toks := tokenize(t, `'foo\'s'`)
	require.Equal(t, lexer.TokenLiteral, toks[0].Type)
	require.NotNil(t, toks[0].Literal)
	assert.Equal(t, `foo\'s`, toks[0].Literal.String)
}

func TestUnclosedRawString(t *testing.T) {
	toks := tokenize(t, `'foo`)
	require.Equal(t, lexer.TokenError, toks[0].Type)
	assert.Equal(t, `Unclosed ' delimiter`, toks[0].ErrMsg)
}

func TestBacktickLiteralDecodesJSON(t *testing.T) {
	toks := tokenize(t, "`{\"a\": [1, 2.5, true, null]}`")
	require.Equal(t, lexer.TokenLiteral, toks[0].Type)
	require.NotNil(t, toks[0].Literal)
	assert.Equal(t, "object", toks[0].Literal.Kind.String())
}

func TestBacktickLiteralIntegerStaysI64(t *testing.T) {
	toks := tokenize(t, "`5`")
	require.NotNil(t, toks[0].Literal)
	assert.Equal(t, int64(5), toks[0].Literal.I64)
}

func TestUnclosedLiteral(t *testing.T) {
	toks := tokenize(t, "`{\"a\": 1}")
	require.Equal(t, lexer.TokenError, toks[0].Type)
	assert.Equal(t, "Unclosed ` delimiter", toks[0].ErrMsg)
}

func TestExprefAndAtTokens(t *testing.T) {
	toks := tokenize(t, "&@.foo")
	assert.Equal(t, []lexer.TokenType{
		lexer.TokenAmpersand, lexer.TokenAt, lexer.TokenDot, lexer.TokenIdentifier, lexer.TokenEOF,
	}, types(toks))
}

func TestMultiListAndMultiHashDelimiters(t *testing.T) {
	toks := tokenize(t, "[a, b][{c: d}]")
	assert.Contains(t, types(toks), lexer.TokenLbrace)
	assert.Contains(t, types(toks), lexer.TokenRbrace)
	assert.Contains(t, types(toks), lexer.TokenComma)
	assert.Contains(t, types(toks), lexer.TokenColon)
}

func TestEmptyExpressionIsImmediateEOF(t *testing.T) {
	toks := tokenize(t, "")
	require.Len(t, toks, 1)
	assert.Equal(t, lexer.TokenEOF, toks[0].Type)
}

func TestRepeatedEOFAfterExhaustion(t *testing.T) {
	l := lexer.New("a")
	_, first := l.Next()
	assert.Equal(t, lexer.TokenIdentifier, first.Type)
	_, second := l.Next()
	assert.Equal(t, lexer.TokenEOF, second.Type)
	_, third := l.Next()
	assert.Equal(t, lexer.TokenEOF, third.Type)
}

func TestIdentifierWithUnderscoresAndDigits(t *testing.T) {
	toks := tokenize(t, "_foo_bar123")
	require.Equal(t, lexer.TokenIdentifier, toks[0].Type)
	assert.Equal(t, "_foo_bar123", toks[0].Ident)
}

func TestLbpOrdering(t *testing.T) {
	assert.Less(t, lexer.TokenPipe.Lbp(), lexer.TokenOr.Lbp())
	assert.Less(t, lexer.TokenOr.Lbp(), lexer.TokenFlatten.Lbp())
	assert.Less(t, lexer.TokenFlatten.Lbp(), lexer.TokenStar.Lbp())
	assert.Equal(t, lexer.TokenStar.Lbp(), lexer.TokenFilter.Lbp())
	assert.Less(t, lexer.TokenDot.Lbp(), lexer.TokenLbrace.Lbp())
	assert.Less(t, lexer.TokenLbrace.Lbp(), lexer.TokenLbracket.Lbp())
	assert.Less(t, lexer.TokenLbracket.Lbp(), lexer.TokenLparen.Lbp())
	assert.Equal(t, 0, lexer.TokenComma.Lbp())
}
