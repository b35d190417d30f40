// Package parser implements a Pratt (top-down operator-precedence) parser
// that turns a pkg/lexer token stream into a pkg/ast tree.
//
// The overall shape — a Parser holding the lexer plus a one-token
// lookahead, a parseExpression(rbp) core loop, and per-token nud/led
// dispatch — follows the teacher module's recursive-descent parser
// (pkg/parser/parser_impl.go in the retrieved gosonata module), adapted
// from JSONata's operator set to JMESPath's smaller, denser one.
package parser

import (
	"github.com/quiverpath/jmespath/pkg/ast"
	"github.com/quiverpath/jmespath/pkg/jmerr"
	"github.com/quiverpath/jmespath/pkg/lexer"
)

// DefaultMaxDepth bounds parseExpression recursion so a pathological input
// like a long run of nested parens fails with a parse error instead of
// overflowing the Go stack; grounded on the same 104-deep benchmark chain
// that sizes pkg/interpreter's recursion limit.
const DefaultMaxDepth = 250

// Parser holds parsing state: the token source and a single-token
// lookahead, matching the teacher's current/prev cursor fields.
type Parser struct {
	lex      *lexer.Lexer
	cur      lexer.Token
	depth    int
	maxDepth int
}

// New returns a Parser positioned at the first token of expr, with the
// default recursion depth limit.
func New(expr string) *Parser {
	return NewWithMaxDepth(expr, DefaultMaxDepth)
}

// NewWithMaxDepth returns a Parser positioned at the first token of expr,
// overriding the recursion depth limit.
func NewWithMaxDepth(expr string, maxDepth int) *Parser {
	p := &Parser{lex: lexer.New(expr), maxDepth: maxDepth}
	p.advance()
	return p
}

// Parse tokenizes and parses expr into an AST, demanding Eof after the
// top-level expression.
func Parse(expr string) (*ast.Node, error) {
	return ParseWithMaxDepth(expr, DefaultMaxDepth)
}

// ParseWithMaxDepth is Parse with an explicit recursion depth limit.
func ParseWithMaxDepth(expr string, maxDepth int) (*ast.Node, error) {
	p := NewWithMaxDepth(expr, maxDepth)
	if p.cur.Type == lexer.TokenError {
		return nil, p.errorToken(p.cur)
	}
	if p.cur.Type == lexer.TokenEOF {
		return nil, jmerr.Parse(0, "Empty expression")
	}

	node, err := p.parseExpression(0)
	if err != nil {
		return nil, err
	}
	if p.cur.Type != lexer.TokenEOF {
		return nil, jmerr.Parse(p.cur.Position, "Unexpected token: %s", p.cur.Type)
	}
	return node, nil
}

func (p *Parser) advance() {
	_, p.cur = p.lex.Next()
}

func (p *Parser) errorToken(tok lexer.Token) error {
	return jmerr.Parse(tok.Position, "%s", tok.ErrMsg)
}

func (p *Parser) expect(tt lexer.TokenType) error {
	if p.cur.Type == lexer.TokenError {
		return p.errorToken(p.cur)
	}
	if p.cur.Type != tt {
		return jmerr.Parse(p.cur.Position, "Expected %s, found %s", tt, p.cur.Type)
	}
	p.advance()
	return nil
}

// parseExpression is the Pratt core loop: parse a nud, then keep folding
// in led productions while the current token's lbp exceeds rbp.
func (p *Parser) parseExpression(rbp int) (*ast.Node, error) {
	p.depth++
	defer func() { p.depth-- }()
	if p.depth > p.maxDepth {
		return nil, jmerr.Parse(p.cur.Position, "expression nested too deeply (max %d)", p.maxDepth)
	}

	left, err := p.nud()
	if err != nil {
		return nil, err
	}
	return p.parseLedLoop(left, rbp)
}

// parseLedLoop folds in led productions onto an already-parsed left node
// while the current token's lbp exceeds rbp. Factored out of
// parseExpression so projection right-hand sides can seed the loop with
// an implicit current-node left instead of calling nud().
func (p *Parser) parseLedLoop(left *ast.Node, rbp int) (*ast.Node, error) {
	var err error
	for rbp < p.cur.Type.Lbp() {
		left, err = p.led(left)
		if err != nil {
			return nil, err
		}
	}
	return left, nil
}

// parseProjectionRHS parses what follows a projection-introducing token
// (Star, Flatten, Filter): the chain of field accesses / further
// projections that each projected element is evaluated against, stopping
// before any token whose lbp does not exceed rbp so the outer parse can
// pick it back up (e.g. a second, chained projection). Absence of any
// such chain defaults to the current node (identity projection).
func (p *Parser) parseProjectionRHS(rbp int) (*ast.Node, error) {
	switch p.cur.Type {
	case lexer.TokenDot:
		p.advance()
		left, err := p.parseDotRHSBare()
		if err != nil {
			return nil, err
		}
		return p.parseLedLoop(left, rbp)
	case lexer.TokenLbracket, lexer.TokenFlatten, lexer.TokenFilter:
		left, err := p.nud()
		if err != nil {
			return nil, err
		}
		return p.parseLedLoop(left, rbp)
	default:
		return ast.NewCurrentNode(p.cur.Position), nil
	}
}

func (p *Parser) nud() (*ast.Node, error) {
	tok := p.cur
	switch tok.Type {
	case lexer.TokenError:
		return nil, p.errorToken(tok)

	case lexer.TokenIdentifier, lexer.TokenQuotedIdentifier:
		p.advance()
		return ast.NewIdentifier(tok.Ident, tok.Position), nil

	case lexer.TokenAt:
		p.advance()
		return ast.NewCurrentNode(tok.Position), nil

	case lexer.TokenLiteral:
		p.advance()
		return ast.NewLiteral(tok.Literal, tok.Position), nil

	case lexer.TokenStar:
		p.advance()
		rhs, err := p.parseProjectionRHS(lexer.TokenStar.Lbp())
		if err != nil {
			return nil, err
		}
		return ast.NewProjection(ast.NewCurrentNode(tok.Position), rhs), nil

	case lexer.TokenFlatten:
		p.advance()
		rhs, err := p.parseProjectionRHS(lexer.TokenFlatten.Lbp())
		if err != nil {
			return nil, err
		}
		return ast.NewProjection(ast.NewFlatten(ast.NewCurrentNode(tok.Position)), rhs), nil

	case lexer.TokenFilter:
		p.advance()
		return p.parseFilter(ast.NewCurrentNode(tok.Position))

	case lexer.TokenLbracket:
		p.advance()
		return p.parseBracketNud(tok.Position)

	case lexer.TokenLbrace:
		p.advance()
		return p.parseMultiHash(tok.Position)

	case lexer.TokenNot:
		p.advance()
		operand, err := p.parseExpression(lexer.TokenNot.Lbp())
		if err != nil {
			return nil, err
		}
		return ast.NewNot(operand, tok.Position), nil

	case lexer.TokenAmpersand:
		p.advance()
		operand, err := p.parseExpression(lexer.TokenAmpersand.Lbp())
		if err != nil {
			return nil, err
		}
		return ast.NewExprRef(operand, tok.Position), nil

	case lexer.TokenLparen:
		p.advance()
		inner, err := p.parseExpression(0)
		if err != nil {
			return nil, err
		}
		if err := p.expect(lexer.TokenRparen); err != nil {
			return nil, err
		}
		return inner, nil

	default:
		return nil, jmerr.Parse(tok.Position, "Unexpected token: %s", tok.Type)
	}
}

func (p *Parser) led(left *ast.Node) (*ast.Node, error) {
	tok := p.cur
	switch tok.Type {
	case lexer.TokenDot:
		p.advance()
		rhs, err := p.parseDotRHS(left)
		if err != nil {
			return nil, err
		}
		return rhs, nil

	case lexer.TokenPipe:
		p.advance()
		rhs, err := p.parseExpression(lexer.TokenPipe.Lbp())
		if err != nil {
			return nil, err
		}
		return ast.NewPipe(left, rhs), nil

	case lexer.TokenOr:
		p.advance()
		rhs, err := p.parseExpression(lexer.TokenOr.Lbp())
		if err != nil {
			return nil, err
		}
		return ast.NewOr(left, rhs), nil

	case lexer.TokenEq, lexer.TokenNe, lexer.TokenLt, lexer.TokenLte, lexer.TokenGt, lexer.TokenGte:
		cmp := comparatorFor(tok.Type)
		p.advance()
		rhs, err := p.parseExpression(tok.Type.Lbp())
		if err != nil {
			return nil, err
		}
		return ast.NewComparison(cmp, left, rhs), nil

	case lexer.TokenFlatten:
		p.advance()
		rhs, err := p.parseProjectionRHS(lexer.TokenFlatten.Lbp())
		if err != nil {
			return nil, err
		}
		return ast.NewProjection(ast.NewFlatten(left), rhs), nil

	case lexer.TokenFilter:
		p.advance()
		return p.parseFilter(left)

	case lexer.TokenLbracket:
		p.advance()
		return p.parseBracketLed(left)

	case lexer.TokenLparen:
		if left.Kind != ast.KindIdentifier {
			return nil, jmerr.Parse(tok.Position, "Unexpected token: %s", tok.Type)
		}
		p.advance()
		args, err := p.parseArgList()
		if err != nil {
			return nil, err
		}
		return ast.NewFunction(left.Name, args, left.Position), nil

	default:
		return nil, jmerr.Parse(tok.Position, "Unexpected token: %s", tok.Type)
	}
}

func comparatorFor(tt lexer.TokenType) ast.Comparator {
	switch tt {
	case lexer.TokenEq:
		return ast.CmpEq
	case lexer.TokenNe:
		return ast.CmpNe
	case lexer.TokenLt:
		return ast.CmpLt
	case lexer.TokenLte:
		return ast.CmpLte
	case lexer.TokenGt:
		return ast.CmpGt
	default:
		return ast.CmpGte
	}
}

// parseDotRHS implements "parse-identifier-or-multiselect-or-star": the
// production allowed immediately after a `.`, wrapping it against left.
func (p *Parser) parseDotRHS(left *ast.Node) (*ast.Node, error) {
	rhs, err := p.parseDotRHSBare()
	if err != nil {
		return nil, err
	}
	return ast.NewSubexpr(left, rhs), nil
}

// parseDotRHSBare parses the bare production allowed after a `.` without
// wrapping it in a Subexpr against any particular left node. Used both by
// parseDotRHS (wraps against a real lhs) and parseProjectionRHS (the
// production continues a projection's per-element expression instead).
func (p *Parser) parseDotRHSBare() (*ast.Node, error) {
	switch p.cur.Type {
	case lexer.TokenStar:
		pos := p.cur.Position
		p.advance()
		rhs, err := p.parseProjectionRHS(lexer.TokenStar.Lbp())
		if err != nil {
			return nil, err
		}
		return ast.NewProjection(ast.NewCurrentNode(pos), rhs), nil
	case lexer.TokenLbracket, lexer.TokenLbrace:
		return p.nud()
	case lexer.TokenIdentifier, lexer.TokenQuotedIdentifier:
		node := ast.NewIdentifier(p.cur.Ident, p.cur.Position)
		p.advance()
		return node, nil
	default:
		return nil, jmerr.Parse(p.cur.Position, "Unexpected token: %s", p.cur.Type)
	}
}

// parseFilter implements `[? predicate ]` filter projections, shared
// between nud (bare `[?...]`, implicit current-node lhs) and led
// (`lhs[?...]`) positions.
func (p *Parser) parseFilter(lhs *ast.Node) (*ast.Node, error) {
	predicate, err := p.parseExpression(0)
	if err != nil {
		return nil, err
	}
	if err := p.expect(lexer.TokenRbracket); err != nil {
		return nil, err
	}
	rhs, err := p.parseProjectionRHS(lexer.TokenFilter.Lbp())
	if err != nil {
		return nil, err
	}
	return ast.NewProjection(lhs, ast.NewCondition(predicate, rhs)), nil
}

// parseBracketNud handles a `[` with no preceding lhs: `[n]` indexes the
// current node, `[*]`/`[]` project the current node, `[a, b]` is a
// multi-select list, and `[start:stop:step]` slices the current node.
func (p *Parser) parseBracketNud(pos int) (*ast.Node, error) {
	switch p.cur.Type {
	case lexer.TokenStar:
		p.advance()
		if err := p.expect(lexer.TokenRbracket); err != nil {
			return nil, err
		}
		rhs, err := p.parseProjectionRHS(lexer.TokenStar.Lbp())
		if err != nil {
			return nil, err
		}
		return ast.NewProjection(ast.NewCurrentNode(pos), rhs), nil
	case lexer.TokenNumber, lexer.TokenColon:
		return p.parseIndexOrSlice(pos)
	default:
		return p.parseMultiList(pos)
	}
}

// parseBracketLed handles `lhs[...]`: index, slice, or wildcard
// projection applied to lhs.
func (p *Parser) parseBracketLed(lhs *ast.Node) (*ast.Node, error) {
	switch p.cur.Type {
	case lexer.TokenStar:
		p.advance()
		if err := p.expect(lexer.TokenRbracket); err != nil {
			return nil, err
		}
		rhs, err := p.parseProjectionRHS(lexer.TokenStar.Lbp())
		if err != nil {
			return nil, err
		}
		return ast.NewProjection(lhs, rhs), nil
	case lexer.TokenNumber, lexer.TokenColon:
		node, err := p.parseIndexOrSlice(lhs.Position)
		if err != nil {
			return nil, err
		}
		return ast.NewSubexpr(lhs, node), nil
	default:
		return nil, jmerr.Parse(p.cur.Position, "Unexpected token: %s", p.cur.Type)
	}
}

// parseIndexOrSlice parses the inside of `[n]` or `[start:stop:step]`,
// assuming cur is Number or Colon, and consumes the closing Rbracket.
func (p *Parser) parseIndexOrSlice(pos int) (*ast.Node, error) {
	var start *int
	if p.cur.Type == lexer.TokenNumber {
		n := p.cur.Number
		start = &n
		p.advance()
		if p.cur.Type == lexer.TokenRbracket {
			p.advance()
			return ast.NewIndex(n, pos), nil
		}
	}

	if err := p.expect(lexer.TokenColon); err != nil {
		return nil, err
	}

	var stop *int
	if p.cur.Type == lexer.TokenNumber {
		n := p.cur.Number
		stop = &n
		p.advance()
	}

	var step *int
	if p.cur.Type == lexer.TokenColon {
		p.advance()
		if p.cur.Type == lexer.TokenNumber {
			n := p.cur.Number
			if n == 0 {
				return nil, jmerr.Parse(p.cur.Position, "slice step cannot be 0")
			}
			step = &n
			p.advance()
		}
	}

	if err := p.expect(lexer.TokenRbracket); err != nil {
		return nil, err
	}
	return ast.NewSlice(start, stop, step, pos), nil
}

func (p *Parser) parseMultiList(pos int) (*ast.Node, error) {
	var elems []*ast.Node
	for {
		elem, err := p.parseExpression(0)
		if err != nil {
			return nil, err
		}
		elems = append(elems, elem)
		if p.cur.Type == lexer.TokenComma {
			p.advance()
			continue
		}
		break
	}
	if err := p.expect(lexer.TokenRbracket); err != nil {
		return nil, err
	}
	return ast.NewMultiList(elems, pos), nil
}

func (p *Parser) parseMultiHash(pos int) (*ast.Node, error) {
	var pairs []ast.KeyValuePair
	for {
		if p.cur.Type != lexer.TokenIdentifier && p.cur.Type != lexer.TokenQuotedIdentifier {
			return nil, jmerr.Parse(p.cur.Position, "Expected Identifier, found %s", p.cur.Type)
		}
		key := p.cur.Ident
		p.advance()
		if err := p.expect(lexer.TokenColon); err != nil {
			return nil, err
		}
		val, err := p.parseExpression(0)
		if err != nil {
			return nil, err
		}
		pairs = append(pairs, ast.KeyValuePair{Key: key, Value: val})
		if p.cur.Type == lexer.TokenComma {
			p.advance()
			continue
		}
		break
	}
	if err := p.expect(lexer.TokenRbrace); err != nil {
		return nil, err
	}
	return ast.NewMultiHash(pairs, pos), nil
}

func (p *Parser) parseArgList() ([]*ast.Node, error) {
	var args []*ast.Node
	if p.cur.Type == lexer.TokenRparen {
		p.advance()
		return args, nil
	}
	for {
		arg, err := p.parseExpression(0)
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if p.cur.Type == lexer.TokenComma {
			p.advance()
			continue
		}
		break
	}
	if err := p.expect(lexer.TokenRparen); err != nil {
		return nil, err
	}
	return args, nil
}
