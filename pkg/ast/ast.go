// Package ast defines the JMESPath abstract syntax tree produced by
// pkg/parser and consumed by pkg/compiler and pkg/interpreter.
//
// Following the teacher's types.ASTNode shape (pkg/types/ast.go in the
// retrieved gosonata module), a node is one flat struct with a Kind tag and
// typed relation fields, rather than a Go interface implemented by one type
// per node kind. This keeps node construction allocation-arena friendly and
// matches the style the rest of this pipeline was learned from.
package ast

import "github.com/quiverpath/jmespath/pkg/value"

// Kind identifies the AST node variant.
type Kind uint8

const (
	KindCurrentNode Kind = iota
	KindIdentifier
	KindIndex
	KindLiteral
	KindSubexpr
	KindOr
	KindComparison
	KindCondition
	KindPipe
	KindNot
	KindProjection
	KindFlatten
	KindMultiList
	KindMultiHash
	KindFunction
	KindExprRef
	KindSlice
)

// Comparator enumerates the six JMESPath comparison operators.
type Comparator uint8

const (
	CmpEq Comparator = iota
	CmpNe
	CmpLt
	CmpLte
	CmpGt
	CmpGte
)

// String renders a comparator as its source-level spelling.
func (c Comparator) String() string {
	switch c {
	case CmpEq:
		return "=="
	case CmpNe:
		return "!="
	case CmpLt:
		return "<"
	case CmpLte:
		return "<="
	case CmpGt:
		return ">"
	case CmpGte:
		return ">="
	default:
		return "?"
	}
}

// KeyValuePair is one `key: expr` entry of a MultiHash node.
type KeyValuePair struct {
	Key   string
	Value *Node
}

// Node is a JMESPath AST node. Exactly the fields relevant to Kind are
// populated; the zero Node{} is never a valid node (Kind defaults to
// KindCurrentNode, which has no payload, so this is safe but callers always
// construct through the New* helpers below).
type Node struct {
	Kind Kind

	// KindIdentifier
	Name string

	// KindIndex
	Index int

	// KindLiteral
	Literal *value.Value

	// KindSubexpr, KindOr, KindComparison, KindPipe, KindProjection: LHS/RHS.
	// KindCondition: LHS = predicate, RHS = consequent.
	// KindNot, KindFlatten, KindExprRef: LHS only.
	LHS *Node
	RHS *Node

	// KindComparison
	Comparator Comparator

	// KindMultiList, KindFunction (Args)
	Elements []*Node

	// KindMultiHash
	Pairs []KeyValuePair

	// KindFunction
	FuncName string

	// KindSlice
	Start, Stop, Step *int

	// Position is the byte offset of the token that introduced this node,
	// used for error reporting when a runtime error has no better anchor.
	Position int
}

// NewCurrentNode returns the `@` node.
func NewCurrentNode(pos int) *Node { return &Node{Kind: KindCurrentNode, Position: pos} }

// NewIdentifier returns a field-access node.
func NewIdentifier(name string, pos int) *Node {
	return &Node{Kind: KindIdentifier, Name: name, Position: pos}
}

// NewIndex returns an array-index node.
func NewIndex(i int, pos int) *Node { return &Node{Kind: KindIndex, Index: i, Position: pos} }

// NewLiteral returns a literal-value node.
func NewLiteral(v *value.Value, pos int) *Node {
	return &Node{Kind: KindLiteral, Literal: v, Position: pos}
}

// NewSubexpr returns an `lhs.rhs` node.
func NewSubexpr(lhs, rhs *Node) *Node {
	return &Node{Kind: KindSubexpr, LHS: lhs, RHS: rhs, Position: lhs.Position}
}

// NewOr returns an `lhs || rhs` node.
func NewOr(lhs, rhs *Node) *Node {
	return &Node{Kind: KindOr, LHS: lhs, RHS: rhs, Position: lhs.Position}
}

// NewComparison returns a comparator node.
func NewComparison(cmp Comparator, lhs, rhs *Node) *Node {
	return &Node{Kind: KindComparison, Comparator: cmp, LHS: lhs, RHS: rhs, Position: lhs.Position}
}

// NewCondition returns a `predicate -> consequent : null` node.
func NewCondition(predicate, consequent *Node) *Node {
	return &Node{Kind: KindCondition, LHS: predicate, RHS: consequent, Position: predicate.Position}
}

// NewPipe returns a `lhs | rhs` node (subexpr where projections do not cross).
func NewPipe(lhs, rhs *Node) *Node {
	return &Node{Kind: KindPipe, LHS: lhs, RHS: rhs, Position: lhs.Position}
}

// NewNot returns a `!expr` node.
func NewNot(expr *Node, pos int) *Node { return &Node{Kind: KindNot, LHS: expr, Position: pos} }

// NewProjection returns a projection node: evaluate LHS, map RHS over each
// element of an array result.
func NewProjection(lhs, rhs *Node) *Node {
	return &Node{Kind: KindProjection, LHS: lhs, RHS: rhs, Position: lhs.Position}
}

// NewFlatten returns a `lhs[]` flatten node.
func NewFlatten(lhs *Node) *Node {
	return &Node{Kind: KindFlatten, LHS: lhs, Position: lhs.Position}
}

// NewMultiList returns a `[e1, e2, ...]` node.
func NewMultiList(elems []*Node, pos int) *Node {
	return &Node{Kind: KindMultiList, Elements: elems, Position: pos}
}

// NewMultiHash returns a `{k: e, ...}` node.
func NewMultiHash(pairs []KeyValuePair, pos int) *Node {
	return &Node{Kind: KindMultiHash, Pairs: pairs, Position: pos}
}

// NewFunction returns a function-call node.
func NewFunction(name string, args []*Node, pos int) *Node {
	return &Node{Kind: KindFunction, FuncName: name, Elements: args, Position: pos}
}

// NewExprRef returns an `&expr` node.
func NewExprRef(expr *Node, pos int) *Node {
	return &Node{Kind: KindExprRef, LHS: expr, Position: pos}
}

// NewSlice returns a `[start:stop:step]` node; any component may be nil to
// mean "absent".
func NewSlice(start, stop, step *int, pos int) *Node {
	return &Node{Kind: KindSlice, Start: start, Stop: stop, Step: step, Position: pos}
}
