// Package interpreter implements the tree-walking evaluator for the full
// JMESPath AST, the only complete evaluation path (the opcode compiler and
// vm package cover a deliberate subset and are tested on their own, not
// against this package's results).
//
// Grounded on the teacher's node-kind switch dispatch style
// (pkg/evaluator/eval_impl.go's evalNode), adapted from JSONata's richer
// node set down to JMESPath's, with recursion depth tracked the same
// increment-on-entry/decrement-on-exit way as the teacher's EvalContext.depth.
package interpreter

import (
	"fmt"

	"github.com/quiverpath/jmespath/pkg/ast"
	"github.com/quiverpath/jmespath/pkg/functions"
	"github.com/quiverpath/jmespath/pkg/jmerr"
	"github.com/quiverpath/jmespath/pkg/value"
)

// defaultMaxDepth bounds tree-interpreter recursion; the deepest benchmark in
// the reference corpus chains 104 projections, so this leaves ample headroom
// without risking a Go stack overflow on pathological input.
const defaultMaxDepth = 500

// Interpreter evaluates an AST against a "current" value. It owns a value
// Allocator and a function Registry; neither is safe for concurrent use, so
// each concurrent evaluation must use its own Interpreter (per spec.md §5).
type Interpreter struct {
	alloc    *value.Allocator
	funcs    *functions.Registry
	maxDepth int
	depth    int
}

// Option configures an Interpreter at construction time.
type Option func(*Interpreter)

// WithMaxDepth overrides the recursion depth limit.
func WithMaxDepth(depth int) Option {
	return func(it *Interpreter) { it.maxDepth = depth }
}

// WithFunctions overrides the function registry, e.g. to add custom
// functions registered alongside the core library.
func WithFunctions(r *functions.Registry) Option {
	return func(it *Interpreter) { it.funcs = r }
}

// New returns an Interpreter with a fresh allocator and the core function
// registry.
func New(opts ...Option) *Interpreter {
	it := &Interpreter{
		alloc:    value.NewAllocator(),
		funcs:    functions.NewRegistry(),
		maxDepth: defaultMaxDepth,
	}
	for _, opt := range opts {
		opt(it)
	}
	return it
}

// Allocator returns the interpreter's value allocator, satisfying
// functions.Evaluator.
func (it *Interpreter) Allocator() *value.Allocator { return it.alloc }

// Eval evaluates node against current, the root of a fresh recursion-depth
// count.
func (it *Interpreter) Eval(node *ast.Node, current *value.Value) (*value.Value, error) {
	it.depth = 0
	return it.eval(node, current)
}

// EvalExpr evaluates an expref's referenced AST against a per-element
// current value; it satisfies functions.Evaluator so map/sort_by/max_by/
// min_by can apply a selector without depending on this package.
func (it *Interpreter) EvalExpr(node *ast.Node, current *value.Value) (*value.Value, error) {
	return it.eval(node, current)
}

func (it *Interpreter) eval(node *ast.Node, current *value.Value) (*value.Value, error) {
	it.depth++
	defer func() { it.depth-- }()
	if it.depth > it.maxDepth {
		return nil, fmt.Errorf("interpreter: maximum recursion depth of %d exceeded", it.maxDepth)
	}

	switch node.Kind {
	case ast.KindCurrentNode:
		return current, nil
	case ast.KindIdentifier:
		return it.evalIdentifier(node, current), nil
	case ast.KindIndex:
		return it.evalIndex(node, current), nil
	case ast.KindLiteral:
		return node.Literal, nil
	case ast.KindSubexpr:
		return it.evalSubexpr(node, current)
	case ast.KindPipe:
		return it.evalSubexpr(node, current)
	case ast.KindOr:
		return it.evalOr(node, current)
	case ast.KindComparison:
		return it.evalComparison(node, current)
	case ast.KindCondition:
		return it.evalCondition(node, current)
	case ast.KindNot:
		return it.evalNot(node, current)
	case ast.KindProjection:
		return it.evalProjection(node, current)
	case ast.KindFlatten:
		return it.evalFlatten(node, current)
	case ast.KindSlice:
		return it.evalSlice(node, current)
	case ast.KindMultiList:
		return it.evalMultiList(node, current)
	case ast.KindMultiHash:
		return it.evalMultiHash(node, current)
	case ast.KindFunction:
		return it.evalFunction(node, current)
	case ast.KindExprRef:
		return it.alloc.AllocExpref(node.LHS), nil
	default:
		return nil, fmt.Errorf("interpreter: unhandled AST node kind %d", node.Kind)
	}
}

func (it *Interpreter) evalIdentifier(node *ast.Node, current *value.Value) *value.Value {
	if current == nil || current.Kind != value.KindObject {
		return it.alloc.AllocNull()
	}
	if v, ok := current.Object.Get(node.Name); ok {
		return v
	}
	return it.alloc.AllocNull()
}

func (it *Interpreter) evalIndex(node *ast.Node, current *value.Value) *value.Value {
	if current == nil || current.Kind != value.KindArray {
		return it.alloc.AllocNull()
	}
	i := node.Index
	if i < 0 {
		i += len(current.Array)
	}
	if i < 0 || i >= len(current.Array) {
		return it.alloc.AllocNull()
	}
	return current.Array[i]
}

func (it *Interpreter) evalSubexpr(node *ast.Node, current *value.Value) (*value.Value, error) {
	l, err := it.eval(node.LHS, current)
	if err != nil {
		return nil, err
	}
	return it.eval(node.RHS, l)
}

func (it *Interpreter) evalOr(node *ast.Node, current *value.Value) (*value.Value, error) {
	l, err := it.eval(node.LHS, current)
	if err != nil {
		return nil, err
	}
	if l.Truthy() {
		return l, nil
	}
	return it.eval(node.RHS, current)
}

func (it *Interpreter) evalComparison(node *ast.Node, current *value.Value) (*value.Value, error) {
	l, err := it.eval(node.LHS, current)
	if err != nil {
		return nil, err
	}
	r, err := it.eval(node.RHS, current)
	if err != nil {
		return nil, err
	}
	switch node.Comparator {
	case ast.CmpEq:
		return it.alloc.AllocBool(value.Equal(l, r)), nil
	case ast.CmpNe:
		return it.alloc.AllocBool(!value.Equal(l, r)), nil
	}
	if !l.IsNumber() || !r.IsNumber() {
		return it.alloc.AllocNull(), nil
	}
	a, b := l.AsFloat64(), r.AsFloat64()
	var result bool
	switch node.Comparator {
	case ast.CmpLt:
		result = a < b
	case ast.CmpLte:
		result = a <= b
	case ast.CmpGt:
		result = a > b
	case ast.CmpGte:
		result = a >= b
	}
	return it.alloc.AllocBool(result), nil
}

func (it *Interpreter) evalCondition(node *ast.Node, current *value.Value) (*value.Value, error) {
	p, err := it.eval(node.LHS, current)
	if err != nil {
		return nil, err
	}
	if p.Kind == value.KindBool && p.Bool {
		return it.eval(node.RHS, current)
	}
	return it.alloc.AllocNull(), nil
}

func (it *Interpreter) evalNot(node *ast.Node, current *value.Value) (*value.Value, error) {
	v, err := it.eval(node.LHS, current)
	if err != nil {
		return nil, err
	}
	return it.alloc.AllocBool(!v.Truthy()), nil
}

// evalProjection evaluates the left side and, depending on its runtime kind,
// maps the right side over either an array's elements or an object's
// values, collecting non-null results; any other kind projects to null.
// Both `*` (object wildcard) and `[*]` (array wildcard) share this one AST
// shape, so the dispatch happens here on the evaluated kind rather than on
// two distinct node kinds.
func (it *Interpreter) evalProjection(node *ast.Node, current *value.Value) (*value.Value, error) {
	l, err := it.eval(node.LHS, current)
	if err != nil {
		return nil, err
	}
	var elements []*value.Value
	switch l.Kind {
	case value.KindArray:
		elements = l.Array
	case value.KindObject:
		elements = make([]*value.Value, l.Object.Len())
		for i, k := range l.Object.Keys {
			elements[i], _ = l.Object.Get(k)
		}
	default:
		return it.alloc.AllocNull(), nil
	}

	results := make([]*value.Value, 0, len(elements))
	for _, elem := range elements {
		mapped, err := it.eval(node.RHS, elem)
		if err != nil {
			return nil, err
		}
		if !mapped.IsNull() {
			results = append(results, mapped)
		}
	}
	return it.alloc.AllocArray(results), nil
}

// evalFlatten evaluates its operand and merges one level of array nesting:
// an element that is itself an array contributes its own elements, every
// other element is preserved as-is. A non-array operand projects to null,
// matching evalProjection's handling of the same case.
func (it *Interpreter) evalFlatten(node *ast.Node, current *value.Value) (*value.Value, error) {
	l, err := it.eval(node.LHS, current)
	if err != nil {
		return nil, err
	}
	if l.Kind != value.KindArray {
		return it.alloc.AllocNull(), nil
	}
	flat := make([]*value.Value, 0, len(l.Array))
	for _, elem := range l.Array {
		if elem.Kind == value.KindArray {
			flat = append(flat, elem.Array...)
		} else {
			flat = append(flat, elem)
		}
	}
	return it.alloc.AllocArray(flat), nil
}

// evalSlice implements half-open slicing with a step, supporting negative
// step by iterating in reverse. A non-array operand is null rather than an
// error, matching the rest of the navigation operators.
func (it *Interpreter) evalSlice(node *ast.Node, current *value.Value) (*value.Value, error) {
	if current == nil || current.Kind != value.KindArray {
		return it.alloc.AllocNull(), nil
	}
	step := 1
	if node.Step != nil {
		step = *node.Step
	}
	if step == 0 {
		return nil, jmerr.InvalidSlice("slice step cannot be 0")
	}

	n := len(current.Array)
	start, stop := sliceBounds(node.Start, node.Stop, step, n)

	results := make([]*value.Value, 0)
	if step > 0 {
		for i := start; i < stop; i += step {
			results = append(results, current.Array[i])
		}
	} else {
		for i := start; i > stop; i += step {
			results = append(results, current.Array[i])
		}
	}
	return it.alloc.AllocArray(results), nil
}

// sliceBounds resolves absent/negative start and stop indices the way
// Python-style slicing does, clamped to the half-open [0, n] range (or, for
// a negative step, the equivalent reversed range).
func sliceBounds(startPtr, stopPtr *int, step, n int) (start, stop int) {
	if step > 0 {
		start, stop = 0, n
	} else {
		start, stop = n-1, -1
	}
	if startPtr != nil {
		start = clampSliceIndex(*startPtr, step, n)
	}
	if stopPtr != nil {
		stop = clampSliceIndex(*stopPtr, step, n)
	}
	return start, stop
}

func clampSliceIndex(i, step, n int) int {
	if i < 0 {
		i += n
		if i < 0 {
			if step < 0 {
				return -1
			}
			return 0
		}
		return i
	}
	if step < 0 && i >= n {
		return n - 1
	}
	if i > n {
		return n
	}
	return i
}

func (it *Interpreter) evalMultiList(node *ast.Node, current *value.Value) (*value.Value, error) {
	elems := make([]*value.Value, len(node.Elements))
	for i, e := range node.Elements {
		v, err := it.eval(e, current)
		if err != nil {
			return nil, err
		}
		elems[i] = v
	}
	return it.alloc.AllocArray(elems), nil
}

func (it *Interpreter) evalMultiHash(node *ast.Node, current *value.Value) (*value.Value, error) {
	obj := value.NewObject()
	for _, pair := range node.Pairs {
		v, err := it.eval(pair.Value, current)
		if err != nil {
			return nil, err
		}
		obj.Set(pair.Key, v)
	}
	return it.alloc.AllocObject(obj), nil
}

func (it *Interpreter) evalFunction(node *ast.Node, current *value.Value) (*value.Value, error) {
	args := make([]*value.Value, len(node.Elements))
	for i, argNode := range node.Elements {
		v, err := it.eval(argNode, current)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	return it.funcs.Call(node.FuncName, args, it)
}
