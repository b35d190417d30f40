package functions

import (
	"sort"

	"github.com/quiverpath/jmespath/pkg/ast"
	"github.com/quiverpath/jmespath/pkg/jmerr"
	"github.com/quiverpath/jmespath/pkg/value"
)

func registerHigherOrderFunctions(r *Registry) {
	r.Register(&Signature{Name: "map", Positional: []ArgumentType{Expref, Array}, Impl: fnMap})
	r.Register(&Signature{Name: "max_by", Positional: []ArgumentType{Array, Expref}, Impl: fnMaxBy})
	r.Register(&Signature{Name: "min_by", Positional: []ArgumentType{Array, Expref}, Impl: fnMinBy})
	r.Register(&Signature{Name: "sort_by", Positional: []ArgumentType{Array, Expref}, Impl: fnSortBy})
}

func fnMap(args []*value.Value, ev Evaluator) (*value.Value, error) {
	exprNode := args[0].Expref.(*ast.Node)
	values := args[1].Array
	results := make([]*value.Value, len(values))
	for i, v := range values {
		mapped, err := ev.EvalExpr(exprNode, v)
		if err != nil {
			return nil, err
		}
		results[i] = mapped
	}
	return ev.Allocator().AllocArray(results), nil
}

func fnMaxBy(args []*value.Value, ev Evaluator) (*value.Value, error) {
	return minMaxBy("max_by", args, ev, true)
}

func fnMinBy(args []*value.Value, ev Evaluator) (*value.Value, error) {
	return minMaxBy("min_by", args, ev, false)
}

// minMaxBy maps every element through the expref argument, requiring the
// mapped key to be a string or number and consistent in kind across every
// invocation, then returns the original (unmapped) element with the
// extreme mapped key. Grounded on original_source/src/functions.rs's
// min_and_max_by! macro.
func minMaxBy(name string, args []*value.Value, ev Evaluator, wantGreater bool) (*value.Value, error) {
	vals := args[0].Array
	if len(vals) == 0 {
		return ev.Allocator().AllocNull(), nil
	}
	exprNode := args[1].Expref.(*ast.Node)

	initial, err := ev.EvalExpr(exprNode, vals[0])
	if err != nil {
		return nil, err
	}
	enteredType := initial.Kind.String()
	if enteredType != "string" && enteredType != "number" {
		return nil, jmerr.InvalidReturnType(name, "expref->number|expref->string", enteredType, initial, 1, 1)
	}

	candidateVal, candidateMapped := vals[0], initial
	for i := 1; i < len(vals); i++ {
		mapped, err := ev.EvalExpr(exprNode, vals[i])
		if err != nil {
			return nil, err
		}
		if mapped.Kind.String() != enteredType {
			return nil, jmerr.InvalidReturnType(name, "expref->"+enteredType, mapped.Kind.String(), mapped, 1, i+1)
		}
		cmp := value.Compare(mapped, candidateMapped)
		if (wantGreater && cmp > 0) || (!wantGreater && cmp < 0) {
			candidateVal, candidateMapped = vals[i], mapped
		}
	}
	return candidateVal, nil
}

// fnSortBy maps every element through the expref argument the same way
// minMaxBy does, then stably sorts the original elements by mapped key.
//
// The original Rust implementation (original_source/src/functions.rs,
// struct SortBy) builds this same (value, key) pairing, sorts the pairs,
// and then returns the untouched `vals` slice instead of the sorted one —
// a latent bug its own test suite never catches. This reimplementation
// returns the actually-sorted order.
func fnSortBy(args []*value.Value, ev Evaluator) (*value.Value, error) {
	vals := args[0].Array
	if len(vals) == 0 {
		return ev.Allocator().AllocArray(nil), nil
	}
	exprNode := args[1].Expref.(*ast.Node)

	type pair struct {
		val    *value.Value
		mapped *value.Value
	}
	mapped := make([]pair, len(vals))

	first, err := ev.EvalExpr(exprNode, vals[0])
	if err != nil {
		return nil, err
	}
	enteredType := first.Kind.String()
	if enteredType != "string" && enteredType != "number" {
		return nil, jmerr.InvalidReturnType("sort_by", "expref->string|expref->number", enteredType, first, 1, 1)
	}
	mapped[0] = pair{vals[0], first}

	for i := 1; i < len(vals); i++ {
		m, err := ev.EvalExpr(exprNode, vals[i])
		if err != nil {
			return nil, err
		}
		if m.Kind.String() != enteredType {
			return nil, jmerr.InvalidReturnType("sort_by", "expref->"+enteredType, m.Kind.String(), m, 1, i+1)
		}
		mapped[i] = pair{vals[i], m}
	}

	sort.SliceStable(mapped, func(i, j int) bool {
		return value.Compare(mapped[i].mapped, mapped[j].mapped) < 0
	})

	out := make([]*value.Value, len(mapped))
	for i, p := range mapped {
		out[i] = p.val
	}
	return ev.Allocator().AllocArray(out), nil
}
