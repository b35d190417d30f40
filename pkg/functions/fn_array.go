package functions

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/samber/lo"
	"github.com/quiverpath/jmespath/pkg/value"
)

func registerArrayFunctions(r *Registry) {
	r.Register(&Signature{
		Name:       "contains",
		Positional: []ArgumentType{OneOf(String, Array), Any},
		Impl:       fnContains,
	})
	r.Register(&Signature{
		Name:       "join",
		Positional: []ArgumentType{String, HomogeneousArray(String)},
		Impl:       fnJoin,
	})
	r.Register(&Signature{
		Name:       "length",
		Positional: []ArgumentType{OneOf(Array, Object, String)},
		Impl:       fnLength,
	})
	r.Register(&Signature{Name: "reverse", Positional: []ArgumentType{OneOf(Array, String)}, Impl: fnReverse})
	r.Register(&Signature{
		Name:       "sort",
		Positional: []ArgumentType{HomogeneousArray(String, Number)},
		Impl:       fnSort,
	})
	r.Register(&Signature{Name: "to_array", Positional: []ArgumentType{Any}, Impl: fnToArray})
}

func fnContains(args []*value.Value, ev Evaluator) (*value.Value, error) {
	haystack, needle := args[0], args[1]
	if haystack.Kind == value.KindString {
		if needle.Kind != value.KindString {
			return ev.Allocator().AllocBool(false), nil
		}
		return ev.Allocator().AllocBool(strings.Contains(haystack.String, needle.String)), nil
	}
	found := lo.ContainsBy(haystack.Array, func(elem *value.Value) bool {
		return value.Equal(elem, needle)
	})
	return ev.Allocator().AllocBool(found), nil
}

func fnJoin(args []*value.Value, ev Evaluator) (*value.Value, error) {
	glue := args[0].String
	parts := lo.Map(args[1].Array, func(v *value.Value, _ int) string { return v.String })
	return ev.Allocator().AllocString(strings.Join(parts, glue)), nil
}

func fnLength(args []*value.Value, ev Evaluator) (*value.Value, error) {
	switch args[0].Kind {
	case value.KindArray:
		return ev.Allocator().AllocI64(int64(len(args[0].Array))), nil
	case value.KindObject:
		return ev.Allocator().AllocI64(int64(args[0].Object.Len())), nil
	default:
		return ev.Allocator().AllocI64(int64(utf8.RuneCountInString(args[0].String))), nil
	}
}

func fnReverse(args []*value.Value, ev Evaluator) (*value.Value, error) {
	v := args[0]
	if v.Kind == value.KindString {
		runes := []rune(v.String)
		for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
			runes[i], runes[j] = runes[j], runes[i]
		}
		return ev.Allocator().AllocString(string(runes)), nil
	}
	reversed := make([]*value.Value, len(v.Array))
	for i, elem := range v.Array {
		reversed[len(v.Array)-1-i] = elem
	}
	return ev.Allocator().AllocArray(reversed), nil
}

func fnSort(args []*value.Value, ev Evaluator) (*value.Value, error) {
	sorted := append([]*value.Value(nil), args[0].Array...)
	sort.SliceStable(sorted, func(i, j int) bool { return value.Compare(sorted[i], sorted[j]) < 0 })
	return ev.Allocator().AllocArray(sorted), nil
}

func fnToArray(args []*value.Value, ev Evaluator) (*value.Value, error) {
	if args[0].Kind == value.KindArray {
		return args[0], nil
	}
	return ev.Allocator().AllocArray([]*value.Value{args[0]}), nil
}
