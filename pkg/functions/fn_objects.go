package functions

import (
	"github.com/samber/lo"
	"github.com/quiverpath/jmespath/pkg/value"
)

func registerObjectFunctions(r *Registry) {
	r.Register(&Signature{Name: "keys", Positional: []ArgumentType{Object}, Impl: fnKeys})
	r.Register(&Signature{Name: "values", Positional: []ArgumentType{Object}, Impl: fnValues})
	variadicObject := Object
	r.Register(&Signature{
		Name:       "merge",
		Positional: []ArgumentType{Object},
		Variadic:   &variadicObject,
		Impl:       fnMerge,
	})
}

func fnKeys(args []*value.Value, ev Evaluator) (*value.Value, error) {
	keys := lo.Map(args[0].Object.Keys, func(k string, _ int) *value.Value {
		return ev.Allocator().AllocString(k)
	})
	return ev.Allocator().AllocArray(keys), nil
}

func fnValues(args []*value.Value, ev Evaluator) (*value.Value, error) {
	values := lo.Map(args[0].Object.Keys, func(k string, _ int) *value.Value {
		v, _ := args[0].Object.Get(k)
		return v
	})
	return ev.Allocator().AllocArray(values), nil
}

// fnMerge shallow-merges its object arguments left to right: later keys win,
// matching the original's BTreeMap extend() fold.
func fnMerge(args []*value.Value, ev Evaluator) (*value.Value, error) {
	out := value.NewObject()
	for _, arg := range args {
		for _, k := range arg.Object.Keys {
			v, _ := arg.Object.Get(k)
			out.Set(k, v)
		}
	}
	return ev.Allocator().AllocObject(out), nil
}
