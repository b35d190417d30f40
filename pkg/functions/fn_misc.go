package functions

import "github.com/quiverpath/jmespath/pkg/value"

func registerMiscFunctions(r *Registry) {
	variadicAny := Any
	r.Register(&Signature{
		Name:       "not_null",
		Positional: []ArgumentType{Any},
		Variadic:   &variadicAny,
		Impl:       fnNotNull,
	})
	r.Register(&Signature{Name: "type", Positional: []ArgumentType{Any}, Impl: fnType})
}

func fnNotNull(args []*value.Value, ev Evaluator) (*value.Value, error) {
	for _, arg := range args {
		if !arg.IsNull() {
			return arg, nil
		}
	}
	return ev.Allocator().AllocNull(), nil
}

func fnType(args []*value.Value, ev Evaluator) (*value.Value, error) {
	return ev.Allocator().AllocString(args[0].Kind.String()), nil
}
