package functions

import (
	"math"

	"github.com/samber/lo"
	"github.com/quiverpath/jmespath/pkg/value"
)

func registerNumericFunctions(r *Registry) {
	r.Register(&Signature{Name: "abs", Positional: []ArgumentType{Number}, Impl: fnAbs})
	r.Register(&Signature{Name: "ceil", Positional: []ArgumentType{Number}, Impl: fnCeil})
	r.Register(&Signature{Name: "floor", Positional: []ArgumentType{Number}, Impl: fnFloor})
	r.Register(&Signature{Name: "avg", Positional: []ArgumentType{HomogeneousArray(Number)}, Impl: fnAvg})
	r.Register(&Signature{Name: "sum", Positional: []ArgumentType{HomogeneousArray(Number)}, Impl: fnSum})
	r.Register(&Signature{Name: "max", Positional: []ArgumentType{HomogeneousArray(String, Number)}, Impl: fnMax})
	r.Register(&Signature{Name: "min", Positional: []ArgumentType{HomogeneousArray(String, Number)}, Impl: fnMin})
}

func fnAbs(args []*value.Value, ev Evaluator) (*value.Value, error) {
	switch args[0].Kind {
	case value.KindI64:
		n := args[0].I64
		if n < 0 {
			n = -n
		}
		return ev.Allocator().AllocI64(n), nil
	case value.KindU64:
		return args[0], nil
	default:
		return ev.Allocator().AllocF64(math.Abs(args[0].F64)), nil
	}
}

func fnCeil(args []*value.Value, ev Evaluator) (*value.Value, error) {
	return ev.Allocator().AllocF64(math.Ceil(args[0].AsFloat64())), nil
}

func fnFloor(args []*value.Value, ev Evaluator) (*value.Value, error) {
	return ev.Allocator().AllocF64(math.Floor(args[0].AsFloat64())), nil
}

func fnAvg(args []*value.Value, ev Evaluator) (*value.Value, error) {
	values := args[0].Array
	if len(values) == 0 {
		return ev.Allocator().AllocNull(), nil
	}
	nums := lo.Map(values, func(v *value.Value, _ int) float64 { return v.AsFloat64() })
	sum := lo.Sum(nums)
	return ev.Allocator().AllocF64(sum / float64(len(nums))), nil
}

func fnSum(args []*value.Value, ev Evaluator) (*value.Value, error) {
	values := args[0].Array
	nums := lo.Map(values, func(v *value.Value, _ int) float64 { return v.AsFloat64() })
	return ev.Allocator().AllocF64(lo.Sum(nums)), nil
}

func fnMax(args []*value.Value, ev Evaluator) (*value.Value, error) {
	values := args[0].Array
	if len(values) == 0 {
		return ev.Allocator().AllocNull(), nil
	}
	best := values[0]
	for _, v := range values[1:] {
		if value.Compare(v, best) > 0 {
			best = v
		}
	}
	return best, nil
}

func fnMin(args []*value.Value, ev Evaluator) (*value.Value, error) {
	values := args[0].Array
	if len(values) == 0 {
		return ev.Allocator().AllocNull(), nil
	}
	best := values[0]
	for _, v := range values[1:] {
		if value.Compare(v, best) < 0 {
			best = v
		}
	}
	return best, nil
}
