package functions

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"github.com/quiverpath/jmespath/pkg/value"
)

// errUnsupportedToJSON guards toGoInterface against a kind to_string's own
// signature already excludes (Expref); unreachable in practice.
var errUnsupportedToJSON = errors.New("functions: value kind has no JSON representation")

func registerStringFunctions(r *Registry) {
	r.Register(&Signature{Name: "starts_with", Positional: []ArgumentType{String, String}, Impl: fnStartsWith})
	r.Register(&Signature{Name: "ends_with", Positional: []ArgumentType{String, String}, Impl: fnEndsWith})
	r.Register(&Signature{Name: "to_number", Positional: []ArgumentType{Any}, Impl: fnToNumber})
	r.Register(&Signature{
		Name:       "to_string",
		Positional: []ArgumentType{OneOf(Object, Array, Bool, Number, String, Null)},
		Impl:       fnToString,
	})
}

func fnStartsWith(args []*value.Value, ev Evaluator) (*value.Value, error) {
	return ev.Allocator().AllocBool(strings.HasPrefix(args[0].String, args[1].String)), nil
}

func fnEndsWith(args []*value.Value, ev Evaluator) (*value.Value, error) {
	return ev.Allocator().AllocBool(strings.HasSuffix(args[0].String, args[1].String)), nil
}

// fnToNumber parses a string argument with strconv.ParseInt (base 10),
// falling back to strconv.ParseFloat, so Go number syntax such as "+5",
// "Inf" or "NaN" is accepted too; non-parseable strings and every
// non-numeric, non-string kind return null rather than an error, per
// spec.md's to_number contract.
func fnToNumber(args []*value.Value, ev Evaluator) (*value.Value, error) {
	v := args[0]
	if v.IsNumber() {
		return v, nil
	}
	if v.Kind != value.KindString {
		return ev.Allocator().AllocNull(), nil
	}
	if n, err := strconv.ParseInt(v.String, 10, 64); err == nil {
		return ev.Allocator().AllocI64(n), nil
	}
	if f, err := strconv.ParseFloat(v.String, 64); err == nil {
		return ev.Allocator().AllocF64(f), nil
	}
	return ev.Allocator().AllocNull(), nil
}

func fnToString(args []*value.Value, ev Evaluator) (*value.Value, error) {
	v := args[0]
	if v.Kind == value.KindString {
		return v, nil
	}
	rendered, err := toJSON(v)
	if err != nil {
		return nil, err
	}
	return ev.Allocator().AllocString(rendered), nil
}

// toJSON serializes a Value to its JSON text form, used by to_string.
func toJSON(v *value.Value) (string, error) {
	raw, err := toGoInterface(v)
	if err != nil {
		return "", err
	}
	out, err := json.Marshal(raw)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// toGoInterface converts a Value tree into the equivalent encoding/json
// representation, so to_string can reuse the standard marshaler rather than
// hand-rolling JSON text assembly.
func toGoInterface(v *value.Value) (interface{}, error) {
	switch v.Kind {
	case value.KindNull:
		return nil, nil
	case value.KindBool:
		return v.Bool, nil
	case value.KindI64:
		return v.I64, nil
	case value.KindU64:
		return v.U64, nil
	case value.KindF64:
		return v.F64, nil
	case value.KindString:
		return v.String, nil
	case value.KindArray:
		out := make([]interface{}, len(v.Array))
		for i, elem := range v.Array {
			conv, err := toGoInterface(elem)
			if err != nil {
				return nil, err
			}
			out[i] = conv
		}
		return out, nil
	case value.KindObject:
		out := make(map[string]interface{}, v.Object.Len())
		for _, k := range v.Object.Keys {
			elem, _ := v.Object.Get(k)
			conv, err := toGoInterface(elem)
			if err != nil {
				return nil, err
			}
			out[k] = conv
		}
		return out, nil
	default:
		return nil, errUnsupportedToJSON
	}
}
