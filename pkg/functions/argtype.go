// Package functions implements the JMESPath built-in function library:
// argument-type validation plus the registry of core functions dispatched by
// pkg/interpreter's Function node case.
//
// Grounded line-for-semantics on original_source/src/functions.rs's
// ArgumentType enum and is_valid/Display impls, reimplemented without Rust's
// macro layer (validate_args!, min_and_max!, min_and_max_by!) as plain Go
// helpers, per the Design Notes.
package functions

import "github.com/quiverpath/jmespath/pkg/value"

type argKind uint8

const (
	argAny argKind = iota
	argString
	argNumber
	argBool
	argArray
	argObject
	argNull
	argExpref
	argOneOf
	argHomogeneousArray
	argExprefReturns
)

// ArgumentType is one entry of the closed validation taxonomy: Any, String,
// Number, Bool, Array, Object, Null, Expref, OneOf, HomogeneousArray, or
// ExprefReturns, the last three parameterized over a sub-list of alternatives.
type ArgumentType struct {
	kind argKind
	subs []ArgumentType
}

var (
	// Any accepts any value, as long as one is present.
	Any = ArgumentType{kind: argAny}
	// String accepts only string values.
	String = ArgumentType{kind: argString}
	// Number accepts any of the three numeric kinds.
	Number = ArgumentType{kind: argNumber}
	// Bool accepts only boolean values.
	Bool = ArgumentType{kind: argBool}
	// Array accepts only array values.
	Array = ArgumentType{kind: argArray}
	// Object accepts only object values.
	Object = ArgumentType{kind: argObject}
	// Null accepts only null.
	Null = ArgumentType{kind: argNull}
	// Expref accepts only expression-reference values.
	Expref = ArgumentType{kind: argExpref}
)

// OneOf accepts a value that satisfies any of the given alternatives.
func OneOf(types ...ArgumentType) ArgumentType {
	return ArgumentType{kind: argOneOf, subs: types}
}

// HomogeneousArray accepts an array whose elements all satisfy OneOf(types)
// and all share the first element's kind; an empty array is always valid.
func HomogeneousArray(types ...ArgumentType) ArgumentType {
	return ArgumentType{kind: argHomogeneousArray, subs: types}
}

// ExprefReturns accepts only an expression-reference value; the constraint
// on what it returns is checked by the caller against each invocation's
// result, not here (the value itself carries no return type to inspect).
func ExprefReturns(types ...ArgumentType) ArgumentType {
	return ArgumentType{kind: argExprefReturns, subs: types}
}

// IsValid reports whether v satisfies this argument type.
func (t ArgumentType) IsValid(v *value.Value) bool {
	switch t.kind {
	case argAny:
		return true
	case argNull:
		return v.IsNull()
	case argString:
		return v.Kind == value.KindString
	case argNumber:
		return v.IsNumber()
	case argBool:
		return v.Kind == value.KindBool
	case argObject:
		return v.Kind == value.KindObject
	case argArray:
		return v.Kind == value.KindArray
	case argExpref, argExprefReturns:
		return v.Kind == value.KindExpref
	case argOneOf:
		for _, sub := range t.subs {
			if sub.IsValid(v) {
				return true
			}
		}
		return false
	case argHomogeneousArray:
		if v.Kind != value.KindArray {
			return false
		}
		if len(v.Array) == 0 {
			return true
		}
		alt := OneOf(t.subs...)
		first := v.Array[0].Kind
		for _, elem := range v.Array {
			if elem.Kind != first || !alt.IsValid(elem) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// String renders the argument type the way error messages quote it.
func (t ArgumentType) String() string {
	switch t.kind {
	case argAny:
		return "any"
	case argString:
		return "string"
	case argNumber:
		return "number"
	case argBool:
		return "boolean"
	case argArray:
		return "array"
	case argObject:
		return "object"
	case argNull:
		return "null"
	case argExpref:
		return "expref"
	case argOneOf:
		return joinTypes(t.subs, "|")
	case argHomogeneousArray:
		return "array[" + joinTypes(t.subs, "|") + "]"
	case argExprefReturns:
		out := ""
		for i, sub := range t.subs {
			if i > 0 {
				out += "|"
			}
			out += "expref->" + sub.String()
		}
		return out
	default:
		return "unknown"
	}
}

func joinTypes(types []ArgumentType, sep string) string {
	out := ""
	for i, t := range types {
		if i > 0 {
			out += sep
		}
		out += t.String()
	}
	return out
}

// kindName returns the JMESPath type name of v, as used in InvalidType's
// "actual" field.
func kindName(v *value.Value) string {
	return v.Kind.String()
}
