// Package value implements the JMESPath value model: a tagged union over the
// JSON kinds plus an expression-reference kind, allocated through an
// arena-backed Allocator so evaluation can share values structurally without
// ever mutating one after construction.
package value

// Kind identifies which variant of Value is populated.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindI64
	KindU64
	KindF64
	KindString
	KindArray
	KindObject
	KindExpref
)

// String returns the JMESPath type name for the kind, as returned by the
// type() built-in function.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "boolean"
	case KindI64, KindU64, KindF64:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	case KindExpref:
		return "expref"
	default:
		return "unknown"
	}
}

// Object is a string-to-Value mapping. Keys preserves insertion order (keys
// are not sorted) so that object iteration (values(), keys(), MultiHash construction)
// is deterministic, mirroring the teacher's OrderedObject pattern.
type Object struct {
	Keys   []string
	Values map[string]*Value
}

// NewObject returns an empty, ready-to-populate Object.
func NewObject() *Object {
	return &Object{Values: make(map[string]*Value)}
}

// Set inserts or replaces a key, appending to Keys only on first insertion.
func (o *Object) Set(key string, v *Value) {
	if _, ok := o.Values[key]; !ok {
		o.Keys = append(o.Keys, key)
	}
	o.Values[key] = v
}

// Get looks up a key, returning (nil, false) when absent.
func (o *Object) Get(key string) (*Value, bool) {
	v, ok := o.Values[key]
	return v, ok
}

// Len returns the number of keys.
func (o *Object) Len() int { return len(o.Keys) }

// Expr is the minimal AST handle the value package needs for Expref values.
// It is satisfied by *ast.Node without creating an import cycle between
// pkg/value and pkg/ast.
type Expr interface{}

// Value is a tagged union over JSON kinds plus Expref. Exactly one of the
// typed fields is meaningful, selected by Kind. Values are never mutated
// after Allocator construction; callers share *Value freely.
type Value struct {
	Kind Kind

	Bool   bool
	I64    int64
	U64    uint64
	F64    float64
	String string
	Array  []*Value
	Object *Object
	Expref Expr
}

// IsNull reports whether v represents JSON null (a nil *Value is treated the
// same as explicit null by callers that choose to use nil as a shorthand).
func (v *Value) IsNull() bool { return v == nil || v.Kind == KindNull }

// IsNumber reports whether v is one of the three numeric kinds.
func (v *Value) IsNumber() bool {
	return v != nil && (v.Kind == KindI64 || v.Kind == KindU64 || v.Kind == KindF64)
}

// AsFloat64 returns the value as a float64 regardless of which numeric kind
// it was constructed with. Only valid when IsNumber() is true.
func (v *Value) AsFloat64() float64 {
	switch v.Kind {
	case KindI64:
		return float64(v.I64)
	case KindU64:
		return float64(v.U64)
	default:
		return v.F64
	}
}

// Truthy implements the JMESPath truthiness test: not null, not false, not
// an empty string/array/object.
func (v *Value) Truthy() bool {
	if v == nil {
		return false
	}
	switch v.Kind {
	case KindNull:
		return false
	case KindBool:
		return v.Bool
	case KindString:
		return v.String != ""
	case KindArray:
		return len(v.Array) != 0
	case KindObject:
		return v.Object.Len() != 0
	default:
		return true
	}
}

// Equal implements structural, kind-sensitive equality: numeric kinds
// compare by numeric value, strings/arrays by element, objects by key/value,
// other kinds (including Expref, which is never well-defined for equality)
// compare false unless both sides are the identical kind with no payload
// (e.g. two nulls).
func Equal(a, b *Value) bool {
	an, bn := a.IsNull(), b.IsNull()
	if an || bn {
		return an && bn
	}
	if a.IsNumber() && b.IsNumber() {
		return a.AsFloat64() == b.AsFloat64()
	}
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KindBool:
		return a.Bool == b.Bool
	case KindString:
		return a.String == b.String
	case KindArray:
		if len(a.Array) != len(b.Array) {
			return false
		}
		for i := range a.Array {
			if !Equal(a.Array[i], b.Array[i]) {
				return false
			}
		}
		return true
	case KindObject:
		if a.Object.Len() != b.Object.Len() {
			return false
		}
		for _, k := range a.Object.Keys {
			av, _ := a.Object.Get(k)
			bv, ok := b.Object.Get(k)
			if !ok || !Equal(av, bv) {
				return false
			}
		}
		return true
	case KindExpref:
		// Expref equality is not well-defined per the spec; treat as always false.
		return false
	default:
		return false
	}
}

// Compare defines a total order over two numbers, or over two strings,
// matching the ordering used by sort/sort_by/min/max/min_by/max_by. It must
// only be called on a pair of the same kind (String or a numeric kind); the
// HomogeneousArray argument validator guarantees this at every call site.
func Compare(a, b *Value) int {
	if a.IsNumber() && b.IsNumber() {
		af, bf := a.AsFloat64(), b.AsFloat64()
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		default:
			return 0
		}
	}
	switch {
	case a.String < b.String:
		return -1
	case a.String > b.String:
		return 1
	default:
		return 0
	}
}

// Less reports whether a orders strictly before b, only defined for two
// numbers per spec.md (ordering comparators on non-numeric values are null
// at the interpreter layer, handled there rather than here).
func Less(a, b *Value) bool {
	return a.AsFloat64() < b.AsFloat64()
}
