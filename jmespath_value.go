package jmespath

import (
	"bytes"
	"encoding/json"
	"io"
	"sort"

	"github.com/quiverpath/jmespath/pkg/value"
)

// toValue converts an arbitrary Go value (the shapes produced by
// encoding/json.Unmarshal, plus json.Number) into a *value.Value tree
// allocated through alloc, the same conversion the lexer performs for
// backtick literals (pkg/lexer/lexer.go's fromGo), generalized here to
// accept caller-supplied Go data rather than only JSON source text.
func toValue(alloc *value.Allocator, v interface{}) *value.Value {
	switch t := v.(type) {
	case nil:
		return alloc.AllocNull()
	case bool:
		return alloc.AllocBool(t)
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return alloc.AllocI64(i)
		}
		f, _ := t.Float64()
		return alloc.AllocF64(f)
	case string:
		return alloc.AllocString(t)
	case int:
		return alloc.AllocI64(int64(t))
	case int8:
		return alloc.AllocI64(int64(t))
	case int16:
		return alloc.AllocI64(int64(t))
	case int32:
		return alloc.AllocI64(int64(t))
	case int64:
		return alloc.AllocI64(t)
	case uint:
		return alloc.AllocU64(uint64(t))
	case uint8:
		return alloc.AllocU64(uint64(t))
	case uint16:
		return alloc.AllocU64(uint64(t))
	case uint32:
		return alloc.AllocU64(uint64(t))
	case uint64:
		return alloc.AllocU64(t)
	case float32:
		return alloc.AllocF64(float64(t))
	case float64:
		return alloc.AllocF64(t)
	case []interface{}:
		arr := make([]*value.Value, len(t))
		for i, elem := range t {
			arr[i] = toValue(alloc, elem)
		}
		return alloc.AllocArray(arr)
	case map[string]interface{}:
		obj := value.NewObject()
		// map[string]interface{} iterates in randomized order; sort so
		// keys()/values() and object-wildcard projection over
		// caller-supplied data are deterministic across calls, the same
		// as pkg/lexer's fromGo does for backtick literals.
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			obj.Set(k, toValue(alloc, t[k]))
		}
		return alloc.AllocObject(obj)
	default:
		return alloc.AllocNull()
	}
}

// fromValue converts a *value.Value tree back into plain Go data
// (map[string]interface{}, []interface{}, and the JSON scalar types),
// so callers never need to import pkg/value themselves.
func fromValue(v *value.Value) interface{} {
	if v == nil {
		return nil
	}
	switch v.Kind {
	case value.KindNull:
		return nil
	case value.KindBool:
		return v.Bool
	case value.KindI64:
		return v.I64
	case value.KindU64:
		return v.U64
	case value.KindF64:
		return v.F64
	case value.KindString:
		return v.String
	case value.KindArray:
		out := make([]interface{}, len(v.Array))
		for i, elem := range v.Array {
			out[i] = fromValue(elem)
		}
		return out
	case value.KindObject:
		out := make(map[string]interface{}, v.Object.Len())
		for _, k := range v.Object.Keys {
			elem, _ := v.Object.Get(k)
			out[k] = fromValue(elem)
		}
		return out
	default:
		// An Expref (e.g. the result of a top-level `&foo`) has no
		// plain-Go form and converts to nil.
		return nil
	}
}

// streamDecoder reads successive JSON values off an io.Reader, decoding
// numbers as json.Number so toValue preserves integer-vs-float kind the
// same way backtick literals do.
type streamDecoder struct {
	dec *json.Decoder
}

func jsonDecoder(r io.Reader) *streamDecoder {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	return &streamDecoder{dec: dec}
}

func (s *streamDecoder) next() (interface{}, error) {
	var raw json.RawMessage
	if err := s.dec.Decode(&raw); err != nil {
		return nil, err
	}
	sub := json.NewDecoder(bytes.NewReader(raw))
	sub.UseNumber()
	var v interface{}
	if err := sub.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}
