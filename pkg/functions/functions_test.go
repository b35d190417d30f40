package functions_test

import (
	"testing"

	"github.com/quiverpath/jmespath/pkg/ast"
	"github.com/quiverpath/jmespath/pkg/functions"
	"github.com/quiverpath/jmespath/pkg/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeEvaluator lets function tests exercise map/sort_by/max_by/min_by
// without pkg/interpreter: it "evaluates" an expref by looking up the
// identifier named by node.Name as a field on the given current value.
type fakeEvaluator struct {
	alloc *value.Allocator
}

func newFakeEvaluator() *fakeEvaluator { return &fakeEvaluator{alloc: value.NewAllocator()} }

func (f *fakeEvaluator) Allocator() *value.Allocator { return f.alloc }

func (f *fakeEvaluator) EvalExpr(node *ast.Node, current *value.Value) (*value.Value, error) {
	if node.Kind == ast.KindCurrentNode {
		return current, nil
	}
	if v, ok := current.Object.Get(node.Name); ok {
		return v, nil
	}
	return f.alloc.AllocNull(), nil
}

func strVal(a *value.Allocator, s string) *value.Value { return a.AllocString(s) }
func numVal(a *value.Allocator, n int64) *value.Value  { return a.AllocI64(n) }

func objWithField(a *value.Allocator, field string, v *value.Value) *value.Value {
	o := value.NewObject()
	o.Set(field, v)
	return a.AllocObject(o)
}

func TestAbsHandlesSignedAndFloat(t *testing.T) {
	ev := newFakeEvaluator()
	reg := functions.NewRegistry()

	result, err := reg.Call("abs", []*value.Value{numVal(ev.alloc, -5)}, ev)
	require.NoError(t, err)
	assert.Equal(t, int64(5), result.I64)

	result, err = reg.Call("abs", []*value.Value{ev.alloc.AllocF64(-3.5)}, ev)
	require.NoError(t, err)
	assert.Equal(t, 3.5, result.F64)
}

func TestCeilFloor(t *testing.T) {
	ev := newFakeEvaluator()
	reg := functions.NewRegistry()

	c, err := reg.Call("ceil", []*value.Value{ev.alloc.AllocF64(1.2)}, ev)
	require.NoError(t, err)
	assert.Equal(t, 2.0, c.F64)

	f, err := reg.Call("floor", []*value.Value{ev.alloc.AllocF64(1.8)}, ev)
	require.NoError(t, err)
	assert.Equal(t, 1.0, f.F64)
}

func TestAvgAndSum(t *testing.T) {
	ev := newFakeEvaluator()
	reg := functions.NewRegistry()
	arr := ev.alloc.AllocArray([]*value.Value{numVal(ev.alloc, 1), numVal(ev.alloc, 2), numVal(ev.alloc, 3)})

	avg, err := reg.Call("avg", []*value.Value{arr}, ev)
	require.NoError(t, err)
	assert.Equal(t, 2.0, avg.F64)

	sum, err := reg.Call("sum", []*value.Value{arr}, ev)
	require.NoError(t, err)
	assert.Equal(t, 6.0, sum.F64)
}

func TestSumEmptyIsZero(t *testing.T) {
	ev := newFakeEvaluator()
	reg := functions.NewRegistry()
	sum, err := reg.Call("sum", []*value.Value{ev.alloc.AllocArray(nil)}, ev)
	require.NoError(t, err)
	assert.Equal(t, 0.0, sum.F64)
}

func TestAvgEmptyIsNull(t *testing.T) {
	ev := newFakeEvaluator()
	reg := functions.NewRegistry()
	result, err := reg.Call("avg", []*value.Value{ev.alloc.AllocArray(nil)}, ev)
	require.NoError(t, err)
	assert.True(t, result.IsNull())
}

func TestMaxAndMinOverNumbers(t *testing.T) {
	ev := newFakeEvaluator()
	reg := functions.NewRegistry()
	arr := ev.alloc.AllocArray([]*value.Value{numVal(ev.alloc, 3), numVal(ev.alloc, 1), numVal(ev.alloc, 2)})

	max, err := reg.Call("max", []*value.Value{arr}, ev)
	require.NoError(t, err)
	assert.Equal(t, int64(3), max.I64)

	min, err := reg.Call("min", []*value.Value{arr}, ev)
	require.NoError(t, err)
	assert.Equal(t, int64(1), min.I64)
}

func TestMaxAndMinOverStrings(t *testing.T) {
	ev := newFakeEvaluator()
	reg := functions.NewRegistry()
	arr := ev.alloc.AllocArray([]*value.Value{strVal(ev.alloc, "b"), strVal(ev.alloc, "a"), strVal(ev.alloc, "c")})

	max, err := reg.Call("max", []*value.Value{arr}, ev)
	require.NoError(t, err)
	assert.Equal(t, "c", max.String)

	min, err := reg.Call("min", []*value.Value{arr}, ev)
	require.NoError(t, err)
	assert.Equal(t, "a", min.String)
}

func TestMaxAndMinEmptyIsNull(t *testing.T) {
	ev := newFakeEvaluator()
	reg := functions.NewRegistry()

	max, err := reg.Call("max", []*value.Value{ev.alloc.AllocArray(nil)}, ev)
	require.NoError(t, err)
	assert.True(t, max.IsNull())

	min, err := reg.Call("min", []*value.Value{ev.alloc.AllocArray(nil)}, ev)
	require.NoError(t, err)
	assert.True(t, min.IsNull())
}

func TestContainsStringAndArray(t *testing.T) {
	ev := newFakeEvaluator()
	reg := functions.NewRegistry()

	r, err := reg.Call("contains", []*value.Value{strVal(ev.alloc, "hello world"), strVal(ev.alloc, "world")}, ev)
	require.NoError(t, err)
	assert.True(t, r.Bool)

	arr := ev.alloc.AllocArray([]*value.Value{strVal(ev.alloc, "a"), strVal(ev.alloc, "b")})
	r, err = reg.Call("contains", []*value.Value{arr, strVal(ev.alloc, "b")}, ev)
	require.NoError(t, err)
	assert.True(t, r.Bool)

	r, err = reg.Call("contains", []*value.Value{arr, strVal(ev.alloc, "z")}, ev)
	require.NoError(t, err)
	assert.False(t, r.Bool)
}

func TestStartsWithEndsWith(t *testing.T) {
	ev := newFakeEvaluator()
	reg := functions.NewRegistry()

	r, err := reg.Call("starts_with", []*value.Value{strVal(ev.alloc, "foobar"), strVal(ev.alloc, "foo")}, ev)
	require.NoError(t, err)
	assert.True(t, r.Bool)

	r, err = reg.Call("ends_with", []*value.Value{strVal(ev.alloc, "foobar"), strVal(ev.alloc, "bar")}, ev)
	require.NoError(t, err)
	assert.True(t, r.Bool)
}

func TestJoin(t *testing.T) {
	ev := newFakeEvaluator()
	reg := functions.NewRegistry()
	arr := ev.alloc.AllocArray([]*value.Value{strVal(ev.alloc, "a"), strVal(ev.alloc, "b"), strVal(ev.alloc, "c")})
	r, err := reg.Call("join", []*value.Value{strVal(ev.alloc, ", "), arr}, ev)
	require.NoError(t, err)
	assert.Equal(t, "a, b, c", r.String)
}

func TestKeysAndValuesPreserveOrder(t *testing.T) {
	ev := newFakeEvaluator()
	reg := functions.NewRegistry()
	obj := value.NewObject()
	obj.Set("b", numVal(ev.alloc, 2))
	obj.Set("a", numVal(ev.alloc, 1))
	v := ev.alloc.AllocObject(obj)

	keys, err := reg.Call("keys", []*value.Value{v}, ev)
	require.NoError(t, err)
	require.Len(t, keys.Array, 2)
	assert.Equal(t, "b", keys.Array[0].String)
	assert.Equal(t, "a", keys.Array[1].String)

	values, err := reg.Call("values", []*value.Value{v}, ev)
	require.NoError(t, err)
	require.Len(t, values.Array, 2)
	assert.Equal(t, int64(2), values.Array[0].I64)
}

func TestLength(t *testing.T) {
	ev := newFakeEvaluator()
	reg := functions.NewRegistry()

	r, err := reg.Call("length", []*value.Value{strVal(ev.alloc, "héllo")}, ev)
	require.NoError(t, err)
	assert.Equal(t, int64(5), r.I64)

	arr := ev.alloc.AllocArray([]*value.Value{numVal(ev.alloc, 1), numVal(ev.alloc, 2)})
	r, err = reg.Call("length", []*value.Value{arr}, ev)
	require.NoError(t, err)
	assert.Equal(t, int64(2), r.I64)
}

func TestMergeIsRightBiased(t *testing.T) {
	ev := newFakeEvaluator()
	reg := functions.NewRegistry()
	a := value.NewObject()
	a.Set("x", numVal(ev.alloc, 1))
	b := value.NewObject()
	b.Set("x", numVal(ev.alloc, 2))
	b.Set("y", numVal(ev.alloc, 3))

	r, err := reg.Call("merge", []*value.Value{ev.alloc.AllocObject(a), ev.alloc.AllocObject(b)}, ev)
	require.NoError(t, err)
	x, _ := r.Object.Get("x")
	y, _ := r.Object.Get("y")
	assert.Equal(t, int64(2), x.I64)
	assert.Equal(t, int64(3), y.I64)
}

func TestNotNull(t *testing.T) {
	ev := newFakeEvaluator()
	reg := functions.NewRegistry()
	r, err := reg.Call("not_null", []*value.Value{ev.alloc.AllocNull(), ev.alloc.AllocNull(), numVal(ev.alloc, 7)}, ev)
	require.NoError(t, err)
	assert.Equal(t, int64(7), r.I64)
}

func TestNotNullAllNullIsNull(t *testing.T) {
	ev := newFakeEvaluator()
	reg := functions.NewRegistry()
	r, err := reg.Call("not_null", []*value.Value{ev.alloc.AllocNull()}, ev)
	require.NoError(t, err)
	assert.True(t, r.IsNull())
}

func TestReverseArrayAndString(t *testing.T) {
	ev := newFakeEvaluator()
	reg := functions.NewRegistry()
	arr := ev.alloc.AllocArray([]*value.Value{numVal(ev.alloc, 1), numVal(ev.alloc, 2), numVal(ev.alloc, 3)})
	r, err := reg.Call("reverse", []*value.Value{arr}, ev)
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 2, 1}, []int64{r.Array[0].I64, r.Array[1].I64, r.Array[2].I64})

	s, err := reg.Call("reverse", []*value.Value{strVal(ev.alloc, "abc")}, ev)
	require.NoError(t, err)
	assert.Equal(t, "cba", s.String)
}

func TestSortAscending(t *testing.T) {
	ev := newFakeEvaluator()
	reg := functions.NewRegistry()
	arr := ev.alloc.AllocArray([]*value.Value{numVal(ev.alloc, 3), numVal(ev.alloc, 1), numVal(ev.alloc, 2)})
	r, err := reg.Call("sort", []*value.Value{arr}, ev)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3}, []int64{r.Array[0].I64, r.Array[1].I64, r.Array[2].I64})
}

func TestToArrayWrapsNonArrays(t *testing.T) {
	ev := newFakeEvaluator()
	reg := functions.NewRegistry()
	r, err := reg.Call("to_array", []*value.Value{numVal(ev.alloc, 5)}, ev)
	require.NoError(t, err)
	require.Len(t, r.Array, 1)
	assert.Equal(t, int64(5), r.Array[0].I64)

	arr := ev.alloc.AllocArray([]*value.Value{numVal(ev.alloc, 1)})
	r, err = reg.Call("to_array", []*value.Value{arr}, ev)
	require.NoError(t, err)
	assert.Same(t, arr, r)
}

func TestToNumberParsesAndFallsBackToNull(t *testing.T) {
	ev := newFakeEvaluator()
	reg := functions.NewRegistry()

	r, err := reg.Call("to_number", []*value.Value{strVal(ev.alloc, "42")}, ev)
	require.NoError(t, err)
	assert.Equal(t, int64(42), r.I64)

	r, err = reg.Call("to_number", []*value.Value{strVal(ev.alloc, "3.5")}, ev)
	require.NoError(t, err)
	assert.Equal(t, 3.5, r.F64)

	r, err = reg.Call("to_number", []*value.Value{strVal(ev.alloc, "not a number")}, ev)
	require.NoError(t, err)
	assert.True(t, r.IsNull())
}

func TestToStringLeavesStringsAsIs(t *testing.T) {
	ev := newFakeEvaluator()
	reg := functions.NewRegistry()
	r, err := reg.Call("to_string", []*value.Value{strVal(ev.alloc, "already")}, ev)
	require.NoError(t, err)
	assert.Equal(t, "already", r.String)
}

func TestToStringSerializesObject(t *testing.T) {
	ev := newFakeEvaluator()
	reg := functions.NewRegistry()
	obj := value.NewObject()
	obj.Set("a", numVal(ev.alloc, 1))
	r, err := reg.Call("to_string", []*value.Value{ev.alloc.AllocObject(obj)}, ev)
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, r.String)
}

func TestTypeNames(t *testing.T) {
	ev := newFakeEvaluator()
	reg := functions.NewRegistry()
	r, err := reg.Call("type", []*value.Value{strVal(ev.alloc, "x")}, ev)
	require.NoError(t, err)
	assert.Equal(t, "string", r.String)
}

func TestMapAppliesExprefElementwise(t *testing.T) {
	ev := newFakeEvaluator()
	reg := functions.NewRegistry()
	people := ev.alloc.AllocArray([]*value.Value{
		objWithField(ev.alloc, "age", numVal(ev.alloc, 30)),
		objWithField(ev.alloc, "age", numVal(ev.alloc, 25)),
	})
	exprNode := ev.alloc.AllocExpref(ast.NewIdentifier("age", 0))

	r, err := reg.Call("map", []*value.Value{exprNode, people}, ev)
	require.NoError(t, err)
	require.Len(t, r.Array, 2)
	assert.Equal(t, int64(30), r.Array[0].I64)
	assert.Equal(t, int64(25), r.Array[1].I64)
}

func TestSortByOrdersAndReturnsElementsInKeyOrder(t *testing.T) {
	ev := newFakeEvaluator()
	reg := functions.NewRegistry()
	people := ev.alloc.AllocArray([]*value.Value{
		objWithField(ev.alloc, "age", numVal(ev.alloc, 30)),
		objWithField(ev.alloc, "age", numVal(ev.alloc, 10)),
		objWithField(ev.alloc, "age", numVal(ev.alloc, 20)),
	})
	exprNode := ev.alloc.AllocExpref(ast.NewIdentifier("age", 0))

	r, err := reg.Call("sort_by", []*value.Value{people, exprNode}, ev)
	require.NoError(t, err)
	require.Len(t, r.Array, 3)

	ages := make([]int64, 3)
	for i, elem := range r.Array {
		age, _ := elem.Object.Get("age")
		ages[i] = age.I64
	}
	assert.Equal(t, []int64{10, 20, 30}, ages)
}

func TestSortByInconsistentKeyKindIsError(t *testing.T) {
	ev := newFakeEvaluator()
	reg := functions.NewRegistry()
	mixed := ev.alloc.AllocArray([]*value.Value{
		objWithField(ev.alloc, "k", numVal(ev.alloc, 1)),
		objWithField(ev.alloc, "k", strVal(ev.alloc, "two")),
	})
	exprNode := ev.alloc.AllocExpref(ast.NewIdentifier("k", 0))

	_, err := reg.Call("sort_by", []*value.Value{mixed, exprNode}, ev)
	require.Error(t, err)
}

func TestMaxByAndMinBy(t *testing.T) {
	ev := newFakeEvaluator()
	reg := functions.NewRegistry()
	people := ev.alloc.AllocArray([]*value.Value{
		objWithField(ev.alloc, "age", numVal(ev.alloc, 30)),
		objWithField(ev.alloc, "age", numVal(ev.alloc, 10)),
		objWithField(ev.alloc, "age", numVal(ev.alloc, 20)),
	})
	exprNode := ev.alloc.AllocExpref(ast.NewIdentifier("age", 0))

	oldest, err := reg.Call("max_by", []*value.Value{people, exprNode}, ev)
	require.NoError(t, err)
	age, _ := oldest.Object.Get("age")
	assert.Equal(t, int64(30), age.I64)

	youngest, err := reg.Call("min_by", []*value.Value{people, exprNode}, ev)
	require.NoError(t, err)
	age, _ = youngest.Object.Get("age")
	assert.Equal(t, int64(10), age.I64)
}

func TestMaxByEmptyArrayIsNull(t *testing.T) {
	ev := newFakeEvaluator()
	reg := functions.NewRegistry()
	exprNode := ev.alloc.AllocExpref(ast.NewIdentifier("age", 0))
	r, err := reg.Call("max_by", []*value.Value{ev.alloc.AllocArray(nil), exprNode}, ev)
	require.NoError(t, err)
	assert.True(t, r.IsNull())
}

func TestUnknownFunctionIsError(t *testing.T) {
	ev := newFakeEvaluator()
	reg := functions.NewRegistry()
	_, err := reg.Call("no_such_fn", nil, ev)
	require.Error(t, err)
}

func TestArityErrors(t *testing.T) {
	ev := newFakeEvaluator()
	reg := functions.NewRegistry()

	_, err := reg.Call("abs", nil, ev)
	require.Error(t, err)

	_, err = reg.Call("abs", []*value.Value{numVal(ev.alloc, 1), numVal(ev.alloc, 2)}, ev)
	require.Error(t, err)
}

func TestInvalidTypeError(t *testing.T) {
	ev := newFakeEvaluator()
	reg := functions.NewRegistry()
	_, err := reg.Call("abs", []*value.Value{strVal(ev.alloc, "nope")}, ev)
	require.Error(t, err)
}

func TestHomogeneousArrayRejectsMixedKinds(t *testing.T) {
	ev := newFakeEvaluator()
	reg := functions.NewRegistry()
	mixed := ev.alloc.AllocArray([]*value.Value{numVal(ev.alloc, 1), strVal(ev.alloc, "two")})
	_, err := reg.Call("sort", []*value.Value{mixed}, ev)
	require.Error(t, err)
}
