package ast_test

import (
	"testing"

	"github.com/quiverpath/jmespath/pkg/ast"
	"github.com/stretchr/testify/assert"
)

func TestComparatorString(t *testing.T) {
	cases := map[ast.Comparator]string{
		ast.CmpEq: "==", ast.CmpNe: "!=", ast.CmpLt: "<",
		ast.CmpLte: "<=", ast.CmpGt: ">", ast.CmpGte: ">=",
	}
	for cmp, want := range cases {
		assert.Equal(t, want, cmp.String())
	}
}

func TestNodeConstructorsSetKind(t *testing.T) {
	cur := ast.NewCurrentNode(0)
	assert.Equal(t, ast.KindCurrentNode, cur.Kind)

	id := ast.NewIdentifier("foo", 3)
	assert.Equal(t, ast.KindIdentifier, id.Kind)
	assert.Equal(t, "foo", id.Name)
	assert.Equal(t, 3, id.Position)

	or := ast.NewOr(id, cur)
	assert.Equal(t, ast.KindOr, or.Kind)
	assert.Same(t, id, or.LHS)
	assert.Same(t, cur, or.RHS)

	cmp := ast.NewComparison(ast.CmpGte, id, cur)
	assert.Equal(t, ast.CmpGte, cmp.Comparator)
}

func TestNewSliceAllowsAbsentComponents(t *testing.T) {
	start := 1
	n := ast.NewSlice(&start, nil, nil, 0)
	assert.Equal(t, 1, *n.Start)
	assert.Nil(t, n.Stop)
	assert.Nil(t, n.Step)
}
