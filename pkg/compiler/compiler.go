// Package compiler lowers the supported subset of the JMESPath AST
// (CurrentNode, Identifier, Index, Literal, Subexpr, Comparison, Or,
// Condition) into a linear vm.Instruction program, resolving every
// branch target to an absolute program counter at compile time.
//
// Grounded directly on the original jmespath.rs compiler
// (original_source/src/compiler.rs): the same bottom-up, running-offset
// construction, generalized so the offset actually threads through
// Subexpr's two halves (the Rust original reuses the same offset for
// both sides, which only happens to be correct because its own test
// suite never nests a branching node on the right side of a Subexpr).
package compiler

import (
	"github.com/quiverpath/jmespath/pkg/ast"
	"github.com/quiverpath/jmespath/pkg/jmerr"
	"github.com/quiverpath/jmespath/pkg/value"
	"github.com/quiverpath/jmespath/pkg/vm"
)

var (
	valueTrue = value.Value{Kind: value.KindBool, Bool: true}
	valueNull = value.Value{Kind: value.KindNull}
)

// Compile lowers node into a complete opcode program terminated by Halt.
func Compile(node *ast.Node) ([]vm.Instruction, error) {
	body, err := compileWithOffset(node, 0)
	if err != nil {
		return nil, err
	}
	return append(body, vm.Halt()), nil
}

func compileWithOffset(n *ast.Node, offset int) ([]vm.Instruction, error) {
	switch n.Kind {
	case ast.KindCurrentNode:
		return []vm.Instruction{{Op: vm.OpLoad, Reg: 0}}, nil

	case ast.KindIdentifier:
		return []vm.Instruction{{Op: vm.OpField, Field: n.Name}}, nil

	case ast.KindIndex:
		if n.Index < 0 {
			return []vm.Instruction{{Op: vm.OpNegativeIndex, Index: -n.Index - 1}}, nil
		}
		return []vm.Instruction{{Op: vm.OpIndex, Index: n.Index}}, nil

	case ast.KindLiteral:
		return []vm.Instruction{{Op: vm.OpPush, Value: n.Literal}}, nil

	case ast.KindSubexpr:
		lhs, err := compileWithOffset(n.LHS, offset)
		if err != nil {
			return nil, err
		}
		rhs, err := compileWithOffset(n.RHS, offset+len(lhs))
		if err != nil {
			return nil, err
		}
		return append(lhs, rhs...), nil

	case ast.KindComparison:
		lhs, err := compileWithOffset(n.LHS, offset)
		if err != nil {
			return nil, err
		}
		rhs, err := compileWithOffset(n.RHS, offset+len(lhs))
		if err != nil {
			return nil, err
		}
		ops := append(lhs, rhs...)
		return append(ops, vm.Instruction{Op: comparatorOp(n.Comparator)}), nil

	case ast.KindOr:
		return compileOr(n, offset)

	case ast.KindCondition:
		return compileCondition(n, offset)

	default:
		return nil, jmerr.Compile("cannot compile AST node of this kind to opcodes")
	}
}

// compileOr lowers lhs ; Truthy ; Brt(after-rhs) ; rhs. Brt jumps past
// rhs when lhs is truthy, leaving lhs's result as the expression value;
// otherwise execution falls through into rhs.
func compileOr(n *ast.Node, offset int) ([]vm.Instruction, error) {
	lhs, err := compileWithOffset(n.LHS, offset)
	if err != nil {
		return nil, err
	}
	ops := append(lhs, vm.Instruction{Op: vm.OpTruthy})
	nextOffset := offset + len(ops) + 1 // +1 reserves the Brt slot itself

	rhs, err := compileWithOffset(n.RHS, nextOffset)
	if err != nil {
		return nil, err
	}
	ops = append(ops, vm.Instruction{Op: vm.OpBrt, Target: nextOffset + len(rhs)})
	return append(ops, rhs...), nil
}

// compileCondition lowers predicate ; Push(true) ; Eq ; Brf(else) ;
// consequent ; Br(after-null) ; Push(Null). If the predicate is exactly
// boolean true, the consequent runs and the trailing Push(Null) is
// skipped; otherwise execution falls through to Push(Null).
func compileCondition(n *ast.Node, offset int) ([]vm.Instruction, error) {
	pred, err := compileWithOffset(n.LHS, offset)
	if err != nil {
		return nil, err
	}
	ops := append(pred, vm.Instruction{Op: vm.OpPush, Value: &valueTrue}, vm.Instruction{Op: vm.OpEq})
	nextOffset := offset + len(ops) + 1 // +1 reserves the Brf slot itself

	consequent, err := compileWithOffset(n.RHS, nextOffset)
	if err != nil {
		return nil, err
	}
	ops = append(ops, vm.Instruction{Op: vm.OpBrf, Target: nextOffset + len(consequent) + 1})
	ops = append(ops, consequent...)
	ops = append(ops, vm.Instruction{Op: vm.OpBr, Target: nextOffset + len(consequent) + 2})
	ops = append(ops, vm.Instruction{Op: vm.OpPush, Value: &valueNull})
	return ops, nil
}

func comparatorOp(cmp ast.Comparator) vm.Op {
	switch cmp {
	case ast.CmpLt:
		return vm.OpLt
	case ast.CmpLte:
		return vm.OpLte
	case ast.CmpGt:
		return vm.OpGt
	case ast.CmpGte:
		return vm.OpGte
	case ast.CmpEq:
		return vm.OpEq
	default:
		return vm.OpNe
	}
}
