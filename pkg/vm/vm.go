package vm

import (
	"fmt"

	"github.com/quiverpath/jmespath/pkg/value"
)

// Run executes program against current, a single register holding the
// "current node" value that OpLoad reads. OpField, OpIndex and
// OpNegativeIndex act on the value popped from the operand stack, or on
// the register when the stack is empty. It is reference scaffolding,
// tested on hand-built programs in this package; production evaluation
// always goes through pkg/interpreter.
func Run(program []Instruction, current *value.Value) (*value.Value, error) {
	var stack []*value.Value
	pc := 0

	pop := func() (*value.Value, error) {
		if len(stack) == 0 {
			return nil, fmt.Errorf("vm: stack underflow")
		}
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		return v, nil
	}

	operand := func() *value.Value {
		if len(stack) == 0 {
			return current
		}
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		return v
	}

	for {
		if pc < 0 || pc >= len(program) {
			return nil, fmt.Errorf("vm: program counter %d out of range", pc)
		}
		instr := program[pc]

		switch instr.Op {
		case OpHalt:
			if len(stack) == 0 {
				return &value.Value{Kind: value.KindNull}, nil
			}
			return stack[len(stack)-1], nil

		case OpLoad:
			stack = append(stack, current)
			pc++

		case OpPush:
			stack = append(stack, instr.Value)
			pc++

		case OpField:
			stack = append(stack, fieldOf(operand(), instr.Field))
			pc++

		case OpIndex:
			stack = append(stack, indexOf(operand(), instr.Index))
			pc++

		case OpNegativeIndex:
			stack = append(stack, negativeIndexOf(operand(), instr.Index))
			pc++

		case OpTruthy:
			v, err := pop()
			if err != nil {
				return nil, err
			}
			stack = append(stack, v, &value.Value{Kind: value.KindBool, Bool: v.Truthy()})
			pc++

		case OpEq, OpNe, OpLt, OpLte, OpGt, OpGte:
			rhs, err := pop()
			if err != nil {
				return nil, err
			}
			lhs, err := pop()
			if err != nil {
				return nil, err
			}
			stack = append(stack, compareResult(instr.Op, lhs, rhs))
			pc++

		case OpBr:
			pc = instr.Target

		case OpBrt:
			cond, err := pop()
			if err != nil {
				return nil, err
			}
			// Truthy leaves its operand beneath the boolean it pushes;
			// a taken branch keeps that operand as the expression result.
			if cond.Truthy() {
				pc = instr.Target
			} else {
				if _, err := pop(); err != nil {
					return nil, err
				}
				pc++
			}

		case OpBrf:
			cond, err := pop()
			if err != nil {
				return nil, err
			}
			if !cond.Truthy() {
				pc = instr.Target
			} else {
				pc++
			}

		default:
			return nil, fmt.Errorf("vm: unknown opcode")
		}
	}
}

func fieldOf(v *value.Value, key string) *value.Value {
	if v.Kind != value.KindObject {
		return &value.Value{Kind: value.KindNull}
	}
	if found, ok := v.Object.Get(key); ok {
		return found
	}
	return &value.Value{Kind: value.KindNull}
}

func indexOf(v *value.Value, i int) *value.Value {
	if v.Kind != value.KindArray {
		return &value.Value{Kind: value.KindNull}
	}
	if i < 0 || i >= len(v.Array) {
		return &value.Value{Kind: value.KindNull}
	}
	return v.Array[i]
}

func negativeIndexOf(v *value.Value, fromEnd int) *value.Value {
	if v.Kind != value.KindArray {
		return &value.Value{Kind: value.KindNull}
	}
	i := len(v.Array) - 1 - fromEnd
	if i < 0 || i >= len(v.Array) {
		return &value.Value{Kind: value.KindNull}
	}
	return v.Array[i]
}

func compareResult(op Op, lhs, rhs *value.Value) *value.Value {
	switch op {
	case OpEq:
		return &value.Value{Kind: value.KindBool, Bool: value.Equal(lhs, rhs)}
	case OpNe:
		return &value.Value{Kind: value.KindBool, Bool: !value.Equal(lhs, rhs)}
	}
	if !lhs.IsNumber() || !rhs.IsNumber() {
		return &value.Value{Kind: value.KindNull}
	}
	a, b := lhs.AsFloat64(), rhs.AsFloat64()
	var result bool
	switch op {
	case OpLt:
		result = a < b
	case OpLte:
		result = a <= b
	case OpGt:
		result = a > b
	case OpGte:
		result = a >= b
	}
	return &value.Value{Kind: value.KindBool, Bool: result}
}
