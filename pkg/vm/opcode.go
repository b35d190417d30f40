// Package vm defines the linear opcode instruction set pkg/compiler lowers
// a subset of the AST into, plus a reference stack-machine executor that
// is tested on hand-built programs.
package vm

import "github.com/quiverpath/jmespath/pkg/value"

// Op identifies one instruction.
type Op uint8

const (
	OpHalt Op = iota
	OpLoad
	OpPush
	OpField
	OpIndex
	OpNegativeIndex
	OpTruthy
	OpEq
	OpNe
	OpLt
	OpLte
	OpGt
	OpGte
	OpBr
	OpBrt
	OpBrf
)

// Instruction is one opcode plus whichever operand it needs. Only one of
// Reg/Value/Field/Index/Target is meaningful per Op:
//
//	OpLoad:          Reg
//	OpPush:          Value
//	OpField:         Field
//	OpIndex/NegativeIndex: Index
//	OpBr/OpBrt/OpBrf: Target (absolute instruction index)
type Instruction struct {
	Op     Op
	Reg    int
	Value  *value.Value
	Field  string
	Index  int
	Target int
}

// Halt returns an OpHalt instruction, the sentinel appended to every
// compiled program.
func Halt() Instruction { return Instruction{Op: OpHalt} }

func (op Op) String() string {
	switch op {
	case OpHalt:
		return "Halt"
	case OpLoad:
		return "Load"
	case OpPush:
		return "Push"
	case OpField:
		return "Field"
	case OpIndex:
		return "Index"
	case OpNegativeIndex:
		return "NegativeIndex"
	case OpTruthy:
		return "Truthy"
	case OpEq:
		return "Eq"
	case OpNe:
		return "Ne"
	case OpLt:
		return "Lt"
	case OpLte:
		return "Lte"
	case OpGt:
		return "Gt"
	case OpGte:
		return "Gte"
	case OpBr:
		return "Br"
	case OpBrt:
		return "Brt"
	case OpBrf:
		return "Brf"
	default:
		return "Unknown"
	}
}
