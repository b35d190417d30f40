package functions

import (
	"github.com/quiverpath/jmespath/pkg/ast"
	"github.com/quiverpath/jmespath/pkg/jmerr"
	"github.com/quiverpath/jmespath/pkg/value"
)

// Evaluator is the callback surface a function implementation needs back
// into the tree interpreter: applying an expref argument to an element
// (map, sort_by, max_by, min_by) and reaching the shared value allocator.
// Satisfied by *pkg/interpreter.Interpreter; declared here rather than
// there to avoid a pkg/functions <-> pkg/interpreter import cycle.
type Evaluator interface {
	EvalExpr(node *ast.Node, current *value.Value) (*value.Value, error)
	Allocator() *value.Allocator
}

// Impl is one function's implementation, given its already-evaluated and
// type-checked arguments.
type Impl func(args []*value.Value, ev Evaluator) (*value.Value, error)

// Signature describes one registered function's arity and per-position
// argument types, mirroring the Rust original's per-function validate_args!
// invocation.
type Signature struct {
	Name       string
	Positional []ArgumentType
	// Variadic, when non-nil, validates every argument beyond len(Positional)
	// instead of requiring an exact argument count.
	Variadic *ArgumentType
	Impl      Impl
}

func (s *Signature) validate(args []*value.Value) error {
	if s.Variadic == nil {
		if len(args) != len(s.Positional) {
			if len(args) < len(s.Positional) {
				return jmerr.NotEnoughArguments(s.Name, len(s.Positional), len(args))
			}
			return jmerr.TooManyArguments(s.Name, len(s.Positional), len(args))
		}
	} else if len(args) < len(s.Positional) {
		return jmerr.NotEnoughArguments(s.Name, len(s.Positional), len(args))
	}

	for i, v := range args {
		var t ArgumentType
		if i < len(s.Positional) {
			t = s.Positional[i]
		} else {
			t = *s.Variadic
		}
		if !t.IsValid(v) {
			return jmerr.InvalidType(s.Name, t.String(), kindName(v), v, i)
		}
	}
	return nil
}

// Registry is a name-to-Signature lookup table. The zero Registry is not
// usable; construct one with NewRegistry.
type Registry struct {
	fns map[string]*Signature
}

// NewRegistry returns a Registry pre-populated with every core built-in.
func NewRegistry() *Registry {
	r := &Registry{fns: make(map[string]*Signature, 24)}
	registerCoreFunctions(r)
	return r
}

// Register adds or overwrites a function, used both by registerCoreFunctions
// and by callers wiring in custom functions.
func (r *Registry) Register(sig *Signature) {
	r.fns[sig.Name] = sig
}

// Lookup returns the named function's signature, or (nil, false).
func (r *Registry) Lookup(name string) (*Signature, bool) {
	sig, ok := r.fns[name]
	return sig, ok
}

// Call validates args against the named function's signature and, if valid,
// dispatches to its implementation. Returns jmerr.UnknownFunction if name is
// not registered.
func (r *Registry) Call(name string, args []*value.Value, ev Evaluator) (*value.Value, error) {
	sig, ok := r.Lookup(name)
	if !ok {
		return nil, jmerr.UnknownFunction(name)
	}
	if err := sig.validate(args); err != nil {
		return nil, err
	}
	return sig.Impl(args, ev)
}
