// Package jmespath provides a Go implementation of JMESPath, the query
// language for JSON (https://jmespath.org): lex, parse, and evaluate
// expressions against arbitrary Go data (map[string]interface{},
// []interface{}, and the JSON scalar types).
//
// # Quick Start
//
//	// Simple evaluation
//	result, err := jmespath.Eval("people[*].name", data)
//
//	// Compile once, evaluate many times
//	expr, err := jmespath.Compile("reservations[].instances[].state.name")
//	ev := jmespath.New()
//	result1, _ := ev.Eval(ctx, expr, data1)
//	result2, _ := ev.Eval(ctx, expr, data2)
//
//	// With options
//	result, err := jmespath.Eval("items[?price > `100`]", data,
//	    jmespath.WithCaching(true),
//	    jmespath.WithTimeout(5*time.Second),
//	)
//
// # More Information
//
// For detailed documentation, see:
//   - Parser: github.com/quiverpath/jmespath/pkg/parser
//   - Interpreter: github.com/quiverpath/jmespath/pkg/interpreter
//   - Functions: github.com/quiverpath/jmespath/pkg/functions
package jmespath

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/quiverpath/jmespath/pkg/ast"
	"github.com/quiverpath/jmespath/pkg/functions"
	"github.com/quiverpath/jmespath/pkg/interpreter"
	"github.com/quiverpath/jmespath/pkg/lexer"
	"github.com/quiverpath/jmespath/pkg/parser"
	"github.com/quiverpath/jmespath/pkg/value"
)

// Version returns the current version of this module.
func Version() string {
	return "v0.1.0-dev"
}

// Expression is a parsed, reusable JMESPath expression. It is safe for
// concurrent use: evaluation never mutates the AST, and each Eval call
// builds its own interpreter and allocator (per spec.md §5's "each
// concurrent evaluation must use its own interpreter/allocator instance").
type Expression struct {
	source string
	node   *ast.Node
}

// String returns the original expression text.
func (e *Expression) String() string { return e.source }

// AST exposes the parsed tree for callers that need to inspect it, e.g. the
// opcode compiler's subset check.
func (e *Expression) AST() *ast.Node { return e.node }

// compileConfig holds Compile's resolved options.
type compileConfig struct {
	maxParseDepth int
}

// CompileOption configures Compile.
type CompileOption func(*compileConfig)

// WithMaxParseDepth overrides the parser's recursion depth limit, guarding
// against a pathological, deeply-nested expression overflowing the Go
// stack during parsing.
func WithMaxParseDepth(depth int) CompileOption {
	return func(c *compileConfig) { c.maxParseDepth = depth }
}

// Compile compiles a JMESPath expression for repeated evaluation against
// different documents.
func Compile(expr string, opts ...CompileOption) (*Expression, error) {
	cfg := compileConfig{maxParseDepth: parser.DefaultMaxDepth}
	for _, opt := range opts {
		opt(&cfg)
	}
	node, err := parser.ParseWithMaxDepth(expr, cfg.maxParseDepth)
	if err != nil {
		return nil, err
	}
	return &Expression{source: expr, node: node}, nil
}

// MustCompile is like Compile but panics if the expression cannot be
// compiled. It simplifies safe initialization of global variables.
func MustCompile(expr string) *Expression {
	e, err := Compile(expr)
	if err != nil {
		panic(fmt.Sprintf("jmespath: Compile(%q): %v", expr, err))
	}
	return e
}

// Tokenize lexes expr into its token stream without parsing it. The
// returned slice ends with the trailing EOF token, or with the first error
// token when expr contains a lexical error. Useful for tooling (syntax highlighting,
// diagnostics) built on top of this module.
func Tokenize(expr string) []lexer.Token {
	lx := lexer.New(expr)
	var toks []lexer.Token
	for {
		_, tok := lx.Next()
		toks = append(toks, tok)
		if tok.Type == lexer.TokenEOF || tok.Type == lexer.TokenError {
			return toks
		}
	}
}

// Parse tokenizes and parses expr into its AST without wrapping it in an
// Expression, for callers that want to inspect or compile it manually (e.g.
// against pkg/compiler's opcode subset).
func Parse(expr string) (*ast.Node, error) {
	return parser.Parse(expr)
}

// Evaluator evaluates JMESPath expressions against data.
type Evaluator struct {
	opts      EvalOptions
	logger    *slog.Logger
	cache     *Cache // non-nil when caching is enabled
	customFns *functions.Registry
}

// EvalOptions configures Evaluator behavior.
type EvalOptions struct {
	// Caching enables expression compilation caching. When true, compiled
	// ASTs are cached by query string. The default cache holds up to 256
	// entries with LRU eviction.
	Caching bool
	// CacheSize sets the maximum number of cached expressions. Only used
	// when Caching is true and no explicit Cache is provided. Defaults to
	// 256.
	CacheSize int
	// Cache is a custom expression cache. If non-nil, Caching is implicitly
	// enabled.
	Cache *Cache
	// Concurrency enables EvalMany running its evaluations concurrently
	// instead of sequentially.
	Concurrency bool
	// MaxDepth limits tree-interpreter recursion. Zero uses the
	// interpreter's own default.
	MaxDepth int
	// Timeout bounds a single Eval/EvalMany/EvalStream-item call. Zero
	// disables the timeout.
	Timeout time.Duration
	// Debug enables debug logging of evaluation failures. Cache hits and
	// misses are not logged; a failed compile on the cached path is logged
	// at Debug level whether or not this flag is set.
	Debug bool
	// Logger for structured logging. Defaults to slog.Default().
	Logger *slog.Logger
	// CustomFunctions holds user-defined functions to register alongside
	// the core built-ins.
	CustomFunctions []customFunctionDef
}

// CustomFunc is a user-defined JMESPath function operating on plain Go
// values, the same shapes toValue/fromValue convert to and from, rather
// than the internal value.Value representation functions.Impl uses.
type CustomFunc func(args ...interface{}) (interface{}, error)

// customFunctionDef captures one WithCustomFunction registration before
// it's turned into a functions.Signature at New() time.
type customFunctionDef struct {
	name     string
	arity    int
	variadic bool
	fn       CustomFunc
}

// WithCustomFunction registers a user-defined function, callable from
// JMESPath expressions exactly like length or keys. arity is the required
// number of positional arguments; set variadic to additionally accept any
// number of further Any-typed arguments.
//
// Example:
//
//	jmespath.Eval("greet(name)", data, jmespath.WithCustomFunction("greet", 1, false,
//	    func(args ...interface{}) (interface{}, error) {
//	        return "Hello, " + args[0].(string) + "!", nil
//	    }))
func WithCustomFunction(name string, arity int, variadic bool, fn CustomFunc) EvalOption {
	return func(opts *EvalOptions) {
		opts.CustomFunctions = append(opts.CustomFunctions, customFunctionDef{
			name: name, arity: arity, variadic: variadic, fn: fn,
		})
	}
}

// EvalOption configures evaluation behavior.
type EvalOption func(*EvalOptions)

// defaultTimeout is an Evaluator's per-Eval timeout unless WithTimeout sets
// another (zero disables it); it applies on top of any deadline the caller's
// context already carries, mirroring the teacher's Evaluator default.
const defaultTimeout = 30 * time.Second

// New creates a new Evaluator with default options.
func New(opts ...EvalOption) *Evaluator {
	options := EvalOptions{
		Caching:     false,
		Concurrency: true,
		Timeout:     defaultTimeout,
	}
	for _, opt := range opts {
		opt(&options)
	}
	if options.Logger == nil {
		options.Logger = slog.Default()
	}

	var c *Cache
	if options.Cache != nil {
		c = options.Cache
	} else if options.Caching {
		size := options.CacheSize
		if size <= 0 {
			size = 256
		}
		c = NewCache(size)
	}

	registry := functions.NewRegistry()
	for _, def := range options.CustomFunctions {
		registry.Register(customSignature(def))
	}

	return &Evaluator{
		opts:      options,
		logger:    options.Logger,
		cache:     c,
		customFns: registry,
	}
}

// customSignature adapts a customFunctionDef to a functions.Signature,
// converting its Value arguments to plain Go data before calling def.fn and
// converting the result back. Every positional and variadic slot accepts
// Any, since CustomFunc operates on already-unwrapped Go values rather than
// the closed ArgumentType taxonomy built-ins validate against.
func customSignature(def customFunctionDef) *functions.Signature {
	sig := &functions.Signature{
		Name:       def.name,
		Positional: anySlice(def.arity),
		Impl: func(args []*value.Value, ev functions.Evaluator) (*value.Value, error) {
			goArgs := make([]interface{}, len(args))
			for i, a := range args {
				goArgs[i] = fromValue(a)
			}
			result, err := def.fn(goArgs...)
			if err != nil {
				return nil, err
			}
			return toValue(ev.Allocator(), result), nil
		},
	}
	if def.variadic {
		any := functions.Any
		sig.Variadic = &any
	}
	return sig
}

func anySlice(n int) []functions.ArgumentType {
	out := make([]functions.ArgumentType, n)
	for i := range out {
		out[i] = functions.Any
	}
	return out
}

// Cache returns the expression cache, or nil if caching is disabled.
func (e *Evaluator) Cache() *Cache { return e.cache }

func (e *Evaluator) compile(query string) (*Expression, error) {
	if e.cache == nil {
		return Compile(query)
	}
	node, err := e.cache.GetOrCompile(query, func() (*ast.Node, error) {
		return parser.Parse(query)
	})
	if err != nil {
		e.logger.Debug("jmespath: cache miss, compile failed", "query", query, "error", err)
		return nil, err
	}
	return &Expression{source: query, node: node}, nil
}

func (e *Evaluator) newInterpreter() *interpreter.Interpreter {
	opts := []interpreter.Option{interpreter.WithFunctions(e.customFns)}
	if e.opts.MaxDepth > 0 {
		opts = append(opts, interpreter.WithMaxDepth(e.opts.MaxDepth))
	}
	return interpreter.New(opts...)
}

// Eval evaluates expr against data, applying the Evaluator's timeout (if
// any) via ctx.
func (e *Evaluator) Eval(ctx context.Context, expr *Expression, data interface{}) (interface{}, error) {
	if expr == nil || expr.node == nil {
		return nil, fmt.Errorf("jmespath: invalid expression")
	}

	if e.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.opts.Timeout)
		defer cancel()
	}

	it := e.newInterpreter()
	alloc := it.Allocator()
	input := toValue(alloc, data)

	type evalResult struct {
		v   *value.Value
		err error
	}
	done := make(chan evalResult, 1)
	go func() {
		v, err := it.Eval(expr.node, input)
		done <- evalResult{v, err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-done:
		if r.err != nil {
			if e.opts.Debug {
				e.logger.Debug("jmespath: evaluation failed", "query", expr.source, "error", r.err)
			}
			return nil, r.err
		}
		return fromValue(r.v), nil
	}
}

// EvalMany evaluates multiple expressions against the same data. When
// Concurrency is enabled (the default), each expression runs on its own
// goroutine with its own interpreter/allocator, exactly the isolation
// spec.md §5 requires for concurrent evaluation; otherwise they run
// sequentially in order.
//
// The returned slice has one entry per input expression, in the same
// order. In sequential mode a single expression's failure does not stop
// the others from running, and the first error in input order is
// returned. In concurrent mode the first failure cancels the context the
// remaining evaluations share, so those still running may end with a
// context error; the first error to occur is returned. Either way the
// error comes back alongside the partial results.
func (e *Evaluator) EvalMany(ctx context.Context, exprs []*Expression, data interface{}) ([]interface{}, error) {
	results := make([]interface{}, len(exprs))
	if !e.opts.Concurrency {
		var firstErr error
		for i, expr := range exprs {
			r, err := e.Eval(ctx, expr, data)
			results[i] = r
			if err != nil && firstErr == nil {
				firstErr = err
			}
		}
		return results, firstErr
	}

	g, gctx := errgroup.WithContext(ctx)
	for i, expr := range exprs {
		i, expr := i, expr
		g.Go(func() error {
			r, err := e.Eval(gctx, expr, data)
			results[i] = r
			return err
		})
	}
	err := g.Wait()
	return results, err
}

// StreamResult holds the output of a single streaming evaluation step.
type StreamResult struct {
	// CorrelationID identifies the streaming session this result belongs
	// to, for tying together log lines across a long-running stream.
	CorrelationID string
	// Value is the evaluated result for one input document, or nil when
	// Err is set.
	Value interface{}
	// Err is non-nil when evaluation of a single document failed. After a
	// fatal I/O or JSON-decode error the channel is closed; per-document
	// evaluation errors are sent individually and the stream continues.
	Err error
}

// EvalStream reads a sequence of JSON values from r (e.g. NDJSON, or values
// simply concatenated)
// and evaluates expr against each one, sending results on the returned
// channel. Every result carries a correlation ID unique to this streaming
// session, so log lines from concurrent streams can be told apart.
//
// The channel is closed when all input has been consumed or the context is
// cancelled. It is the caller's responsibility to drain the channel or
// cancel the context to avoid goroutine leaks.
func (e *Evaluator) EvalStream(ctx context.Context, expr *Expression, r io.Reader) (<-chan StreamResult, error) {
	if expr == nil || expr.node == nil {
		return nil, fmt.Errorf("jmespath: invalid expression")
	}

	sessionID := uuid.NewString()
	ch := make(chan StreamResult, 16)

	go func() {
		defer close(ch)
		dec := jsonDecoder(r)
		for {
			select {
			case <-ctx.Done():
				ch <- StreamResult{CorrelationID: sessionID, Err: ctx.Err()}
				return
			default:
			}

			data, err := dec.next()
			if err != nil {
				if err == io.EOF {
					return
				}
				ch <- StreamResult{CorrelationID: sessionID, Err: err}
				return
			}

			result, err := e.Eval(ctx, expr, data)
			ch <- StreamResult{CorrelationID: sessionID, Value: result, Err: err}
		}
	}()

	return ch, nil
}

// WithCaching enables or disables expression compilation caching. When
// enabled, a default LRU cache of 256 entries is created.
func WithCaching(enabled bool) EvalOption {
	return func(opts *EvalOptions) { opts.Caching = enabled }
}

// WithCacheSize sets the maximum number of cached expressions. Only
// effective when combined with WithCaching(true).
func WithCacheSize(size int) EvalOption {
	return func(opts *EvalOptions) { opts.CacheSize = size }
}

// WithCache attaches an external expression cache, used regardless of the
// Caching flag.
func WithCache(c *Cache) EvalOption {
	return func(opts *EvalOptions) { opts.Cache = c }
}

// WithConcurrency enables or disables EvalMany's concurrent evaluation.
func WithConcurrency(enabled bool) EvalOption {
	return func(opts *EvalOptions) { opts.Concurrency = enabled }
}

// WithMaxDepth sets the interpreter's maximum recursion depth.
func WithMaxDepth(depth int) EvalOption {
	return func(opts *EvalOptions) { opts.MaxDepth = depth }
}

// WithTimeout sets the per-Eval timeout.
func WithTimeout(timeout time.Duration) EvalOption {
	return func(opts *EvalOptions) { opts.Timeout = timeout }
}

// WithDebug enables or disables debug logging.
func WithDebug(enabled bool) EvalOption {
	return func(opts *EvalOptions) { opts.Debug = enabled }
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) EvalOption {
	return func(opts *EvalOptions) { opts.Logger = logger }
}

// Eval is a convenience function that compiles and evaluates an expression
// in a single call, applying a 30-second default timeout unless opts
// overrides it with WithTimeout. For repeated evaluations of the same
// expression, use Compile and Evaluator.Eval instead.
func Eval(expr string, data interface{}, opts ...EvalOption) (interface{}, error) {
	return EvalWithContext(context.Background(), expr, data, opts...)
}

// EvalWithContext evaluates an expression with a caller-supplied context.
// Each call builds a fresh Evaluator from opts, so WithCaching(true) alone
// gives that call a new, empty cache and nothing is reused across calls;
// passing a shared Cache through WithCache makes later calls with the same
// expression string reuse its compiled AST.
func EvalWithContext(ctx context.Context, expr string, data interface{}, opts ...EvalOption) (interface{}, error) {
	ev := New(opts...)
	compiled, err := ev.compile(expr)
	if err != nil {
		return nil, err
	}
	return ev.Eval(ctx, compiled, data)
}
