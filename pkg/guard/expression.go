package guard

import (
	"fmt"
	"slices"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// DocBinding is the name under which the entity snapshot is exposed to expressions.
const DocBinding = "doc"

// DefaultBuiltins lists the expr builtins available to every check.
var DefaultBuiltins = []string{
	"len", "abs", "max", "min", "int", "float", "string",
	"trim", "lower", "upper",
	"all", "any", "none", "one", "filter", "map", "count", "sum", "first", "last",
}

// Guard is a named condition evaluated before a transition is allowed.
type Guard interface {
	Name() string
	// Message is the human readable text reported when the guard fails.
	Message() string
	Evaluate(env map[string]any) (bool, error)
}

// Function is a host function callable from expressions.
type Function func(params ...any) (any, error)

type config struct {
	builtins  []string
	functions map[string]Function
}

// Option configures how an expression is compiled.
type Option func(*config)

// WithFunction makes fn callable from the expression as name.
func WithFunction(name string, fn Function) Option {
	return func(c *config) {
		if c.functions == nil {
			c.functions = make(map[string]Function)
		}
		c.functions[name] = fn
	}
}

// WithBuiltins replaces the builtin allow-list.
func WithBuiltins(names ...string) Option {
	return func(c *config) {
		c.builtins = slices.Clone(names)
	}
}

// CompileError is returned when an expression cannot be compiled.
type CompileError struct {
	Guard      string
	Expression string
	Err        error
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("check %q: compile %q: %v", e.Guard, e.Expression, e.Err)
}

func (e *CompileError) Unwrap() error {
	return e.Err
}

// Expression is a Guard backed by a compiled expr program.
// It is immutable and safe for concurrent use.
type Expression struct {
	name    string
	source  string
	message string
	program *vm.Program
}

var _ Guard = (*Expression)(nil)

// New compiles source and returns the resulting check.
// An empty name, an empty source or a syntax error is reported as a *CompileError.
func New(name, source, message string, opts ...Option) (*Expression, error) {
	if name == "" {
		return nil, &CompileError{Expression: source, Err: fmt.Errorf("empty check name")}
	}
	if source == "" {
		return nil, &CompileError{Guard: name, Err: fmt.Errorf("empty expression")}
	}

	cfg := config{builtins: DefaultBuiltins}
	for _, opt := range opts {
		opt(&cfg)
	}

	exprOpts := []expr.Option{
		expr.Env(map[string]any{DocBinding: map[string]any{}}),
		expr.AsBool(),
		expr.DisableAllBuiltins(),
	}
	for _, b := range cfg.builtins {
		exprOpts = append(exprOpts, expr.EnableBuiltin(b))
	}
	for fname, fn := range cfg.functions {
		exprOpts = append(exprOpts, expr.Function(fname, fn))
	}

	program, err := expr.Compile(source, exprOpts...)
	if err != nil {
		return nil, &CompileError{Guard: name, Expression: source, Err: err}
	}

	return &Expression{
		name:    name,
		source:  source,
		message: message,
		program: program,
	}, nil
}

// MustNew is like New but panics on error. Intended for static declarations.
func MustNew(name, source, message string, opts ...Option) *Expression {
	g, err := New(name, source, message, opts...)
	if err != nil {
		panic(err)
	}
	return g
}

func (g *Expression) Name() string    { return g.name }
func (g *Expression) Message() string { return g.message }

// Source returns the expression text.
func (g *Expression) Source() string { return g.source }

// Evaluate runs the compiled program against a plain copy of env (see
// PlainEnv). A runtime failure or a non boolean result is returned as an error.
func (g *Expression) Evaluate(env map[string]any) (bool, error) {
	env = PlainEnv(env)
	if _, ok := env[DocBinding]; !ok {
		env[DocBinding] = map[string]any{}
	}

	out, err := expr.Run(g.program, env)
	if err != nil {
		return false, err
	}
	ok, isBool := out.(bool)
	if !isBool {
		return false, fmt.Errorf("expression %q returned %T, want bool", g.source, out)
	}
	return ok, nil
}
