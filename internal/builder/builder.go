// Package builder turns parsed expressions into propagation graphs.
package builder

import (
	"errors"
	"fmt"

	"github.com/peterlsmith/FormAlly/internal"
	"github.com/peterlsmith/FormAlly/internal/expr"
)

// ActionFactory builds a caller supplied action, such as print("user").
type ActionFactory func(args []any) (internal.Action, error)

// Env is what expressions can refer to besides the built-in functions.
type Env struct {
	// Fields are the sources field(name) resolves to.
	Fields map[string]internal.Source

	// Funcs are the functions func(name, ...) evaluates.
	Funcs map[string]func(values []any) bool

	// Actions are looked up by call name when no built-in matches.
	Actions map[string]ActionFactory

	// Registry defaults to DefaultRegistry().
	Registry *Registry
}

// Error is a build failure located in the source expression.
type Error struct {
	Pos  expr.Pos
	Func string
	Err  error
}

func (e *Error) Error() string {
	if e.Func == "" {
		return fmt.Sprintf("builder: %s: %v", e.Pos, e.Err)
	}
	return fmt.Sprintf("builder: %s: %s: %v", e.Pos, e.Func, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

var (
	// ErrUnknownFunction is returned for a call no constructor or action is registered for.
	ErrUnknownFunction = errors.New("unknown function")

	// ErrUnknownIdent is returned for a bare identifier other than null, true and false.
	ErrUnknownIdent = errors.New("unknown identifier")

	// ErrUnknownField is returned by field(name) when Env has no such field.
	ErrUnknownField = errors.New("unknown field")

	// ErrArgument is returned when a call gets the wrong number or kind of arguments.
	ErrArgument = errors.New("invalid argument")
)

// Builder builds graphs on one runtime.
type Builder struct {
	rt       *internal.Runtime
	env      Env
	registry *Registry

	// debouncers created by the build in progress
	debouncers []*internal.Debouncer
}

func New(rt *internal.Runtime, env Env) *Builder {
	registry := env.Registry
	if registry == nil {
		registry = DefaultRegistry()
	}

	return &Builder{
		rt:       rt,
		env:      env,
		registry: registry,
	}
}

// Runtime returns the runtime nodes are created on.
func (b *Builder) Runtime() *internal.Runtime { return b.rt }

// Env returns the environment expressions are resolved against.
func (b *Builder) Env() Env { return b.env }

// Compile parses and builds src.
func (b *Builder) Compile(src string) (any, error) {
	n, err := expr.Parse(src)
	if err != nil {
		return nil, err
	}

	return b.Build(n)
}

// CompilePredicate compiles src and checks that it yields a predicate.
func (b *Builder) CompilePredicate(src string) (internal.Predicate, error) {
	n, err := expr.Parse(src)
	if err != nil {
		return nil, err
	}

	v, err := b.build(n, func(v any) error {
		if _, ok := v.(internal.Predicate); !ok {
			return &Error{Pos: n.Pos(), Err: fmt.Errorf("%w: expected predicate, got %s", ErrArgument, describe(v))}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return v.(internal.Predicate), nil
}

// Build evaluates n. The result is a literal (nil, bool, float64, string,
// []any), an internal.Source, an internal.Predicate or an internal.Action.
// A failed build leaves no node or debouncer behind.
func (b *Builder) Build(n expr.Node) (any, error) {
	return b.build(n, nil)
}

// build evaluates n, then runs check on the result if given.
func (b *Builder) build(n expr.Node, check func(v any) error) (any, error) {
	b.debouncers = nil
	defer func() { b.debouncers = nil }()

	v, err := b.eval(n)
	if err == nil && check != nil {
		if err = check(v); err != nil {
			destroy(v)
		}
	}

	if err != nil {
		// actions cannot be destroyed, the debouncers behind them can
		for _, d := range b.debouncers {
			d.Destroy()
		}
		return nil, err
	}

	return v, nil
}

func (b *Builder) eval(n expr.Node) (any, error) {
	switch n := n.(type) {
	case *expr.String:
		return n.Value, nil

	case *expr.Number:
		return n.Value, nil

	case *expr.Ident:
		switch n.Name {
		case "null":
			return nil, nil
		case "true":
			return true, nil
		case "false":
			return false, nil
		}
		return nil, &Error{Pos: n.At, Err: fmt.Errorf("%w %q", ErrUnknownIdent, n.Name)}

	case *expr.List:
		items := make([]any, 0, len(n.Items))
		for _, item := range n.Items {
			v, err := b.eval(item)
			if err != nil {
				return nil, err
			}
			items = append(items, v)
		}
		return items, nil

	case *expr.Call:
		return b.call(n)
	}

	return nil, fmt.Errorf("builder: unexpected node %T", n)
}

func (b *Builder) call(call *expr.Call) (any, error) {
	args := make([]any, 0, len(call.Args))
	for _, arg := range call.Args {
		v, err := b.eval(arg)
		if err != nil {
			destroy(args...)
			return nil, err
		}
		args = append(args, v)
	}

	var (
		v   any
		err error
	)

	if c, ok := b.registry.Lookup(call.Name); ok {
		v, err = c(b, call, args)
	} else if factory, ok := b.env.Actions[call.Name]; ok {
		v, err = factory(args)
	} else {
		err = ErrUnknownFunction
	}

	if err != nil {
		destroy(args...)
		return nil, &Error{Pos: call.At, Func: call.Name, Err: err}
	}

	return v, nil
}

// destroy tears down the nodes among values, used when a build fails half way.
func destroy(values ...any) {
	for _, v := range values {
		if d, ok := v.(internal.Disposable); ok {
			d.Destroy()
		}
	}
}

func describe(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case float64:
		return "number"
	case string:
		return "string"
	case []any:
		return "list"
	case internal.Source:
		return "source"
	case internal.Predicate:
		return "predicate"
	case internal.Action:
		return "action"
	}
	return fmt.Sprintf("%T", v)
}
