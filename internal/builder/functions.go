package builder

import (
	"fmt"
	"math"
	"time"

	"github.com/peterlsmith/FormAlly/internal"
	"github.com/peterlsmith/FormAlly/internal/expr"
)

func arity(args []any, n int) error {
	if len(args) != n {
		return fmt.Errorf("%w: want %d arguments, got %d", ErrArgument, n, len(args))
	}
	return nil
}

func minArity(args []any, n int) error {
	if len(args) < n {
		return fmt.Errorf("%w: want at least %d arguments, got %d", ErrArgument, n, len(args))
	}
	return nil
}

func wrongKind(i int, want string, got any) error {
	return fmt.Errorf("%w: argument %d: expected %s, got %s", ErrArgument, i+1, want, describe(got))
}

func stringArg(args []any, i int) (string, error) {
	s, ok := args[i].(string)
	if !ok {
		return "", wrongKind(i, "string", args[i])
	}
	return s, nil
}

// boundArg reads a range bound, null meaning unbounded.
func boundArg(args []any, i int, unbounded float64) (float64, error) {
	switch v := args[i].(type) {
	case nil:
		return unbounded, nil
	case float64:
		return v, nil
	}
	return 0, wrongKind(i, "number or null", args[i])
}

func sourceArgs(args []any, from int) ([]internal.Source, error) {
	sources := make([]internal.Source, 0, len(args)-from)
	for i := from; i < len(args); i++ {
		s, ok := args[i].(internal.Source)
		if !ok {
			return nil, wrongKind(i, "source", args[i])
		}
		sources = append(sources, s)
	}
	return sources, nil
}

func predicateArgs(args []any) ([]internal.Predicate, error) {
	preds := make([]internal.Predicate, 0, len(args))
	for i, arg := range args {
		p, ok := arg.(internal.Predicate)
		if !ok {
			return nil, wrongKind(i, "predicate", arg)
		}
		preds = append(preds, p)
	}
	return preds, nil
}

func actionArg(args []any, i int) (internal.Action, error) {
	a, ok := args[i].(internal.Action)
	if !ok {
		return nil, wrongKind(i, "action", args[i])
	}
	return a, nil
}

func buildField(b *Builder, _ *expr.Call, args []any) (any, error) {
	if err := arity(args, 1); err != nil {
		return nil, err
	}

	name, err := stringArg(args, 0)
	if err != nil {
		return nil, err
	}

	src, ok := b.env.Fields[name]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownField, name)
	}

	return b.rt.NewRef(src)
}

func buildConst(b *Builder, _ *expr.Call, args []any) (any, error) {
	if err := arity(args, 1); err != nil {
		return nil, err
	}

	switch args[0].(type) {
	case nil, bool, float64, string, []any:
		return b.rt.NewConstantSource(args[0]), nil
	}

	return nil, wrongKind(0, "literal", args[0])
}

func buildFile(b *Builder, _ *expr.Call, args []any) (any, error) {
	if err := arity(args, 1); err != nil {
		return nil, err
	}

	path, err := stringArg(args, 0)
	if err != nil {
		return nil, err
	}

	src, err := b.rt.NewFileSource(path)
	if err != nil {
		return nil, err
	}
	b.rt.Owner().Adopt(src)

	return src, nil
}

func buildTrue(b *Builder, _ *expr.Call, args []any) (any, error) {
	if err := arity(args, 0); err != nil {
		return nil, err
	}
	return b.rt.NewTrue(), nil
}

func buildFalse(b *Builder, _ *expr.Call, args []any) (any, error) {
	if err := arity(args, 0); err != nil {
		return nil, err
	}
	return b.rt.NewFalse(), nil
}

func buildFunc(b *Builder, _ *expr.Call, args []any) (any, error) {
	if err := minArity(args, 1); err != nil {
		return nil, err
	}

	name, err := stringArg(args, 0)
	if err != nil {
		return nil, err
	}

	fn, ok := b.env.Funcs[name]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownFunction, name)
	}

	sources, err := sourceArgs(args, 1)
	if err != nil {
		return nil, err
	}

	return b.rt.NewFunc(fn, sources...)
}

func buildEqual(b *Builder, _ *expr.Call, args []any) (any, error) {
	sources, err := sourceArgs(args, 0)
	if err != nil {
		return nil, err
	}
	return b.rt.NewEqual(sources...)
}

func buildChanged(b *Builder, _ *expr.Call, args []any) (any, error) {
	sources, err := sourceArgs(args, 0)
	if err != nil {
		return nil, err
	}
	return b.rt.NewChanged(sources...)
}

func buildPattern(b *Builder, _ *expr.Call, args []any) (any, error) {
	if err := minArity(args, 1); err != nil {
		return nil, err
	}

	re, err := stringArg(args, 0)
	if err != nil {
		return nil, err
	}

	sources, err := sourceArgs(args, 1)
	if err != nil {
		return nil, err
	}

	return b.rt.NewPattern(re, sources...)
}

func buildRange(b *Builder, _ *expr.Call, args []any) (any, error) {
	if err := minArity(args, 2); err != nil {
		return nil, err
	}

	lo, err := boundArg(args, 0, math.Inf(-1))
	if err != nil {
		return nil, err
	}

	hi, err := boundArg(args, 1, math.Inf(1))
	if err != nil {
		return nil, err
	}

	sources, err := sourceArgs(args, 2)
	if err != nil {
		return nil, err
	}

	return b.rt.NewRange(lo, hi, sources...)
}

func buildExclude(b *Builder, _ *expr.Call, args []any) (any, error) {
	if err := minArity(args, 1); err != nil {
		return nil, err
	}

	list, ok := args[0].([]any)
	if !ok {
		return nil, wrongKind(0, "list", args[0])
	}

	words := make([]string, 0, len(list))
	for _, item := range list {
		w, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("%w: argument 1: expected list of strings, found %s", ErrArgument, describe(item))
		}
		words = append(words, w)
	}

	sources, err := sourceArgs(args, 1)
	if err != nil {
		return nil, err
	}

	return b.rt.NewExclude(words, sources...)
}

func buildAnd(b *Builder, _ *expr.Call, args []any) (any, error) {
	preds, err := predicateArgs(args)
	if err != nil {
		return nil, err
	}
	return b.rt.NewAnd(preds...)
}

func buildOr(b *Builder, _ *expr.Call, args []any) (any, error) {
	preds, err := predicateArgs(args)
	if err != nil {
		return nil, err
	}
	return b.rt.NewOr(preds...)
}

func buildNot(b *Builder, _ *expr.Call, args []any) (any, error) {
	if err := arity(args, 1); err != nil {
		return nil, err
	}

	preds, err := predicateArgs(args)
	if err != nil {
		return nil, err
	}

	return b.rt.NewNot(preds[0])
}

// buildValidator takes predicates followed by one or more actions.
func buildValidator(b *Builder, _ *expr.Call, args []any) (any, error) {
	var (
		preds   []internal.Predicate
		actions []internal.Action
	)

	for i, arg := range args {
		switch v := arg.(type) {
		case internal.Predicate:
			if len(actions) > 0 {
				return nil, fmt.Errorf("%w: argument %d: predicate after action", ErrArgument, i+1)
			}
			preds = append(preds, v)
		case internal.Action:
			actions = append(actions, v)
		default:
			return nil, wrongKind(i, "predicate or action", arg)
		}
	}

	if len(actions) == 0 {
		return nil, fmt.Errorf("%w: want at least one action", ErrArgument)
	}

	consumer := actions[0]
	if len(actions) > 1 {
		consumer = internal.All(actions...)
	}

	return b.rt.NewConnector(consumer, preds...)
}

func buildAll(_ *Builder, _ *expr.Call, args []any) (any, error) {
	actions := make([]internal.Action, 0, len(args))
	for i := range args {
		a, err := actionArg(args, i)
		if err != nil {
			return nil, err
		}
		actions = append(actions, a)
	}
	return internal.All(actions...), nil
}

func buildAlt(_ *Builder, _ *expr.Call, args []any) (any, error) {
	if err := arity(args, 1); err != nil {
		return nil, err
	}

	a, err := actionArg(args, 0)
	if err != nil {
		return nil, err
	}

	return internal.Alt(a), nil
}

// buildDebounce takes the delay in milliseconds and the action to debounce.
func buildDebounce(b *Builder, _ *expr.Call, args []any) (any, error) {
	if err := arity(args, 2); err != nil {
		return nil, err
	}

	ms, ok := args[0].(float64)
	if !ok {
		return nil, wrongKind(0, "number", args[0])
	}

	a, err := actionArg(args, 1)
	if err != nil {
		return nil, err
	}

	d, err := b.rt.NewDebouncer(time.Duration(ms*float64(time.Millisecond)), a)
	if err != nil {
		return nil, err
	}
	b.debouncers = append(b.debouncers, d)

	return d.Action(), nil
}
