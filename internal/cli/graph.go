package cli

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/rs/zerolog"

	"github.com/peterlsmith/FormAlly/internal"
	"github.com/peterlsmith/FormAlly/internal/builder"
	"github.com/peterlsmith/FormAlly/internal/config"
)

// graph is the set of validators built from one config.
type graph struct {
	rt         *internal.Runtime
	validators []*validator
}

type validator struct {
	name      string
	connector *internal.Connector
}

// parseOverrides turns name=value pairs into a map.
func parseOverrides(pairs []string) (map[string]string, error) {
	overrides := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid --set %q: want name=value", pair)
		}
		overrides[name] = value
	}
	return overrides, nil
}

// buildGraph creates the fields and validators of cfg on rt. Everything it
// creates is owned by rt and torn down by rt.Destroy.
func buildGraph(rt *internal.Runtime, cfg *config.Config, overrides map[string]string, out io.Writer, log zerolog.Logger) (*graph, error) {
	fields := make(map[string]internal.Source, len(cfg.Fields)+len(overrides))

	for _, f := range cfg.Fields {
		if value, ok := overrides[f.Name]; ok {
			fields[f.Name] = rt.NewVar(value)
			continue
		}

		if f.File != "" {
			src, err := rt.NewFileSource(f.File)
			if err != nil {
				return nil, fmt.Errorf("field %q: %w", f.Name, err)
			}
			fields[f.Name] = src
			continue
		}

		fields[f.Name] = rt.NewVar(f.Value)
	}

	// overrides may also declare fields the config does not have
	for _, name := range slices.Sorted(maps.Keys(overrides)) {
		if _, ok := fields[name]; !ok {
			fields[name] = rt.NewVar(overrides[name])
		}
	}

	for _, name := range slices.Sorted(maps.Keys(fields)) {
		rt.Owner().Adopt(fields[name])
	}

	b := builder.New(rt, builder.Env{
		Fields:  fields,
		Actions: actions(out, log),
	})

	g := &graph{rt: rt}
	for _, v := range cfg.Validators {
		c, err := buildValidator(b, cfg, v, out)
		if err != nil {
			return nil, fmt.Errorf("validator %q: %w", v.Name, err)
		}
		g.validators = append(g.validators, &validator{name: v.Name, connector: c})
	}

	return g, nil
}

// buildValidator compiles v. A bare predicate gets a connector printing its
// state under the validator name, debounced if configured.
func buildValidator(b *builder.Builder, cfg *config.Config, v config.Validator, out io.Writer) (*internal.Connector, error) {
	value, err := b.Compile(v.Expr)
	if err != nil {
		return nil, err
	}

	switch value := value.(type) {
	case *internal.Connector:
		return value, nil

	case internal.Predicate:
		rt := b.Runtime()
		action := printAction(out, v.Name)

		if delay := cfg.DebounceOf(v); delay > 0 {
			d, err := rt.NewDebouncer(delay, action)
			if err != nil {
				value.Destroy()
				return nil, err
			}
			action = d.Action()
		}

		return rt.NewConnector(action, value)
	}

	if d, ok := value.(internal.Disposable); ok {
		d.Destroy()
	}
	return nil, fmt.Errorf("%w: expected predicate or validator", builder.ErrArgument)
}

// reset evaluates every validator, in config order.
func (g *graph) reset() {
	for _, v := range g.validators {
		v.connector.Reset()
	}
}

// invalid returns the names of the validators that are not true.
func (g *graph) invalid() []string {
	var names []string
	for _, v := range g.validators {
		if v.connector.State() != internal.True {
			names = append(names, v.name)
		}
	}
	return names
}
