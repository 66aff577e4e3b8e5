package cli

import (
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/rs/zerolog"

	"github.com/peterlsmith/FormAlly/internal"
	"github.com/peterlsmith/FormAlly/internal/builder"
)

func labelArg(name string, args []any) (string, error) {
	if len(args) != 1 {
		return "", fmt.Errorf("%w: %s takes one argument, got %d", builder.ErrArgument, name, len(args))
	}

	label, ok := args[0].(string)
	if !ok {
		return "", fmt.Errorf("%w: %s takes a string", builder.ErrArgument, name)
	}

	return label, nil
}

// actions returns the terminal effects expressions can use:
// print(label), enable(target) and log(label).
func actions(out io.Writer, log zerolog.Logger) map[string]builder.ActionFactory {
	return map[string]builder.ActionFactory{
		"print": func(args []any) (internal.Action, error) {
			label, err := labelArg("print", args)
			if err != nil {
				return nil, err
			}
			return printAction(out, label), nil
		},

		"enable": func(args []any) (internal.Action, error) {
			target, err := labelArg("enable", args)
			if err != nil {
				return nil, err
			}
			return func(v bool) {
				state := "disabled"
				if v {
					state = "enabled"
				}
				fmt.Fprintf(out, "%s: %s\n", target, state)
			}, nil
		},

		"log": func(args []any) (internal.Action, error) {
			label, err := labelArg("log", args)
			if err != nil {
				return nil, err
			}
			return func(v bool) {
				log.Info().Str("validator", label).Bool("valid", v).Msg("validator changed")
			}, nil
		},
	}
}

func printAction(out io.Writer, label string) internal.Action {
	return func(v bool) {
		fmt.Fprintf(out, "%s: %t\n", label, v)
	}
}

// writeMetrics dumps every metric of g in the Prometheus text format.
func writeMetrics(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}

	for _, family := range families {
		if _, err := expfmt.MetricFamilyToText(w, family); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
	}

	return nil
}
