package cli

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/peterlsmith/FormAlly/internal"
	"github.com/peterlsmith/FormAlly/internal/config"
)

// CheckOptions holds the flags of the check command.
type CheckOptions struct {
	Set     []string
	Metrics bool
	Strict  bool
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CheckOptions{}

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Evaluate every validator once",
		Long: `Load the config, build every validator, reset them and print the
resulting states. Pending debounced deliveries are flushed before exiting.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, rootOpts, opts)
		},
	}

	cmd.Flags().StringArrayVar(&opts.Set, "set", nil, "override a field, as name=value (repeatable)")
	cmd.Flags().BoolVar(&opts.Metrics, "metrics", false, "print metrics after evaluating, overrides the config file")
	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "fail if any validator is not valid")

	return cmd
}

// loadConfig loads the config file and builds the logger it configures.
func loadConfig(cmd *cobra.Command, rootOpts *RootOptions) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load(rootOpts.Config)
	if err != nil {
		return nil, zerolog.Nop(), err
	}

	if rootOpts.LogLevel != "" {
		if _, err := zerolog.ParseLevel(rootOpts.LogLevel); err != nil {
			return nil, zerolog.Nop(), fmt.Errorf("invalid --log-level %q", rootOpts.LogLevel)
		}
		cfg.Log.Level = rootOpts.LogLevel
	}

	return cfg, cfg.Log.NewLogger(cmd.ErrOrStderr()), nil
}

func runCheck(cmd *cobra.Command, rootOpts *RootOptions, opts *CheckOptions) error {
	cfg, log, err := loadConfig(cmd, rootOpts)
	if err != nil {
		return err
	}

	overrides, err := parseOverrides(opts.Set)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	rt := internal.NewRuntime(internal.WithLogger(log))
	defer rt.Destroy()

	g, err := buildGraph(rt, cfg, overrides, out, log)
	if err != nil {
		return err
	}

	g.reset()
	rt.FlushDebouncers()

	if opts.Metrics || cfg.Metrics {
		if err := writeMetrics(out, rt.Gatherer()); err != nil {
			return err
		}
	}

	if invalid := g.invalid(); opts.Strict && len(invalid) > 0 {
		return fmt.Errorf("invalid: %s", strings.Join(invalid, ", "))
	}

	return nil
}
