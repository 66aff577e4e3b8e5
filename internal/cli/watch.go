package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/peterlsmith/FormAlly/internal"
	"github.com/peterlsmith/FormAlly/internal/config"
)

// WatchOptions holds the flags of the watch command.
type WatchOptions struct {
	Set []string
}

// NewWatchCommand creates the watch command.
func NewWatchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &WatchOptions{}

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Evaluate validators continuously",
		Long: `Like check, then keep running: changes to file fields and to the
config file itself re-evaluate the validators until interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runWatch(ctx, cmd, rootOpts, opts)
		},
	}

	cmd.Flags().StringArrayVar(&opts.Set, "set", nil, "override a field, as name=value (repeatable)")

	return cmd
}

func runWatch(ctx context.Context, cmd *cobra.Command, rootOpts *RootOptions, opts *WatchOptions) error {
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

	// rebuilds run on the runtime goroutine, posted by the config watcher
	rebuild := func(next *config.Config) {
		rt.Destroy()

		g, err := buildGraph(rt, next, overrides, out, log)
		if err != nil {
			rt.Destroy()
			log.Error().Err(err).Msg("rebuild failed, validators stopped until the next change")
			return
		}

		log.Info().Int("validators", len(next.Validators)).Msg("rebuilt")
		g.reset()
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	watchErr := make(chan error, 1)
	go func() {
		watchErr <- config.Watch(ctx, rootOpts.Config, log, func(next *config.Config) {
			rt.Post(func() { rebuild(next) })
		})
	}()

	if err := rt.Run(ctx); err != nil {
		return err
	}

	cancel()
	return <-watchErr
}
