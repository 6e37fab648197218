package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/TanaroSch/clipboard-anonymizer/internal/clipboard"
	"github.com/TanaroSch/clipboard-anonymizer/internal/engine"
)

func newWatchCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Anonymize the clipboard without the tray icon",
		Long:  "Runs the clipboard monitor headless until interrupted. Events are only logged.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			clip, err := clipboard.NewSystem()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			failed := make(chan error, 1)
			eng := engine.New(cfg, engine.Options{
				Clipboard: clip,
				Notifier:  engine.LogNotifier{Logger: opts.logger.Named("events")},
				OnFailure: func(err error) {
					select {
					case failed <- err:
					default:
					}
				},
			}, opts.logger)

			return runEngine(ctx, eng, failed)
		},
	}
}

// runEngine starts eng and blocks until ctx is done or monitoring fails.
func runEngine(ctx context.Context, eng *engine.Engine, failed <-chan error) error {
	if err := eng.Start(ctx); err != nil {
		eng.Stop()
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		select {
		case <-gctx.Done():
			return nil
		case err := <-failed:
			return fmt.Errorf("clipboard monitoring stopped: %w", err)
		}
	})
	g.Go(func() error {
		<-gctx.Done()
		eng.Stop()
		return nil
	})
	return g.Wait()
}
