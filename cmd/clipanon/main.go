// Command clipanon anonymizes clipboard text from the system tray.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/TanaroSch/clipboard-anonymizer/internal/app"
	"github.com/TanaroSch/clipboard-anonymizer/internal/cli"
	"github.com/TanaroSch/clipboard-anonymizer/internal/config"
)

// Version is set at build time with -ldflags "-X main.Version=...".
var Version = "dev"

func runTray(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	application, err := app.New(cfg, Version, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	return application.Run(ctx)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.NewRootCmd(Version, runTray).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
