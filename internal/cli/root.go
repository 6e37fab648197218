// Package cli is the command line surface of the anonymizer.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/TanaroSch/clipboard-anonymizer/internal/config"
)

// TrayFunc runs the desktop application until ctx is cancelled or the user
// quits.
type TrayFunc func(ctx context.Context, cfg *config.Config, logger *zap.Logger) error

type options struct {
	configPath string
	debug      bool
	logger     *zap.Logger
}

// NewRootCmd builds the command tree. Without a subcommand the root runs
// tray; a nil tray makes the root print help.
func NewRootCmd(version string, tray TrayFunc) *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "clipanon",
		Short:         "Anonymize clipboard text with configurable pairs",
		Long:          "clipanon watches the clipboard and replaces sensitive text with placeholders, or restores it, according to a pairs file.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.logger != nil {
				return nil
			}
			zc := zap.NewProductionConfig()
			if opts.debug {
				zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
			}
			zc.OutputPaths = []string{"stderr"}
			logger, err := zc.Build()
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			opts.logger = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if opts.logger != nil {
				_ = opts.logger.Sync()
			}
		},
	}
	if tray != nil {
		root.RunE = func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			return tray(cmd.Context(), cfg, opts.logger)
		}
	}

	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "config.json", "Path to the config file (JSON or YAML)")
	root.PersistentFlags().BoolVar(&opts.debug, "debug", false, "Enable debug logging")

	root.AddCommand(newWatchCmd(opts), newApplyCmd(opts), newCheckCmd(opts))
	return root
}

func (o *options) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(o.configPath, o.logger)
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	return cfg, nil
}
