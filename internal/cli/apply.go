package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/TanaroSch/clipboard-anonymizer/internal/engine"
	"github.com/TanaroSch/clipboard-anonymizer/internal/replace"
)

func newApplyCmd(opts *options) *cobra.Command {
	var (
		modeFlag string
		verbose  bool
	)
	cmd := &cobra.Command{
		Use:   "apply [text...]",
		Short: "Apply the pairs to text and print the result",
		Long:  "Substitutes the configured pairs in the arguments, joined by spaces, or in standard input when no arguments are given.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			mode := cfg.ReplacementMode()
			if modeFlag != "" {
				if mode, err = replace.ParseMode(modeFlag); err != nil {
					return err
				}
			}

			var input string
			if len(args) > 0 {
				input = strings.Join(args, " ")
			} else {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("reading input: %w", err)
				}
				input = string(data)
			}

			res, err := engine.LoadPairs(cfg)
			if err != nil {
				return fmt.Errorf("loading pairs: %w", err)
			}
			for _, issue := range res.Report.Issues {
				opts.logger.Warn("Ignoring invalid pair", zap.String("issue", issue.String()))
			}

			out, applied := replace.ApplyReport(input, mode, res.Report.ValidPairs())
			fmt.Fprint(cmd.OutOrStdout(), out)
			if verbose {
				for _, a := range applied {
					fmt.Fprintf(cmd.ErrOrStderr(), "%s: %q -> %q (%d)\n", a.Direction, a.From(), a.To(), a.Count)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&modeFlag, "mode", "m", "", "Replacement mode: ltr, rtl or bidi (default from config)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "List applied replacements on stderr")
	return cmd
}
