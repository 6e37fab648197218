package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/TanaroSch/clipboard-anonymizer/internal/engine"
)

// ErrInvalidPairs is returned by check when the pairs file has issues.
var ErrInvalidPairs = errors.New("pairs file has invalid entries")

func newCheckCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate the pairs file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			res, err := engine.LoadPairs(cfg)
			if err != nil {
				return fmt.Errorf("loading pairs: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s: %d pairs\n", res.Path, len(res.Report.Pairs))
			for _, issue := range res.Report.Issues {
				fmt.Fprintln(out, issue.String())
			}
			for _, name := range res.Missing {
				fmt.Fprintf(out, "Unknown secret: {{%s}}\n", name)
			}
			if !res.Report.Valid() {
				return fmt.Errorf("%w: %d issue(s)", ErrInvalidPairs, len(res.Report.Issues))
			}
			fmt.Fprintln(out, "OK")
			return nil
		},
	}
}
