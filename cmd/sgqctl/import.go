package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/JonMunkholm/sgq/internal/core"
	"github.com/jszwec/csvutil"
	"github.com/spf13/cobra"
)

type importOptions struct {
	dryRun   bool
	outcomes string
}

func newImportCmd(global *globalOptions) *cobra.Command {
	var opts importOptions

	cmd := &cobra.Command{
		Use:   "import <entity> <file>",
		Short: "Import a .xlsx or .csv file into an entity",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			entity, path := args[0], args[1]

			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}

			ctx := global.withIdentity(cmd.Context())
			svc, closeStore, err := global.openService(ctx)
			if err != nil {
				return err
			}
			defer closeStore()

			run := svc.Import
			if opts.dryRun {
				run = svc.Preview
			}
			report, err := run(ctx, entity, filepath.Base(path), data)
			if err != nil {
				return fmt.Errorf("%s: %w", core.FormatUserError(err), err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, report.Summary())
			for _, reason := range report.Reasons {
				fmt.Fprintf(out, "  %s\n", reason)
			}
			if report.ReasonsDropped > 0 {
				fmt.Fprintf(out, "  ... and %d more\n", report.ReasonsDropped)
			}

			if opts.outcomes != "" {
				return writeOutcomes(opts.outcomes, report.Outcomes)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "Run every row without writing")
	cmd.Flags().StringVar(&opts.outcomes, "outcomes", "", "Write per-row outcomes to this CSV file")
	return cmd
}

// writeOutcomes dumps one CSV line per input row.
func writeOutcomes(path string, outcomes []core.Outcome) error {
	data, err := csvutil.Marshal(outcomes)
	if err != nil {
		return fmt.Errorf("encode outcomes: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write outcomes: %w", err)
	}
	return nil
}
