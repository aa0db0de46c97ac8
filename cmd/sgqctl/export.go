package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newExportCmd(global *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "export <entity|all> <out.xlsx>",
		Short: "Export an entity, or every entity, to a workbook",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			entity, path := args[0], args[1]

			ctx := global.withIdentity(cmd.Context())
			svc, closeStore, err := global.openService(ctx)
			if err != nil {
				return err
			}
			defer closeStore()

			var data []byte
			if entity == "all" {
				data, err = svc.ExportAll(ctx)
			} else {
				data, err = svc.Export(ctx, entity)
			}
			if err != nil {
				return err
			}

			if err := os.WriteFile(path, data, 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d bytes)\n", path, len(data))
			return nil
		},
	}
}
