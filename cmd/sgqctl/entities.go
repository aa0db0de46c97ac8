package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/JonMunkholm/sgq/internal/core"
	"github.com/spf13/cobra"
)

func newEntitiesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "entities",
		Short: "List importable entities and their required columns",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := core.NewService(nil, core.Options{})

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "KEY\tLABEL\tDUPLICATES\tREQUIRED")
			for _, e := range svc.Entities() {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.Key, e.Label, e.Policy, strings.Join(e.Required, ", "))
			}
			return tw.Flush()
		},
	}
}
