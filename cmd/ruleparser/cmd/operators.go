package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/wpblocks/ruleparser/internal/rules"
)

func newOperatorsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "operators",
		Short: "List registered operators and their aliases",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "OPERATOR\tALIASES")
			for _, op := range rules.NewEngine(nil).Operators() {
				fmt.Fprintf(w, "%s\t%s\n", op.Name, strings.Join(op.Aliases, " "))
			}
			return w.Flush()
		},
	}
}
