package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wpblocks/ruleparser/internal/rules"
)

func newValidateCmd() *cobra.Command {
	var rulesPath string

	c := &cobra.Command{
		Use:   "validate",
		Short: "Check a rule file for grammar, limits and unknown operators",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tree, err := readRules(rulesPath)
			if err != nil {
				return err
			}
			if err := rules.NewEngine(nil).Validate(tree); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ok")
			return nil
		},
	}
	c.Flags().StringVar(&rulesPath, "rules", "", "rule tree file (JSON or YAML)")
	_ = c.MarkFlagRequired("rules")
	return c
}
