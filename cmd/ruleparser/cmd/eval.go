package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wpblocks/ruleparser/internal/rules"
)

func newEvalCmd(opts *rootOptions) *cobra.Command {
	var rulesPath, storePath string

	c := &cobra.Command{
		Use:   "eval",
		Short: "Evaluate a rule file against a store file",
		Long: `Evaluate a rule tree against a store and print true or false.
Files ending in .yaml or .yml are read as YAML, everything else as JSON.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tree, err := readRules(rulesPath)
			if err != nil {
				return err
			}
			store, err := readStore(storePath)
			if err != nil {
				return err
			}
			result, err := rules.NewEngine(nil).Evaluate(tree, store)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), result)
			return nil
		},
	}
	c.Flags().StringVar(&rulesPath, "rules", "", "rule tree file (JSON or YAML)")
	c.Flags().StringVar(&storePath, "store", "", "store file (JSON or YAML); empty means no keys")
	_ = c.MarkFlagRequired("rules")
	return c
}
