package cmd

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"

	"github.com/wpblocks/ruleparser/internal/core/db"
)

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	c := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the rule set database schema",
	}

	c.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := opts.openDB(cmd)
			if err != nil {
				return err
			}
			defer conn.Close()

			if err := db.MigrateUp(conn); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	})

	c.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show applied and pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := opts.openDB(cmd)
			if err != nil {
				return err
			}
			defer conn.Close()

			statuses, err := db.MigrateStatus(conn)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "MIGRATION\tSTATUS\tAPPLIED AT")
			for _, s := range statuses {
				state, at := "pending", ""
				if s.Applied {
					state = "applied"
					if s.AppliedAt != nil {
						at = s.AppliedAt.UTC().Format(time.RFC3339)
					}
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", s.ID, state, at)
			}
			return w.Flush()
		},
	})
	return c
}

// openDB resolves the database URL from flags, environment or config file.
func (o *rootOptions) openDB(cmd *cobra.Command) (*sqlx.DB, error) {
	cfg, err := o.loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	if cfg.Database.URL == "" {
		return nil, fmt.Errorf("--db-url required (or set RP_DATABASE_URL)")
	}
	return db.Open(cfg.Database.URL)
}
