// Package cmd implements the ruleparser command line.
package cmd

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/wpblocks/ruleparser/internal/core/config"
	"github.com/wpblocks/ruleparser/internal/logging"
)

// Version is the CLI release version.
const Version = "0.1.0"

// rootOptions holds the persistent flags shared by every subcommand.
type rootOptions struct {
	configFile string
	dbURL      string
	logLevel   string
	logFormat  string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "ruleparser",
		Short:         "Evaluate ALL/ANY rule trees against key/value stores",
		Long:          `ruleparser evaluates nested [key, operator, target] rule trees against a flat store and reduces them to a single boolean.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&opts.configFile, "config", "", "config file path")
	root.PersistentFlags().StringVar(&opts.dbURL, "db-url", "", "database connection URL (sqlite://path or postgres://...)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&opts.logFormat, "log-format", "json", "log format (json, text)")

	root.AddCommand(
		newEvalCmd(opts),
		newValidateCmd(),
		newOperatorsCmd(),
		newMigrateCmd(opts),
		newRuleSetCmd(opts),
		newServeCmd(opts),
	)
	return root
}

// Execute runs the root command and reports a failure on stderr.
func Execute() error {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(root.ErrOrStderr(), "Error:", err)
		return err
	}
	return nil
}

// loadConfig loads the config file and environment, then applies persistent
// flags the user set explicitly.
func (o *rootOptions) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.LoadConfig(o.configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("db-url") {
		cfg.Database.URL = o.dbURL
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = o.logLevel
	}
	if flags.Changed("log-format") {
		cfg.Log.Format = o.logFormat
	}

	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// logger builds the logger for cfg writing to the command's stderr.
func logger(cmd *cobra.Command, cfg *config.Config) (*logrus.Logger, error) {
	return logging.NewWithWriter(cfg.Log.Level, cfg.Log.Format, cmd.ErrOrStderr())
}
