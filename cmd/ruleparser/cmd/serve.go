package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wpblocks/ruleparser/internal/core/api"
	"github.com/wpblocks/ruleparser/internal/core/config"
	"github.com/wpblocks/ruleparser/internal/core/db"
	"github.com/wpblocks/ruleparser/internal/core/metrics"
	"github.com/wpblocks/ruleparser/internal/core/rulesets"
	"github.com/wpblocks/ruleparser/internal/core/server"
	"github.com/wpblocks/ruleparser/internal/rules"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	c := &cobra.Command{
		Use:   "serve",
		Short: "Start the gRPC evaluation service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.runServe(cmd)
		},
	}
	c.Flags().String("host", "0.0.0.0", "gRPC server host")
	c.Flags().Int("port", 50061, "gRPC server port")
	c.Flags().String("metrics-addr", "", "host:port for the Prometheus /metrics listener")
	return c
}

func (o *rootOptions) runServe(cmd *cobra.Command) error {
	cfg, err := o.loadConfig(cmd)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("host") {
		cfg.Server.Host, _ = flags.GetString("host")
	}
	if flags.Changed("port") {
		cfg.Server.Port, _ = flags.GetInt("port")
	}
	if flags.Changed("metrics-addr") {
		cfg.Server.MetricsAddr, _ = flags.GetString("metrics-addr")
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}

	log, err := logger(cmd, cfg)
	if err != nil {
		return err
	}

	m := metrics.New()
	serviceOpts := []api.Option{api.WithMetrics(m)}

	if cfg.Database.URL != "" {
		conn, err := db.Open(cfg.Database.URL)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer conn.Close()

		statuses, err := db.MigrateStatus(conn)
		if err != nil {
			return fmt.Errorf("failed to check migrations: %w", err)
		}
		for _, s := range statuses {
			if !s.Applied {
				return fmt.Errorf("migration %s not applied - run 'ruleparser migrate up' first", s.ID)
			}
		}

		repo, err := rulesets.NewRepository(conn)
		if err != nil {
			return err
		}
		serviceOpts = append(serviceOpts, api.WithRuleSets(repo))
	} else {
		log.Info("no database configured; EvaluateRuleSet disabled")
	}

	service, err := api.NewService(rules.NewEngine(nil), log, serviceOpts...)
	if err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}

	grpcServer, err := server.NewGRPCServer(cfg.Server, service, log, m)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.WithField("version", Version).Infof("starting ruleparser on %s", cfg.Server.Addr())
	errChan := make(chan error, 1)
	go func() {
		errChan <- grpcServer.Start(ctx)
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		log.Info("shutting down gracefully")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return grpcServer.Shutdown(shutdownCtx)
	}
}
