// Package server provides gRPC server lifecycle management.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"path"
	"time"

	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"

	"github.com/wpblocks/ruleparser/internal/core/api"
	"github.com/wpblocks/ruleparser/internal/core/config"
	"github.com/wpblocks/ruleparser/internal/core/metrics"
)

// GRPCServer manages gRPC server lifecycle and the optional metrics listener.
type GRPCServer struct {
	server   *grpc.Server
	health   *health.Server
	listener net.Listener
	metrics  *http.Server
	config   config.ServerConfig
	log      logrus.FieldLogger
}

// NewGRPCServer creates the gRPC server with logging, metrics and timeout
// interceptors and registers the RuleParser and health services.
// m may be nil, in which case no metrics are recorded or served.
func NewGRPCServer(cfg config.ServerConfig, service api.RuleParserServer, log logrus.FieldLogger, m *metrics.Metrics) (*GRPCServer, error) {
	if service == nil {
		return nil, fmt.Errorf("service cannot be nil")
	}
	if log == nil {
		return nil, fmt.Errorf("log cannot be nil")
	}

	interceptors := []grpc.UnaryServerInterceptor{loggingInterceptor(log)}
	if m != nil {
		interceptors = append(interceptors, m.UnaryServerInterceptor())
	}
	interceptors = append(interceptors, timeoutInterceptor(cfg.RequestTimeout))

	opts := []grpc.ServerOption{
		grpc.ChainUnaryInterceptor(interceptors...),
	}
	if cfg.MaxRequestBytes > 0 {
		opts = append(opts, grpc.MaxRecvMsgSize(cfg.MaxRequestBytes))
	}

	server := grpc.NewServer(opts...)
	api.RegisterRuleParserServer(server, service)

	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(server, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(api.ServiceName, grpc_health_v1.HealthCheckResponse_SERVING)

	s := &GRPCServer{
		server: server,
		health: healthServer,
		config: cfg,
		log:    log,
	}
	if m != nil && cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", m.Handler())
		s.metrics = &http.Server{
			Addr:              cfg.MetricsAddr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
	}
	return s, nil
}

// Start binds the configured address and serves until Shutdown is called.
func (s *GRPCServer) Start(ctx context.Context) error {
	addr := s.config.Addr()
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to bind %s: %w", addr, err)
	}
	return s.Serve(ctx, listener)
}

// Serve serves gRPC requests on listener. The metrics listener, when
// configured, runs alongside it.
// Context is provided for API consistency but Serve blocks until Shutdown is called.
func (s *GRPCServer) Serve(ctx context.Context, listener net.Listener) error {
	s.listener = listener
	if s.metrics != nil {
		go func() {
			if err := s.metrics.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				s.log.WithError(err).Error("metrics listener stopped")
			}
		}()
		s.log.WithField("addr", s.metrics.Addr).Info("serving metrics")
	}
	s.log.WithField("addr", listener.Addr().String()).Info("serving gRPC")
	return s.server.Serve(listener)
}

// Shutdown gracefully stops the server, forcing a stop after ShutdownTimeout
// or when ctx is cancelled.
func (s *GRPCServer) Shutdown(ctx context.Context) error {
	s.health.Shutdown()
	if s.metrics != nil {
		if err := s.metrics.Shutdown(ctx); err != nil {
			s.log.WithError(err).Warn("metrics listener shutdown")
		}
	}

	stopped := make(chan struct{})
	go func() {
		s.server.GracefulStop()
		close(stopped)
	}()

	timeout := s.config.ShutdownTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-stopped:
		return nil
	case <-ctx.Done():
		s.server.Stop()
		return fmt.Errorf("shutdown cancelled by context: %w", ctx.Err())
	case <-timer.C:
		s.server.Stop()
		return fmt.Errorf("graceful shutdown timeout, forced stop")
	}
}

// loggingInterceptor logs one line per request with method, code and latency.
func loggingInterceptor(log logrus.FieldLogger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		st, _ := status.FromError(err)
		entry := log.WithFields(logrus.Fields{
			"method":   path.Base(info.FullMethod),
			"code":     st.Code().String(),
			"duration": time.Since(start),
		})
		if err != nil {
			entry.WithField("error", st.Message()).Info("request failed")
		} else {
			entry.Info("request")
		}
		return resp, err
	}
}

// timeoutInterceptor bounds every request by d. Zero disables the bound.
func timeoutInterceptor(d time.Duration) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if d <= 0 {
			return handler(ctx, req)
		}
		ctx, cancel := context.WithTimeout(ctx, d)
		defer cancel()
		return handler(ctx, req)
	}
}
