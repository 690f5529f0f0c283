// Package metrics provides Prometheus instrumentation for the ruleparser server.
//
// Collectors live in a dedicated registry so /metrics carries only
// ruleparser series.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"path"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"

	"github.com/wpblocks/ruleparser/internal/types"
)

// Evaluation outcome labels.
const (
	OutcomeTrue  = "true"
	OutcomeFalse = "false"
	OutcomeError = "error"
)

// Error kind labels.
const (
	KindType      = "type"
	KindOperator  = "operator"
	KindMalformed = "malformed"
	KindLimit     = "limit"
	KindOther     = "other"
)

// Metrics holds the collectors used by the evaluation service.
type Metrics struct {
	Registry *prometheus.Registry

	EvaluationsTotal    *prometheus.CounterVec
	EvaluationErrors    *prometheus.CounterVec
	EvaluationDuration  prometheus.Histogram
	GRPCRequestsTotal   *prometheus.CounterVec
	GRPCRequestDuration *prometheus.HistogramVec
}

// New creates and registers all collectors in a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		Registry: reg,

		EvaluationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ruleparser_evaluations_total",
			Help: "Total number of rule tree evaluations by outcome.",
		}, []string{"outcome"}),

		EvaluationErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ruleparser_evaluation_errors_total",
			Help: "Total number of failed evaluations by error kind.",
		}, []string{"kind"}),

		EvaluationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "ruleparser_evaluation_duration_seconds",
			Help:    "Rule tree evaluation latency in seconds.",
			Buckets: []float64{.00001, .00005, .0001, .0005, .001, .005, .01, .05, .1},
		}),

		GRPCRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ruleparser_grpc_requests_total",
			Help: "Total number of gRPC requests.",
		}, []string{"method", "status"}),

		GRPCRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ruleparser_grpc_request_duration_seconds",
			Help:    "gRPC request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "status"}),
	}

	reg.MustRegister(
		m.EvaluationsTotal,
		m.EvaluationErrors,
		m.EvaluationDuration,
		m.GRPCRequestsTotal,
		m.GRPCRequestDuration,
	)

	return m
}

// Handler returns an [http.Handler] that serves Prometheus metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

// UnaryServerInterceptor records request count and latency per method.
func (m *Metrics) UnaryServerInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		method := path.Base(info.FullMethod)
		st, _ := status.FromError(err)
		code := st.Code().String()
		m.GRPCRequestsTotal.WithLabelValues(method, code).Inc()
		m.GRPCRequestDuration.WithLabelValues(method, code).Observe(time.Since(start).Seconds())
		return resp, err
	}
}

// ObserveEvaluation records one evaluation: its outcome, its duration, and on
// failure the error kind.
func (m *Metrics) ObserveEvaluation(result bool, err error, elapsed time.Duration) {
	m.EvaluationDuration.Observe(elapsed.Seconds())
	if err != nil {
		m.EvaluationsTotal.WithLabelValues(OutcomeError).Inc()
		m.EvaluationErrors.WithLabelValues(ErrorKind(err)).Inc()
		return
	}
	m.EvaluationsTotal.WithLabelValues(strconv.FormatBool(result)).Inc()
}

// ErrorKind classifies an evaluation error into a bounded label value.
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, types.ErrType):
		return KindType
	case errors.Is(err, types.ErrNoSuchEvaluator), errors.Is(err, types.ErrEmptyOperator):
		return KindOperator
	case errors.Is(err, types.ErrMalformedRules), errors.Is(err, types.ErrMalformedStore):
		return KindMalformed
	case errors.Is(err, types.ErrRuleTooDeep), errors.Is(err, types.ErrTooManyRules):
		return KindLimit
	default:
		return KindOther
	}
}
