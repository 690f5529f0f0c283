// Package api implements the RuleParser gRPC service.
package api

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/wpblocks/ruleparser/internal/core/metrics"
	"github.com/wpblocks/ruleparser/internal/core/rulesets"
	"github.com/wpblocks/ruleparser/internal/rules"
	"github.com/wpblocks/ruleparser/internal/types"
)

// RuleSetStore is the read side of rule set persistence used by the service.
type RuleSetStore interface {
	Get(ctx context.Context, id types.RuleSetID) (*rulesets.RuleSet, error)
	GetByName(ctx context.Context, name string) (*rulesets.RuleSet, error)
}

// Service implements RuleParserServer.
// Thin orchestration layer delegating to the engine and rule set storage.
type Service struct {
	engine  *rules.Engine
	store   RuleSetStore
	metrics *metrics.Metrics
	log     logrus.FieldLogger
}

// Option configures optional Service dependencies.
type Option func(*Service)

// WithRuleSets enables EvaluateRuleSet.
func WithRuleSets(store RuleSetStore) Option {
	return func(s *Service) { s.store = store }
}

// WithMetrics records evaluation outcomes.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// NewService creates the service. engine and log are required.
func NewService(engine *rules.Engine, log logrus.FieldLogger, opts ...Option) (*Service, error) {
	if engine == nil {
		return nil, fmt.Errorf("engine cannot be nil")
	}
	if log == nil {
		return nil, fmt.Errorf("log cannot be nil")
	}
	s := &Service{engine: engine, log: log}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Evaluate decodes rules and store from the request and evaluates them.
func (s *Service) Evaluate(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if err := ctx.Err(); err != nil {
		return nil, toStatus(err)
	}
	fields := req.AsMap()
	rawRules, ok := fields["rules"]
	if !ok {
		return nil, status.Error(codes.InvalidArgument, `missing "rules"`)
	}

	tree, err := rules.DecodeRulesValue(rawRules)
	if err != nil {
		return nil, toStatus(err)
	}
	store, err := rules.DecodeStoreValue(fields["store"])
	if err != nil {
		return nil, toStatus(err)
	}
	return s.evaluate(tree, store, logrus.Fields{"leaves": countLeaves(tree)})
}

// EvaluateRuleSet evaluates a stored rule set selected by "id" or "name".
func (s *Service) EvaluateRuleSet(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if s.store == nil {
		return nil, status.Error(codes.FailedPrecondition, "rule set storage is not configured")
	}
	fields := req.AsMap()
	id, _ := fields["id"].(string)
	name, _ := fields["name"].(string)
	id, name = strings.TrimSpace(id), strings.TrimSpace(name)

	var (
		rs  *rulesets.RuleSet
		err error
	)
	switch {
	case id != "":
		rs, err = s.store.Get(ctx, types.RuleSetID(id))
	case name != "":
		rs, err = s.store.GetByName(ctx, name)
	default:
		return nil, status.Error(codes.InvalidArgument, `one of "id" or "name" is required`)
	}
	if err != nil {
		if !errors.Is(err, rulesets.ErrNotFound) {
			s.log.WithError(err).Warn("rule set lookup failed")
		}
		return nil, toStatus(err)
	}

	store, err := rules.DecodeStoreValue(fields["store"])
	if err != nil {
		return nil, toStatus(err)
	}
	if err := ctx.Err(); err != nil {
		return nil, toStatus(err)
	}
	return s.evaluate(rs.Rules, store, logrus.Fields{"rule_set_id": rs.ID, "rule_set": rs.Name})
}

// ListOperators reports registered operators and their aliases.
func (s *Service) ListOperators(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	infos := s.engine.Operators()
	ops := make([]any, 0, len(infos))
	for _, info := range infos {
		aliases := make([]any, 0, len(info.Aliases))
		for _, a := range info.Aliases {
			aliases = append(aliases, a)
		}
		ops = append(ops, map[string]any{"name": info.Name, "aliases": aliases})
	}
	resp, err := structpb.NewStruct(map[string]any{"operators": ops})
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return resp, nil
}

func (s *Service) evaluate(tree types.Group[types.RawRule], store types.Store, fields logrus.Fields) (*structpb.Struct, error) {
	start := time.Now()
	result, err := s.engine.Evaluate(tree, store)
	elapsed := time.Since(start)
	if s.metrics != nil {
		s.metrics.ObserveEvaluation(result, err, elapsed)
	}

	entry := s.log.WithFields(fields).WithField("elapsed", elapsed)
	if err != nil {
		entry.WithError(err).Debug("evaluation failed")
		return nil, toStatus(err)
	}
	entry.WithField("result", result).Debug("evaluated")

	resp, err := structpb.NewStruct(map[string]any{"result": result})
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return resp, nil
}

func countLeaves(g types.Group[types.RawRule]) int {
	n := 0
	for _, node := range g.Nodes {
		if node.Group != nil {
			n += countLeaves(*node.Group)
		} else if node.Rule != nil {
			n++
		}
	}
	return n
}
