package api

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "ruleparser.v1.RuleParser"

// Full method names.
const (
	EvaluateMethod        = "/" + ServiceName + "/Evaluate"
	EvaluateRuleSetMethod = "/" + ServiceName + "/EvaluateRuleSet"
	ListOperatorsMethod   = "/" + ServiceName + "/ListOperators"
)

// RuleParserServer is the server API for the RuleParser service.
// Messages are protobuf well-known types so the wire format stays
// JSON-shaped like the rule grammar itself.
type RuleParserServer interface {
	// Evaluate takes {"rules": [...], "store": {...}} and returns {"result": bool}.
	Evaluate(context.Context, *structpb.Struct) (*structpb.Struct, error)
	// EvaluateRuleSet takes {"id"|"name": string, "store": {...}} and returns {"result": bool}.
	EvaluateRuleSet(context.Context, *structpb.Struct) (*structpb.Struct, error)
	// ListOperators returns {"operators": [{"name": string, "aliases": [string]}]}.
	ListOperators(context.Context, *emptypb.Empty) (*structpb.Struct, error)
}

// ServiceDesc describes the RuleParser service for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*RuleParserServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Evaluate", Handler: evaluateHandler},
		{MethodName: "EvaluateRuleSet", Handler: evaluateRuleSetHandler},
		{MethodName: "ListOperators", Handler: listOperatorsHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "ruleparser/v1/ruleparser.proto",
}

// RegisterRuleParserServer registers srv on s.
func RegisterRuleParserServer(s grpc.ServiceRegistrar, srv RuleParserServer) {
	s.RegisterService(&ServiceDesc, srv)
}

func evaluateHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(RuleParserServer).Evaluate(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: EvaluateMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(RuleParserServer).Evaluate(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func evaluateRuleSetHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(RuleParserServer).EvaluateRuleSet(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: EvaluateRuleSetMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(RuleParserServer).EvaluateRuleSet(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func listOperatorsHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(RuleParserServer).ListOperators(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ListOperatorsMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(RuleParserServer).ListOperators(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

// Client calls the RuleParser service over an existing connection.
type Client struct {
	cc grpc.ClientConnInterface
}

// NewClient wraps cc.
func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

// Evaluate calls RuleParser.Evaluate.
func (c *Client) Evaluate(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, EvaluateMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// EvaluateRuleSet calls RuleParser.EvaluateRuleSet.
func (c *Client) EvaluateRuleSet(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, EvaluateRuleSetMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// ListOperators calls RuleParser.ListOperators.
func (c *Client) ListOperators(ctx context.Context, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, ListOperatorsMethod, &emptypb.Empty{}, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
