package api

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/wpblocks/ruleparser/internal/core/rulesets"
	"github.com/wpblocks/ruleparser/internal/types"
)

// toStatus maps domain errors onto gRPC status codes.
// Input and evaluation errors map to INVALID_ARGUMENT, missing rule sets to
// NOT_FOUND, context expiry to DEADLINE_EXCEEDED or CANCELED, and everything
// else (storage) to UNAVAILABLE.
func toStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	var code codes.Code
	switch {
	case errors.Is(err, types.ErrType),
		errors.Is(err, types.ErrNoSuchEvaluator),
		errors.Is(err, types.ErrMalformedRules),
		errors.Is(err, types.ErrMalformedStore),
		errors.Is(err, types.ErrRuleTooDeep),
		errors.Is(err, types.ErrTooManyRules),
		errors.Is(err, types.ErrEmptyOperator),
		errors.Is(err, types.ErrInvalidRuleSetName):
		code = codes.InvalidArgument
	case errors.Is(err, rulesets.ErrNotFound):
		code = codes.NotFound
	case errors.Is(err, context.DeadlineExceeded):
		code = codes.DeadlineExceeded
	case errors.Is(err, context.Canceled):
		code = codes.Canceled
	default:
		code = codes.Unavailable
	}
	return status.Error(code, err.Error())
}
