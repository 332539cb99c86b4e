package services

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"

	"google.golang.org/api/googleapi"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ValidationError reports per-field problems with a request. Requests that
// fail validation never reach the vendor API.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return "validation failed"
}

// ModelErrorKind classifies vendor call failures.
type ModelErrorKind string

const (
	ModelErrAuthFailure    ModelErrorKind = "auth_failure"
	ModelErrRateLimited    ModelErrorKind = "rate_limited"
	ModelErrInvalidModel   ModelErrorKind = "invalid_model"
	ModelErrNetworkFailure ModelErrorKind = "network_failure"
	ModelErrUnknown        ModelErrorKind = "unknown"
)

// ModelError wraps whatever the vendor client surfaced into a fixed taxonomy
// so the HTTP boundary can render it without knowing vendor details.
type ModelError struct {
	Kind    ModelErrorKind
	Message string
	Err     error
}

func (e *ModelError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("model error (%s): %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("model error (%s): %s", e.Kind, e.Message)
}

func (e *ModelError) Unwrap() error {
	return e.Err
}

// classifyModelError maps a vendor client error onto the ModelError taxonomy.
// The Gemini SDK surfaces REST errors as *googleapi.Error and gRPC errors as
// status errors; plain transport failures come through net/url.
func classifyModelError(err error) *ModelError {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return &ModelError{Kind: kindFromHTTPStatus(gerr.Code), Err: err}
	}

	if st, ok := status.FromError(err); ok {
		return &ModelError{Kind: kindFromGRPCCode(st.Code()), Err: err}
	}

	var netErr net.Error
	var urlErr *url.Error
	if errors.As(err, &netErr) || errors.As(err, &urlErr) ||
		errors.Is(err, context.DeadlineExceeded) {
		return &ModelError{Kind: ModelErrNetworkFailure, Err: err}
	}

	return &ModelError{Kind: ModelErrUnknown, Err: err}
}

func kindFromHTTPStatus(code int) ModelErrorKind {
	switch code {
	case 401, 403:
		return ModelErrAuthFailure
	case 429:
		return ModelErrRateLimited
	case 400, 404:
		return ModelErrInvalidModel
	case 502, 503, 504:
		return ModelErrNetworkFailure
	default:
		return ModelErrUnknown
	}
}

func kindFromGRPCCode(code codes.Code) ModelErrorKind {
	switch code {
	case codes.Unauthenticated, codes.PermissionDenied:
		return ModelErrAuthFailure
	case codes.ResourceExhausted:
		return ModelErrRateLimited
	case codes.NotFound, codes.InvalidArgument:
		return ModelErrInvalidModel
	case codes.Unavailable, codes.DeadlineExceeded:
		return ModelErrNetworkFailure
	default:
		return ModelErrUnknown
	}
}
