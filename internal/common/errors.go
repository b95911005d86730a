package common

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Common application errors
var (
	ErrNotFound     = errors.New("resource not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrInternal     = errors.New("internal error")
	ErrDatabase     = errors.New("database error")
	ErrValidation   = errors.New("validation failed")

	// ErrEmptyExtraction is returned when stage 1 finds no text on the card.
	ErrEmptyExtraction = errors.New("No text detected on card")
	// ErrStructuredOutput is returned when stage 2 output is not a usable object.
	ErrStructuredOutput = errors.New("failed to parse structured output")
)

// ProviderError is a failure reported by a remote model provider. Error()
// returns the provider's own message unchanged so callers can surface it.
type ProviderError struct {
	Provider   string
	Stage      string
	StatusCode int
	Message    string
}

func (e *ProviderError) Error() string {
	return e.Message
}

// NewProviderError builds a ProviderError. A blank message falls back to the
// HTTP status text.
func NewProviderError(provider, stage string, statusCode int, message string) *ProviderError {
	if message == "" {
		message = fmt.Sprintf("%s request failed with status %d", provider, statusCode)
	}
	return &ProviderError{Provider: provider, Stage: stage, StatusCode: statusCode, Message: message}
}

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// gRPC error helpers
func InvalidArgumentError(message string) error {
	return status.Error(codes.InvalidArgument, message)
}

func NotFoundError(message string) error {
	return status.Error(codes.NotFound, message)
}

func InternalError(message string) error {
	return status.Error(codes.Internal, message)
}

func InvalidArgumentErrorf(format string, args ...any) error {
	return InvalidArgumentError(fmt.Sprintf(format, args...))
}

func InternalErrorf(format string, args ...any) error {
	return InternalError(fmt.Sprintf(format, args...))
}

// ToStatus maps a domain error onto a gRPC status error. Errors that already
// carry a status are returned as is.
func ToStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	var pe *ProviderError
	switch {
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrValidation):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, ErrEmptyExtraction):
		return status.Error(codes.FailedPrecondition, ErrEmptyExtraction.Error())
	case errors.Is(err, ErrStructuredOutput):
		return status.Error(codes.Internal, ErrStructuredOutput.Error())
	case errors.As(err, &pe):
		return status.Error(codes.Unavailable, pe.Message)
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
