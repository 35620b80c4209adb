package domain

import (
	"context"
	"errors"
)

var (
	ErrEmptyTranscript    = errors.New("transcript is empty")
	ErrInvalidSnapshot    = errors.New("invalid visual snapshot")
	ErrInvalidPlan        = errors.New("invalid plan")
	ErrEmptyRoster        = errors.New("no enabled model in roster")
	ErrUnknownBackend     = errors.New("unknown model backend")
	ErrModelNotFound      = errors.New("model not found")
	ErrCredentialNotFound = errors.New("credential not found")

	ErrBackendUnauthorized = errors.New("model backend rejected credentials")
	ErrBackendQuota        = errors.New("model backend quota exceeded")
	ErrBackendTimeout      = errors.New("model backend timed out")
)

// ErrorCategory is the small fixed set of user-facing failure classes.
type ErrorCategory string

const (
	ErrorCategoryAuthentication ErrorCategory = "authentication"
	ErrorCategoryQuota          ErrorCategory = "quota"
	ErrorCategoryTimeout        ErrorCategory = "timeout"
	ErrorCategoryGeneric        ErrorCategory = "generic"
)

func ClassifyError(err error) ErrorCategory {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrBackendUnauthorized), errors.Is(err, ErrCredentialNotFound):
		return ErrorCategoryAuthentication
	case errors.Is(err, ErrBackendQuota):
		return ErrorCategoryQuota
	case errors.Is(err, ErrBackendTimeout), errors.Is(err, context.DeadlineExceeded):
		return ErrorCategoryTimeout
	default:
		return ErrorCategoryGeneric
	}
}

// Guidance returns the message shown to the user for the category.
func (c ErrorCategory) Guidance() string {
	switch c {
	case ErrorCategoryAuthentication:
		return "The assistant could not authenticate with its language model. Check the configured credentials."
	case ErrorCategoryQuota:
		return "The assistant is over its usage quota. Wait a few minutes and try again."
	case ErrorCategoryTimeout:
		return "The assistant took too long to respond. Try again, ideally with a shorter command."
	default:
		return "Something went wrong while processing the command. Try again."
	}
}

// Retryable reports whether repeating the same command can reasonably succeed.
func (c ErrorCategory) Retryable() bool {
	return c != ErrorCategoryAuthentication
}
