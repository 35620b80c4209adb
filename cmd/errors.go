package cmd

import (
	"errors"
	"fmt"

	"github.com/bnema/shopvoice/internal/domain"
)

// guidedError keeps the cause for errors.Is while printing what to do next.
type guidedError struct {
	err      error
	category domain.ErrorCategory
}

func (e guidedError) Error() string {
	return fmt.Sprintf("%v\n%s", e.err, e.category.Guidance())
}

func (e guidedError) Unwrap() error {
	return e.err
}

func withGuidance(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, domain.ErrEmptyTranscript), errors.Is(err, domain.ErrInvalidSnapshot):
		return err
	case errors.Is(err, domain.ErrEmptyRoster):
		return fmt.Errorf("%w: enable a model with `shopvoice models set <id> --enabled`", err)
	}

	return guidedError{err: err, category: domain.ClassifyError(err)}
}
