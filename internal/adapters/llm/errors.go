package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/bnema/shopvoice/internal/domain"
)

// ContextError wraps the error of a call aborted by its context. Only an expired
// deadline is a backend timeout; a cancelled caller is reported as is.
func ContextError(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w: %w", op, domain.ErrBackendTimeout, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
