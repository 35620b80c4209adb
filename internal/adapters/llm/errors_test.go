package llm

import (
	"context"
	"testing"

	"github.com/bnema/shopvoice/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestContextError(t *testing.T) {
	t.Parallel()

	timeout := ContextError("openai request", context.DeadlineExceeded)
	assert.ErrorIs(t, timeout, domain.ErrBackendTimeout)
	assert.Equal(t, domain.ErrorCategoryTimeout, domain.ClassifyError(timeout))

	cancelled := ContextError("openai request", context.Canceled)
	assert.ErrorIs(t, cancelled, context.Canceled)
	assert.NotErrorIs(t, cancelled, domain.ErrBackendTimeout)
	assert.Equal(t, domain.ErrorCategoryGeneric, domain.ClassifyError(cancelled))
}
