package ports

import (
	"context"

	"github.com/bnema/shopvoice/internal/domain"
)

type CompletionRequest struct {
	Instructions string
	History      []domain.Message
	Transcript   string
	Context      domain.ContextSnapshot
	Snapshot     *domain.VisualSnapshot
}

// ModelBackend returns raw model text which is expected, but not guaranteed, to
// contain a JSON plan.
type ModelBackend interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}
