package ports

import (
	"context"

	"github.com/bnema/shopvoice/internal/domain"
)

type ToolCall struct {
	Step    domain.Step
	Context domain.ContextSnapshot
}

// Actuator performs one step against the live storefront. The returned payload is
// usually a JSON object that may carry a boolean "success" field.
type Actuator interface {
	Actuate(ctx context.Context, call ToolCall) ([]byte, error)
}
