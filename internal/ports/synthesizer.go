package ports

import (
	"context"

	"github.com/bnema/shopvoice/internal/domain"
)

type SynthesisRequest struct {
	Transcript string
	Plan       domain.Plan
	Execution  domain.ExecutionResult
}

type Synthesizer interface {
	Synthesize(ctx context.Context, req SynthesisRequest) (string, error)
}
