package ports

import (
	"context"

	"github.com/bnema/shopvoice/internal/domain"
)

type RosterRepository interface {
	GetByID(ctx context.Context, id domain.ModelID) (domain.ModelConfig, error)
	List(ctx context.Context) ([]domain.ModelConfig, error)
	Save(ctx context.Context, model domain.ModelConfig) error
	Delete(ctx context.Context, id domain.ModelID) error
}
