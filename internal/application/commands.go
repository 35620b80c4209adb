package application

import (
	"time"

	"github.com/bnema/shopvoice/internal/domain"
)

// SetModelCommand updates the fields that are set and leaves the rest as stored.
type SetModelCommand struct {
	ID       domain.ModelID
	Provider *domain.Provider
	Model    *string
	Role     *domain.ModelRole
	Weight   *float64
	Enabled  *bool
	Rosters  []domain.RosterName
	BaseURL  *string
	Timeout  *time.Duration
}

func (c SetModelCommand) apply(model *domain.ModelConfig) {
	if c.Provider != nil {
		model.Provider = *c.Provider
	}
	if c.Model != nil {
		model.Model = *c.Model
	}
	if c.Role != nil {
		model.Role = *c.Role
	}
	if c.Weight != nil {
		model.Weight = *c.Weight
	}
	if c.Enabled != nil {
		model.Enabled = *c.Enabled
	}
	if c.Rosters != nil {
		model.Rosters = append([]domain.RosterName(nil), c.Rosters...)
	}
	if c.BaseURL != nil {
		model.BaseURL = *c.BaseURL
	}
	if c.Timeout != nil {
		model.Timeout = *c.Timeout
	}
}

type SetCredentialCommand struct {
	ID     domain.ModelID
	Ref    string
	Secret string
}
