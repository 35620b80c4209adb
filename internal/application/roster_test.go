package application

import (
	"testing"

	"github.com/bnema/shopvoice/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRosterSelectorCritical(t *testing.T) {
	t.Parallel()

	selector := NewRosterSelector(nil)

	tests := []struct {
		name string
		req  domain.CommandRequest
		want bool
	}{
		{name: "browsing", req: domain.CommandRequest{Transcript: "muéstrame las tortas de chocolate"}, want: false},
		{name: "payment keyword", req: domain.CommandRequest{Transcript: "Quiero pagar ahora"}, want: true},
		{name: "keyword prefix", req: domain.CommandRequest{Transcript: "ver mis compras"}, want: true},
		{name: "english checkout", req: domain.CommandRequest{Transcript: "go to Checkout."}, want: true},
		{name: "authenticated flag", req: domain.CommandRequest{Transcript: "ver ofertas", Context: domain.ContextSnapshot{"isAuthenticated": true}}, want: true},
		{name: "flag false", req: domain.CommandRequest{Transcript: "ver ofertas", Context: domain.ContextSnapshot{"isAuthenticated": false}}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, selector.Critical(tt.req))
		})
	}
}

func TestRosterSelectorPhraseKeywords(t *testing.T) {
	t.Parallel()

	selector := NewRosterSelector([]string{"Finalizar pedido"})

	assert.True(t, selector.Critical(domain.CommandRequest{Transcript: "quiero finalizar pedido ya"}))
	assert.False(t, selector.Critical(domain.CommandRequest{Transcript: "finalizar la búsqueda del pedido"}))
}

func TestRosterSelectorSelectFiltersAndOrders(t *testing.T) {
	t.Parallel()

	models := []domain.ModelConfig{
		{ID: "validator", Weight: 0.6, Enabled: true, Rosters: []domain.RosterName{domain.RosterFull}},
		{ID: "refiner", Weight: 0.8, Enabled: true, Rosters: []domain.RosterName{domain.RosterFull}},
		{ID: "primary-b", Weight: 1, Enabled: true, Rosters: []domain.RosterName{domain.RosterFast, domain.RosterFull}},
		{ID: "primary-a", Weight: 1, Enabled: true, Rosters: []domain.RosterName{domain.RosterFast, domain.RosterFull}},
		{ID: "disabled", Weight: 1, Enabled: false, Rosters: []domain.RosterName{domain.RosterFast, domain.RosterFull}},
	}
	selector := NewRosterSelector(nil)

	name, fast := selector.Select(models, domain.CommandRequest{Transcript: "buscar pan"})
	require.Equal(t, domain.RosterFast, name)
	assert.Equal(t, []domain.ModelID{"primary-a", "primary-b"}, modelIDs(fast))

	name, full := selector.Select(models, domain.CommandRequest{Transcript: "pagar con tarjeta"})
	require.Equal(t, domain.RosterFull, name)
	assert.Equal(t, []domain.ModelID{"primary-a", "primary-b", "refiner", "validator"}, modelIDs(full))
}

func modelIDs(models []domain.ModelConfig) []domain.ModelID {
	out := make([]domain.ModelID, 0, len(models))
	for _, model := range models {
		out = append(out, model.ID)
	}
	return out
}
