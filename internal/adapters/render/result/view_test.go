package result

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/bnema/shopvoice/internal/application"
	"github.com/bnema/shopvoice/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderShowsFeedbackStepsAndEnsemble(t *testing.T) {
	t.Parallel()

	result := domain.InterpretResult{
		UserFeedback: "Agregué pan al carrito",
		Reasoning:    "user wants bread",
		Success:      false,
		Execution: domain.ExecutionResult{
			TotalSteps:     2,
			StepsCompleted: 1,
			StepsFailed:    1,
			Trace: []domain.StepTrace{
				{Tool: "search", Params: map[string]any{"query": "pan"}, Outcome: domain.OutcomeSuccess, Success: true, Attempts: 1},
				{Tool: "addToCart", Params: map[string]any{"productId": "p-1", "quantity": 2}, Outcome: domain.OutcomeFailure, Attempts: 3, Error: "out of stock"},
			},
		},
		Ensemble: domain.EnsembleMeta{
			Roster:    domain.RosterFull,
			Backends:  []domain.ModelID{"a", "b", "c"},
			Succeeded: 2,
			Slowest:   1500 * time.Millisecond,
		},
	}

	out, err := Render(result, RenderOptions{})
	require.NoError(t, err)

	assert.Contains(t, out, "Agregué pan al carrito")
	assert.Contains(t, out, "1/2 steps")
	assert.Contains(t, out, "1. search query=pan")
	assert.Contains(t, out, "2. addToCart productId=p-1 quantity=2")
	assert.Contains(t, out, "(3 attempts)")
	assert.Contains(t, out, "out of stock")
	assert.Contains(t, out, "roster: full")
	assert.Contains(t, out, "models: 2/3")
	assert.Contains(t, out, "slowest: 1.5s")
	assert.Contains(t, out, "inconsistent")
	assert.NotContains(t, out, "reasoning:")
}

func TestRenderVerboseIncludesReasoningAndOutput(t *testing.T) {
	t.Parallel()

	result := domain.InterpretResult{
		UserFeedback: "Bajando",
		Reasoning:    "scroll requested",
		Execution: domain.ExecutionResult{
			TotalSteps:     1,
			StepsCompleted: 1,
			OverallSuccess: true,
			Trace: []domain.StepTrace{{
				Tool:     "scroll",
				Outcome:  domain.OutcomeUnknown,
				Success:  true,
				Attempts: 1,
				Output:   json.RawMessage(`"done"`),
			}},
		},
		Cached: true,
	}

	out, err := Render(result, RenderOptions{Verbose: true})
	require.NoError(t, err)

	assert.Contains(t, out, "reasoning: scroll requested")
	assert.Contains(t, out, "?? 1. scroll")
	assert.Contains(t, out, `"done"`)
	assert.Contains(t, out, "cached")
	assert.Contains(t, out, "roster: n/a")
}

func TestRenderDegradedShowsGuidance(t *testing.T) {
	t.Parallel()

	result := domain.InterpretResult{
		UserFeedback:   "No pude entender el comando",
		Degraded:       true,
		DegradedReason: "no model produced a plan",
		ErrorCategory:  domain.ErrorCategoryQuota,
		Ensemble:       domain.EnsembleMeta{Roster: domain.RosterFast, Backends: []domain.ModelID{"a"}},
	}

	out, err := Render(result, RenderOptions{})
	require.NoError(t, err)

	assert.Contains(t, out, "degraded: no model produced a plan")
	assert.Contains(t, out, domain.ErrorCategoryQuota.Guidance())
	assert.Contains(t, out, "models: 0/1")
	assert.NotContains(t, out, "steps")
}

func TestRenderModels(t *testing.T) {
	t.Parallel()

	out, err := RenderModels([]application.ModelStatus{
		{
			Model: domain.ModelConfig{
				ID: "gpt-4o-mini", Provider: domain.ProviderOpenAI, Role: domain.RolePrimary, Weight: 1, Enabled: true,
				Rosters: []domain.RosterName{domain.RosterFast, domain.RosterFull}, CredentialRef: "openai",
			},
			HasCredential: true,
		},
		{
			Model: domain.ModelConfig{
				ID: "flash", Provider: domain.ProviderGemini, Model: "gemini-2.0-flash", Role: domain.RoleRefiner, Weight: 0.8, Enabled: true,
				Rosters: []domain.RosterName{domain.RosterFull}, CredentialRef: "gemini",
			},
		},
		{
			Model: domain.ModelConfig{
				ID: "canned", Provider: domain.ProviderScripted, Role: domain.RoleValidator, Weight: 0.5,
				Rosters: []domain.RosterName{domain.RosterFull},
			},
		},
	})
	require.NoError(t, err)

	assert.Contains(t, out, "models: 3")
	assert.Contains(t, out, "gpt-4o-mini")
	assert.Contains(t, out, "(openai, primary)")
	assert.Contains(t, out, "weight 1.00 | rosters fast,full | credential set")
	assert.Contains(t, out, "model gemini-2.0-flash")
	assert.Contains(t, out, "credential missing")
	assert.Contains(t, out, "[no key]")
	assert.Contains(t, out, "credential n/a")
	assert.Contains(t, out, "disabled")
}

func TestRenderModelsEmpty(t *testing.T) {
	t.Parallel()

	out, err := RenderModels(nil)
	require.NoError(t, err)
	assert.Contains(t, out, "No models configured.")
}

func TestRenderProgressBarClamps(t *testing.T) {
	t.Parallel()

	s := newStyles()
	assert.Contains(t, renderProgressBar(150, 4, s), "====")
	assert.Contains(t, renderProgressBar(-5, 4, s), "----")
	assert.Empty(t, renderProgressBar(50, 0, s))
	assert.Equal(t, 100.0, clampPercent(101))
	assert.Equal(t, 0.0, clampPercent(-1))
}
