package application

import (
	"strings"
	"testing"

	"github.com/bnema/shopvoice/internal/domain"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func invocation(id domain.ModelID, weight float64, steps int, feedback string) domain.ModelInvocation {
	plan := domain.Plan{Reasoning: string(id), Feedback: feedback, Steps: make([]domain.Step, 0, steps)}
	for i := 0; i < steps; i++ {
		plan.Steps = append(plan.Steps, domain.NewStep(domain.ToolScroll, map[string]any{"amount": float64(100 * (i + 1))}, ""))
	}
	return domain.ModelInvocation{
		Model:   domain.ModelConfig{ID: id, Weight: weight},
		Success: true,
		Plan:    plan,
	}
}

func TestCombineNoSuccessReturnsFallback(t *testing.T) {
	t.Parallel()

	got := NewCombiner().Combine([]domain.ModelInvocation{
		{Model: domain.ModelConfig{ID: "a"}, Err: assert.AnError},
		{Model: domain.ModelConfig{ID: "b"}, Err: assert.AnError},
	})

	assert.Equal(t, domain.PlanDegraded, got.Result.Status)
	assert.Empty(t, got.Result.Plan.Steps)
	assert.Equal(t, fallbackFeedback, got.Result.Plan.Feedback)
}

func TestCombineSingleSuccessIsVerbatim(t *testing.T) {
	t.Parallel()

	only := invocation("solo", 0.3, 9, "Bajando la página")
	got := NewCombiner().Combine([]domain.ModelInvocation{
		{Model: domain.ModelConfig{ID: "down"}, Err: assert.AnError},
		only,
	})

	assert.Equal(t, domain.PlanOK, got.Result.Status)
	if diff := cmp.Diff(only.Plan, got.Result.Plan); diff != "" {
		t.Fatalf("plan mismatch (-want +got):\n%s", diff)
	}
	assert.True(t, got.Consistent)
}

func TestCombinePicksHeaviestAsPrimary(t *testing.T) {
	t.Parallel()

	got := NewCombiner().Combine([]domain.ModelInvocation{
		invocation("light", 0.2, 2, "uno"),
		invocation("heavy", 0.9, 3, "dos"),
		invocation("mid", 0.5, 2, "tres"),
	})

	assert.Equal(t, "heavy", got.Result.Plan.Reasoning)
	assert.Len(t, got.Result.Plan.Steps, 3)
	assert.Equal(t, "dos", got.Result.Plan.Feedback)
	assert.False(t, got.Consensus)
}

func TestCombineWeightTieBreaksOnModelID(t *testing.T) {
	t.Parallel()

	got := NewCombiner().Combine([]domain.ModelInvocation{
		invocation("zeta", 1, 1, "z"),
		invocation("alpha", 1, 1, "a"),
	})

	assert.Equal(t, "alpha", got.Result.Plan.Reasoning)
}

func TestCombineConsensusOverridesPrimaryFeedback(t *testing.T) {
	t.Parallel()

	got := NewCombiner().Combine([]domain.ModelInvocation{
		invocation("primary", 1, 2, "Buscando tortas"),
		invocation("refiner", 0.8, 2, "Te muestro las tortas"),
		invocation("validator", 0.6, 2, "Te muestro las tortas"),
	})

	assert.True(t, got.Consensus)
	assert.Equal(t, "primary", got.Result.Plan.Reasoning)
	assert.Equal(t, "Te muestro las tortas", got.Result.Plan.Feedback)
}

func TestCombineInconsistentStepCountsAppendCaution(t *testing.T) {
	t.Parallel()

	got := NewCombiner().Combine([]domain.ModelInvocation{
		invocation("a", 1, 2, "Listo"),
		invocation("b", 0.8, 3, "Listo"),
		invocation("c", 0.6, 9, "Listo"),
	})

	assert.False(t, got.Consistent)
	assert.True(t, strings.HasSuffix(got.Result.Plan.Feedback, DefaultCautionSuffix))
	assert.True(t, strings.HasPrefix(got.Result.Plan.Feedback, "Listo"))

	consistent := NewCombiner().Combine([]domain.ModelInvocation{
		invocation("a", 1, 2, "Listo"),
		invocation("b", 0.8, 3, "Listo"),
		invocation("c", 0.6, 4, "Listo"),
	})
	assert.True(t, consistent.Consistent)
	assert.Equal(t, "Listo", consistent.Result.Plan.Feedback)
}

func TestCombineIsIndependentOfInvocationOrder(t *testing.T) {
	t.Parallel()

	invocations := []domain.ModelInvocation{
		invocation("a", 1, 2, "x"),
		invocation("b", 0.8, 3, "y"),
		invocation("c", 0.8, 9, "y"),
		invocation("d", 0.4, 1, "x"),
	}
	permutations := [][]int{{0, 1, 2, 3}, {3, 2, 1, 0}, {2, 0, 3, 1}, {1, 3, 0, 2}}

	want := NewCombiner().Combine(invocations)
	for _, order := range permutations {
		shuffled := make([]domain.ModelInvocation, 0, len(order))
		for _, idx := range order {
			shuffled = append(shuffled, invocations[idx])
		}
		got := NewCombiner().Combine(shuffled)
		require.Empty(t, cmp.Diff(want, got), "order %v", order)
	}
	// "x" and "y" tie at half the votes; the heaviest backend's reply wins.
	assert.True(t, strings.HasPrefix(want.Result.Plan.Feedback, "x"))
}

func TestCombineDegradedPrimaryMarksResultDegraded(t *testing.T) {
	t.Parallel()

	degraded := domain.ModelInvocation{
		Model:         domain.ModelConfig{ID: "primary", Weight: 1},
		Success:       true,
		ParseDegraded: true,
		Plan:          DegradedPlan("no json"),
	}

	got := NewCombiner().Combine([]domain.ModelInvocation{degraded, invocation("backup", 0.5, 0, "ok")})

	assert.True(t, got.Result.Degraded())
	assert.Contains(t, got.Result.Reason, "primary")
}

func TestCombineFeedbackTieKeepsPrimaryReply(t *testing.T) {
	t.Parallel()

	got := NewCombiner().Combine([]domain.ModelInvocation{
		invocation("validator", 0.6, 1, "Buscando torta."),
		invocation("primary", 0.9, 1, "Te muestro las tortas."),
	})

	assert.Equal(t, "primary", got.Result.Plan.Reasoning)
	assert.Equal(t, "Te muestro las tortas.", got.Result.Plan.Feedback)
	assert.True(t, got.Consensus)
}

func TestCombineIgnoresParseDegradedVoter(t *testing.T) {
	t.Parallel()

	validator := domain.ModelInvocation{
		Model:         domain.ModelConfig{ID: "validator", Weight: 0.6},
		Success:       true,
		ParseDegraded: true,
		Plan:          DegradedPlan("no json"),
	}

	got := NewCombiner().Combine([]domain.ModelInvocation{
		invocation("primary", 0.9, 5, "Listo, añadí el pan al carrito."),
		validator,
	})

	assert.Equal(t, domain.PlanOK, got.Result.Status)
	assert.Len(t, got.Result.Plan.Steps, 5)
	assert.Equal(t, "Listo, añadí el pan al carrito.", got.Result.Plan.Feedback)
	assert.True(t, got.Consistent)
}
