package application

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/bnema/shopvoice/internal/domain"
	"github.com/bnema/shopvoice/internal/ports"
	"github.com/bnema/shopvoice/internal/ports/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type backendFunc func(ctx context.Context, req ports.CompletionRequest) (string, error)

func (f backendFunc) Complete(ctx context.Context, req ports.CompletionRequest) (string, error) {
	return f(ctx, req)
}

func planJSON(steps int, feedback string) string {
	out := `{"reasoning":"test","steps":[`
	for i := 0; i < steps; i++ {
		if i > 0 {
			out += ","
		}
		out += fmt.Sprintf(`{"tool":"scroll","params":{"amount":%d}}`, 100*(i+1))
	}
	return out + fmt.Sprintf(`],"userFeedback":%q}`, feedback)
}

func rosterOf(ids ...domain.ModelID) []domain.ModelConfig {
	out := make([]domain.ModelConfig, 0, len(ids))
	weight := 1.0
	for _, id := range ids {
		out = append(out, domain.ModelConfig{ID: id, Weight: weight, Enabled: true, Rosters: []domain.RosterName{domain.RosterFast, domain.RosterFull}})
		weight -= 0.2
	}
	return out
}

func TestCoordinatorToleratesFailingAndSlowBackends(t *testing.T) {
	t.Parallel()

	backends := map[domain.ModelID]ports.ModelBackend{
		"ok": backendFunc(func(context.Context, ports.CompletionRequest) (string, error) {
			return planJSON(1, "Listo"), nil
		}),
		"broken": backendFunc(func(context.Context, ports.CompletionRequest) (string, error) {
			return "", errors.New("connection refused")
		}),
		"slow": backendFunc(func(ctx context.Context, _ ports.CompletionRequest) (string, error) {
			<-ctx.Done()
			return "", ctx.Err()
		}),
	}
	coordinator := NewCoordinator(backends, CoordinatorOptions{InvocationTimeout: 50 * time.Millisecond})

	out, err := coordinator.Run(context.Background(), EnsembleInput{
		Request:    domain.CommandRequest{Transcript: "bajar"},
		RosterName: domain.RosterFull,
		Roster:     rosterOf("slow", "broken", "ok"),
	})
	require.NoError(t, err)

	assert.Equal(t, domain.PlanOK, out.Result.Status)
	assert.Equal(t, "Listo", out.Result.Plan.Feedback)
	assert.Equal(t, 1, out.Meta.Succeeded)
	assert.InDelta(t, 1.0/3.0, out.Meta.SuccessRatio, 0.0001)
	assert.Equal(t, []domain.ModelID{"slow", "broken", "ok"}, out.Meta.Backends)
	assert.GreaterOrEqual(t, out.Meta.Slowest, 50*time.Millisecond)

	require.Len(t, out.Invocations, 3)
	assert.ErrorIs(t, out.Invocations[0].Err, domain.ErrBackendTimeout)
	assert.ErrorContains(t, out.Invocations[1].Err, "connection refused")
	assert.True(t, out.Invocations[2].Success)
}

func TestCoordinatorAllBackendsFailYieldsFallback(t *testing.T) {
	t.Parallel()

	failing := backendFunc(func(context.Context, ports.CompletionRequest) (string, error) {
		return "", domain.ErrBackendQuota
	})
	coordinator := NewCoordinator(map[domain.ModelID]ports.ModelBackend{"a": failing, "b": failing}, CoordinatorOptions{})

	out, err := coordinator.Run(context.Background(), EnsembleInput{
		Request: domain.CommandRequest{Transcript: "hola"},
		Roster:  rosterOf("a", "b"),
	})
	require.NoError(t, err)

	assert.True(t, out.Result.Degraded())
	assert.Empty(t, out.Result.Plan.Steps)
	assert.Equal(t, fallbackFeedback, out.Result.Plan.Feedback)
	assert.Zero(t, out.Meta.Succeeded)
	assert.Zero(t, out.Meta.SuccessRatio)
}

func TestCoordinatorInvokesBackendsConcurrently(t *testing.T) {
	t.Parallel()

	const n = 3
	var started sync.WaitGroup
	started.Add(n)
	release := make(chan struct{})
	go func() {
		started.Wait()
		close(release)
	}()

	barrier := backendFunc(func(ctx context.Context, _ ports.CompletionRequest) (string, error) {
		started.Done()
		select {
		case <-release:
			return planJSON(1, "ok"), nil
		case <-ctx.Done():
			return "", ctx.Err()
		}
	})
	backends := map[domain.ModelID]ports.ModelBackend{"a": barrier, "b": barrier, "c": barrier}
	coordinator := NewCoordinator(backends, CoordinatorOptions{InvocationTimeout: 2 * time.Second})

	out, err := coordinator.Run(context.Background(), EnsembleInput{
		Request: domain.CommandRequest{Transcript: "ok"},
		Roster:  rosterOf("a", "b", "c"),
	})
	require.NoError(t, err)
	assert.Equal(t, n, out.Meta.Succeeded)
}

func TestCoordinatorUnparsableOutputIsDegradedSuccess(t *testing.T) {
	t.Parallel()

	backend := mocks.NewMockModelBackend(t)
	backend.EXPECT().Complete(mock.Anything, mock.Anything).Return("Sure! I'll open the cart for you.", nil).Once()

	coordinator := NewCoordinator(map[domain.ModelID]ports.ModelBackend{"chatty": backend}, CoordinatorOptions{})
	out, err := coordinator.Run(context.Background(), EnsembleInput{
		Request: domain.CommandRequest{Transcript: "abre el carrito"},
		Roster:  rosterOf("chatty"),
	})
	require.NoError(t, err)

	assert.Equal(t, 1, out.Meta.Succeeded)
	assert.True(t, out.Invocations[0].ParseDegraded)
	assert.True(t, out.Result.Degraded())
	assert.Equal(t, degradedFeedback, out.Result.Plan.Feedback)
	assert.Empty(t, out.Result.Plan.Steps)
}

func TestCoordinatorPassesRequestToBackends(t *testing.T) {
	t.Parallel()

	history := []domain.Message{{Role: domain.MessageRoleUser, Text: "hola"}}
	snapshot := &domain.VisualSnapshot{MIMEType: "image/png", Data: []byte{1}}

	backend := mocks.NewMockModelBackend(t)
	backend.EXPECT().Complete(mock.Anything, mock.Anything).
		Run(func(_ context.Context, req ports.CompletionRequest) {
			assert.Equal(t, "instr", req.Instructions)
			assert.Equal(t, "qué es esto", req.Transcript)
			assert.Equal(t, history, req.History)
			assert.Equal(t, "/producto/7", req.Context.String("route"))
			assert.Same(t, snapshot, req.Snapshot)
		}).
		Return(planJSON(0, "Es una torta"), nil)

	coordinator := NewCoordinator(map[domain.ModelID]ports.ModelBackend{"vision": backend}, CoordinatorOptions{})
	_, err := coordinator.Run(context.Background(), EnsembleInput{
		Instructions: "instr",
		Request: domain.CommandRequest{
			Transcript: "qué es esto",
			Context:    domain.ContextSnapshot{"route": "/producto/7"},
			Snapshot:   snapshot,
		},
		History: history,
		Roster:  rosterOf("vision"),
	})
	require.NoError(t, err)
}

func TestCoordinatorUnknownBackendAndEmptyRoster(t *testing.T) {
	t.Parallel()

	coordinator := NewCoordinator(map[domain.ModelID]ports.ModelBackend{}, CoordinatorOptions{})

	_, err := coordinator.Run(context.Background(), EnsembleInput{Request: domain.CommandRequest{Transcript: "x"}})
	require.ErrorIs(t, err, domain.ErrEmptyRoster)

	out, err := coordinator.Run(context.Background(), EnsembleInput{
		Request: domain.CommandRequest{Transcript: "x"},
		Roster:  rosterOf("ghost"),
	})
	require.NoError(t, err)
	require.Len(t, out.Invocations, 1)
	assert.ErrorIs(t, out.Invocations[0].Err, domain.ErrUnknownBackend)
	assert.True(t, out.Result.Degraded())
}

func TestCoordinatorPerModelTimeoutOverridesDefault(t *testing.T) {
	t.Parallel()

	blocking := backendFunc(func(ctx context.Context, _ ports.CompletionRequest) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})
	coordinator := NewCoordinator(map[domain.ModelID]ports.ModelBackend{"tight": blocking}, CoordinatorOptions{InvocationTimeout: time.Minute})

	roster := rosterOf("tight")
	roster[0].Timeout = 20 * time.Millisecond

	start := time.Now()
	out, err := coordinator.Run(context.Background(), EnsembleInput{Request: domain.CommandRequest{Transcript: "x"}, Roster: roster})
	require.NoError(t, err)
	assert.Less(t, time.Since(start), 5*time.Second)
	assert.ErrorIs(t, out.Invocations[0].Err, domain.ErrBackendTimeout)
	assert.Equal(t, domain.ErrorCategoryTimeout, domain.ClassifyError(out.Invocations[0].Err))
}
