package scripted

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bnema/shopvoice/internal/application"
	"github.com/bnema/shopvoice/internal/domain"
	"github.com/bnema/shopvoice/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testScript = `
default: '{"steps": [], "userFeedback": "default"}'
responses:
  - match: "Ver CARRITO!"
    reply: '{"steps": [{"tool": "navigate", "params": {"path": "/cart"}}], "userFeedback": "cart"}'
  - match: sin permiso
    error: unauthorized
  - match: lento
    delay: 1h
    reply: never
  - match: roto
    error: disk on fire
`

func TestCompleteMatchesNormalizedTranscript(t *testing.T) {
	t.Parallel()

	script, err := Parse([]byte(testScript))
	require.NoError(t, err)
	backend := New(script)

	out, err := backend.Complete(context.Background(), ports.CompletionRequest{Transcript: "quiero ver carrito, por favor"})
	require.NoError(t, err)
	assert.Contains(t, out, `"userFeedback": "cart"`)

	out, err = backend.Complete(context.Background(), ports.CompletionRequest{Transcript: "otra cosa"})
	require.NoError(t, err)
	assert.Contains(t, out, "default")
}

func TestCompleteSimulatesFailures(t *testing.T) {
	t.Parallel()

	script, err := Parse([]byte(testScript))
	require.NoError(t, err)
	backend := New(script)

	_, err = backend.Complete(context.Background(), ports.CompletionRequest{Transcript: "sin permiso"})
	assert.ErrorIs(t, err, domain.ErrBackendUnauthorized)

	_, err = backend.Complete(context.Background(), ports.CompletionRequest{Transcript: "está roto"})
	assert.ErrorIs(t, err, ErrScriptedFailure)
	assert.Contains(t, err.Error(), "disk on fire")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = backend.Complete(ctx, ports.CompletionRequest{Transcript: "muy lento"})
	assert.ErrorIs(t, err, domain.ErrBackendTimeout)
}

func TestParseRejectsEmptyMatch(t *testing.T) {
	t.Parallel()

	_, err := Parse([]byte("responses:\n  - reply: x\n"))
	assert.Error(t, err)
}

func TestLoadReadsFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "script.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testScript), 0o600))

	backend, err := Load(path)
	require.NoError(t, err)
	out, err := backend.Complete(context.Background(), ports.CompletionRequest{Transcript: "ver carrito"})
	require.NoError(t, err)
	assert.Contains(t, out, "/cart")

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestDemoRepliesParseAsPlans(t *testing.T) {
	t.Parallel()

	backend := Demo()
	for _, transcript := range []string{"ir al carrito", "buscar pan", "bajar", "quiero pagar", "hola"} {
		out, err := backend.Complete(context.Background(), ports.CompletionRequest{Transcript: transcript})
		require.NoError(t, err, transcript)

		plan, err := application.ParsePlan(out)
		require.NoError(t, err, transcript)
		assert.NotEmpty(t, plan.Feedback, transcript)
	}
}
