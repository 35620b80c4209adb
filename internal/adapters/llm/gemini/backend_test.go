package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bnema/shopvoice/internal/domain"
	"github.com/bnema/shopvoice/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBackend(t *testing.T, handler http.HandlerFunc) *Backend {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	backend, err := New(context.Background(), Config{APIKey: "g-key", Model: "gemini-2.0-flash", BaseURL: server.URL})
	require.NoError(t, err)
	return backend
}

func TestCompleteGeneratesContent(t *testing.T) {
	t.Parallel()

	var captured map[string]any
	backend := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "models/gemini-2.0-flash:generateContent"), r.URL.Path)

		body, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		assert.NoError(t, json.Unmarshal(body, &captured))

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"candidates":[{"content":{"role":"model","parts":[{"text":"{\"steps\":[]}"}]}}]}`)
	})

	out, err := backend.Complete(context.Background(), ports.CompletionRequest{
		Instructions: "plan it",
		History:      []domain.Message{{Role: domain.MessageRoleAssistant, Text: "Hola"}},
		Transcript:   "qué es esto",
		Snapshot:     &domain.VisualSnapshot{MIMEType: "image/png", Data: []byte("img")},
	})
	require.NoError(t, err)
	assert.Equal(t, `{"steps":[]}`, out)

	contents, ok := captured["contents"].([]any)
	require.True(t, ok)
	require.Len(t, contents, 2)
	assert.Equal(t, "model", contents[0].(map[string]any)["role"])

	last := contents[1].(map[string]any)
	parts := last["parts"].([]any)
	require.Len(t, parts, 2)
	assert.Contains(t, parts[0].(map[string]any)["text"], "Command: qué es esto")
	assert.Contains(t, parts[1].(map[string]any), "inlineData")

	assert.Contains(t, captured, "systemInstruction")
}

func TestCompleteMapsAPIErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		status int
		want   error
	}{
		{name: "forbidden", status: http.StatusForbidden, want: domain.ErrBackendUnauthorized},
		{name: "quota", status: http.StatusTooManyRequests, want: domain.ErrBackendQuota},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			backend := newTestBackend(t, func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = fmt.Fprintf(w, `{"error":{"code":%d,"message":"nope","status":"DENIED"}}`, tt.status)
			})

			_, err := backend.Complete(context.Background(), ports.CompletionRequest{Transcript: "x"})
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestCompleteEmptyCandidates(t *testing.T) {
	t.Parallel()

	backend := newTestBackend(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"candidates":[]}`)
	})

	_, err := backend.Complete(context.Background(), ports.CompletionRequest{Transcript: "x"})
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestNewRequiresKey(t *testing.T) {
	t.Parallel()

	_, err := New(context.Background(), Config{Model: "gemini-2.0-flash"})
	assert.ErrorIs(t, err, domain.ErrCredentialNotFound)
}
