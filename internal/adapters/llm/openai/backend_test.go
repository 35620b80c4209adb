package openai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bnema/shopvoice/internal/domain"
	"github.com/bnema/shopvoice/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompleteSendsChatRequest(t *testing.T) {
	t.Parallel()

	var captured map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		body, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		assert.NoError(t, json.Unmarshal(body, &captured))

		_, _ = io.WriteString(w, `{"choices":[{"message":{"content":"  {\"steps\":[]}  "}}]}`)
	}))
	t.Cleanup(server.Close)

	backend := New(Config{APIKey: "sk-test", BaseURL: server.URL + "/v1/", Model: "gpt-4o-mini"})
	out, err := backend.Complete(context.Background(), ports.CompletionRequest{
		Instructions: "plan it",
		History: []domain.Message{
			{Role: domain.MessageRoleUser, Text: "hola"},
			{Role: domain.MessageRoleAssistant, Text: "¿Qué buscas?"},
		},
		Transcript: "buscar pan",
	})
	require.NoError(t, err)
	assert.Equal(t, `{"steps":[]}`, out)

	assert.Equal(t, "gpt-4o-mini", captured["model"])
	assert.Equal(t, map[string]any{"type": "json_object"}, captured["response_format"])

	msgs, ok := captured["messages"].([]any)
	require.True(t, ok)
	require.Len(t, msgs, 4)
	assert.Equal(t, map[string]any{"role": "system", "content": "plan it"}, msgs[0])
	assert.Equal(t, "assistant", msgs[2].(map[string]any)["role"])
	assert.Contains(t, msgs[3].(map[string]any)["content"], "Command: buscar pan")
}

func TestCompleteAttachesSnapshotAsImage(t *testing.T) {
	t.Parallel()

	var captured chatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var raw struct {
			Messages []struct {
				Role    string          `json:"role"`
				Content json.RawMessage `json:"content"`
			} `json:"messages"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&raw))

		last := raw.Messages[len(raw.Messages)-1]
		var parts []contentPart
		assert.NoError(t, json.Unmarshal(last.Content, &parts))
		captured.Messages = append(captured.Messages, chatMessage{Role: last.Role, Content: parts})

		_, _ = io.WriteString(w, `{"choices":[{"message":{"content":"{}"}}]}`)
	}))
	t.Cleanup(server.Close)

	backend := New(Config{APIKey: "k", BaseURL: server.URL, Model: "gpt-4o"})
	_, err := backend.Complete(context.Background(), ports.CompletionRequest{
		Transcript: "qué es esto",
		Snapshot:   &domain.VisualSnapshot{MIMEType: "image/jpeg", Data: []byte("img")},
	})
	require.NoError(t, err)

	require.Len(t, captured.Messages, 1)
	parts := captured.Messages[0].Content.([]contentPart)
	require.Len(t, parts, 2)
	assert.Equal(t, "text", parts[0].Type)
	assert.Equal(t, "image_url", parts[1].Type)
	assert.Equal(t, "data:image/jpeg;base64,aW1n", parts[1].ImageURL.URL)
}

func TestCompleteMapsStatusCodes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		status int
		want   error
	}{
		{name: "unauthorized", status: http.StatusUnauthorized, want: domain.ErrBackendUnauthorized},
		{name: "forbidden", status: http.StatusForbidden, want: domain.ErrBackendUnauthorized},
		{name: "rate limited", status: http.StatusTooManyRequests, want: domain.ErrBackendQuota},
		{name: "gateway timeout", status: http.StatusGatewayTimeout, want: domain.ErrBackendTimeout},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, `{"error":{"message":"nope"}}`)
			}))
			t.Cleanup(server.Close)

			_, err := New(Config{APIKey: "k", BaseURL: server.URL}).Complete(context.Background(), ports.CompletionRequest{Transcript: "x"})
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestCompleteUnexpectedStatusIncludesBody(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, "boom")
	}))
	t.Cleanup(server.Close)

	_, err := New(Config{APIKey: "k", BaseURL: server.URL}).Complete(context.Background(), ports.CompletionRequest{Transcript: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500: boom")
	assert.Equal(t, domain.ErrorCategoryGeneric, domain.ClassifyError(err))
}

func TestCompleteWithoutKeyIsAuthenticationFailure(t *testing.T) {
	t.Parallel()

	_, err := New(Config{}).Complete(context.Background(), ports.CompletionRequest{Transcript: "x"})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrCredentialNotFound)
}

func TestCompleteNoChoices(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"choices":[]}`)
	}))
	t.Cleanup(server.Close)

	_, err := New(Config{APIKey: "k", BaseURL: server.URL}).Complete(context.Background(), ports.CompletionRequest{Transcript: "x"})
	assert.ErrorIs(t, err, ErrNoChoices)
}

func TestCompleteDeadlineIsTimeout(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(func() {
		close(release)
		server.Close()
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := New(Config{APIKey: "k", BaseURL: server.URL}).Complete(ctx, ports.CompletionRequest{Transcript: "x"})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrBackendTimeout)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestCompleteCancelledCallerIsNotTimeout(t *testing.T) {
	t.Parallel()

	started := make(chan struct{})
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(started)
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(func() {
		close(release)
		server.Close()
	})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-started
		cancel()
	}()

	_, err := New(Config{APIKey: "k", BaseURL: server.URL}).Complete(ctx, ports.CompletionRequest{Transcript: "x"})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, domain.ErrBackendTimeout)
}
