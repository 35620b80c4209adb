// Package openai is a model backend for OpenAI-compatible chat completion APIs.
package openai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/bnema/shopvoice/internal/adapters/llm"
	"github.com/bnema/shopvoice/internal/domain"
	"github.com/bnema/shopvoice/internal/ports"
)

const (
	DefaultBaseURL = "https://api.openai.com/v1"

	maxErrorBody = 512
)

var ErrNoChoices = errors.New("no completion returned")

type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float64
	HTTPClient  *http.Client
}

type Backend struct {
	apiKey      string
	baseURL     string
	model       string
	temperature float64
	httpClient  *http.Client
}

func New(cfg Config) *Backend {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	return &Backend{
		apiKey:      cfg.APIKey,
		baseURL:     baseURL,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		httpClient:  httpClient,
	}
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	Temperature    float64         `json:"temperature"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type responseFormat struct {
	Type string `json:"type"`
}

// chatMessage content is either a string or a list of contentPart.
type chatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (b *Backend) Complete(ctx context.Context, req ports.CompletionRequest) (string, error) {
	if strings.TrimSpace(b.apiKey) == "" {
		return "", fmt.Errorf("openai %s: %w", b.model, domain.ErrCredentialNotFound)
	}

	body, err := json.Marshal(chatRequest{
		Model:          b.model,
		Messages:       messages(req),
		Temperature:    b.temperature,
		ResponseFormat: &responseFormat{Type: "json_object"},
	})
	if err != nil {
		return "", fmt.Errorf("marshal chat request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create chat request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+b.apiKey)

	resp, err := b.httpClient.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return "", llm.ContextError("openai request", ctx.Err())
		}
		return "", fmt.Errorf("openai request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read openai response: %w", err)
	}

	if err := statusError(resp.StatusCode, raw); err != nil {
		return "", err
	}

	var decoded chatResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return "", fmt.Errorf("decode openai response: %w", err)
	}
	if decoded.Error != nil {
		return "", fmt.Errorf("openai: %s", decoded.Error.Message)
	}
	if len(decoded.Choices) == 0 {
		return "", ErrNoChoices
	}

	return strings.TrimSpace(decoded.Choices[0].Message.Content), nil
}

func messages(req ports.CompletionRequest) []chatMessage {
	out := []chatMessage{{Role: "system", Content: req.Instructions}}
	for _, msg := range llm.Turns(req.History) {
		role := "user"
		if msg.Role == domain.MessageRoleAssistant {
			role = "assistant"
		}
		out = append(out, chatMessage{Role: role, Content: msg.Text})
	}

	prompt := llm.UserPrompt(req)
	if req.Snapshot == nil || len(req.Snapshot.Data) == 0 {
		return append(out, chatMessage{Role: "user", Content: prompt})
	}

	dataURL := fmt.Sprintf("data:%s;base64,%s", req.Snapshot.MIMEType, base64.StdEncoding.EncodeToString(req.Snapshot.Data))
	return append(out, chatMessage{Role: "user", Content: []contentPart{
		{Type: "text", Text: prompt},
		{Type: "image_url", ImageURL: &imageURL{URL: dataURL}},
	}})
}

func statusError(code int, body []byte) error {
	if code == http.StatusOK {
		return nil
	}

	snippet := strings.TrimSpace(string(body))
	if len(snippet) > maxErrorBody {
		snippet = snippet[:maxErrorBody]
	}

	switch code {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("openai status %d: %w", code, domain.ErrBackendUnauthorized)
	case http.StatusTooManyRequests:
		return fmt.Errorf("openai status %d: %w", code, domain.ErrBackendQuota)
	case http.StatusRequestTimeout, http.StatusGatewayTimeout:
		return fmt.Errorf("openai status %d: %w", code, domain.ErrBackendTimeout)
	default:
		return fmt.Errorf("openai status %d: %s", code, snippet)
	}
}
