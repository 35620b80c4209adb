// Package gemini is a model backend for the Gemini API.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/bnema/shopvoice/internal/adapters/llm"
	"github.com/bnema/shopvoice/internal/domain"
	"github.com/bnema/shopvoice/internal/ports"
	"google.golang.org/genai"
)

var ErrEmptyResponse = errors.New("gemini returned no text")

type Config struct {
	APIKey      string
	Model       string
	BaseURL     string
	Temperature float32
	HTTPClient  *http.Client
}

type Backend struct {
	client      *genai.Client
	model       string
	temperature float32
}

func New(ctx context.Context, cfg Config) (*Backend, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("gemini %s: %w", cfg.Model, domain.ErrCredentialNotFound)
	}

	clientCfg := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: cfg.HTTPClient,
	}
	if baseURL := strings.TrimSpace(cfg.BaseURL); baseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return &Backend{client: client, model: cfg.Model, temperature: cfg.Temperature}, nil
}

func (b *Backend) Complete(ctx context.Context, req ports.CompletionRequest) (string, error) {
	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		Temperature:      genai.Ptr(b.temperature),
	}
	if strings.TrimSpace(req.Instructions) != "" {
		config.SystemInstruction = genai.NewContentFromText(req.Instructions, genai.RoleUser)
	}

	resp, err := b.client.Models.GenerateContent(ctx, b.model, contents(req), config)
	if err != nil {
		return "", classify(ctx, err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", ErrEmptyResponse
	}

	return text, nil
}

func contents(req ports.CompletionRequest) []*genai.Content {
	out := make([]*genai.Content, 0, len(req.History)+1)
	for _, msg := range llm.Turns(req.History) {
		var role genai.Role = genai.RoleUser
		if msg.Role == domain.MessageRoleAssistant {
			role = genai.RoleModel
		}
		out = append(out, genai.NewContentFromText(msg.Text, role))
	}

	parts := []*genai.Part{genai.NewPartFromText(llm.UserPrompt(req))}
	if req.Snapshot != nil && len(req.Snapshot.Data) > 0 {
		parts = append(parts, genai.NewPartFromBytes(req.Snapshot.Data, req.Snapshot.MIMEType))
	}

	return append(out, genai.NewContentFromParts(parts, genai.RoleUser))
}

func classify(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return llm.ContextError("gemini request", ctxErr)
	}

	code := 0
	var apiErr genai.APIError
	var apiErrPtr *genai.APIError
	switch {
	case errors.As(err, &apiErr):
		code = apiErr.Code
	case errors.As(err, &apiErrPtr):
		code = apiErrPtr.Code
	}

	switch code {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("gemini status %d: %w", code, domain.ErrBackendUnauthorized)
	case http.StatusTooManyRequests:
		return fmt.Errorf("gemini status %d: %w", code, domain.ErrBackendQuota)
	case http.StatusRequestTimeout, http.StatusGatewayTimeout:
		return fmt.Errorf("gemini status %d: %w", code, domain.ErrBackendTimeout)
	default:
		return fmt.Errorf("gemini request: %w", err)
	}
}
