// Package bridge forwards plan steps to a storefront automation endpoint over HTTP.
package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bnema/shopvoice/internal/domain"
	"github.com/bnema/shopvoice/internal/ports"
)

const DefaultTimeout = 15 * time.Second

var ErrEndpointRequired = errors.New("bridge endpoint is required")

type Config struct {
	Endpoint string
	Timeout  time.Duration
	// Headers are added to every request, e.g. an API token.
	Headers    map[string]string
	HTTPClient *http.Client
}

type Actuator struct {
	endpoint   string
	headers    map[string]string
	httpClient *http.Client
}

func New(cfg Config) (*Actuator, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		return nil, ErrEndpointRequired
	}

	client := cfg.HTTPClient
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		client = &http.Client{Timeout: timeout}
	}

	return &Actuator{endpoint: endpoint, headers: cfg.Headers, httpClient: client}, nil
}

type toolRequest struct {
	Tool    string                 `json:"tool"`
	Params  map[string]any         `json:"params"`
	Context domain.ContextSnapshot `json:"context,omitempty"`
}

type rejection struct {
	Success bool   `json:"success"`
	Status  int    `json:"status"`
	Error   string `json:"error"`
}

// Actuate returns the endpoint's body as the step output. Transport failures and
// 5xx answers are errors so the step is retried; a 4xx answer is reported as a
// failed step.
func (a *Actuator) Actuate(ctx context.Context, call ports.ToolCall) ([]byte, error) {
	body, err := json.Marshal(toolRequest{
		Tool:    call.Step.Tool,
		Params:  call.Step.ParamValues(),
		Context: call.Context,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal tool call: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create bridge request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range a.headers {
		req.Header.Set(k, v)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("bridge request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read bridge response: %w", err)
	}

	switch {
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("bridge status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	case resp.StatusCode >= 400:
		return json.Marshal(rejection{Status: resp.StatusCode, Error: strings.TrimSpace(string(raw))})
	default:
		return raw, nil
	}
}
