// Package scripted is an offline model backend that answers from canned replies.
package scripted

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/bnema/shopvoice/internal/domain"
	"github.com/bnema/shopvoice/internal/ports"
	"gopkg.in/yaml.v3"
)

//go:embed demo.yaml
var demoScript []byte

var ErrScriptedFailure = errors.New("scripted failure")

type Script struct {
	Default   string     `yaml:"default"`
	Responses []Response `yaml:"responses"`
}

// Response is chosen when Match occurs in the normalized transcript. Error
// simulates a backend fault: unauthorized, quota, timeout or any other text.
type Response struct {
	Match string        `yaml:"match"`
	Reply string        `yaml:"reply"`
	Error string        `yaml:"error,omitempty"`
	Delay time.Duration `yaml:"delay,omitempty"`
}

type Backend struct {
	script Script
}

func New(script Script) *Backend {
	return &Backend{script: script}
}

// Demo returns a backend with the built-in replies.
func Demo() *Backend {
	script, err := Parse(demoScript)
	if err != nil {
		panic(fmt.Sprintf("parse built-in script: %v", err))
	}
	return New(script)
}

func Load(path string) (*Backend, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read script %q: %w", path, err)
	}

	script, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse script %q: %w", path, err)
	}

	return New(script), nil
}

func Parse(data []byte) (Script, error) {
	var script Script
	if err := yaml.Unmarshal(data, &script); err != nil {
		return Script{}, err
	}

	for i, resp := range script.Responses {
		if strings.TrimSpace(resp.Match) == "" {
			return Script{}, fmt.Errorf("response %d: match is required", i)
		}
		script.Responses[i].Match = domain.NormalizeTranscript(resp.Match)
	}

	return script, nil
}

func (b *Backend) Complete(ctx context.Context, req ports.CompletionRequest) (string, error) {
	resp, ok := b.lookup(req.Transcript)
	if !ok {
		return b.script.Default, nil
	}

	if resp.Delay > 0 {
		timer := time.NewTimer(resp.Delay)
		defer timer.Stop()

		select {
		case <-ctx.Done():
			return "", fmt.Errorf("scripted reply: %w: %w", domain.ErrBackendTimeout, ctx.Err())
		case <-timer.C:
		}
	}

	switch strings.ToLower(strings.TrimSpace(resp.Error)) {
	case "":
		return resp.Reply, nil
	case "unauthorized":
		return "", fmt.Errorf("scripted reply: %w", domain.ErrBackendUnauthorized)
	case "quota":
		return "", fmt.Errorf("scripted reply: %w", domain.ErrBackendQuota)
	case "timeout":
		return "", fmt.Errorf("scripted reply: %w", domain.ErrBackendTimeout)
	default:
		return "", fmt.Errorf("%w: %s", ErrScriptedFailure, resp.Error)
	}
}

func (b *Backend) lookup(transcript string) (Response, bool) {
	normalized := domain.NormalizeTranscript(transcript)
	for _, resp := range b.script.Responses {
		if strings.Contains(normalized, resp.Match) {
			return resp, true
		}
	}
	return Response{}, false
}
