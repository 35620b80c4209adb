// Package synth turns an executed plan into a short spoken confirmation using a
// model backend.
package synth

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/bnema/shopvoice/internal/ports"
)

const instructions = `You confirm to a shopper, in one or two short sentences, what was just done on the storefront.
Reply in the language of the shopper's command. Mention failed steps plainly. Plain text only, no JSON.
If the answer comes back as JSON anyway, put the sentence in a "userFeedback" field.`

type Synthesizer struct {
	backend ports.ModelBackend
}

func New(backend ports.ModelBackend) *Synthesizer {
	return &Synthesizer{backend: backend}
}

func (s *Synthesizer) Synthesize(ctx context.Context, req ports.SynthesisRequest) (string, error) {
	out, err := s.backend.Complete(ctx, ports.CompletionRequest{
		Instructions: instructions,
		Transcript:   summary(req),
	})
	if err != nil {
		return "", fmt.Errorf("synthesize feedback: %w", err)
	}

	return unwrap(out), nil
}

func summary(req ports.SynthesisRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\nPlanned reply: %s\nSteps:", strings.TrimSpace(req.Transcript), req.Plan.Feedback)
	for i, entry := range req.Execution.Trace {
		status := "done"
		if !entry.Success {
			status = "failed"
			if entry.Error != "" {
				status += " (" + entry.Error + ")"
			}
		}
		fmt.Fprintf(&b, "\n%d. %s: %s", i+1, entry.Tool, status)
	}
	return b.String()
}

// unwrap accepts backends forced into JSON mode.
func unwrap(out string) string {
	out = strings.TrimSpace(out)
	if !strings.HasPrefix(out, "{") {
		return out
	}

	var wire struct {
		UserFeedback string `json:"userFeedback"`
		Text         string `json:"text"`
	}
	if err := json.Unmarshal([]byte(out), &wire); err != nil {
		return out
	}
	if wire.UserFeedback != "" {
		return wire.UserFeedback
	}
	return wire.Text
}
