package application

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bnema/shopvoice/internal/domain"
)

const (
	fallbackFeedback = "Sorry, I could not understand the command. Could you say it another way?"
	degradedFeedback = "I could not work out what to do with that. Could you rephrase it?"
)

type planWire struct {
	Reasoning        string          `json:"reasoning"`
	Steps            []domain.Step   `json:"steps"`
	UserFeedback     string          `json:"userFeedback"`
	ExpectedDuration json.RawMessage `json:"expectedDuration"`
}

// ParsePlan extracts the JSON plan from raw model text. Markdown fences and prose
// around the outermost braces are ignored.
func ParsePlan(raw string) (domain.Plan, error) {
	body, err := extractJSONObject(raw)
	if err != nil {
		return domain.Plan{}, err
	}

	var wire planWire
	if err := json.Unmarshal([]byte(body), &wire); err != nil {
		return domain.Plan{}, fmt.Errorf("%w: %v", domain.ErrInvalidPlan, err)
	}

	for i, step := range wire.Steps {
		if strings.TrimSpace(step.Tool) == "" {
			return domain.Plan{}, fmt.Errorf("%w: step %d has no tool", domain.ErrInvalidPlan, i)
		}
	}

	steps := wire.Steps
	if steps == nil {
		steps = []domain.Step{}
	}

	return domain.Plan{
		Reasoning:        strings.TrimSpace(wire.Reasoning),
		Steps:            steps,
		Feedback:         strings.TrimSpace(wire.UserFeedback),
		ExpectedDuration: parseExpectedDuration(wire.ExpectedDuration),
	}, nil
}

// DegradedPlan is returned when a backend answered with something that is not a
// usable plan.
func DegradedPlan(reason string) domain.Plan {
	return domain.Plan{
		Reasoning: reason,
		Steps:     []domain.Step{},
		Feedback:  degradedFeedback,
	}
}

// FallbackPlan is returned when no backend produced an answer at all.
func FallbackPlan() domain.Plan {
	return domain.Plan{
		Reasoning: "no model produced a plan",
		Steps:     []domain.Step{},
		Feedback:  fallbackFeedback,
	}
}

func extractJSONObject(raw string) (string, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return "", fmt.Errorf("%w: empty model output", domain.ErrInvalidPlan)
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return "", fmt.Errorf("%w: no json object in model output", domain.ErrInvalidPlan)
	}

	return text[start : end+1], nil
}

// parseExpectedDuration accepts seconds as a number or numeric string, or a Go
// duration string. Anything else is treated as no estimate.
func parseExpectedDuration(raw json.RawMessage) time.Duration {
	var seconds float64
	if err := json.Unmarshal(raw, &seconds); err == nil {
		return time.Duration(seconds * float64(time.Second))
	}

	var text string
	if err := json.Unmarshal(raw, &text); err != nil {
		return 0
	}
	text = strings.TrimSpace(text)
	if d, err := time.ParseDuration(text); err == nil {
		return d
	}
	if s, err := strconv.ParseFloat(text, 64); err == nil {
		return time.Duration(s * float64(time.Second))
	}
	return 0
}
