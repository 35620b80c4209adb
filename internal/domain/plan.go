package domain

import (
	"encoding/json"
	"time"
)

type Plan struct {
	Reasoning        string        `json:"reasoning"`
	Steps            []Step        `json:"steps"`
	Feedback         string        `json:"userFeedback"`
	ExpectedDuration time.Duration `json:"expectedDuration"`
}

type Step struct {
	Tool          string     `json:"tool"`
	Params        StepParams `json:"-"`
	Justification string     `json:"justification,omitempty"`
}

// NewStep decodes a free-form parameter map into the typed variant for tool.
func NewStep(tool string, params map[string]any, justification string) Step {
	return Step{
		Tool:          tool,
		Params:        DecodeStepParams(tool, params),
		Justification: justification,
	}
}

// ParamValues returns the wire form of the step parameters.
func (s Step) ParamValues() map[string]any {
	if s.Params == nil {
		return map[string]any{}
	}

	return s.Params.Values()
}

type stepWire struct {
	Tool          string         `json:"tool"`
	Params        map[string]any `json:"params"`
	Justification string         `json:"justification,omitempty"`
}

func (s Step) MarshalJSON() ([]byte, error) {
	return json.Marshal(stepWire{Tool: s.Tool, Params: s.ParamValues(), Justification: s.Justification})
}

func (s *Step) UnmarshalJSON(data []byte) error {
	var wire stepWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	*s = NewStep(wire.Tool, wire.Params, wire.Justification)
	return nil
}

type PlanStatus string

const (
	PlanOK       PlanStatus = "ok"
	PlanDegraded PlanStatus = "degraded"
)

// PlanResult is the outcome of turning a command into a plan. Degraded plans are
// well formed and executable but carry the reason they could not be trusted.
type PlanResult struct {
	Status PlanStatus
	Plan   Plan
	Reason string
}

func (r PlanResult) Degraded() bool {
	return r.Status == PlanDegraded
}
