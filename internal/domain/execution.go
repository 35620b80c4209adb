package domain

import (
	"encoding/json"
	"time"
)

// Outcome classifies a step once, where actuator output is first parsed.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
	// OutcomeUnknown means the actuator did not report a success flag. It counts as
	// completed.
	OutcomeUnknown Outcome = "unknown"
)

func (o Outcome) Completed() bool {
	return o != OutcomeFailure
}

type StepTrace struct {
	Tool     string          `json:"tool"`
	Params   map[string]any  `json:"params"`
	Outcome  Outcome         `json:"outcome"`
	Success  bool            `json:"success"`
	Output   json.RawMessage `json:"output,omitempty"`
	Duration time.Duration   `json:"duration"`
	Attempts int             `json:"attempts"`
	Error    string          `json:"error,omitempty"`
}

type ExecutionResult struct {
	TotalSteps     int         `json:"totalSteps"`
	StepsCompleted int         `json:"stepsCompleted"`
	StepsFailed    int         `json:"stepsFailed"`
	OverallSuccess bool        `json:"overallSuccess"`
	Trace          []StepTrace `json:"trace"`
}

// NewExecutionResult derives the counters from trace so they cannot drift apart.
func NewExecutionResult(trace []StepTrace) ExecutionResult {
	result := ExecutionResult{TotalSteps: len(trace), Trace: trace}
	for _, entry := range trace {
		if entry.Success {
			result.StepsCompleted++
		} else {
			result.StepsFailed++
		}
	}
	result.OverallSuccess = result.StepsFailed == 0

	return result
}

func (r ExecutionResult) Clone() ExecutionResult {
	out := r
	if r.Trace == nil {
		return out
	}

	out.Trace = make([]StepTrace, len(r.Trace))
	for i, entry := range r.Trace {
		if entry.Params != nil {
			entry.Params = cloneValue(entry.Params).(map[string]any)
		}
		if entry.Output != nil {
			entry.Output = append(json.RawMessage(nil), entry.Output...)
		}
		out.Trace[i] = entry
	}
	return out
}

func cloneValue(v any) any {
	switch typed := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(typed))
		for k, inner := range typed {
			out[k] = cloneValue(inner)
		}
		return out
	case []any:
		out := make([]any, len(typed))
		for i, inner := range typed {
			out[i] = cloneValue(inner)
		}
		return out
	default:
		return v
	}
}
