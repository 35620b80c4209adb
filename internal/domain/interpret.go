package domain

import "time"

type InterpretResult struct {
	RequestID        string          `json:"requestId"`
	SessionKey       string          `json:"sessionKey"`
	Reasoning        string          `json:"reasoning"`
	UserFeedback     string          `json:"userFeedback"`
	ExpectedDuration time.Duration   `json:"expectedDuration"`
	Execution        ExecutionResult `json:"execution"`
	Success          bool            `json:"success"`
	StepsPlanned     int             `json:"stepsPlanned"`
	StepsExecuted    int             `json:"stepsExecuted"`
	Ensemble         EnsembleMeta    `json:"ensemble"`
	Degraded         bool            `json:"degraded"`
	DegradedReason   string          `json:"degradedReason,omitempty"`
	Cached           bool            `json:"cached"`
	// ErrorCategory is set when no backend produced a plan.
	ErrorCategory ErrorCategory `json:"errorCategory,omitempty"`
}

// Clone returns a copy that shares no slices or maps with r.
func (r InterpretResult) Clone() InterpretResult {
	out := r
	out.Execution = r.Execution.Clone()
	if r.Ensemble.Backends != nil {
		out.Ensemble.Backends = append([]ModelID(nil), r.Ensemble.Backends...)
	}
	return out
}
