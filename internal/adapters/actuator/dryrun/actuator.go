// Package dryrun is an actuator that touches nothing and reports every step as done.
package dryrun

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/bnema/shopvoice/internal/ports"
	"go.uber.org/zap"
)

type Actuator struct {
	logger *zap.Logger

	mu    sync.Mutex
	calls []ports.ToolCall
}

func New(logger *zap.Logger) *Actuator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Actuator{logger: logger}
}

type report struct {
	Success bool           `json:"success"`
	DryRun  bool           `json:"dryRun"`
	Tool    string         `json:"tool"`
	Params  map[string]any `json:"params"`
}

func (a *Actuator) Actuate(ctx context.Context, call ports.ToolCall) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	a.mu.Lock()
	a.calls = append(a.calls, call)
	a.mu.Unlock()

	params := call.Step.ParamValues()
	a.logger.Info("dry run step", zap.String("tool", call.Step.Tool), zap.Any("params", params))

	return json.Marshal(report{Success: true, DryRun: true, Tool: call.Step.Tool, Params: params})
}

// Calls returns the steps received so far, oldest first.
func (a *Actuator) Calls() []ports.ToolCall {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make([]ports.ToolCall, len(a.calls))
	copy(out, a.calls)
	return out
}
