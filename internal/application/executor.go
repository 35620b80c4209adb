package application

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/bnema/shopvoice/internal/domain"
	"github.com/bnema/shopvoice/internal/ports"
	"go.uber.org/zap"
)

const (
	DefaultMaxAttempts   = 3
	DefaultBackoffBase   = 500 * time.Millisecond
	DefaultBackoffFactor = 2.0
)

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

type ExecutorOptions struct {
	MaxAttempts   int
	BackoffBase   time.Duration
	BackoffFactor float64
	Sleep         SleepFunc
	Logger        *zap.Logger
}

// Executor runs plan steps one by one against an actuator. A failed step does
// not stop the ones after it.
type Executor struct {
	actuator      ports.Actuator
	maxAttempts   int
	backoffBase   time.Duration
	backoffFactor float64
	sleep         SleepFunc
	logger        *zap.Logger
}

func NewExecutor(actuator ports.Actuator, opts ExecutorOptions) *Executor {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = DefaultMaxAttempts
	}
	if opts.BackoffBase <= 0 {
		opts.BackoffBase = DefaultBackoffBase
	}
	if opts.BackoffFactor < 1 {
		opts.BackoffFactor = DefaultBackoffFactor
	}
	if opts.Sleep == nil {
		opts.Sleep = sleepContext
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	return &Executor{
		actuator:      actuator,
		maxAttempts:   opts.MaxAttempts,
		backoffBase:   opts.BackoffBase,
		backoffFactor: opts.BackoffFactor,
		sleep:         opts.Sleep,
		logger:        opts.Logger,
	}
}

// Execute runs steps in order. It returns an error only for a malformed step
// list; every actuator problem ends up in the trace instead. Once ctx is done the
// remaining steps are recorded as failed without being attempted.
func (e *Executor) Execute(ctx context.Context, steps []domain.Step, execCtx domain.ContextSnapshot) (domain.ExecutionResult, error) {
	for i, step := range steps {
		if strings.TrimSpace(step.Tool) == "" {
			return domain.ExecutionResult{}, fmt.Errorf("%w: step %d has no tool", domain.ErrInvalidPlan, i)
		}
	}

	trace := make([]domain.StepTrace, 0, len(steps))
	for i, step := range steps {
		if err := ctx.Err(); err != nil {
			trace = append(trace, domain.StepTrace{
				Tool:    step.Tool,
				Params:  step.ParamValues(),
				Outcome: domain.OutcomeFailure,
				Error:   err.Error(),
			})
			continue
		}

		reportProgress(ctx, Progress{Stage: StageExecuting, Step: i + 1, Total: len(steps)})
		entry := e.runStep(ctx, step, execCtx)
		e.logger.Debug("step executed",
			zap.Int("index", i),
			zap.String("tool", entry.Tool),
			zap.String("outcome", string(entry.Outcome)),
			zap.Int("attempts", entry.Attempts),
			zap.Duration("duration", entry.Duration),
		)
		trace = append(trace, entry)
	}

	return domain.NewExecutionResult(trace), nil
}

func (e *Executor) runStep(ctx context.Context, step domain.Step, execCtx domain.ContextSnapshot) domain.StepTrace {
	entry := domain.StepTrace{Tool: step.Tool, Params: step.ParamValues()}
	start := time.Now()

	call := ports.ToolCall{Step: step, Context: execCtx.Clone()}

	var lastErr error
	for attempt := 1; attempt <= e.maxAttempts; attempt++ {
		entry.Attempts = attempt

		raw, err := e.actuator.Actuate(ctx, call)
		if err == nil {
			outcome, output, reason := classifyOutput(raw)
			entry.Outcome = outcome
			entry.Success = outcome.Completed()
			entry.Output = output
			entry.Error = reason
			entry.Duration = time.Since(start)
			return entry
		}
		lastErr = err

		if attempt == e.maxAttempts {
			break
		}

		delay := e.backoff(attempt)
		e.logger.Warn("step failed, retrying",
			zap.String("tool", step.Tool),
			zap.Int("attempt", attempt),
			zap.Duration("backoff", delay),
			zap.Error(err),
		)
		if err := e.sleep(ctx, delay); err != nil {
			lastErr = fmt.Errorf("%w (after: %v)", err, lastErr)
			break
		}
	}

	entry.Outcome = domain.OutcomeFailure
	entry.Error = lastErr.Error()
	entry.Duration = time.Since(start)
	return entry
}

// backoff returns the wait before the retry following attempt n (1-based).
func (e *Executor) backoff(attempt int) time.Duration {
	return time.Duration(float64(e.backoffBase) * math.Pow(e.backoffFactor, float64(attempt-1)))
}

// classifyOutput decides the step outcome from the actuator payload. Only an
// explicit success=false is a failure; output without the flag is unknown.
func classifyOutput(raw []byte) (domain.Outcome, json.RawMessage, string) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return domain.OutcomeUnknown, nil, ""
	}

	if !json.Valid(trimmed) {
		quoted, _ := json.Marshal(string(trimmed))
		return domain.OutcomeUnknown, quoted, ""
	}

	output := json.RawMessage(append([]byte(nil), trimmed...))

	var report struct {
		Success *bool  `json:"success"`
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(trimmed, &report); err != nil || report.Success == nil {
		return domain.OutcomeUnknown, output, ""
	}
	if *report.Success {
		return domain.OutcomeSuccess, output, ""
	}

	reason := report.Error
	if reason == "" {
		reason = report.Message
	}
	if reason == "" {
		reason = "tool reported failure"
	}
	return domain.OutcomeFailure, output, reason
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
