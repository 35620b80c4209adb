package application

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bnema/shopvoice/internal/domain"
	"github.com/bnema/shopvoice/internal/ports"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type OrchestratorOptions struct {
	Instructions string
	Selector     RosterSelector
	// Synthesizer is optional; without one the plan's own feedback is returned.
	Synthesizer ports.Synthesizer
	// SynthesisTimeout bounds the synthesis call; it defaults to
	// DefaultInvocationTimeout.
	SynthesisTimeout time.Duration
	NewRequestID     func() string
	Logger           *zap.Logger
}

// Orchestrator turns one spoken command into an executed plan and a reply.
type Orchestrator struct {
	rosters       ports.RosterRepository
	coordinator   *Coordinator
	executor      *Executor
	cache         ports.ResponseCache
	conversations ports.ConversationStore

	instructions     string
	selector         RosterSelector
	synthesizer      ports.Synthesizer
	synthesisTimeout time.Duration
	newRequestID     func() string
	logger           *zap.Logger
}

func NewOrchestrator(
	rosters ports.RosterRepository,
	coordinator *Coordinator,
	executor *Executor,
	cache ports.ResponseCache,
	conversations ports.ConversationStore,
	opts OrchestratorOptions,
) *Orchestrator {
	if strings.TrimSpace(opts.Instructions) == "" {
		opts.Instructions = DefaultInstructions
	}
	if opts.Selector.Keywords == nil {
		opts.Selector = NewRosterSelector(nil)
	}
	if opts.SynthesisTimeout <= 0 {
		opts.SynthesisTimeout = DefaultInvocationTimeout
	}
	if opts.NewRequestID == nil {
		opts.NewRequestID = uuid.NewString
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	return &Orchestrator{
		rosters:       rosters,
		coordinator:   coordinator,
		executor:      executor,
		cache:         cache,
		conversations: conversations,
		instructions:     opts.Instructions,
		selector:         opts.Selector,
		synthesizer:      opts.Synthesizer,
		synthesisTimeout: opts.SynthesisTimeout,
		newRequestID:     opts.NewRequestID,
		logger:           opts.Logger,
	}
}

// Interpret answers a command from the cache when possible, otherwise plans it
// with the ensemble, executes the plan and records the exchange. Model and tool
// failures are folded into the result; errors are returned for invalid input,
// an unusable roster or a cancelled context.
func (o *Orchestrator) Interpret(ctx context.Context, req domain.CommandRequest) (domain.InterpretResult, error) {
	if err := req.Validate(); err != nil {
		return domain.InterpretResult{}, err
	}

	requestID := o.newRequestID()
	logger := o.logger.With(zap.String("request_id", requestID))

	sessionKey := ResolveSessionKey(req)

	key := domain.CacheKey(req.Transcript, req.HasSnapshot())
	if cached, ok := o.cache.Get(key); ok {
		logger.Debug("answered from cache", zap.String("key", key))
		cached.RequestID = requestID
		cached.SessionKey = sessionKey
		cached.Cached = true
		return cached, nil
	}

	history := o.conversations.History(sessionKey)

	models, err := o.rosters.List(ctx)
	if err != nil {
		return domain.InterpretResult{}, fmt.Errorf("list models: %w", err)
	}
	rosterName, roster := o.selector.Select(models, req)
	reportProgress(ctx, Progress{Stage: StagePlanning, Backends: len(roster)})

	ensemble, err := o.coordinator.Run(ctx, EnsembleInput{
		Instructions: o.instructions,
		Request:      req,
		History:      history,
		RosterName:   rosterName,
		Roster:       roster,
	})
	if err != nil {
		return domain.InterpretResult{}, fmt.Errorf("run ensemble: %w", err)
	}
	plan := ensemble.Result.Plan

	execution, err := o.executor.Execute(ctx, plan.Steps, req.Context)
	if err != nil {
		return domain.InterpretResult{}, fmt.Errorf("execute plan: %w", err)
	}

	feedback := o.synthesize(ctx, logger, req, plan, execution)

	// Both turns are recorded once the exchange has completed.
	o.conversations.AppendUser(sessionKey, req.Transcript)
	o.conversations.AppendAssistant(sessionKey, feedback)

	result := domain.InterpretResult{
		RequestID:        requestID,
		SessionKey:       sessionKey,
		Reasoning:        plan.Reasoning,
		UserFeedback:     feedback,
		ExpectedDuration: plan.ExpectedDuration,
		Execution:        execution,
		Success:          execution.OverallSuccess,
		StepsPlanned:     len(plan.Steps),
		StepsExecuted:    execution.StepsCompleted,
		Ensemble:         ensemble.Meta,
		Degraded:         ensemble.Result.Degraded(),
		DegradedReason:   ensemble.Result.Reason,
		ErrorCategory:    failureCategory(ensemble),
	}

	logger.Info("command interpreted",
		zap.String("session", sessionKey),
		zap.String("roster", string(rosterName)),
		zap.Int("steps_planned", result.StepsPlanned),
		zap.Int("steps_executed", result.StepsExecuted),
		zap.Bool("success", result.Success),
		zap.Bool("degraded", result.Degraded),
	)

	if err := ctx.Err(); err != nil {
		return result, fmt.Errorf("interpret: %w", err)
	}

	if result.Success && !result.Degraded {
		o.cache.Set(key, result)
	}

	return result, nil
}

// failureCategory classifies the first backend error when no backend produced a plan.
func failureCategory(ensemble EnsembleOutcome) domain.ErrorCategory {
	if ensemble.Meta.Succeeded > 0 {
		return ""
	}
	for _, invocation := range ensemble.Invocations {
		if invocation.Err != nil {
			return domain.ClassifyError(invocation.Err)
		}
	}
	return ""
}

// ClearCache drops every cached response.
func (o *Orchestrator) ClearCache() {
	o.cache.Clear()
}

// ForgetSession drops the conversation history of the session req belongs to.
func (o *Orchestrator) ForgetSession(req domain.CommandRequest) string {
	key := ResolveSessionKey(req)
	o.conversations.Clear(key)
	return key
}

func (o *Orchestrator) synthesize(ctx context.Context, logger *zap.Logger, req domain.CommandRequest, plan domain.Plan, execution domain.ExecutionResult) string {
	if o.synthesizer == nil || len(plan.Steps) == 0 {
		return plan.Feedback
	}

	reportProgress(ctx, Progress{Stage: StageSynthesizing})

	synthCtx, cancel := context.WithTimeout(ctx, o.synthesisTimeout)
	defer cancel()

	text, err := o.synthesizer.Synthesize(synthCtx, ports.SynthesisRequest{
		Transcript: req.Transcript,
		Plan:       plan,
		Execution:  execution,
	})
	if err != nil {
		logger.Warn("synthesis failed, using plan feedback", zap.Error(err))
		return plan.Feedback
	}
	if text = strings.TrimSpace(text); text == "" {
		return plan.Feedback
	}

	return text
}
