package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bnema/shopvoice/internal/domain"
	"github.com/bnema/shopvoice/internal/ports"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const DefaultInvocationTimeout = 30 * time.Second

type CoordinatorOptions struct {
	InvocationTimeout time.Duration
	Combiner          Combiner
	Logger            *zap.Logger
}

// Coordinator fans a command out to every model of a roster and combines the
// answers. A failing backend never aborts its siblings.
type Coordinator struct {
	backends map[domain.ModelID]ports.ModelBackend
	timeout  time.Duration
	combiner Combiner
	logger   *zap.Logger
}

func NewCoordinator(backends map[domain.ModelID]ports.ModelBackend, opts CoordinatorOptions) *Coordinator {
	if opts.InvocationTimeout <= 0 {
		opts.InvocationTimeout = DefaultInvocationTimeout
	}
	if opts.Combiner == (Combiner{}) {
		opts.Combiner = NewCombiner()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	return &Coordinator{
		backends: backends,
		timeout:  opts.InvocationTimeout,
		combiner: opts.Combiner,
		logger:   opts.Logger,
	}
}

type EnsembleInput struct {
	Instructions string
	Request      domain.CommandRequest
	History      []domain.Message
	RosterName   domain.RosterName
	Roster       []domain.ModelConfig
}

type EnsembleOutcome struct {
	Result      domain.PlanResult
	Meta        domain.EnsembleMeta
	Invocations []domain.ModelInvocation
}

// Run invokes every model of the roster concurrently, each under its own
// deadline, and waits for all of them. It only fails when the roster is empty.
func (c *Coordinator) Run(ctx context.Context, in EnsembleInput) (EnsembleOutcome, error) {
	if len(in.Roster) == 0 {
		return EnsembleOutcome{}, fmt.Errorf("roster %q: %w", in.RosterName, domain.ErrEmptyRoster)
	}

	invocations := make([]domain.ModelInvocation, len(in.Roster))

	var g errgroup.Group
	for i, model := range in.Roster {
		g.Go(func() error {
			invocations[i] = c.invoke(ctx, model, in)
			return nil
		})
	}
	_ = g.Wait()

	combined := c.combiner.Combine(invocations)
	meta := summarize(in.RosterName, invocations)
	meta.Consistent = combined.Consistent
	meta.Consensus = combined.Consensus

	c.logger.Debug("ensemble finished",
		zap.String("roster", string(in.RosterName)),
		zap.Int("backends", len(invocations)),
		zap.Int("succeeded", meta.Succeeded),
		zap.Duration("slowest", meta.Slowest),
		zap.Bool("consistent", meta.Consistent),
		zap.Bool("consensus", meta.Consensus),
		zap.String("status", string(combined.Result.Status)),
	)

	return EnsembleOutcome{Result: combined.Result, Meta: meta, Invocations: invocations}, nil
}

func (c *Coordinator) invoke(ctx context.Context, model domain.ModelConfig, in EnsembleInput) (inv domain.ModelInvocation) {
	inv.Model = model
	start := time.Now()
	defer func() {
		inv.Duration = time.Since(start)
		if r := recover(); r != nil {
			inv.Success = false
			inv.Err = fmt.Errorf("model %s panicked: %v", model.ID, r)
		}
		c.logInvocation(inv)
	}()

	backend, ok := c.backends[model.ID]
	if !ok || backend == nil {
		inv.Err = fmt.Errorf("model %s: %w", model.ID, domain.ErrUnknownBackend)
		return inv
	}

	timeout := c.timeout
	if model.Timeout > 0 {
		timeout = model.Timeout
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	raw, err := backend.Complete(callCtx, ports.CompletionRequest{
		Instructions: in.Instructions,
		History:      append([]domain.Message(nil), in.History...),
		Transcript:   in.Request.Transcript,
		Context:      in.Request.Context.Clone(),
		Snapshot:     in.Request.Snapshot,
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			err = fmt.Errorf("%w after %s: %w", domain.ErrBackendTimeout, timeout, err)
		}
		inv.Err = fmt.Errorf("model %s: %w", model.ID, err)
		return inv
	}

	inv.Success = true
	plan, err := ParsePlan(raw)
	if err != nil {
		inv.ParseDegraded = true
		inv.Plan = DegradedPlan(err.Error())
		return inv
	}
	inv.Plan = plan

	return inv
}

func (c *Coordinator) logInvocation(inv domain.ModelInvocation) {
	fields := []zap.Field{
		zap.String("model", string(inv.Model.ID)),
		zap.String("role", string(inv.Model.Role)),
		zap.Duration("duration", inv.Duration),
		zap.Bool("success", inv.Success),
	}
	switch {
	case inv.Err != nil:
		c.logger.Warn("model invocation failed", append(fields, zap.Error(inv.Err))...)
	case inv.ParseDegraded:
		c.logger.Warn("model returned an unusable plan", append(fields, zap.String("reason", inv.Plan.Reasoning))...)
	default:
		c.logger.Debug("model invocation succeeded", append(fields, zap.Int("steps", len(inv.Plan.Steps)))...)
	}
}

func summarize(roster domain.RosterName, invocations []domain.ModelInvocation) domain.EnsembleMeta {
	meta := domain.EnsembleMeta{
		Roster:   roster,
		Backends: make([]domain.ModelID, 0, len(invocations)),
	}

	var total time.Duration
	for _, inv := range invocations {
		meta.Backends = append(meta.Backends, inv.Model.ID)
		if inv.Success {
			meta.Succeeded++
		}
		if inv.Duration > meta.Slowest {
			meta.Slowest = inv.Duration
		}
		total += inv.Duration
	}
	if len(invocations) > 0 {
		meta.Mean = total / time.Duration(len(invocations))
		meta.SuccessRatio = float64(meta.Succeeded) / float64(len(invocations))
	}

	return meta
}
