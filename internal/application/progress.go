package application

import "context"

type Stage string

const (
	StagePlanning     Stage = "planning"
	StageExecuting    Stage = "executing"
	StageSynthesizing Stage = "synthesizing"
)

// Progress is reported as an interpretation moves through its stages. Step and
// Total are set while executing; Backends while planning.
type Progress struct {
	Stage    Stage
	Backends int
	Step     int
	Total    int
}

type ProgressFunc func(Progress)

type progressKey struct{}

// WithProgress returns a context whose interpretation reports its stages to fn.
// fn runs on the interpreting goroutine and must not block for long.
func WithProgress(ctx context.Context, fn ProgressFunc) context.Context {
	return context.WithValue(ctx, progressKey{}, fn)
}

func reportProgress(ctx context.Context, p Progress) {
	if fn, ok := ctx.Value(progressKey{}).(ProgressFunc); ok && fn != nil {
		fn(p)
	}
}
