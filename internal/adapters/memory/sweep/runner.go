// Package sweep runs a periodic maintenance function on an owned goroutine with
// an explicit start/stop lifecycle.
package sweep

import (
	"context"
	"sync"
	"time"
)

type Runner struct {
	interval time.Duration
	fn       func()

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewRunner(interval time.Duration, fn func()) *Runner {
	return &Runner{interval: interval, fn: fn}
}

// Start launches the sweep loop. Calling Start on a running runner is a no-op.
func (r *Runner) Start(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cancel != nil || r.interval <= 0 || r.fn == nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	r.cancel = cancel
	r.done = done

	go func() {
		defer close(done)

		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				r.fn()
			}
		}
	}()
}

// Stop cancels the loop and waits for it to exit.
func (r *Runner) Stop() {
	r.mu.Lock()
	cancel, done := r.cancel, r.done
	r.cancel, r.done = nil, nil
	r.mu.Unlock()

	if cancel == nil {
		return
	}

	cancel()
	<-done
}

func (r *Runner) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.cancel != nil
}
