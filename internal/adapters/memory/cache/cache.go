package cache

import (
	"context"
	"sync"
	"time"

	"github.com/bnema/shopvoice/internal/adapters/memory/sweep"
	"github.com/bnema/shopvoice/internal/domain"
	"github.com/bnema/shopvoice/internal/ports"
	"go.uber.org/zap"
)

const (
	DefaultTTL           = 5 * time.Minute
	DefaultSweepInterval = time.Minute
)

type Options struct {
	TTL           time.Duration
	SweepInterval time.Duration
	Clock         ports.Clock
	Logger        *zap.Logger
}

type entry struct {
	result     domain.InterpretResult
	insertedAt time.Time
}

// Cache memoizes successful, context-free interpretations. Entries expire after
// the TTL; there is no size bound.
type Cache struct {
	ttl    time.Duration
	clock  ports.Clock
	logger *zap.Logger
	sweep  *sweep.Runner

	mu      sync.Mutex
	entries map[string]entry
}

var _ ports.ResponseCache = (*Cache)(nil)

func New(opts Options) *Cache {
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.SweepInterval <= 0 {
		opts.SweepInterval = DefaultSweepInterval
	}
	if opts.Clock == nil {
		opts.Clock = ports.SystemClock{}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	c := &Cache{
		ttl:     opts.TTL,
		clock:   opts.Clock,
		logger:  opts.Logger,
		entries: map[string]entry{},
	}
	c.sweep = sweep.NewRunner(opts.SweepInterval, func() { c.Sweep() })

	return c
}

func (c *Cache) Get(key string) (domain.InterpretResult, bool) {
	if key == "" {
		return domain.InterpretResult{}, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return domain.InterpretResult{}, false
	}
	if c.expired(e, c.clock.Now()) {
		delete(c.entries, key)
		c.logger.Debug("cache entry expired on read", zap.String("key", key))
		return domain.InterpretResult{}, false
	}

	return e.result.Clone(), true
}

// Set stores result under key. Unsuccessful or degraded results are ignored.
func (c *Cache) Set(key string, result domain.InterpretResult) {
	if key == "" || !result.Execution.OverallSuccess || result.Degraded {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = entry{result: result.Clone(), insertedAt: c.clock.Now()}
}

func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = map[string]entry{}
}

// Sweep removes every expired entry and returns how many were evicted.
func (c *Cache) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()
	evicted := 0
	for key, e := range c.entries {
		if c.expired(e, now) {
			delete(c.entries, key)
			evicted++
		}
	}
	if evicted > 0 {
		c.logger.Debug("cache sweep", zap.Int("evicted", evicted), zap.Int("remaining", len(c.entries)))
	}

	return evicted
}

func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.entries)
}

func (c *Cache) Start(ctx context.Context) {
	c.sweep.Start(ctx)
}

func (c *Cache) Stop() {
	c.sweep.Stop()
}

func (c *Cache) expired(e entry, now time.Time) bool {
	return now.Sub(e.insertedAt) > c.ttl
}
