package conversation

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
	DefaultMaxExchanges  = 10
	DefaultIdleTimeout   = 30 * time.Minute
	DefaultSweepInterval = 15 * time.Minute
)

type Options struct {
	// MaxExchanges bounds the log to 2*MaxExchanges messages.
	MaxExchanges  int
	IdleTimeout   time.Duration
	SweepInterval time.Duration
	Clock         ports.Clock
	Logger        *zap.Logger
}

type session struct {
	messages     []domain.Message
	createdAt    time.Time
	lastActivity time.Time
}

// Store keeps short-lived per-session dialogue history in memory.
type Store struct {
	maxMessages int
	idle        time.Duration
	clock       ports.Clock
	logger      *zap.Logger
	sweep       *sweep.Runner

	mu       sync.Mutex
	sessions map[string]*session
}

var _ ports.ConversationStore = (*Store)(nil)

func NewStore(opts Options) *Store {
	if opts.MaxExchanges <= 0 {
		opts.MaxExchanges = DefaultMaxExchanges
	}
	if opts.IdleTimeout <= 0 {
		opts.IdleTimeout = DefaultIdleTimeout
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

	s := &Store{
		maxMessages: 2 * opts.MaxExchanges,
		idle:        opts.IdleTimeout,
		clock:       opts.Clock,
		logger:      opts.Logger,
		sessions:    map[string]*session{},
	}
	s.sweep = sweep.NewRunner(opts.SweepInterval, func() { s.Sweep() })

	return s
}

// History returns a copy of the session log, oldest first. Expired sessions are
// purged and reported as empty.
func (s *Store) History(key string) []domain.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.live(key, s.clock.Now())
	if !ok {
		return []domain.Message{}
	}

	out := make([]domain.Message, len(sess.messages))
	copy(out, sess.messages)
	return out
}

func (s *Store) AppendUser(key, text string) {
	s.append(key, domain.MessageRoleUser, text)
}

func (s *Store) AppendAssistant(key, text string) {
	s.append(key, domain.MessageRoleAssistant, text)
}

func (s *Store) Clear(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, key)
}

// Sweep purges idle sessions and returns how many were removed.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	purged := 0
	for key, sess := range s.sessions {
		if s.idleExpired(sess, now) {
			delete(s.sessions, key)
			purged++
		}
	}
	if purged > 0 {
		s.logger.Debug("conversation sweep", zap.Int("purged", purged), zap.Int("remaining", len(s.sessions)))
	}

	return purged
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.sessions)
}

func (s *Store) Start(ctx context.Context) {
	s.sweep.Start(ctx)
}

func (s *Store) Stop() {
	s.sweep.Stop()
}

// append ensures the session exists, appends and trims under one lock so two
// concurrent first messages cannot create duplicate sessions.
func (s *Store) append(key string, role domain.MessageRole, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	sess, ok := s.live(key, now)
	if !ok {
		sess = &session{createdAt: now}
		s.sessions[key] = sess
	}

	sess.messages = append(sess.messages, domain.Message{Role: role, Text: text, At: now})
	if overflow := len(sess.messages) - s.maxMessages; overflow > 0 {
		sess.messages = append([]domain.Message(nil), sess.messages[overflow:]...)
	}
	sess.lastActivity = now
}

// live must be called with s.mu held.
func (s *Store) live(key string, now time.Time) (*session, bool) {
	sess, ok := s.sessions[key]
	if !ok {
		return nil, false
	}
	if s.idleExpired(sess, now) {
		delete(s.sessions, key)
		s.logger.Debug("conversation expired on access", zap.String("session", key))
		return nil, false
	}

	return sess, true
}

func (s *Store) idleExpired(sess *session, now time.Time) bool {
	return now.Sub(sess.lastActivity) > s.idle
}
