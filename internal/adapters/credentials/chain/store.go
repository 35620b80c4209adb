package chain

import (
	"context"
	"errors"
	"fmt"

	envstore "github.com/bnema/shopvoice/internal/adapters/credentials/env"
	filestore "github.com/bnema/shopvoice/internal/adapters/credentials/file"
	passstore "github.com/bnema/shopvoice/internal/adapters/credentials/pass"
	"github.com/bnema/shopvoice/internal/ports"
)

// Store tries primary first and falls back on any error except cancellation.
type Store struct {
	primary  ports.CredentialStore
	fallback ports.CredentialStore
}

var _ ports.CredentialStore = (*Store)(nil)

var (
	errNilPrimaryStore  = errors.New("primary credential store is nil")
	errNilFallbackStore = errors.New("fallback credential store is nil")
)

func NewStore(primary ports.CredentialStore, fallback ports.CredentialStore) *Store {
	store, err := NewStoreChecked(primary, fallback)
	if err != nil {
		panic(err)
	}

	return store
}

func NewStoreChecked(primary ports.CredentialStore, fallback ports.CredentialStore) (*Store, error) {
	if primary == nil {
		return nil, errNilPrimaryStore
	}
	if fallback == nil {
		return nil, errNilFallbackStore
	}

	return &Store{primary: primary, fallback: fallback}, nil
}

// NewDefault reads the environment first, then pass, then files under fileRoot.
// Writes skip the read-only environment store.
func NewDefault(fileRoot string) (*Store, error) {
	persistent, err := NewStoreChecked(passstore.NewStore(), filestore.NewStore(fileRoot))
	if err != nil {
		return nil, err
	}

	return NewStoreChecked(envstore.NewStore(), persistent)
}

func (s *Store) Put(ctx context.Context, ref string, value string) error {
	err := s.primary.Put(ctx, ref, value)
	if err == nil {
		return nil
	}
	if shouldSkipFallback(err) {
		return err
	}

	fallbackErr := s.fallback.Put(ctx, ref, value)
	if fallbackErr == nil {
		return nil
	}

	return fmt.Errorf("primary backend put failed: %w; fallback backend put failed: %w", err, fallbackErr)
}

func (s *Store) Get(ctx context.Context, ref string) (string, error) {
	value, err := s.primary.Get(ctx, ref)
	if err == nil {
		return value, nil
	}
	if shouldSkipFallback(err) {
		return "", err
	}

	fallbackValue, fallbackErr := s.fallback.Get(ctx, ref)
	if fallbackErr == nil {
		return fallbackValue, nil
	}

	return "", fmt.Errorf("primary backend get failed: %w; fallback backend get failed: %w", err, fallbackErr)
}

// Delete removes ref from both stores so a stale copy cannot resurface.
func (s *Store) Delete(ctx context.Context, ref string) error {
	err := s.primary.Delete(ctx, ref)
	if shouldSkipFallback(err) {
		return err
	}

	fallbackErr := s.fallback.Delete(ctx, ref)
	if err == nil || fallbackErr == nil {
		return nil
	}

	return fmt.Errorf("primary backend delete failed: %w; fallback backend delete failed: %w", err, fallbackErr)
}

func shouldSkipFallback(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
