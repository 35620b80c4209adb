package env

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/bnema/shopvoice/internal/domain"
	"github.com/bnema/shopvoice/internal/ports"
)

const Prefix = "SHOPVOICE_CRED_"

var ErrReadOnly = errors.New("environment credential store is read-only")

// wellKnown maps conventional refs to the variables their SDKs already read.
var wellKnown = map[string][]string{
	"openai": {"OPENAI_API_KEY"},
	"gemini": {"GEMINI_API_KEY", "GOOGLE_API_KEY"},
}

type lookupFunc func(name string) (string, bool)

// Store resolves credentials from environment variables: SHOPVOICE_CRED_<REF>
// first, then the provider's conventional variable.
type Store struct {
	lookup lookupFunc
}

var _ ports.CredentialStore = (*Store)(nil)

func NewStore() *Store {
	return &Store{lookup: os.LookupEnv}
}

func NewStoreWithLookup(lookup func(name string) (string, bool)) *Store {
	return &Store{lookup: lookup}
}

func (s *Store) Get(ctx context.Context, ref string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	for _, name := range VariableNames(ref) {
		if value, ok := s.lookup(name); ok && strings.TrimSpace(value) != "" {
			return strings.TrimSpace(value), nil
		}
	}

	return "", fmt.Errorf("environment credential %q: %w", ref, domain.ErrCredentialNotFound)
}

func (s *Store) Put(context.Context, string, string) error {
	return ErrReadOnly
}

func (s *Store) Delete(context.Context, string) error {
	return ErrReadOnly
}

// VariableNames lists the variables consulted for ref, most specific first.
func VariableNames(ref string) []string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil
	}

	names := []string{Prefix + strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r - 'a' + 'A'
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		default:
			return '_'
		}
	}, ref)}

	return append(names, wellKnown[strings.ToLower(ref)]...)
}
