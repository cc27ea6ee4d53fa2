// Package secrets abstracts per-tenant credential lookup. The mechanics of
// secret storage are an external concern; this package only defines the
// lookup contract plus an environment-backed implementation for deployments
// that inject secrets as env vars.
package secrets

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrNotFound is returned when a named secret does not exist.
var ErrNotFound = errors.New("secret not found")

// Store resolves named secrets. Names are lower-case, slash-separated, e.g.
// "ab/registry-client-id" for tenant initials "AB".
type Store interface {
	Get(ctx context.Context, name string) (string, error)
}

// EnvStore resolves secrets from environment variables. The secret name is
// upper-cased, non-alphanumeric runes become underscores, and the configured
// prefix is prepended: "ab/registry-client-id" -> "TENANT_AB_REGISTRY_CLIENT_ID".
type EnvStore struct {
	prefix string
}

// NewEnvStore creates an environment-backed secret store.
func NewEnvStore(prefix string) *EnvStore {
	return &EnvStore{prefix: prefix}
}

// Get implements Store.
func (s *EnvStore) Get(_ context.Context, name string) (string, error) {
	key := s.envKey(name)
	value, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(value) == "" {
		return "", fmt.Errorf("%s (%s): %w", name, key, ErrNotFound)
	}
	return value, nil
}

func (s *EnvStore) envKey(name string) string {
	mapped := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r - ('a' - 'A')
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		default:
			return '_'
		}
	}, name)

	if s.prefix == "" {
		return mapped
	}
	return s.prefix + "_" + mapped
}

var _ Store = (*EnvStore)(nil)
