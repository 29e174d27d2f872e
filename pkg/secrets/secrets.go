// Package secrets resolves credentials from HashiCorp Vault, falling back to
// the environment.
package secrets

import (
	"context"
	"errors"
	"os"
	"strings"
)

// ErrSecretNotFound is returned when no source knows the key
var ErrSecretNotFound = errors.New("secret not found")

// Manager provides access to secrets
type Manager interface {
	// GetSecret retrieves a secret by key, e.g. "database_dsn"
	GetSecret(ctx context.Context, key string) (string, error)
}

// GetSecretWithDefault returns defaultValue when m cannot resolve key
func GetSecretWithDefault(ctx context.Context, m Manager, key, defaultValue string) string {
	if m == nil {
		return defaultValue
	}
	value, err := m.GetSecret(ctx, key)
	if err != nil || value == "" {
		return defaultValue
	}
	return value
}

// EnvManager reads secrets from environment variables.
// The key "database-dsn" or "database.dsn" maps to DATABASE_DSN.
type EnvManager struct{}

func (EnvManager) GetSecret(_ context.Context, key string) (string, error) {
	value := os.Getenv(envKey(key))
	if value == "" {
		return "", ErrSecretNotFound
	}
	return value, nil
}

func envKey(key string) string {
	return strings.ToUpper(strings.NewReplacer("-", "_", ".", "_").Replace(key))
}
