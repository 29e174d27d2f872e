package secrets

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"ice-breakun/backend/pkg/logger"

	vault "github.com/hashicorp/vault/api"
)

// ErrNoVaultToken is returned when Vault is addressed without a token
var ErrNoVaultToken = errors.New("no vault token provided")

// VaultConfig holds configuration for the Vault client
type VaultConfig struct {
	Address     string
	Token       string
	Namespace   string
	Mount       string
	SecretsPath string
	Timeout     time.Duration
	MaxRetries  int
	CacheTTL    time.Duration
}

// VaultManager reads keys from one KV v2 secret, with environment fallback
type VaultManager struct {
	client *vault.Client
	config VaultConfig
	env    EnvManager
	log    *logger.Logger

	mu       sync.RWMutex
	cache    map[string]string
	cachedAt time.Time
}

// NewManager returns a VaultManager when an address is configured and an
// EnvManager otherwise.
func NewManager(cfg VaultConfig, log *logger.Logger) (Manager, error) {
	if cfg.Address == "" {
		return EnvManager{}, nil
	}
	return NewVaultManager(cfg, log)
}

// NewVaultManager creates a new Vault manager instance
func NewVaultManager(cfg VaultConfig, log *logger.Logger) (*VaultManager, error) {
	if cfg.Token == "" {
		return nil, ErrNoVaultToken
	}
	if cfg.Mount == "" {
		cfg.Mount = "secret"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	if log == nil {
		log = logger.GetGlobal()
	}

	vaultConfig := vault.DefaultConfig()
	vaultConfig.Address = cfg.Address
	vaultConfig.Timeout = cfg.Timeout
	vaultConfig.MaxRetries = cfg.MaxRetries

	client, err := vault.NewClient(vaultConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create vault client: %w", err)
	}
	client.SetToken(cfg.Token)
	if cfg.Namespace != "" {
		client.SetNamespace(cfg.Namespace)
	}

	return &VaultManager{
		client: client,
		config: cfg,
		log:    log.WithComponent("secrets"),
	}, nil
}

// GetSecret retrieves a key from Vault, falling back to the environment when
// Vault does not hold it.
func (m *VaultManager) GetSecret(ctx context.Context, key string) (string, error) {
	data, err := m.load(ctx)
	if err != nil && !errors.Is(err, vault.ErrSecretNotFound) {
		return "", err
	}

	if value, ok := data[key]; ok && value != "" {
		return value, nil
	}

	m.log.Warn("Secret not found in Vault, falling back to environment", "key", key)
	return m.env.GetSecret(ctx, key)
}

func (m *VaultManager) load(ctx context.Context) (map[string]string, error) {
	m.mu.RLock()
	if m.cache != nil && time.Since(m.cachedAt) < m.config.CacheTTL {
		data := m.cache
		m.mu.RUnlock()
		return data, nil
	}
	m.mu.RUnlock()

	secret, err := m.client.KVv2(m.config.Mount).Get(ctx, m.config.SecretsPath)
	if err != nil {
		if !errors.Is(err, vault.ErrSecretNotFound) {
			m.log.Error("Failed to read secret from Vault", "path", m.config.SecretsPath, "error", err.Error())
			return nil, fmt.Errorf("failed to read secret: %w", err)
		}
		return nil, err
	}

	data := make(map[string]string, len(secret.Data))
	for k, v := range secret.Data {
		if s, ok := v.(string); ok {
			data[k] = s
		}
	}

	m.mu.Lock()
	m.cache = data
	m.cachedAt = time.Now()
	m.mu.Unlock()

	return data, nil
}
