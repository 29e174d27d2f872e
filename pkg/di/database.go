package di

import (
	"context"
	"fmt"

	"ice-breakun/backend/internal/repository"
	"ice-breakun/backend/pkg/config"
	"ice-breakun/backend/pkg/logger"
	"ice-breakun/backend/pkg/secrets"

	"gorm.io/gorm"
)

// SecretsManager builds the secrets source described by cfg.Vault
func SecretsManager(cfg *config.Config, log *logger.Logger) (secrets.Manager, error) {
	return secrets.NewManager(secrets.VaultConfig{
		Address:     cfg.Vault.Address,
		Token:       cfg.Vault.Token,
		Namespace:   cfg.Vault.Namespace,
		Mount:       cfg.Vault.Mount,
		SecretsPath: cfg.Vault.SecretsPath,
	}, log)
}

// OpenDatabase resolves the postgres DSN from secrets when it is not set,
// opens the storage handle and brings the schema up to date.
func OpenDatabase(ctx context.Context, cfg *config.Config, log *logger.Logger) (*gorm.DB, error) {
	if cfg.Database.Driver == config.DriverPostgres && cfg.Database.DSN == "" {
		manager, err := SecretsManager(cfg, log)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize secrets: %w", err)
		}
		cfg.Database.DSN = secrets.GetSecretWithDefault(ctx, manager, "database_dsn", "")
	}

	db, err := config.NewDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if err := repository.Migrate(db); err != nil {
		_ = config.Close(db)
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	log.Info("Database ready", "driver", cfg.Database.Driver)
	return db, nil
}
