package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"ice-breakun/backend/pkg/logger"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// SQLiteDSN builds a DSN for a file-backed database with foreign keys enforced
// on every pooled connection.
func SQLiteDSN(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	if !strings.HasPrefix(path, "file:") {
		path = "file:" + path
	}
	return path + sep + "_foreign_keys=on&_busy_timeout=5000"
}

// MemoryDSN builds a DSN for a named in-memory database shared by the pool
func MemoryDSN(name string) string {
	return SQLiteDSN(fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
}

// Dialector picks the GORM dialector for the configured driver
func Dialector(cfg *Config) (gorm.Dialector, error) {
	switch cfg.Database.Driver {
	case DriverSQLite, "":
		if dir := filepath.Dir(cfg.Database.Path); dir != "." && !strings.HasPrefix(cfg.Database.Path, "file:") {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
		return sqlite.Open(SQLiteDSN(cfg.Database.Path)), nil
	case DriverPostgres:
		if cfg.Database.DSN == "" {
			return nil, fmt.Errorf("DATABASE_DSN must be set when DB_DRIVER=postgres")
		}
		return postgres.Open(cfg.Database.DSN), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}
}

// gormWriter sends GORM's slow-query and error lines to the structured logger
type gormWriter struct {
	log *logger.Logger
}

func (w gormWriter) Printf(format string, args ...any) {
	w.log.Warn(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

// GormConfig returns the GORM settings shared by the server, the CLI and tests.
// TranslateError lets the dialect turn driver codes into gorm.ErrDuplicatedKey and
// gorm.ErrForeignKeyViolated. Lookups that find nothing are expected and not logged.
func GormConfig(production bool) *gorm.Config {
	level := gormlogger.Warn
	if production {
		level = gormlogger.Error
	}
	return &gorm.Config{
		TranslateError: true,
		Logger:         newGormLogger(logger.GetGlobal(), level),
	}
}

func newGormLogger(log *logger.Logger, level gormlogger.LogLevel) gormlogger.Interface {
	return gormlogger.New(gormWriter{log: log.WithComponent("gorm")}, gormlogger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  level,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}

// NewDB opens the storage handle. The caller owns the returned handle and must Close it.
func NewDB(ctx context.Context, cfg *Config) (*gorm.DB, error) {
	dialector, err := Dialector(cfg)
	if err != nil {
		return nil, err
	}

	retries := cfg.Database.Retries
	if retries < 1 {
		retries = 1
	}

	var db *gorm.DB
	for i := 0; i < retries; i++ {
		db, err = gorm.Open(dialector, GormConfig(cfg.IsProduction()))
		if err == nil {
			err = Ping(ctx, db)
		}
		if err == nil {
			break
		}
		if i < retries-1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(cfg.Database.RetryDelay):
			}
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", retries, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database connection: %w", err)
	}

	if cfg.Database.Driver == DriverPostgres {
		sqlDB.SetMaxIdleConns(cfg.Database.MaxConns / 2)
		sqlDB.SetMaxOpenConns(cfg.Database.MaxConns)
		sqlDB.SetConnMaxLifetime(time.Hour)
		sqlDB.SetConnMaxIdleTime(10 * time.Minute)
	} else {
		// SQLite serialises writers anyway; one connection avoids "database is locked"
		sqlDB.SetMaxOpenConns(1)
	}

	return db, nil
}

// Ping checks if the database connection is working
func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database connection: %w", err)
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	return nil
}

// Close releases the pool behind a GORM handle
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
