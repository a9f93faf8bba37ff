package store

import (
	"context"
	"time"

	"tixgate/internal/domain/session/model"
)

// Store defines the behaviour required by the session manager. A store
// holds at most one credential per terminal.
type Store interface {
	// Save persists the credential; readers never observe a torn state.
	Save(ctx context.Context, cred model.Credential) error
	// Load returns the credential and whether one is present.
	Load(ctx context.Context) (model.Credential, bool, error)
	// Clear removes the credential. Clearing an empty store is a no-op.
	Clear(ctx context.Context) error
	Close(ctx context.Context) error
}

// Config describes the high level store selection parameters.
type Config struct {
	Driver string
	TTL    time.Duration
	Redis  *RedisConfig
	SQLite *SQLiteConfig
	Memory *MemoryConfig
}

// MemoryConfig holds in-memory tuning knobs.
type MemoryConfig struct{}

// SQLiteConfig provides the database dependency.
type SQLiteConfig struct {
	DSN string
}

// RedisConfig captures connection options.
type RedisConfig struct {
	Addr     string
	Username string
	Password string
	DB       int
	Prefix   string
}
