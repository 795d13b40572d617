// Package sqlite stores note collections in a SQLite key-value table.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/aretw0/introspection"
	_ "modernc.org/sqlite"

	"github.com/aretw0/notegraph/pkg/core"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

const schema = `CREATE TABLE IF NOT EXISTS kv (
	key        TEXT PRIMARY KEY,
	value      BLOB NOT NULL,
	updated_at INTEGER NOT NULL
)`

// Storage implements core.Storage on a single SQLite table.
type Storage struct {
	sqlDB    *sql.DB
	path     string
	readOnly bool
	logger   *slog.Logger
}

// Config holds the configuration for the SQLite storage.
type Config struct {
	Path     string
	ReadOnly bool
	Logger   *slog.Logger
}

// Open opens the database at config.Path. Call Initialize to create the schema.
func Open(config Config) (*Storage, error) {
	path := strings.TrimSpace(config.Path)
	if path == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	if config.Logger == nil {
		config.Logger = slog.New(slog.DiscardHandler)
	}

	dsn := path
	if path != MemoryPath {
		path = filepath.Clean(path)
		dsn = path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
	}

	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if path == MemoryPath {
		// Every connection to :memory: is a distinct database.
		sqlDB.SetMaxOpenConns(1)
	}

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	return &Storage{
		sqlDB:    sqlDB,
		path:     path,
		readOnly: config.ReadOnly,
		logger:   config.Logger,
	}, nil
}

// Initialize creates the kv table.
func (s *Storage) Initialize(ctx context.Context) error {
	if s.readOnly {
		return nil
	}
	if _, err := s.sqlDB.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Close releases the underlying SQLite connection.
func (s *Storage) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Get loads the blob stored under key.
func (s *Storage) Get(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, fmt.Errorf("storage key is required")
	}

	var value []byte
	err := s.sqlDB.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("key %s: %w", key, core.ErrNotFound)
	}
	if err != nil {
		if s.readOnly && strings.Contains(err.Error(), "no such table") {
			return nil, fmt.Errorf("key %s: %w", key, core.ErrNotFound)
		}
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	return value, nil
}

// Set upserts the blob under key in a single statement.
func (s *Storage) Set(ctx context.Context, key string, data []byte) error {
	if s.readOnly {
		return core.ErrReadOnly
	}
	if key == "" {
		return fmt.Errorf("storage key is required")
	}
	if data == nil {
		data = []byte{}
	}

	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET
		    value = excluded.value,
		    updated_at = excluded.updated_at`,
		key, data, time.Now().UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	s.logger.Debug("stored key", "key", key, "bytes", len(data))
	return nil
}

// UpdatedAt reports when key was last written.
func (s *Storage) UpdatedAt(ctx context.Context, key string) (time.Time, error) {
	var ms int64
	err := s.sqlDB.QueryRowContext(ctx, `SELECT updated_at FROM kv WHERE key = ?`, key).Scan(&ms)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, fmt.Errorf("key %s: %w", key, core.ErrNotFound)
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("get %s: %w", key, err)
	}
	return time.UnixMilli(ms).UTC(), nil
}

// StorageState exposes internal state for observability.
type StorageState struct {
	Path     string `json:"path"`
	ReadOnly bool   `json:"read_only"`
	OpenConn int    `json:"open_connections"`
}

// State implements introspection.Introspectable.
func (s *Storage) State() any {
	return StorageState{
		Path:     s.path,
		ReadOnly: s.readOnly,
		OpenConn: s.sqlDB.Stats().OpenConnections,
	}
}

// ComponentType implements introspection.Component.
func (s *Storage) ComponentType() string {
	return "sqlite"
}

var (
	_ core.Storage                 = (*Storage)(nil)
	_ introspection.Introspectable = (*Storage)(nil)
	_ introspection.Component      = (*Storage)(nil)
)
