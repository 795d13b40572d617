package notegraph

import (
	"context"
	"log/slog"
	"time"

	"github.com/aretw0/notegraph/internal/platform"
	"github.com/aretw0/notegraph/pkg/core"
)

// --- Configuration ---

// Option defines a functional option for configuring the engine.
type Option = platform.Option

// Config is the file and environment configuration of a vault.
type Config = platform.Config

// Adapter names.
const (
	AdapterFS     = platform.AdapterFS
	AdapterSQLite = platform.AdapterSQLite
	AdapterMemory = platform.AdapterMemory
)

// WithAutoInit creates the vault (and its git repository) when missing.
func WithAutoInit(auto bool) Option {
	return platform.WithAutoInit(auto)
}

// WithVersioning enables or disables git versioning of fs vaults.
func WithVersioning(enabled bool) Option {
	return platform.WithVersioning(enabled)
}

// WithMustExist ensures the vault directory must already exist.
func WithMustExist(must bool) Option {
	return platform.WithMustExist(must)
}

// WithLogger sets the logger for the service.
func WithLogger(logger *slog.Logger) Option {
	return platform.WithLogger(logger)
}

// WithStorage injects a custom storage adapter.
func WithStorage(storage core.Storage) Option {
	return platform.WithStorage(storage)
}

// WithAdapter selects the storage adapter by name.
func WithAdapter(name string) Option {
	return platform.WithAdapter(name)
}

// WithNamespace sets the storage key of the note collection.
func WithNamespace(namespace string) Option {
	return platform.WithNamespace(namespace)
}

// WithTitlePolicy sets how ambiguous titles resolve.
func WithTitlePolicy(policy core.TitlePolicy) Option {
	return platform.WithTitlePolicy(policy)
}

// WithClock overrides the time source of note timestamps.
func WithClock(now func() time.Time) Option {
	return platform.WithClock(now)
}

// WithIDGenerator overrides note ID generation.
func WithIDGenerator(newID func() string) Option {
	return platform.WithIDGenerator(newID)
}

// WithSystemDir sets the hidden directory name of fs vaults.
func WithSystemDir(name string) Option {
	return platform.WithSystemDir(name)
}

// WithEventBuffer sets the size of the Watch channel.
func WithEventBuffer(size int) Option {
	return platform.WithEventBuffer(size)
}

// WithReadOnly rejects every write with core.ErrReadOnly.
func WithReadOnly(enabled bool) Option {
	return platform.WithReadOnly(enabled)
}

// WithWatcherErrorHandler registers a callback for background watcher errors.
func WithWatcherErrorHandler(fn func(error)) Option {
	return platform.WithWatcherErrorHandler(fn)
}

// --- Factory ---

// New opens the storage at uri and returns a loaded service.
func New(ctx context.Context, uri string, opts ...Option) (*core.Service, error) {
	return platform.New(ctx, uri, opts...)
}

// Init opens and initializes a storage explicitly.
func Init(ctx context.Context, uri string, opts ...Option) (core.Storage, error) {
	return platform.Init(ctx, uri, opts...)
}

// LoadConfig reads notegraph.yaml at path and overlays NOTEGRAPH_* variables.
func LoadConfig(path string) (Config, error) {
	return platform.LoadConfig(path)
}

// FindVaultRoot walks up from startDir looking for a vault root indicator.
func FindVaultRoot(startDir string) (string, error) {
	return platform.FindRoot(startDir)
}

// ConfigFile is the name of the vault configuration file.
const ConfigFile = platform.ConfigFile
