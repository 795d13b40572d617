package platform

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aretw0/notegraph/pkg/adapters/fs"
	"github.com/aretw0/notegraph/pkg/adapters/memory"
	"github.com/aretw0/notegraph/pkg/adapters/sqlite"
	"github.com/aretw0/notegraph/pkg/core"
)

// DefaultSystemDir is the hidden directory marking an fs vault.
const DefaultSystemDir = ".notegraph"

// Init opens and initializes the storage selected by the options.
// The uri argument is adapter-specific: a directory for "fs", a database file
// for "sqlite", ignored for "memory".
func Init(ctx context.Context, uri string, opts ...Option) (core.Storage, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return initStorage(ctx, uri, o)
}

func initStorage(ctx context.Context, uri string, o *options) (core.Storage, error) {
	if o.storage != nil {
		return o.storage, nil
	}

	var storage core.Storage
	var err error

	switch o.adapter {
	case AdapterFS, "":
		storage, err = initFS(uri, o)
	case AdapterSQLite:
		storage, err = initSQLite(uri, o)
	case AdapterMemory:
		readOnly, _ := o.config["read_only"].(bool)
		storage = memory.New(memory.WithReadOnly(readOnly))
	default:
		return nil, fmt.Errorf("unknown adapter: %s", o.adapter)
	}
	if err != nil {
		return nil, err
	}

	if err := storage.Initialize(ctx); err != nil {
		if closer, ok := storage.(interface{ Close() error }); ok {
			_ = closer.Close()
		}
		return nil, err
	}
	return storage, nil
}

// initFS resolves the fs configuration, detecting git versioning when not set explicitly.
func initFS(path string, o *options) (core.Storage, error) {
	if path == "" {
		return nil, fmt.Errorf("vault path is required")
	}

	autoInit, _ := o.config["auto_init"].(bool)
	gitless, gitlessSet := o.config["gitless"].(bool)
	mustExist, _ := o.config["must_exist"].(bool)
	readOnly, _ := o.config["read_only"].(bool)
	systemDir, _ := o.config["system_dir"].(string)
	errorHandler, _ := o.config["watcher_error_handler"].(func(error))

	if systemDir == "" {
		systemDir = DefaultSystemDir
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve vault path: %w", err)
	}

	if !gitlessSet {
		gitless = detectGitless(abs, systemDir, autoInit)
		if gitless {
			o.log().Debug("auto-detected gitless mode", "reason", ".git missing", "path", abs)
		}
	}
	if !gitless && !fs.IsGitInstalled() {
		o.log().Warn("git not installed, falling back to gitless mode", "path", abs)
		gitless = true
	}

	return fs.NewStorage(fs.Config{
		Path:         abs,
		AutoInit:     autoInit,
		Gitless:      gitless,
		MustExist:    mustExist || !autoInit,
		ReadOnly:     readOnly,
		Logger:       o.log(),
		SystemDir:    systemDir,
		ErrorHandler: errorHandler,
	}), nil
}

// detectGitless decides the versioning mode of a vault.
// An existing .git means versioned. Without it, a fresh auto-initialized
// vault is versioned while an existing gitless vault or plain folder is not.
func detectGitless(path, systemDir string, autoInit bool) bool {
	if hasFile(path, ".git") {
		return false
	}
	if !autoInit {
		return true
	}
	return hasFile(path, systemDir)
}

func initSQLite(path string, o *options) (core.Storage, error) {
	if path == "" {
		return nil, fmt.Errorf("database path is required")
	}
	readOnly, _ := o.config["read_only"].(bool)
	autoInit, _ := o.config["auto_init"].(bool)

	if path != sqlite.MemoryPath {
		if _, err := os.Stat(path); os.IsNotExist(err) && !autoInit {
			return nil, fmt.Errorf("database does not exist: %s", path)
		}
		if autoInit {
			if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
	}

	return sqlite.Open(sqlite.Config{Path: path, ReadOnly: readOnly, Logger: o.log()})
}
