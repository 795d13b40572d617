// Package fs stores note collections as JSON files in a vault directory,
// optionally versioned with git.
package fs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/notegraph/pkg/core"
	"github.com/aretw0/notegraph/pkg/git"
)

// Ext is the file extension of every stored key.
const Ext = ".json"

// Storage implements core.Storage using the filesystem and Git.
// Each key lives in <Path>/<key>.json.
type Storage struct {
	Path   string
	git    *git.Client
	config Config

	mu            sync.RWMutex
	watcherActive bool
	writes        int
	lastWrite     *time.Time
}

// Config holds the configuration for the filesystem storage.
type Config struct {
	Path      string
	AutoInit  bool
	Gitless   bool
	MustExist bool
	ReadOnly  bool
	Logger    *slog.Logger
	SystemDir string // e.g. ".notegraph"
	// ErrorHandler receives errors raised by background watchers.
	ErrorHandler func(error)
}

// NewStorage creates a new filesystem-backed storage.
func NewStorage(config Config) *Storage {
	if config.Logger == nil {
		config.Logger = slog.New(slog.DiscardHandler)
	}
	if config.SystemDir == "" {
		config.SystemDir = ".notegraph"
	}
	return &Storage{
		Path:   config.Path,
		git:    git.NewClient(config.Path, config.SystemDir+".lock", config.Logger),
		config: config,
	}
}

// Initialize creates the vault directory and, unless gitless, the git repository.
func (s *Storage) Initialize(ctx context.Context) error {
	if s.config.MustExist || s.config.ReadOnly {
		info, err := os.Stat(s.Path)
		if os.IsNotExist(err) {
			return fmt.Errorf("vault path does not exist: %s", s.Path)
		}
		if err != nil {
			return fmt.Errorf("failed to stat vault: %w", err)
		}
		if !info.IsDir() {
			return fmt.Errorf("vault path is not a directory: %s", s.Path)
		}
	} else {
		if err := os.MkdirAll(filepath.Join(s.Path, s.config.SystemDir), 0755); err != nil {
			return fmt.Errorf("failed to create vault directory: %w", err)
		}
	}

	if s.config.Gitless || s.config.ReadOnly {
		return nil
	}

	if !git.IsInstalled() {
		return fmt.Errorf("git is not installed")
	}

	wasNewRepo := false
	if !s.git.IsRepo(ctx) {
		if !s.config.AutoInit {
			return fmt.Errorf("path is not a git repository: %s", s.Path)
		}
		if err := s.git.Init(ctx); err != nil {
			return fmt.Errorf("failed to git init: %w", err)
		}
		wasNewRepo = true
	}

	mod, err := s.ensureIgnore()
	if err != nil {
		return fmt.Errorf("failed to ensure .gitignore: %w", err)
	}

	if mod && wasNewRepo {
		if err := s.git.Add(ctx, ".gitignore"); err != nil {
			return fmt.Errorf("failed to add .gitignore: %w", err)
		}
		if err := s.git.Commit(ctx, git.FormatMessage(git.CommitTypeChore, "", "configure "+s.config.SystemDir+" ignore", "")); err != nil {
			return fmt.Errorf("failed to commit .gitignore: %w", err)
		}
	}

	return nil
}

// ensureIgnore appends the system directory and lock file to .gitignore.
// It reports whether the file was modified.
func (s *Storage) ensureIgnore() (bool, error) {
	ignorePath := filepath.Join(s.Path, ".gitignore")
	entries := []string{s.config.SystemDir + "/", s.config.SystemDir + ".lock"}

	content, err := os.ReadFile(ignorePath)
	if err != nil && !os.IsNotExist(err) {
		return false, err
	}

	present := make(map[string]bool)
	for _, line := range strings.Split(string(content), "\n") {
		present[strings.TrimSpace(line)] = true
	}

	var missing []string
	for _, e := range entries {
		if !present[e] {
			missing = append(missing, e)
		}
	}
	if len(missing) == 0 {
		return false, nil
	}

	f, err := os.OpenFile(ignorePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return false, err
	}
	defer f.Close()

	if len(content) > 0 && !strings.HasSuffix(string(content), "\n") {
		if _, err := f.WriteString("\n"); err != nil {
			return false, err
		}
	}
	if _, err := f.WriteString(strings.Join(missing, "\n") + "\n"); err != nil {
		return false, err
	}
	return true, nil
}

// Get reads the blob stored under key.
func (s *Storage) Get(ctx context.Context, key string) ([]byte, error) {
	filename, err := s.filename(key)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filepath.Join(s.Path, filename))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("key %s: %w", key, core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filename, err)
	}
	return data, nil
}

// Set writes the blob atomically and, unless gitless, commits it.
// The commit message is taken from core.ChangeReasonKey when present.
func (s *Storage) Set(ctx context.Context, key string, data []byte) error {
	if s.config.ReadOnly {
		return core.ErrReadOnly
	}

	filename, err := s.filename(key)
	if err != nil {
		return err
	}

	if err := WriteFileAtomic(filepath.Join(s.Path, filename), data, 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	s.recordWrite()

	if s.config.Gitless {
		return nil
	}

	unlock, err := s.git.Lock(ctx)
	if err != nil {
		return fmt.Errorf("failed to acquire git lock: %w", err)
	}
	defer unlock()

	if err := s.git.Add(ctx, filename); err != nil {
		return fmt.Errorf("failed to git add: %w", err)
	}

	msg := git.FormatMessage(git.CommitTypeChore, "notes", "update "+key, "")
	if val, ok := ctx.Value(core.ChangeReasonKey).(string); ok && val != "" {
		msg = git.AppendTrailer(val)
	}
	if err := s.git.Commit(ctx, msg); err != nil {
		return fmt.Errorf("failed to git commit: %w", err)
	}
	return nil
}

// Sync synchronizes the vault with its git remote.
func (s *Storage) Sync(ctx context.Context) error {
	if s.config.Gitless {
		return fmt.Errorf("cannot sync in gitless mode: %w", core.ErrUnsupported)
	}
	if !s.git.IsRepo(ctx) {
		return fmt.Errorf("path is not a git repository: %s", s.Path)
	}

	unlock, err := s.git.Lock(ctx)
	if err != nil {
		return fmt.Errorf("failed to acquire git lock: %w", err)
	}
	defer unlock()

	return s.git.Sync(ctx)
}

// History returns the last n commit messages of the vault, newest first.
func (s *Storage) History(ctx context.Context, n int) ([]string, error) {
	if s.config.Gitless {
		return nil, fmt.Errorf("history: %w", core.ErrUnsupported)
	}
	return s.git.Log(ctx, n)
}

// IsGitInstalled checks if git is available in the system path.
func IsGitInstalled() bool {
	return git.IsInstalled()
}

// filename maps a key to its file name, rejecting keys that escape the vault.
func (s *Storage) filename(key string) (string, error) {
	if key == "" {
		return "", fmt.Errorf("empty storage key")
	}
	if strings.ContainsAny(key, `/\`) || key == "." || key == ".." || strings.HasPrefix(key, ".") {
		return "", fmt.Errorf("invalid storage key %q", key)
	}
	return key + Ext, nil
}

// keyOf maps a file path back to its key. ok is false for files that are not
// stored keys (other extensions, temp files, dotfiles).
func keyOf(path string) (string, bool) {
	base := filepath.Base(path)
	if filepath.Ext(base) != Ext || strings.HasPrefix(base, TempFilePrefix) || strings.HasPrefix(base, ".") {
		return "", false
	}
	return strings.TrimSuffix(base, Ext), true
}

func (s *Storage) recordWrite() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	s.writes++
	s.lastWrite = &now
}

var (
	_ core.Storage   = (*Storage)(nil)
	_ core.Watchable = (*Storage)(nil)
	_ core.Syncable  = (*Storage)(nil)
)
