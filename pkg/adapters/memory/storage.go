// Package memory provides an in-process core.Storage, used for tests and
// ephemeral sessions.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/aretw0/introspection"
	"github.com/aretw0/lifecycle"
	"github.com/bmatcuk/doublestar/v4"

	"github.com/aretw0/notegraph/pkg/core"
)

// Storage keeps blobs in a map. Values are copied in and out.
type Storage struct {
	mu          sync.RWMutex
	data        map[string][]byte
	readOnly    bool
	subscribers map[int]*subscriber
	nextSub     int
}

type subscriber struct {
	pattern string
	ch      chan core.Event
}

// Option configures a memory Storage.
type Option func(*Storage)

// WithReadOnly rejects every Set with core.ErrReadOnly.
func WithReadOnly(readOnly bool) Option {
	return func(s *Storage) {
		s.readOnly = readOnly
	}
}

// WithData seeds the storage.
func WithData(data map[string][]byte) Option {
	return func(s *Storage) {
		for k, v := range data {
			s.data[k] = append([]byte(nil), v...)
		}
	}
}

// New creates an empty memory storage.
func New(opts ...Option) *Storage {
	s := &Storage{
		data:        make(map[string][]byte),
		subscribers: make(map[int]*subscriber),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Initialize is a no-op.
func (s *Storage) Initialize(ctx context.Context) error {
	return nil
}

// Get returns a copy of the blob under key.
func (s *Storage) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.data[key]
	if !ok {
		return nil, fmt.Errorf("key %s: %w", key, core.ErrNotFound)
	}
	return append([]byte(nil), v...), nil
}

// Set stores a copy of data under key and notifies watchers.
func (s *Storage) Set(ctx context.Context, key string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.readOnly {
		return core.ErrReadOnly
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	eType := core.EventModify
	if _, exists := s.data[key]; !exists {
		eType = core.EventCreate
	}
	s.data[key] = append([]byte(nil), data...)
	s.notify(core.Event{Type: eType, Key: key, Timestamp: time.Now().Unix()})
	return nil
}

// Watch reports every Set of a key matching pattern (doublestar syntax).
// Events are dropped for subscribers that do not keep up.
func (s *Storage) Watch(ctx context.Context, pattern string) (<-chan core.Event, error) {
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid watch pattern %q", pattern)
	}

	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	sub := &subscriber{pattern: pattern, ch: make(chan core.Event, 16)}
	s.subscribers[id] = sub
	s.mu.Unlock()

	lifecycle.Go(ctx, func(ctx context.Context) error {
		<-ctx.Done()
		s.mu.Lock()
		delete(s.subscribers, id)
		close(sub.ch)
		s.mu.Unlock()
		return nil
	})

	return sub.ch, nil
}

// notify must be called with s.mu held.
func (s *Storage) notify(e core.Event) {
	for _, sub := range s.subscribers {
		if ok, _ := doublestar.Match(sub.pattern, e.Key); !ok {
			continue
		}
		select {
		case sub.ch <- e:
		default:
		}
	}
}

// Keys returns the stored keys.
func (s *Storage) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	return keys
}

// StorageState exposes internal state for observability.
type StorageState struct {
	Keys     int  `json:"keys"`
	Watchers int  `json:"watchers"`
	ReadOnly bool `json:"read_only"`
}

// State implements introspection.Introspectable.
func (s *Storage) State() any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return StorageState{
		Keys:     len(s.data),
		Watchers: len(s.subscribers),
		ReadOnly: s.readOnly,
	}
}

// ComponentType implements introspection.Component.
func (s *Storage) ComponentType() string {
	return "memory"
}

var (
	_ core.Storage                 = (*Storage)(nil)
	_ core.Watchable               = (*Storage)(nil)
	_ introspection.Introspectable = (*Storage)(nil)
	_ introspection.Component      = (*Storage)(nil)
)
