// Package lifecycle exposes storage change streams as lifecycle sources.
package lifecycle

import (
	"context"
	"slices"

	"github.com/aretw0/lifecycle"

	"github.com/aretw0/notegraph/pkg/core"
)

// Option configures a change source.
type Option func(*changeSource)

// WithTypes keeps only the changes of the given kinds. Without it every
// change is forwarded.
func WithTypes(types ...core.EventType) Option {
	return func(s *changeSource) {
		s.types = append(s.types, types...)
	}
}

// changeSource relays the change feed of a note collection, for example the
// one returned by core.Service.Watch.
type changeSource struct {
	changes <-chan core.Event
	types   []core.EventType
	out     chan lifecycle.Event
}

// NewSource wraps a storage change feed as a lifecycle.Source.
// core.Event satisfies lifecycle.Event through its String method.
func NewSource(changes <-chan core.Event, opts ...Option) lifecycle.Source {
	s := &changeSource{
		changes: changes,
		out:     make(chan lifecycle.Event),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *changeSource) Events() <-chan lifecycle.Event {
	return s.out
}

// Start relays changes in the background. Events() is closed once the
// storage feed ends or ctx is done.
func (s *changeSource) Start(ctx context.Context) error {
	lifecycle.Go(ctx, s.relay)
	return nil
}

func (s *changeSource) relay(ctx context.Context) error {
	defer close(s.out)
	for {
		var change core.Event
		var ok bool
		select {
		case <-ctx.Done():
			return nil
		case change, ok = <-s.changes:
		}
		if !ok {
			return nil
		}
		if !s.wants(change) {
			continue
		}
		select {
		case s.out <- change:
		case <-ctx.Done():
			return nil
		}
	}
}

func (s *changeSource) wants(change core.Event) bool {
	return len(s.types) == 0 || slices.Contains(s.types, change.Type)
}
