package fs

import (
	"context"
	"fmt"
	"time"

	"github.com/aretw0/lifecycle"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"

	"github.com/aretw0/notegraph/pkg/core"
)

// DebounceInterval coalesces bursts of filesystem events for the same key.
const DebounceInterval = 50 * time.Millisecond

// Watch reports changes of keys matching pattern (doublestar syntax, matched
// against the key without extension). Writes made through Set are reported too.
// The returned channel is closed when ctx is done or the watcher fails.
func (s *Storage) Watch(ctx context.Context, pattern string) (<-chan core.Event, error) {
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid watch pattern %q", pattern)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Add(s.Path); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", s.Path, err)
	}

	events := make(chan core.Event, 64)
	s.setWatcherActive(true)

	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer close(events)
		defer s.setWatcherActive(false)
		defer watcher.Close()
		return s.watchLoop(ctx, watcher, pattern, events)
	}, lifecycle.WithErrorHandler(func(err error) {
		s.config.Logger.Error("watcher stopped", "error", err)
		if s.config.ErrorHandler != nil {
			s.config.ErrorHandler(err)
		}
	}))

	return events, nil
}

// watchLoop filters raw events, debounces them per key and forwards them.
func (s *Storage) watchLoop(ctx context.Context, watcher *fsnotify.Watcher, pattern string, out chan<- core.Event) error {
	pending := make(map[string]core.Event)
	var order []string

	// Armed by the first event. A stopped timer delivers no stale tick.
	timer := time.NewTimer(DebounceInterval)
	timer.Stop()
	defer timer.Stop()

	flush := func() bool {
		for _, key := range order {
			select {
			case out <- pending[key]:
			case <-ctx.Done():
				return false
			}
		}
		clear(pending)
		order = order[:0]
		return true
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case <-timer.C:
			if !flush() {
				return nil
			}

		case event, ok := <-watcher.Events:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher events channel closed")
			}

			s.config.Logger.Debug("event received", "name", event.Name, "op", event.Op.String())

			key, ok := keyOf(event.Name)
			if !ok {
				continue
			}
			if match, _ := doublestar.Match(pattern, key); !match {
				continue
			}
			eType := mapEventType(event)
			if eType == "" {
				continue
			}

			if _, seen := pending[key]; !seen {
				order = append(order, key)
			}
			pending[key] = core.Event{Type: eType, Key: key, Timestamp: time.Now().Unix()}
			timer.Reset(DebounceInterval)

		case wErr, ok := <-watcher.Errors:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher errors channel closed")
			}
			s.config.Logger.Error("fsnotify error", "error", wErr)
			if s.config.ErrorHandler != nil {
				s.config.ErrorHandler(wErr)
			}
		}
	}
}

func mapEventType(event fsnotify.Event) core.EventType {
	switch {
	case event.Has(fsnotify.Create):
		return core.EventCreate
	case event.Has(fsnotify.Write):
		return core.EventModify
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		return core.EventDelete
	default:
		return ""
	}
}
