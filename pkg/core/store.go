package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// Store is the authoritative in-memory, ordered collection of notes.
// It is loaded from and flushed to a Storage as a single document.
//
// Store is not safe for concurrent use; Service serializes access to it.
type Store struct {
	storage   Storage
	namespace string
	policy    TitlePolicy
	logger    *slog.Logger

	notes  []Note
	byID   map[string]int
	titles *TitleIndex
}

// StoreConfig holds the configuration for a Store.
type StoreConfig struct {
	// Namespace is the storage key. Defaults to DefaultNamespace.
	Namespace string
	// Policy resolves duplicate titles. Defaults to TitleFirstMatch.
	Policy TitlePolicy
	Logger *slog.Logger
}

// NewStore creates an empty store backed by storage.
func NewStore(storage Storage, config StoreConfig) *Store {
	if config.Namespace == "" {
		config.Namespace = DefaultNamespace
	}
	if config.Policy == "" {
		config.Policy = TitleFirstMatch
	}
	if config.Logger == nil {
		config.Logger = slog.New(slog.DiscardHandler)
	}

	s := &Store{
		storage:   storage,
		namespace: config.Namespace,
		policy:    config.Policy,
		logger:    config.Logger,
	}
	s.reindex()
	return s
}

// Namespace returns the storage key the store reads and writes.
func (s *Store) Namespace() string {
	return s.namespace
}

// Load replaces the in-memory collection with the persisted one.
//
// Absent or malformed data yields an empty collection and no error.
// Records without an ID are dropped and duplicate IDs keep their first
// occurrence. Tags are re-derived from content.
// Only a failing storage transport is reported.
func (s *Store) Load(ctx context.Context) ([]Note, error) {
	data, err := s.storage.Get(ctx, s.namespace)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			s.replace(nil)
			return s.Notes(), nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", s.namespace, err)
	}

	notes, err := decodeNotes(data)
	if err != nil {
		s.logger.Warn("discarding malformed note collection", "namespace", s.namespace, "error", err)
		notes = nil
	}

	s.replace(notes)
	s.logger.Debug("loaded notes", "namespace", s.namespace, "count", len(s.notes))
	return s.Notes(), nil
}

// Save replaces the collection with notes and flushes it.
func (s *Store) Save(ctx context.Context, notes []Note) error {
	s.replace(notes)
	return s.Flush(ctx)
}

// Flush writes the current collection to storage as one document.
func (s *Store) Flush(ctx context.Context) error {
	data, err := encodeNotes(s.notes)
	if err != nil {
		return fmt.Errorf("failed to encode notes: %w", err)
	}
	if err := s.storage.Set(ctx, s.namespace, data); err != nil {
		return fmt.Errorf("failed to write %s: %w", s.namespace, err)
	}
	s.logger.Debug("flushed notes", "namespace", s.namespace, "count", len(s.notes), "bytes", len(data))
	return nil
}

// Upsert inserts n if its ID is unknown, otherwise replaces the stored note
// in place. Title and tags are normalized before storing.
// It returns the stored copy. Notes must already carry an ID.
func (s *Store) Upsert(n Note) (Note, error) {
	if n.ID == "" {
		return Note{}, ErrEmptyID
	}
	n = n.clone()
	n.Title = normalizeTitle(n.Title)
	n.Tags = ExtractTags(n.Content)

	if i, ok := s.byID[n.ID]; ok {
		s.notes[i] = n
	} else {
		s.notes = append(s.notes, n)
	}
	s.reindex()
	return n.clone(), nil
}

// Remove deletes the note with the given ID. It reports whether a note was removed;
// removing an unknown ID is a no-op.
func (s *Store) Remove(id string) bool {
	i, ok := s.byID[id]
	if !ok {
		return false
	}
	s.notes = append(s.notes[:i], s.notes[i+1:]...)
	s.reindex()
	return true
}

// FindByID returns the note with the given ID.
func (s *Store) FindByID(id string) (Note, bool) {
	i, ok := s.byID[id]
	if !ok {
		return Note{}, false
	}
	return s.notes[i].clone(), true
}

// FindByTitle resolves title according to the store's TitlePolicy.
func (s *Store) FindByTitle(title string) (Note, bool) {
	i := s.titles.Lookup(title, s.notes, s.policy)
	if i < 0 {
		return Note{}, false
	}
	return s.notes[i].clone(), true
}

// TitleTaken reports whether title is carried by a note other than exceptID.
func (s *Store) TitleTaken(title, exceptID string) bool {
	return s.titles.Taken(normalizeTitle(title), exceptID, s.notes)
}

// DuplicateTitles returns every ambiguous title with the IDs sharing it.
func (s *Store) DuplicateTitles() map[string][]string {
	return s.titles.Duplicates(s.notes)
}

// Notes returns a copy of the collection in store order.
func (s *Store) Notes() []Note {
	out := make([]Note, len(s.notes))
	for i, n := range s.notes {
		out[i] = n.clone()
	}
	return out
}

// Len returns the number of notes.
func (s *Store) Len() int {
	return len(s.notes)
}

// replace swaps the whole collection, enforcing the store invariants.
func (s *Store) replace(notes []Note) {
	s.notes = make([]Note, 0, len(notes))
	seen := make(map[string]struct{}, len(notes))
	for _, n := range notes {
		if n.ID == "" {
			s.logger.Warn("dropping note without id", "title", n.Title)
			continue
		}
		if _, dup := seen[n.ID]; dup {
			s.logger.Warn("dropping duplicate note id", "id", n.ID)
			continue
		}
		seen[n.ID] = struct{}{}

		n = n.clone()
		n.Title = normalizeTitle(n.Title)
		n.Tags = ExtractTags(n.Content)
		s.notes = append(s.notes, n)
	}
	s.reindex()
}

func (s *Store) reindex() {
	s.byID = make(map[string]int, len(s.notes))
	for i, n := range s.notes {
		s.byID[n.ID] = i
	}
	s.titles = NewTitleIndex(s.notes)
}
