package core

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/aretw0/lifecycle"
	"github.com/google/uuid"
)

// Service handles the business logic of the note graph.
// It owns the Store and serializes every access to it, so a load or save is
// never observed half-done.
type Service struct {
	mu          sync.RWMutex
	storage     Storage
	store       *Store
	policy      TitlePolicy
	logger      *slog.Logger
	now         func() time.Time
	newID       func() string
	eventBuffer int
}

// ServiceConfig holds the configuration for a Service.
type ServiceConfig struct {
	Namespace   string
	TitlePolicy TitlePolicy
	Logger      *slog.Logger
	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
	// NewID generates note IDs. Defaults to random UUIDs.
	NewID func() string
	// EventBuffer is the size of the Watch channel. Zero means 100.
	EventBuffer int
}

// NewService creates a new Service over storage. The store starts empty; call Load.
func NewService(storage Storage, config ServiceConfig) *Service {
	if config.Logger == nil {
		config.Logger = slog.New(slog.DiscardHandler)
	}
	if config.TitlePolicy == "" {
		config.TitlePolicy = TitleFirstMatch
	}
	if config.Now == nil {
		config.Now = time.Now
	}
	if config.NewID == nil {
		config.NewID = uuid.NewString
	}
	if config.EventBuffer <= 0 {
		config.EventBuffer = 100
	}

	return &Service{
		storage: storage,
		store: NewStore(storage, StoreConfig{
			Namespace: config.Namespace,
			Policy:    config.TitlePolicy,
			Logger:    config.Logger,
		}),
		policy:      config.TitlePolicy,
		logger:      config.Logger,
		now:         config.Now,
		newID:       config.NewID,
		eventBuffer: config.EventBuffer,
	}
}

// Load (re)reads the note collection from storage.
func (s *Service) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.store.Load(ctx)
	return err
}

// SaveNote creates or updates a note and persists the whole collection.
//
// An empty or unknown ID creates a note; otherwise the note is updated in place
// keeping its ID and creation time. Tags are re-derived from the content and
// the update time is refreshed. If persisting fails, the in-memory collection
// is left as it was.
func (s *Service) SaveNote(ctx context.Context, in NoteInput) (Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	title := normalizeTitle(in.Title)
	if s.policy == TitleReject && s.store.TitleTaken(title, in.ID) {
		return Note{}, fmt.Errorf("cannot save %q: %w", title, ErrDuplicateTitle)
	}

	now := s.now().UTC()
	n, found := Note{}, false
	if in.ID != "" {
		n, found = s.store.FindByID(in.ID)
	}

	if found {
		n.Title = title
		n.Content = in.Content
		n.Updated = now
	} else {
		id := in.ID
		if id == "" {
			id = s.newID()
		}
		n = Note{
			ID:      id,
			Title:   title,
			Content: in.Content,
			Created: now,
			Updated: now,
		}
	}

	prev := s.store.Notes()
	saved, err := s.store.Upsert(n)
	if err != nil {
		return Note{}, err
	}
	if err := s.store.Flush(ctx); err != nil {
		s.store.replace(prev)
		return Note{}, err
	}

	if found {
		s.logger.Info("note updated", "id", saved.ID, "title", saved.Title, "tags", len(saved.Tags))
	} else {
		s.logger.Info("note created", "id", saved.ID, "title", saved.Title, "tags", len(saved.Tags))
	}
	return saved, nil
}

// Import upserts notes in bulk and persists once.
// IDs and timestamps are preserved when present; missing ones are filled in.
// It returns the number of distinct notes written: records sharing an ID
// collapse into the last one.
func (s *Service) Import(ctx context.Context, notes []Note) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.store.Notes()
	now := s.now().UTC()
	written := make(map[string]struct{}, len(notes))
	for _, n := range notes {
		if n.IsNew() {
			n.ID = s.newID()
		}
		if s.policy == TitleReject && s.store.TitleTaken(n.Title, n.ID) {
			s.store.replace(prev)
			return 0, fmt.Errorf("cannot import %q: %w", normalizeTitle(n.Title), ErrDuplicateTitle)
		}
		if existing, ok := s.store.FindByID(n.ID); ok && n.Created.IsZero() {
			n.Created = existing.Created
		}
		if n.Created.IsZero() {
			n.Created = now
		}
		if n.Updated.IsZero() {
			n.Updated = n.Created
		}
		if _, err := s.store.Upsert(n); err != nil {
			s.store.replace(prev)
			return 0, err
		}
		written[n.ID] = struct{}{}
	}

	if err := s.store.Flush(ctx); err != nil {
		s.store.replace(prev)
		return 0, err
	}

	s.logger.Info("notes imported", "count", len(written), "records", len(notes))
	return len(written), nil
}

// GetNote retrieves a note by ID.
func (s *Service) GetNote(ctx context.Context, id string) (Note, error) {
	if id == "" {
		return Note{}, ErrEmptyID
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	n, ok := s.store.FindByID(id)
	if !ok {
		return Note{}, fmt.Errorf("note %s: %w", id, ErrNotFound)
	}
	return n, nil
}

// FindByTitle resolves a title to a note using the configured TitlePolicy.
func (s *Service) FindByTitle(ctx context.Context, title string) (Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n, ok := s.store.FindByTitle(title)
	if !ok {
		return Note{}, fmt.Errorf("note titled %q: %w", title, ErrNotFound)
	}
	return n, nil
}

// ListNotes returns the notes most recently updated first, optionally
// filtered by tag. Notes updated at the same instant keep their store order.
func (s *Service) ListNotes(ctx context.Context, opts ListOptions) ([]Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	notes := s.store.Notes()
	if opts.Tag != "" {
		filtered := notes[:0]
		for _, n := range notes {
			if n.HasTag(opts.Tag) {
				filtered = append(filtered, n)
			}
		}
		notes = filtered
	}

	sort.SliceStable(notes, func(i, j int) bool {
		return notes[i].Updated.After(notes[j].Updated)
	})
	return notes, nil
}

// DeleteNote removes a note and persists the collection.
// Deleting an unknown ID succeeds without touching storage.
func (s *Service) DeleteNote(ctx context.Context, id string) error {
	if id == "" {
		return ErrEmptyID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.store.Notes()
	if !s.store.Remove(id) {
		return nil
	}
	if err := s.store.Flush(ctx); err != nil {
		s.store.replace(prev)
		return err
	}

	s.logger.Info("note deleted", "id", id)
	return nil
}

// Backlinks returns the notes linking to the note with the given ID.
func (s *Service) Backlinks(ctx context.Context, id string) ([]Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n, ok := s.store.FindByID(id)
	if !ok {
		return nil, fmt.Errorf("note %s: %w", id, ErrNotFound)
	}
	return ResolveBacklinks(n, s.store.notes), nil
}

// Links returns the titles the note with the given ID links to, duplicates included.
func (s *Service) Links(ctx context.Context, id string) ([]string, error) {
	n, err := s.GetNote(ctx, id)
	if err != nil {
		return nil, err
	}
	return n.Links(), nil
}

// View renders a note and resolves its backlinks.
func (s *Service) View(ctx context.Context, id string) (View, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n, ok := s.store.FindByID(id)
	if !ok {
		return View{}, fmt.Errorf("note %s: %w", id, ErrNotFound)
	}
	return View{
		Note:      n,
		HTML:      Render(n.Content),
		Links:     UniqueLinks(n.Content),
		Backlinks: ResolveBacklinks(n, s.store.notes),
	}, nil
}

// ActivateLink resolves the decoded title carried by a followed link.
// An unknown title is not an error: the result asks the caller to create the note.
func (s *Service) ActivateLink(ctx context.Context, title string) (Activation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if n, ok := s.store.FindByTitle(title); ok {
		return Activation{Title: title, Note: &n}, nil
	}
	return Activation{Title: title, Create: true}, nil
}

// Tags returns every tag with the number of notes carrying it, sorted by tag.
func (s *Service) Tags(ctx context.Context) []TagCount {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[string]int)
	for _, n := range s.store.notes {
		for _, t := range n.Tags {
			counts[t]++
		}
	}

	tags := make([]TagCount, 0, len(counts))
	for t, c := range counts {
		tags = append(tags, TagCount{Tag: t, Count: c})
	}
	sort.Slice(tags, func(i, j int) bool {
		return tags[i].Tag < tags[j].Tag
	})
	return tags
}

// DuplicateTitles reports the titles shared by several notes.
func (s *Service) DuplicateTitles(ctx context.Context) map[string][]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.store.DuplicateTitles()
}

// Sync synchronizes the storage with its remote, then reloads.
func (s *Service) Sync(ctx context.Context) error {
	syncable, ok := s.storage.(Syncable)
	if !ok {
		return fmt.Errorf("sync: %w", ErrUnsupported)
	}
	if err := syncable.Sync(ctx); err != nil {
		return err
	}
	return s.Load(ctx)
}

// Watch reloads the collection whenever storage reports an external change
// of the namespace and forwards the change events.
// The returned channel is closed when ctx is done.
func (s *Service) Watch(ctx context.Context) (<-chan Event, error) {
	w, ok := s.storage.(Watchable)
	if !ok {
		return nil, fmt.Errorf("watch: %w", ErrUnsupported)
	}

	upstream, err := w.Watch(ctx, s.store.Namespace())
	if err != nil {
		return nil, err
	}

	out := make(chan Event, s.eventBuffer)
	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return nil
			case e, ok := <-upstream:
				if !ok {
					return nil
				}
				if e.Type != EventDelete {
					if err := s.Load(ctx); err != nil {
						s.logger.Error("reload after change failed", "key", e.Key, "error", err)
					}
				}
				select {
				case out <- e:
				case <-ctx.Done():
					return nil
				}
			}
		}
	})
	return out, nil
}
