package core

import (
	"github.com/aretw0/introspection"
)

// ServiceState exposes internal state for observability.
type ServiceState struct {
	Namespace       string `json:"namespace"`
	Notes           int    `json:"notes"`
	TitlePolicy     string `json:"title_policy"`
	DuplicateTitles int    `json:"duplicate_titles"`
	EventBufferSize int    `json:"event_buffer_size"`
	StorageType     string `json:"storage_type"`
}

// State implements introspection.Introspectable.
func (s *Service) State() any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	storageType := "unknown"
	if s.storage != nil {
		storageType = "storage"
		if comp, ok := s.storage.(introspection.Component); ok {
			storageType = comp.ComponentType()
		}
	}

	return ServiceState{
		Namespace:       s.store.Namespace(),
		Notes:           s.store.Len(),
		TitlePolicy:     string(s.policy),
		DuplicateTitles: len(s.store.DuplicateTitles()),
		EventBufferSize: s.eventBuffer,
		StorageType:     storageType,
	}
}

// ComponentType implements introspection.Component.
func (s *Service) ComponentType() string {
	return "service"
}

var _ introspection.Introspectable = (*Service)(nil)
var _ introspection.Component = (*Service)(nil)
