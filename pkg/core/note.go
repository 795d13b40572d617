package core

import (
	"strings"
	"time"
)

// DefaultTitle is used when a note is saved with an empty title.
const DefaultTitle = "Untitled"

// Note is the central entity of the domain.
// It represents a titled piece of knowledge identified by an immutable ID.
// Tags are derived from Content and are recomputed by the Store on every upsert.
type Note struct {
	ID      string    `json:"id"`
	Title   string    `json:"title"`
	Content string    `json:"content"`
	Tags    []string  `json:"tags"`
	Created time.Time `json:"created"`
	Updated time.Time `json:"updated"`
}

// IsNew reports whether the note has not been assigned an ID yet.
func (n Note) IsNew() bool {
	return n.ID == ""
}

// Links returns the titles referenced by the note content, duplicates included.
func (n Note) Links() []string {
	return ExtractLinks(n.Content)
}

// HasTag reports whether the note carries the given tag.
func (n Note) HasTag(tag string) bool {
	for _, t := range n.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// normalizeTitle applies the "Untitled" sentinel to blank titles.
func normalizeTitle(title string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return DefaultTitle
	}
	return title
}

// clone returns a deep copy so callers never share the Tags backing array with the store.
func (n Note) clone() Note {
	if n.Tags != nil {
		tags := make([]string, len(n.Tags))
		copy(tags, n.Tags)
		n.Tags = tags
	}
	return n
}

// NoteInput carries the user-editable fields of a save action.
type NoteInput struct {
	// ID selects the note to update. Empty means create.
	ID      string
	Title   string
	Content string
}

// ListOptions filters the note list.
type ListOptions struct {
	// Tag restricts the result to notes carrying this tag (without the '#').
	Tag string
}

// TagCount is one entry of the tag cloud.
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// View is everything the rendering layer needs to display a note.
type View struct {
	Note      Note     `json:"note"`
	HTML      string   `json:"html"`
	Links     []string `json:"links"`
	Backlinks []Note   `json:"backlinks"`
}

// Activation is the outcome of following a [[link]].
// When no note carries the title, Create is true and the caller is expected
// to open a creation flow stubbed with Title.
type Activation struct {
	Title  string `json:"title"`
	Note   *Note  `json:"note,omitempty"`
	Create bool   `json:"create"`
}
