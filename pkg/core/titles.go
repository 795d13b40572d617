package core

import (
	"fmt"
	"strings"
)

// TitlePolicy decides which note a title resolves to when several share it.
type TitlePolicy string

const (
	// TitleFirstMatch resolves to the first note in store order.
	TitleFirstMatch TitlePolicy = "first"
	// TitleMostRecent resolves to the most recently updated note.
	TitleMostRecent TitlePolicy = "recent"
	// TitleReject refuses to save a note whose title is already taken.
	// Duplicates that already exist in storage resolve like TitleFirstMatch.
	TitleReject TitlePolicy = "reject"
)

// ParseTitlePolicy maps a configuration string to a TitlePolicy.
// The empty string selects TitleFirstMatch.
func ParseTitlePolicy(s string) (TitlePolicy, error) {
	switch p := TitlePolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return TitleFirstMatch, nil
	case TitleFirstMatch, TitleMostRecent, TitleReject:
		return p, nil
	default:
		return "", fmt.Errorf("unknown title policy %q (want first, recent or reject)", s)
	}
}

// TitleIndex maps titles to the positions of the notes carrying them.
// It is rebuilt from scratch after every store mutation.
type TitleIndex struct {
	positions map[string][]int
}

// NewTitleIndex indexes notes by title.
func NewTitleIndex(notes []Note) *TitleIndex {
	idx := &TitleIndex{positions: make(map[string][]int, len(notes))}
	for i, n := range notes {
		idx.positions[n.Title] = append(idx.positions[n.Title], i)
	}
	return idx
}

// Lookup returns the position of the note title resolves to, or -1.
func (idx *TitleIndex) Lookup(title string, notes []Note, policy TitlePolicy) int {
	positions := idx.positions[title]
	if len(positions) == 0 {
		return -1
	}
	if policy != TitleMostRecent {
		return positions[0]
	}

	best := positions[0]
	for _, p := range positions[1:] {
		if notes[p].Updated.After(notes[best].Updated) {
			best = p
		}
	}
	return best
}

// Taken reports whether title is used by a note other than exceptID.
func (idx *TitleIndex) Taken(title, exceptID string, notes []Note) bool {
	for _, p := range idx.positions[title] {
		if notes[p].ID != exceptID {
			return true
		}
	}
	return false
}

// Duplicates returns every title carried by more than one note, with their ids.
func (idx *TitleIndex) Duplicates(notes []Note) map[string][]string {
	dups := make(map[string][]string)
	for title, positions := range idx.positions {
		if len(positions) < 2 {
			continue
		}
		ids := make([]string, 0, len(positions))
		for _, p := range positions {
			ids = append(ids, notes[p].ID)
		}
		dups[title] = ids
	}
	return dups
}
