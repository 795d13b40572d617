package core

import (
	"encoding/json"
	"time"
)

// record is the persisted shape of a note. Timestamps are Unix milliseconds,
// matching the document written by the browser front ends.
type record struct {
	ID      string   `json:"id"`
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Tags    []string `json:"tags"`
	Created int64    `json:"created"`
	Updated int64    `json:"updated"`
}

func toMillis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UTC().UnixMilli()
}

func fromMillis(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}

// encodeNotes serializes the whole collection as one JSON array.
func encodeNotes(notes []Note) ([]byte, error) {
	records := make([]record, 0, len(notes))
	for _, n := range notes {
		tags := n.Tags
		if tags == nil {
			tags = []string{}
		}
		records = append(records, record{
			ID:      n.ID,
			Title:   n.Title,
			Content: n.Content,
			Tags:    tags,
			Created: toMillis(n.Created),
			Updated: toMillis(n.Updated),
		})
	}
	return json.Marshal(records)
}

// decodeNotes parses a persisted collection. Any syntax or shape error is returned
// so the caller can degrade to an empty collection.
func decodeNotes(data []byte) ([]Note, error) {
	var records []record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, err
	}

	notes := make([]Note, 0, len(records))
	for _, r := range records {
		notes = append(notes, Note{
			ID:      r.ID,
			Title:   r.Title,
			Content: r.Content,
			Tags:    r.Tags,
			Created: fromMillis(r.Created),
			Updated: fromMillis(r.Updated),
		})
	}
	return notes, nil
}
