// Package markdown converts notes to and from Markdown files with YAML
// frontmatter, for exchanging a note graph with other tools.
package markdown

import (
	"bytes"
	"errors"
	"fmt"
	iofs "io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/notegraph/pkg/adapters/fs"
	"github.com/aretw0/notegraph/pkg/core"
)

// DefaultPattern selects every Markdown file below the import root.
const DefaultPattern = "**/*.md"

// ErrNoClosingFence is returned when a file opens a frontmatter block it never closes.
var ErrNoClosingFence = errors.New("frontmatter started but no closing delimiter found")

type frontmatter struct {
	ID      string    `yaml:"id,omitempty"`
	Title   string    `yaml:"title,omitempty"`
	Tags    []string  `yaml:"tags,omitempty"`
	Created time.Time `yaml:"created,omitempty"`
	Updated time.Time `yaml:"updated,omitempty"`
}

// Encode renders a note as Markdown with a frontmatter block.
// The body is written exactly as stored.
func Encode(n core.Note) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString("---\n")
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(frontmatter{
		ID:      n.ID,
		Title:   n.Title,
		Tags:    n.Tags,
		Created: n.Created,
		Updated: n.Updated,
	}); err != nil {
		return nil, fmt.Errorf("failed to encode frontmatter: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return nil, err
	}
	buf.WriteString("---\n")
	buf.WriteString(n.Content)

	return buf.Bytes(), nil
}

// Decode parses a Markdown document. Without frontmatter, the whole document
// is content and fallbackTitle names the note.
func Decode(data []byte, fallbackTitle string) (core.Note, error) {
	n := core.Note{Title: fallbackTitle}

	var opening int
	switch {
	case bytes.HasPrefix(data, []byte("---\n")):
		opening = 4
	case bytes.HasPrefix(data, []byte("---\r\n")):
		opening = 5
	default:
		n.Content = string(data)
		return n, nil
	}

	rest := data[opening:]
	yamlEnd, bodyStart, ok := closingFence(rest)
	if !ok {
		return core.Note{}, ErrNoClosingFence
	}

	var fm frontmatter
	if err := yaml.Unmarshal(rest[:yamlEnd], &fm); err != nil {
		return core.Note{}, fmt.Errorf("failed to parse frontmatter: %w", err)
	}

	n.ID = fm.ID
	if fm.Title != "" {
		n.Title = fm.Title
	}
	n.Tags = fm.Tags
	n.Created = fm.Created
	n.Updated = fm.Updated
	n.Content = string(rest[bodyStart:])
	return n, nil
}

// closingFence finds a line consisting of "---". It returns where the YAML
// ends and where the body starts.
func closingFence(rest []byte) (yamlEnd, bodyStart int, ok bool) {
	offset := 0
	for offset <= len(rest) {
		lineEnd := bytes.IndexByte(rest[offset:], '\n')
		var line []byte
		next := len(rest) + 1
		if lineEnd < 0 {
			line = rest[offset:]
		} else {
			line = rest[offset : offset+lineEnd]
			next = offset + lineEnd + 1
		}
		if string(bytes.TrimSuffix(line, []byte("\r"))) == "---" {
			return offset, min(next, len(rest)), true
		}
		offset = next
	}
	return 0, 0, false
}

// Slug derives a file name stem from a title.
func Slug(title string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	slug := strings.TrimSuffix(b.String(), "-")
	if slug == "" {
		return "untitled"
	}
	return slug
}

// Export writes every note to <dir>/<slug>.md, numbering colliding slugs.
// It returns the written paths in note order.
func Export(notes []core.Note, dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create export directory: %w", err)
	}

	used := make(map[string]int)
	paths := make([]string, 0, len(notes))
	for _, n := range notes {
		stem := Slug(n.Title)
		used[stem]++
		if c := used[stem]; c > 1 {
			stem = stem + "-" + strconv.Itoa(c)
		}

		data, err := Encode(n)
		if err != nil {
			return paths, fmt.Errorf("note %s: %w", n.ID, err)
		}

		target := filepath.Join(dir, stem+".md")
		if err := fs.WriteFileAtomic(target, data, 0644); err != nil {
			return paths, fmt.Errorf("note %s: %w", n.ID, err)
		}
		paths = append(paths, target)
	}
	return paths, nil
}

// Import reads every file under dir matching pattern (doublestar syntax,
// DefaultPattern when empty), in lexical order.
func Import(dir, pattern string) ([]core.Note, error) {
	if pattern == "" {
		pattern = DefaultPattern
	}
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid pattern %q", pattern)
	}

	fsys := os.DirFS(dir)
	matches, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("failed to glob %s: %w", dir, err)
	}
	sort.Strings(matches)

	notes := make([]core.Note, 0, len(matches))
	for _, m := range matches {
		data, err := iofs.ReadFile(fsys, m)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", m, err)
		}
		stem := strings.TrimSuffix(path.Base(m), path.Ext(m))
		n, err := Decode(data, stem)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", m, err)
		}
		notes = append(notes, n)
	}
	return notes, nil
}
