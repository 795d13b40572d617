package core

import (
	"strings"
)

var (
	htmlEscaper   = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	htmlUnescaper = strings.NewReplacer("&lt;", "<", "&gt;", ">", "&amp;", "&")
)

// Render converts raw note content into display markup.
//
// The steps run in a fixed order:
//  1. '&', '<' and '>' are escaped. This is the only sanitization step.
//  2. Every [[title]] in the escaped text becomes a note-link anchor whose
//     data-title holds the URI-component encoding of the unescaped title.
//  3. Newlines become <br>.
//
// Render is single pass: feeding its output back in escapes it again.
func Render(content string) string {
	html := htmlEscaper.Replace(content)

	html = linkPattern.ReplaceAllStringFunc(html, func(match string) string {
		label := match[2 : len(match)-2]
		var b strings.Builder
		b.WriteString(`<a href="#" class="note-link" data-title="`)
		b.WriteString(EncodeURIComponent(htmlUnescaper.Replace(label)))
		b.WriteString(`">[[`)
		b.WriteString(label)
		b.WriteString(`]]</a>`)
		return b.String()
	})

	return strings.ReplaceAll(html, "\n", "<br>")
}

// EncodeURIComponent escapes s the way browsers' encodeURIComponent does,
// so link titles decode back exactly with decodeURIComponent.
func EncodeURIComponent(s string) string {
	const hex = "0123456789ABCDEF"

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isURIUnreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hex[c>>4])
		b.WriteByte(hex[c&0x0F])
	}
	return b.String()
}

func isURIUnreserved(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	switch c {
	case '-', '_', '.', '!', '~', '*', '\'', '(', ')':
		return true
	}
	return false
}
