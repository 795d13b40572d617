package core

import "regexp"

var (
	tagPattern  = regexp.MustCompile(`#(\w+)`)
	linkPattern = regexp.MustCompile(`\[\[([^\]]+)\]\]`)
)

// ExtractTags returns the distinct #tags found in content, without the '#'.
// Order follows first appearance but callers should treat the result as a set.
func ExtractTags(content string) []string {
	matches := tagPattern.FindAllStringSubmatch(content, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(matches))
	tags := make([]string, 0, len(matches))
	for _, m := range matches {
		if _, ok := seen[m[1]]; ok {
			continue
		}
		seen[m[1]] = struct{}{}
		tags = append(tags, m[1])
	}
	return tags
}

// ExtractLinks returns the title of every [[title]] occurrence in content,
// in order of appearance and including duplicates.
func ExtractLinks(content string) []string {
	matches := linkPattern.FindAllStringSubmatch(content, -1)
	if len(matches) == 0 {
		return nil
	}

	links := make([]string, 0, len(matches))
	for _, m := range matches {
		links = append(links, m[1])
	}
	return links
}

// UniqueLinks is ExtractLinks with duplicates removed, keeping first occurrences.
func UniqueLinks(content string) []string {
	links := ExtractLinks(content)
	if len(links) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(links))
	out := links[:0]
	for _, l := range links {
		if _, ok := seen[l]; ok {
			continue
		}
		seen[l] = struct{}{}
		out = append(out, l)
	}
	return out
}

// linksTo reports whether content links to title.
func linksTo(content, title string) bool {
	for _, l := range ExtractLinks(content) {
		if l == title {
			return true
		}
	}
	return false
}
