package core

// ResolveBacklinks returns the notes, other than target, whose content links
// to target.Title. Matching is exact and case-sensitive; the result keeps the
// order of notes.
func ResolveBacklinks(target Note, notes []Note) []Note {
	var backlinks []Note
	for _, n := range notes {
		if n.ID == target.ID {
			continue
		}
		if linksTo(n.Content, target.Title) {
			backlinks = append(backlinks, n.clone())
		}
	}
	return backlinks
}
