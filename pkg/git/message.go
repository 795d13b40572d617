package git

import "strings"

// Conventional commit types.
const (
	CommitTypeFeat     = "feat"
	CommitTypeFix      = "fix"
	CommitTypeDocs     = "docs"
	CommitTypeRefactor = "refactor"
	CommitTypeChore    = "chore"
)

// Trailer marks commits written by notegraph.
const Trailer = "Changed-by: notegraph"

// FormatMessage builds a Conventional Commit message:
//
//	<type>(<scope>): <subject>
//
//	<body>
//
//	Changed-by: notegraph
//
// An empty type falls back to chore.
func FormatMessage(ctype, scope, subject, body string) string {
	var sb strings.Builder

	if ctype == "" {
		ctype = CommitTypeChore
	}
	sb.WriteString(ctype)
	if scope != "" {
		sb.WriteString("(" + scope + ")")
	}
	sb.WriteString(": ")
	sb.WriteString(strings.TrimSpace(subject))

	if body = strings.TrimSpace(body); body != "" {
		sb.WriteString("\n\n")
		sb.WriteString(body)
	}

	sb.WriteString("\n\n")
	sb.WriteString(Trailer)
	return sb.String()
}

// AppendTrailer adds the notegraph trailer to a free-form message, once.
func AppendTrailer(msg string) string {
	if strings.Contains(msg, Trailer) {
		return msg
	}
	return strings.TrimRight(msg, "\n") + "\n\n" + Trailer
}
