// Package notegraph is the composition root of a personal knowledge base
// engine: notes carry #tags and [[wiki links]], and the engine answers which
// notes link to which.
//
// The core (pkg/core) holds the domain rules: tag and link extraction,
// backlink resolution, safe HTML rendering and the note store. Persistence is
// delegated to a key-value storage adapter (fs with optional git versioning,
// SQLite or memory) selected through functional options.
//
// Usage:
//
//	svc, err := notegraph.New(ctx, "./vault",
//		notegraph.WithAutoInit(true),
//		notegraph.WithLogger(logger),
//	)
//
//	n, err := svc.SaveNote(ctx, core.NoteInput{Title: "Inbox", Content: "call #alice about [[Plan]]"})
//	backlinks, err := svc.Backlinks(ctx, n.ID)
package notegraph
