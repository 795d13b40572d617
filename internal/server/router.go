// Package server exposes a note graph service over HTTP for rendering clients.
package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/aretw0/notegraph/pkg/core"
)

// Options configures the router.
type Options struct {
	// CORSOrigins enables CORS for the listed origins when not empty.
	CORSOrigins []string
	Logger      *slog.Logger
}

// NewRouter builds the HTTP API over svc.
func NewRouter(svc *core.Service, opts Options) http.Handler {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	if len(opts.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: opts.CORSOrigins,
			AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Content-Type"},
			ExposedHeaders: []string{"X-Request-Id"},
			MaxAge:         300,
		}))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	h := &NoteHandler{Svc: svc, Logger: opts.Logger}

	r.Route("/notes", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Save)

		r.Get("/{id}", h.Get)
		r.Delete("/{id}", h.Delete)
		r.Get("/{id}/view", h.View)
		r.Get("/{id}/backlinks", h.Backlinks)
		r.Get("/{id}/links", h.Links)
	})

	r.Get("/tags", h.Tags)
	r.Get("/titles/duplicates", h.DuplicateTitles)
	r.Get("/resolve", h.Resolve)

	return r
}
