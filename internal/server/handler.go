package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/aretw0/notegraph/pkg/core"
)

// NoteHandler serves the note endpoints.
type NoteHandler struct {
	Svc    *core.Service
	Logger *slog.Logger
}

type saveNoteReq struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
	// Reason is recorded as the commit message by versioned storages.
	Reason string `json:"reason"`
}

func (h *NoteHandler) List(w http.ResponseWriter, r *http.Request) {
	tag := strings.TrimPrefix(strings.TrimSpace(r.URL.Query().Get("tag")), "#")

	notes, err := h.Svc.ListNotes(r.Context(), core.ListOptions{Tag: tag})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, notes)
}

func (h *NoteHandler) Save(w http.ResponseWriter, r *http.Request) {
	var req saveNoteReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}

	status := http.StatusCreated
	if req.ID != "" {
		if _, err := h.Svc.GetNote(r.Context(), req.ID); err == nil {
			status = http.StatusOK
		}
	}

	ctx := r.Context()
	if reason := strings.TrimSpace(req.Reason); reason != "" {
		ctx = withReason(ctx, reason)
	}

	n, err := h.Svc.SaveNote(ctx, core.NoteInput{ID: req.ID, Title: req.Title, Content: req.Content})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, status, n)
}

func (h *NoteHandler) Get(w http.ResponseWriter, r *http.Request) {
	n, err := h.Svc.GetNote(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

func (h *NoteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Svc.DeleteNote(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *NoteHandler) View(w http.ResponseWriter, r *http.Request) {
	v, err := h.Svc.View(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (h *NoteHandler) Backlinks(w http.ResponseWriter, r *http.Request) {
	notes, err := h.Svc.Backlinks(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if notes == nil {
		notes = []core.Note{}
	}
	writeJSON(w, http.StatusOK, notes)
}

func (h *NoteHandler) Links(w http.ResponseWriter, r *http.Request) {
	links, err := h.Svc.Links(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if links == nil {
		links = []string{}
	}
	writeJSON(w, http.StatusOK, links)
}

func (h *NoteHandler) Tags(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Svc.Tags(r.Context()))
}

// DuplicateTitles lists the titles shared by several notes with their ids,
// so clients can warn that a [[link]] is ambiguous.
func (h *NoteHandler) DuplicateTitles(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Svc.DuplicateTitles(r.Context()))
}

// Resolve follows a link: ?title= carries the decoded data-title of an anchor.
func (h *NoteHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	title := r.URL.Query().Get("title")
	if title == "" {
		http.Error(w, "title required", http.StatusBadRequest)
		return
	}

	act, err := h.Svc.ActivateLink(r.Context(), title)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, act)
}

// writeError maps domain errors to status codes.
func (h *NoteHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, core.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, core.ErrDuplicateTitle):
		status = http.StatusConflict
	case errors.Is(err, core.ErrReadOnly):
		status = http.StatusForbidden
	case errors.Is(err, core.ErrEmptyID):
		status = http.StatusBadRequest
	}

	if status == http.StatusInternalServerError {
		h.Logger.Error("request failed", "path", r.URL.Path, "request_id", chimw.GetReqID(r.Context()), "error", err)
		http.Error(w, "server error", status)
		return
	}
	http.Error(w, err.Error(), status)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
