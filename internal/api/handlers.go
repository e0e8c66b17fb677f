package api

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/models"
)

// Handler holds API route handlers.
type Handler struct {
	svc *Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// noteBasename extracts the base name from the URL, decoding percent-encoded
// characters (note names commonly contain spaces).
func noteBasename(r *http.Request) string {
	raw := chi.URLParam(r, "basename")
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// ListNotes handles GET /notes.
func (h *Handler) ListNotes(w http.ResponseWriter, _ *http.Request) {
	notes, err := h.svc.ListNotes()
	if err != nil {
		slog.Error("list notes failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	if notes == nil {
		notes = []models.ConversionRecord{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"notes": notes,
		"total": len(notes),
	})
}

// GetNote handles GET /notes/{basename}.
func (h *Handler) GetNote(w http.ResponseWriter, r *http.Request) {
	basename := noteBasename(r)
	if basename == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("basename is required"))
		return
	}
	note, err := h.svc.GetNote(basename)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("note not found"))
			return
		}
		slog.Error("get note failed", slog.String("basename", basename), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, note)
}

// Table handles GET /table.
func (h *Handler) Table(w http.ResponseWriter, _ *http.Request) {
	table, err := h.svc.Table()
	if err != nil {
		slog.Error("id table failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, table)
}

// ListAssets handles GET /assets.
func (h *Handler) ListAssets(w http.ResponseWriter, _ *http.Request) {
	assets, err := h.svc.ListAssets()
	if err != nil {
		slog.Error("list assets failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	if assets == nil {
		assets = []models.AssetRecord{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"assets": assets,
		"total":  len(assets),
	})
}
