package api

import (
	"github.com/go-chi/chi/v5"
)

// NewRouter creates a chi router with all browse routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
func NewRouter(svc *Service, authEnabled bool, token string) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	r.Get("/notes", h.ListNotes)
	r.Get("/notes/{basename}", h.GetNote)
	r.Get("/assets", h.ListAssets)
	r.Get("/table", h.Table)

	return r
}
