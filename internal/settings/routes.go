package settings

import "github.com/go-chi/chi/v5"

// MountRoutes attaches settings routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/settings", h.Get)
	r.Put("/settings", h.Update)
}
