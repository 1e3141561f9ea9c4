package estimate

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes registers estimate routes. Standard estimates are the curated
// catalog; admin estimates are drafts created by admins for specific
// customers. Both share the same handlers parameterized by type.
func Routes(r chi.Router, h *Handler, authMiddleware func(http.Handler) http.Handler) {
	mount := func(prefix, estimateType string) {
		r.Route(prefix, func(r chi.Router) {
			r.Use(authMiddleware)
			r.Get("/", h.List(estimateType))
			r.Post("/", h.Create(estimateType))
			r.Get("/{id}", h.GetByID(estimateType))
			r.Put("/{id}", h.Update(estimateType))
			r.Delete("/{id}", h.Delete(estimateType))
		})
	}

	mount("/standard_estimates", TypeStandard)
	mount("/admin_estimates", TypeAdmin)
}
