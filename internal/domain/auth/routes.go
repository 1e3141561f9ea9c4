package auth

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes registers the admin auth endpoints
func Routes(r chi.Router, h *Handler, authMiddleware func(http.Handler) http.Handler) {
	r.Post("/signin", h.SignIn)

	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Post("/logout", h.Logout)
		r.Get("/me", h.Me)
	})
}
