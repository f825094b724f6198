package handlers

import (
	"github.com/go-chi/chi"
	"github.com/go-chi/jwtauth"

	"github.com/fielia/club-services/internal/membersvc/auth"
)

func (h *Handler) SetRoutes(r *chi.Mux) {
	r.Route("/v1", func(r chi.Router) {

		// public routes
		r.Get("/health", h.HealthHandler)
		r.Post("/auth/login", h.Login)
		r.Post("/applications", h.SubmitApplication)

		// Secure routes. The token is read from the admin cookie for browser
		// clients and from the bearer header for the kiosk.
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verify(h.auth.TokenAuth(), auth.TokenFromCookie, jwtauth.TokenFromHeader))
			r.Use(h.Authenticator)

			r.Post("/auth/logout", h.Logout)
			r.Get("/auth/session", h.Session)

			r.Get("/applications", h.ListApplications)
			r.Patch("/applications/{id}", h.UpdateApplicationStatus)

			r.Get("/cards", h.ListCards)
			r.Get("/cards/{uuid}", h.GetCard)
			r.Post("/cards", h.CreateCard)
			r.Put("/cards/{uuid}", h.UpdateCard)
		})
	})
}
