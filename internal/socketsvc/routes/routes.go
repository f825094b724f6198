package routes

import (
	"os"

	"github.com/go-chi/chi"
	"github.com/go-chi/jwtauth"
	log "github.com/sirupsen/logrus"

	"github.com/fielia/club-services/internal/membersvc/auth"
	"github.com/fielia/club-services/internal/socketsvc/handlers"
	"github.com/fielia/club-services/internal/socketsvc/ws"
)

var tokenAuth *jwtauth.JWTAuth

func SetRoutes(r *chi.Mux, ws *ws.Ws) {
	h := handlers.NewHandler(ws)
	r.Route("/v1", func(r chi.Router) {
		r.Get("/health", h.HealthHandler)

		// The feed carries member data, only an authenticated operator
		// session may attach.
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verify(tokenAuth, auth.TokenFromCookie, jwtauth.TokenFromHeader))
			r.Use(h.Authenticator)

			r.Get("/ws", h.HandleWebSocket)
		})
	})
}

func InitAuth() {
	jwtKey := os.Getenv("JWT_SECRET_KEY")
	if jwtKey == "" {
		log.Fatal("JWT_SECRET_KEY is not set")
	}
	tokenAuth = jwtauth.New("HS256", []byte(jwtKey), nil)
}
