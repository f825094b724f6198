package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/jwtauth"
	log "github.com/sirupsen/logrus"

	"github.com/fielia/club-services/internal/membersvc/auth"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.fail(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if !h.auth.Authenticate(req.Username, req.Password) {
		h.fail(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := h.auth.Issue(req.Username)
	if err != nil {
		log.Errorf("failed to issue session token: %v", err)
		h.fail(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.auth.SetCookie(w, token)
	h.ok(w, auth.Identity{Username: req.Username})
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.auth.ClearCookie(w)
	h.ok(w, nil)
}

// Session lets clients probe whether their cookie still holds a valid token.
func (h *Handler) Session(w http.ResponseWriter, r *http.Request) {
	_, claims, err := jwtauth.FromContext(r.Context())
	if err != nil {
		h.fail(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	username, _ := claims["username"].(string)
	h.ok(w, auth.Identity{Username: username})
}

// Authenticator replaces jwtauth.Authenticator so that a missing, expired or
// forged token yields the uniform envelope instead of a plain-text 401. The
// three cases are deliberately indistinguishable to the caller.
func (h *Handler) Authenticator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, _, err := jwtauth.FromContext(r.Context())
		if err != nil || token == nil {
			h.fail(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		next.ServeHTTP(w, r)
	})
}
