package routes

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fielia/club-services/internal/socketsvc/ws"
)

func setupRouter(t *testing.T) *chi.Mux {
	t.Helper()
	t.Setenv("JWT_SECRET_KEY", "routes-test-secret")

	InitAuth()
	r := chi.NewRouter()
	SetRoutes(r, ws.NewWs())
	return r
}

func TestFeedWithoutSessionGetsEnvelope401(t *testing.T) {
	r := setupRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/ws", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)

	var rsp struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rsp))
	assert.False(t, rsp.Success)
	assert.Equal(t, "unauthorized", rsp.Error)
}

func TestFeedWithSessionPassesAuthenticator(t *testing.T) {
	r := setupRouter(t)

	_, tokenString, err := tokenAuth.Encode(map[string]interface{}{
		"username": "admin",
		"exp":      time.Now().Add(time.Hour).Unix(),
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/v1/ws", nil)
	req.AddCookie(&http.Cookie{Name: "admin-token", Value: tokenString})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	// not a real websocket handshake, the upgrade fails, but the
	// request made it past the session gate
	assert.NotEqual(t, http.StatusUnauthorized, rec.Code)
}
