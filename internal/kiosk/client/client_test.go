package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fielia/club-services/internal/membersvc/service"
)

func newFakeServer(t *testing.T) (*httptest.Server, *Client) {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		json.NewDecoder(r.Body).Decode(&req)
		if req["password"] != "hunter2" {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "error": "invalid credentials"})
			return
		}
		http.SetCookie(w, &http.Cookie{Name: "admin-token", Value: "tok123", Path: "/"})
		json.NewEncoder(w).Encode(map[string]interface{}{"success": true})
	})
	mux.HandleFunc("GET /v1/cards/KNOWN", func(w http.ResponseWriter, r *http.Request) {
		if c, err := r.Cookie("admin-token"); err != nil || c.Value != "tok123" {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "error": "unauthorized"})
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"data":    map[string]string{"uuid": "KNOWN", "firstName": "Ada", "lastName": "Lovelace"},
		})
	})
	mux.HandleFunc("GET /v1/cards/MISSING", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "error": "card not found"})
	})
	mux.HandleFunc("GET /v1/cards", func(w http.ResponseWriter, r *http.Request) {
		if c, err := r.Cookie("admin-token"); err != nil || c.Value != "tok123" {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "error": "unauthorized"})
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"data": []map[string]string{
				{"uuid": "NEWER", "firstName": "Grace", "lastName": "Hopper"},
				{"uuid": "OLDER", "firstName": "Ada", "lastName": "Lovelace"},
			},
		})
	})
	mux.HandleFunc("POST /v1/cards", func(w http.ResponseWriter, r *http.Request) {
		var in service.CardInput
		json.NewDecoder(r.Body).Decode(&in)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"data": map[string]string{
				"uuid": in.UUID, "firstName": in.FirstName, "lastName": in.LastName,
				"content": in.FirstName + " " + in.LastName,
			},
		})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	c, err := New(srv.URL)
	require.NoError(t, err)
	return srv, c
}

func TestLoginStoresSessionCookie(t *testing.T) {
	_, c := newFakeServer(t)
	ctx := context.Background()

	require.NoError(t, c.Login(ctx, "operator", "hunter2"))

	// the jar carries the cookie into the next request
	card, err := c.LookupCard(ctx, "KNOWN")
	require.NoError(t, err)
	assert.Equal(t, "Ada", card.FirstName)
}

func TestLoginFailureSurfacesServerError(t *testing.T) {
	_, c := newFakeServer(t)

	err := c.Login(context.Background(), "operator", "wrong")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestLookupWithoutSessionIsUnauthorized(t *testing.T) {
	_, c := newFakeServer(t)

	_, err := c.LookupCard(context.Background(), "KNOWN")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestLookupMissMapsToNotFound(t *testing.T) {
	_, c := newFakeServer(t)
	require.NoError(t, c.Login(context.Background(), "operator", "hunter2"))

	_, err := c.LookupCard(context.Background(), "MISSING")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListCardsDecodesDirectory(t *testing.T) {
	_, c := newFakeServer(t)
	require.NoError(t, c.Login(context.Background(), "operator", "hunter2"))

	cards, err := c.ListCards(context.Background())
	require.NoError(t, err)
	require.Len(t, cards, 2)
	// server order is preserved
	assert.Equal(t, "NEWER", cards[0].UUID)
	assert.Equal(t, "OLDER", cards[1].UUID)
}

func TestListCardsWithoutSessionIsUnauthorized(t *testing.T) {
	_, c := newFakeServer(t)

	_, err := c.ListCards(context.Background())
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestCreateCardDecodesPayload(t *testing.T) {
	_, c := newFakeServer(t)
	require.NoError(t, c.Login(context.Background(), "operator", "hunter2"))

	card, err := c.CreateCard(context.Background(), service.CardInput{
		UUID: "NEW1", FirstName: "Grace", LastName: "Hopper",
	})
	require.NoError(t, err)
	assert.Equal(t, "NEW1", card.UUID)
	assert.Equal(t, "Grace Hopper", card.Content)
}
