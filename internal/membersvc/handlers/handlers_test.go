package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/fielia/club-services/internal/membersvc/auth"
	"github.com/fielia/club-services/internal/membersvc/handlers"
	"github.com/fielia/club-services/internal/membersvc/models"
	"github.com/fielia/club-services/internal/membersvc/service"
	"github.com/fielia/club-services/internal/membersvc/store"
)

type memoryStores struct {
	apps  map[string]*models.MembershipApplication
	cards map[string]*models.Card
	calls int
}

func (m *memoryStores) Create(ctx context.Context, app models.MembershipApplication) (*models.MembershipApplication, error) {
	m.calls++
	if _, ok := m.apps[app.Email]; ok {
		return nil, store.ErrDuplicate
	}
	now := time.Now().UTC()
	app.ID = primitive.NewObjectID()
	app.CreatedAt = now
	app.UpdatedAt = now
	m.apps[app.Email] = &app
	return &app, nil
}

func (m *memoryStores) List(ctx context.Context) ([]models.MembershipApplication, error) {
	m.calls++
	apps := []models.MembershipApplication{}
	for _, app := range m.apps {
		apps = append(apps, *app)
	}
	return apps, nil
}

func (m *memoryStores) UpdateStatus(ctx context.Context, id string, status string) (*models.MembershipApplication, error) {
	m.calls++
	for _, app := range m.apps {
		if app.ID.Hex() == id {
			app.Status = status
			return app, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *memoryStores) GetByUUID(ctx context.Context, uuid string) (*models.Card, error) {
	m.calls++
	card, ok := m.cards[uuid]
	if !ok {
		return nil, store.ErrNotFound
	}
	return card, nil
}

func (m *memoryStores) CreateCard(ctx context.Context, card models.Card) (*models.Card, error) {
	m.calls++
	if _, ok := m.cards[card.UUID]; ok {
		return nil, store.ErrDuplicate
	}
	card.ID = primitive.NewObjectID()
	m.cards[card.UUID] = &card
	return &card, nil
}

func (m *memoryStores) Update(ctx context.Context, uuid string, card models.Card) (*models.Card, error) {
	m.calls++
	existing, ok := m.cards[uuid]
	if !ok {
		return nil, store.ErrNotFound
	}
	existing.FirstName = card.FirstName
	existing.LastName = card.LastName
	existing.Phone = card.Phone
	existing.Address = card.Address
	existing.Preference = card.Preference
	existing.Content = card.Content
	return existing, nil
}

// cardStoreView adapts memoryStores to the card store port, whose Create
// method name collides with the application store port.
type cardStoreView struct{ *memoryStores }

func (v cardStoreView) Create(ctx context.Context, card models.Card) (*models.Card, error) {
	return v.memoryStores.CreateCard(ctx, card)
}

func (v cardStoreView) List(ctx context.Context) ([]models.Card, error) {
	v.calls++
	cards := []models.Card{}
	for _, card := range v.cards {
		cards = append(cards, *card)
	}
	return cards, nil
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func newTestServer(t *testing.T) (*httptest.Server, *memoryStores) {
	t.Helper()
	t.Setenv("JWT_SECRET_KEY", "test-secret")
	t.Setenv("ADMIN_USERNAME", "operator")
	t.Setenv("ADMIN_PASSWORD", "hunter2")

	a, err := auth.New()
	require.NoError(t, err)

	mem := &memoryStores{
		apps:  map[string]*models.MembershipApplication{},
		cards: map[string]*models.Card{},
	}

	appService := service.NewApplicationService(mem, nil)
	cardService := service.NewCardService(cardStoreView{mem}, nil, false)

	h := handlers.NewHandler(a, appService, cardService)
	r := chi.NewRouter()
	h.SetRoutes(r)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, mem
}

func doJSON(t *testing.T, method, url string, body interface{}, cookie *http.Cookie) (*http.Response, envelope) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if cookie != nil {
		req.AddCookie(cookie)
	}

	rsp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer rsp.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(rsp.Body).Decode(&env))
	return rsp, env
}

func loginCookie(t *testing.T, srv *httptest.Server) *http.Cookie {
	t.Helper()

	rsp, env := doJSON(t, http.MethodPost, srv.URL+"/v1/auth/login",
		map[string]string{"username": "operator", "password": "hunter2"}, nil)
	require.Equal(t, http.StatusOK, rsp.StatusCode)
	require.True(t, env.Success)

	for _, c := range rsp.Cookies() {
		if c.Name == auth.CookieName {
			return c
		}
	}
	t.Fatal("login response did not set the session cookie")
	return nil
}

func TestGatedEndpointsRejectWithoutSession(t *testing.T) {
	srv, mem := newTestServer(t)

	endpoints := []struct {
		method, path string
		body         interface{}
	}{
		{http.MethodGet, "/v1/applications", nil},
		{http.MethodPatch, "/v1/applications/abc", map[string]string{"status": "approved"}},
		{http.MethodGet, "/v1/cards", nil},
		{http.MethodGet, "/v1/cards/X1", nil},
		{http.MethodPost, "/v1/cards", map[string]string{"uuid": "X1", "firstName": "A", "lastName": "B"}},
		{http.MethodPut, "/v1/cards/X1", map[string]string{"firstName": "A", "lastName": "B"}},
	}

	for _, e := range endpoints {
		rsp, env := doJSON(t, e.method, srv.URL+e.path, e.body, nil)
		assert.Equal(t, http.StatusUnauthorized, rsp.StatusCode, "%s %s", e.method, e.path)
		assert.False(t, env.Success)
		assert.Equal(t, "unauthorized", env.Error)
	}

	// unauthorized calls must never reach the store
	assert.Zero(t, mem.calls)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	srv, _ := newTestServer(t)

	rsp, env := doJSON(t, http.MethodPost, srv.URL+"/v1/auth/login",
		map[string]string{"username": "operator", "password": "wrong"}, nil)

	assert.Equal(t, http.StatusUnauthorized, rsp.StatusCode)
	assert.False(t, env.Success)
	assert.Equal(t, "invalid credentials", env.Error)
}

func TestSessionProbe(t *testing.T) {
	srv, _ := newTestServer(t)
	cookie := loginCookie(t, srv)

	rsp, env := doJSON(t, http.MethodGet, srv.URL+"/v1/auth/session", nil, cookie)
	require.Equal(t, http.StatusOK, rsp.StatusCode)
	require.True(t, env.Success)

	var identity auth.Identity
	require.NoError(t, json.Unmarshal(env.Data, &identity))
	assert.Equal(t, "operator", identity.Username)
}

func TestApplicationIntakeIsPublic(t *testing.T) {
	srv, _ := newTestServer(t)

	rsp, env := doJSON(t, http.MethodPost, srv.URL+"/v1/applications",
		map[string]string{"fullName": "Ada Lovelace", "email": "ada@example.com", "reason": "curious"}, nil)

	require.Equal(t, http.StatusOK, rsp.StatusCode)
	require.True(t, env.Success)

	var app models.MembershipApplication
	require.NoError(t, json.Unmarshal(env.Data, &app))
	assert.Equal(t, models.StatusPending, app.Status)
}

func TestDuplicateApplicationConflicts(t *testing.T) {
	srv, _ := newTestServer(t)

	body := map[string]string{"fullName": "Ada", "email": "ada@example.com", "reason": "x"}
	rsp, _ := doJSON(t, http.MethodPost, srv.URL+"/v1/applications", body, nil)
	require.Equal(t, http.StatusOK, rsp.StatusCode)

	rsp, env := doJSON(t, http.MethodPost, srv.URL+"/v1/applications", body, nil)
	assert.Equal(t, http.StatusConflict, rsp.StatusCode)
	assert.False(t, env.Success)
	assert.Equal(t, "an application with this email already exists", env.Error)
}

func TestCardFlowWithSession(t *testing.T) {
	srv, _ := newTestServer(t)
	cookie := loginCookie(t, srv)

	// unknown card
	rsp, env := doJSON(t, http.MethodGet, srv.URL+"/v1/cards/04A1B2", nil, cookie)
	assert.Equal(t, http.StatusNotFound, rsp.StatusCode)
	assert.Equal(t, "card not found", env.Error)

	// register it
	rsp, env = doJSON(t, http.MethodPost, srv.URL+"/v1/cards",
		map[string]string{"uuid": "04A1B2", "firstName": "Ada", "lastName": "Lovelace"}, cookie)
	require.Equal(t, http.StatusOK, rsp.StatusCode)
	require.True(t, env.Success)

	var card models.Card
	require.NoError(t, json.Unmarshal(env.Data, &card))
	assert.Equal(t, "Ada Lovelace", card.Content)

	// now it resolves
	rsp, env = doJSON(t, http.MethodGet, srv.URL+"/v1/cards/04A1B2", nil, cookie)
	require.Equal(t, http.StatusOK, rsp.StatusCode)
	require.NoError(t, json.Unmarshal(env.Data, &card))
	assert.Equal(t, "Ada", card.FirstName)

	// a second registration of the same uuid conflicts
	rsp, env = doJSON(t, http.MethodPost, srv.URL+"/v1/cards",
		map[string]string{"uuid": "04A1B2", "firstName": "Grace", "lastName": "Hopper"}, cookie)
	assert.Equal(t, http.StatusConflict, rsp.StatusCode)
	assert.Equal(t, "card already exists", env.Error)

	// update rewrites the profile and keeps the uuid
	rsp, env = doJSON(t, http.MethodPut, srv.URL+"/v1/cards/04A1B2",
		map[string]string{"firstName": "Grace", "lastName": "Hopper"}, cookie)
	require.Equal(t, http.StatusOK, rsp.StatusCode)
	require.NoError(t, json.Unmarshal(env.Data, &card))
	assert.Equal(t, "04A1B2", card.UUID)
	assert.Equal(t, "Grace Hopper", card.Content)
}

func TestBearerHeaderAlsoAccepted(t *testing.T) {
	srv, _ := newTestServer(t)
	cookie := loginCookie(t, srv)

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/v1/applications", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+cookie.Value)

	rsp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer rsp.Body.Close()
	assert.Equal(t, http.StatusOK, rsp.StatusCode)
}

func TestInvalidStatusRejected(t *testing.T) {
	srv, _ := newTestServer(t)
	cookie := loginCookie(t, srv)

	rsp, env := doJSON(t, http.MethodPatch, srv.URL+"/v1/applications/"+primitive.NewObjectID().Hex(),
		map[string]string{"status": "archived"}, cookie)

	assert.Equal(t, http.StatusBadRequest, rsp.StatusCode)
	assert.False(t, env.Success)
}

func TestStatusUpdateOnMissingApplication(t *testing.T) {
	srv, _ := newTestServer(t)
	cookie := loginCookie(t, srv)

	rsp, env := doJSON(t, http.MethodPatch, srv.URL+"/v1/applications/"+primitive.NewObjectID().Hex(),
		map[string]string{"status": "approved"}, cookie)

	assert.Equal(t, http.StatusNotFound, rsp.StatusCode)
	assert.Equal(t, "application not found", env.Error)
}
