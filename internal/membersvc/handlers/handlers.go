package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"

	log "github.com/sirupsen/logrus"

	"github.com/fielia/club-services/internal/membersvc/auth"
	"github.com/fielia/club-services/internal/membersvc/service"
)

type Handler struct {
	auth  *auth.Auth
	apps  *service.ApplicationService
	cards *service.CardService
}

func NewHandler(a *auth.Auth, apps *service.ApplicationService, cards *service.CardService) *Handler {
	return &Handler{
		auth:  a,
		apps:  apps,
		cards: cards,
	}
}

// Response is the uniform envelope every operation returns. Nothing else ever
// reaches the caller, failures included.
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func (h *Handler) CreateResponse(w http.ResponseWriter, code int, rsp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	if err := json.NewEncoder(w).Encode(rsp); err != nil {
		log.Errorf("Failed to encode response: %v", err)
	}
}

func (h *Handler) ok(w http.ResponseWriter, data interface{}) {
	h.CreateResponse(w, http.StatusOK, Response{Success: true, Data: data})
}

func (h *Handler) fail(w http.ResponseWriter, code int, msg string) {
	h.CreateResponse(w, code, Response{Success: false, Error: msg})
}

// serviceError maps typed service failures onto HTTP statuses. Anything
// unrecognized is logged and reported as a generic internal failure.
func (h *Handler) serviceError(w http.ResponseWriter, err error) {
	var validation *service.ValidationError
	var conflict *service.ConflictError
	var notFound *service.NotFoundError

	switch {
	case errors.As(err, &validation):
		h.fail(w, http.StatusBadRequest, validation.Msg)
	case errors.As(err, &conflict):
		h.fail(w, http.StatusConflict, conflict.Msg)
	case errors.As(err, &notFound):
		h.fail(w, http.StatusNotFound, notFound.Msg)
	default:
		log.Errorf("internal error: %v", err)
		h.fail(w, http.StatusInternalServerError, "internal server error")
	}
}

func (h *Handler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	h.ok(w, "member service is running at port "+os.Getenv("MEMBER_SERVICE_PORT"))
}
