package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi"
)

type applicationRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Reason   string `json:"reason"`
}

type statusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) SubmitApplication(w http.ResponseWriter, r *http.Request) {
	var req applicationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.fail(w, http.StatusBadRequest, "invalid request body")
		return
	}

	app, err := h.apps.Submit(r.Context(), req.FullName, req.Email, req.Reason)
	if err != nil {
		h.serviceError(w, err)
		return
	}

	h.ok(w, app)
}

func (h *Handler) ListApplications(w http.ResponseWriter, r *http.Request) {
	apps, err := h.apps.List(r.Context())
	if err != nil {
		h.serviceError(w, err)
		return
	}

	h.ok(w, apps)
}

func (h *Handler) UpdateApplicationStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.fail(w, http.StatusBadRequest, "invalid request body")
		return
	}

	app, err := h.apps.SetStatus(r.Context(), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		h.serviceError(w, err)
		return
	}

	h.ok(w, app)
}
