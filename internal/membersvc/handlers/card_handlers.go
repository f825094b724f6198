package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi"

	"github.com/fielia/club-services/internal/membersvc/service"
)

func (h *Handler) GetCard(w http.ResponseWriter, r *http.Request) {
	card, err := h.cards.Lookup(r.Context(), chi.URLParam(r, "uuid"))
	if err != nil {
		h.serviceError(w, err)
		return
	}

	h.ok(w, card)
}

func (h *Handler) CreateCard(w http.ResponseWriter, r *http.Request) {
	var in service.CardInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		h.fail(w, http.StatusBadRequest, "invalid request body")
		return
	}

	card, err := h.cards.Create(r.Context(), in)
	if err != nil {
		h.serviceError(w, err)
		return
	}

	h.ok(w, card)
}

func (h *Handler) UpdateCard(w http.ResponseWriter, r *http.Request) {
	var in service.CardInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		h.fail(w, http.StatusBadRequest, "invalid request body")
		return
	}

	card, err := h.cards.Update(r.Context(), chi.URLParam(r, "uuid"), in)
	if err != nil {
		h.serviceError(w, err)
		return
	}

	h.ok(w, card)
}

func (h *Handler) ListCards(w http.ResponseWriter, r *http.Request) {
	cards, err := h.cards.ListAll(r.Context())
	if err != nil {
		h.serviceError(w, err)
		return
	}

	h.ok(w, cards)
}
