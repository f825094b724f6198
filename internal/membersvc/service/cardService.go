package service

import (
	"context"
	"errors"
	"strings"

	"github.com/fielia/club-services/internal/membersvc/models"
	"github.com/fielia/club-services/internal/membersvc/store"
)

// CardStore is the persistence port for the card directory.
type CardStore interface {
	GetByUUID(ctx context.Context, uuid string) (*models.Card, error)
	Create(ctx context.Context, card models.Card) (*models.Card, error)
	Update(ctx context.Context, uuid string, card models.Card) (*models.Card, error)
	List(ctx context.Context) ([]models.Card, error)
}

// CardInput carries the profile fields of a create or update request.
type CardInput struct {
	UUID       string `json:"uuid"`
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	Preference string `json:"preference"`
	Content    string `json:"content"`
}

// CardService struct represents the card directory service layer
type CardService struct {
	cardStore      CardStore
	events         EventSink
	requireContact bool
}

// NewCardService creates a new CardService instance. requireContact makes
// phone and address mandatory on create, matching the stricter schema revision.
func NewCardService(cardStore CardStore, events EventSink, requireContact bool) *CardService {
	return &CardService{
		cardStore:      cardStore,
		events:         events,
		requireContact: requireContact,
	}
}

// Lookup resolves a scanned card identifier to its guest profile.
func (s *CardService) Lookup(ctx context.Context, uuid string) (*models.Card, error) {
	uuid = strings.TrimSpace(uuid)
	if uuid == "" {
		return nil, &ValidationError{Msg: "uuid is required"}
	}

	card, err := s.cardStore.GetByUUID(ctx, uuid)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			if s.events != nil {
				s.events.Publish("card.scan.miss", map[string]string{"uuid": uuid})
			}
			return nil, &NotFoundError{Msg: "card not found"}
		}
		return nil, err
	}

	if s.events != nil {
		s.events.Publish("card.scan.hit", card)
	}

	return card, nil
}

// Create registers a fresh card profile for a previously unknown uuid.
func (s *CardService) Create(ctx context.Context, in CardInput) (*models.Card, error) {
	in = trimCardInput(in)

	if in.UUID == "" || in.FirstName == "" || in.LastName == "" {
		return nil, &ValidationError{Msg: "missing required fields"}
	}
	if s.requireContact && (in.Phone == "" || in.Address == "") {
		return nil, &ValidationError{Msg: "phone and address are required"}
	}

	card, err := s.cardStore.Create(ctx, models.Card{
		UUID:       in.UUID,
		FirstName:  in.FirstName,
		LastName:   in.LastName,
		Phone:      in.Phone,
		Address:    in.Address,
		Preference: in.Preference,
		Content:    defaultContent(in),
	})
	if err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, &ConflictError{Msg: "card already exists"}
		}
		return nil, err
	}

	if s.events != nil {
		s.events.Publish("card.created", card)
	}

	return card, nil
}

// Update rewrites the profile of an existing card. The uuid is immutable and
// only used to select the record.
func (s *CardService) Update(ctx context.Context, uuid string, in CardInput) (*models.Card, error) {
	uuid = strings.TrimSpace(uuid)
	if uuid == "" {
		return nil, &ValidationError{Msg: "uuid is required"}
	}

	in = trimCardInput(in)
	card, err := s.cardStore.Update(ctx, uuid, models.Card{
		FirstName:  in.FirstName,
		LastName:   in.LastName,
		Phone:      in.Phone,
		Address:    in.Address,
		Preference: in.Preference,
		Content:    defaultContent(in),
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, &NotFoundError{Msg: "card not found"}
		}
		return nil, err
	}

	if s.events != nil {
		s.events.Publish("card.updated", card)
	}

	return card, nil
}

// ListAll returns every registered card, newest first.
func (s *CardService) ListAll(ctx context.Context) ([]models.Card, error) {
	return s.cardStore.List(ctx)
}

func trimCardInput(in CardInput) CardInput {
	in.UUID = strings.TrimSpace(in.UUID)
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Address = strings.TrimSpace(in.Address)
	in.Preference = strings.TrimSpace(in.Preference)
	in.Content = strings.TrimSpace(in.Content)
	return in
}

func defaultContent(in CardInput) string {
	if in.Content != "" {
		return in.Content
	}
	return in.FirstName + " " + in.LastName
}
