package service

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/fielia/club-services/internal/membersvc/models"
	"github.com/fielia/club-services/internal/membersvc/store"
)

var emailPattern = regexp.MustCompile(`^\w+([.-]?\w+)*@\w+([.-]?\w+)*(\.\w{2,3})+$`)

// ApplicationStore is the persistence port for membership applications.
type ApplicationStore interface {
	Create(ctx context.Context, app models.MembershipApplication) (*models.MembershipApplication, error)
	List(ctx context.Context) ([]models.MembershipApplication, error)
	UpdateStatus(ctx context.Context, id string, status string) (*models.MembershipApplication, error)
}

// EventSink receives domain events after successful mutations. Publishing is
// best-effort, implementations must not fail the calling operation.
type EventSink interface {
	Publish(eventType string, data interface{})
}

// ApplicationService struct represents the membership application service layer
type ApplicationService struct {
	appStore ApplicationStore
	events   EventSink
}

// NewApplicationService creates a new ApplicationService instance
func NewApplicationService(appStore ApplicationStore, events EventSink) *ApplicationService {
	return &ApplicationService{
		appStore: appStore,
		events:   events,
	}
}

// Submit validates and persists a new membership application. At most one
// application may exist per normalized email, the unique index decides.
func (s *ApplicationService) Submit(ctx context.Context, fullName, email, reason string) (*models.MembershipApplication, error) {
	fullName = strings.TrimSpace(fullName)
	email = strings.ToLower(strings.TrimSpace(email))
	reason = strings.TrimSpace(reason)

	if fullName == "" || email == "" || reason == "" {
		return nil, &ValidationError{Msg: "all fields are required"}
	}

	if !emailPattern.MatchString(email) {
		return nil, &ValidationError{Msg: "please provide a valid email address"}
	}

	app, err := s.appStore.Create(ctx, models.MembershipApplication{
		FullName: fullName,
		Email:    email,
		Reason:   reason,
		Status:   models.StatusPending,
	})
	if err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, &ConflictError{Msg: "an application with this email already exists"}
		}
		return nil, err
	}

	if s.events != nil {
		s.events.Publish("application.created", app)
	}

	return app, nil
}

// List returns all applications, newest first.
func (s *ApplicationService) List(ctx context.Context) ([]models.MembershipApplication, error) {
	return s.appStore.List(ctx)
}

// SetStatus moves an application to one of pending, approved or rejected.
func (s *ApplicationService) SetStatus(ctx context.Context, id, status string) (*models.MembershipApplication, error) {
	if !models.ValidStatus(status) {
		return nil, &ValidationError{Msg: "status must be pending, approved or rejected"}
	}

	app, err := s.appStore.UpdateStatus(ctx, id, status)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, &NotFoundError{Msg: "application not found"}
		}
		return nil, err
	}

	if s.events != nil {
		s.events.Publish("application.status", app)
	}

	return app, nil
}
