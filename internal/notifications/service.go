package notifications

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/RMarques88/gelatoprod-backend/pkg/db/models"
	"github.com/RMarques88/gelatoprod-backend/pkg/enums"
	pkgerrors "github.com/RMarques88/gelatoprod-backend/pkg/errors"
)

// Service records notification requests and lets operators read them back.
// Request is best-effort from the caller's perspective: the ledger fires it
// after commit and only logs failures.
type Service interface {
	Request(ctx context.Context, title, message string, category enums.NotificationCategory, referenceID *uuid.UUID) error
	List(ctx context.Context, unreadOnly bool, limit int) ([]models.Notification, error)
	MarkRead(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo Repository
}

// NewService wires the notifications dependencies.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notifications repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Request(ctx context.Context, title, message string, category enums.NotificationCategory, referenceID *uuid.UUID) error {
	if strings.TrimSpace(title) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "notification title required")
	}
	if !category.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid notification category")
	}

	notification := &models.Notification{
		ID:          uuid.New(),
		Category:    category,
		Title:       title,
		Message:     message,
		ReferenceID: referenceID,
	}
	return s.repo.Create(ctx, notification)
}

func (s *service) List(ctx context.Context, unreadOnly bool, limit int) ([]models.Notification, error) {
	return s.repo.List(ctx, unreadOnly, limit)
}

func (s *service) MarkRead(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "notification id required")
	}
	affected, err := s.repo.MarkRead(ctx, id, time.Now().UTC())
	if err != nil {
		return err
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "notification not found or already read")
	}
	return nil
}
