package notifications

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/RMarques88/gelatoprod-backend/pkg/db/models"
	"github.com/RMarques88/gelatoprod-backend/pkg/enums"
	pkgerrors "github.com/RMarques88/gelatoprod-backend/pkg/errors"
)

func newTestService(t *testing.T) Service {
	t.Helper()
	dsn := "file:notifications_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.Notification{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	svc, err := NewService(NewRepository(db))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestRequestAndList(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	ctx := context.Background()
	alertID := uuid.New()

	if err := svc.Request(ctx, "Low stock: hazelnut", "hazelnut is at 40g (minimum 100g)", enums.NotificationCategoryStockAlert, &alertID); err != nil {
		t.Fatalf("request: %v", err)
	}

	notifications, err := svc.List(ctx, true, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(notifications) != 1 {
		t.Fatalf("expected one notification, got %d", len(notifications))
	}
	got := notifications[0]
	if got.Title != "Low stock: hazelnut" || got.Category != enums.NotificationCategoryStockAlert {
		t.Fatalf("unexpected notification %+v", got)
	}
	if got.ReferenceID == nil || *got.ReferenceID != alertID {
		t.Fatalf("expected alert reference, got %+v", got.ReferenceID)
	}
	if got.ReadAt != nil {
		t.Fatal("new notification must be unread")
	}
}

func TestRequestValidation(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	ctx := context.Background()

	if err := svc.Request(ctx, "  ", "message", enums.NotificationCategoryStockAlert, nil); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for blank title, got %v", err)
	}
	if err := svc.Request(ctx, "title", "message", enums.NotificationCategory("bogus"), nil); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for bad category, got %v", err)
	}
}

func TestMarkRead(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	ctx := context.Background()

	if err := svc.Request(ctx, "title", "message", enums.NotificationCategoryProduction, nil); err != nil {
		t.Fatalf("request: %v", err)
	}
	notifications, err := svc.List(ctx, true, 0)
	if err != nil || len(notifications) != 1 {
		t.Fatalf("expected one unread notification, got %d (%v)", len(notifications), err)
	}

	if err := svc.MarkRead(ctx, notifications[0].ID); err != nil {
		t.Fatalf("mark read: %v", err)
	}
	// second mark of the same row reports not found
	if err := svc.MarkRead(ctx, notifications[0].ID); !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found on re-read, got %v", err)
	}

	unread, err := svc.List(ctx, true, 0)
	if err != nil {
		t.Fatalf("list unread: %v", err)
	}
	if len(unread) != 0 {
		t.Fatalf("expected no unread notifications, got %d", len(unread))
	}
}
