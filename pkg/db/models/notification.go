package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/RMarques88/gelatoprod-backend/pkg/enums"
)

// Notification stores in-app notification payloads. Delivery to devices is a
// separate concern; the engine only records the request.
type Notification struct {
	ID          uuid.UUID                  `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Category    enums.NotificationCategory `gorm:"column:category;type:text;not null" json:"category"`
	Title       string                     `gorm:"column:title;type:text;not null" json:"title"`
	Message     string                     `gorm:"column:message;type:text;not null" json:"message"`
	ReferenceID *uuid.UUID                 `gorm:"column:reference_id;type:uuid" json:"referenceId,omitempty"`
	ReadAt      *time.Time                 `gorm:"column:read_at" json:"readAt,omitempty"`
	CreatedAt   time.Time                  `gorm:"column:created_at;not null" json:"createdAt"`
}
