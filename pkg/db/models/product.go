package models

import (
	"time"

	"github.com/google/uuid"
)

// Product is the catalog entry a stock item tracks quantities for. The full
// catalog (pricing, descriptions, media) lives outside the engine; this row
// carries what the ledger needs for display and referential integrity.
type Product struct {
	ID         uuid.UUID  `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Name       string     `gorm:"column:name;type:text;not null" json:"name"`
	ArchivedAt *time.Time `gorm:"column:archived_at" json:"archivedAt,omitempty"`
	CreatedAt  time.Time  `gorm:"column:created_at;not null" json:"createdAt"`
	UpdatedAt  time.Time  `gorm:"column:updated_at;not null" json:"updatedAt"`
}
