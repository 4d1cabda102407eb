package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/RMarques88/gelatoprod-backend/pkg/enums"
)

// StockAlert is the single logical shortage alert for a stock item. The unique
// index on StockItemID enforces one row per item; the row is reopened in place
// rather than replaced, so an alert keeps its identity across trigger/resolve
// cycles.
type StockAlert struct {
	ID                 uuid.UUID           `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	StockItemID        uuid.UUID           `gorm:"column:stock_item_id;type:uuid;not null;uniqueIndex" json:"stockItemId"`
	ProductID          uuid.UUID           `gorm:"column:product_id;type:uuid;not null" json:"productId"`
	Status             enums.AlertStatus   `gorm:"column:status;type:text;not null" json:"status"`
	Severity           enums.AlertSeverity `gorm:"column:severity;type:text;not null" json:"severity"`
	CurrentQuantityG   decimal.Decimal     `gorm:"column:current_quantity_g;type:numeric(14,3);not null" json:"currentQuantityInGrams"`
	MinimumQuantityG   decimal.Decimal     `gorm:"column:minimum_quantity_g;type:numeric(14,3);not null" json:"minimumQuantityInGrams"`
	TriggeredAt        time.Time           `gorm:"column:triggered_at;not null" json:"triggeredAt"`
	AcknowledgedAt     *time.Time          `gorm:"column:acknowledged_at" json:"acknowledgedAt,omitempty"`
	ResolvedAt         *time.Time          `gorm:"column:resolved_at" json:"resolvedAt,omitempty"`
	LastNotificationAt *time.Time          `gorm:"column:last_notification_at" json:"lastNotificationAt,omitempty"`
	CreatedAt          time.Time           `gorm:"column:created_at;not null" json:"createdAt"`
	UpdatedAt          time.Time           `gorm:"column:updated_at;not null" json:"updatedAt"`
}
