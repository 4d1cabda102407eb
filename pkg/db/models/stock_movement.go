package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/RMarques88/gelatoprod-backend/pkg/enums"
)

// StockMovement is an append-only audit fact. Rows are created inside the same
// transaction that updates the owning stock item and are never mutated or
// deleted afterwards. QuantityG is a magnitude; the sign is implied by Type.
type StockMovement struct {
	ID                 uuid.UUID           `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	StockItemID        uuid.UUID           `gorm:"column:stock_item_id;type:uuid;not null;index:idx_stock_movements_item_time" json:"stockItemId"`
	ProductID          uuid.UUID           `gorm:"column:product_id;type:uuid;not null" json:"productId"`
	Type               enums.MovementType  `gorm:"column:type;type:text;not null" json:"type"`
	QuantityG          decimal.Decimal     `gorm:"column:quantity_g;type:numeric(14,3);not null" json:"quantityInGrams"`
	PreviousQuantityG  decimal.Decimal     `gorm:"column:previous_quantity_g;type:numeric(14,3);not null" json:"previousQuantityInGrams"`
	ResultingQuantityG decimal.Decimal     `gorm:"column:resulting_quantity_g;type:numeric(14,3);not null" json:"resultingQuantityInGrams"`
	UnitCostBRL        decimal.NullDecimal `gorm:"column:unit_cost_brl;type:numeric(14,4)" json:"unitCostInBRL"`
	PerformedBy        string              `gorm:"column:performed_by;type:text;not null" json:"performedBy"`
	PerformedAt        time.Time           `gorm:"column:performed_at;not null;index:idx_stock_movements_item_time" json:"performedAt"`
	Note               *string             `gorm:"column:note;type:text" json:"note,omitempty"`
	CreatedAt          time.Time           `gorm:"column:created_at;not null" json:"createdAt"`
}
