package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StockItem tracks the current quantity and cost basis of one product.
// Quantities are grams, costs are BRL per kilogram. All mutations go through
// the stock ledger; Version is the optimistic-concurrency token the ledger
// checks on every write.
type StockItem struct {
	ID                 uuid.UUID       `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	ProductID          uuid.UUID       `gorm:"column:product_id;type:uuid;not null;uniqueIndex" json:"productId"`
	CurrentQuantityG   decimal.Decimal `gorm:"column:current_quantity_g;type:numeric(14,3);not null" json:"currentQuantityInGrams"`
	MinimumQuantityG   decimal.Decimal `gorm:"column:minimum_quantity_g;type:numeric(14,3);not null" json:"minimumQuantityInGrams"`
	AverageUnitCostBRL decimal.Decimal `gorm:"column:average_unit_cost_brl;type:numeric(14,4);not null" json:"averageUnitCostInBRL"`
	HighestUnitCostBRL decimal.Decimal `gorm:"column:highest_unit_cost_brl;type:numeric(14,4);not null" json:"highestUnitCostInBRL"`
	LastMovementID     *uuid.UUID      `gorm:"column:last_movement_id;type:uuid" json:"lastMovementId,omitempty"`
	Version            int64           `gorm:"column:version;not null;default:0" json:"version"`
	ArchivedAt         *time.Time      `gorm:"column:archived_at" json:"archivedAt,omitempty"`
	CreatedAt          time.Time       `gorm:"column:created_at;not null" json:"createdAt"`
	UpdatedAt          time.Time       `gorm:"column:updated_at;not null" json:"updatedAt"`
}
