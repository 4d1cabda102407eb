package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/RMarques88/gelatoprod-backend/pkg/enums"
)

// ProductionPlan schedules one production run of a recipe. Completion stamps
// the realized cost and quantity; divergences record where execution strayed
// from the plan.
type ProductionPlan struct {
	ID                  uuid.UUID           `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	RecipeID            uuid.UUID           `gorm:"column:recipe_id;type:uuid;not null;index" json:"recipeId"`
	QuantityUnits       decimal.Decimal     `gorm:"column:quantity_units;type:numeric(14,3);not null" json:"quantityUnits"`
	UnitOfMeasure       enums.UnitOfMeasure `gorm:"column:unit_of_measure;type:text;not null" json:"unitOfMeasure"`
	Status              enums.PlanStatus    `gorm:"column:status;type:text;not null" json:"status"`
	ScheduledFor        *time.Time          `gorm:"column:scheduled_for" json:"scheduledFor,omitempty"`
	RequestedBy         string              `gorm:"column:requested_by;type:text;not null" json:"requestedBy"`
	ActualQuantityUnits decimal.NullDecimal `gorm:"column:actual_quantity_units;type:numeric(14,3)" json:"actualQuantityUnits"`
	ActualCostBRL       decimal.NullDecimal `gorm:"column:actual_cost_brl;type:numeric(14,4)" json:"actualCostInBRL"`
	CompletedAt         *time.Time          `gorm:"column:completed_at" json:"completedAt,omitempty"`
	CancelledAt         *time.Time          `gorm:"column:cancelled_at" json:"cancelledAt,omitempty"`
	CreatedAt           time.Time           `gorm:"column:created_at;not null" json:"createdAt"`
	UpdatedAt           time.Time           `gorm:"column:updated_at;not null" json:"updatedAt"`
}

// ProductionDivergence is an immutable record of planned-vs-actual consumption
// for one ingredient of one plan, written when execution could not consume the
// full required quantity.
type ProductionDivergence struct {
	ID                uuid.UUID       `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	PlanID            uuid.UUID       `gorm:"column:plan_id;type:uuid;not null;index" json:"planId"`
	ProductID         uuid.UUID       `gorm:"column:product_id;type:uuid;not null" json:"productId"`
	ExpectedQuantityG decimal.Decimal `gorm:"column:expected_quantity_g;type:numeric(14,3);not null" json:"expectedQuantityInGrams"`
	ActualQuantityG   decimal.Decimal `gorm:"column:actual_quantity_g;type:numeric(14,3);not null" json:"actualQuantityInGrams"`
	Description       string          `gorm:"column:description;type:text;not null" json:"description"`
	CreatedAt         time.Time       `gorm:"column:created_at;not null" json:"createdAt"`
}
