package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/RMarques88/gelatoprod-backend/pkg/enums"
)

// Recipe declares how one batch of a preparation is produced. YieldG is the
// total mass one batch yields; ingredient quantities are declared against that
// yield and scaled by the resolver.
type Recipe struct {
	ID          uuid.UUID          `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Name        string             `gorm:"column:name;type:text;not null" json:"name"`
	YieldG      decimal.Decimal    `gorm:"column:yield_g;type:numeric(14,3);not null" json:"yieldInGrams"`
	Ingredients []RecipeIngredient `gorm:"foreignKey:RecipeID" json:"ingredients"`
	ArchivedAt  *time.Time         `gorm:"column:archived_at" json:"archivedAt,omitempty"`
	CreatedAt   time.Time          `gorm:"column:created_at;not null" json:"createdAt"`
	UpdatedAt   time.Time          `gorm:"column:updated_at;not null" json:"updatedAt"`
}

// RecipeIngredient is one ordered line of a recipe: either a base product or a
// reference to another recipe. Exactly one of ProductID/ChildRecipeID is set,
// matching Kind. Recipes may share sub-recipes but the reference graph must
// stay acyclic; the resolver rejects cycles at read time.
type RecipeIngredient struct {
	ID            uuid.UUID            `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	RecipeID      uuid.UUID            `gorm:"column:recipe_id;type:uuid;not null;index" json:"recipeId"`
	Position      int                  `gorm:"column:position;not null" json:"position"`
	Kind          enums.IngredientKind `gorm:"column:kind;type:text;not null" json:"kind"`
	ProductID     *uuid.UUID           `gorm:"column:product_id;type:uuid" json:"productId,omitempty"`
	ChildRecipeID *uuid.UUID           `gorm:"column:child_recipe_id;type:uuid" json:"childRecipeId,omitempty"`
	QuantityG     decimal.Decimal      `gorm:"column:quantity_g;type:numeric(14,3);not null" json:"quantityInGrams"`
	CreatedAt     time.Time            `gorm:"column:created_at;not null" json:"createdAt"`
}
