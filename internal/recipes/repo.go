package recipes

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/RMarques88/gelatoprod-backend/pkg/db/models"
	pkgerrors "github.com/RMarques88/gelatoprod-backend/pkg/errors"
)

// Repository loads recipes with their ordered ingredient lines. It satisfies
// Lookup so the resolver can walk the graph straight off the database.
type Repository interface {
	Lookup
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, recipe *models.Recipe) error
	List(ctx context.Context) ([]models.Recipe, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{db: tx}
}

func (r *repository) GetRecipe(ctx context.Context, id uuid.UUID) (*models.Recipe, error) {
	var recipe models.Recipe
	err := r.db.WithContext(ctx).
		Preload("Ingredients", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Where("id = ?", id).
		First(&recipe).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("recipe %s not found", id))
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to load recipe")
	}
	return &recipe, nil
}

func (r *repository) Create(ctx context.Context, recipe *models.Recipe) error {
	if err := r.db.WithContext(ctx).Create(recipe).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to create recipe")
	}
	return nil
}

func (r *repository) List(ctx context.Context) ([]models.Recipe, error) {
	var recipes []models.Recipe
	err := r.db.WithContext(ctx).
		Where("archived_at IS NULL").
		Order("name ASC").
		Find(&recipes).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to list recipes")
	}
	return recipes, nil
}
