package production

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/RMarques88/gelatoprod-backend/pkg/db/models"
	"github.com/RMarques88/gelatoprod-backend/pkg/enums"
	pkgerrors "github.com/RMarques88/gelatoprod-backend/pkg/errors"
)

// Repository persists production plans and their divergence records.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreatePlan(ctx context.Context, plan *models.ProductionPlan) error
	FindPlan(ctx context.Context, id uuid.UUID) (*models.ProductionPlan, error)
	SavePlan(ctx context.Context, plan *models.ProductionPlan) error
	ListPlans(ctx context.Context, statuses []enums.PlanStatus) ([]models.ProductionPlan, error)
	CreateDivergence(ctx context.Context, divergence *models.ProductionDivergence) error
	ListDivergences(ctx context.Context, planID uuid.UUID) ([]models.ProductionDivergence, error)
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

func (r *repository) CreatePlan(ctx context.Context, plan *models.ProductionPlan) error {
	if err := r.db.WithContext(ctx).Create(plan).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to create production plan")
	}
	return nil
}

func (r *repository) FindPlan(ctx context.Context, id uuid.UUID) (*models.ProductionPlan, error) {
	var plan models.ProductionPlan
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&plan).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("production plan %s not found", id))
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to load production plan")
	}
	return &plan, nil
}

func (r *repository) SavePlan(ctx context.Context, plan *models.ProductionPlan) error {
	if err := r.db.WithContext(ctx).Save(plan).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to save production plan")
	}
	return nil
}

func (r *repository) ListPlans(ctx context.Context, statuses []enums.PlanStatus) ([]models.ProductionPlan, error) {
	query := r.db.WithContext(ctx).Order("created_at DESC")
	if len(statuses) > 0 {
		query = query.Where("status IN ?", statuses)
	}
	var plans []models.ProductionPlan
	if err := query.Find(&plans).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to list production plans")
	}
	return plans, nil
}

func (r *repository) CreateDivergence(ctx context.Context, divergence *models.ProductionDivergence) error {
	if err := r.db.WithContext(ctx).Create(divergence).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to create production divergence")
	}
	return nil
}

func (r *repository) ListDivergences(ctx context.Context, planID uuid.UUID) ([]models.ProductionDivergence, error) {
	var divergences []models.ProductionDivergence
	err := r.db.WithContext(ctx).
		Where("plan_id = ?", planID).
		Order("created_at ASC").
		Find(&divergences).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to list production divergences")
	}
	return divergences, nil
}
