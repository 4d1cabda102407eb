package stock

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/RMarques88/gelatoprod-backend/pkg/db/models"
	"github.com/RMarques88/gelatoprod-backend/pkg/enums"
	"github.com/RMarques88/gelatoprod-backend/pkg/pagination"
)

// ErrVersionConflict reports that a concurrent writer committed to the same
// stock item between this transaction's read and its conditional write.
var ErrVersionConflict = errors.New("stock item version conflict")

// ListMovementsQuery narrows and pages the movement history of one item.
type ListMovementsQuery struct {
	StockItemID uuid.UUID
	Limit       int
	Cursor      *pagination.Cursor
}

// Repository manages persistence for stock items, movements and alerts.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	CreateItem(ctx context.Context, item *models.StockItem) error
	FindItem(ctx context.Context, id uuid.UUID) (*models.StockItem, error)
	FindItemByProduct(ctx context.Context, productID uuid.UUID) (*models.StockItem, error)
	ListItems(ctx context.Context, includeArchived bool) ([]models.StockItem, error)
	UpdateItemVersioned(ctx context.Context, item *models.StockItem, expectedVersion int64) error
	UpdateItemMinimum(ctx context.Context, id uuid.UUID, minimumG decimal.Decimal) error
	ArchiveItem(ctx context.Context, id uuid.UUID, archivedAt time.Time) error
	DeleteItem(ctx context.Context, id uuid.UUID) error

	CreateMovement(ctx context.Context, movement *models.StockMovement) error
	ListMovements(ctx context.Context, query ListMovementsQuery) ([]models.StockMovement, *pagination.Cursor, error)

	FindAlertByItem(ctx context.Context, stockItemID uuid.UUID) (*models.StockAlert, error)
	FindAlert(ctx context.Context, id uuid.UUID) (*models.StockAlert, error)
	ListAlerts(ctx context.Context, statuses []enums.AlertStatus) ([]models.StockAlert, error)
	CreateAlert(ctx context.Context, alert *models.StockAlert) error
	SaveAlert(ctx context.Context, alert *models.StockAlert) error
	AcknowledgeAlertRow(ctx context.Context, id uuid.UUID, acknowledgedAt time.Time) error
	DeleteAlertByItem(ctx context.Context, stockItemID uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a stock repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateItem(ctx context.Context, item *models.StockItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *repository) FindItem(ctx context.Context, id uuid.UUID) (*models.StockItem, error) {
	var item models.StockItem
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repository) FindItemByProduct(ctx context.Context, productID uuid.UUID) (*models.StockItem, error) {
	var item models.StockItem
	if err := r.db.WithContext(ctx).Where("product_id = ?", productID).First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repository) ListItems(ctx context.Context, includeArchived bool) ([]models.StockItem, error) {
	query := r.db.WithContext(ctx).Order("created_at ASC")
	if !includeArchived {
		query = query.Where("archived_at IS NULL")
	}
	var items []models.StockItem
	if err := query.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// UpdateItemVersioned writes the ledger-owned columns only when nobody else
// bumped the version since the row was read. RowsAffected == 0 means a
// concurrent writer raced ahead.
func (r *repository) UpdateItemVersioned(ctx context.Context, item *models.StockItem, expectedVersion int64) error {
	res := r.db.WithContext(ctx).
		Model(&models.StockItem{}).
		Where("id = ? AND version = ?", item.ID, expectedVersion).
		Updates(map[string]any{
			"current_quantity_g":    item.CurrentQuantityG,
			"average_unit_cost_brl": item.AverageUnitCostBRL,
			"highest_unit_cost_brl": item.HighestUnitCostBRL,
			"last_movement_id":      item.LastMovementID,
			"version":               expectedVersion + 1,
			"updated_at":            time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrVersionConflict
	}
	item.Version = expectedVersion + 1
	return nil
}

// UpdateItemMinimum touches only the threshold column. A full-row save here
// would write back stale ledger columns and erase any adjust that committed
// after the caller's read.
func (r *repository) UpdateItemMinimum(ctx context.Context, id uuid.UUID, minimumG decimal.Decimal) error {
	return r.db.WithContext(ctx).
		Model(&models.StockItem{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"minimum_quantity_g": minimumG,
			"updated_at":         time.Now().UTC(),
		}).Error
}

func (r *repository) ArchiveItem(ctx context.Context, id uuid.UUID, archivedAt time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.StockItem{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"archived_at": archivedAt,
			"updated_at":  archivedAt,
		}).Error
}

func (r *repository) DeleteItem(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.StockItem{}, "id = ?", id).Error
}

func (r *repository) CreateMovement(ctx context.Context, movement *models.StockMovement) error {
	return r.db.WithContext(ctx).Create(movement).Error
}

func (r *repository) ListMovements(ctx context.Context, query ListMovementsQuery) ([]models.StockMovement, *pagination.Cursor, error) {
	limit := pagination.LimitWithBuffer(query.Limit)

	q := r.db.WithContext(ctx).
		Where("stock_item_id = ?", query.StockItemID).
		Order("performed_at DESC, id DESC").
		Limit(limit)

	if query.Cursor != nil {
		q = q.Where(
			"performed_at < ? OR (performed_at = ? AND id < ?)",
			query.Cursor.Timestamp, query.Cursor.Timestamp, query.Cursor.ID,
		)
	}

	var movements []models.StockMovement
	if err := q.Find(&movements).Error; err != nil {
		return nil, nil, err
	}

	var next *pagination.Cursor
	if len(movements) == limit {
		movements = movements[:limit-1]
		last := movements[len(movements)-1]
		next = &pagination.Cursor{Timestamp: last.PerformedAt, ID: last.ID}
	}
	return movements, next, nil
}

func (r *repository) FindAlertByItem(ctx context.Context, stockItemID uuid.UUID) (*models.StockAlert, error) {
	var alert models.StockAlert
	err := r.db.WithContext(ctx).Where("stock_item_id = ?", stockItemID).First(&alert).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &alert, nil
}

func (r *repository) FindAlert(ctx context.Context, id uuid.UUID) (*models.StockAlert, error) {
	var alert models.StockAlert
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&alert).Error; err != nil {
		return nil, err
	}
	return &alert, nil
}

func (r *repository) ListAlerts(ctx context.Context, statuses []enums.AlertStatus) ([]models.StockAlert, error) {
	query := r.db.WithContext(ctx).Order("triggered_at DESC")
	if len(statuses) > 0 {
		query = query.Where("status IN ?", statuses)
	}
	var alerts []models.StockAlert
	if err := query.Find(&alerts).Error; err != nil {
		return nil, err
	}
	return alerts, nil
}

func (r *repository) CreateAlert(ctx context.Context, alert *models.StockAlert) error {
	return r.db.WithContext(ctx).Create(alert).Error
}

func (r *repository) SaveAlert(ctx context.Context, alert *models.StockAlert) error {
	return r.db.WithContext(ctx).Save(alert).Error
}

// AcknowledgeAlertRow updates only the acknowledgement columns so it cannot
// revert a severity escalation the adjust transaction writes concurrently.
func (r *repository) AcknowledgeAlertRow(ctx context.Context, id uuid.UUID, acknowledgedAt time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.StockAlert{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":          enums.AlertStatusAcknowledged,
			"acknowledged_at": acknowledgedAt,
			"updated_at":      acknowledgedAt,
		}).Error
}

func (r *repository) DeleteAlertByItem(ctx context.Context, stockItemID uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.StockAlert{}, "stock_item_id = ?", stockItemID).Error
}
