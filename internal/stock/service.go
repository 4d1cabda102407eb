package stock

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/RMarques88/gelatoprod-backend/internal/products"
	"github.com/RMarques88/gelatoprod-backend/pkg/db/models"
	"github.com/RMarques88/gelatoprod-backend/pkg/enums"
	pkgerrors "github.com/RMarques88/gelatoprod-backend/pkg/errors"
	"github.com/RMarques88/gelatoprod-backend/pkg/logger"
	"github.com/RMarques88/gelatoprod-backend/pkg/metrics"
	"github.com/RMarques88/gelatoprod-backend/pkg/pagination"
)

const defaultMaxAdjustAttempts = 5

// Notifier is the sink the ledger hands alert notifications to. Delivery is
// best-effort and happens after the transaction commits.
type Notifier interface {
	Request(ctx context.Context, title, message string, category enums.NotificationCategory, referenceID *uuid.UUID) error
}

// AdjustInput carries one ledger mutation. QuantityG is a magnitude for
// initial/increment/decrement and the absolute target quantity for
// adjustment. UnitCostBRL is BRL per kilogram.
type AdjustInput struct {
	StockItemID uuid.UUID
	Type        enums.MovementType
	QuantityG   decimal.Decimal
	UnitCostBRL *decimal.Decimal
	PerformedBy string
	Note        *string
}

// CreateItemInput provisions stock tracking for a product.
type CreateItemInput struct {
	ProductID        uuid.UUID
	MinimumQuantityG decimal.Decimal
}

// ListMovementsParams pages one item's movement history, newest first.
type ListMovementsParams struct {
	StockItemID uuid.UUID
	Limit       int
	Cursor      string
}

// MovementPage wraps one page of movements and the cursor for the next.
type MovementPage struct {
	Items  []models.StockMovement `json:"items"`
	Cursor string                 `json:"cursor"`
}

// Service is the stock ledger: every quantity or cost mutation of a stock
// item goes through Adjust, which serializes concurrent writers per item and
// derives alert transitions in the same transaction.
type Service interface {
	CreateItem(ctx context.Context, input CreateItemInput) (*models.StockItem, error)
	GetItem(ctx context.Context, id uuid.UUID) (*models.StockItem, error)
	GetItemByProduct(ctx context.Context, productID uuid.UUID) (*models.StockItem, error)
	ListItems(ctx context.Context, includeArchived bool) ([]models.StockItem, error)
	UpdateMinimum(ctx context.Context, id uuid.UUID, minimumG decimal.Decimal) (*models.StockItem, error)
	Adjust(ctx context.Context, input AdjustInput) (*models.StockMovement, error)
	Archive(ctx context.Context, id uuid.UUID) (*models.StockItem, error)
	DeleteWithCompensation(ctx context.Context, id uuid.UUID, performedBy string) error
	ListMovements(ctx context.Context, params ListMovementsParams) (*MovementPage, error)
	ListAlerts(ctx context.Context, statuses []enums.AlertStatus) ([]models.StockAlert, error)
	AcknowledgeAlert(ctx context.Context, alertID uuid.UUID) (*models.StockAlert, error)
}

// ServiceParams collects the ledger dependencies.
type ServiceParams struct {
	DB       *gorm.DB
	Repo     Repository
	Products products.Repository
	Notifier Notifier
	Logger   *logger.Logger
	Metrics  *metrics.LedgerMetrics

	MaxAdjustAttempts   int
	NotificationTimeout time.Duration
}

type service struct {
	db       *gorm.DB
	repo     Repository
	products products.Repository
	notifier Notifier
	logg     *logger.Logger
	metrics  *metrics.LedgerMetrics

	maxAttempts  int
	notifTimeout time.Duration
}

// NewService wires the stock ledger.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "stock db handle required")
	}
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "stock repository required")
	}
	if params.Products == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "product finder required")
	}
	attempts := params.MaxAdjustAttempts
	if attempts <= 0 {
		attempts = defaultMaxAdjustAttempts
	}
	timeout := params.NotificationTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &service{
		db:           params.DB,
		repo:         params.Repo,
		products:     params.Products,
		notifier:     params.Notifier,
		logg:         params.Logger,
		metrics:      params.Metrics,
		maxAttempts:  attempts,
		notifTimeout: timeout,
	}, nil
}

func (s *service) CreateItem(ctx context.Context, input CreateItemInput) (*models.StockItem, error) {
	if input.ProductID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	if input.MinimumQuantityG.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "minimum quantity cannot be negative")
	}
	if _, err := s.products.FindByID(ctx, input.ProductID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, err
	}
	if existing, err := s.repo.FindItemByProduct(ctx, input.ProductID); err == nil && existing != nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "stock item already exists for product")
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	item := &models.StockItem{
		ID:                 uuid.New(),
		ProductID:          input.ProductID,
		CurrentQuantityG:   decimal.Zero,
		MinimumQuantityG:   input.MinimumQuantityG,
		AverageUnitCostBRL: decimal.Zero,
		HighestUnitCostBRL: decimal.Zero,
	}
	if err := s.repo.CreateItem(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *service) GetItem(ctx context.Context, id uuid.UUID) (*models.StockItem, error) {
	item, err := s.repo.FindItem(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "stock item not found")
	}
	return item, err
}

func (s *service) GetItemByProduct(ctx context.Context, productID uuid.UUID) (*models.StockItem, error) {
	item, err := s.repo.FindItemByProduct(ctx, productID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "stock item not found for product")
	}
	return item, err
}

func (s *service) ListItems(ctx context.Context, includeArchived bool) ([]models.StockItem, error) {
	return s.repo.ListItems(ctx, includeArchived)
}

func (s *service) UpdateMinimum(ctx context.Context, id uuid.UUID, minimumG decimal.Decimal) (*models.StockItem, error) {
	if minimumG.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "minimum quantity cannot be negative")
	}
	if _, err := s.GetItem(ctx, id); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateItemMinimum(ctx, id, minimumG); err != nil {
		return nil, err
	}
	return s.GetItem(ctx, id)
}

// alertNotice carries everything the post-commit notification needs out of
// the transaction.
type alertNotice struct {
	AlertID  uuid.UUID
	Title    string
	Message  string
	Severity enums.AlertSeverity
}

// Adjust runs one read-compute-write cycle against the stock item, its alert
// and the owning product name, retrying from a fresh read on version conflict.
// The movement, the item update and the alert write commit together or not at
// all; the notification request is a best-effort post-commit effect.
func (s *service) Adjust(ctx context.Context, input AdjustInput) (*models.StockMovement, error) {
	if err := validateAdjustInput(input); err != nil {
		return nil, err
	}

	start := time.Now()
	var (
		movement *models.StockMovement
		notice   *alertNotice
	)

	attempt := 0
	for ; attempt < s.maxAttempts; attempt++ {
		var err error
		movement, notice, err = s.tryAdjust(ctx, input)
		if errors.Is(err, ErrVersionConflict) {
			s.metrics.IncConflict()
			if s.logg != nil {
				s.logg.Warn(s.logg.WithStockItemID(ctx, input.StockItemID.String()), "stock adjust conflict, retrying")
			}
			continue
		}
		if err != nil {
			return nil, err
		}
		break
	}
	if attempt == s.maxAttempts {
		s.metrics.IncRetriesExhausted()
		return nil, pkgerrors.New(pkgerrors.CodeConcurrency,
			fmt.Sprintf("stock adjustment aborted after %d attempts", s.maxAttempts))
	}

	s.metrics.ObserveAdjust(input.Type.String(), time.Since(start))

	if notice != nil {
		go s.dispatchNotification(*notice)
	}
	return movement, nil
}

func validateAdjustInput(input AdjustInput) error {
	if input.StockItemID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "stock item id required")
	}
	if !input.Type.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid movement type")
	}
	if strings.TrimSpace(input.PerformedBy) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "performed by required")
	}
	switch input.Type {
	case enums.MovementTypeAdjustment:
		if input.QuantityG.IsNegative() {
			return pkgerrors.New(pkgerrors.CodeValidation, "adjustment quantity cannot be negative")
		}
	default:
		if input.QuantityG.LessThanOrEqual(decimal.Zero) {
			return pkgerrors.New(pkgerrors.CodeValidation, "movement quantity must be positive")
		}
	}
	return nil
}

func (s *service) tryAdjust(ctx context.Context, input AdjustInput) (*models.StockMovement, *alertNotice, error) {
	var (
		movement *models.StockMovement
		notice   *alertNotice
	)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		item, err := repo.FindItem(ctx, input.StockItemID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "stock item not found")
		}
		if err != nil {
			return err
		}
		if item.ArchivedAt != nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "stock item is archived")
		}

		alert, err := repo.FindAlertByItem(ctx, item.ID)
		if err != nil {
			return err
		}

		productName := "product"
		if product, err := s.products.WithTx(tx).FindByID(ctx, item.ProductID); err == nil {
			productName = product.Name
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		previousQty := item.CurrentQuantityG
		resultingQty := resultingQuantity(input.Type, previousQty, input.QuantityG)

		costUpdate, err := ComputeCostUpdate(
			input.Type,
			previousQty, item.AverageUnitCostBRL, item.HighestUnitCostBRL,
			resultingQty, input.QuantityG, input.UnitCostBRL,
		)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		movement = &models.StockMovement{
			ID:                 uuid.New(),
			StockItemID:        item.ID,
			ProductID:          item.ProductID,
			Type:               input.Type,
			QuantityG:          input.QuantityG,
			PreviousQuantityG:  previousQty,
			ResultingQuantityG: resultingQty,
			UnitCostBRL:        costUpdate.MovementUnitCostBRL,
			PerformedBy:        input.PerformedBy,
			PerformedAt:        now,
			Note:               input.Note,
		}

		expectedVersion := item.Version
		item.CurrentQuantityG = resultingQty
		item.AverageUnitCostBRL = costUpdate.AverageUnitCostBRL
		item.HighestUnitCostBRL = costUpdate.HighestUnitCostBRL
		item.LastMovementID = &movement.ID

		if err := repo.UpdateItemVersioned(ctx, item, expectedVersion); err != nil {
			return err
		}
		if err := repo.CreateMovement(ctx, movement); err != nil {
			return err
		}

		outcome := TransitionAlert(alert, item, resultingQty, now)
		if outcome.Alert != nil {
			if outcome.IsNew {
				outcome.Alert.ID = uuid.New()
				if err := repo.CreateAlert(ctx, outcome.Alert); err != nil {
					return err
				}
			} else if err := repo.SaveAlert(ctx, outcome.Alert); err != nil {
				return err
			}
			s.metrics.IncAlertTransition(string(outcome.Transition))
		}
		if outcome.Notify {
			notice = buildAlertNotice(outcome.Alert, productName)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return movement, notice, nil
}

func resultingQuantity(movementType enums.MovementType, previous, quantity decimal.Decimal) decimal.Decimal {
	switch movementType {
	case enums.MovementTypeInitial, enums.MovementTypeIncrement:
		return previous.Add(quantity)
	case enums.MovementTypeDecrement:
		result := previous.Sub(quantity)
		if result.IsNegative() {
			return decimal.Zero
		}
		return result
	default:
		return quantity
	}
}

func buildAlertNotice(alert *models.StockAlert, productName string) *alertNotice {
	title := fmt.Sprintf("Low stock: %s", productName)
	if alert.Severity == enums.AlertSeverityCritical {
		title = fmt.Sprintf("Out of stock: %s", productName)
	}
	message := fmt.Sprintf(
		"%s is at %sg (minimum %sg)",
		productName,
		alert.CurrentQuantityG.StringFixed(0),
		alert.MinimumQuantityG.StringFixed(0),
	)
	return &alertNotice{
		AlertID:  alert.ID,
		Title:    title,
		Message:  message,
		Severity: alert.Severity,
	}
}

func (s *service) dispatchNotification(notice alertNotice) {
	if s.notifier == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), s.notifTimeout)
	defer cancel()

	alertID := notice.AlertID
	err := s.notifier.Request(ctx, notice.Title, notice.Message, enums.NotificationCategoryStockAlert, &alertID)
	if err != nil && s.logg != nil {
		s.logg.Warn(s.logg.WithField(ctx, "alert_id", alertID.String()), "stock alert notification failed")
	}
}

func (s *service) Archive(ctx context.Context, id uuid.UUID) (*models.StockItem, error) {
	item, err := s.GetItem(ctx, id)
	if err != nil {
		return nil, err
	}
	if item.ArchivedAt != nil {
		return item, nil
	}
	if err := s.repo.ArchiveItem(ctx, id, time.Now().UTC()); err != nil {
		return nil, err
	}
	return s.GetItem(ctx, id)
}

// DeleteWithCompensation records an adjustment to zero so the audit trail
// closes out the remaining quantity, then removes the item and its alert.
// Movements are retained. Used when the owning product is permanently deleted.
func (s *service) DeleteWithCompensation(ctx context.Context, id uuid.UUID, performedBy string) error {
	item, err := s.GetItem(ctx, id)
	if err != nil {
		return err
	}

	if item.ArchivedAt == nil && !item.CurrentQuantityG.IsZero() {
		note := "compensating adjustment before permanent removal"
		if _, err := s.Adjust(ctx, AdjustInput{
			StockItemID: item.ID,
			Type:        enums.MovementTypeAdjustment,
			QuantityG:   decimal.Zero,
			PerformedBy: performedBy,
			Note:        &note,
		}); err != nil {
			return err
		}
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.DeleteAlertByItem(ctx, item.ID); err != nil {
			return err
		}
		return repo.DeleteItem(ctx, item.ID)
	})
}

func (s *service) ListMovements(ctx context.Context, params ListMovementsParams) (*MovementPage, error) {
	if params.StockItemID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock item id required")
	}
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	movements, next, err := s.repo.ListMovements(ctx, ListMovementsQuery{
		StockItemID: params.StockItemID,
		Limit:       params.Limit,
		Cursor:      cursor,
	})
	if err != nil {
		return nil, err
	}

	page := &MovementPage{Items: movements}
	if next != nil {
		page.Cursor = pagination.EncodeCursor(*next)
	}
	return page, nil
}

func (s *service) ListAlerts(ctx context.Context, statuses []enums.AlertStatus) ([]models.StockAlert, error) {
	for _, status := range statuses {
		if !status.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid alert status %q", status))
		}
	}
	return s.repo.ListAlerts(ctx, statuses)
}

func (s *service) AcknowledgeAlert(ctx context.Context, alertID uuid.UUID) (*models.StockAlert, error) {
	alert, err := s.repo.FindAlert(ctx, alertID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "alert not found")
	}
	if err != nil {
		return nil, err
	}
	switch alert.Status {
	case enums.AlertStatusAcknowledged:
		return alert, nil
	case enums.AlertStatusResolved:
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "alert is already resolved")
	}
	if err := s.repo.AcknowledgeAlertRow(ctx, alertID, time.Now().UTC()); err != nil {
		return nil, err
	}
	return s.repo.FindAlert(ctx, alertID)
}
