package production

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"

	"github.com/RMarques88/gelatoprod-backend/internal/recipes"
	"github.com/RMarques88/gelatoprod-backend/internal/stock"
	"github.com/RMarques88/gelatoprod-backend/pkg/db/models"
	"github.com/RMarques88/gelatoprod-backend/pkg/enums"
	pkgerrors "github.com/RMarques88/gelatoprod-backend/pkg/errors"
	"github.com/RMarques88/gelatoprod-backend/pkg/logger"
)

// ScheduleInput creates a plan in scheduled state.
type ScheduleInput struct {
	RecipeID      uuid.UUID
	QuantityUnits decimal.Decimal
	UnitOfMeasure enums.UnitOfMeasure
	ScheduledFor  *time.Time
	RequestedBy   string
}

// CompletionSummary reports what completing a plan actually did: the ledger
// movements issued, the divergences recorded for shortages, and the realized
// cost of everything consumed.
type CompletionSummary struct {
	Plan            *models.ProductionPlan        `json:"plan"`
	Movements       []models.StockMovement        `json:"movements"`
	Divergences     []models.ProductionDivergence `json:"divergences"`
	RealizedCostBRL decimal.Decimal               `json:"realizedCostInBRL"`
}

// Service orchestrates production runs: scheduling plans, resolving their
// ingredient requirements and consuming stock on completion. Consumption is a
// sequence of independently committed ledger adjustments, never one
// transaction across ingredients.
type Service interface {
	Schedule(ctx context.Context, input ScheduleInput) (*models.ProductionPlan, error)
	Start(ctx context.Context, planID uuid.UUID) (*models.ProductionPlan, error)
	Cancel(ctx context.Context, planID uuid.UUID) (*models.ProductionPlan, error)
	Complete(ctx context.Context, planID uuid.UUID, performedBy string) (*CompletionSummary, error)
	GetPlan(ctx context.Context, planID uuid.UUID) (*models.ProductionPlan, error)
	ListPlans(ctx context.Context, statuses []enums.PlanStatus) ([]models.ProductionPlan, error)
	ListDivergences(ctx context.Context, planID uuid.UUID) ([]models.ProductionDivergence, error)
}

// ServiceParams collects the orchestrator dependencies.
type ServiceParams struct {
	Repo    Repository
	Recipes recipes.Repository
	Stock   stock.Service
	Logger  *logger.Logger
}

type service struct {
	repo    Repository
	recipes recipes.Repository
	stock   stock.Service
	logg    *logger.Logger
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "production: repository is required")
	}
	if params.Recipes == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "production: recipes repository is required")
	}
	if params.Stock == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "production: stock service is required")
	}
	return &service{
		repo:    params.Repo,
		recipes: params.Recipes,
		stock:   params.Stock,
		logg:    params.Logger,
	}, nil
}

func (s *service) Schedule(ctx context.Context, input ScheduleInput) (*models.ProductionPlan, error) {
	if !input.QuantityUnits.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "plan quantity must be positive")
	}
	if !input.UnitOfMeasure.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown unit of measure %q", input.UnitOfMeasure))
	}
	if input.RequestedBy == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "requestedBy is required")
	}
	if _, err := s.recipes.GetRecipe(ctx, input.RecipeID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	plan := &models.ProductionPlan{
		ID:            uuid.New(),
		RecipeID:      input.RecipeID,
		QuantityUnits: input.QuantityUnits,
		UnitOfMeasure: input.UnitOfMeasure,
		Status:        enums.PlanStatusScheduled,
		ScheduledFor:  input.ScheduledFor,
		RequestedBy:   input.RequestedBy,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.repo.CreatePlan(ctx, plan); err != nil {
		return nil, err
	}
	return plan, nil
}

func (s *service) Start(ctx context.Context, planID uuid.UUID) (*models.ProductionPlan, error) {
	plan, err := s.repo.FindPlan(ctx, planID)
	if err != nil {
		return nil, err
	}
	if plan.Status != enums.PlanStatusScheduled {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("plan is %s, only scheduled plans can start", plan.Status))
	}
	plan.Status = enums.PlanStatusInProgress
	plan.UpdatedAt = time.Now().UTC()
	if err := s.repo.SavePlan(ctx, plan); err != nil {
		return nil, err
	}
	return plan, nil
}

func (s *service) Cancel(ctx context.Context, planID uuid.UUID) (*models.ProductionPlan, error) {
	plan, err := s.repo.FindPlan(ctx, planID)
	if err != nil {
		return nil, err
	}
	if plan.Status.IsTerminal() {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("plan is already %s", plan.Status))
	}
	now := time.Now().UTC()
	plan.Status = enums.PlanStatusCancelled
	plan.CancelledAt = &now
	plan.UpdatedAt = now
	if err := s.repo.SavePlan(ctx, plan); err != nil {
		return nil, err
	}
	return plan, nil
}

func (s *service) GetPlan(ctx context.Context, planID uuid.UUID) (*models.ProductionPlan, error) {
	return s.repo.FindPlan(ctx, planID)
}

func (s *service) ListPlans(ctx context.Context, statuses []enums.PlanStatus) ([]models.ProductionPlan, error) {
	return s.repo.ListPlans(ctx, statuses)
}

func (s *service) ListDivergences(ctx context.Context, planID uuid.UUID) ([]models.ProductionDivergence, error) {
	return s.repo.ListDivergences(ctx, planID)
}

// Complete consumes stock for the plan's resolved requirements and stamps the
// plan with its realized cost. Each ingredient's ledger adjustment commits
// independently: a failure on ingredient N leaves ingredients 1..N-1
// consumed, surfaced as a partial-consumption error listing both sides so an
// operator can reconcile.
func (s *service) Complete(ctx context.Context, planID uuid.UUID, performedBy string) (*CompletionSummary, error) {
	if performedBy == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "performedBy is required")
	}

	plan, err := s.repo.FindPlan(ctx, planID)
	if err != nil {
		return nil, err
	}
	if plan.Status.IsTerminal() {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("plan is already %s", plan.Status))
	}

	requestedG, err := s.planGrams(ctx, plan)
	if err != nil {
		return nil, err
	}
	resolution, err := recipes.Resolve(ctx, s.recipes, plan.RecipeID, requestedG)
	if err != nil {
		return nil, err
	}

	// deterministic consumption order so partial failures are reproducible
	productIDs := make([]uuid.UUID, 0, len(resolution.FlatRequirements))
	for productID := range resolution.FlatRequirements {
		productIDs = append(productIDs, productID)
	}
	sort.Slice(productIDs, func(i, j int) bool {
		return productIDs[i].String() < productIDs[j].String()
	})

	note := fmt.Sprintf("production plan %s", plan.ID)
	summary := &CompletionSummary{Plan: plan, RealizedCostBRL: decimal.Zero}
	consumed := make([]uuid.UUID, 0, len(productIDs))
	shortageRatio := decimal.NewFromInt(1)

	for index, productID := range productIDs {
		requiredG := decimal.NewFromFloat(resolution.FlatRequirements[productID]).Round(3)

		item, err := s.stock.GetItemByProduct(ctx, productID)
		if err != nil {
			return nil, s.partialFailure(productIDs, consumed, index, err)
		}

		availableG := item.CurrentQuantityG
		consumeG := requiredG
		if availableG.LessThan(requiredG) {
			consumeG = availableG
		}

		if consumeG.IsPositive() {
			movement, err := s.stock.Adjust(ctx, stock.AdjustInput{
				StockItemID: item.ID,
				Type:        enums.MovementTypeDecrement,
				QuantityG:   consumeG,
				PerformedBy: performedBy,
				Note:        &note,
			})
			if err != nil {
				return nil, s.partialFailure(productIDs, consumed, index, err)
			}
			summary.Movements = append(summary.Movements, *movement)
			if movement.UnitCostBRL.Valid {
				summary.RealizedCostBRL = summary.RealizedCostBRL.Add(stock.CostOfGoods(consumeG, movement.UnitCostBRL.Decimal))
			}
		}
		// the decrement is committed: from here on this product belongs to the
		// consumed side of any partial-failure report
		consumed = append(consumed, productID)

		if consumeG.LessThan(requiredG) {
			divergence := &models.ProductionDivergence{
				ID:                uuid.New(),
				PlanID:            plan.ID,
				ProductID:         productID,
				ExpectedQuantityG: requiredG,
				ActualQuantityG:   consumeG,
				Description:       fmt.Sprintf("shortage: required %sg, consumed %sg", requiredG, consumeG),
				CreatedAt:         time.Now().UTC(),
			}
			if err := s.repo.CreateDivergence(ctx, divergence); err != nil {
				return nil, s.partialFailure(productIDs, consumed, index+1, err)
			}
			summary.Divergences = append(summary.Divergences, *divergence)
			if requiredG.IsPositive() {
				ratio := consumeG.Div(requiredG)
				if ratio.LessThan(shortageRatio) {
					shortageRatio = ratio
				}
			}
		}
	}

	now := time.Now().UTC()
	plan.Status = enums.PlanStatusCompleted
	plan.CompletedAt = &now
	plan.UpdatedAt = now
	plan.ActualCostBRL = decimal.NewNullDecimal(summary.RealizedCostBRL.Round(4))
	// the scarcest ingredient caps the achievable output
	plan.ActualQuantityUnits = decimal.NewNullDecimal(plan.QuantityUnits.Mul(shortageRatio).Round(3))
	if err := s.repo.SavePlan(ctx, plan); err != nil {
		return nil, err
	}

	if s.logg != nil {
		s.logg.Info(s.logg.WithPlanID(ctx, plan.ID.String()), fmt.Sprintf(
			"production plan completed: %d movements, %d divergences, cost %s",
			len(summary.Movements), len(summary.Divergences), summary.RealizedCostBRL,
		))
	}
	return summary, nil
}

// planGrams converts the plan's requested quantity into grams of finished
// recipe. Batches scale by the recipe's declared yield.
func (s *service) planGrams(ctx context.Context, plan *models.ProductionPlan) (float64, error) {
	switch plan.UnitOfMeasure {
	case enums.UnitGrams:
		return plan.QuantityUnits.InexactFloat64(), nil
	case enums.UnitKilograms:
		return plan.QuantityUnits.Mul(decimal.NewFromInt(1000)).InexactFloat64(), nil
	case enums.UnitBatches:
		recipe, err := s.recipes.GetRecipe(ctx, plan.RecipeID)
		if err != nil {
			return 0, err
		}
		return plan.QuantityUnits.Mul(recipe.YieldG).InexactFloat64(), nil
	default:
		return 0, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown unit of measure %q", plan.UnitOfMeasure))
	}
}

func (s *service) partialFailure(productIDs, consumed []uuid.UUID, failedIndex int, causes ...error) error {
	remaining := make([]string, 0, len(productIDs)-failedIndex)
	for _, productID := range productIDs[failedIndex:] {
		remaining = append(remaining, productID.String())
	}
	consumedIDs := make([]string, 0, len(consumed))
	for _, productID := range consumed {
		consumedIDs = append(consumedIDs, productID.String())
	}
	return pkgerrors.Wrap(pkgerrors.CodePartialConsumption, multierr.Combine(causes...),
		"production consumption aborted mid-sequence").
		WithDetails(map[string]any{
			"consumedProductIds":  consumedIDs,
			"remainingProductIds": remaining,
		})
}
