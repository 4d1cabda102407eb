package production

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/RMarques88/gelatoprod-backend/internal/products"
	"github.com/RMarques88/gelatoprod-backend/internal/recipes"
	"github.com/RMarques88/gelatoprod-backend/internal/stock"
	"github.com/RMarques88/gelatoprod-backend/pkg/db/models"
	"github.com/RMarques88/gelatoprod-backend/pkg/enums"
	pkgerrors "github.com/RMarques88/gelatoprod-backend/pkg/errors"
	"github.com/RMarques88/gelatoprod-backend/pkg/metrics"
)

func dec(value string) decimal.Decimal {
	out, err := decimal.NewFromString(value)
	if err != nil {
		panic(err)
	}
	return out
}

type fixture struct {
	db      *gorm.DB
	stock   stock.Service
	recipes recipes.Repository
	service Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dsn := "file:production_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Product{},
		&models.StockItem{},
		&models.StockMovement{},
		&models.StockAlert{},
		&models.Recipe{},
		&models.RecipeIngredient{},
		&models.ProductionPlan{},
		&models.ProductionDivergence{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	stockSvc, err := stock.NewService(stock.ServiceParams{
		DB:       db,
		Repo:     stock.NewRepository(db),
		Products: products.NewRepository(db),
		Metrics:  metrics.NewLedgerMetrics(nil),
	})
	if err != nil {
		t.Fatalf("stock service: %v", err)
	}
	recipeRepo := recipes.NewRepository(db)
	svc, err := NewService(ServiceParams{
		Repo:    NewRepository(db),
		Recipes: recipeRepo,
		Stock:   stockSvc,
	})
	if err != nil {
		t.Fatalf("production service: %v", err)
	}
	return &fixture{db: db, stock: stockSvc, recipes: recipeRepo, service: svc}
}

// seedStockedProduct provisions a product with stock at a known average cost.
func (f *fixture) seedStockedProduct(t *testing.T, name, quantity, unitCost string) uuid.UUID {
	t.Helper()
	product := &models.Product{ID: uuid.New(), Name: name}
	if err := f.db.Create(product).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
	item, err := f.stock.CreateItem(context.Background(), stock.CreateItemInput{
		ProductID:        product.ID,
		MinimumQuantityG: decimal.Zero,
	})
	if err != nil {
		t.Fatalf("create stock item: %v", err)
	}
	cost := dec(unitCost)
	if _, err := f.stock.Adjust(context.Background(), stock.AdjustInput{
		StockItemID: item.ID,
		Type:        enums.MovementTypeInitial,
		QuantityG:   dec(quantity),
		UnitCostBRL: &cost,
		PerformedBy: "seed",
	}); err != nil {
		t.Fatalf("seed stock: %v", err)
	}
	return product.ID
}

func (f *fixture) createRecipe(t *testing.T, name, yield string, ingredients ...models.RecipeIngredient) uuid.UUID {
	t.Helper()
	recipe := &models.Recipe{
		ID:          uuid.New(),
		Name:        name,
		YieldG:      dec(yield),
		Ingredients: ingredients,
	}
	if err := f.recipes.Create(context.Background(), recipe); err != nil {
		t.Fatalf("create recipe: %v", err)
	}
	return recipe.ID
}

func productIngredient(position int, productID uuid.UUID, quantity string) models.RecipeIngredient {
	return models.RecipeIngredient{
		ID:        uuid.New(),
		Position:  position,
		Kind:      enums.IngredientKindProduct,
		ProductID: &productID,
		QuantityG: dec(quantity),
	}
}

func (f *fixture) stockQuantity(t *testing.T, productID uuid.UUID) decimal.Decimal {
	t.Helper()
	item, err := f.stock.GetItemByProduct(context.Background(), productID)
	if err != nil {
		t.Fatalf("get item: %v", err)
	}
	return item.CurrentQuantityG
}

func TestCompleteEndToEnd(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	productA := f.seedStockedProduct(t, "product a", "5000", "6")
	productB := f.seedStockedProduct(t, "product b", "3000", "4")
	recipeID := f.createRecipe(t, "base", "1000",
		productIngredient(0, productA, "500"),
		productIngredient(1, productB, "500"),
	)

	plan, err := f.service.Schedule(ctx, ScheduleInput{
		RecipeID:      recipeID,
		QuantityUnits: dec("2000"),
		UnitOfMeasure: enums.UnitGrams,
		RequestedBy:   "carla",
	})
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}

	summary, err := f.service.Complete(ctx, plan.ID, "carla")
	if err != nil {
		t.Fatalf("complete: %v", err)
	}

	if !summary.RealizedCostBRL.Equal(dec("10")) {
		t.Fatalf("expected realized cost 10.00, got %s", summary.RealizedCostBRL)
	}
	if len(summary.Movements) != 2 {
		t.Fatalf("expected 2 movements, got %d", len(summary.Movements))
	}
	if len(summary.Divergences) != 0 {
		t.Fatalf("expected no divergences, got %+v", summary.Divergences)
	}
	if got := f.stockQuantity(t, productA); !got.Equal(dec("4000")) {
		t.Fatalf("expected 4000g of product a, got %s", got)
	}
	if got := f.stockQuantity(t, productB); !got.Equal(dec("2000")) {
		t.Fatalf("expected 2000g of product b, got %s", got)
	}

	reloaded, err := f.service.GetPlan(ctx, plan.ID)
	if err != nil {
		t.Fatalf("get plan: %v", err)
	}
	if reloaded.Status != enums.PlanStatusCompleted || reloaded.CompletedAt == nil {
		t.Fatalf("expected completed plan, got %+v", reloaded)
	}
	if !reloaded.ActualCostBRL.Valid || !reloaded.ActualCostBRL.Decimal.Equal(dec("10")) {
		t.Fatalf("expected actual cost stamped, got %+v", reloaded.ActualCostBRL)
	}
	if !reloaded.ActualQuantityUnits.Valid || !reloaded.ActualQuantityUnits.Decimal.Equal(dec("2000")) {
		t.Fatalf("expected full actual quantity, got %+v", reloaded.ActualQuantityUnits)
	}
}

func TestCompleteShortageRecordsDivergence(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	productA := f.seedStockedProduct(t, "product a", "600", "6")
	recipeID := f.createRecipe(t, "base", "1000",
		productIngredient(0, productA, "500"),
	)

	plan, err := f.service.Schedule(ctx, ScheduleInput{
		RecipeID:      recipeID,
		QuantityUnits: dec("2000"),
		UnitOfMeasure: enums.UnitGrams,
		RequestedBy:   "carla",
	})
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}

	// plan needs 1000g but only 600g is in stock
	summary, err := f.service.Complete(ctx, plan.ID, "carla")
	if err != nil {
		t.Fatalf("complete: %v", err)
	}

	if len(summary.Divergences) != 1 {
		t.Fatalf("expected one divergence, got %d", len(summary.Divergences))
	}
	divergence := summary.Divergences[0]
	if !divergence.ExpectedQuantityG.Equal(dec("1000")) || !divergence.ActualQuantityG.Equal(dec("600")) {
		t.Fatalf("unexpected divergence quantities %+v", divergence)
	}
	if got := f.stockQuantity(t, productA); !got.IsZero() {
		t.Fatalf("expected stock drained to zero, got %s", got)
	}
	if !summary.RealizedCostBRL.Equal(dec("3.6")) {
		t.Fatalf("expected realized cost 3.60 for 600g at 6/kg, got %s", summary.RealizedCostBRL)
	}

	reloaded, err := f.service.GetPlan(ctx, plan.ID)
	if err != nil {
		t.Fatalf("get plan: %v", err)
	}
	// 600 of 1000 required caps output at 60% of the plan
	if !reloaded.ActualQuantityUnits.Valid || !reloaded.ActualQuantityUnits.Decimal.Equal(dec("1200")) {
		t.Fatalf("expected actual quantity 1200, got %+v", reloaded.ActualQuantityUnits)
	}

	persisted, err := f.service.ListDivergences(ctx, plan.ID)
	if err != nil || len(persisted) != 1 {
		t.Fatalf("expected persisted divergence, got %d (%v)", len(persisted), err)
	}
}

func TestCompleteMissingStockItemIsPartialFailure(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	productA := f.seedStockedProduct(t, "product a", "5000", "6")
	// product b exists but was never provisioned with a stock item
	productB := &models.Product{ID: uuid.New(), Name: "product b"}
	if err := f.db.Create(productB).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
	recipeID := f.createRecipe(t, "base", "1000",
		productIngredient(0, productA, "500"),
		productIngredient(1, productB.ID, "500"),
	)

	plan, err := f.service.Schedule(ctx, ScheduleInput{
		RecipeID:      recipeID,
		QuantityUnits: dec("1000"),
		UnitOfMeasure: enums.UnitGrams,
		RequestedBy:   "carla",
	})
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}

	_, err = f.service.Complete(ctx, plan.ID, "carla")
	if !pkgerrors.IsCode(err, pkgerrors.CodePartialConsumption) {
		t.Fatalf("expected partial consumption error, got %v", err)
	}

	// whichever ingredient sorted first before the failure stays committed
	reloaded, err := f.service.GetPlan(ctx, plan.ID)
	if err != nil {
		t.Fatalf("get plan: %v", err)
	}
	if reloaded.Status.IsTerminal() {
		t.Fatalf("aborted plan must not be terminal, got %s", reloaded.Status)
	}
}

func TestCompleteBatchesScaleByYield(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	productA := f.seedStockedProduct(t, "product a", "5000", "6")
	recipeID := f.createRecipe(t, "base", "1000",
		productIngredient(0, productA, "500"),
	)

	plan, err := f.service.Schedule(ctx, ScheduleInput{
		RecipeID:      recipeID,
		QuantityUnits: dec("3"),
		UnitOfMeasure: enums.UnitBatches,
		RequestedBy:   "carla",
	})
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}

	if _, err := f.service.Complete(ctx, plan.ID, "carla"); err != nil {
		t.Fatalf("complete: %v", err)
	}
	// 3 batches of 1000g yield consume 1500g of the ingredient
	if got := f.stockQuantity(t, productA); !got.Equal(dec("3500")) {
		t.Fatalf("expected 3500g remaining, got %s", got)
	}
}

func TestPlanLifecycle(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	productA := f.seedStockedProduct(t, "product a", "1000", "6")
	recipeID := f.createRecipe(t, "base", "1000",
		productIngredient(0, productA, "500"),
	)

	scheduledFor := time.Now().UTC().Add(24 * time.Hour)
	plan, err := f.service.Schedule(ctx, ScheduleInput{
		RecipeID:      recipeID,
		QuantityUnits: dec("1000"),
		UnitOfMeasure: enums.UnitGrams,
		ScheduledFor:  &scheduledFor,
		RequestedBy:   "carla",
	})
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}
	if plan.Status != enums.PlanStatusScheduled {
		t.Fatalf("expected scheduled plan, got %s", plan.Status)
	}

	started, err := f.service.Start(ctx, plan.ID)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if started.Status != enums.PlanStatusInProgress {
		t.Fatalf("expected in_progress, got %s", started.Status)
	}
	if _, err := f.service.Start(ctx, plan.ID); !pkgerrors.IsCode(err, pkgerrors.CodeConflict) {
		t.Fatalf("expected conflict starting twice, got %v", err)
	}

	cancelled, err := f.service.Cancel(ctx, plan.ID)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if cancelled.Status != enums.PlanStatusCancelled || cancelled.CancelledAt == nil {
		t.Fatalf("expected cancelled plan, got %+v", cancelled)
	}
	if _, err := f.service.Complete(ctx, plan.ID, "carla"); !pkgerrors.IsCode(err, pkgerrors.CodeConflict) {
		t.Fatalf("expected conflict completing a cancelled plan, got %v", err)
	}

	if _, err := f.service.Schedule(ctx, ScheduleInput{
		RecipeID:      recipeID,
		QuantityUnits: dec("0"),
		UnitOfMeasure: enums.UnitGrams,
		RequestedBy:   "carla",
	}); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for zero quantity, got %v", err)
	}
	if _, err := f.service.Schedule(ctx, ScheduleInput{
		RecipeID:      uuid.New(),
		QuantityUnits: dec("1000"),
		UnitOfMeasure: enums.UnitGrams,
		RequestedBy:   "carla",
	}); !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found for unknown recipe, got %v", err)
	}
}

type divergenceDownRepo struct {
	Repository
}

func (r divergenceDownRepo) WithTx(tx *gorm.DB) Repository {
	return divergenceDownRepo{Repository: r.Repository.WithTx(tx)}
}

func (r divergenceDownRepo) CreateDivergence(_ context.Context, _ *models.ProductionDivergence) error {
	return errors.New("divergence store unavailable")
}

func TestCompleteDivergenceFailureReportsConsumedProduct(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	productID := f.seedStockedProduct(t, "milk", "600", "5")
	recipeID := f.createRecipe(t, "base", "1000",
		productIngredient(0, productID, "1000"),
	)

	svc, err := NewService(ServiceParams{
		Repo:    divergenceDownRepo{Repository: NewRepository(f.db)},
		Recipes: f.recipes,
		Stock:   f.stock,
	})
	if err != nil {
		t.Fatalf("production service: %v", err)
	}

	plan, err := svc.Schedule(ctx, ScheduleInput{
		RecipeID:      recipeID,
		QuantityUnits: dec("1000"),
		UnitOfMeasure: enums.UnitGrams,
		RequestedBy:   "carla",
	})
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}

	_, err = svc.Complete(ctx, plan.ID, "carla")
	if !pkgerrors.IsCode(err, pkgerrors.CodePartialConsumption) {
		t.Fatalf("expected partial consumption error, got %v", err)
	}

	// the decrement for the short product committed before the divergence
	// write failed, so the reconciliation lists must account for it
	details, ok := pkgerrors.As(err).Details().(map[string]any)
	if !ok {
		t.Fatalf("expected details map, got %T", pkgerrors.As(err).Details())
	}
	consumed, _ := details["consumedProductIds"].([]string)
	remaining, _ := details["remainingProductIds"].([]string)
	if len(consumed) != 1 || consumed[0] != productID.String() {
		t.Fatalf("committed decrement missing from consumed list: %v", consumed)
	}
	if len(remaining) != 0 {
		t.Fatalf("expected empty remaining list, got %v", remaining)
	}

	item, err := f.stock.GetItemByProduct(ctx, productID)
	if err != nil {
		t.Fatalf("load item: %v", err)
	}
	if !item.CurrentQuantityG.IsZero() {
		t.Fatalf("expected the 600g decrement on the ledger, got %s", item.CurrentQuantityG)
	}
}
