package routes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/RMarques88/gelatoprod-backend/internal/notifications"
	"github.com/RMarques88/gelatoprod-backend/internal/production"
	"github.com/RMarques88/gelatoprod-backend/internal/products"
	"github.com/RMarques88/gelatoprod-backend/internal/recipes"
	"github.com/RMarques88/gelatoprod-backend/internal/stock"
	"github.com/RMarques88/gelatoprod-backend/pkg/config"
	"github.com/RMarques88/gelatoprod-backend/pkg/db/models"
	"github.com/RMarques88/gelatoprod-backend/pkg/enums"
	"github.com/RMarques88/gelatoprod-backend/pkg/metrics"
)

type testEnv struct {
	db     *gorm.DB
	server *httptest.Server
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dsn := "file:router_" + uuid.NewString() + "?mode=memory&cache=shared"
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
		&models.Notification{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	notificationsService, err := notifications.NewService(notifications.NewRepository(db))
	if err != nil {
		t.Fatalf("notifications service: %v", err)
	}
	stockService, err := stock.NewService(stock.ServiceParams{
		DB:       db,
		Repo:     stock.NewRepository(db),
		Products: products.NewRepository(db),
		Notifier: notificationsService,
		Metrics:  metrics.NewLedgerMetrics(nil),
	})
	if err != nil {
		t.Fatalf("stock service: %v", err)
	}
	recipeRepo := recipes.NewRepository(db)
	productionService, err := production.NewService(production.ServiceParams{
		Repo:    production.NewRepository(db),
		Recipes: recipeRepo,
		Stock:   stockService,
	})
	if err != nil {
		t.Fatalf("production service: %v", err)
	}

	cfg := &config.Config{App: config.AppConfig{Env: "dev", Port: "0"}}
	handler := NewRouter(cfg, nil, nil, nil, stockService, recipeRepo, productionService, notificationsService)
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return &testEnv{db: db, server: server}
}

func (e *testEnv) request(t *testing.T, method, path string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, e.server.URL+path, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	var payload map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp, payload
}

func (e *testEnv) seedProduct(t *testing.T, name string) uuid.UUID {
	t.Helper()
	product := &models.Product{ID: uuid.New(), Name: name}
	if err := e.db.Create(product).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return product.ID
}

func TestHealthLive(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	resp, payload := env.request(t, http.MethodGet, "/health/live", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	data, _ := payload["data"].(map[string]any)
	if data["status"] != "ok" {
		t.Fatalf("unexpected payload %v", payload)
	}
}

func TestStockLifecycleOverHTTP(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	productID := env.seedProduct(t, "pistachio paste")

	resp, payload := env.request(t, http.MethodPost, "/api/v1/stock-items", map[string]any{
		"product_id":         productID,
		"minimum_quantity_g": "100",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create item: expected 201, got %d (%v)", resp.StatusCode, payload)
	}
	data := payload["data"].(map[string]any)
	itemID := data["id"].(string)
	if data["productId"] != productID.String() {
		t.Fatalf("expected productId %s in payload, got %v", productID, data["productId"])
	}
	for _, key := range []string{"currentQuantityInGrams", "minimumQuantityInGrams", "averageUnitCostInBRL"} {
		if _, ok := data[key]; !ok {
			t.Fatalf("missing %s in stock item payload: %v", key, data)
		}
	}

	resp, payload = env.request(t, http.MethodPost, fmt.Sprintf("/api/v1/stock-items/%s/movements", itemID), map[string]any{
		"type":          "initial",
		"quantity_g":    "1000",
		"unit_cost_brl": "10",
		"performed_by":  "carla",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("initial movement: expected 201, got %d (%v)", resp.StatusCode, payload)
	}

	// decrement below the minimum triggers an alert
	resp, payload = env.request(t, http.MethodPost, fmt.Sprintf("/api/v1/stock-items/%s/movements", itemID), map[string]any{
		"type":         "decrement",
		"quantity_g":   "960",
		"performed_by": "carla",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("decrement: expected 201, got %d (%v)", resp.StatusCode, payload)
	}

	resp, payload = env.request(t, http.MethodGet, "/api/v1/alerts?status=open", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list alerts: expected 200, got %d", resp.StatusCode)
	}
	alerts := payload["data"].([]any)
	if len(alerts) != 1 {
		t.Fatalf("expected one open alert, got %d", len(alerts))
	}
	alertID := alerts[0].(map[string]any)["id"].(string)

	resp, _ = env.request(t, http.MethodPost, fmt.Sprintf("/api/v1/alerts/%s/acknowledge", alertID), nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("acknowledge: expected 200, got %d", resp.StatusCode)
	}

	resp, payload = env.request(t, http.MethodGet, fmt.Sprintf("/api/v1/stock-items/%s/movements?limit=10", itemID), nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list movements: expected 200, got %d", resp.StatusCode)
	}
	page := payload["data"].(map[string]any)
	items := page["items"].([]any)
	if len(items) != 2 {
		t.Fatalf("expected 2 movements, got %d", len(items))
	}
	// newest first: the decrement chains off the initial movement
	latest := items[0].(map[string]any)
	if latest["previousQuantityInGrams"] != "1000" || latest["resultingQuantityInGrams"] != "40" {
		t.Fatalf("unexpected movement payload %v", latest)
	}
}

func TestAdjustValidationErrorEnvelope(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	productID := env.seedProduct(t, "cocoa")

	_, payload := env.request(t, http.MethodPost, "/api/v1/stock-items", map[string]any{
		"product_id": productID,
	})
	itemID := payload["data"].(map[string]any)["id"].(string)

	// increment without a cost must be rejected with the public error shape
	resp, payload := env.request(t, http.MethodPost, fmt.Sprintf("/api/v1/stock-items/%s/movements", itemID), map[string]any{
		"type":         "increment",
		"quantity_g":   "100",
		"performed_by": "carla",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d (%v)", resp.StatusCode, payload)
	}
	apiErr := payload["error"].(map[string]any)
	if apiErr["code"] != "VALIDATION_ERROR" {
		t.Fatalf("unexpected error payload %v", apiErr)
	}
}

func TestResolveRecipeOverHTTP(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	productID := env.seedProduct(t, "milk")

	recipe := &models.Recipe{
		ID:     uuid.New(),
		Name:   "white base",
		YieldG: decimal.NewFromInt(1000),
		Ingredients: []models.RecipeIngredient{{
			ID:        uuid.New(),
			Position:  0,
			Kind:      enums.IngredientKindProduct,
			ProductID: &productID,
			QuantityG: decimal.NewFromInt(500),
		}},
	}
	if err := env.db.Create(recipe).Error; err != nil {
		t.Fatalf("seed recipe: %v", err)
	}

	resp, payload := env.request(t, http.MethodPost, fmt.Sprintf("/api/v1/recipes/%s/resolve", recipe.ID), map[string]any{
		"requested_g": 2000,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("resolve: expected 200, got %d (%v)", resp.StatusCode, payload)
	}
	data := payload["data"].(map[string]any)
	flat := data["flatRequirements"].(map[string]any)
	if got := flat[productID.String()].(float64); got != 1000 {
		t.Fatalf("expected 1000g, got %v", got)
	}
}
