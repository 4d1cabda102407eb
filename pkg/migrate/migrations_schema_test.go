package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/RMarques88/gelatoprod-backend/pkg/migrate"
)

func TestMigrationsDirIsValid(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("migrations dir invalid: %v", err)
	}
}

func readMigration(t *testing.T, pattern string) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join("migrations", pattern))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no migration matching %q", pattern)
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	return string(data)
}

func TestStockItemsMigrationContainsConstraints(t *testing.T) {
	content := readMigration(t, "*_create_stock_items.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS stock_items",
		"FOREIGN KEY (product_id) REFERENCES products(id) ON DELETE CASCADE",
		"CHECK (current_quantity_g >= 0)",
		"version BIGINT NOT NULL DEFAULT 0",
		"DROP TABLE IF EXISTS stock_items",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestStockMovementsMigrationIsAppendOnlyFriendly(t *testing.T) {
	content := readMigration(t, "*_create_stock_movements.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS stock_movements",
		"CHECK (type IN ('initial', 'increment', 'decrement', 'adjustment'))",
		"CHECK (resulting_quantity_g >= 0)",
		"idx_stock_movements_item_time",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
	if strings.Contains(content, "FOREIGN KEY (stock_item_id)") {
		t.Error("movements must not cascade away with their stock item")
	}
}

func TestRecipeIngredientsMigrationEnforcesKindShape(t *testing.T) {
	content := readMigration(t, "*_create_recipes.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS recipes",
		"CREATE TABLE IF NOT EXISTS recipe_ingredients",
		"CHECK (kind IN ('product', 'recipe'))",
		"kind = 'product' AND product_id IS NOT NULL AND child_recipe_id IS NULL",
		"kind = 'recipe' AND child_recipe_id IS NOT NULL AND product_id IS NULL",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestProductionMigrationContainsLifecycleChecks(t *testing.T) {
	content := readMigration(t, "*_create_production_plans.sql")

	checks := []string{
		"CHECK (unit_of_measure IN ('grams', 'kilograms', 'batches'))",
		"CHECK (status IN ('scheduled', 'in_progress', 'completed', 'cancelled'))",
		"CREATE TABLE IF NOT EXISTS production_divergences",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}
