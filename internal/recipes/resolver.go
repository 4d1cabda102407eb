package recipes

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"

	"github.com/RMarques88/gelatoprod-backend/pkg/db/models"
	"github.com/RMarques88/gelatoprod-backend/pkg/enums"
	pkgerrors "github.com/RMarques88/gelatoprod-backend/pkg/errors"
)

// Lookup fetches one recipe with its ingredient lines. The resolver calls it
// at most once per recipe per resolution.
type Lookup interface {
	GetRecipe(ctx context.Context, id uuid.UUID) (*models.Recipe, error)
}

// BreakdownNode is one line of the requirement breakdown. Exactly one of the
// two shapes is populated: a product leaf (Recipe == nil) or a sub-recipe node
// carrying its own children. Declaration order and nesting are preserved for
// display; the flat totals do not depend on them.
type BreakdownNode struct {
	ProductID *uuid.UUID      `json:"productId,omitempty"`
	Recipe    *RecipeNode     `json:"recipe,omitempty"`
	Children  []BreakdownNode `json:"children,omitempty"`
	QuantityG float64         `json:"quantityInGrams"`
}

// RecipeNode identifies the sub-recipe a breakdown node expands.
type RecipeNode struct {
	RecipeID uuid.UUID `json:"recipeId"`
	Name     string    `json:"name"`
	YieldG   float64   `json:"yieldInGrams"`
}

// Resolution is the output of one resolve call: total grams of each base
// product plus the ordered breakdown tree the totals were derived from.
type Resolution struct {
	RecipeID         uuid.UUID             `json:"recipeId"`
	RequestedG       float64               `json:"requestedQuantityInGrams"`
	FlatRequirements map[uuid.UUID]float64 `json:"flatRequirements"`
	Breakdown        []BreakdownNode       `json:"breakdown"`
}

// resolver carries the per-call state of one resolution: the lookup memo and
// the current descent path for cycle detection.
type resolver struct {
	lookup Lookup
	memo   map[uuid.UUID]*models.Recipe
}

// Resolve walks the recipe graph and returns the total grams of each base
// product required to produce requestedG grams of the recipe. Quantities on
// each line scale by requestedG divided by the recipe's declared yield; the
// same product appearing on several lines (including across sub-recipes)
// accumulates into one flat entry. A recipe that references itself through any
// chain of sub-recipes fails before recursing into the repeat.
func Resolve(ctx context.Context, lookup Lookup, recipeID uuid.UUID, requestedG float64) (*Resolution, error) {
	if lookup == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "recipes: lookup is required")
	}
	if requestedG <= 0 || math.IsInf(requestedG, 0) || math.IsNaN(requestedG) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "requested quantity must be a positive finite number of grams")
	}

	r := &resolver{lookup: lookup, memo: map[uuid.UUID]*models.Recipe{}}
	flat := map[uuid.UUID]float64{}
	breakdown, err := r.descend(ctx, recipeID, requestedG, flat, []uuid.UUID{})
	if err != nil {
		return nil, err
	}

	for productID, grams := range flat {
		if grams == 0 || math.IsInf(grams, 0) || math.IsNaN(grams) {
			delete(flat, productID)
		}
	}

	return &Resolution{
		RecipeID:         recipeID,
		RequestedG:       requestedG,
		FlatRequirements: flat,
		Breakdown:        breakdown,
	}, nil
}

func (r *resolver) descend(ctx context.Context, recipeID uuid.UUID, requestedG float64, flat map[uuid.UUID]float64, path []uuid.UUID) ([]BreakdownNode, error) {
	for _, ancestor := range path {
		if ancestor == recipeID {
			return nil, cycleError(append(path, recipeID))
		}
	}

	recipe, err := r.getRecipe(ctx, recipeID)
	if err != nil {
		return nil, err
	}
	if !recipe.YieldG.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("recipe %q has a non-positive yield", recipe.Name))
	}

	batchFactor := requestedG / recipe.YieldG.InexactFloat64()
	path = append(path, recipeID)

	nodes := make([]BreakdownNode, 0, len(recipe.Ingredients))
	for _, ingredient := range recipe.Ingredients {
		scaledG := ingredient.QuantityG.InexactFloat64() * batchFactor
		switch {
		case ingredient.Kind == enums.IngredientKindProduct:
			if ingredient.ProductID == nil {
				return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("recipe %q has a product line without a product reference", recipe.Name))
			}
			flat[*ingredient.ProductID] += scaledG
			nodes = append(nodes, BreakdownNode{ProductID: ingredient.ProductID, QuantityG: scaledG})
		case ingredient.Kind == enums.IngredientKindRecipe:
			if ingredient.ChildRecipeID == nil {
				return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("recipe %q has a sub-recipe line without a recipe reference", recipe.Name))
			}
			child, err := r.getRecipe(ctx, *ingredient.ChildRecipeID)
			if err != nil {
				return nil, err
			}
			children, err := r.descend(ctx, *ingredient.ChildRecipeID, scaledG, flat, path)
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, BreakdownNode{
				Recipe: &RecipeNode{
					RecipeID: child.ID,
					Name:     child.Name,
					YieldG:   child.YieldG.InexactFloat64(),
				},
				Children:  children,
				QuantityG: scaledG,
			})
		default:
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("recipe %q has an ingredient of unknown kind %q", recipe.Name, ingredient.Kind))
		}
	}
	return nodes, nil
}

func (r *resolver) getRecipe(ctx context.Context, id uuid.UUID) (*models.Recipe, error) {
	if recipe, ok := r.memo[id]; ok {
		return recipe, nil
	}
	recipe, err := r.lookup.GetRecipe(ctx, id)
	if err != nil {
		return nil, err
	}
	r.memo[id] = recipe
	return recipe, nil
}

func cycleError(path []uuid.UUID) error {
	ids := make([]string, len(path))
	for i, id := range path {
		ids[i] = id.String()
	}
	return pkgerrors.New(pkgerrors.CodeCyclicRecipe, "recipe graph contains a cycle").
		WithDetails(map[string]any{"cycle": strings.Join(ids, " -> ")})
}
