package enums

import "fmt"

// IngredientKind distinguishes base-product ingredients from nested sub-recipes.
type IngredientKind string

const (
	IngredientKindProduct IngredientKind = "product"
	IngredientKindRecipe  IngredientKind = "recipe"
)

// String implements fmt.Stringer.
func (i IngredientKind) String() string {
	return string(i)
}

// IsValid reports whether the value is a known IngredientKind.
func (i IngredientKind) IsValid() bool {
	return i == IngredientKindProduct || i == IngredientKindRecipe
}

// ParseIngredientKind converts raw input into an IngredientKind.
func ParseIngredientKind(value string) (IngredientKind, error) {
	switch IngredientKind(value) {
	case IngredientKindProduct:
		return IngredientKindProduct, nil
	case IngredientKindRecipe:
		return IngredientKindRecipe, nil
	}
	return "", fmt.Errorf("invalid ingredient kind %q", value)
}
