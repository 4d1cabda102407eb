package controllers

import (
	"net/http"

	"github.com/RMarques88/gelatoprod-backend/api/responses"
	"github.com/RMarques88/gelatoprod-backend/api/validators"
	"github.com/RMarques88/gelatoprod-backend/internal/recipes"
	"github.com/RMarques88/gelatoprod-backend/pkg/logger"
)

// ListRecipes returns all active recipes without their ingredient lines.
func ListRecipes(repo recipes.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := repo.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, out)
	}
}

// GetRecipe returns one recipe with its ordered ingredient lines.
func GetRecipe(repo recipes.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "recipeID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		recipe, err := repo.GetRecipe(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, recipe)
	}
}

type resolveRecipeRequest struct {
	RequestedG float64 `json:"requested_g" validate:"required,gt=0"`
}

// ResolveRecipe flattens the recipe graph into total grams per base product
// for the requested output quantity.
func ResolveRecipe(repo recipes.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "recipeID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload resolveRecipeRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		resolution, err := recipes.Resolve(r.Context(), repo, id, payload.RequestedG)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, resolution)
	}
}
