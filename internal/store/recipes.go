package store

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"inventory-service/internal/models"
	"inventory-service/internal/unit"
)

// GetActiveRecipes retrieves a tenant's active recipes without ingredients;
// the resolver only needs names and Clover item links for matching.
func (s *Store) GetActiveRecipes(ctx context.Context, tenantID int64) ([]models.Recipe, error) {
	var recipes []models.Recipe
	err := s.db.SelectContext(ctx, &recipes,
		"SELECT * FROM recipes WHERE tenant_id = $1 AND is_active = true ORDER BY id", tenantID)
	return recipes, err
}

// GetRecipeIngredients retrieves the bill of materials for a recipe
func (s *Store) GetRecipeIngredients(ctx context.Context, recipeID int64) ([]models.RecipeIngredient, error) {
	var ingredients []models.RecipeIngredient
	err := s.db.SelectContext(ctx, &ingredients,
		"SELECT * FROM recipe_ingredients WHERE recipe_id = $1 ORDER BY id", recipeID)
	return ingredients, err
}

// AddRecipeIngredient persists one (recipe, raw material) pair. The authored
// quantity may be in any unit of the material's dimension; it is normalized
// to the material's canonical unit before the row is written, so persisted
// ingredient units are always directly deductible.
func (s *Store) AddRecipeIngredient(ctx context.Context, recipeID, materialID int64, quantity decimal.Decimal, authoredUnit string) (*models.RecipeIngredient, error) {
	material, err := s.GetRawMaterialByID(ctx, materialID)
	if err != nil {
		return nil, err
	}

	normalized, canonicalUnit, err := unit.Normalize(quantity, authoredUnit, material.Unit)
	if err != nil {
		return nil, fmt.Errorf("cannot normalize %s %s to %s: %w", quantity, authoredUnit, material.Unit, err)
	}

	ingredient := &models.RecipeIngredient{
		RecipeID:      recipeID,
		RawMaterialID: materialID,
		Quantity:      normalized,
		Unit:          canonicalUnit,
	}

	query := `
		INSERT INTO recipe_ingredients (recipe_id, raw_material_id, quantity, unit)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	if err := s.db.GetContext(ctx, &ingredient.ID, query,
		ingredient.RecipeID, ingredient.RawMaterialID, ingredient.Quantity, ingredient.Unit); err != nil {
		return nil, err
	}
	return ingredient, nil
}
