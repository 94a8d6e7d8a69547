package service

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inventory-service/internal/models"
)

func recipe(id int64, name, cloverItemID string) models.Recipe {
	r := models.Recipe{ID: id, Name: name, IsActive: true}
	if cloverItemID != "" {
		r.CloverItemID = sql.NullString{String: cloverItemID, Valid: true}
	}
	return r
}

func TestResolveRecipeByCloverItemID(t *testing.T) {
	recipes := []models.Recipe{
		recipe(1, "Completely Different Name", "ITEM1"),
		recipe(2, "Margherita Pizza", ""),
	}

	// the id link outranks a perfect name match
	match := ResolveRecipe(recipes, "ITEM1", "Margherita Pizza")
	require.NotNil(t, match)
	assert.Equal(t, int64(1), match.Recipe.ID)
	assert.False(t, match.Ambiguous)
}

func TestResolveRecipeByExactName(t *testing.T) {
	recipes := []models.Recipe{
		recipe(1, "Pepperoni Pizza", ""),
		recipe(2, "Margherita Pizza", ""),
	}

	match := ResolveRecipe(recipes, "NO-SUCH-ID", "margherita pizza")
	require.NotNil(t, match)
	assert.Equal(t, int64(2), match.Recipe.ID)
	assert.False(t, match.Ambiguous)
}

func TestResolveRecipeBySubstring(t *testing.T) {
	recipes := []models.Recipe{
		recipe(1, "Pepperoni Pizza", ""),
		recipe(2, "Margherita", ""),
	}

	// sold name contains the recipe name
	match := ResolveRecipe(recipes, "", "Margherita Pizza Large")
	require.NotNil(t, match)
	assert.Equal(t, int64(2), match.Recipe.ID)

	// recipe name contains the sold name
	match = ResolveRecipe(recipes, "", "Pepperoni")
	require.NotNil(t, match)
	assert.Equal(t, int64(1), match.Recipe.ID)
}

func TestResolveRecipeFuzzyPrefersShortestEditDistance(t *testing.T) {
	recipes := []models.Recipe{
		recipe(1, "Margherita", ""),
		recipe(2, "Margherita Pizza", ""),
	}

	match := ResolveRecipe(recipes, "", "Margherita Pizza XL")
	require.NotNil(t, match)
	assert.Equal(t, int64(2), match.Recipe.ID)
	assert.False(t, match.Ambiguous)
}

func TestResolveRecipeFlagsAmbiguousTies(t *testing.T) {
	// both names are one substitution away from the sold name
	recipes := []models.Recipe{
		recipe(1, "burger a", ""),
		recipe(2, "burger b", ""),
	}

	match := ResolveRecipe(recipes, "", "burger")
	require.NotNil(t, match)
	assert.True(t, match.Ambiguous)
	assert.Equal(t, int64(1), match.Recipe.ID)
}

func TestResolveRecipeNoMatch(t *testing.T) {
	recipes := []models.Recipe{
		recipe(1, "Pepperoni Pizza", ""),
	}

	assert.Nil(t, ResolveRecipe(recipes, "NOPE", "Sushi Platter"))
	assert.Nil(t, ResolveRecipe(nil, "", "anything"))
	assert.Nil(t, ResolveRecipe(recipes, "", ""))
}
