package service

import (
	"strings"

	"github.com/agnivade/levenshtein"

	"inventory-service/internal/models"
)

// Match tiers, highest wins
const (
	matchTierCloverID = 3
	matchTierExact    = 2
	matchTierFuzzy    = 1
)

// RecipeMatch is the outcome of resolving a sold catalog item against a
// tenant's recipe set
type RecipeMatch struct {
	Recipe    *models.Recipe
	Tier      int
	Ambiguous bool
}

// ResolveRecipe finds at most one recipe for a sold item. Priority: exact
// Clover item id, then exact case-insensitive name, then substring match in
// either direction with edit distance as the tie-break. Equal-distance fuzzy
// candidates still resolve (to the first by recipe id) but are flagged
// ambiguous so the event carries a note for manual review.
//
// Returns nil when nothing matches; deduction never guesses.
func ResolveRecipe(recipes []models.Recipe, cloverItemID, itemName string) *RecipeMatch {
	name := strings.ToLower(strings.TrimSpace(itemName))

	if cloverItemID != "" {
		for i := range recipes {
			if recipes[i].CloverItemID.Valid && recipes[i].CloverItemID.String == cloverItemID {
				return &RecipeMatch{Recipe: &recipes[i], Tier: matchTierCloverID}
			}
		}
	}

	if name == "" {
		return nil
	}

	for i := range recipes {
		if strings.ToLower(recipes[i].Name) == name {
			return &RecipeMatch{Recipe: &recipes[i], Tier: matchTierExact}
		}
	}

	var best *models.Recipe
	bestDistance := -1
	ambiguous := false

	for i := range recipes {
		candidate := strings.ToLower(recipes[i].Name)
		if !strings.Contains(candidate, name) && !strings.Contains(name, candidate) {
			continue
		}

		distance := levenshtein.ComputeDistance(candidate, name)
		switch {
		case best == nil || distance < bestDistance:
			best = &recipes[i]
			bestDistance = distance
			ambiguous = false
		case distance == bestDistance:
			ambiguous = true
		}
	}

	if best == nil {
		return nil
	}
	return &RecipeMatch{Recipe: best, Tier: matchTierFuzzy, Ambiguous: ambiguous}
}
