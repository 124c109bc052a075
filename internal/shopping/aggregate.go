package shopping

import (
	"mealprep/internal/recipe"
)

// Contribution is one recipe-bearing meal entry feeding aggregation: the
// recipe's ingredient lines scaled by the entry's servings multiplier.
type Contribution struct {
	RecipeID    string
	Multiplier  float64
	Ingredients []SourceIngredient

	entryID string // groups rows when loading from the plan
}

// SourceIngredient is a single ingredient line of a planned recipe.
type SourceIngredient struct {
	Name         string // canonical ingredient name, may be empty
	OriginalText string // raw text fallback when no canonical match exists
	Quantity     *float64
	Unit         *string
	Category     *string
}

// AggregatedItem is a merged shopping need for one ingredient across the
// week's plan.
type AggregatedItem struct {
	Name            string
	Quantity        float64
	Unit            *string
	Category        string
	SourceRecipeIDs []string
}

// displayName picks the name shown on the list: canonical ingredient name,
// then the raw original text, then "Unknown".
func displayName(ing SourceIngredient) string {
	if ing.Name != "" {
		return ing.Name
	}
	if ing.OriginalText != "" {
		return ing.OriginalText
	}
	return "Unknown"
}

// Aggregate merges the week's recipe contributions into a deduplicated set of
// shopping needs, in first-seen order. Items merge on the normalized display
// name. Quantities sum only when the unit matches the first-seen unit exactly;
// on a unit mismatch the first-seen quantity and unit are kept unchanged
// (documented limitation, no silent unit conversion). sourceRecipeIds
// accumulates every contributing recipe.
func Aggregate(contributions []Contribution) []AggregatedItem {
	index := make(map[string]int)
	var items []AggregatedItem

	for _, c := range contributions {
		multiplier := c.Multiplier
		if multiplier <= 0 {
			multiplier = 1
		}

		for _, ing := range c.Ingredients {
			name := displayName(ing)
			key := recipe.Normalize(name)

			quantity := 0.0
			if ing.Quantity != nil {
				quantity = *ing.Quantity * multiplier
			}

			i, seen := index[key]
			if !seen {
				category := "Other"
				if ing.Category != nil && *ing.Category != "" {
					category = *ing.Category
				}
				index[key] = len(items)
				items = append(items, AggregatedItem{
					Name:            name,
					Quantity:        quantity,
					Unit:            ing.Unit,
					Category:        category,
					SourceRecipeIDs: []string{c.RecipeID},
				})
				continue
			}

			if unitsEqual(items[i].Unit, ing.Unit) && ing.Quantity != nil {
				items[i].Quantity += quantity
			}
			items[i].SourceRecipeIDs = appendUnique(items[i].SourceRecipeIDs, c.RecipeID)
		}
	}
	return items
}

func unitsEqual(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func appendUnique(ids []string, id string) []string {
	for _, existing := range ids {
		if existing == id {
			return ids
		}
	}
	return append(ids, id)
}

// deduct takes as much of need as available covers. Both results are floored
// at zero; neither the shopping quantity nor the inventory quantity can go
// negative.
func deduct(need, available float64) (remaining, taken float64) {
	if need <= 0 || available <= 0 {
		return need, 0
	}
	taken = need
	if available < need {
		taken = available
	}
	return need - taken, taken
}

// quantityValue converts an aggregated quantity to its stored form: zero
// aggregates (no contributing line had a quantity) are stored as NULL.
func quantityValue(q float64) *float64 {
	if q <= 0 {
		return nil
	}
	return &q
}
