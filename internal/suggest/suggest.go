package suggest

import (
	"fmt"
	"strings"

	"mealprep/internal/inventory"
	"mealprep/internal/recipe"
)

// Suggestion is one meal idea produced from what the household has on hand.
type Suggestion struct {
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	MealType       string   `json:"meal_type"`
	UsesInventory  []string `json:"uses_inventory"`
	MatchingRecipe *string  `json:"matching_recipe_id"`
}

// BuildContext renders the household's inventory and recent recipes as the
// text block fed to the model.
func BuildContext(items []*inventory.Item, recipes []*recipe.Recipe) string {
	var b strings.Builder

	b.WriteString("On hand:\n")
	if len(items) == 0 {
		b.WriteString("- (nothing recorded)\n")
	}
	for _, it := range items {
		b.WriteString("- " + it.Name)
		if it.Quantity != nil {
			fmt.Fprintf(&b, " (%g", *it.Quantity)
			if it.Unit != nil {
				b.WriteString(" " + *it.Unit)
			}
			b.WriteString(")")
		}
		fmt.Fprintf(&b, " [%s]", it.Location)
		if it.ExpiryDate != nil {
			fmt.Fprintf(&b, " expires %s", *it.ExpiryDate)
		}
		b.WriteString("\n")
	}

	if len(recipes) > 0 {
		b.WriteString("\nHousehold recipes:\n")
		for _, r := range recipes {
			fmt.Fprintf(&b, "- %s (id %s)\n", r.Title, r.ID)
		}
	}
	return b.String()
}
