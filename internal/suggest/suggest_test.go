package suggest

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"mealprep/internal/inventory"
	"mealprep/internal/recipe"
)

func TestBuildContext(t *testing.T) {
	qty := 0.5
	unit := "l"
	expiry := "2026-08-30"
	items := []*inventory.Item{
		{Name: "Milk", Quantity: &qty, Unit: &unit, Location: "fridge", ExpiryDate: &expiry},
		{Name: "Rice", Location: "pantry"},
	}
	recipes := []*recipe.Recipe{
		{ID: "r1", Title: "Rice Pudding"},
	}

	got := BuildContext(items, recipes)
	assert.Contains(t, got, "Milk (0.5 l) [fridge] expires 2026-08-30")
	assert.Contains(t, got, "Rice [pantry]")
	assert.Contains(t, got, "Rice Pudding (id r1)")
}

func TestBuildContextEmptyInventory(t *testing.T) {
	got := BuildContext(nil, nil)
	assert.Contains(t, got, "(nothing recorded)")
}
