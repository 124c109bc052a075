package shopping

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fp(v float64) *float64 { return &v }
func sp(s string) *string   { return &s }

func TestAggregateSumsMatchingUnits(t *testing.T) {
	// Recipe A needs 200g pasta, recipe B needs 100g at a 2x multiplier.
	contributions := []Contribution{
		{
			RecipeID:   "recipe-a",
			Multiplier: 1,
			Ingredients: []SourceIngredient{
				{Name: "Pasta", Quantity: fp(200), Unit: sp("g"), Category: sp("Pantry")},
			},
		},
		{
			RecipeID:   "recipe-b",
			Multiplier: 2,
			Ingredients: []SourceIngredient{
				{Name: "pasta", Quantity: fp(100), Unit: sp("g")},
			},
		},
	}

	items := Aggregate(contributions)
	require.Len(t, items, 1)
	assert.Equal(t, "Pasta", items[0].Name)
	assert.Equal(t, 400.0, items[0].Quantity)
	assert.Equal(t, "g", *items[0].Unit)
	assert.Equal(t, "Pantry", items[0].Category)
	assert.Equal(t, []string{"recipe-a", "recipe-b"}, items[0].SourceRecipeIDs)
}

func TestAggregateMergesNameVariants(t *testing.T) {
	contributions := []Contribution{
		{RecipeID: "a", Multiplier: 1, Ingredients: []SourceIngredient{
			{Name: "Egg", Quantity: fp(2)},
		}},
		{RecipeID: "b", Multiplier: 1, Ingredients: []SourceIngredient{
			{Name: "egg", Quantity: fp(3)},
		}},
		{RecipeID: "c", Multiplier: 1, Ingredients: []SourceIngredient{
			{Name: "  EGG ", Quantity: fp(1)},
		}},
	}

	items := Aggregate(contributions)
	require.Len(t, items, 1)
	assert.Equal(t, "Egg", items[0].Name, "first-seen spelling wins")
	assert.Equal(t, 6.0, items[0].Quantity)
	assert.Equal(t, []string{"a", "b", "c"}, items[0].SourceRecipeIDs)
}

func TestAggregateNamesWithWildcardCharsStayLiteral(t *testing.T) {
	contributions := []Contribution{
		{RecipeID: "a", Multiplier: 1, Ingredients: []SourceIngredient{
			{Name: "100% Juice", Quantity: fp(1)},
		}},
		{RecipeID: "b", Multiplier: 1, Ingredients: []SourceIngredient{
			{Name: "100%  juice", Quantity: fp(2)},
		}},
		{RecipeID: "c", Multiplier: 1, Ingredients: []SourceIngredient{
			{Name: "1003 Juice", Quantity: fp(5)},
		}},
	}

	items := Aggregate(contributions)
	require.Len(t, items, 2)
	assert.Equal(t, "100% Juice", items[0].Name)
	assert.Equal(t, 3.0, items[0].Quantity, "percent sign matches only itself")
	assert.Equal(t, "1003 Juice", items[1].Name)
	assert.Equal(t, 5.0, items[1].Quantity)
}

func TestAggregateUnitMismatchKeepsFirstSeen(t *testing.T) {
	contributions := []Contribution{
		{RecipeID: "a", Multiplier: 1, Ingredients: []SourceIngredient{
			{Name: "Flour", Quantity: fp(500), Unit: sp("g")},
		}},
		{RecipeID: "b", Multiplier: 1, Ingredients: []SourceIngredient{
			{Name: "Flour", Quantity: fp(2), Unit: sp("cups")},
		}},
	}

	items := Aggregate(contributions)
	require.Len(t, items, 1)
	assert.Equal(t, 500.0, items[0].Quantity, "mismatched unit must not be summed")
	assert.Equal(t, "g", *items[0].Unit)
	assert.Equal(t, []string{"a", "b"}, items[0].SourceRecipeIDs, "source still recorded on mismatch")
}

func TestAggregateNilQuantities(t *testing.T) {
	contributions := []Contribution{
		{RecipeID: "a", Multiplier: 1, Ingredients: []SourceIngredient{
			{Name: "Salt"},
		}},
		{RecipeID: "b", Multiplier: 3, Ingredients: []SourceIngredient{
			{Name: "Salt"},
		}},
	}

	items := Aggregate(contributions)
	require.Len(t, items, 1)
	assert.Equal(t, 0.0, items[0].Quantity)
	assert.Nil(t, quantityValue(items[0].Quantity), "quantity-less items stored as NULL")
}

func TestAggregateFallbackNames(t *testing.T) {
	contributions := []Contribution{
		{RecipeID: "a", Multiplier: 1, Ingredients: []SourceIngredient{
			{OriginalText: "a pinch of saffron"},
			{},
		}},
	}

	items := Aggregate(contributions)
	require.Len(t, items, 2)
	assert.Equal(t, "a pinch of saffron", items[0].Name)
	assert.Equal(t, "Unknown", items[1].Name)
	assert.Equal(t, "Other", items[0].Category)
}

func TestAggregateClampsMultiplier(t *testing.T) {
	contributions := []Contribution{
		{RecipeID: "a", Multiplier: 0, Ingredients: []SourceIngredient{
			{Name: "Rice", Quantity: fp(150), Unit: sp("g")},
		}},
		{RecipeID: "b", Multiplier: -2, Ingredients: []SourceIngredient{
			{Name: "Rice", Quantity: fp(150), Unit: sp("g")},
		}},
	}

	items := Aggregate(contributions)
	require.Len(t, items, 1)
	assert.Equal(t, 300.0, items[0].Quantity, "non-positive multipliers treated as 1")
}

func TestAggregatePreservesFirstSeenOrder(t *testing.T) {
	contributions := []Contribution{
		{RecipeID: "a", Multiplier: 1, Ingredients: []SourceIngredient{
			{Name: "Onion", Quantity: fp(1)},
			{Name: "Garlic", Quantity: fp(2)},
		}},
		{RecipeID: "b", Multiplier: 1, Ingredients: []SourceIngredient{
			{Name: "Butter", Quantity: fp(50), Unit: sp("g")},
			{Name: "onion", Quantity: fp(1)},
		}},
	}

	items := Aggregate(contributions)
	require.Len(t, items, 3)
	assert.Equal(t, "Onion", items[0].Name)
	assert.Equal(t, "Garlic", items[1].Name)
	assert.Equal(t, "Butter", items[2].Name)
	assert.Equal(t, 2.0, items[0].Quantity)
}

func TestDeduct(t *testing.T) {
	tests := []struct {
		name      string
		need      float64
		available float64
		remaining float64
		taken     float64
	}{
		{"partial cover", 1.0, 0.4, 0.6, 0.4},
		{"full cover", 1.0, 2.0, 0, 1.0},
		{"exact cover", 0.5, 0.5, 0, 0.5},
		{"nothing available", 1.0, 0, 1.0, 0},
		{"nothing needed", 0, 3.0, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			remaining, taken := deduct(tt.need, tt.available)
			assert.InDelta(t, tt.remaining, remaining, 1e-9)
			assert.InDelta(t, tt.taken, taken, 1e-9)
			assert.GreaterOrEqual(t, remaining, 0.0)
			assert.GreaterOrEqual(t, taken, 0.0)
		})
	}
}

func TestSharesSource(t *testing.T) {
	assert.True(t, sharesSource([]string{"a", "b"}, []string{"b", "c"}))
	assert.False(t, sharesSource([]string{"a"}, []string{"b"}))
	assert.False(t, sharesSource(nil, []string{"a"}))
	assert.False(t, sharesSource([]string{"a"}, nil))
}
