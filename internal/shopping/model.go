package shopping

import (
	"time"

	"github.com/lib/pq"
)

// List is a household shopping list. Exactly one list per household has
// status "active" at a time; generation and manual adds always target it.
type List struct {
	ID          string    `json:"id" db:"id"`
	HouseholdID string    `json:"household_id" db:"household_id"`
	MealPlanID  *string   `json:"meal_plan_id" db:"meal_plan_id"`
	Name        string    `json:"name" db:"name"`
	Status      string    `json:"status" db:"status"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`

	Items []*Item `json:"items"`
}

// Item is one line of a shopping list. Names are case-insensitively unique
// within a list; merges happen instead of duplicates.
type Item struct {
	ID              string         `json:"id" db:"id"`
	ShoppingListID  string         `json:"shopping_list_id" db:"shopping_list_id"`
	Name            string         `json:"name" db:"name"`
	Quantity        *float64       `json:"quantity" db:"quantity"`
	Unit            *string        `json:"unit" db:"unit"`
	Category        string         `json:"category" db:"category"`
	Notes           *string        `json:"notes" db:"notes"`
	SourceRecipeIDs pq.StringArray `json:"source_recipe_ids" db:"source_recipe_ids"`
	IsChecked       bool           `json:"is_checked" db:"is_checked"`
	IsManual        bool           `json:"is_manual" db:"is_manual"`
	CheckedAt       *time.Time     `json:"checked_at" db:"checked_at"`
	CheckedBy       *string        `json:"checked_by" db:"checked_by"`
	CreatedAt       time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at" db:"updated_at"`
}

// ItemInput is the payload for adding a manual item to the active list.
type ItemInput struct {
	Name     string   `json:"name"`
	Quantity *float64 `json:"quantity"`
	Unit     *string  `json:"unit"`
	Category *string  `json:"category"`
	Notes    *string  `json:"notes"`
}

// ItemPatch carries partial updates to a list item.
type ItemPatch struct {
	Name      *string  `json:"name"`
	Quantity  *float64 `json:"quantity"`
	Unit      *string  `json:"unit"`
	Category  *string  `json:"category"`
	Notes     *string  `json:"notes"`
	IsChecked *bool    `json:"is_checked"`
}

// GenerateRequest is the body of POST /shopping-lists/generate.
type GenerateRequest struct {
	WeekStart       string `json:"weekStart"`
	DeductInventory bool   `json:"deductInventory"`
}

// GenerateResponse is the success payload of generation.
type GenerateResponse struct {
	ShoppingList *List `json:"shoppingList"`
	ItemsAdded   int   `json:"itemsAdded"`
}
