package recipe

import (
	"time"

	"github.com/lib/pq"
)

// Recipe represents a recipe belonging to a household.
type Recipe struct {
	ID              string         `json:"id" db:"id"`
	HouseholdID     string         `json:"household_id" db:"household_id"`
	CreatedBy       string         `json:"created_by" db:"created_by"`
	Title           string         `json:"title" db:"title"`
	Description     *string        `json:"description" db:"description"`
	PrepTimeMinutes *int           `json:"prep_time_minutes" db:"prep_time_minutes"`
	CookTimeMinutes *int           `json:"cook_time_minutes" db:"cook_time_minutes"`
	Servings        int            `json:"servings" db:"servings"`
	Cuisine         *string        `json:"cuisine" db:"cuisine"`
	MealType        pq.StringArray `json:"meal_type" db:"meal_type"`
	Tags            pq.StringArray `json:"tags" db:"tags"`
	SourceType      string         `json:"source_type" db:"source_type"`
	SourceURL       *string        `json:"source_url" db:"source_url"`
	ImageURL        *string        `json:"image_url" db:"image_url"`
	IsFavorite      bool           `json:"is_favorite" db:"is_favorite"`
	LastCookedAt    *time.Time     `json:"last_cooked_at" db:"last_cooked_at"`
	CreatedAt       time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at" db:"updated_at"`

	Ingredients []RecipeIngredient `json:"ingredients"`
	Steps       []Step             `json:"steps"`
}

// Ingredient is a canonical ingredient shared across recipes. Lookup happens
// by normalized name so "Red Onion" and "red onion" resolve to the same row.
type Ingredient struct {
	ID             string  `json:"id" db:"id"`
	Name           string  `json:"name" db:"name"`
	NormalizedName string  `json:"normalized_name" db:"normalized_name"`
	Category       *string `json:"category" db:"category"`
}

// RecipeIngredient links a recipe to a canonical ingredient with quantities.
type RecipeIngredient struct {
	ID           string   `json:"id" db:"id"`
	RecipeID     string   `json:"recipe_id" db:"recipe_id"`
	IngredientID string   `json:"ingredient_id" db:"ingredient_id"`
	Name         string   `json:"name" db:"name"`
	Category     *string  `json:"category" db:"category"`
	Quantity     *float64 `json:"quantity" db:"quantity"`
	Unit         *string  `json:"unit" db:"unit"`
	Preparation  *string  `json:"preparation" db:"preparation"`
	Notes        *string  `json:"notes" db:"notes"`
	IsOptional   bool     `json:"is_optional" db:"is_optional"`
	DisplayOrder int      `json:"display_order" db:"display_order"`
	OriginalText *string  `json:"original_text" db:"original_text"`
}

// Step is a single instruction step of a recipe.
type Step struct {
	ID              string  `json:"id" db:"id"`
	RecipeID        string  `json:"recipe_id" db:"recipe_id"`
	StepNumber      int     `json:"step_number" db:"step_number"`
	Instruction     string  `json:"instruction" db:"instruction"`
	DurationMinutes *int    `json:"duration_minutes" db:"duration_minutes"`
	ImageURL        *string `json:"image_url" db:"image_url"`
}

// IngredientInput is one ingredient line of a recipe create/update request.
type IngredientInput struct {
	Name         string   `json:"name"`
	Quantity     *float64 `json:"quantity"`
	Unit         *string  `json:"unit"`
	Preparation  *string  `json:"preparation"`
	Notes        *string  `json:"notes"`
	IsOptional   bool     `json:"isOptional"`
	Category     *string  `json:"category"`
	OriginalText *string  `json:"originalText"`
}

// StepInput is one step of a recipe create/update request.
type StepInput struct {
	Instruction string  `json:"instruction"`
	Duration    *int    `json:"duration"`
	ImageURL    *string `json:"imageUrl"`
}

// Input is the payload for creating or updating a recipe.
type Input struct {
	Title       string            `json:"title"`
	Description *string           `json:"description"`
	PrepTime    *int              `json:"prepTime"`
	CookTime    *int              `json:"cookTime"`
	Servings    int               `json:"servings"`
	Cuisine     *string           `json:"cuisine"`
	MealType    []string          `json:"mealType"`
	Tags        []string          `json:"tags"`
	SourceType  string            `json:"sourceType"`
	SourceURL   *string           `json:"sourceUrl"`
	ImageURL    *string           `json:"imageUrl"`
	Ingredients []IngredientInput `json:"ingredients"`
	Steps       []StepInput       `json:"steps"`
}

// Draft is a recipe extracted by a model from a photo or a web page. The user
// reviews and edits a draft before it is saved as a recipe.
type Draft struct {
	Title       string            `json:"title"`
	Description *string           `json:"description"`
	PrepTime    *int              `json:"prep_time_minutes"`
	CookTime    *int              `json:"cook_time_minutes"`
	Servings    int               `json:"servings"`
	Cuisine     *string           `json:"cuisine"`
	MealType    []string          `json:"meal_type"`
	Tags        []string          `json:"tags"`
	Ingredients []DraftIngredient `json:"ingredients"`
	Steps       []string          `json:"steps"`
	Confidence  *float64          `json:"confidence"`
}

// DraftIngredient is one extracted ingredient line.
type DraftIngredient struct {
	Name         string   `json:"name"`
	Quantity     *float64 `json:"quantity"`
	Unit         *string  `json:"unit"`
	Category     *string  `json:"category"`
	OriginalText string   `json:"original_text"`
}

// Patch carries the partial updates allowed on a recipe.
type Patch struct {
	IsFavorite *bool    `json:"isFavorite"`
	Tags       []string `json:"tags"`
	MealType   []string `json:"mealType"`
	MarkCooked bool     `json:"markCooked"`
}

// Filters narrows recipe listings.
type Filters struct {
	Search   string
	MealType string
	Favorite bool
	Page     int
	Limit    int
}
