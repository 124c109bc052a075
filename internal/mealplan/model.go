package mealplan

import "time"

// MealPlan is the plan for one household week, keyed by the Monday it starts.
type MealPlan struct {
	ID          string    `json:"id" db:"id"`
	HouseholdID string    `json:"household_id" db:"household_id"`
	WeekStart   time.Time `json:"week_start" db:"week_start"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// RecipeSummary is the slim recipe view attached to plan entries.
type RecipeSummary struct {
	ID              string  `json:"id" db:"id"`
	Title           string  `json:"title" db:"title"`
	ImageURL        *string `json:"image_url" db:"image_url"`
	PrepTimeMinutes *int    `json:"prep_time_minutes" db:"prep_time_minutes"`
	CookTimeMinutes *int    `json:"cook_time_minutes" db:"cook_time_minutes"`
	Servings        int     `json:"servings" db:"servings"`
}

// Entry is a single planned meal. It either references a recipe or stands
// alone as a free-text custom meal.
type Entry struct {
	ID                 string    `json:"id" db:"id"`
	MealPlanID         string    `json:"meal_plan_id" db:"meal_plan_id"`
	Date               time.Time `json:"date" db:"date"`
	MealType           string    `json:"meal_type" db:"meal_type"`
	RecipeID           *string   `json:"recipe_id" db:"recipe_id"`
	CustomMealName     *string   `json:"custom_meal_name" db:"custom_meal_name"`
	ServingsMultiplier float64   `json:"servings_multiplier" db:"servings_multiplier"`
	IsCompleted        bool      `json:"is_completed" db:"is_completed"`

	Recipe *RecipeSummary `json:"recipe,omitempty"`
}

// EntryInput is the payload for adding a meal to the planner.
type EntryInput struct {
	Date               string   `json:"date"` // YYYY-MM-DD
	MealType           string   `json:"mealType"`
	RecipeID           *string  `json:"recipeId"`
	CustomMealName     *string  `json:"customMealName"`
	ServingsMultiplier *float64 `json:"servingsMultiplier"`
}

// EntryPatch carries partial updates to a plan entry.
type EntryPatch struct {
	Date               *string  `json:"date"`
	MealType           *string  `json:"mealType"`
	RecipeID           *string  `json:"recipeId"`
	CustomMealName     *string  `json:"customMealName"`
	ServingsMultiplier *float64 `json:"servingsMultiplier"`
	IsCompleted        *bool    `json:"isCompleted"`
}

// MealTypes are the accepted slots of a day.
var MealTypes = map[string]bool{
	"breakfast": true,
	"lunch":     true,
	"dinner":    true,
	"snack":     true,
}

// ValidMealType reports whether mt is an accepted meal slot.
func ValidMealType(mt string) bool {
	return MealTypes[mt]
}

// WeekStart returns the Monday of the week containing t, truncated to a date.
func WeekStart(t time.Time) time.Time {
	t = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	offset := (int(t.Weekday()) + 6) % 7 // Monday = 0
	return t.AddDate(0, 0, -offset)
}
