package mealplan

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Store persists weekly meal plans and their entries in PostgreSQL.
type Store struct {
	db *sqlx.DB
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS meal_plans (
		id UUID PRIMARY KEY,
		household_id UUID NOT NULL,
		week_start DATE NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (household_id, week_start)
	);`,
	`CREATE TABLE IF NOT EXISTS meal_entries (
		id UUID PRIMARY KEY,
		meal_plan_id UUID NOT NULL REFERENCES meal_plans(id) ON DELETE CASCADE,
		date DATE NOT NULL,
		meal_type TEXT NOT NULL,
		recipe_id UUID REFERENCES recipes(id) ON DELETE SET NULL,
		custom_meal_name TEXT,
		servings_multiplier DOUBLE PRECISION NOT NULL DEFAULT 1,
		is_completed BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
}

// NewStore creates a meal plan store and bootstraps its tables. The recipes
// table must exist first (recipe.NewStore).
func NewStore(db *sqlx.DB) (*Store, error) {
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return nil, fmt.Errorf("failed to create meal plan tables: %w", err)
		}
	}
	return &Store{db: db}, nil
}

// FindForWeek returns the household's plan for the given week, or nil when no
// plan exists. Shopping-list generation uses this so a missing plan is a 404,
// never an implicit create.
func (s *Store) FindForWeek(ctx context.Context, householdID string, weekStart time.Time) (*MealPlan, error) {
	var plan MealPlan
	err := s.db.GetContext(ctx, &plan,
		"SELECT id, household_id, week_start, created_at FROM meal_plans WHERE household_id = $1 AND week_start = $2",
		householdID, weekStart.Format("2006-01-02"))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find meal plan: %w", err)
	}
	return &plan, nil
}

// GetOrCreateForWeek returns the household's plan for the week, creating an
// empty one if needed.
func (s *Store) GetOrCreateForWeek(ctx context.Context, householdID string, weekStart time.Time) (*MealPlan, error) {
	var plan MealPlan
	err := s.db.GetContext(ctx, &plan, `
		INSERT INTO meal_plans (id, household_id, week_start)
		VALUES ($1, $2, $3)
		ON CONFLICT (household_id, week_start) DO UPDATE SET week_start = EXCLUDED.week_start
		RETURNING id, household_id, week_start, created_at`,
		uuid.NewString(), householdID, weekStart.Format("2006-01-02"))
	if err != nil {
		return nil, fmt.Errorf("failed to get or create meal plan: %w", err)
	}
	return &plan, nil
}

const entryColumns = `e.id, e.meal_plan_id, e.date, e.meal_type, e.recipe_id,
	e.custom_meal_name, e.servings_multiplier, e.is_completed`

type entryRow struct {
	Entry
	RecipeTitle    *string `db:"recipe_title"`
	RecipeImageURL *string `db:"recipe_image_url"`
	RecipePrep     *int    `db:"recipe_prep_time_minutes"`
	RecipeCook     *int    `db:"recipe_cook_time_minutes"`
	RecipeServings *int    `db:"recipe_servings"`
}

func (r entryRow) toEntry() *Entry {
	e := r.Entry
	if e.RecipeID != nil && r.RecipeTitle != nil {
		e.Recipe = &RecipeSummary{
			ID:              *e.RecipeID,
			Title:           *r.RecipeTitle,
			ImageURL:        r.RecipeImageURL,
			PrepTimeMinutes: r.RecipePrep,
			CookTimeMinutes: r.RecipeCook,
			Servings:        *r.RecipeServings,
		}
	}
	return &e
}

// Entries lists a plan's meals ordered by date, with recipe summaries joined.
func (s *Store) Entries(ctx context.Context, mealPlanID string) ([]*Entry, error) {
	var rows []entryRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT `+entryColumns+`,
			r.title AS recipe_title, r.image_url AS recipe_image_url,
			r.prep_time_minutes AS recipe_prep_time_minutes,
			r.cook_time_minutes AS recipe_cook_time_minutes,
			r.servings AS recipe_servings
		FROM meal_entries e
		LEFT JOIN recipes r ON r.id = e.recipe_id
		WHERE e.meal_plan_id = $1
		ORDER BY e.date, e.meal_type`, mealPlanID)
	if err != nil {
		return nil, fmt.Errorf("failed to list meal entries: %w", err)
	}

	entries := make([]*Entry, 0, len(rows))
	for _, r := range rows {
		entries = append(entries, r.toEntry())
	}
	return entries, nil
}

// CreateEntry adds a meal to the week containing the entry date, creating the
// weekly plan on demand. A non-positive multiplier is clamped to 1.
func (s *Store) CreateEntry(ctx context.Context, householdID string, in EntryInput) (*Entry, error) {
	date, err := time.Parse("2006-01-02", in.Date)
	if err != nil {
		return nil, fmt.Errorf("invalid entry date %q: %w", in.Date, err)
	}

	plan, err := s.GetOrCreateForWeek(ctx, householdID, WeekStart(date))
	if err != nil {
		return nil, err
	}

	multiplier := 1.0
	if in.ServingsMultiplier != nil && *in.ServingsMultiplier > 0 {
		multiplier = *in.ServingsMultiplier
	}

	id := uuid.NewString()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO meal_entries (id, meal_plan_id, date, meal_type, recipe_id,
			custom_meal_name, servings_multiplier)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		id, plan.ID, in.Date, in.MealType, in.RecipeID, in.CustomMealName, multiplier)
	if err != nil {
		return nil, fmt.Errorf("failed to insert meal entry: %w", err)
	}
	return s.getEntry(ctx, householdID, id)
}

func (s *Store) getEntry(ctx context.Context, householdID, id string) (*Entry, error) {
	var row entryRow
	err := s.db.GetContext(ctx, &row, `
		SELECT `+entryColumns+`,
			r.title AS recipe_title, r.image_url AS recipe_image_url,
			r.prep_time_minutes AS recipe_prep_time_minutes,
			r.cook_time_minutes AS recipe_cook_time_minutes,
			r.servings AS recipe_servings
		FROM meal_entries e
		JOIN meal_plans p ON p.id = e.meal_plan_id
		LEFT JOIN recipes r ON r.id = e.recipe_id
		WHERE e.id = $1 AND p.household_id = $2`, id, householdID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get meal entry: %w", err)
	}
	return row.toEntry(), nil
}

// UpdateEntry applies a partial update to an entry in one of the household's
// plans. Returns nil when no such entry exists.
func (s *Store) UpdateEntry(ctx context.Context, householdID, id string, p EntryPatch) (*Entry, error) {
	set := []string{}
	args := []interface{}{id, householdID}

	add := func(col string, v interface{}) {
		args = append(args, v)
		set = append(set, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if p.Date != nil {
		add("date", *p.Date)
	}
	if p.MealType != nil {
		add("meal_type", *p.MealType)
	}
	if p.RecipeID != nil {
		add("recipe_id", *p.RecipeID)
	}
	if p.CustomMealName != nil {
		add("custom_meal_name", *p.CustomMealName)
	}
	if p.ServingsMultiplier != nil {
		multiplier := *p.ServingsMultiplier
		if multiplier <= 0 {
			multiplier = 1
		}
		add("servings_multiplier", multiplier)
	}
	if p.IsCompleted != nil {
		add("is_completed", *p.IsCompleted)
	}
	if len(set) == 0 {
		return s.getEntry(ctx, householdID, id)
	}

	query := fmt.Sprintf(`UPDATE meal_entries SET %s
		WHERE id = $1 AND meal_plan_id IN (SELECT id FROM meal_plans WHERE household_id = $2)`,
		strings.Join(set, ", "))
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to update meal entry: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, nil
	}
	return s.getEntry(ctx, householdID, id)
}

// DeleteEntry removes a planned meal from one of the household's plans.
func (s *Store) DeleteEntry(ctx context.Context, householdID, id string) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM meal_entries
		WHERE id = $1 AND meal_plan_id IN (SELECT id FROM meal_plans WHERE household_id = $2)`,
		id, householdID)
	if err != nil {
		return fmt.Errorf("failed to delete meal entry: %w", err)
	}
	return nil
}
