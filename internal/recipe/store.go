package recipe

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// Store persists recipes, canonical ingredients and steps in PostgreSQL.
type Store struct {
	db *sqlx.DB
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS ingredients (
		id UUID PRIMARY KEY,
		name TEXT NOT NULL,
		normalized_name TEXT NOT NULL UNIQUE,
		category TEXT
	);`,
	`CREATE TABLE IF NOT EXISTS recipes (
		id UUID PRIMARY KEY,
		household_id UUID NOT NULL,
		created_by TEXT NOT NULL,
		title TEXT NOT NULL,
		description TEXT,
		prep_time_minutes INT,
		cook_time_minutes INT,
		servings INT NOT NULL DEFAULT 2,
		cuisine TEXT,
		meal_type TEXT[] NOT NULL DEFAULT '{}',
		tags TEXT[] NOT NULL DEFAULT '{}',
		source_type TEXT NOT NULL DEFAULT 'manual',
		source_url TEXT,
		image_url TEXT,
		is_favorite BOOLEAN NOT NULL DEFAULT FALSE,
		last_cooked_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS recipe_ingredients (
		id UUID PRIMARY KEY,
		recipe_id UUID NOT NULL REFERENCES recipes(id) ON DELETE CASCADE,
		ingredient_id UUID NOT NULL REFERENCES ingredients(id),
		quantity DOUBLE PRECISION,
		unit TEXT,
		preparation TEXT,
		notes TEXT,
		is_optional BOOLEAN NOT NULL DEFAULT FALSE,
		display_order INT NOT NULL DEFAULT 0,
		original_text TEXT
	);`,
	`CREATE TABLE IF NOT EXISTS recipe_steps (
		id UUID PRIMARY KEY,
		recipe_id UUID NOT NULL REFERENCES recipes(id) ON DELETE CASCADE,
		step_number INT NOT NULL,
		instruction TEXT NOT NULL,
		duration_minutes INT,
		image_url TEXT
	);`,
	`CREATE TABLE IF NOT EXISTS recipe_imports (
		id UUID PRIMARY KEY,
		household_id UUID NOT NULL,
		imported_by TEXT NOT NULL,
		import_type TEXT NOT NULL,
		source_url TEXT,
		image_url TEXT,
		raw_ai_response JSONB,
		status TEXT NOT NULL DEFAULT 'completed',
		confidence_score DOUBLE PRECISION,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
}

// NewStore creates a recipe store and bootstraps its tables.
func NewStore(db *sqlx.DB) (*Store, error) {
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return nil, fmt.Errorf("failed to create recipe tables: %w", err)
		}
	}
	return &Store{db: db}, nil
}

const recipeColumns = `id, household_id, created_by, title, description, prep_time_minutes,
	cook_time_minutes, servings, cuisine, meal_type, tags, source_type, source_url,
	image_url, is_favorite, last_cooked_at, created_at, updated_at`

// Get retrieves a single recipe with its ingredients and steps. Returns nil
// when no recipe exists.
func (s *Store) Get(ctx context.Context, id string) (*Recipe, error) {
	var r Recipe
	err := s.db.GetContext(ctx, &r,
		"SELECT "+recipeColumns+" FROM recipes WHERE id = $1", id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get recipe: %w", err)
	}
	if err := s.loadRelations(ctx, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *Store) loadRelations(ctx context.Context, r *Recipe) error {
	err := s.db.SelectContext(ctx, &r.Ingredients, `
		SELECT ri.id, ri.recipe_id, ri.ingredient_id, i.name, i.category,
			ri.quantity, ri.unit, ri.preparation, ri.notes, ri.is_optional,
			ri.display_order, ri.original_text
		FROM recipe_ingredients ri
		JOIN ingredients i ON i.id = ri.ingredient_id
		WHERE ri.recipe_id = $1
		ORDER BY ri.display_order`, r.ID)
	if err != nil {
		return fmt.Errorf("failed to load recipe ingredients: %w", err)
	}

	err = s.db.SelectContext(ctx, &r.Steps, `
		SELECT id, recipe_id, step_number, instruction, duration_minutes, image_url
		FROM recipe_steps WHERE recipe_id = $1 ORDER BY step_number`, r.ID)
	if err != nil {
		return fmt.Errorf("failed to load recipe steps: %w", err)
	}
	return nil
}

// List returns recipes for a household matching the filters, newest first,
// along with the total count before pagination.
func (s *Store) List(ctx context.Context, householdID string, f Filters) ([]*Recipe, int, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = 20
	}

	where := "WHERE household_id = $1"
	args := []interface{}{householdID}

	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		where += fmt.Sprintf(" AND (title ILIKE $%d OR description ILIKE $%d)", len(args), len(args))
	}
	if f.MealType != "" {
		args = append(args, pq.StringArray{f.MealType})
		where += fmt.Sprintf(" AND meal_type @> $%d", len(args))
	}
	if f.Favorite {
		where += " AND is_favorite = TRUE"
	}

	var total int
	if err := s.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM recipes "+where, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count recipes: %w", err)
	}

	args = append(args, f.Limit, (f.Page-1)*f.Limit)
	query := fmt.Sprintf("SELECT %s FROM recipes %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
		recipeColumns, where, len(args)-1, len(args))

	var recipes []*Recipe
	if err := s.db.SelectContext(ctx, &recipes, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list recipes: %w", err)
	}
	for _, r := range recipes {
		if err := s.loadRelations(ctx, r); err != nil {
			return nil, 0, err
		}
	}
	return recipes, total, nil
}

// Create inserts a recipe with its ingredients and steps in one transaction.
// Canonical ingredients are found by normalized name or created on the fly.
func (s *Store) Create(ctx context.Context, householdID, userID string, in Input) (*Recipe, error) {
	if in.Servings <= 0 {
		in.Servings = 2
	}
	if in.SourceType == "" {
		in.SourceType = "manual"
	}

	id := uuid.NewString()
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO recipes (id, household_id, created_by, title, description,
				prep_time_minutes, cook_time_minutes, servings, cuisine, meal_type,
				tags, source_type, source_url, image_url)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
			id, householdID, userID, in.Title, in.Description, in.PrepTime, in.CookTime,
			in.Servings, in.Cuisine, pq.StringArray(in.MealType), pq.StringArray(in.Tags),
			in.SourceType, in.SourceURL, in.ImageURL)
		if err != nil {
			return fmt.Errorf("failed to insert recipe: %w", err)
		}
		return s.insertRelations(ctx, tx, id, in.Ingredients, in.Steps)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Update replaces the recipe row and, when provided, its ingredient and step
// relations, all in one transaction.
func (s *Store) Update(ctx context.Context, id string, in Input) (*Recipe, error) {
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE recipes SET title = $2, description = $3, prep_time_minutes = $4,
				cook_time_minutes = $5, servings = $6, cuisine = $7, meal_type = $8,
				tags = $9, image_url = $10, updated_at = NOW()
			WHERE id = $1`,
			id, in.Title, in.Description, in.PrepTime, in.CookTime, in.Servings,
			in.Cuisine, pq.StringArray(in.MealType), pq.StringArray(in.Tags), in.ImageURL)
		if err != nil {
			return fmt.Errorf("failed to update recipe: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return sql.ErrNoRows
		}

		if in.Ingredients != nil {
			if _, err := tx.ExecContext(ctx, "DELETE FROM recipe_ingredients WHERE recipe_id = $1", id); err != nil {
				return fmt.Errorf("failed to clear recipe ingredients: %w", err)
			}
		}
		if in.Steps != nil {
			if _, err := tx.ExecContext(ctx, "DELETE FROM recipe_steps WHERE recipe_id = $1", id); err != nil {
				return fmt.Errorf("failed to clear recipe steps: %w", err)
			}
		}
		return s.insertRelations(ctx, tx, id, in.Ingredients, in.Steps)
	})
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *Store) insertRelations(ctx context.Context, tx *sqlx.Tx, recipeID string, ingredients []IngredientInput, steps []StepInput) error {
	for i, ing := range ingredients {
		normalized := Normalize(ing.Name)
		if normalized == "" {
			continue
		}

		var ingredientID string
		err := tx.QueryRowContext(ctx, `
			INSERT INTO ingredients (id, name, normalized_name, category)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (normalized_name)
			DO UPDATE SET category = COALESCE(ingredients.category, EXCLUDED.category)
			RETURNING id`,
			uuid.NewString(), strings.TrimSpace(ing.Name), normalized, ing.Category,
		).Scan(&ingredientID)
		if err != nil {
			return fmt.Errorf("failed to upsert ingredient %q: %w", ing.Name, err)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO recipe_ingredients (id, recipe_id, ingredient_id, quantity,
				unit, preparation, notes, is_optional, display_order, original_text)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			uuid.NewString(), recipeID, ingredientID, ing.Quantity, ing.Unit,
			ing.Preparation, ing.Notes, ing.IsOptional, i, ing.OriginalText)
		if err != nil {
			return fmt.Errorf("failed to insert recipe ingredient: %w", err)
		}
	}

	for i, step := range steps {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO recipe_steps (id, recipe_id, step_number, instruction, duration_minutes, image_url)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			uuid.NewString(), recipeID, i+1, step.Instruction, step.Duration, step.ImageURL)
		if err != nil {
			return fmt.Errorf("failed to insert recipe step: %w", err)
		}
	}
	return nil
}

// ApplyPatch performs partial updates (favorite flag, tags, meal types, cooked
// timestamp). Returns the updated recipe, or nil when it does not exist.
func (s *Store) ApplyPatch(ctx context.Context, id string, p Patch) (*Recipe, error) {
	set := []string{"updated_at = NOW()"}
	args := []interface{}{id}

	if p.IsFavorite != nil {
		args = append(args, *p.IsFavorite)
		set = append(set, fmt.Sprintf("is_favorite = $%d", len(args)))
	}
	if p.Tags != nil {
		args = append(args, pq.StringArray(p.Tags))
		set = append(set, fmt.Sprintf("tags = $%d", len(args)))
	}
	if p.MealType != nil {
		args = append(args, pq.StringArray(p.MealType))
		set = append(set, fmt.Sprintf("meal_type = $%d", len(args)))
	}
	if p.MarkCooked {
		set = append(set, "last_cooked_at = NOW()")
	}

	query := fmt.Sprintf("UPDATE recipes SET %s WHERE id = $1", strings.Join(set, ", "))
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to patch recipe: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, nil
	}
	return s.Get(ctx, id)
}

// Delete removes a recipe; ingredients and steps cascade.
func (s *Store) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM recipes WHERE id = $1", id); err != nil {
		return fmt.Errorf("failed to delete recipe: %w", err)
	}
	return nil
}

// SetImageURL saves a found image URL on one of the household's recipes.
func (s *Store) SetImageURL(ctx context.Context, householdID, id, imageURL string) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE recipes SET image_url = $3, updated_at = NOW() WHERE id = $1 AND household_id = $2",
		id, householdID, imageURL)
	if err != nil {
		return fmt.Errorf("failed to set recipe image: %w", err)
	}
	return nil
}

// LogImport records a recipe import attempt (URL or OCR) for auditing.
func (s *Store) LogImport(ctx context.Context, householdID, userID, importType string, sourceURL, imageURL *string, rawResponse []byte, confidence float64) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO recipe_imports (id, household_id, imported_by, import_type,
			source_url, image_url, raw_ai_response, status, confidence_score)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 'completed', $8)`,
		uuid.NewString(), householdID, userID, importType, sourceURL, imageURL, rawResponse, confidence)
	if err != nil {
		return fmt.Errorf("failed to log recipe import: %w", err)
	}
	return nil
}

func (s *Store) withTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
