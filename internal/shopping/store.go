package shopping

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"mealprep/internal/recipe"
)

// Store persists shopping lists and items in PostgreSQL and runs list
// generation atomically.
type Store struct {
	db *sqlx.DB
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS shopping_lists (
		id UUID PRIMARY KEY,
		household_id UUID NOT NULL,
		meal_plan_id UUID,
		name TEXT NOT NULL DEFAULT 'Shopping List',
		status TEXT NOT NULL DEFAULT 'active',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS shopping_list_items (
		id UUID PRIMARY KEY,
		shopping_list_id UUID NOT NULL REFERENCES shopping_lists(id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		quantity DOUBLE PRECISION,
		unit TEXT,
		category TEXT NOT NULL DEFAULT 'Other',
		notes TEXT,
		source_recipe_ids TEXT[] NOT NULL DEFAULT '{}',
		is_checked BOOLEAN NOT NULL DEFAULT FALSE,
		is_manual BOOLEAN NOT NULL DEFAULT FALSE,
		checked_at TIMESTAMPTZ,
		checked_by TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
}

// NewStore creates a shopping store and bootstraps its tables.
func NewStore(db *sqlx.DB) (*Store, error) {
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return nil, fmt.Errorf("failed to create shopping tables: %w", err)
		}
	}
	return &Store{db: db}, nil
}

// normalizedName is recipe.Normalize expressed in SQL: compared with = so
// "%" and "_" in item names stay literal, unlike a LIKE pattern.
const normalizedName = `lower(regexp_replace(btrim(name), '\s+', ' ', 'g'))`

const listColumns = `id, household_id, meal_plan_id, name, status, created_at`
const itemColumns = `id, shopping_list_id, name, quantity, unit, category, notes,
	source_recipe_ids, is_checked, is_manual, checked_at, checked_by, created_at, updated_at`

type execer interface {
	sqlx.ExtContext
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
}

// getOrCreateActive looks up the household's single active list, creating one
// when none exists. The active list is an explicit lookup-or-create scoped by
// household id, never in-memory state.
func (s *Store) getOrCreateActive(ctx context.Context, q execer, householdID, name string, mealPlanID *string) (*List, error) {
	var list List
	err := q.GetContext(ctx, &list,
		"SELECT "+listColumns+" FROM shopping_lists WHERE household_id = $1 AND status = 'active' ORDER BY created_at DESC LIMIT 1",
		householdID)
	if err == nil {
		return &list, nil
	}
	if err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to look up active shopping list: %w", err)
	}

	if name == "" {
		name = "Shopping List"
	}
	err = q.GetContext(ctx, &list, `
		INSERT INTO shopping_lists (id, household_id, meal_plan_id, name, status)
		VALUES ($1, $2, $3, $4, 'active')
		RETURNING `+listColumns,
		uuid.NewString(), householdID, mealPlanID, name)
	if err != nil {
		return nil, fmt.Errorf("failed to create shopping list: %w", err)
	}
	return &list, nil
}

// ActiveWithItems returns the household's active list (creating it when
// missing) with items sorted unchecked first, then category, then name.
func (s *Store) ActiveWithItems(ctx context.Context, householdID string) (*List, error) {
	list, err := s.getOrCreateActive(ctx, s.db, householdID, "", nil)
	if err != nil {
		return nil, err
	}
	if err := s.loadItems(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

func (s *Store) loadItems(ctx context.Context, list *List) error {
	list.Items = []*Item{}
	err := s.db.SelectContext(ctx, &list.Items,
		"SELECT "+itemColumns+" FROM shopping_list_items WHERE shopping_list_id = $1 ORDER BY is_checked, category, name",
		list.ID)
	if err != nil {
		return fmt.Errorf("failed to load shopping list items: %w", err)
	}
	return nil
}

// AddItem adds a manual item to the active list, merging case-insensitively
// into an existing item by adding quantities. Returns the item and whether a
// new row was created.
func (s *Store) AddItem(ctx context.Context, householdID string, in ItemInput) (*Item, bool, error) {
	list, err := s.getOrCreateActive(ctx, s.db, householdID, "", nil)
	if err != nil {
		return nil, false, err
	}

	var existing Item
	err = s.db.GetContext(ctx, &existing,
		"SELECT "+itemColumns+" FROM shopping_list_items WHERE shopping_list_id = $1 AND "+normalizedName+" = $2",
		list.ID, recipe.Normalize(in.Name))
	if err != nil && err != sql.ErrNoRows {
		return nil, false, fmt.Errorf("failed to look up shopping list item: %w", err)
	}

	if err == nil {
		add := 1.0
		if in.Quantity != nil {
			add = *in.Quantity
		}
		current := 0.0
		if existing.Quantity != nil {
			current = *existing.Quantity
		}
		newQuantity := current + add

		var updated Item
		err := s.db.GetContext(ctx, &updated, `
			UPDATE shopping_list_items SET quantity = $2, updated_at = NOW()
			WHERE id = $1
			RETURNING `+itemColumns, existing.ID, newQuantity)
		if err != nil {
			return nil, false, fmt.Errorf("failed to update shopping list item: %w", err)
		}
		return &updated, false, nil
	}

	category := "Other"
	if in.Category != nil && *in.Category != "" {
		category = *in.Category
	}

	var item Item
	err = s.db.GetContext(ctx, &item, `
		INSERT INTO shopping_list_items (id, shopping_list_id, name, quantity, unit,
			category, notes, is_manual, is_checked)
		VALUES ($1, $2, $3, $4, $5, $6, $7, TRUE, FALSE)
		RETURNING `+itemColumns,
		uuid.NewString(), list.ID, strings.TrimSpace(in.Name), in.Quantity, in.Unit, category, in.Notes)
	if err != nil {
		return nil, false, fmt.Errorf("failed to insert shopping list item: %w", err)
	}
	return &item, true, nil
}

// UpdateItem applies a partial update; checking an item records who and when.
// Returns nil when the item does not exist in one of the household's lists.
func (s *Store) UpdateItem(ctx context.Context, householdID, id, userID string, p ItemPatch) (*Item, error) {
	set := []string{"updated_at = NOW()"}
	args := []interface{}{id, householdID}

	add := func(col string, v interface{}) {
		args = append(args, v)
		set = append(set, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if p.Name != nil {
		add("name", *p.Name)
	}
	if p.Quantity != nil {
		add("quantity", *p.Quantity)
	}
	if p.Unit != nil {
		add("unit", *p.Unit)
	}
	if p.Category != nil {
		add("category", *p.Category)
	}
	if p.Notes != nil {
		add("notes", *p.Notes)
	}
	if p.IsChecked != nil {
		add("is_checked", *p.IsChecked)
		if *p.IsChecked {
			add("checked_by", userID)
			set = append(set, "checked_at = NOW()")
		} else {
			set = append(set, "checked_at = NULL", "checked_by = NULL")
		}
	}

	query := fmt.Sprintf(`UPDATE shopping_list_items SET %s
		WHERE id = $1 AND shopping_list_id IN (SELECT id FROM shopping_lists WHERE household_id = $2)
		RETURNING %s`,
		strings.Join(set, ", "), itemColumns)

	var item Item
	if err := s.db.GetContext(ctx, &item, query, args...); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update shopping list item: %w", err)
	}
	return &item, nil
}

// DeleteItem removes one item from one of the household's lists.
func (s *Store) DeleteItem(ctx context.Context, householdID, id string) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM shopping_list_items
		WHERE id = $1 AND shopping_list_id IN (SELECT id FROM shopping_lists WHERE household_id = $2)`,
		id, householdID)
	if err != nil {
		return fmt.Errorf("failed to delete shopping list item: %w", err)
	}
	return nil
}

// ClearChecked deletes every checked item on the household's active list and
// returns how many were removed.
func (s *Store) ClearChecked(ctx context.Context, householdID string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM shopping_list_items
		WHERE is_checked = TRUE AND shopping_list_id IN (
			SELECT id FROM shopping_lists WHERE household_id = $1 AND status = 'active'
		)`, householdID)
	if err != nil {
		return 0, fmt.Errorf("failed to clear checked items: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

type contributionRow struct {
	EntryID            string   `db:"entry_id"`
	RecipeID           string   `db:"recipe_id"`
	ServingsMultiplier float64  `db:"servings_multiplier"`
	IngredientName     *string  `db:"ingredient_name"`
	Category           *string  `db:"category"`
	Quantity           *float64 `db:"quantity"`
	Unit               *string  `db:"unit"`
	OriginalText       *string  `db:"original_text"`
}

// RecipeContributions loads the ingredient lines of every recipe-bearing
// entry in a meal plan, one Contribution per entry. Custom meals contribute
// nothing and are not returned.
func (s *Store) RecipeContributions(ctx context.Context, mealPlanID string) ([]Contribution, error) {
	var rows []contributionRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT e.id AS entry_id, e.recipe_id, e.servings_multiplier,
			i.name AS ingredient_name, i.category, ri.quantity, ri.unit, ri.original_text
		FROM meal_entries e
		JOIN recipe_ingredients ri ON ri.recipe_id = e.recipe_id
		JOIN ingredients i ON i.id = ri.ingredient_id
		WHERE e.meal_plan_id = $1 AND e.recipe_id IS NOT NULL
		ORDER BY e.date, e.meal_type, e.id, ri.display_order`, mealPlanID)
	if err != nil {
		return nil, fmt.Errorf("failed to load plan ingredients: %w", err)
	}

	var contributions []Contribution
	var current *Contribution
	for _, r := range rows {
		if current == nil || current.entryID != r.EntryID {
			contributions = append(contributions, Contribution{
				entryID:    r.EntryID,
				RecipeID:   r.RecipeID,
				Multiplier: r.ServingsMultiplier,
			})
			current = &contributions[len(contributions)-1]
		}
		ing := SourceIngredient{
			Quantity: r.Quantity,
			Unit:     r.Unit,
			Category: r.Category,
		}
		if r.IngredientName != nil {
			ing.Name = *r.IngredientName
		}
		if r.OriginalText != nil {
			ing.OriginalText = *r.OriginalText
		}
		current.Ingredients = append(current.Ingredients, ing)
	}
	return contributions, nil
}

// HasRecipeEntries reports whether the plan has at least one entry that
// references a recipe (custom meals do not count).
func (s *Store) HasRecipeEntries(ctx context.Context, mealPlanID string) (bool, error) {
	var count int
	err := s.db.GetContext(ctx, &count,
		"SELECT COUNT(*) FROM meal_entries WHERE meal_plan_id = $1 AND recipe_id IS NOT NULL", mealPlanID)
	if err != nil {
		return false, fmt.Errorf("failed to count recipe entries: %w", err)
	}
	return count > 0, nil
}

// Generate applies aggregated items to the household's active list, and
// optionally deducts from inventory, all in a single transaction: either the
// entire batch lands or nothing does.
//
// Upsert policy: an existing item that already carries any of the
// contributing recipe ids is treated as the product of a previous generation
// run and its quantity is set, not added, so regeneration never double-counts.
// Items without overlapping sources (pre-existing manual items) have the new
// quantity added on top.
func (s *Store) Generate(ctx context.Context, householdID, mealPlanID, listName string, items []AggregatedItem, deductInventory bool) (*List, int, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	list, err := s.getOrCreateActive(ctx, tx, householdID, listName, &mealPlanID)
	if err != nil {
		return nil, 0, err
	}

	for _, item := range items {
		quantity := item.Quantity
		if deductInventory {
			quantity, err = s.deductFromInventory(ctx, tx, householdID, item.Name, quantity)
			if err != nil {
				return nil, 0, err
			}
		}
		if err := s.upsertGenerated(ctx, tx, list.ID, item, quantity); err != nil {
			return nil, 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, 0, fmt.Errorf("failed to commit generation: %w", err)
	}

	if err := s.loadItems(ctx, list); err != nil {
		return nil, 0, err
	}
	return list, len(items), nil
}

// deductFromInventory subtracts on-hand quantities from need, never driving
// either side below zero, and returns the uncovered remainder.
func (s *Store) deductFromInventory(ctx context.Context, tx *sqlx.Tx, householdID, name string, need float64) (float64, error) {
	if need <= 0 {
		return need, nil
	}

	type invRow struct {
		ID       string  `db:"id"`
		Quantity float64 `db:"quantity"`
	}
	var rows []invRow
	err := tx.SelectContext(ctx, &rows, `
		SELECT id, quantity FROM inventory_items
		WHERE household_id = $1 AND `+normalizedName+` = $2 AND quantity > 0
		ORDER BY quantity DESC`, householdID, recipe.Normalize(name))
	if err != nil {
		return 0, fmt.Errorf("failed to look up inventory for %q: %w", name, err)
	}

	for _, row := range rows {
		if need <= 0 {
			break
		}
		remaining, taken := deduct(need, row.Quantity)
		need = remaining
		_, err := tx.ExecContext(ctx,
			"UPDATE inventory_items SET quantity = $2, updated_at = NOW() WHERE id = $1",
			row.ID, row.Quantity-taken)
		if err != nil {
			return 0, fmt.Errorf("failed to decrement inventory item: %w", err)
		}
	}
	return need, nil
}

func (s *Store) upsertGenerated(ctx context.Context, tx *sqlx.Tx, listID string, item AggregatedItem, quantity float64) error {
	var existing Item
	err := tx.GetContext(ctx, &existing,
		"SELECT "+itemColumns+" FROM shopping_list_items WHERE shopping_list_id = $1 AND "+normalizedName+" = $2",
		listID, recipe.Normalize(item.Name))
	if err != nil && err != sql.ErrNoRows {
		return fmt.Errorf("failed to look up shopping list item: %w", err)
	}

	if err == sql.ErrNoRows {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO shopping_list_items (id, shopping_list_id, name, quantity, unit,
				category, source_recipe_ids, is_manual, is_checked)
			VALUES ($1, $2, $3, $4, $5, $6, $7, FALSE, FALSE)`,
			uuid.NewString(), listID, item.Name, quantityValue(quantity), item.Unit,
			item.Category, pq.StringArray(item.SourceRecipeIDs))
		if err != nil {
			return fmt.Errorf("failed to insert shopping list item: %w", err)
		}
		return nil
	}

	newQuantity := quantity
	if !sharesSource(existing.SourceRecipeIDs, item.SourceRecipeIDs) {
		if existing.Quantity != nil {
			newQuantity += *existing.Quantity
		}
	}

	merged := existing.SourceRecipeIDs
	for _, id := range item.SourceRecipeIDs {
		merged = appendUnique(merged, id)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE shopping_list_items
		SET quantity = $2, source_recipe_ids = $3, updated_at = NOW()
		WHERE id = $1`,
		existing.ID, quantityValue(newQuantity), pq.StringArray(merged))
	if err != nil {
		return fmt.Errorf("failed to update shopping list item: %w", err)
	}
	return nil
}

func sharesSource(existing, incoming []string) bool {
	for _, id := range incoming {
		for _, have := range existing {
			if id == have {
				return true
			}
		}
	}
	return false
}
