package inventory

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"mealprep/internal/recipe"
)

// Store persists household inventory items in PostgreSQL.
type Store struct {
	db *sqlx.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS inventory_items (
	id UUID PRIMARY KEY,
	household_id UUID NOT NULL,
	name TEXT NOT NULL,
	quantity DOUBLE PRECISION,
	unit TEXT,
	location TEXT NOT NULL,
	expiry_date DATE,
	source TEXT NOT NULL DEFAULT 'manual',
	confidence_score DOUBLE PRECISION,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);`

// NewStore creates an inventory store and bootstraps its table.
func NewStore(db *sqlx.DB) (*Store, error) {
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to create inventory table: %w", err)
	}
	return &Store{db: db}, nil
}

const itemColumns = `id, household_id, name, quantity, unit, location,
	to_char(expiry_date, 'YYYY-MM-DD') AS expiry_date, source, confidence_score, created_at, updated_at`

// normalizedName is recipe.Normalize expressed in SQL: compared with = so
// "%" and "_" in item names stay literal, unlike a LIKE pattern.
const normalizedName = `lower(regexp_replace(btrim(name), '\s+', ' ', 'g'))`

// List returns a household's items, optionally filtered by location, sorted
// by name.
func (s *Store) List(ctx context.Context, householdID, location string) ([]*Item, error) {
	query := "SELECT " + itemColumns + " FROM inventory_items WHERE household_id = $1"
	args := []interface{}{householdID}
	if location != "" {
		query += " AND location = $2"
		args = append(args, location)
	}
	query += " ORDER BY name"

	var items []*Item
	if err := s.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list inventory: %w", err)
	}
	return items, nil
}

// Upsert adds an item, or bumps the quantity of the existing item with the
// same case-insensitive name in the same location.
func (s *Store) Upsert(ctx context.Context, householdID string, in Input) (*Item, bool, error) {
	var existing Item
	err := s.db.GetContext(ctx, &existing,
		"SELECT "+itemColumns+" FROM inventory_items WHERE household_id = $1 AND location = $2 AND "+normalizedName+" = $3",
		householdID, in.Location, recipe.Normalize(in.Name))
	if err != nil && err != sql.ErrNoRows {
		return nil, false, fmt.Errorf("failed to look up inventory item: %w", err)
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
			UPDATE inventory_items SET quantity = $2, updated_at = NOW()
			WHERE id = $1
			RETURNING `+itemColumns, existing.ID, newQuantity)
		if err != nil {
			return nil, false, fmt.Errorf("failed to update inventory item: %w", err)
		}
		return &updated, false, nil
	}

	source := in.Source
	if source == "" {
		source = "manual"
	}

	var item Item
	err = s.db.GetContext(ctx, &item, `
		INSERT INTO inventory_items (id, household_id, name, quantity, unit, location,
			expiry_date, source, confidence_score)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+itemColumns,
		uuid.NewString(), householdID, strings.TrimSpace(in.Name), in.Quantity, in.Unit,
		in.Location, in.ExpiryDate, source, in.Confidence)
	if err != nil {
		return nil, false, fmt.Errorf("failed to insert inventory item: %w", err)
	}
	return &item, true, nil
}

// Update applies a partial update to one of the household's items. Returns
// nil when no such item exists.
func (s *Store) Update(ctx context.Context, householdID, id string, p Patch) (*Item, error) {
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
	if p.Location != nil {
		add("location", *p.Location)
	}
	if p.ExpiryDate != nil {
		add("expiry_date", *p.ExpiryDate)
	}

	query := fmt.Sprintf("UPDATE inventory_items SET %s WHERE id = $1 AND household_id = $2 RETURNING %s",
		strings.Join(set, ", "), itemColumns)

	var item Item
	if err := s.db.GetContext(ctx, &item, query, args...); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update inventory item: %w", err)
	}
	return &item, nil
}

// Delete removes one of the household's items.
func (s *Store) Delete(ctx context.Context, householdID, id string) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM inventory_items WHERE id = $1 AND household_id = $2", id, householdID)
	if err != nil {
		return fmt.Errorf("failed to delete inventory item: %w", err)
	}
	return nil
}
