package household

import (
	"context"
	"fmt"
	"sort"
	"time"
)

// Activity is one event in the household's recent-activity feed.
type Activity struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Subtitle  *string   `json:"subtitle,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Icon      string    `json:"icon"`
}

const (
	activityLimit  = 20
	perSourceLimit = 10
)

type mealActivityRow struct {
	ID          string    `db:"id"`
	Date        string    `db:"date"`
	CustomName  *string   `db:"custom_meal_name"`
	RecipeTitle *string   `db:"recipe_title"`
	CreatedAt   time.Time `db:"created_at"`
}

type recipeActivityRow struct {
	ID         string    `db:"id"`
	Title      string    `db:"title"`
	SourceType string    `db:"source_type"`
	CreatedAt  time.Time `db:"created_at"`
}

type shoppingActivityRow struct {
	ID        string     `db:"id"`
	Name      string     `db:"name"`
	IsChecked bool       `db:"is_checked"`
	CheckedAt *time.Time `db:"checked_at"`
	CreatedAt time.Time  `db:"created_at"`
}

type inventoryActivityRow struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	Location  string    `db:"location"`
	Source    string    `db:"source"`
	CreatedAt time.Time `db:"created_at"`
}

// Activity assembles the household's recent-activity feed from planned meals,
// new recipes, shopping list changes and inventory additions, newest first.
func (s *Store) Activity(ctx context.Context, householdID string) ([]Activity, error) {
	var meals []mealActivityRow
	err := s.db.SelectContext(ctx, &meals, `
		SELECT e.id, to_char(e.date, 'YYYY-MM-DD') AS date, e.custom_meal_name,
			r.title AS recipe_title, e.created_at
		FROM meal_entries e
		JOIN meal_plans p ON p.id = e.meal_plan_id
		LEFT JOIN recipes r ON r.id = e.recipe_id
		WHERE p.household_id = $1
		ORDER BY e.created_at DESC LIMIT $2`, householdID, perSourceLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load meal activity: %w", err)
	}

	var recipes []recipeActivityRow
	err = s.db.SelectContext(ctx, &recipes, `
		SELECT id, title, source_type, created_at FROM recipes
		WHERE household_id = $1
		ORDER BY created_at DESC LIMIT $2`, householdID, perSourceLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load recipe activity: %w", err)
	}

	var shoppingRows []shoppingActivityRow
	err = s.db.SelectContext(ctx, &shoppingRows, `
		SELECT i.id, i.name, i.is_checked, i.checked_at, i.created_at
		FROM shopping_list_items i
		JOIN shopping_lists l ON l.id = i.shopping_list_id
		WHERE l.household_id = $1
		ORDER BY i.created_at DESC LIMIT $2`, householdID, perSourceLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load shopping activity: %w", err)
	}

	var inv []inventoryActivityRow
	err = s.db.SelectContext(ctx, &inv, `
		SELECT id, name, location, source, created_at FROM inventory_items
		WHERE household_id = $1
		ORDER BY created_at DESC LIMIT $2`, householdID, perSourceLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load inventory activity: %w", err)
	}

	return buildFeed(meals, recipes, shoppingRows, inv), nil
}

func buildFeed(meals []mealActivityRow, recipes []recipeActivityRow,
	shoppingRows []shoppingActivityRow, inv []inventoryActivityRow) []Activity {
	feed := make([]Activity, 0, len(meals)+len(recipes)+2*len(shoppingRows)+len(inv))

	for _, m := range meals {
		title := "Meal"
		switch {
		case m.RecipeTitle != nil:
			title = *m.RecipeTitle
		case m.CustomName != nil && *m.CustomName != "":
			title = *m.CustomName
		}
		subtitle := "Planned for " + m.Date
		feed = append(feed, Activity{
			ID:        "meal-" + m.ID,
			Type:      "meal_added",
			Title:     title,
			Subtitle:  &subtitle,
			Timestamp: m.CreatedAt,
			Icon:      "🍽️",
		})
	}

	for _, r := range recipes {
		a := Activity{
			ID:        "recipe-" + r.ID,
			Type:      "recipe_created",
			Title:     r.Title,
			Timestamp: r.CreatedAt,
			Icon:      "📖",
		}
		switch r.SourceType {
		case "url":
			s := "Imported from URL"
			a.Subtitle = &s
		case "photo":
			s := "Scanned from photo"
			a.Subtitle = &s
		}
		feed = append(feed, a)
	}

	for _, it := range shoppingRows {
		feed = append(feed, Activity{
			ID:        "shop-" + it.ID,
			Type:      "shopping_added",
			Title:     it.Name,
			Timestamp: it.CreatedAt,
			Icon:      "🛒",
		})
		if it.IsChecked && it.CheckedAt != nil {
			feed = append(feed, Activity{
				ID:        "shop-check-" + it.ID,
				Type:      "shopping_checked",
				Title:     it.Name,
				Timestamp: *it.CheckedAt,
				Icon:      "✅",
			})
		}
	}

	for _, it := range inv {
		subtitle := "Added to " + it.Location
		if it.Source == "ai_scan" {
			subtitle = "Via AI scan"
		}
		feed = append(feed, Activity{
			ID:        "inv-" + it.ID,
			Type:      "inventory_added",
			Title:     it.Name,
			Subtitle:  &subtitle,
			Timestamp: it.CreatedAt,
			Icon:      "📦",
		})
	}

	sort.SliceStable(feed, func(i, j int) bool {
		return feed[i].Timestamp.After(feed[j].Timestamp)
	})
	if len(feed) > activityLimit {
		feed = feed[:activityLimit]
	}
	return feed
}
