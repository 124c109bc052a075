package inventory

import "time"

// Locations a household item can live in.
const (
	LocationFridge  = "fridge"
	LocationFreezer = "freezer"
	LocationPantry  = "pantry"
)

// ValidLocation reports whether loc is a known storage location.
func ValidLocation(loc string) bool {
	return loc == LocationFridge || loc == LocationFreezer || loc == LocationPantry
}

// Item is one thing a household has on hand.
type Item struct {
	ID              string     `json:"id" db:"id"`
	HouseholdID     string     `json:"household_id" db:"household_id"`
	Name            string     `json:"name" db:"name"`
	Quantity        *float64   `json:"quantity" db:"quantity"`
	Unit            *string    `json:"unit" db:"unit"`
	Location        string     `json:"location" db:"location"`
	ExpiryDate      *string    `json:"expiry_date" db:"expiry_date"`
	Source          string     `json:"source" db:"source"`
	ConfidenceScore *float64   `json:"confidence_score" db:"confidence_score"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at" db:"updated_at"`
}

// Input is the payload for adding an item manually or from a scan.
type Input struct {
	Name       string   `json:"name"`
	Quantity   *float64 `json:"quantity"`
	Unit       *string  `json:"unit"`
	Location   string   `json:"location"`
	ExpiryDate *string  `json:"expiry_date"`
	Source     string   `json:"-"`
	Confidence *float64 `json:"-"`
}

// Patch carries partial updates to an item.
type Patch struct {
	Name       *string  `json:"name"`
	Quantity   *float64 `json:"quantity"`
	Unit       *string  `json:"unit"`
	Location   *string  `json:"location"`
	ExpiryDate *string  `json:"expiry_date"`
}

// ScannedItem is one item a model identified in a storage photo. The user
// confirms scanned items before they are added.
type ScannedItem struct {
	Name               string   `json:"name"`
	Quantity           *float64 `json:"quantity"`
	Unit               *string  `json:"unit"`
	SuggestedLocation  string   `json:"suggested_location"`
	ExpiryEstimateDays *int     `json:"expiry_estimate_days"`
	Confidence         *float64 `json:"confidence"`
}

// Grouped is the per-location view returned by the inventory listing.
type Grouped struct {
	Fridge  []*Item `json:"fridge"`
	Freezer []*Item `json:"freezer"`
	Pantry  []*Item `json:"pantry"`
}

// GroupByLocation splits items into the three storage locations.
func GroupByLocation(items []*Item) Grouped {
	g := Grouped{Fridge: []*Item{}, Freezer: []*Item{}, Pantry: []*Item{}}
	for _, it := range items {
		switch it.Location {
		case LocationFridge:
			g.Fridge = append(g.Fridge, it)
		case LocationFreezer:
			g.Freezer = append(g.Freezer, it)
		case LocationPantry:
			g.Pantry = append(g.Pantry, it)
		}
	}
	return g
}
