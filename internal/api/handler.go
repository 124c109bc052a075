package api

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"mealprep/internal/household"
	"mealprep/internal/inventory"
	"mealprep/internal/mealplan"
	"mealprep/internal/recipe"
	"mealprep/internal/shopping"
	"mealprep/internal/suggest"
)

// Per-request timeouts: database work is quick, model calls are not.
const (
	dbTimeout    = 5 * time.Second
	modelTimeout = 45 * time.Second
)

// RecipeStore defines the recipe data operations the API needs.
type RecipeStore interface {
	List(ctx context.Context, householdID string, f recipe.Filters) ([]*recipe.Recipe, int, error)
	Get(ctx context.Context, id string) (*recipe.Recipe, error)
	Create(ctx context.Context, householdID, userID string, in recipe.Input) (*recipe.Recipe, error)
	Update(ctx context.Context, id string, in recipe.Input) (*recipe.Recipe, error)
	ApplyPatch(ctx context.Context, id string, p recipe.Patch) (*recipe.Recipe, error)
	Delete(ctx context.Context, id string) error
	SetImageURL(ctx context.Context, householdID, id, imageURL string) error
	LogImport(ctx context.Context, householdID, userID, importType string, sourceURL, imageURL *string, rawResponse []byte, confidence float64) error
}

// MealPlanStore defines the meal plan data operations the API needs.
type MealPlanStore interface {
	FindForWeek(ctx context.Context, householdID string, weekStart time.Time) (*mealplan.MealPlan, error)
	GetOrCreateForWeek(ctx context.Context, householdID string, weekStart time.Time) (*mealplan.MealPlan, error)
	Entries(ctx context.Context, mealPlanID string) ([]*mealplan.Entry, error)
	CreateEntry(ctx context.Context, householdID string, in mealplan.EntryInput) (*mealplan.Entry, error)
	UpdateEntry(ctx context.Context, householdID, id string, p mealplan.EntryPatch) (*mealplan.Entry, error)
	DeleteEntry(ctx context.Context, householdID, id string) error
}

// ShoppingStore defines the shopping list data operations the API needs.
type ShoppingStore interface {
	ActiveWithItems(ctx context.Context, householdID string) (*shopping.List, error)
	AddItem(ctx context.Context, householdID string, in shopping.ItemInput) (*shopping.Item, bool, error)
	UpdateItem(ctx context.Context, householdID, id, userID string, p shopping.ItemPatch) (*shopping.Item, error)
	DeleteItem(ctx context.Context, householdID, id string) error
	ClearChecked(ctx context.Context, householdID string) (int64, error)
	RecipeContributions(ctx context.Context, mealPlanID string) ([]shopping.Contribution, error)
	HasRecipeEntries(ctx context.Context, mealPlanID string) (bool, error)
	Generate(ctx context.Context, householdID, mealPlanID, listName string, items []shopping.AggregatedItem, deductInventory bool) (*shopping.List, int, error)
}

// InventoryStore defines the inventory data operations the API needs.
type InventoryStore interface {
	List(ctx context.Context, householdID, location string) ([]*inventory.Item, error)
	Upsert(ctx context.Context, householdID string, in inventory.Input) (*inventory.Item, bool, error)
	Update(ctx context.Context, householdID, id string, p inventory.Patch) (*inventory.Item, error)
	Delete(ctx context.Context, householdID, id string) error
}

// HouseholdStore defines the household and profile operations the API needs.
type HouseholdStore interface {
	EnsureProfile(ctx context.Context, userID, displayName string, email *string) (*household.Profile, error)
	Get(ctx context.Context, id string) (*household.Household, error)
	UpdateProfile(ctx context.Context, userID string, p household.ProfilePatch) (*household.Profile, error)
	Rename(ctx context.Context, householdID, userID, name string) (*household.Household, error)
	Invite(ctx context.Context, householdID, userID, email string) (*household.Invitation, error)
	PendingInvitations(ctx context.Context, householdID string) ([]*household.Invitation, error)
	Accept(ctx context.Context, token, userID string) (*household.Household, error)
	Decline(ctx context.Context, token string) (bool, error)
	Leave(ctx context.Context, userID string) (*household.Profile, error)
	Activity(ctx context.Context, householdID string) ([]household.Activity, error)
}

// RecipeImporter turns URLs and photos into recipe drafts.
type RecipeImporter interface {
	FromURL(ctx context.Context, url string) (*recipe.Draft, []byte, error)
	FromImage(ctx context.Context, data []byte, contentType string) (*recipe.Draft, []byte, error)
}

// ModelClient defines the vision and suggestion calls the API makes directly.
type ModelClient interface {
	ScanStorageImage(ctx context.Context, imageData []byte, format string) ([]inventory.ScannedItem, error)
	SuggestMeals(ctx context.Context, contextBlock string) ([]suggest.Suggestion, error)
}

// ImageSearcher finds a stock photo URL for a dish name.
type ImageSearcher interface {
	SearchFood(ctx context.Context, query string) (string, error)
}

// Handler handles HTTP requests.
type Handler struct {
	Recipes    RecipeStore
	MealPlans  MealPlanStore
	Shopping   ShoppingStore
	Inventory  InventoryStore
	Households HouseholdStore
	Importer   RecipeImporter
	Model      ModelClient
	Images     ImageSearcher // nil when no image search key is configured
	JWTSecret  []byte
}

// NewHandler creates a new Handler.
func NewHandler(recipes RecipeStore, mealPlans MealPlanStore, shoppingStore ShoppingStore,
	inventoryStore InventoryStore, households HouseholdStore, imp RecipeImporter,
	model ModelClient, images ImageSearcher, jwtSecret []byte) *Handler {
	return &Handler{
		Recipes:    recipes,
		MealPlans:  mealPlans,
		Shopping:   shoppingStore,
		Inventory:  inventoryStore,
		Households: households,
		Importer:   imp,
		Model:      model,
		Images:     images,
		JWTSecret:  jwtSecret,
	}
}

// RegisterRoutes mounts every endpoint under /api/v1 behind authentication.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	v1 := r.Group("/api/v1")
	v1.Use(h.Auth())

	v1.GET("/recipes", h.ListRecipes)
	v1.POST("/recipes", h.CreateRecipe)
	v1.GET("/recipes/:id", h.GetRecipe)
	v1.PUT("/recipes/:id", h.UpdateRecipe)
	v1.PATCH("/recipes/:id", h.PatchRecipe)
	v1.DELETE("/recipes/:id", h.DeleteRecipe)

	v1.POST("/recipes/import/url", h.ImportRecipeURL)
	v1.POST("/recipes/import/photo", h.ImportRecipePhoto)
	v1.POST("/recipes/generate-image", h.GenerateRecipeImage)

	v1.GET("/meal-plans", h.GetMealPlan)
	v1.POST("/meal-plans/entries", h.CreateMealEntry)
	v1.PATCH("/meal-plans/entries/:id", h.UpdateMealEntry)
	v1.DELETE("/meal-plans/entries/:id", h.DeleteMealEntry)

	v1.GET("/shopping-list", h.GetShoppingList)
	v1.POST("/shopping-list/generate", h.GenerateShoppingList)
	v1.POST("/shopping-list/items", h.AddShoppingItem)
	v1.PATCH("/shopping-list/items/:id", h.UpdateShoppingItem)
	v1.DELETE("/shopping-list/items/:id", h.DeleteShoppingItem)
	v1.POST("/shopping-list/clear-checked", h.ClearCheckedItems)

	v1.GET("/inventory", h.ListInventory)
	v1.POST("/inventory", h.AddInventoryItem)
	v1.PATCH("/inventory/:id", h.UpdateInventoryItem)
	v1.DELETE("/inventory/:id", h.DeleteInventoryItem)
	v1.POST("/inventory/scan", h.ScanInventory)

	v1.GET("/household", h.GetHousehold)
	v1.PATCH("/household", h.RenameHousehold)
	v1.GET("/profile", h.GetProfile)
	v1.PATCH("/profile", h.UpdateProfile)
	v1.POST("/household/invitations", h.CreateInvitation)
	v1.GET("/household/invitations", h.ListInvitations)
	v1.POST("/household/invitations/:token/accept", h.AcceptInvitation)
	v1.POST("/household/invitations/:token/decline", h.DeclineInvitation)
	v1.POST("/household/leave", h.LeaveHousehold)
	v1.GET("/household/activity", h.HouseholdActivity)

	v1.GET("/suggestions", h.GetSuggestions)
}
