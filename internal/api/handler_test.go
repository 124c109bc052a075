package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mealprep/internal/household"
	"mealprep/internal/inventory"
	"mealprep/internal/mealplan"
	"mealprep/internal/platform/unsplash"
	"mealprep/internal/recipe"
	"mealprep/internal/shopping"
	"mealprep/internal/suggest"
)

var testSecret = []byte("test-secret")

func testToken(t *testing.T, userID string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  userID,
		"name": "Alex",
		"exp":  time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString(testSecret)
	require.NoError(t, err)
	return signed
}

// mockHouseholds returns a fixed profile for any user.
type mockHouseholds struct {
	profile  *household.Profile
	activity []household.Activity
}

func (m *mockHouseholds) EnsureProfile(ctx context.Context, userID, displayName string, email *string) (*household.Profile, error) {
	return m.profile, nil
}
func (m *mockHouseholds) Get(ctx context.Context, id string) (*household.Household, error) {
	return &household.Household{ID: id, Name: "Test Household", CreatedBy: m.profile.ID}, nil
}
func (m *mockHouseholds) UpdateProfile(ctx context.Context, userID string, p household.ProfilePatch) (*household.Profile, error) {
	return m.profile, nil
}
func (m *mockHouseholds) Rename(ctx context.Context, householdID, userID, name string) (*household.Household, error) {
	return &household.Household{ID: householdID, Name: name, CreatedBy: userID}, nil
}
func (m *mockHouseholds) Invite(ctx context.Context, householdID, userID, email string) (*household.Invitation, error) {
	return &household.Invitation{HouseholdID: householdID, Email: email}, nil
}
func (m *mockHouseholds) PendingInvitations(ctx context.Context, householdID string) ([]*household.Invitation, error) {
	return nil, nil
}
func (m *mockHouseholds) Accept(ctx context.Context, token, userID string) (*household.Household, error) {
	return nil, nil
}
func (m *mockHouseholds) Decline(ctx context.Context, token string) (bool, error) {
	return false, nil
}
func (m *mockHouseholds) Leave(ctx context.Context, userID string) (*household.Profile, error) {
	return m.profile, nil
}
func (m *mockHouseholds) Activity(ctx context.Context, householdID string) ([]household.Activity, error) {
	return m.activity, nil
}

type mockRecipes struct {
	recipes        map[string]*recipe.Recipe
	imageHousehold string
	imageRecipeID  string
	imageURL       string
}

func (m *mockRecipes) List(ctx context.Context, householdID string, f recipe.Filters) ([]*recipe.Recipe, int, error) {
	return nil, 0, nil
}
func (m *mockRecipes) Get(ctx context.Context, id string) (*recipe.Recipe, error) {
	return m.recipes[id], nil
}
func (m *mockRecipes) Create(ctx context.Context, householdID, userID string, in recipe.Input) (*recipe.Recipe, error) {
	return &recipe.Recipe{ID: "new", HouseholdID: householdID, Title: in.Title}, nil
}
func (m *mockRecipes) Update(ctx context.Context, id string, in recipe.Input) (*recipe.Recipe, error) {
	return m.recipes[id], nil
}
func (m *mockRecipes) ApplyPatch(ctx context.Context, id string, p recipe.Patch) (*recipe.Recipe, error) {
	return m.recipes[id], nil
}
func (m *mockRecipes) Delete(ctx context.Context, id string) error { return nil }
func (m *mockRecipes) SetImageURL(ctx context.Context, householdID, id, imageURL string) error {
	m.imageHousehold = householdID
	m.imageRecipeID = id
	m.imageURL = imageURL
	return nil
}
func (m *mockRecipes) LogImport(ctx context.Context, householdID, userID, importType string, sourceURL, imageURL *string, rawResponse []byte, confidence float64) error {
	return nil
}

type mockMealPlans struct {
	plan            *mealplan.MealPlan
	entry           *mealplan.Entry
	updateHousehold string
	updateCalled    bool
	deleteHousehold string
	deletedID       string
}

func (m *mockMealPlans) FindForWeek(ctx context.Context, householdID string, weekStart time.Time) (*mealplan.MealPlan, error) {
	return m.plan, nil
}
func (m *mockMealPlans) GetOrCreateForWeek(ctx context.Context, householdID string, weekStart time.Time) (*mealplan.MealPlan, error) {
	return m.plan, nil
}
func (m *mockMealPlans) Entries(ctx context.Context, mealPlanID string) ([]*mealplan.Entry, error) {
	return nil, nil
}
func (m *mockMealPlans) CreateEntry(ctx context.Context, householdID string, in mealplan.EntryInput) (*mealplan.Entry, error) {
	return &mealplan.Entry{ID: "entry-1", MealType: in.MealType}, nil
}
func (m *mockMealPlans) UpdateEntry(ctx context.Context, householdID, id string, p mealplan.EntryPatch) (*mealplan.Entry, error) {
	m.updateHousehold = householdID
	m.updateCalled = true
	return m.entry, nil
}
func (m *mockMealPlans) DeleteEntry(ctx context.Context, householdID, id string) error {
	m.deleteHousehold = householdID
	m.deletedID = id
	return nil
}

type mockShopping struct {
	hasRecipes      bool
	contributions   []shopping.Contribution
	generated       []shopping.AggregatedItem
	deducted        bool
	item            *shopping.Item
	updateHousehold string
	deleteHousehold string
	deletedID       string
}

func (m *mockShopping) ActiveWithItems(ctx context.Context, householdID string) (*shopping.List, error) {
	return &shopping.List{ID: "list-1", HouseholdID: householdID, Items: []*shopping.Item{}}, nil
}
func (m *mockShopping) AddItem(ctx context.Context, householdID string, in shopping.ItemInput) (*shopping.Item, bool, error) {
	return &shopping.Item{ID: "item-1", Name: in.Name}, true, nil
}
func (m *mockShopping) UpdateItem(ctx context.Context, householdID, id, userID string, p shopping.ItemPatch) (*shopping.Item, error) {
	m.updateHousehold = householdID
	return m.item, nil
}
func (m *mockShopping) DeleteItem(ctx context.Context, householdID, id string) error {
	m.deleteHousehold = householdID
	m.deletedID = id
	return nil
}
func (m *mockShopping) ClearChecked(ctx context.Context, householdID string) (int64, error) {
	return 0, nil
}
func (m *mockShopping) RecipeContributions(ctx context.Context, mealPlanID string) ([]shopping.Contribution, error) {
	return m.contributions, nil
}
func (m *mockShopping) HasRecipeEntries(ctx context.Context, mealPlanID string) (bool, error) {
	return m.hasRecipes, nil
}
func (m *mockShopping) Generate(ctx context.Context, householdID, mealPlanID, listName string, items []shopping.AggregatedItem, deductInventory bool) (*shopping.List, int, error) {
	m.generated = items
	m.deducted = deductInventory
	return &shopping.List{ID: "list-1", HouseholdID: householdID, Name: listName}, len(items), nil
}

type mockInventory struct {
	items           []*inventory.Item
	updateHousehold string
	deleteHousehold string
	deletedID       string
}

func (m *mockInventory) List(ctx context.Context, householdID, location string) ([]*inventory.Item, error) {
	return m.items, nil
}
func (m *mockInventory) Upsert(ctx context.Context, householdID string, in inventory.Input) (*inventory.Item, bool, error) {
	return &inventory.Item{ID: "inv-1", Name: in.Name, Location: in.Location}, true, nil
}
func (m *mockInventory) Update(ctx context.Context, householdID, id string, p inventory.Patch) (*inventory.Item, error) {
	m.updateHousehold = householdID
	return nil, nil
}
func (m *mockInventory) Delete(ctx context.Context, householdID, id string) error {
	m.deleteHousehold = householdID
	m.deletedID = id
	return nil
}

type mockModel struct{}

func (m *mockModel) ScanStorageImage(ctx context.Context, imageData []byte, format string) ([]inventory.ScannedItem, error) {
	return []inventory.ScannedItem{{Name: "Milk", SuggestedLocation: "fridge"}}, nil
}
func (m *mockModel) SuggestMeals(ctx context.Context, contextBlock string) ([]suggest.Suggestion, error) {
	return []suggest.Suggestion{{Title: "Omelette", MealType: "breakfast"}}, nil
}

type mockImporter struct {
	draft *recipe.Draft
}

func (m *mockImporter) FromURL(ctx context.Context, url string) (*recipe.Draft, []byte, error) {
	return m.draft, []byte("{}"), nil
}
func (m *mockImporter) FromImage(ctx context.Context, data []byte, contentType string) (*recipe.Draft, []byte, error) {
	return m.draft, []byte("{}"), nil
}

type mockImages struct {
	url string
	err error
}

func (m *mockImages) SearchFood(ctx context.Context, query string) (string, error) {
	return m.url, m.err
}

type fixture struct {
	router     *gin.Engine
	shopping   *mockShopping
	mealPlans  *mockMealPlans
	recipes    *mockRecipes
	inventory  *mockInventory
	households *mockHouseholds
	images     *mockImages
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	f := &fixture{
		shopping:  &mockShopping{},
		mealPlans: &mockMealPlans{},
		recipes:   &mockRecipes{recipes: map[string]*recipe.Recipe{}},
		inventory: &mockInventory{},
		households: &mockHouseholds{profile: &household.Profile{
			ID:          "user-1",
			HouseholdID: "hh-1",
			DisplayName: "Alex",
		}},
		images: &mockImages{url: "https://images.example/dish.jpg"},
	}

	h := NewHandler(f.recipes, f.mealPlans, f.shopping, f.inventory, f.households,
		&mockImporter{draft: &recipe.Draft{Title: "Imported"}}, &mockModel{}, f.images, testSecret)

	f.router = gin.New()
	h.RegisterRoutes(f.router)
	return f
}

func (f *fixture) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Authorization", "Bearer "+testToken(t, "user-1"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func TestAuthRejectsMissingToken(t *testing.T) {
	f := newFixture(t)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/recipes", nil)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthRejectsBadSignature(t *testing.T) {
	f := newFixture(t)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "user-1"})
	signed, err := token.SignedString([]byte("wrong-secret"))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/recipes", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGenerateShoppingListWithoutPlan(t *testing.T) {
	f := newFixture(t)
	f.mealPlans.plan = nil

	w := f.do(t, http.MethodPost, "/api/v1/shopping-list/generate",
		shopping.GenerateRequest{WeekStart: "2026-08-24"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "no meal plan")
}

func TestGenerateShoppingListWithoutRecipeEntries(t *testing.T) {
	f := newFixture(t)
	f.mealPlans.plan = &mealplan.MealPlan{ID: "plan-1", HouseholdID: "hh-1"}
	f.shopping.hasRecipes = false

	w := f.do(t, http.MethodPost, "/api/v1/shopping-list/generate",
		shopping.GenerateRequest{WeekStart: "2026-08-24"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "no recipe entries")
}

func TestGenerateShoppingList(t *testing.T) {
	f := newFixture(t)
	f.mealPlans.plan = &mealplan.MealPlan{ID: "plan-1", HouseholdID: "hh-1"}
	f.shopping.hasRecipes = true
	qty := func(v float64) *float64 { return &v }
	unit := "g"
	f.shopping.contributions = []shopping.Contribution{
		{RecipeID: "r1", Multiplier: 1, Ingredients: []shopping.SourceIngredient{
			{Name: "Pasta", Quantity: qty(200), Unit: &unit},
		}},
		{RecipeID: "r2", Multiplier: 2, Ingredients: []shopping.SourceIngredient{
			{Name: "pasta", Quantity: qty(100), Unit: &unit},
		}},
	}

	w := f.do(t, http.MethodPost, "/api/v1/shopping-list/generate",
		shopping.GenerateRequest{WeekStart: "2026-08-24", DeductInventory: true})
	require.Equal(t, http.StatusOK, w.Code)

	var resp shopping.GenerateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.ItemsAdded)
	assert.Equal(t, "Week of Aug 24", resp.ShoppingList.Name)

	require.Len(t, f.shopping.generated, 1)
	assert.Equal(t, 400.0, f.shopping.generated[0].Quantity)
	assert.ElementsMatch(t, []string{"r1", "r2"}, f.shopping.generated[0].SourceRecipeIDs)
	assert.True(t, f.shopping.deducted)
}

func TestGenerateShoppingListRejectsBadDate(t *testing.T) {
	f := newFixture(t)
	w := f.do(t, http.MethodPost, "/api/v1/shopping-list/generate",
		shopping.GenerateRequest{WeekStart: "24-08-2026"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetRecipeOutsideHousehold(t *testing.T) {
	f := newFixture(t)
	f.recipes.recipes["r1"] = &recipe.Recipe{ID: "r1", HouseholdID: "other-household"}

	w := f.do(t, http.MethodGet, "/api/v1/recipes/r1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateRecipeRequiresTitle(t *testing.T) {
	f := newFixture(t)
	w := f.do(t, http.MethodPost, "/api/v1/recipes", recipe.Input{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateMealEntryValidation(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/api/v1/meal-plans/entries",
		mealplan.EntryInput{Date: "2026-08-24", MealType: "brunch"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(t, http.MethodPost, "/api/v1/meal-plans/entries",
		mealplan.EntryInput{Date: "2026-08-24", MealType: "dinner"})
	assert.Equal(t, http.StatusBadRequest, w.Code, "needs a recipe or a custom meal name")
}

func TestCreateMealEntryCustomMeal(t *testing.T) {
	f := newFixture(t)
	name := "Leftovers"
	w := f.do(t, http.MethodPost, "/api/v1/meal-plans/entries",
		mealplan.EntryInput{Date: "2026-08-24", MealType: "dinner", CustomMealName: &name})
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestAddShoppingItemRequiresName(t *testing.T) {
	f := newFixture(t)
	w := f.do(t, http.MethodPost, "/api/v1/shopping-list/items", shopping.ItemInput{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAddInventoryItemValidatesLocation(t *testing.T) {
	f := newFixture(t)
	w := f.do(t, http.MethodPost, "/api/v1/inventory",
		inventory.Input{Name: "Milk", Location: "garage"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestImportRecipeURLRejectsBadURL(t *testing.T) {
	f := newFixture(t)
	w := f.do(t, http.MethodPost, "/api/v1/recipes/import/url",
		map[string]string{"url": "not-a-url"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestImportRecipeURL(t *testing.T) {
	f := newFixture(t)
	w := f.do(t, http.MethodPost, "/api/v1/recipes/import/url",
		map[string]string{"url": "https://example.com/carbonara"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Imported")
}

func TestGetSuggestions(t *testing.T) {
	f := newFixture(t)
	f.inventory.items = []*inventory.Item{{ID: "inv-1", Name: "Eggs", Location: "fridge"}}

	w := f.do(t, http.MethodGet, "/api/v1/suggestions", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Omelette")
}

func TestGetSuggestionsRequiresInventory(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodGet, "/api/v1/suggestions", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "no inventory items")
}

func TestUpdateShoppingItemScopedToHousehold(t *testing.T) {
	f := newFixture(t)
	checked := true
	f.shopping.item = &shopping.Item{ID: "item-1", Name: "Milk", IsChecked: true}

	w := f.do(t, http.MethodPatch, "/api/v1/shopping-list/items/item-1",
		shopping.ItemPatch{IsChecked: &checked})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "hh-1", f.shopping.updateHousehold)
}

func TestUpdateShoppingItemOutsideHousehold(t *testing.T) {
	f := newFixture(t)
	f.shopping.item = nil // store finds nothing in the caller's household

	w := f.do(t, http.MethodPatch, "/api/v1/shopping-list/items/foreign-item",
		shopping.ItemPatch{})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteShoppingItemScopedToHousehold(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodDelete, "/api/v1/shopping-list/items/item-1", nil)
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "hh-1", f.shopping.deleteHousehold)
	assert.Equal(t, "item-1", f.shopping.deletedID)
}

func TestUpdateMealEntryScopedToHousehold(t *testing.T) {
	f := newFixture(t)
	f.mealPlans.entry = &mealplan.Entry{ID: "entry-1", MealType: "dinner"}
	mt := "dinner"

	w := f.do(t, http.MethodPatch, "/api/v1/meal-plans/entries/entry-1",
		mealplan.EntryPatch{MealType: &mt})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "hh-1", f.mealPlans.updateHousehold)
}

func TestUpdateMealEntryRejectsForeignRecipe(t *testing.T) {
	f := newFixture(t)
	f.recipes.recipes["r-foreign"] = &recipe.Recipe{ID: "r-foreign", HouseholdID: "other-household"}
	f.mealPlans.entry = &mealplan.Entry{ID: "entry-1"}
	rid := "r-foreign"

	w := f.do(t, http.MethodPatch, "/api/v1/meal-plans/entries/entry-1",
		mealplan.EntryPatch{RecipeID: &rid})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.False(t, f.mealPlans.updateCalled, "foreign recipe must never reach the store")
}

func TestDeleteMealEntryScopedToHousehold(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodDelete, "/api/v1/meal-plans/entries/entry-1", nil)
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "hh-1", f.mealPlans.deleteHousehold)
	assert.Equal(t, "entry-1", f.mealPlans.deletedID)
}

func TestUpdateInventoryItemScopedToHousehold(t *testing.T) {
	f := newFixture(t)
	qty := 2.0

	w := f.do(t, http.MethodPatch, "/api/v1/inventory/inv-1", inventory.Patch{Quantity: &qty})
	assert.Equal(t, http.StatusNotFound, w.Code) // mock returns nil item
	assert.Equal(t, "hh-1", f.inventory.updateHousehold)
}

func TestDeleteInventoryItemScopedToHousehold(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodDelete, "/api/v1/inventory/inv-1", nil)
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "hh-1", f.inventory.deleteHousehold)
	assert.Equal(t, "inv-1", f.inventory.deletedID)
}

func TestHouseholdActivity(t *testing.T) {
	f := newFixture(t)
	f.households.activity = []household.Activity{
		{ID: "recipe-r1", Type: "recipe_created", Title: "Carbonara", Icon: "📖"},
	}

	w := f.do(t, http.MethodGet, "/api/v1/household/activity", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "recipe_created")
	assert.Contains(t, w.Body.String(), "Carbonara")
}

func TestHouseholdActivityEmpty(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodGet, "/api/v1/household/activity", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"activities":[]`)
}

func TestGenerateRecipeImage(t *testing.T) {
	f := newFixture(t)
	rid := "r1"

	w := f.do(t, http.MethodPost, "/api/v1/recipes/generate-image",
		generateImageRequest{RecipeID: &rid, Title: "Carbonara"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "https://images.example/dish.jpg")
	assert.Equal(t, "hh-1", f.recipes.imageHousehold)
	assert.Equal(t, "r1", f.recipes.imageRecipeID)
	assert.Equal(t, "https://images.example/dish.jpg", f.recipes.imageURL)
}

func TestGenerateRecipeImageRequiresTitle(t *testing.T) {
	f := newFixture(t)
	w := f.do(t, http.MethodPost, "/api/v1/recipes/generate-image", generateImageRequest{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGenerateRecipeImageNoMatch(t *testing.T) {
	f := newFixture(t)
	f.images.url = ""
	f.images.err = unsplash.ErrNoImage

	w := f.do(t, http.MethodPost, "/api/v1/recipes/generate-image",
		generateImageRequest{Title: "Zxqwv Stew"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGenerateRecipeImageNotConfigured(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewHandler(&mockRecipes{recipes: map[string]*recipe.Recipe{}}, &mockMealPlans{},
		&mockShopping{}, &mockInventory{},
		&mockHouseholds{profile: &household.Profile{ID: "user-1", HouseholdID: "hh-1"}},
		&mockImporter{}, &mockModel{}, nil, testSecret)
	router := gin.New()
	h.RegisterRoutes(router)

	body := bytes.NewBufferString(`{"title":"Carbonara"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/recipes/generate-image", body)
	req.Header.Set("Authorization", "Bearer "+testToken(t, "user-1"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
