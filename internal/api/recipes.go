package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"mealprep/internal/recipe"
)

// ListRecipes returns the household's recipes with search, filter and
// pagination.
func (h *Handler) ListRecipes(c *gin.Context) {
	profile := currentProfile(c)

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	filters := recipe.Filters{
		Search:   c.Query("search"),
		MealType: c.Query("mealType"),
		Favorite: c.Query("favorite") == "true",
		Page:     page,
		Limit:    limit,
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), dbTimeout)
	defer cancel()

	recipes, total, err := h.Recipes.List(ctx, profile.HouseholdID, filters)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"recipes": recipes, "total": total, "page": filters.Page})
}

// GetRecipe returns one recipe with ingredients and steps.
func (h *Handler) GetRecipe(c *gin.Context) {
	profile := currentProfile(c)

	ctx, cancel := context.WithTimeout(c.Request.Context(), dbTimeout)
	defer cancel()

	r, err := h.Recipes.Get(ctx, c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if r == nil || r.HouseholdID != profile.HouseholdID {
		c.JSON(http.StatusNotFound, gin.H{"error": "recipe not found"})
		return
	}
	c.JSON(http.StatusOK, r)
}

// CreateRecipe saves a new recipe with its ingredients and steps.
func (h *Handler) CreateRecipe(c *gin.Context) {
	profile := currentProfile(c)

	var in recipe.Input
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if in.Title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title is required"})
		return
	}
	if in.Servings <= 0 {
		in.Servings = 4
	}
	if in.SourceType == "" {
		in.SourceType = "manual"
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), dbTimeout)
	defer cancel()

	r, err := h.Recipes.Create(ctx, profile.HouseholdID, profile.ID, in)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, r)
}

// UpdateRecipe replaces a recipe's fields, ingredients and steps.
func (h *Handler) UpdateRecipe(c *gin.Context) {
	profile := currentProfile(c)

	var in recipe.Input
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), dbTimeout)
	defer cancel()

	if ok := h.ownsRecipe(ctx, c, profile.HouseholdID); !ok {
		return
	}

	r, err := h.Recipes.Update(ctx, c.Param("id"), in)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if r == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "recipe not found"})
		return
	}
	c.JSON(http.StatusOK, r)
}

// PatchRecipe applies partial updates: favorite, tags, meal types, cooked.
func (h *Handler) PatchRecipe(c *gin.Context) {
	profile := currentProfile(c)

	var p recipe.Patch
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), dbTimeout)
	defer cancel()

	if ok := h.ownsRecipe(ctx, c, profile.HouseholdID); !ok {
		return
	}

	r, err := h.Recipes.ApplyPatch(ctx, c.Param("id"), p)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if r == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "recipe not found"})
		return
	}
	c.JSON(http.StatusOK, r)
}

// DeleteRecipe removes a recipe. Planned meals referencing it keep their slot
// with the recipe cleared.
func (h *Handler) DeleteRecipe(c *gin.Context) {
	profile := currentProfile(c)

	ctx, cancel := context.WithTimeout(c.Request.Context(), dbTimeout)
	defer cancel()

	if ok := h.ownsRecipe(ctx, c, profile.HouseholdID); !ok {
		return
	}

	if err := h.Recipes.Delete(ctx, c.Param("id")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

// ownsRecipe writes the error response and returns false when the recipe does
// not exist in the caller's household.
func (h *Handler) ownsRecipe(ctx context.Context, c *gin.Context, householdID string) bool {
	r, err := h.Recipes.Get(ctx, c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return false
	}
	if r == nil || r.HouseholdID != householdID {
		c.JSON(http.StatusNotFound, gin.H{"error": "recipe not found"})
		return false
	}
	return true
}
