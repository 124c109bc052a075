package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"mealprep/internal/mealplan"
)

// GetMealPlan returns the household's plan for the week containing the
// weekStart query date (defaulting to the current week). Reading never
// creates a plan.
func (h *Handler) GetMealPlan(c *gin.Context) {
	profile := currentProfile(c)

	week := time.Now()
	if raw := c.Query("weekStart"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "weekStart must be YYYY-MM-DD"})
			return
		}
		week = parsed
	}
	weekStart := mealplan.WeekStart(week)

	ctx, cancel := context.WithTimeout(c.Request.Context(), dbTimeout)
	defer cancel()

	plan, err := h.MealPlans.FindForWeek(ctx, profile.HouseholdID, weekStart)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if plan == nil {
		c.JSON(http.StatusOK, gin.H{
			"meal_plan":  nil,
			"week_start": weekStart.Format("2006-01-02"),
			"entries":    []*mealplan.Entry{},
		})
		return
	}

	entries, err := h.MealPlans.Entries(ctx, plan.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"meal_plan":  plan,
		"week_start": weekStart.Format("2006-01-02"),
		"entries":    entries,
	})
}

// CreateMealEntry adds a meal to a day, creating the weekly plan on demand.
// An entry is either a household recipe or a free-text custom meal.
func (h *Handler) CreateMealEntry(c *gin.Context) {
	profile := currentProfile(c)

	var in mealplan.EntryInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !mealplan.ValidMealType(in.MealType) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "mealType must be breakfast, lunch, dinner or snack"})
		return
	}
	if in.RecipeID == nil && (in.CustomMealName == nil || *in.CustomMealName == "") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "either recipeId or customMealName is required"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), dbTimeout)
	defer cancel()

	if in.RecipeID != nil {
		r, err := h.Recipes.Get(ctx, *in.RecipeID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if r == nil || r.HouseholdID != profile.HouseholdID {
			c.JSON(http.StatusNotFound, gin.H{"error": "recipe not found"})
			return
		}
	}

	entry, err := h.MealPlans.CreateEntry(ctx, profile.HouseholdID, in)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, entry)
}

// UpdateMealEntry applies a partial update to a planned meal. A new recipe id
// must point at one of the household's own recipes.
func (h *Handler) UpdateMealEntry(c *gin.Context) {
	profile := currentProfile(c)

	var p mealplan.EntryPatch
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if p.MealType != nil && !mealplan.ValidMealType(*p.MealType) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "mealType must be breakfast, lunch, dinner or snack"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), dbTimeout)
	defer cancel()

	if p.RecipeID != nil {
		r, err := h.Recipes.Get(ctx, *p.RecipeID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if r == nil || r.HouseholdID != profile.HouseholdID {
			c.JSON(http.StatusNotFound, gin.H{"error": "recipe not found"})
			return
		}
	}

	entry, err := h.MealPlans.UpdateEntry(ctx, profile.HouseholdID, c.Param("id"), p)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if entry == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "meal entry not found"})
		return
	}
	c.JSON(http.StatusOK, entry)
}

// DeleteMealEntry removes a planned meal.
func (h *Handler) DeleteMealEntry(c *gin.Context) {
	profile := currentProfile(c)

	ctx, cancel := context.WithTimeout(c.Request.Context(), dbTimeout)
	defer cancel()

	if err := h.MealPlans.DeleteEntry(ctx, profile.HouseholdID, c.Param("id")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}
