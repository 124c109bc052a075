package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"mealprep/internal/mealplan"
	"mealprep/internal/shopping"
)

// GetShoppingList returns the household's active list, items sorted unchecked
// first, then by category and name.
func (h *Handler) GetShoppingList(c *gin.Context) {
	profile := currentProfile(c)

	ctx, cancel := context.WithTimeout(c.Request.Context(), dbTimeout)
	defer cancel()

	list, err := h.Shopping.ActiveWithItems(ctx, profile.HouseholdID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, list)
}

// GenerateShoppingList aggregates the week's planned recipe ingredients into
// the active list. The plan must exist and contain at least one recipe-backed
// entry; custom meals contribute nothing. With deductInventory set, on-hand
// quantities are subtracted first. The whole operation commits atomically.
func (h *Handler) GenerateShoppingList(c *gin.Context) {
	profile := currentProfile(c)

	// The body is optional: an empty request generates for the current week.
	var req shopping.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil && err != io.EOF {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	week := time.Now()
	if req.WeekStart != "" {
		parsed, err := time.Parse("2006-01-02", req.WeekStart)
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
		c.JSON(http.StatusNotFound, gin.H{"error": "no meal plan for this week"})
		return
	}

	hasRecipes, err := h.Shopping.HasRecipeEntries(ctx, plan.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if !hasRecipes {
		c.JSON(http.StatusBadRequest, gin.H{"error": "meal plan has no recipe entries"})
		return
	}

	contributions, err := h.Shopping.RecipeContributions(ctx, plan.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	items := shopping.Aggregate(contributions)
	listName := fmt.Sprintf("Week of %s", weekStart.Format("Jan 2"))

	list, added, err := h.Shopping.Generate(ctx, profile.HouseholdID, plan.ID, listName, items, req.DeductInventory)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, shopping.GenerateResponse{ShoppingList: list, ItemsAdded: added})
}

// AddShoppingItem adds a manual item to the active list, merging into an
// existing item of the same name.
func (h *Handler) AddShoppingItem(c *gin.Context) {
	profile := currentProfile(c)

	var in shopping.ItemInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if in.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), dbTimeout)
	defer cancel()

	item, created, err := h.Shopping.AddItem(ctx, profile.HouseholdID, in)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, item)
}

// UpdateShoppingItem applies a partial update; checking an item records who
// checked it and when.
func (h *Handler) UpdateShoppingItem(c *gin.Context) {
	profile := currentProfile(c)

	var p shopping.ItemPatch
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), dbTimeout)
	defer cancel()

	item, err := h.Shopping.UpdateItem(ctx, profile.HouseholdID, c.Param("id"), profile.ID, p)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if item == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "shopping list item not found"})
		return
	}
	c.JSON(http.StatusOK, item)
}

// DeleteShoppingItem removes an item from the list.
func (h *Handler) DeleteShoppingItem(c *gin.Context) {
	profile := currentProfile(c)

	ctx, cancel := context.WithTimeout(c.Request.Context(), dbTimeout)
	defer cancel()

	if err := h.Shopping.DeleteItem(ctx, profile.HouseholdID, c.Param("id")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

// ClearCheckedItems removes every checked item from the active list.
func (h *Handler) ClearCheckedItems(c *gin.Context) {
	profile := currentProfile(c)

	ctx, cancel := context.WithTimeout(c.Request.Context(), dbTimeout)
	defer cancel()

	removed, err := h.Shopping.ClearChecked(ctx, profile.HouseholdID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"removed": removed})
}
