package api

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"mealprep/internal/recipe"
	"mealprep/internal/suggest"
)

// GetSuggestions asks the model for meal ideas based on what the household
// has on hand and its own recipes.
func (h *Handler) GetSuggestions(c *gin.Context) {
	profile := currentProfile(c)

	ctx, cancel := context.WithTimeout(c.Request.Context(), modelTimeout)
	defer cancel()

	items, err := h.Inventory.List(ctx, profile.HouseholdID, "")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if len(items) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no inventory items found, add items to get suggestions"})
		return
	}

	recipes, _, err := h.Recipes.List(ctx, profile.HouseholdID, recipe.Filters{Limit: 25})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	suggestions, err := h.Model.SuggestMeals(ctx, suggest.BuildContext(items, recipes))
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			c.JSON(http.StatusGatewayTimeout, gin.H{"error": "suggestion generation timed out"})
			return
		}
		log.Printf("suggestion generation failed: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to generate suggestions"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"suggestions": suggestions})
}
