package api

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"mealprep/internal/platform/unsplash"
)

type generateImageRequest struct {
	RecipeID *string `json:"recipeId"`
	Title    string  `json:"title"`
}

// GenerateRecipeImage finds a stock photo for a dish and, when a recipe id is
// given, saves it as that recipe's image. The save is best effort; the URL is
// returned either way.
func (h *Handler) GenerateRecipeImage(c *gin.Context) {
	profile := currentProfile(c)

	if h.Images == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "image search is not configured"})
		return
	}

	var req generateImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title is required"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), modelTimeout)
	defer cancel()

	imageURL, err := h.Images.SearchFood(ctx, req.Title)
	if err != nil {
		if errors.Is(err, unsplash.ErrNoImage) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no suitable image found"})
			return
		}
		log.Printf("image search failed: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to search for an image"})
		return
	}

	if req.RecipeID != nil {
		if err := h.Recipes.SetImageURL(ctx, profile.HouseholdID, *req.RecipeID, imageURL); err != nil {
			log.Printf("failed to save recipe image: %v", err)
		}
	}
	c.JSON(http.StatusOK, gin.H{"imageUrl": imageURL})
}
