package api

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"mealprep/internal/importer"
	"mealprep/internal/platform/gemini"
)

// ImportRecipeURL scrapes a recipe page and returns an editable draft. The
// recipe is not saved until the user confirms it through CreateRecipe.
func (h *Handler) ImportRecipeURL(c *gin.Context) {
	profile := currentProfile(c)

	var req struct {
		URL string `json:"url"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	parsed, err := url.ParseRequestURI(req.URL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "a valid http(s) url is required"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), modelTimeout)
	defer cancel()

	draft, raw, err := h.Importer.FromURL(ctx, req.URL)
	if err != nil {
		if errors.Is(err, gemini.ErrNoRecipeFound) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "no recipe found at this url"})
			return
		}
		if errors.Is(err, context.DeadlineExceeded) {
			c.JSON(http.StatusGatewayTimeout, gin.H{"error": "recipe extraction timed out"})
			return
		}
		log.Printf("url import failed for %s: %v", req.URL, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to import recipe from url"})
		return
	}

	confidence := 1.0
	if draft.Confidence != nil {
		confidence = *draft.Confidence
	}
	if err := h.Recipes.LogImport(ctx, profile.HouseholdID, profile.ID, "url", &req.URL, nil, raw, confidence); err != nil {
		log.Printf("failed to log url import: %v", err)
	}

	c.JSON(http.StatusOK, gin.H{"draft": draft, "source_url": req.URL})
}

// ImportRecipePhoto runs OCR extraction on an uploaded recipe photo and
// returns an editable draft.
func (h *Handler) ImportRecipePhoto(c *gin.Context) {
	profile := currentProfile(c)

	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}

	src, err := file.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	defer src.Close()

	imageData, err := io.ReadAll(src)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), modelTimeout)
	defer cancel()

	draft, raw, err := h.Importer.FromImage(ctx, imageData, file.Header.Get("Content-Type"))
	if err != nil {
		switch {
		case errors.Is(err, importer.ErrImageTooLarge), errors.Is(err, importer.ErrUnsupportedImage):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, gemini.ErrNoRecipeFound):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "no recipe found in this photo"})
		case errors.Is(err, context.DeadlineExceeded):
			c.JSON(http.StatusGatewayTimeout, gin.H{"error": "recipe extraction timed out"})
		default:
			log.Printf("photo import failed: %v", err)
			c.JSON(http.StatusBadGateway, gin.H{"error": "failed to extract recipe from photo"})
		}
		return
	}

	confidence := 1.0
	if draft.Confidence != nil {
		confidence = *draft.Confidence
	}
	if err := h.Recipes.LogImport(ctx, profile.HouseholdID, profile.ID, "photo", nil, nil, raw, confidence); err != nil {
		log.Printf("failed to log photo import: %v", err)
	}

	c.JSON(http.StatusOK, gin.H{"draft": draft})
}
