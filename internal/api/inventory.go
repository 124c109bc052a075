package api

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"mealprep/internal/inventory"
)

// ListInventory returns the household's items grouped by storage location.
// A location query narrows the result to one location.
func (h *Handler) ListInventory(c *gin.Context) {
	profile := currentProfile(c)

	location := c.Query("location")
	if location != "" && !inventory.ValidLocation(location) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "location must be fridge, freezer or pantry"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), dbTimeout)
	defer cancel()

	items, err := h.Inventory.List(ctx, profile.HouseholdID, location)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if location != "" {
		c.JSON(http.StatusOK, gin.H{"items": items})
		return
	}
	c.JSON(http.StatusOK, inventory.GroupByLocation(items))
}

// AddInventoryItem adds an item, merging into an existing item with the same
// name in the same location by adding quantities.
func (h *Handler) AddInventoryItem(c *gin.Context) {
	profile := currentProfile(c)

	var in inventory.Input
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if in.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}
	if !inventory.ValidLocation(in.Location) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "location must be fridge, freezer or pantry"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), dbTimeout)
	defer cancel()

	item, created, err := h.Inventory.Upsert(ctx, profile.HouseholdID, in)
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

// UpdateInventoryItem applies a partial update to an item.
func (h *Handler) UpdateInventoryItem(c *gin.Context) {
	profile := currentProfile(c)

	var p inventory.Patch
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if p.Location != nil && !inventory.ValidLocation(*p.Location) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "location must be fridge, freezer or pantry"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), dbTimeout)
	defer cancel()

	item, err := h.Inventory.Update(ctx, profile.HouseholdID, c.Param("id"), p)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if item == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "inventory item not found"})
		return
	}
	c.JSON(http.StatusOK, item)
}

// DeleteInventoryItem removes an item.
func (h *Handler) DeleteInventoryItem(c *gin.Context) {
	profile := currentProfile(c)

	ctx, cancel := context.WithTimeout(c.Request.Context(), dbTimeout)
	defer cancel()

	if err := h.Inventory.Delete(ctx, profile.HouseholdID, c.Param("id")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

// ScanInventory identifies groceries in an uploaded storage photo and returns
// them for the user to confirm. Nothing is saved until the confirmed items
// come back through AddInventoryItem.
func (h *Handler) ScanInventory(c *gin.Context) {
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

	format := "jpeg"
	switch file.Header.Get("Content-Type") {
	case "image/png":
		format = "png"
	case "image/webp":
		format = "webp"
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), modelTimeout)
	defer cancel()

	items, err := h.Model.ScanStorageImage(ctx, imageData, format)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			c.JSON(http.StatusGatewayTimeout, gin.H{"error": "storage scan timed out"})
			return
		}
		log.Printf("storage scan failed: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to scan photo"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}
