package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"mealprep/internal/household"
)

// GetProfile returns the caller's profile.
func (h *Handler) GetProfile(c *gin.Context) {
	c.JSON(http.StatusOK, currentProfile(c))
}

// UpdateProfile changes the caller's display name or avatar.
func (h *Handler) UpdateProfile(c *gin.Context) {
	profile := currentProfile(c)

	var p household.ProfilePatch
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), dbTimeout)
	defer cancel()

	updated, err := h.Households.UpdateProfile(ctx, profile.ID, p)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if updated == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "profile not found"})
		return
	}
	c.JSON(http.StatusOK, updated)
}

// GetHousehold returns the caller's household with its members.
func (h *Handler) GetHousehold(c *gin.Context) {
	profile := currentProfile(c)

	ctx, cancel := context.WithTimeout(c.Request.Context(), dbTimeout)
	defer cancel()

	hh, err := h.Households.Get(ctx, profile.HouseholdID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if hh == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "household not found"})
		return
	}
	c.JSON(http.StatusOK, hh)
}

// RenameHousehold changes the household name. Owner only.
func (h *Handler) RenameHousehold(c *gin.Context) {
	profile := currentProfile(c)

	var req struct {
		Name string `json:"name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), dbTimeout)
	defer cancel()

	hh, err := h.Households.Rename(ctx, profile.HouseholdID, profile.ID, strings.TrimSpace(req.Name))
	if err != nil {
		if errors.Is(err, household.ErrNotOwner) {
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, hh)
}

// CreateInvitation invites an email into the household. Owner only; at most
// one pending invitation per email.
func (h *Handler) CreateInvitation(c *gin.Context) {
	profile := currentProfile(c)

	var req struct {
		Email string `json:"email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || !strings.Contains(req.Email, "@") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "a valid email is required"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), dbTimeout)
	defer cancel()

	inv, err := h.Households.Invite(ctx, profile.HouseholdID, profile.ID, req.Email)
	if err != nil {
		switch {
		case errors.Is(err, household.ErrNotOwner):
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		case errors.Is(err, household.ErrInviteExists):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusCreated, inv)
}

// ListInvitations lists the household's open invitations.
func (h *Handler) ListInvitations(c *gin.Context) {
	profile := currentProfile(c)

	ctx, cancel := context.WithTimeout(c.Request.Context(), dbTimeout)
	defer cancel()

	invites, err := h.Households.PendingInvitations(ctx, profile.HouseholdID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"invitations": invites})
}

// AcceptInvitation moves the caller into the inviting household.
func (h *Handler) AcceptInvitation(c *gin.Context) {
	profile := currentProfile(c)

	ctx, cancel := context.WithTimeout(c.Request.Context(), dbTimeout)
	defer cancel()

	hh, err := h.Households.Accept(ctx, c.Param("token"), profile.ID)
	if err != nil {
		if errors.Is(err, household.ErrInviteExpired) {
			c.JSON(http.StatusGone, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if hh == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "invitation not found"})
		return
	}
	c.JSON(http.StatusOK, hh)
}

// DeclineInvitation marks an invitation declined.
func (h *Handler) DeclineInvitation(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), dbTimeout)
	defer cancel()

	ok, err := h.Households.Decline(ctx, c.Param("token"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "invitation not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

// LeaveHousehold moves the caller into a fresh personal household.
func (h *Handler) LeaveHousehold(c *gin.Context) {
	profile := currentProfile(c)

	ctx, cancel := context.WithTimeout(c.Request.Context(), dbTimeout)
	defer cancel()

	updated, err := h.Households.Leave(ctx, profile.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if updated == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "profile not found"})
		return
	}
	c.JSON(http.StatusOK, updated)
}

// HouseholdActivity returns the household's recent activity across meals,
// recipes, shopping and inventory, newest first.
func (h *Handler) HouseholdActivity(c *gin.Context) {
	profile := currentProfile(c)

	ctx, cancel := context.WithTimeout(c.Request.Context(), dbTimeout)
	defer cancel()

	feed, err := h.Households.Activity(ctx, profile.HouseholdID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if feed == nil {
		feed = []household.Activity{}
	}
	c.JSON(http.StatusOK, gin.H{"activities": feed})
}
