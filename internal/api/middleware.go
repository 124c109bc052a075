package api

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"mealprep/internal/household"
)

const profileKey = "profile"

// Auth validates the Bearer token, resolves the caller's profile (creating
// profile and personal household on first sight) and stores it in the request
// context.
func (h *Handler) Auth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		tokenString := strings.TrimPrefix(header, "Bearer ")

		claims := jwt.MapClaims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return h.JWTSecret, nil
		})
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		userID, err := claims.GetSubject()
		if err != nil || userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token has no subject"})
			return
		}

		displayName, _ := claims["name"].(string)
		var email *string
		if e, ok := claims["email"].(string); ok && e != "" {
			email = &e
			if displayName == "" {
				displayName = strings.Split(e, "@")[0]
			}
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), dbTimeout)
		defer cancel()

		profile, err := h.Households.EnsureProfile(ctx, userID, displayName, email)
		if err != nil {
			log.Printf("failed to resolve profile for %s: %v", userID, err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to resolve profile"})
			return
		}

		c.Set(profileKey, profile)
		c.Next()
	}
}

// currentProfile returns the authenticated caller's profile.
func currentProfile(c *gin.Context) *household.Profile {
	return c.MustGet(profileKey).(*household.Profile)
}
