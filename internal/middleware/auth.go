package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
)

const (
	userIDKey   = "user_id"
	usernameKey = "username"
	isStaffKey  = "is_staff"
)

// TokenValidator is an interface for validating JWT tokens
type TokenValidator interface {
	ValidateToken(token string) (*types.TokenClaims, error)
}

// AuthMiddleware rejects requests without a valid bearer token
func AuthMiddleware(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
			c.Abort()
			return
		}
		authenticate(c, validator)
	}
}

// OptionalAuth lets anonymous requests through but still rejects a bad token
func OptionalAuth(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			c.Next()
			return
		}
		authenticate(c, validator)
	}
}

func authenticate(c *gin.Context, validator TokenValidator) {
	parts := strings.Split(c.GetHeader("Authorization"), " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header format"})
		c.Abort()
		return
	}

	claims, err := validator.ValidateToken(parts[1])
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
		c.Abort()
		return
	}

	// Store user info in context
	c.Set(userIDKey, claims.UserID)
	c.Set(usernameKey, claims.Username)
	c.Set(isStaffKey, claims.IsStaff)
	c.Next()
}

// CurrentViewer returns the authenticated viewer, or the anonymous zero Viewer
func CurrentViewer(c *gin.Context) service.Viewer {
	return service.Viewer{
		ID:      c.GetUint(userIDKey),
		IsStaff: c.GetBool(isStaffKey),
	}
}
