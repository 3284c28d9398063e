package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/service"
)

// respondError maps service errors onto HTTP responses
func respondError(c *gin.Context, err error) {
	var (
		validationErr *service.ValidationError
		selfRefErr    *service.SelfReferenceError
		notFoundErr   *service.NotFoundError
		conflictErr   *service.ConflictError
		authzErr      *service.AuthorizationError
	)

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{validationErr.Field: []string{validationErr.Message}})
	case errors.As(err, &selfRefErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": selfRefErr.Error()})
	case errors.Is(err, service.ErrAuthenticationRequired):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication credentials were not provided"})
	case errors.As(err, &authzErr):
		c.JSON(http.StatusForbidden, gin.H{"error": authzErr.Error()})
	case errors.As(err, &notFoundErr):
		c.JSON(http.StatusNotFound, gin.H{"error": notFoundErr.Error()})
	case errors.As(err, &conflictErr):
		c.JSON(http.StatusConflict, gin.H{"error": conflictErr.Error()})
	default:
		logging.Error().Err(err).Str("path", c.Request.URL.Path).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": middleware.InternalErrorMessage})
	}
}
