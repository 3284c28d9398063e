package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/service"
)

// Dependencies are the collaborators the HTTP surface is built from.
// Redis is optional; without it requests are not rate limited.
type Dependencies struct {
	DB     *gorm.DB
	Auth   *service.AuthService
	Images service.ImageStore
	Redis  *redis.Client
}

// RegisterRoutes mounts the /api/v1 routes on router
func RegisterRoutes(router *gin.Engine, deps Dependencies) {
	queries := service.NewQueryService(deps.DB)
	follows := service.NewFollowService(deps.DB)

	var writeLimiter, markerLimiter *middleware.RateLimiter
	if deps.Redis != nil {
		writeLimiter = middleware.NewRecipeWriteRateLimiter(deps.Redis)
		markerLimiter = middleware.NewMarkerRateLimiter(deps.Redis)
	}

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", healthHandler(deps.DB))

		NewAuthHandler(deps.Auth).RegisterRoutes(v1)
		NewCatalogHandler(service.NewCatalogService(deps.DB)).RegisterRoutes(v1)
		NewRecipeHandler(
			service.NewRecipeService(deps.DB, deps.Images),
			queries,
			service.NewFavoriteService(deps.DB),
			service.NewShoppingCartService(deps.DB),
			service.NewShoppingListService(deps.DB),
			deps.Auth,
			writeLimiter,
			markerLimiter,
		).RegisterRoutes(v1)
		NewSubscriptionHandler(queries, follows, deps.Auth, markerLimiter).RegisterRoutes(v1)
		NewUserHandler(queries, deps.Auth).RegisterRoutes(v1)
	}
}

func healthHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := database.HealthCheck(ctx, db); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
