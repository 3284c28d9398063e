package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/pageza/foodgram/backend/internal/metrics"
	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/service"
)

type SubscriptionHandler struct {
	queries       *service.QueryService
	follows       *service.MarkerService[models.Follow]
	tokens        middleware.TokenValidator
	markerLimiter *middleware.RateLimiter
}

func NewSubscriptionHandler(queries *service.QueryService, follows *service.MarkerService[models.Follow], tokens middleware.TokenValidator, markerLimiter *middleware.RateLimiter) *SubscriptionHandler {
	return &SubscriptionHandler{
		queries:       queries,
		follows:       follows,
		tokens:        tokens,
		markerLimiter: markerLimiter,
	}
}

func (h *SubscriptionHandler) RegisterRoutes(router *gin.RouterGroup) {
	users := router.Group("/users", middleware.AuthMiddleware(h.tokens))
	{
		users.GET("/subscriptions", h.ListSubscriptions)
		users.POST("/:id/subscribe", h.markerLimiter.RateLimitMiddleware(), h.Subscribe)
		users.DELETE("/:id/subscribe", h.markerLimiter.RateLimitMiddleware(), h.Unsubscribe)
	}
}

func (h *SubscriptionHandler) ListSubscriptions(c *gin.Context) {
	page, err := parsePage(c)
	if err != nil {
		respondError(c, err)
		return
	}
	recipesLimit, err := parseRecipesLimit(c)
	if err != nil {
		respondError(c, err)
		return
	}

	subscriptions, err := h.queries.GetSubscriptions(c.Request.Context(), middleware.CurrentViewer(c), recipesLimit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, paginate(c, subscriptions, page))
}

func (h *SubscriptionHandler) Subscribe(c *gin.Context) {
	authorID, ok := pathID(c)
	if !ok {
		return
	}
	recipesLimit, err := parseRecipesLimit(c)
	if err != nil {
		respondError(c, err)
		return
	}

	viewer := middleware.CurrentViewer(c)
	_, err = h.follows.Add(c.Request.Context(), viewer.ID, authorID)
	metrics.MarkerTogglesTotal.WithLabelValues("follow", "add", metrics.Outcome(err)).Inc()
	if err != nil {
		respondError(c, err)
		return
	}

	subscription, err := h.queries.GetAuthorSubscription(c.Request.Context(), viewer, authorID, recipesLimit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, subscription)
}

func (h *SubscriptionHandler) Unsubscribe(c *gin.Context) {
	authorID, ok := pathID(c)
	if !ok {
		return
	}

	err := h.follows.Remove(c.Request.Context(), middleware.CurrentViewer(c).ID, authorID)
	metrics.MarkerTogglesTotal.WithLabelValues("follow", "remove", metrics.Outcome(err)).Inc()
	if err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// parseRecipesLimit reads recipes_limit; 0 means no limit
func parseRecipesLimit(c *gin.Context) (int, error) {
	raw := c.Query("recipes_limit")
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, &service.ValidationError{Field: "recipes_limit", Message: "recipes_limit must be a positive integer"}
	}
	return n, nil
}
