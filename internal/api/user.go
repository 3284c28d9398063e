package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/service"
)

type UserHandler struct {
	queries *service.QueryService
	tokens  middleware.TokenValidator
}

func NewUserHandler(queries *service.QueryService, tokens middleware.TokenValidator) *UserHandler {
	return &UserHandler{queries: queries, tokens: tokens}
}

func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	optional := middleware.OptionalAuth(h.tokens)

	users := router.Group("/users")
	{
		users.GET("", optional, h.ListUsers)
		users.GET("/me", middleware.AuthMiddleware(h.tokens), h.Me)
		users.GET("/:id", optional, h.GetUser)
	}
}

func (h *UserHandler) ListUsers(c *gin.Context) {
	page, err := parsePage(c)
	if err != nil {
		respondError(c, err)
		return
	}

	users, err := h.queries.ListUsers(c.Request.Context(), middleware.CurrentViewer(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, paginate(c, users, page))
}

func (h *UserHandler) GetUser(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	user, err := h.queries.GetUser(c.Request.Context(), id, middleware.CurrentViewer(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) Me(c *gin.Context) {
	user, err := h.queries.GetCurrentUser(c.Request.Context(), middleware.CurrentViewer(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
