package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/pageza/foodgram/backend/internal/metrics"
	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
)

type RecipeHandler struct {
	recipes       *service.RecipeService
	queries       *service.QueryService
	favorites     *service.MarkerService[models.Favorite]
	carts         *service.MarkerService[models.ShoppingCart]
	shoppingList  *service.ShoppingListService
	tokens        middleware.TokenValidator
	writeLimiter  *middleware.RateLimiter
	markerLimiter *middleware.RateLimiter
}

func NewRecipeHandler(
	recipes *service.RecipeService,
	queries *service.QueryService,
	favorites *service.MarkerService[models.Favorite],
	carts *service.MarkerService[models.ShoppingCart],
	shoppingList *service.ShoppingListService,
	tokens middleware.TokenValidator,
	writeLimiter, markerLimiter *middleware.RateLimiter,
) *RecipeHandler {
	return &RecipeHandler{
		recipes:       recipes,
		queries:       queries,
		favorites:     favorites,
		carts:         carts,
		shoppingList:  shoppingList,
		tokens:        tokens,
		writeLimiter:  writeLimiter,
		markerLimiter: markerLimiter,
	}
}

func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup) {
	optional := middleware.OptionalAuth(h.tokens)
	required := middleware.AuthMiddleware(h.tokens)
	writes := h.writeLimiter.RateLimitMiddleware()
	markers := h.markerLimiter.RateLimitMiddleware()

	recipes := router.Group("/recipes")
	{
		recipes.GET("", optional, h.ListRecipes)
		recipes.GET("/download_shopping_cart", required, h.DownloadShoppingCart)
		recipes.GET("/:id", optional, h.GetRecipe)
		recipes.POST("", required, writes, h.CreateRecipe)
		recipes.PATCH("/:id", required, writes, h.UpdateRecipe)
		recipes.PUT("/:id", required, writes, h.UpdateRecipe)
		recipes.DELETE("/:id", required, writes, h.DeleteRecipe)
		recipes.POST("/:id/favorite", required, markers, h.AddFavorite)
		recipes.DELETE("/:id/favorite", required, markers, h.RemoveFavorite)
		recipes.POST("/:id/shopping_cart", required, markers, h.AddToShoppingCart)
		recipes.DELETE("/:id/shopping_cart", required, markers, h.RemoveFromShoppingCart)
	}
}

func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	page, err := parsePage(c)
	if err != nil {
		respondError(c, err)
		return
	}

	filter := types.RecipeFilter{TagSlugs: c.QueryArray("tags")}
	if raw := c.Query("author"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 0)
		if err != nil {
			respondError(c, &service.ValidationError{Field: "author", Message: "author must be a user id"})
			return
		}
		filter.AuthorID = uint(id)
	}
	if filter.IsFavorited, err = parseFlag(c, "is_favorited"); err != nil {
		respondError(c, err)
		return
	}
	if filter.IsInShoppingCart, err = parseFlag(c, "is_in_shopping_cart"); err != nil {
		respondError(c, err)
		return
	}

	recipes, err := h.queries.ListRecipes(c.Request.Context(), filter, middleware.CurrentViewer(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, paginate(c, recipes, page))
}

func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	recipe, err := h.queries.GetRecipe(c.Request.Context(), id, middleware.CurrentViewer(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, recipe)
}

func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	in, ok := bindRecipe(c)
	if !ok {
		return
	}

	viewer := middleware.CurrentViewer(c)
	recipe, err := h.recipes.CreateRecipe(c.Request.Context(), viewer.ID, in)
	metrics.RecipeWritesTotal.WithLabelValues("create", metrics.Outcome(err)).Inc()
	if err != nil {
		respondError(c, err)
		return
	}

	h.respondRecipe(c, http.StatusCreated, recipe.ID, viewer)
}

func (h *RecipeHandler) UpdateRecipe(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	in, ok := bindRecipe(c)
	if !ok {
		return
	}

	viewer := middleware.CurrentViewer(c)
	recipe, err := h.recipes.UpdateRecipe(c.Request.Context(), viewer, id, in)
	metrics.RecipeWritesTotal.WithLabelValues("update", metrics.Outcome(err)).Inc()
	if err != nil {
		respondError(c, err)
		return
	}

	h.respondRecipe(c, http.StatusOK, recipe.ID, viewer)
}

func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	err := h.recipes.DeleteRecipe(c.Request.Context(), middleware.CurrentViewer(c), id)
	metrics.RecipeWritesTotal.WithLabelValues("delete", metrics.Outcome(err)).Inc()
	if err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *RecipeHandler) AddFavorite(c *gin.Context) {
	h.addMarker(c, "favorite", func(userID, recipeID uint) error {
		_, err := h.favorites.Add(c.Request.Context(), userID, recipeID)
		return err
	})
}

func (h *RecipeHandler) RemoveFavorite(c *gin.Context) {
	h.removeMarker(c, "favorite", h.favorites.Remove)
}

func (h *RecipeHandler) AddToShoppingCart(c *gin.Context) {
	h.addMarker(c, "shopping_cart", func(userID, recipeID uint) error {
		_, err := h.carts.Add(c.Request.Context(), userID, recipeID)
		return err
	})
}

func (h *RecipeHandler) RemoveFromShoppingCart(c *gin.Context) {
	h.removeMarker(c, "shopping_cart", h.carts.Remove)
}

// DownloadShoppingCart serves the aggregated shopping list as a text attachment
func (h *RecipeHandler) DownloadShoppingCart(c *gin.Context) {
	text, err := h.shoppingList.BuildShoppingList(c.Request.Context(), middleware.CurrentViewer(c).ID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="shopping_cart.txt"`)
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(text))
}

func (h *RecipeHandler) addMarker(c *gin.Context, kind string, add func(userID, recipeID uint) error) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	err := add(middleware.CurrentViewer(c).ID, id)
	metrics.MarkerTogglesTotal.WithLabelValues(kind, "add", metrics.Outcome(err)).Inc()
	if err != nil {
		respondError(c, err)
		return
	}

	summary, err := h.queries.GetRecipeSummary(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, summary)
}

func (h *RecipeHandler) removeMarker(c *gin.Context, kind string, remove func(ctx context.Context, userID, recipeID uint) error) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	err := remove(c.Request.Context(), middleware.CurrentViewer(c).ID, id)
	metrics.MarkerTogglesTotal.WithLabelValues(kind, "remove", metrics.Outcome(err)).Inc()
	if err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *RecipeHandler) respondRecipe(c *gin.Context, status int, id uint, viewer service.Viewer) {
	detail, err := h.queries.GetRecipe(c.Request.Context(), id, viewer)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(status, detail)
}

// bindRecipe decodes the request body and its embedded image
func bindRecipe(c *gin.Context) (service.RecipeInput, bool) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxRecipeBodyBytes)

	var req types.RecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "request body is too large"})
			return service.RecipeInput{}, false
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return service.RecipeInput{}, false
	}

	in := service.RecipeInput{
		Name:        req.Name,
		Text:        req.Text,
		CookingTime: req.CookingTime,
		Ingredients: req.Ingredients,
		Tags:        req.Tags,
	}
	if req.Image != "" {
		image, err := decodeImage(req.Image)
		if err != nil {
			respondError(c, err)
			return service.RecipeInput{}, false
		}
		in.Image = image
	}
	return in, true
}

// pathID parses the :id parameter; anything but a positive integer is a 404
func pathID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 0)
	if err != nil || id == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return 0, false
	}
	return uint(id), true
}

func parseFlag(c *gin.Context, name string) (bool, error) {
	switch c.Query(name) {
	case "", "0", "false":
		return false, nil
	case "1", "true":
		return true, nil
	default:
		return false, &service.ValidationError{Field: name, Message: "must be 0, 1, true or false"}
	}
}
