package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
)

// CatalogHandler serves the read-only tag and ingredient catalog. These lists are not paginated.
type CatalogHandler struct {
	catalog *service.CatalogService
}

func NewCatalogHandler(catalog *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

func (h *CatalogHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/tags", h.ListTags)
	router.GET("/tags/:id", h.GetTag)
	router.GET("/ingredients", h.ListIngredients)
	router.GET("/ingredients/:id", h.GetIngredient)
}

func (h *CatalogHandler) ListTags(c *gin.Context) {
	tags, err := h.catalog.ListTags(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	views := make([]types.TagView, len(tags))
	for i, tag := range tags {
		views[i] = types.TagView{ID: tag.ID, Name: tag.Name, Color: tag.Color, Slug: tag.Slug}
	}
	c.JSON(http.StatusOK, views)
}

func (h *CatalogHandler) GetTag(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	tag, err := h.catalog.GetTag(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.TagView{ID: tag.ID, Name: tag.Name, Color: tag.Color, Slug: tag.Slug})
}

// ListIngredients supports ?name= prefix search
func (h *CatalogHandler) ListIngredients(c *gin.Context) {
	ingredients, err := h.catalog.ListIngredients(c.Request.Context(), c.Query("name"))
	if err != nil {
		respondError(c, err)
		return
	}

	views := make([]types.IngredientView, len(ingredients))
	for i, ingredient := range ingredients {
		views[i] = types.IngredientView{ID: ingredient.ID, Name: ingredient.Name, MeasurementUnit: ingredient.MeasurementUnit}
	}
	c.JSON(http.StatusOK, views)
}

func (h *CatalogHandler) GetIngredient(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	ingredient, err := h.catalog.GetIngredient(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.IngredientView{ID: ingredient.ID, Name: ingredient.Name, MeasurementUnit: ingredient.MeasurementUnit})
}
