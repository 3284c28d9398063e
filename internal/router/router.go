package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pageza/foodgram/backend/internal/api"
	"github.com/pageza/foodgram/backend/internal/middleware"
)

// SetupRouter builds the engine with the shared middleware, the API routes and /metrics
func SetupRouter(deps api.Dependencies, corsOrigins ...string) *gin.Engine {
	router := gin.New()
	router.Use(middleware.RequestLogger(), middleware.Recovery(), middleware.CORS(corsOrigins...))

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	api.RegisterRoutes(router, deps)

	return router
}
