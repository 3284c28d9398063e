package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/api"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
)

func TestNew(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := testhelpers.SetupTestDB(t)

	cfg := &config.Config{
		ServerHost: "localhost",
		ServerPort: "8080",
		JWTSecret:  "test-secret",
		MediaRoot:  t.TempDir(),
		MediaURL:   "/media/",
	}

	server := New(cfg, api.Dependencies{
		DB:     db,
		Auth:   service.NewAuthService(db, cfg.JWTSecret),
		Images: service.NewLocalImageStore(cfg.MediaRoot, cfg.MediaURL),
	})
	assert.NotNil(t, server)
	assert.Equal(t, "localhost:8080", server.http.Addr)

	w := httptest.NewRecorder()
	server.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = httptest.NewRecorder()
	server.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "foodgram_http_requests_total")
}
