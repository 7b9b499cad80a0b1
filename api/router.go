package api

import (
	"github.com/gin-gonic/gin"
	"github.com/use-agent/boolsearch/api/handler"
	"github.com/use-agent/boolsearch/api/middleware"
	"github.com/use-agent/boolsearch/config"
)

// NewRouter creates a configured Gin engine with all routes and middleware.
//
// Middleware chain:
//
//	Global:  Recovery → RequestID → Logger → CORS
func NewRouter(s handler.Searcher, cfg *config.Config) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(gin.Logger())
	r.Use(middleware.CORS(cfg.CORS.AllowedOrigins))

	r.GET("/", handler.Health())
	r.POST("/api/search", handler.Search(s, cfg.Search.EngineName))

	return r
}
