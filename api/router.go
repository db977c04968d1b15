package api

import (
	"github.com/gin-gonic/gin"
	"github.com/use-agent/pagegrab/api/handler"
	"github.com/use-agent/pagegrab/api/middleware"
	"github.com/use-agent/pagegrab/config"
	"github.com/use-agent/pagegrab/metrics"
	"github.com/use-agent/pagegrab/pipeline"
)

// NewRouter creates a configured Gin engine with all routes and middleware.
// m may be nil, in which case no metrics are collected or served.
//
// Middleware chain:
//
//	RequestID → Recovery → Logger → CORS → Metrics
//
// The API is open; access control belongs to whatever fronts the service.
func NewRouter(orch *pipeline.Orchestrator, cfg *config.Config, m *metrics.Metrics) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.Recovery())
	r.Use(gin.Logger())
	r.Use(middleware.CORS(cfg.CORS))
	if m != nil {
		r.Use(metrics.Middleware(m))
	}

	r.GET("/", handler.Index())
	r.GET("/health", handler.Health())
	if m != nil && cfg.Metrics.Enabled {
		r.GET(cfg.Metrics.Path, gin.WrapH(m.Handler()))
	}

	// Crawl aliases share one handler.
	crawl := handler.Crawl(orch)
	r.POST("/crawl", crawl)
	r.POST("/crawl-json", crawl)
	r.POST("/lyzr-scrapper-master", crawl)
	r.POST("/fetch_link", handler.FetchLink(orch))

	return r
}
