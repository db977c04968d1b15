package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/pagegrab/models"
)

// Version is reported by GET /.
const Version = "1.0.0"

// Health returns a handler for GET /health.
func Health() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, models.HealthResponse{Status: "healthy"})
	}
}

// Index returns a handler for GET /, a static description of the service.
func Index() gin.HandlerFunc {
	info := models.ServiceInfo{
		Name:        "pagegrab",
		Version:     Version,
		Description: "Renders web pages in a headless browser and returns their text, links and metadata.",
		Endpoints: map[string]string{
			"POST /crawl":                "full page bundle for {url}",
			"POST /crawl-json":           "alias of /crawl",
			"POST /lyzr-scrapper-master": "alias of /crawl",
			"POST /fetch_link":           "deduplicated links of a site root; inner pages are echoed back",
			"GET /health":                "liveness check",
		},
	}
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, info)
	}
}
