package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/pagegrab/api/middleware"
	"github.com/use-agent/pagegrab/models"
	"github.com/use-agent/pagegrab/pipeline"
)

// Crawl returns the handler shared by POST /crawl, /crawl-json and
// /lyzr-scrapper-master.
//
// Flow:
//  1. Bind and validate the body; bad input is a 400 before any browser work.
//  2. Orchestrator.FullExtract → page bundle.
//  3. Extraction failures are answered with 200 and {error, url}.
func Crawl(orch *pipeline.Orchestrator) gin.HandlerFunc {
	return func(c *gin.Context) {
		req, ok := bindFetchRequest(c)
		if !ok {
			return
		}

		bundle, err := orch.FullExtract(c.Request.Context(), req.URL)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, bundle)
	}
}

// FetchLink returns a handler for POST /fetch_link. The body is either a
// bare string (inner page, echoed back) or an array of link targets.
func FetchLink(orch *pipeline.Orchestrator) gin.HandlerFunc {
	return func(c *gin.Context) {
		req, ok := bindFetchRequest(c)
		if !ok {
			return
		}

		result, err := orch.LinkExtract(c.Request.Context(), req.URL)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func bindFetchRequest(c *gin.Context) (*models.FetchRequest, bool) {
	var req models.FetchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Detail: "invalid request body: " + err.Error()})
		return nil, false
	}
	if err := req.Validate(); err != nil {
		respondError(c, err)
		return nil, false
	}
	return &req, true
}

// respondError writes the response for each error class:
//
//	validation        → 400 {detail}
//	ExtractionError   → 200 {error, url}
//	anything else     → 500 with a generic detail
func respondError(c *gin.Context, err error) {
	var se *models.ScrapeError
	if models.IsValidation(err) && errors.As(err, &se) {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Detail: se.Message})
		return
	}

	var ee *models.ExtractionError
	if errors.As(err, &ee) {
		c.JSON(http.StatusOK, ee.ToFailure())
		return
	}

	slog.Error("unhandled request error",
		"path", c.Request.URL.Path,
		"request_id", middleware.RequestID(c),
		"error", err,
	)
	c.JSON(http.StatusInternalServerError, models.ErrorResponse{Detail: middleware.InternalErrorDetail})
}
