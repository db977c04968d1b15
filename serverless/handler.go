// Package serverless adapts the extraction pipeline to a function-style
// entry point: one JSON event in, one {statusCode, body} response out.
package serverless

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/use-agent/pagegrab/cleaner"
	"github.com/use-agent/pagegrab/models"
	"github.com/use-agent/pagegrab/pipeline"
)

// MissingURLBody is returned with 400 when the event has no url.
const MissingURLBody = "Missing 'url' parameter in the event."

// Event is the raw invocation payload.
type Event struct {
	URL string `json:"url"`

	// Format is "text" (default), "markdown" or "html".
	Format string `json:"format,omitempty"`

	// Selector narrows the output to matching elements.
	Selector string `json:"selector,omitempty"`

	// IncludeTags keeps only elements matching these selectors;
	// ExcludeTags removes matching elements first.
	IncludeTags []string `json:"include_tags,omitempty"`
	ExcludeTags []string `json:"exclude_tags,omitempty"`
}

// Response is what the function returns to its runtime.
type Response struct {
	StatusCode int    `json:"statusCode"`
	Body       string `json:"body"`
}

// Handler serves events from a shared orchestrator.
type Handler struct {
	orch *pipeline.Orchestrator
}

// NewHandler creates a Handler.
func NewHandler(orch *pipeline.Orchestrator) *Handler {
	return &Handler{orch: orch}
}

// Handle runs one event. Plain text with no narrowing returns the bundle's
// text field; anything else re-renders the page HTML.
func (h *Handler) Handle(ctx context.Context, ev Event) Response {
	url := strings.TrimSpace(ev.URL)
	if url == "" {
		return Response{StatusCode: http.StatusBadRequest, Body: MissingURLBody}
	}

	format := ev.Format
	if format == "" {
		format = cleaner.FormatText
	}
	switch format {
	case cleaner.FormatText, cleaner.FormatMarkdown, cleaner.FormatHTML:
	default:
		return badRequest(models.NewValidationError("unknown format: " + ev.Format))
	}
	selectors := append([]string{ev.Selector}, ev.IncludeTags...)
	for _, sel := range append(selectors, ev.ExcludeTags...) {
		if sel == "" {
			continue
		}
		if err := cleaner.CheckSelector(sel); err != nil {
			return badRequest(models.NewValidationError(fmt.Sprintf("invalid selector %q: %v", sel, err)))
		}
	}

	narrowed := ev.Selector != "" || len(ev.IncludeTags) > 0 || len(ev.ExcludeTags) > 0
	if format == cleaner.FormatText && !narrowed {
		bundle, err := h.orch.FullExtract(ctx, url)
		if err != nil {
			return errorResponse(err)
		}
		return Response{StatusCode: http.StatusOK, Body: bundle.Text}
	}

	snap, err := h.orch.Snapshot(ctx, url)
	if err != nil {
		return errorResponse(err)
	}

	mode := cleaner.ModeRaw
	if format == cleaner.FormatMarkdown {
		mode = cleaner.ModeReadability
	}
	body, err := cleaner.Render(snap.HTML, url, cleaner.Options{
		Format:      format,
		ExtractMode: mode,
		Selector:    ev.Selector,
		IncludeTags: ev.IncludeTags,
		ExcludeTags: ev.ExcludeTags,
	})
	if err != nil {
		return errorResponse(&models.ExtractionError{URL: url, Err: err})
	}
	return Response{StatusCode: http.StatusOK, Body: body}
}

func badRequest(se *models.ScrapeError) Response {
	return Response{StatusCode: http.StatusBadRequest, Body: se.Message}
}

func errorResponse(err error) Response {
	var se *models.ScrapeError
	if models.IsValidation(err) && errors.As(err, &se) {
		return badRequest(se)
	}

	var ee *models.ExtractionError
	if errors.As(err, &ee) {
		body, mErr := json.Marshal(ee.ToFailure())
		if mErr == nil {
			return Response{StatusCode: http.StatusOK, Body: string(body)}
		}
		err = mErr
	}

	slog.Error("unhandled serverless error", "error", err)
	return Response{StatusCode: http.StatusInternalServerError, Body: "internal server error"}
}
