package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/use-agent/pagegrab/config"
	"github.com/use-agent/pagegrab/metrics"
	"github.com/use-agent/pagegrab/models"
	"github.com/use-agent/pagegrab/pipeline"
	"github.com/use-agent/pagegrab/scraper"
)

type fakeFetcher struct {
	calls atomic.Int32
	snap  *scraper.Snapshot
	err   error
}

func (f *fakeFetcher) Fetch(ctx context.Context, targetURL string) (*scraper.Snapshot, error) {
	f.calls.Add(1)
	return f.snap, f.err
}

func examplePage() *scraper.Snapshot {
	name := "description"
	content := "An example"
	return &scraper.Snapshot{
		Title: "Example Domain",
		HTML:  "<html><body>Hello</body></html>",
		Text:  "Hello",
		Links: []models.Link{
			{Href: "https://example.com/a#top", Text: "A"},
			{Href: "https://example.com/a#bottom", Text: "A again"},
			{Href: "https://example.com/b", Text: "B"},
		},
		MetaTags: []models.MetaTag{{Name: &name, Content: &content}},
	}
}

func newTestRouter(t *testing.T, f pipeline.Fetcher) http.Handler {
	t.Helper()
	cfg := config.Default()
	cfg.Server.Mode = "test"
	m := metrics.New(nil)
	orch := pipeline.New(f, pipeline.WithObserver(m))
	return NewRouter(orch, cfg, m)
}

func do(h http.Handler, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestPublicRoutes(t *testing.T) {
	r := newTestRouter(t, &fakeFetcher{})

	rr := do(r, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, rr.Body.String())

	rr = do(r, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var info models.ServiceInfo
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &info))
	assert.Equal(t, "pagegrab", info.Name)
	assert.Contains(t, info.Endpoints, "POST /fetch_link")
}

func TestCrawlEndpoints(t *testing.T) {
	for _, path := range []string{"/crawl", "/crawl-json", "/lyzr-scrapper-master"} {
		t.Run(path, func(t *testing.T) {
			f := &fakeFetcher{snap: examplePage()}
			r := newTestRouter(t, f)

			rr := do(r, http.MethodPost, path, `{"url":"https://example.com","bypass_cache":true}`)
			require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

			var body map[string]any
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
			assert.Equal(t, "https://example.com", body["url"])
			assert.Equal(t, "Example Domain", body["title"])
			assert.Equal(t, "Hello", body["text"])
			assert.Len(t, body["links"], 3)
			assert.EqualValues(t, 31, body["html_length"])
			assert.Contains(t, body, "crawl_time")

			meta := body["meta_tags"].([]any)[0].(map[string]any)
			assert.Equal(t, "description", meta["name"])
			assert.Nil(t, meta["property"])
			assert.Equal(t, int32(1), f.calls.Load())
		})
	}
}

func TestCrawlRejectsBadInput(t *testing.T) {
	cases := map[string]string{
		"missing url":  `{}`,
		"empty url":    `{"url":"   "}`,
		"bad scheme":   `{"url":"ftp://example.com/file"}`,
		"no scheme":    `{"url":"not-a-url"}`,
		"invalid json": `{"url":`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			f := &fakeFetcher{snap: examplePage()}
			r := newTestRouter(t, f)

			rr := do(r, http.MethodPost, "/crawl", body)
			require.Equal(t, http.StatusBadRequest, rr.Code)

			var resp models.ErrorResponse
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
			assert.NotEmpty(t, resp.Detail)
			assert.Zero(t, f.calls.Load(), "no browser work for invalid input")
		})
	}
}

func TestCrawlExtractionFailureIs200(t *testing.T) {
	f := &fakeFetcher{err: models.NewScrapeError(models.ErrCodeNavigation, "failed to navigate", errors.New("net::ERR_NAME_NOT_RESOLVED"))}
	r := newTestRouter(t, f)

	rr := do(r, http.MethodPost, "/crawl", `{"url":"https://nonexistent.invalid/"}`)
	require.Equal(t, http.StatusOK, rr.Code)

	var failure models.ExtractionFailure
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &failure))
	assert.Equal(t, "https://nonexistent.invalid/", failure.URL)
	assert.Contains(t, failure.Error, "ERR_NAME_NOT_RESOLVED")
}

func TestFetchLink(t *testing.T) {
	t.Run("inner page is echoed", func(t *testing.T) {
		f := &fakeFetcher{snap: examplePage()}
		rr := do(newTestRouter(t, f), http.MethodPost, "/fetch_link", `{"url":"https://example.com/page"}`)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `"https://example.com/page"`, rr.Body.String())
		assert.Zero(t, f.calls.Load())
	})

	t.Run("site root returns deduplicated links", func(t *testing.T) {
		f := &fakeFetcher{snap: examplePage()}
		rr := do(newTestRouter(t, f), http.MethodPost, "/fetch_link", `{"url":"https://example.com/"}`)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `["https://example.com/a","https://example.com/b"]`, rr.Body.String())
	})

	t.Run("site root with no links is an empty array", func(t *testing.T) {
		f := &fakeFetcher{snap: &scraper.Snapshot{}}
		rr := do(newTestRouter(t, f), http.MethodPost, "/fetch_link", `{"url":"https://example.com"}`)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `[]`, rr.Body.String())
	})

	t.Run("failure", func(t *testing.T) {
		f := &fakeFetcher{err: errors.New("boom")}
		rr := do(newTestRouter(t, f), http.MethodPost, "/fetch_link", `{"url":"https://example.com/"}`)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"error":"boom","url":"https://example.com/"}`, rr.Body.String())
	})
}

func TestCrawlNeedsNoCredentials(t *testing.T) {
	f := &fakeFetcher{snap: examplePage()}
	r := newTestRouter(t, f)

	rr := do(r, http.MethodPost, "/crawl", `{"url":"https://example.com"}`, "Authorization", "Bearer anything")
	assert.Equal(t, http.StatusOK, rr.Code)
	rr = do(r, http.MethodPost, "/fetch_link", `{"url":"https://example.com"}`)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, int32(2), f.calls.Load())
}

func TestRequestID(t *testing.T) {
	r := newTestRouter(t, &fakeFetcher{})

	rr := do(r, http.MethodGet, "/health", "", "X-Request-ID", "abc-123")
	assert.Equal(t, "abc-123", rr.Header().Get("X-Request-ID"))

	rr = do(r, http.MethodGet, "/health", "")
	assert.Len(t, rr.Header().Get("X-Request-ID"), 36)
}

func TestCORSPreflight(t *testing.T) {
	r := newTestRouter(t, &fakeFetcher{})

	rr := do(r, http.MethodOptions, "/crawl", "",
		"Origin", "https://app.example.org",
		"Access-Control-Request-Method", "POST",
	)
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestMetricsEndpoint(t *testing.T) {
	r := newTestRouter(t, &fakeFetcher{snap: examplePage()})
	do(r, http.MethodPost, "/crawl", `{"url":"https://example.com"}`)

	rr := do(r, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `pagegrab_http_requests_total{method="POST",path="/crawl",status="200"} 1`)
	assert.Contains(t, rr.Body.String(), `pagegrab_extractions_total{flow="full",outcome="success"} 1`)
}
