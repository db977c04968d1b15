package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	return string(body)
}

func TestObserveExtraction(t *testing.T) {
	m := New(nil)
	m.ObserveExtraction("full", "success", 2*time.Second)
	m.ObserveExtraction("links", "passthrough", 0)

	out := scrape(t, m)
	assert.Contains(t, out, `pagegrab_extractions_total{flow="full",outcome="success"} 1`)
	assert.Contains(t, out, `pagegrab_extractions_total{flow="links",outcome="passthrough"} 1`)
	assert.Contains(t, out, `pagegrab_extraction_duration_seconds_count{flow="full"} 1`)
	assert.NotContains(t, out, `pagegrab_extraction_duration_seconds_count{flow="links"}`)
}

func TestSessionsGauge(t *testing.T) {
	n := 3
	m := New(func() int { return n })
	assert.Contains(t, scrape(t, m), "pagegrab_browser_sessions_active 3")

	n = 0
	assert.Contains(t, scrape(t, m), "pagegrab_browser_sessions_active 0")
}

func TestSeparateRegistries(t *testing.T) {
	// Two instances must not collide on registration.
	assert.NotPanics(t, func() {
		New(nil)
		New(nil)
	})
}

func TestMiddlewareUsesRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := New(nil)
	r := gin.New()
	r.Use(Middleware(m))
	r.GET("/items/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	for _, path := range []string{"/items/1", "/items/2", "/nowhere"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	out := scrape(t, m)
	assert.Contains(t, out, `pagegrab_http_requests_total{method="GET",path="/items/:id",status="204"} 2`)
	assert.Contains(t, out, `pagegrab_http_requests_total{method="GET",path="unmatched",status="404"} 1`)
}
