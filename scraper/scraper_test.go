package scraper

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-rod/rod/lib/launcher"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/use-agent/pagegrab/config"
	"github.com/use-agent/pagegrab/models"
)

const fixturePage = `<!doctype html>
<html>
<head>
  <title>Fixture Page</title>
  <meta name="description" content="a fixture">
  <meta property="og:title" content="Fixture OG">
  <meta charset="utf-8">
</head>
<body>
  <h1>Hello fixture</h1>
  <a href="/x#a">  First label  </a>
  <a href="/x#b">Second</a>
  <a href="https://other.test/y">Other</a>
  <a name="anchor-without-href">No target</a>
</body>
</html>`

// browserConfig skips the test when no Chromium is installed.
func browserConfig(t *testing.T) config.BrowserConfig {
	t.Helper()
	bin, ok := launcher.LookPath()
	if !ok {
		t.Skip("no chromium binary available")
	}
	cfg := config.Default().Browser
	cfg.Bin = bin
	return cfg
}

func extractConfig() config.ExtractConfig {
	cfg := config.Default().Extract
	cfg.NavigationTimeout = 20 * time.Second
	cfg.DOMReadTimeout = 5 * time.Second
	return cfg
}

func TestFetchFixturePage(t *testing.T) {
	sc := New(browserConfig(t), extractConfig())

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, fixturePage)
	}))
	defer ts.Close()

	snap, err := sc.Fetch(context.Background(), ts.URL+"/")
	require.NoError(t, err)

	assert.Equal(t, "Fixture Page", snap.Title)
	assert.Contains(t, snap.Text, "Hello fixture")
	assert.Contains(t, snap.HTML, "<title>Fixture Page</title>")

	require.Len(t, snap.Links, 4)
	assert.Equal(t, models.Link{Href: ts.URL + "/x#a", Text: "First label"}, snap.Links[0])
	assert.Equal(t, ts.URL+"/x#b", snap.Links[1].Href)
	assert.Equal(t, "https://other.test/y", snap.Links[2].Href)
	assert.Equal(t, "", snap.Links[3].Href)

	require.Len(t, snap.MetaTags, 3)
	assert.Equal(t, "description", *snap.MetaTags[0].Name)
	assert.Nil(t, snap.MetaTags[0].Property)
	assert.Equal(t, "og:title", *snap.MetaTags[1].Property)
	assert.Nil(t, snap.MetaTags[2].Content)

	assert.Equal(t, 0, sc.ActiveSessions())
}

func TestFetchNavigationTimeoutReleasesBrowser(t *testing.T) {
	cfg := extractConfig()
	cfg.NavigationTimeout = 2 * time.Second
	sc := New(browserConfig(t), cfg)

	release := make(chan struct{})
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer ts.Close()
	defer close(release)

	_, err := sc.Fetch(context.Background(), ts.URL+"/")
	require.Error(t, err)

	var se *models.ScrapeError
	require.True(t, errors.As(err, &se), "unexpected error type %T", err)
	assert.Equal(t, models.ErrCodeTimeout, se.Code)
	assert.Equal(t, 0, sc.ActiveSessions())
}

func TestFetchErrorStatus(t *testing.T) {
	sc := New(browserConfig(t), extractConfig())

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer ts.Close()

	_, err := sc.Fetch(context.Background(), ts.URL+"/missing")
	require.Error(t, err)

	var se *models.ScrapeError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, models.ErrCodeNavigation, se.Code)
	assert.Equal(t, 0, sc.ActiveSessions())
}

func TestFetchCanceledContextReleasesBrowser(t *testing.T) {
	sc := New(browserConfig(t), extractConfig())

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer ts.Close()

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(time.Second, cancel)

	_, err := sc.Fetch(ctx, ts.URL+"/")
	require.Error(t, err)
	assert.Equal(t, 0, sc.ActiveSessions())
}
