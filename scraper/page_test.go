package scraper

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/use-agent/pagegrab/models"
	"github.com/ysmood/gson"
)

func TestDecodeLinks(t *testing.T) {
	v := gson.NewFrom(`[
		{"href": "https://example.com/x#a", "text": "First"},
		{"href": "", "text": "no target"}
	]`)
	got := decodeLinks(v)
	require.Len(t, got, 2)
	assert.Equal(t, models.Link{Href: "https://example.com/x#a", Text: "First"}, got[0])
	assert.Equal(t, "", got[1].Href)
}

func TestDecodeMetaTagsKeepsNulls(t *testing.T) {
	v := gson.NewFrom(`[
		{"name": "description", "property": null, "content": "hello"},
		{"name": null, "property": "og:title", "content": ""}
	]`)
	got := decodeMetaTags(v)
	require.Len(t, got, 2)

	require.NotNil(t, got[0].Name)
	assert.Equal(t, "description", *got[0].Name)
	assert.Nil(t, got[0].Property)
	assert.Equal(t, "hello", *got[0].Content)

	assert.Nil(t, got[1].Name)
	assert.Equal(t, "og:title", *got[1].Property)
	require.NotNil(t, got[1].Content)
	assert.Equal(t, "", *got[1].Content)
}

func TestDecodeEmpty(t *testing.T) {
	assert.Empty(t, decodeLinks(gson.NewFrom(`[]`)))
	assert.Empty(t, decodeMetaTags(gson.NewFrom(`[]`)))
}

func TestCategorizeError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"deadline", context.DeadlineExceeded, models.ErrCodeTimeout},
		{"canceled", context.Canceled, models.ErrCodeTimeout},
		{"other", errors.New("net::ERR_NAME_NOT_RESOLVED"), models.ErrCodeNavigation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := categorizeError(tt.err, "navigation failed")
			assert.Equal(t, tt.want, got.Code)
			assert.ErrorIs(t, got, tt.err)
		})
	}
}

func TestCategorizeLaunchError(t *testing.T) {
	assert.Equal(t, models.ErrCodeBrowserLaunch, categorizeLaunchError(errors.New("exec: not found"), "launch").Code)
	assert.Equal(t, models.ErrCodeBrowserLaunch, categorizeLaunchError(context.DeadlineExceeded, "launch").Code)
	assert.Equal(t, models.ErrCodeTimeout, categorizeLaunchError(context.Canceled, "launch").Code)
}

func TestSetupHijackNothingToBlock(t *testing.T) {
	assert.Nil(t, setupHijack(nil, nil))
	assert.Nil(t, setupHijack(nil, []string{"NotAType"}))
}
