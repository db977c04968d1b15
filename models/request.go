package models

import (
	"net/url"
	"strings"
)

// FetchRequest is the payload shared by every extraction endpoint
// (/crawl, /crawl-json, /lyzr-scrapper-master, /fetch_link).
type FetchRequest struct {
	// URL is the target page. Required; must be http or https.
	URL string `json:"url" binding:"required"`

	// BypassCache is accepted for compatibility with existing callers.
	// Nothing is cached, so it has no effect.
	BypassCache *bool `json:"bypass_cache,omitempty"`
}

// Validate trims the URL in place and checks it with ValidateURL.
func (r *FetchRequest) Validate() error {
	r.URL = strings.TrimSpace(r.URL)
	_, err := ValidateURL(r.URL)
	return err
}

// ValidateURL parses rawURL and requires an http(s) scheme and a host.
func ValidateURL(rawURL string) (*url.URL, error) {
	if rawURL == "" {
		return nil, NewValidationError("url is required")
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, NewValidationError("url could not be parsed: " + err.Error())
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, NewValidationError("url must start with http:// or https://")
	}
	if u.Host == "" {
		return nil, NewValidationError("url must include a host")
	}
	return u, nil
}
