package models

import "encoding/json"

// Link is one anchor element: its resolved target and trimmed label.
type Link struct {
	Href string `json:"href"`
	Text string `json:"text"`
}

// MetaTag mirrors the name/property/content attributes of a <meta> element.
// A missing attribute is nil and serialises as null.
type MetaTag struct {
	Name     *string `json:"name"`
	Property *string `json:"property"`
	Content  *string `json:"content"`
}

// PageBundle is the full extraction result for one fetch.
type PageBundle struct {
	// URL is the requested URL, not the post-redirect one.
	URL        string    `json:"url"`
	Title      string    `json:"title"`
	Text       string    `json:"text"`
	Links      []Link    `json:"links"`
	MetaTags   []MetaTag `json:"meta_tags"`
	HTMLLength int       `json:"html_length"`

	// CrawlTime is the wall-clock duration of the fetch in seconds.
	CrawlTime float64 `json:"crawl_time"`
}

// LinkResult is the answer of the link-only flow: either the input URL
// echoed back (inner page) or the flat list of targets found on a site root.
type LinkResult struct {
	Passthrough string
	Links       []string
}

// IsPassthrough reports whether the URL was returned without fetching.
func (r LinkResult) IsPassthrough() bool {
	return r.Links == nil
}

// MarshalJSON renders a bare string for passthrough results and an array
// otherwise.
func (r LinkResult) MarshalJSON() ([]byte, error) {
	if r.Links == nil {
		return json.Marshal(r.Passthrough)
	}
	return json.Marshal(r.Links)
}

// ExtractionFailure is the 200-status body returned when a page could not
// be fetched or extracted.
type ExtractionFailure struct {
	Error string `json:"error"`
	URL   string `json:"url"`
}

// ErrorResponse is the body of 4xx/5xx responses.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// HealthResponse is the response for GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}

// ServiceInfo is the static description served at GET /.
type ServiceInfo struct {
	Name        string            `json:"name"`
	Version     string            `json:"version"`
	Description string            `json:"description"`
	Endpoints   map[string]string `json:"endpoints"`
}
