package scraper

import "github.com/use-agent/pagegrab/models"

// Snapshot is the raw, uncapped artifact bundle read from one rendered page.
// Capping and normalisation are left to the caller so both extraction flows
// can share it.
type Snapshot struct {
	Title    string
	HTML     string
	Text     string
	Links    []models.Link
	MetaTags []models.MetaTag

	// StatusCode is the main document's HTTP status, 0 if the browser did
	// not expose it.
	StatusCode int
}
