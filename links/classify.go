package links

import (
	"net/url"

	"github.com/use-agent/pagegrab/models"
)

// Class tells a site root apart from an inner page.
type Class int

const (
	// InnerPage is any URL whose path is more than "/".
	InnerPage Class = iota
	// SiteRoot is a URL whose path is empty or "/".
	SiteRoot
)

func (c Class) String() string {
	if c == SiteRoot {
		return "site_root"
	}
	return "inner_page"
}

// Classify inspects only the path of rawURL. Strings url.Parse rejects are
// reported as validation errors rather than guessed at.
func Classify(rawURL string) (Class, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return InnerPage, models.NewValidationError("url could not be parsed: " + err.Error())
	}
	if u.Path == "" || u.Path == "/" {
		return SiteRoot, nil
	}
	return InnerPage, nil
}
