// Package links normalises raw anchor lists and classifies URLs as site
// roots or inner pages.
package links

import (
	"strings"

	"github.com/use-agent/pagegrab/models"
)

// canonicalHref strips the fragment identifier: everything from the first '#'.
func canonicalHref(href string) string {
	if i := strings.IndexByte(href, '#'); i >= 0 {
		return href[:i]
	}
	return href
}

// RemoveDuplicates keeps the first link for each fragment-less href, in
// document order. Links whose href is empty once the fragment is removed are
// dropped. The kept link's Href is the fragment-less form; its Text is that
// of the first occurrence.
func RemoveDuplicates(in []models.Link) []models.Link {
	out := make([]models.Link, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, l := range in {
		key := canonicalHref(l.Href)
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, models.Link{Href: key, Text: l.Text})
	}
	return out
}

// Hrefs flattens links to their targets, skipping entries without one.
func Hrefs(in []models.Link) []string {
	out := make([]string, 0, len(in))
	for _, l := range in {
		if l.Href == "" {
			continue
		}
		out = append(out, l.Href)
	}
	return out
}
