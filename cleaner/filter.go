package cleaner

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// FilterContent removes elements matching excludeTags, then keeps only the
// elements matching includeTags. If no include selector matches, the
// exclude-filtered document is returned. Empty lists leave html untouched.
func FilterContent(html string, includeTags, excludeTags []string) string {
	if len(includeTags) == 0 && len(excludeTags) == 0 {
		return html
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return html
	}

	for _, selector := range excludeTags {
		doc.Find(selector).Remove()
	}

	if len(includeTags) > 0 {
		matches := doc.Find(strings.Join(includeTags, ", "))
		if matches.Length() > 0 {
			var buf strings.Builder
			matches.Each(func(_ int, s *goquery.Selection) {
				if h, err := goquery.OuterHtml(s); err == nil {
					buf.WriteString(h)
				}
			})
			return buf.String()
		}
	}

	result, err := doc.Html()
	if err != nil {
		return html
	}
	return result
}
