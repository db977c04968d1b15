package cleaner

import (
	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
)

// newMarkdownConverter builds the shared converter. The base plugin drops
// script, style, iframe, head and comments; tables keep their structure with
// single-space cell padding.
func newMarkdownConverter() *converter.Converter {
	return converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
			table.NewTablePlugin(
				table.WithCellPaddingBehavior(table.CellPaddingBehaviorMinimal),
			),
		),
	)
}

// ToMarkdown converts htmlContent, resolving relative link and image URLs
// against pageURL.
func ToMarkdown(conv *converter.Converter, htmlContent string, pageURL string) (string, error) {
	return conv.ConvertString(htmlContent, converter.WithDomain(pageURL))
}
