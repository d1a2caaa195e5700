package catalog

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const blockTags = "br, p, div, li, tr, td, th, h1, h2, h3, h4, h5, h6"

// PlainText strips markup and entities from catalog prose. Block boundaries become spaces so
// words from adjacent paragraphs do not glue together.
func PlainText(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return strings.Join(strings.Fields(s), " ")
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return strings.Join(strings.Fields(s), " ")
	}
	doc.Find("script, style").Remove()
	doc.Find(blockTags).AfterHtml(" ")
	return strings.Join(strings.Fields(doc.Text()), " ")
}
