package images

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

func parseFragment(html string) (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(strings.NewReader(html))
}

// renderFragment serializes the document body, falling back to the original
// markup when serialization fails.
func renderFragment(doc *goquery.Document, original string) string {
	out, err := doc.Find("body").Html()
	if err != nil {
		return original
	}
	return out
}
