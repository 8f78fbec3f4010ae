// Package templates maps a detected newsletter type to the CSS and content
// transform that reshape it for e-reader output. The registry is built once
// and read-only afterwards.
package templates

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Template pairs publisher CSS with a content transform. Transform reshapes
// raw newsletter markup into the clean structure the normalizer expects; it
// returns its input unchanged when the markup cannot be parsed.
type Template struct {
	Type      string
	CSS       string
	Transform func(html string) string
}

var registry = map[string]*Template{
	"stratechery":   {Type: "stratechery", CSS: stratecheryCSS, Transform: stratecheryTransform},
	"substack":      {Type: "substack", CSS: substackCSS, Transform: substackTransform},
	"axios":         {Type: "axios", CSS: axiosCSS, Transform: axiosTransform},
	"bulletinmedia": {Type: "bulletinmedia", CSS: bulletinMediaCSS, Transform: bulletinMediaTransform},
	"onetech":       {Type: "onetech", CSS: oneTechCSS, Transform: oneTechTransform},
	"jeffselingo":   {Type: "jeffselingo", CSS: jeffSelingoCSS, Transform: jeffSelingoTransform},
	"generic":       {Type: "generic", CSS: genericCSS, Transform: genericTransform},
}

// Get returns the template for a newsletter type, falling back to the
// generic template for unknown types.
func Get(newsletterType string) *Template {
	if t, ok := registry[newsletterType]; ok {
		return t
	}
	return registry["generic"]
}

func parseDoc(html string) (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(strings.NewReader(html))
}

// innerHTML returns the first matched element's inner markup, or the
// fallback when the selection is empty or unserializable.
func innerHTML(sel *goquery.Selection, fallback string) string {
	if sel.Length() == 0 {
		return fallback
	}
	out, err := sel.First().Html()
	if err != nil || strings.TrimSpace(out) == "" {
		return fallback
	}
	return out
}

// renameTo turns every matched element into the given tag, replacing its
// class list.
func renameTo(sel *goquery.Selection, tag, class string) {
	sel.Each(func(_ int, s *goquery.Selection) {
		for _, node := range s.Nodes {
			node.Data = tag
			node.DataAtom = 0
			node.Namespace = ""
		}
		if class != "" {
			s.RemoveAttr("class")
			s.SetAttr("class", class)
		}
	})
}
