package normalize

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog/log"
)

// clutterSubstrings match id/class fragments of blocks that carry no content
// worth reading on an e-reader.
var clutterSubstrings = []string{
	"footer",
	"unsubscribe",
	"social-share",
	"social-links",
	"email-preferences",
	"manage-subscription",
}

var sanitizePolicy = buildPolicy()

// buildPolicy extends the UGC baseline with the attributes the rewrite
// pipeline depends on: inline styles for the style filter, classes and ids
// for template selectors, and data URIs for embedded images.
func buildPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("style", "class", "id").Globally()
	p.AllowAttrs("width", "height", "alt").OnElements("img")
	p.AllowAttrs("data-img-id").OnElements("img")
	p.AllowAttrs("border", "cellpadding", "cellspacing").OnElements("table")
	p.AllowDataURIImages()
	return p
}

// Preclean removes newsletter noise from HTML before the template transform
// runs: tracking pixels, footer and unsubscribe blocks, hidden elements, and
// a few publisher-specific extras keyed by the detected type. The result is
// sanitized through a fixed policy.
func Preclean(html, newsletterType string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		log.Warn().Err(err).Msg("precleaning skipped: unparseable markup")
		return sanitizePolicy.Sanitize(html)
	}

	removeTinyImages(doc)
	removeClutterBlocks(doc)
	removeHiddenElements(doc)
	applyPublisherCleanup(doc, newsletterType, html)

	out, err := doc.Find("body").Html()
	if err != nil || strings.TrimSpace(out) == "" {
		out = html
	}
	return sanitizePolicy.Sanitize(out)
}

func removeTinyImages(doc *goquery.Document) {
	doc.Find("img").Each(func(_ int, s *goquery.Selection) {
		if dimensionAtMost(s, "width", 1) && dimensionAtMost(s, "height", 1) {
			s.Remove()
		}
	})
}

func dimensionAtMost(s *goquery.Selection, attr string, max int) bool {
	v, ok := s.Attr(attr)
	if !ok {
		return false
	}
	v = strings.TrimSpace(strings.TrimSuffix(v, "px"))
	switch v {
	case "0":
		return true
	case "1":
		return max >= 1
	}
	return false
}

func removeClutterBlocks(doc *goquery.Document) {
	doc.Find("div, table, td, section").Each(func(_ int, s *goquery.Selection) {
		id, _ := s.Attr("id")
		class, _ := s.Attr("class")
		haystack := strings.ToLower(id + " " + class)
		for _, frag := range clutterSubstrings {
			if strings.Contains(haystack, frag) {
				s.Remove()
				return
			}
		}
	})
}

func removeHiddenElements(doc *goquery.Document) {
	doc.Find("[style]").Each(func(_ int, s *goquery.Selection) {
		style, _ := s.Attr("style")
		if strings.Contains(strings.ReplaceAll(strings.ToLower(style), " ", ""), "display:none") {
			s.Remove()
		}
	})
}

// applyPublisherCleanup runs the optional per-publisher extras. Each branch
// keeps the original substring guard so a mislabeled detection cannot strip
// content the markup does not actually carry.
func applyPublisherCleanup(doc *goquery.Document, newsletterType, html string) {
	lower := strings.ToLower(html)
	switch newsletterType {
	case "axios":
		if strings.Contains(lower, "axios") {
			doc.Find("nav").Remove()
			doc.Find(`div[class*="go-deeper"]`).AddClass("axios-highlight")
		}
	case "substack":
		if strings.Contains(lower, "substack") {
			doc.Find("div.subscription-widget, div.subscribe-widget, div.paywall").Remove()
		}
	case "bulletinmedia":
		if strings.Contains(lower, "bulletin") {
			doc.Find(`div[class*="advert"], div[class*="sponsor"]`).Remove()
		}
	}
}

var (
	viewInBrowserRe = regexp.MustCompile(`(?im)^.*view\b.{0,30}\bin (?:your |the )?browser.*$`)
	parenURLRe      = regexp.MustCompile(`\(\s*https?://[^)\s]+\s*\)`)
	accessTokenRe   = regexp.MustCompile(`[?&]access_token=[^\s&]+`)
	asteriskRunRe   = regexp.MustCompile(`\*{6,}`)
	textFooterRe    = regexp.MustCompile(`(?is)\n[^\n]*unsubscribe[^\n]*(?:\n.*)?$`)
)

// PrecleanText strips the plain-text equivalents of newsletter chrome:
// view-in-browser lines, parenthesized bare URLs, access-token query
// fragments, oversized asterisk dividers, and the trailing unsubscribe
// footer.
func PrecleanText(text string) string {
	text = viewInBrowserRe.ReplaceAllString(text, "")
	text = parenURLRe.ReplaceAllString(text, "")
	text = accessTokenRe.ReplaceAllString(text, "")
	text = asteriskRunRe.ReplaceAllString(text, "*****")
	text = textFooterRe.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}
