package images

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"
)

// trackingDenylist marks remote images that exist for analytics, not content.
var trackingDenylist = []string{
	"tracking",
	"beacon",
	"pixel",
	"analytics",
	"utm_",
	"spacer.gif",
	"1x1.gif",
	"transparent.gif",
}

// markerAttr tags nodes whose src has already been resolved so later passes
// leave them alone.
const markerAttr = "data-img-id"

// Resolver rewrites img src references against an Index.
type Resolver struct {
	index *Index
}

// NewResolver returns a resolver bound to one message's index.
func NewResolver(ix *Index) *Resolver {
	return &Resolver{index: ix}
}

// Resolve rewrites every resolvable src in the document: cid: references
// first, then filename/URL references. Unresolvable references are left
// untouched and logged; tracking pixels are removed outright. External
// images without local bytes become pending records for the fetch phase.
func (r *Resolver) Resolve(html string) string {
	doc, err := parseFragment(html)
	if err != nil {
		log.Warn().Err(err).Msg("image resolution skipped: unparseable markup")
		return html
	}

	r.resolveInline(doc)
	r.resolveByFilenameOrURL(doc)

	return renderFragment(doc, html)
}

// resolveInline handles src="cid:..." references: exact alias lookup, then
// the prefix-stripped token, then a substring fuzzy match as last resort.
func (r *Resolver) resolveInline(doc *goquery.Document) {
	doc.Find("img").Each(func(_ int, sel *goquery.Selection) {
		src, ok := sel.Attr("src")
		if !ok || !strings.HasPrefix(strings.ToLower(src), "cid:") {
			return
		}

		token := strings.Trim(src[4:], "<>")
		rec := r.index.Lookup(src)
		if rec == nil {
			rec = r.index.Lookup(token)
		}
		if rec == nil {
			rec = r.index.LookupFuzzy(token)
		}
		if rec == nil {
			log.Info().Str("cid", src).Msg("no attachment matches cid reference")
			return
		}

		sel.SetAttr("src", rec.Src())
		sel.SetAttr(markerAttr, rec.ID)
		log.Debug().Str("cid", src).Str("id", rec.ID).Msg("resolved cid reference")
	})
}

// resolveByFilenameOrURL handles remaining non-CID, non-data src values that
// end in an image extension: exact URL match first, then basename match.
// Unmatched remote images are classified and either dropped (tracking) or
// registered for the remote fetch phase.
func (r *Resolver) resolveByFilenameOrURL(doc *goquery.Document) {
	doc.Find("img").Each(func(_ int, sel *goquery.Selection) {
		if _, done := sel.Attr(markerAttr); done {
			return
		}
		src, ok := sel.Attr("src")
		if !ok || src == "" {
			return
		}
		lower := strings.ToLower(src)
		if strings.HasPrefix(lower, "cid:") || strings.HasPrefix(lower, "data:") {
			return
		}
		if !hasImageExtension(src) {
			return
		}

		if rec := r.index.Lookup(src); rec != nil {
			sel.SetAttr("src", rec.Src())
			sel.SetAttr(markerAttr, rec.ID)
			log.Debug().Str("url", src).Str("id", rec.ID).Msg("resolved by url")
			return
		}
		if rec := r.index.Lookup(basename(src)); rec != nil {
			sel.SetAttr("src", rec.Src())
			sel.SetAttr(markerAttr, rec.ID)
			log.Debug().Str("filename", basename(src)).Str("id", rec.ID).Msg("resolved by filename")
			return
		}

		if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
			log.Info().Str("src", src).Msg("unresolvable local image reference")
			return
		}

		if IsTrackingPixel(src, sel) {
			sel.Remove()
			log.Info().Str("url", src).Msg("removed tracking pixel")
			return
		}

		rec := r.index.AddExternal(src)
		sel.SetAttr(markerAttr, rec.ID)
		log.Debug().Str("url", src).Str("id", rec.ID).Msg("scheduled external image")
	})
}

// Embed replaces the src of every marker-tagged node with its record's
// current best source. Run after the fetch phase so downloaded images move
// from remote URLs to inline data URIs.
func (r *Resolver) Embed(html string) string {
	doc, err := parseFragment(html)
	if err != nil {
		return html
	}

	doc.Find("img[" + markerAttr + "]").Each(func(_ int, sel *goquery.Selection) {
		id, _ := sel.Attr(markerAttr)
		if rec := r.index.Lookup(id); rec != nil {
			sel.SetAttr("src", rec.Src())
		}
	})

	return renderFragment(doc, html)
}

// IsTrackingPixel reports whether an image reference is a tracking pixel:
// the URL contains a denylisted substring, or the tag declares a width or
// height of two pixels or less.
func IsTrackingPixel(url string, sel *goquery.Selection) bool {
	lower := strings.ToLower(url)
	for _, bad := range trackingDenylist {
		if strings.Contains(lower, bad) {
			return true
		}
	}
	return tinyDimension(sel, "width") || tinyDimension(sel, "height")
}

func tinyDimension(sel *goquery.Selection, attr string) bool {
	if sel == nil {
		return false
	}
	v, ok := sel.Attr(attr)
	if !ok {
		return false
	}
	v = strings.TrimSpace(strings.TrimSuffix(v, "px"))
	switch v {
	case "0", "1", "2":
		return true
	}
	return false
}

func hasImageExtension(src string) bool {
	name := strings.ToLower(basename(src))
	for ext := range extToMime {
		if strings.HasSuffix(name, "."+ext) {
			return true
		}
	}
	return false
}
