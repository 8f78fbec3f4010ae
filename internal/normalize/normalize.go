// Package normalize holds the universal e-reader rewrite pass. Every
// document goes through the same ordered rule pipeline after its template
// transform ran; each rule parses, transforms and re-serializes the tree on
// its own, so a failing rule leaves the document exactly as the previous
// rule produced it.
package normalize

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/aymerick/douceur/parser"
	"github.com/rs/zerolog/log"
	"golang.org/x/net/html"

	"github.com/felo/kindle-newsletter/internal/images"
)

// Canonical inline styles set by the pipeline. The style filter only keeps
// an allow-list of properties, so these are reapplied in full whenever a
// required property is missing; running the pipeline twice converges on the
// same document.
const (
	imgInlineStyle   = "max-width:100%;height:auto;display:block;margin:0.5em auto"
	blockInlineStyle = "max-width:100%;margin:0.8em 0"
	keptTableStyle   = "width:100%;border-collapse:collapse;margin:1em auto"
)

var styleAllowPrefixes = []string{"text-align", "display", "margin", "padding"}

// Normalizer applies the ordered rewrite rules against one document's image
// records.
type Normalizer struct {
	records []*images.Record
}

// New returns a normalizer over the document's embeddable image records.
func New(records []*images.Record) *Normalizer {
	return &Normalizer{records: records}
}

type rule struct {
	name  string
	apply func(string) (string, error)
}

// Apply runs every rewrite rule in order. A rule that errors or panics is
// skipped: the document reverts to its pre-rule state and the pipeline
// continues.
func (n *Normalizer) Apply(doc string) string {
	rules := []rule{
		{"strip-script-style-comments", stripScriptStyleComments},
		{"unwrap-font", unwrapFont},
		{"filter-inline-styles", filterInlineStyles},
		{"remove-spacers", removeSpacers},
		{"reclassify-tables", reclassifyTables},
		{"strip-bare-urls", stripBareURLs},
		{"responsive-styles", addResponsiveStyles},
		{"resolve-placeholders", n.resolvePlaceholders},
		{"heading-anchors", anchorHeadings},
		{"collapse-br-runs", collapseBrRuns},
		{"tag-lead-paragraphs", tagLeadParagraphs},
	}

	for _, r := range rules {
		next, err := runGuarded(r, doc)
		if err != nil {
			log.Error().Err(err).Str("rule", r.name).Msg("rewrite rule failed, keeping prior document")
			continue
		}
		doc = next
	}
	return doc
}

func runGuarded(r rule, doc string) (out string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic: %v", rec)
		}
	}()
	return r.apply(doc)
}

func parseFrag(doc string) (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(strings.NewReader(doc))
}

func renderFrag(gd *goquery.Document, fallback string) string {
	out, err := gd.Find("body").Html()
	if err != nil || strings.TrimSpace(out) == "" {
		return fallback
	}
	return out
}

// Rule 1: drop script and style subtrees and every comment node.
func stripScriptStyleComments(doc string) (string, error) {
	gd, err := parseFrag(doc)
	if err != nil {
		return doc, err
	}
	gd.Find("script, style").Remove()
	removeComments(gd.Get(0))
	return renderFrag(gd, doc), nil
}

func removeComments(n *html.Node) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		if c.Type == html.CommentNode {
			n.RemoveChild(c)
		} else {
			removeComments(c)
		}
		c = next
	}
}

// Rule 2: unwrap <font> tags, keeping their content.
func unwrapFont(doc string) (string, error) {
	gd, err := parseFrag(doc)
	if err != nil {
		return doc, err
	}
	gd.Find("font").Each(func(_ int, s *goquery.Selection) {
		inner, err := s.Html()
		if err != nil {
			return
		}
		s.ReplaceWithHtml(inner)
	})
	return renderFrag(gd, doc), nil
}

// Rule 3: keep only allow-listed properties in inline styles; drop the
// attribute when nothing survives.
func filterInlineStyles(doc string) (string, error) {
	gd, err := parseFrag(doc)
	if err != nil {
		return doc, err
	}
	gd.Find("[style]").Each(func(_ int, s *goquery.Selection) {
		style, _ := s.Attr("style")
		filtered := filterStyle(style)
		if filtered == "" {
			s.RemoveAttr("style")
		} else if filtered != style {
			s.SetAttr("style", filtered)
		}
	})
	return renderFrag(gd, doc), nil
}

func filterStyle(style string) string {
	decls, err := parser.ParseDeclarations(style)
	if err != nil {
		return ""
	}
	var kept []string
	for _, d := range decls {
		prop := strings.ToLower(strings.TrimSpace(d.Property))
		for _, prefix := range styleAllowPrefixes {
			if strings.HasPrefix(prop, prefix) {
				kept = append(kept, prop+":"+strings.TrimSpace(d.Value))
				break
			}
		}
	}
	return strings.Join(kept, ";")
}

// Rule 4: remove spacer constructs whose only content is whitespace,
// non-breaking space or <br>.
func removeSpacers(doc string) (string, error) {
	gd, err := parseFrag(doc)
	if err != nil {
		return doc, err
	}
	gd.Find("table, div, span").Each(func(_ int, s *goquery.Selection) {
		if s.Find("img").Length() > 0 {
			return
		}
		text := strings.ReplaceAll(s.Text(), "\u00a0", "")
		if strings.TrimSpace(text) != "" {
			return
		}
		// Only structural scaffolding and line breaks may remain inside.
		if s.Find("*").Not("br, div, span, table, tbody, thead, tfoot, tr, td, th").Length() > 0 {
			return
		}
		s.Remove()
	})
	return renderFrag(gd, doc), nil
}

// Rule 5: keep semantic tables (border attribute or data/table class) with a
// fixed style override; demote everything else to layout divs.
func reclassifyTables(doc string) (string, error) {
	gd, err := parseFrag(doc)
	if err != nil {
		return doc, err
	}
	gd.Find("table").Each(func(_ int, s *goquery.Selection) {
		if isSemanticTable(s) {
			s.SetAttr("style", keptTableStyle)
			return
		}
		demoteLayoutTable(s)
	})
	return renderFrag(gd, doc), nil
}

func isSemanticTable(s *goquery.Selection) bool {
	if _, ok := s.Attr("border"); ok {
		return true
	}
	class, _ := s.Attr("class")
	class = strings.ToLower(class)
	return strings.Contains(class, "data") || strings.Contains(class, "table")
}

func demoteLayoutTable(s *goquery.Selection) {
	s.Find("tr").Each(func(_ int, row *goquery.Selection) {
		retag(row, "div", "layout-row")
	})
	s.Find("td, th").Each(func(_ int, cell *goquery.Selection) {
		retag(cell, "div", "layout-cell")
	})
	// tbody/thead wrappers serve no purpose once rows are divs.
	s.Find("tbody, thead, tfoot").Each(func(_ int, grp *goquery.Selection) {
		retag(grp, "div", "")
	})
	retag(s, "div", "")
}

func retag(s *goquery.Selection, tag, class string) {
	for _, node := range s.Nodes {
		node.Data = tag
		node.DataAtom = 0
		node.Namespace = ""
	}
	s.RemoveAttr("width")
	s.RemoveAttr("height")
	s.RemoveAttr("border")
	s.RemoveAttr("cellpadding")
	s.RemoveAttr("cellspacing")
	if class != "" {
		s.SetAttr("class", class)
	}
}

var bareURLRe = regexp.MustCompile(`https?://[^\s<>"')]+`)

// Rule 6: strip raw URLs out of text unless an anchor in the document
// already carries them.
func stripBareURLs(doc string) (string, error) {
	gd, err := parseFrag(doc)
	if err != nil {
		return doc, err
	}

	hrefs := map[string]bool{}
	gd.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		hrefs[strings.TrimRight(href, "/")] = true
	})

	stripURLsInText(gd.Get(0), hrefs)
	return renderFrag(gd, doc), nil
}

func stripURLsInText(n *html.Node, hrefs map[string]bool) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && (c.Data == "a" || c.Data == "script" || c.Data == "style") {
			continue
		}
		if c.Type == html.TextNode && bareURLRe.MatchString(c.Data) {
			c.Data = bareURLRe.ReplaceAllStringFunc(c.Data, func(u string) string {
				if hrefs[strings.TrimRight(u, "/")] {
					return u
				}
				return ""
			})
			continue
		}
		stripURLsInText(c, hrefs)
	}
}

// Rule 7: give lists, blockquotes and images that lack one a responsive
// inline style. The full canonical string is reapplied whenever max-width is
// absent so earlier style filtering cannot leave a half-styled element.
func addResponsiveStyles(doc string) (string, error) {
	gd, err := parseFrag(doc)
	if err != nil {
		return doc, err
	}
	gd.Find("img").Each(func(_ int, s *goquery.Selection) {
		ensureStyle(s, imgInlineStyle)
	})
	gd.Find("ul, ol, blockquote").Each(func(_ int, s *goquery.Selection) {
		ensureStyle(s, blockInlineStyle)
	})
	return renderFrag(gd, doc), nil
}

func ensureStyle(s *goquery.Selection, canonical string) {
	style, _ := s.Attr("style")
	if strings.Contains(style, "max-width") {
		return
	}
	s.SetAttr("style", canonical)
}

var placeholderRe = regexp.MustCompile(`\[Image:\s*([^\]]+)\]`)

// Rule 8: turn [Image: description] placeholders into real <img> tags. The
// record is chosen by hashing the description modulo the record count, so
// the same description always maps to the same image within a document. The
// first occurrence of each description is replaced; repeats are dropped.
func (n *Normalizer) resolvePlaceholders(doc string) (string, error) {
	if !placeholderRe.MatchString(doc) {
		return doc, nil
	}

	var embeddable []*images.Record
	for _, rec := range n.records {
		if !rec.Tracking && rec.Src() != "" {
			embeddable = append(embeddable, rec)
		}
	}

	seen := map[string]bool{}
	out := placeholderRe.ReplaceAllStringFunc(doc, func(m string) string {
		desc := strings.TrimSpace(placeholderRe.FindStringSubmatch(m)[1])
		if seen[desc] {
			return ""
		}
		seen[desc] = true
		if len(embeddable) == 0 {
			return ""
		}
		rec := embeddable[stringHash(desc)%len(embeddable)]
		return fmt.Sprintf(`<img src="%s" alt="%s" style="%s">`,
			rec.Src(), html.EscapeString(desc), imgInlineStyle)
	})
	return out, nil
}

// stringHash is the classic 31-per-character rolling hash over 32-bit signed
// arithmetic, reduced to a non-negative value.
func stringHash(s string) int {
	var h int32
	for _, r := range s {
		h = h*31 + int32(r)
	}
	if h < 0 {
		h = -h
	}
	return int(h)
}

var slugStripRe = regexp.MustCompile(`[^a-z0-9\s-]`)
var slugSpaceRe = regexp.MustCompile(`[\s-]+`)

// Rule 9: give every heading a stable anchor id derived from its text.
// Headings that already carry an id keep it.
func anchorHeadings(doc string) (string, error) {
	gd, err := parseFrag(doc)
	if err != nil {
		return doc, err
	}
	gd.Find("h1, h2, h3, h4, h5, h6").Each(func(_ int, s *goquery.Selection) {
		if _, ok := s.Attr("id"); ok {
			return
		}
		slug := headingSlug(s.Text())
		if slug == "" {
			return
		}
		s.SetAttr("id", goquery.NodeName(s)+"-"+slug)
	})
	return renderFrag(gd, doc), nil
}

func headingSlug(text string) string {
	slug := strings.ToLower(strings.TrimSpace(text))
	slug = slugStripRe.ReplaceAllString(slug, "")
	slug = slugSpaceRe.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-")
	if len(slug) > 40 {
		slug = strings.Trim(slug[:40], "-")
	}
	return slug
}

// Rule 10: collapse runs of two or more <br> into a paragraph break.
func collapseBrRuns(doc string) (string, error) {
	gd, err := parseFrag(doc)
	if err != nil {
		return doc, err
	}
	collapseBrRunsIn(gd.Get(0))
	return renderFrag(gd, doc), nil
}

func collapseBrRunsIn(n *html.Node) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		if c.Type == html.ElementNode && c.Data == "br" {
			run := brRunAfter(c)
			if len(run) > 0 {
				for _, extra := range run {
					next = extra.NextSibling
					n.RemoveChild(extra)
				}
				c.Data = "p"
				c.DataAtom = 0
				c.Attr = []html.Attribute{{Key: "class", Val: "para-break"}}
			}
		} else {
			collapseBrRunsIn(c)
		}
		c = next
	}
}

// brRunAfter collects the <br> siblings that follow a <br>, skipping
// whitespace-only text between them. It returns the extra nodes to drop,
// whitespace included.
func brRunAfter(br *html.Node) []*html.Node {
	var run []*html.Node
	for s := br.NextSibling; s != nil; s = s.NextSibling {
		if s.Type == html.TextNode && strings.TrimSpace(s.Data) == "" {
			run = append(run, s)
			continue
		}
		if s.Type == html.ElementNode && s.Data == "br" {
			run = append(run, s)
			continue
		}
		break
	}
	// Trim trailing whitespace nodes so only nodes inside the run go.
	for len(run) > 0 {
		last := run[len(run)-1]
		if last.Type == html.TextNode {
			run = run[:len(run)-1]
		} else {
			break
		}
	}
	if len(run) == 0 {
		return nil
	}
	return run
}

// Rule 11: mark the paragraph directly after a heading so the stylesheet can
// suppress its first-line indent.
func tagLeadParagraphs(doc string) (string, error) {
	gd, err := parseFrag(doc)
	if err != nil {
		return doc, err
	}
	gd.Find("h1, h2, h3, h4, h5, h6").Each(func(_ int, s *goquery.Selection) {
		next := s.Next()
		if next.Is("p") && !next.HasClass("no-indent") {
			next.AddClass("no-indent")
		}
	})
	return renderFrag(gd, doc), nil
}
