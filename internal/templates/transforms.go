package templates

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
	"github.com/rs/zerolog/log"
)

// stratecheryTransform extracts the article body from Stratechery's blog
// markup and rebuilds it as title / date / meta / content.
func stratecheryTransform(html string) string {
	doc, err := parseDoc(html)
	if err != nil {
		return html
	}

	title := strings.TrimSpace(doc.Find("h1.post-title, h1.entry-title, .article-title").First().Text())
	if title == "" {
		title = "Stratechery"
	}

	date := ""
	if d := strings.TrimSpace(doc.Find("time, .date").First().Text()); d != "" {
		date = fmt.Sprintf(`<div class="date">%s</div>`, d)
	}

	meta := ""
	if m := innerHTML(doc.Find(".post-meta, .entry-meta"), ""); m != "" {
		meta = fmt.Sprintf(`<div class="article-info">%s</div>`, m)
	}

	// Elements that do not translate to an e-reader.
	doc.Find("div.footer, div.comments, div.related, div.subscription").Remove()

	rebuildFigures(doc)
	doc.Find("div.footnote").SetAttr("class", "footnote")

	content := innerHTML(doc.Find(".post-content, .entry-content"), "")
	if content == "" {
		content = innerHTML(doc.Find("body"), html)
	}

	return fmt.Sprintf("<h1>%s</h1>\n%s\n%s\n<div class=\"article-content\">%s</div>", title, date, meta, content)
}

// substackTransform restructures Substack's post-header/post-content layout
// and strips the platform's subscription chrome.
func substackTransform(html string) string {
	doc, err := parseDoc(html)
	if err != nil {
		return html
	}

	doc.Find("div.footer, div.social, div.subscribe-prompt, div.comments-prompt, div.subscription-widget").Remove()
	rebuildFigures(doc)

	header := innerHTML(doc.Find("div.post-header"), "")
	content := innerHTML(doc.Find("div.post-content"), "")

	if header != "" && content != "" {
		return fmt.Sprintf("<div class=\"kindle-header\">%s</div>\n<div class=\"kindle-content\">%s</div>", header, content)
	}
	return innerHTML(doc.Find("body"), html)
}

// axiosTransform keeps the story blocks, reshapes Axios's sections and "go
// deeper" callouts, and renders short list items as bullet paragraphs.
func axiosTransform(html string) string {
	doc, err := parseDoc(html)
	if err != nil {
		return html
	}

	title := strings.TrimSpace(doc.Find("h1").First().Text())
	if title == "" {
		title = strings.TrimSpace(doc.Find(`div[class*="headline"]`).First().Text())
	}
	if title == "" {
		title = "Axios Newsletter"
	}

	renameTo(doc.Find(`div[class*="content-block"]`), "div", "axios-section")
	renameTo(doc.Find(`div[class*="go-deeper"]`), "div", "axios-highlight")
	renameTo(doc.Find("blockquote"), "div", "quote")

	// Axios writes one-liner bullets as list items; keep real lists intact.
	doc.Find("li").Each(func(_ int, s *goquery.Selection) {
		body, err := s.Html()
		if err != nil || len(body) >= 150 {
			return
		}
		s.ReplaceWithHtml(fmt.Sprintf(`<p><span class="bullet-point">•</span> %s</p>`, body))
	})

	content := ""
	stories := doc.Find("div.story")
	if stories.Length() > 0 {
		var parts []string
		stories.Each(func(_ int, s *goquery.Selection) {
			if part, err := goquery.OuterHtml(s); err == nil {
				parts = append(parts, part)
			}
		})
		content = strings.Join(parts, "\n")
	} else {
		content = innerHTML(doc.Find("body"), html)
	}

	return fmt.Sprintf("<h1>%s</h1>\n<div class=\"byline\">Axios</div>\n<div class=\"axios-content\">%s</div>", title, content)
}

// bulletinMediaTransform pairs headline/brief blocks into sections and tags
// categories and source citations.
func bulletinMediaTransform(html string) string {
	doc, err := parseDoc(html)
	if err != nil {
		return html
	}

	title := strings.TrimSpace(doc.Find("div.headline").First().Text())
	if title == "" {
		title = strings.TrimSpace(doc.Find("title").First().Text())
	}
	if title == "" {
		title = "Bulletin Media Briefing"
	}

	date := ""
	if d := strings.TrimSpace(doc.Find("div.date").First().Text()); d != "" {
		date = fmt.Sprintf(`<div class="bulletin-date">%s</div>`, d)
	}

	renameTo(doc.Find("div.category"), "div", "bulletin-category")
	renameTo(doc.Find("div.source"), "div", "bulletin-source")

	// A headline immediately followed by its brief forms one news section.
	doc.Find("div.headline").Each(func(_ int, s *goquery.Selection) {
		brief := s.NextFiltered("div.brief")
		if brief.Length() == 0 {
			return
		}
		h, err1 := s.Html()
		b, err2 := brief.Html()
		if err1 != nil || err2 != nil {
			return
		}
		brief.Remove()
		s.ReplaceWithHtml(fmt.Sprintf(
			"<div class=\"bulletin-section\"><div class=\"bulletin-headline\">%s</div><div class=\"bulletin-brief\">%s</div></div>", h, b))
	})

	content := innerHTML(doc.Find("#content, div.content"), "")
	if content == "" {
		content = innerHTML(doc.Find("body"), html)
	}

	return fmt.Sprintf("<h1>%s</h1>\n%s\n<div class=\"bulletin-content\">%s</div>", title, date, content)
}

// oneTechTransform maps OneTech's section/highlight blocks onto the
// template's classes.
func oneTechTransform(html string) string {
	doc, err := parseDoc(html)
	if err != nil {
		return html
	}

	title := strings.TrimSpace(doc.Find("h1").First().Text())
	if title == "" {
		title = strings.TrimSpace(doc.Find(`div[class*="title"]`).First().Text())
	}
	if title == "" {
		title = "OneTech Newsletter"
	}

	author := ""
	if a := strings.TrimSpace(doc.Find(`div[class*="author"]`).First().Text()); a != "" {
		author = fmt.Sprintf(`<div class="ot-author">%s</div>`, a)
	}

	renameTo(doc.Find(`div[class*="section"]`), "div", "ot-section")
	renameTo(doc.Find(`div[class*="highlight"]`), "div", "ot-highlight")

	content := innerHTML(doc.Find(`div[class*="content"]`), "")
	if content == "" {
		content = innerHTML(doc.Find("body"), html)
	}

	return fmt.Sprintf("<h1>%s</h1>\n%s\n<div class=\"onetech-content\">%s</div>", title, author, content)
}

// jeffSelingoTransform reshapes the newsletter's sections, summaries and
// quotes and drops the bottom block.
func jeffSelingoTransform(html string) string {
	doc, err := parseDoc(html)
	if err != nil {
		return html
	}

	title := strings.TrimSpace(doc.Find(`div[class*="title"]`).First().Text())
	if title == "" {
		title = strings.TrimSpace(doc.Find("h1").First().Text())
	}
	if title == "" {
		title = "Jeff Selingo Newsletter"
	}

	issue := ""
	if v := strings.TrimSpace(doc.Find(`div[class*="issue"]`).First().Text()); v != "" {
		issue = fmt.Sprintf(`<div class="js-issue-number">%s</div>`, v)
	}

	doc.Find(`div[class*="bottom"]`).Remove()
	renameTo(doc.Find(`div[class*="section"]`), "div", "js-section")
	renameTo(doc.Find(`div[class*="summary"]`), "div", "js-summary")
	renameTo(doc.Find("blockquote"), "div", "js-quote")

	content := innerHTML(doc.Find(`div[class*="content-body"], div[class*="main-content"]`), "")
	if content == "" {
		content = innerHTML(doc.Find("body"), html)
	}

	return fmt.Sprintf("<h1>%s</h1>\n%s\n<div class=\"js-content\">%s</div>", title, issue, content)
}

// genericTransform strips common newsletter clutter and, for heavyweight
// full-page markup, falls back to readability extraction to find the
// article body.
func genericTransform(html string) string {
	doc, err := parseDoc(html)
	if err != nil {
		return html
	}

	doc.Find(`div[class*="footer"], div[id*="footer"], div[class*="unsubscribe"], div[id*="unsubscribe"],` +
		`div[class*="social-media"], div[class*="advertisement"], div[class*="banner"], div[class*="promo"]`).Remove()

	// Keep only alignment on heading styles; everything else fights the
	// template stylesheet.
	doc.Find("h1,h2,h3,h4,h5,h6").Each(func(_ int, s *goquery.Selection) {
		style, ok := s.Attr("style")
		if !ok {
			return
		}
		if i := strings.Index(strings.ToLower(style), "text-align"); i >= 0 {
			frag := style[i:]
			if j := strings.Index(frag, ";"); j >= 0 {
				frag = frag[:j]
			}
			s.SetAttr("style", frag)
		} else {
			s.RemoveAttr("style")
		}
	})

	cleaned := innerHTML(doc.Find("body"), html)

	// Full-page markup with table scaffolding tends to bury the article;
	// let readability dig it out when it finds something substantial.
	if strings.Contains(strings.ToLower(html), "<html") && strings.Contains(strings.ToLower(html), "<table") {
		article, err := readability.FromReader(strings.NewReader(cleaned), nil)
		if err == nil && len(strings.TrimSpace(article.Content)) > 200 {
			return article.Content
		}
		if err != nil {
			log.Debug().Err(err).Msg("readability extraction failed, keeping cleaned markup")
		}
	}

	return cleaned
}

// rebuildFigures converts <figure>/<figcaption> pairs into the .figure /
// .image-caption structure every template styles.
func rebuildFigures(doc *goquery.Document) {
	doc.Find("figure").Each(func(_ int, s *goquery.Selection) {
		img := s.Find("img").First()
		src, ok := img.Attr("src")
		if !ok || src == "" {
			return
		}
		caption := strings.TrimSpace(s.Find("figcaption").First().Text())
		alt := caption
		if alt == "" {
			alt = "Figure"
		}

		out := fmt.Sprintf(`<div class="figure"><img src="%s" alt="%s" class="newsletter-image">`, src, alt)
		if caption != "" {
			out += fmt.Sprintf(`<div class="image-caption">%s</div>`, caption)
		}
		out += "</div>"
		s.ReplaceWithHtml(out)
	})
}
