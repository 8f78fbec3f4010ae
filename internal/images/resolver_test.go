package images

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felo/kindle-newsletter/internal/parser"
)

func newTestResolver(t *testing.T, html string, atts ...parser.Attachment) (*Resolver, *Index) {
	t.Helper()
	ix := Build(&parser.Message{BodyHTML: html, Attachments: atts})
	return NewResolver(ix), ix
}

func TestResolve_CIDReference(t *testing.T) {
	html := `<p>hi</p><img src="cid:logo@example.com" alt="logo">`
	r, _ := newTestResolver(t, html, imageAttachment("logo@example.com", "logo.png"))

	out := r.Resolve(html)

	assert.Contains(t, out, "data:image/png;base64,")
	assert.NotContains(t, out, "cid:")
	assert.Contains(t, out, markerAttr, "resolved node should carry the marker")
}

func TestResolve_FilenameReference(t *testing.T) {
	html := `<img src="logo.png">`
	r, _ := newTestResolver(t, html, imageAttachment("logo@example.com", "logo.png"))

	out := r.Resolve(html)
	assert.Contains(t, out, "data:image/png;base64,")
}

func TestResolve_UnknownCIDLeftUntouched(t *testing.T) {
	html := `<img src="cid:ghost@example.com">`
	r, _ := newTestResolver(t, html)

	out := r.Resolve(html)
	assert.Contains(t, out, "cid:ghost@example.com")
}

func TestResolve_TrackingPixelRemoved(t *testing.T) {
	html := `<p>text</p><img src="https://mailer.example.com/spacer.gif" width="1" height="1">`
	r, _ := newTestResolver(t, html)

	out := r.Resolve(html)
	assert.NotContains(t, out, "spacer.gif")
	assert.Contains(t, out, "text")
}

func TestResolve_SchedulesExternalImage(t *testing.T) {
	html := `<img src="https://cdn.example.com/photos/pic.jpg">`
	r, ix := newTestResolver(t, html)

	out := r.Resolve(html)

	require.Len(t, ix.Records(), 1)
	rec := ix.Records()[0]
	assert.True(t, rec.Pending())
	assert.Contains(t, out, markerAttr)
	assert.Contains(t, out, "https://cdn.example.com/photos/pic.jpg",
		"pending image keeps its URL until the fetch lands")
}

func TestEmbed_AfterFetch(t *testing.T) {
	html := `<img src="https://cdn.example.com/photos/pic.jpg">`
	r, ix := newTestResolver(t, html)
	out := r.Resolve(html)

	ix.Records()[0].SetData("image/jpeg", []byte{0xff, 0xd8})

	embedded := r.Embed(out)
	assert.Contains(t, embedded, "data:image/jpeg;base64,")
	assert.NotContains(t, embedded, `src="https://cdn.example.com`)
}

func TestResolve_UnparseableMarkupReturnedAsIs(t *testing.T) {
	r, _ := newTestResolver(t, "")
	in := "plain text, no markup"
	assert.Contains(t, r.Resolve(in), "plain text")
}

func TestIsTrackingPixel(t *testing.T) {
	sel := func(markup string) *goquery.Selection {
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
		require.NoError(t, err)
		return doc.Find("img")
	}

	tests := []struct {
		name   string
		url    string
		markup string
		want   bool
	}{
		{"denylist substring", "https://x.com/tracking/open.gif", `<img>`, true},
		{"utm marker", "https://x.com/img.gif?utm_source=mail", `<img>`, true},
		{"one pixel wide", "https://x.com/img.gif", `<img width="1">`, true},
		{"two pixels with px suffix", "https://x.com/img.gif", `<img height="2px">`, true},
		{"real image", "https://x.com/photo.jpg", `<img width="600" height="400">`, false},
		{"no dimensions, clean url", "https://x.com/photo.jpg", `<img>`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTrackingPixel(tt.url, sel(tt.markup)))
		})
	}
}

func TestHasImageExtension(t *testing.T) {
	assert.True(t, hasImageExtension("https://x.com/a/pic.jpeg?x=1"))
	assert.True(t, hasImageExtension("pic.webp"))
	assert.False(t, hasImageExtension("https://x.com/page.html"))
	assert.False(t, hasImageExtension("https://x.com/track"))
}
