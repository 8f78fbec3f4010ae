package templates

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_KnownAndFallback(t *testing.T) {
	assert.Equal(t, "substack", Get("substack").Type)
	assert.Equal(t, "axios", Get("axios").Type)
	assert.Equal(t, "generic", Get("no-such-publisher").Type)
	assert.Equal(t, "generic", Get("").Type)
}

func TestRegistry_Complete(t *testing.T) {
	for typ, tmpl := range registry {
		assert.NotEmpty(t, tmpl.CSS, "template %s has no CSS", typ)
		require.NotNil(t, tmpl.Transform, "template %s has no transform", typ)
		assert.Equal(t, typ, tmpl.Type)
	}
}

func TestSubstackTransform_Restructures(t *testing.T) {
	in := `<div class="post-header"><h1>Issue 5</h1></div>` +
		`<div class="post-content"><p>Body text.</p></div>` +
		`<div class="subscribe-prompt">Subscribe now!</div>`

	out := substackTransform(in)

	assert.Contains(t, out, `class="kindle-header"`)
	assert.Contains(t, out, `class="kindle-content"`)
	assert.Contains(t, out, "Body text.")
	assert.NotContains(t, out, "Subscribe now!")
}

func TestSubstackTransform_FallsBackWithoutStructure(t *testing.T) {
	in := `<p>just a paragraph</p>`
	out := substackTransform(in)
	assert.Contains(t, out, "just a paragraph")
	assert.NotContains(t, out, "kindle-header")
}

func TestStratecheryTransform(t *testing.T) {
	in := `<h1 class="post-title">The AI Shift</h1>` +
		`<div class="post-meta">by Ben</div>` +
		`<div class="post-content"><p>Analysis.</p>` +
		`<figure><img src="chart.png"><figcaption>Revenue chart</figcaption></figure></div>` +
		`<div class="comments">comment thread</div>`

	out := stratecheryTransform(in)

	assert.Contains(t, out, "<h1>The AI Shift</h1>")
	assert.Contains(t, out, `class="article-content"`)
	assert.Contains(t, out, "Analysis.")
	assert.Contains(t, out, `class="figure"`)
	assert.Contains(t, out, "Revenue chart")
	assert.NotContains(t, out, "comment thread")
}

func TestAxiosTransform(t *testing.T) {
	in := `<h1>Axios AM</h1>` +
		`<div class="story"><div class="content-block"><p>Big news.</p></div>` +
		`<blockquote>quoted line</blockquote>` +
		`<ul><li>short bullet</li></ul></div>`

	out := axiosTransform(in)

	assert.Contains(t, out, "<h1>Axios AM</h1>")
	assert.Contains(t, out, `class="axios-section"`)
	assert.Contains(t, out, `class="quote"`)
	assert.NotContains(t, out, "<blockquote>")
	assert.Contains(t, out, "bullet-point", "short list items become bullet paragraphs")
	assert.Contains(t, out, "short bullet")
}

func TestAxiosTransform_KeepsLongListItems(t *testing.T) {
	long := strings.Repeat("wordy content ", 20)
	in := `<div class="story"><ul><li>` + long + `</li></ul></div>`

	out := axiosTransform(in)
	assert.Contains(t, out, "<li>")
}

func TestBulletinMediaTransform_PairsHeadlinesWithBriefs(t *testing.T) {
	in := `<div class="content">` +
		`<div class="headline">Market rallies</div>` +
		`<div class="brief">Stocks rose broadly.</div>` +
		`<div class="source">Reuters</div></div>`

	out := bulletinMediaTransform(in)

	assert.Contains(t, out, `class="bulletin-section"`)
	assert.Contains(t, out, `class="bulletin-headline"`)
	assert.Contains(t, out, "Stocks rose broadly.")
	assert.Contains(t, out, `class="bulletin-source"`)
}

func TestGenericTransform_RemovesClutter(t *testing.T) {
	in := `<p>Keep me.</p>` +
		`<div class="email-footer">footer junk</div>` +
		`<div id="unsubscribe-block">unsubscribe here</div>` +
		`<div class="promo-banner">buy stuff</div>`

	out := genericTransform(in)

	assert.Contains(t, out, "Keep me.")
	assert.NotContains(t, out, "footer junk")
	assert.NotContains(t, out, "unsubscribe here")
	assert.NotContains(t, out, "buy stuff")
}

func TestGenericTransform_HeadingStyles(t *testing.T) {
	in := `<h2 style="color: red; text-align: center; font-size: 40px">Title</h2>` +
		`<h3 style="color: blue">Sub</h3>`

	out := genericTransform(in)

	assert.Contains(t, out, "text-align: center")
	assert.NotContains(t, out, "color: red")
	assert.NotContains(t, out, "color: blue")
}

func TestRenameTo(t *testing.T) {
	doc, err := parseDoc(`<blockquote class="old">text</blockquote>`)
	require.NoError(t, err)

	renameTo(doc.Find("blockquote"), "div", "quote")

	out, err := doc.Find("body").Html()
	require.NoError(t, err)
	assert.Contains(t, out, `<div class="quote">text</div>`)
}
