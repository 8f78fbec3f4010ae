package images

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felo/kindle-newsletter/internal/parser"
)

var pngBytes = []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a}

func imageAttachment(contentID, filename string) parser.Attachment {
	return parser.Attachment{
		ContentID:   contentID,
		Filename:    filename,
		ContentType: "image/png",
		Disposition: parser.DispositionInline,
		Data:        pngBytes,
	}
}

func TestBuild_IndexesAttachmentImages(t *testing.T) {
	msg := &parser.Message{
		BodyHTML:    `<img src="cid:logo@example.com">`,
		Attachments: []parser.Attachment{imageAttachment("logo@example.com", "logo.png")},
	}

	ix := Build(msg)

	require.Len(t, ix.Records(), 1)
	rec := ix.Lookup("cid:logo@example.com")
	require.NotNil(t, rec, "raw cid alias should resolve")
	assert.Same(t, rec, ix.Lookup("logo.png"), "filename alias should hit the same record")
	assert.Contains(t, rec.Src(), "data:image/png;base64,")
	assert.True(t, rec.Inline, "referenced attachment should be classified inline")
	assert.False(t, rec.Pending())
}

func TestBuild_SkipsNonImagesAndEmptyPayloads(t *testing.T) {
	msg := &parser.Message{
		Attachments: []parser.Attachment{
			{ContentID: "doc1", Filename: "doc.pdf", ContentType: "application/pdf", Data: []byte("x")},
			{ContentID: "empty", Filename: "empty.png", ContentType: "image/png"},
		},
	}

	ix := Build(msg)
	assert.Empty(t, ix.Records())
}

func TestBuild_AliasFirstWriterWins(t *testing.T) {
	msg := &parser.Message{
		Attachments: []parser.Attachment{
			imageAttachment("first@example.com", "logo.png"),
			imageAttachment("second@example.com", "logo.png"),
		},
	}

	ix := Build(msg)

	require.Len(t, ix.Records(), 2)
	assert.Same(t, ix.Records()[0], ix.Lookup("logo.png"),
		"shared filename alias belongs to the first record")
	assert.Same(t, ix.Records()[1], ix.Lookup("cid:second@example.com"))
}

func TestBuild_SynthesizesIDs(t *testing.T) {
	att := imageAttachment("", "")
	msg := &parser.Message{Attachments: []parser.Attachment{att}}

	ix := Build(msg)

	require.Len(t, ix.Records(), 1)
	rec := ix.Records()[0]
	assert.Equal(t, "image_0", rec.ID)
	assert.Equal(t, "image_0.png", rec.Filename)
}

func TestAddExternal_DeduplicatesByURL(t *testing.T) {
	ix := Build(&parser.Message{})

	a := ix.AddExternal("https://example.com/photos/pic.jpg")
	b := ix.AddExternal("https://example.com/photos/pic.jpg")

	assert.Same(t, a, b)
	assert.True(t, a.Pending())
	assert.True(t, a.External)
	assert.Equal(t, "https://example.com/photos/pic.jpg", a.Src(),
		"pending record falls back to its URL")
}

func TestAddExternal_GuessesTypeFromExtension(t *testing.T) {
	ix := Build(&parser.Message{})

	tests := []struct {
		url      string
		wantType string
		wantName string
	}{
		{"https://cdn.example.com/photos/pic.png", "image/png", "pic.png"},
		{"https://cdn.example.com/anim.gif?w=600", "image/gif", "anim.gif"},
		{"https://cdn.example.com/photo.jpeg", "image/jpeg", "photo.jpeg"},
		{"https://cdn.example.com/mystery", "image/jpeg", "mystery"},
	}
	for _, tt := range tests {
		rec := ix.AddExternal(tt.url)
		assert.Equal(t, tt.wantType, rec.ContentType, tt.url)
		assert.Equal(t, tt.wantName, rec.Filename, tt.url)
	}
}

func TestLookupFuzzy(t *testing.T) {
	msg := &parser.Message{Attachments: []parser.Attachment{imageAttachment("header-img-123", "")}}
	ix := Build(msg)

	assert.NotNil(t, ix.LookupFuzzy("header-img-123@mailer.example.com"))
	assert.Nil(t, ix.LookupFuzzy("zzz"))
}

func TestEmbeddable_ExcludesTracking(t *testing.T) {
	msg := &parser.Message{Attachments: []parser.Attachment{imageAttachment("a", "a.png")}}
	ix := Build(msg)
	tracker := ix.AddExternal("https://example.com/t.gif")
	tracker.Tracking = true

	embeddable := ix.Embeddable()
	require.Len(t, embeddable, 1)
	assert.Equal(t, ix.Records()[0], embeddable[0])
}

func TestBasename(t *testing.T) {
	tests := []struct {
		in, out string
	}{
		{"https://cdn.example.com/a/b/pic.jpg?w=600", "pic.jpg"},
		{"pic.jpg", "pic.jpg"},
		{"/path/to/pic.png#frag", "pic.png"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.out, basename(tt.in))
	}
}
