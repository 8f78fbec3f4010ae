package convert

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felo/kindle-newsletter/internal/config"
	"github.com/felo/kindle-newsletter/internal/epub"
)

func newTestConverter(t *testing.T) (*Converter, string) {
	t.Helper()
	outDir := t.TempDir()
	cfg := &config.Config{
		OutputDir:        outDir,
		FormatPreference: epub.FormatEPUB,
		FetchBlocking:    true,
		FetchTimeoutSec:  10,
		FetchConcurrency: 2,
	}
	conv, err := New(cfg, nil)
	require.NoError(t, err)
	return conv, outDir
}

func TestConvertFile_SubstackNewsletter(t *testing.T) {
	conv, _ := newTestConverter(t)

	res := conv.ConvertFile(context.Background(), "testdata/substack.eml")

	require.NoError(t, res.Err)
	assert.Equal(t, "substack", res.NewsletterType)
	assert.Equal(t, "Tech Weekly - Issue 7", res.Title)
	assert.Equal(t, epub.FormatEPUB, res.Format)
	assert.FileExists(t, res.OutputPath)
}

func TestConvertFile_PlainTextBody(t *testing.T) {
	conv, _ := newTestConverter(t)

	res := conv.ConvertFile(context.Background(), "testdata/plaintext.eml")

	require.NoError(t, res.Err)
	assert.Equal(t, "generic", res.NewsletterType)
	assert.FileExists(t, res.OutputPath)
}

func TestConvertFile_MalformedDegradesToStandIn(t *testing.T) {
	conv, _ := newTestConverter(t)

	res := conv.ConvertFile(context.Background(), "testdata/malformed.eml")

	require.NoError(t, res.Err, "parse failures must still yield a convertible document")
	assert.Equal(t, "Error parsing newsletter", res.Title)
	assert.FileExists(t, res.OutputPath)
}

func TestConvertFile_EmptyInputFails(t *testing.T) {
	conv, _ := newTestConverter(t)
	empty := filepath.Join(t.TempDir(), "empty.eml")
	require.NoError(t, os.WriteFile(empty, nil, 0o644))

	res := conv.ConvertFile(context.Background(), empty)

	require.Error(t, res.Err)
	assert.Contains(t, res.Err.Error(), "empty")
}

func TestConvertFile_MissingInputFails(t *testing.T) {
	conv, _ := newTestConverter(t)
	res := conv.ConvertFile(context.Background(), "testdata/no-such-file.eml")
	assert.Error(t, res.Err)
}

func TestConvertBatch_PartialSuccessTally(t *testing.T) {
	conv, _ := newTestConverter(t)
	empty := filepath.Join(t.TempDir(), "empty.eml")
	require.NoError(t, os.WriteFile(empty, nil, 0o644))

	summary := conv.ConvertBatch(context.Background(), []string{"testdata/substack.eml", empty})

	assert.Equal(t, 2, summary.Total)
	assert.Equal(t, 1, summary.Succeeded)
	assert.Equal(t, 1, summary.Failed)
	require.Len(t, summary.Results, 2)
	assert.NoError(t, summary.Results[0].Err)
	assert.Error(t, summary.Results[1].Err)
}

func TestConvertBatch_WritesContentsForMultipleSuccesses(t *testing.T) {
	conv, outDir := newTestConverter(t)

	summary := conv.ConvertBatch(context.Background(),
		[]string{"testdata/substack.eml", "testdata/plaintext.eml"})

	require.Equal(t, 2, summary.Succeeded)
	assert.FileExists(t, filepath.Join(outDir, "Newsletter_Digest_Contents.epub"))
}

func TestConvertBatch_NoContentsForSingleSuccess(t *testing.T) {
	conv, outDir := newTestConverter(t)

	summary := conv.ConvertBatch(context.Background(), []string{"testdata/substack.eml"})

	require.Equal(t, 1, summary.Succeeded)
	assert.NoFileExists(t, filepath.Join(outDir, "Newsletter_Digest_Contents.epub"))
}

func TestTextToHTML(t *testing.T) {
	out := textToHTML("first para\nwith a break\n\nsecond para")

	assert.Contains(t, out, "<p>first para<br>with a break</p>")
	assert.Contains(t, out, "<p>second para</p>")
}

func TestTextToHTML_EscapesMarkup(t *testing.T) {
	out := textToHTML("a < b & c")
	assert.Contains(t, out, "a &lt; b &amp; c")
}

func TestHasConvertibleContent(t *testing.T) {
	assert.True(t, hasConvertibleContent("<p>text</p>"))
	assert.True(t, hasConvertibleContent(`<img src="data:image/png;base64,AAAA">`))
	assert.False(t, hasConvertibleContent("<div>   </div>"))
	assert.False(t, hasConvertibleContent(""))
}

func TestAuthorName(t *testing.T) {
	msg := standInMessage("x.eml", assert.AnError)
	assert.Equal(t, "Newsletter", authorName(msg))
}
