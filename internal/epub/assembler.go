// Package epub turns normalized newsletter documents into ebook container
// files, transcoding to AZW3 through the external ebook-convert tool when it
// is installed and requested.
package epub

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	goepub "github.com/go-shiori/go-epub"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Document is the assembler's input contract: everything upstream processing
// produced, ready to wrap in a container.
type Document struct {
	Title             string
	BodyHTML          string
	CSS               string
	IsTableOfContents bool
}

// Formats the caller may ask for. FormatAuto prefers AZW3 when the external
// transcoder is installed and silently settles for EPUB otherwise.
const (
	FormatAuto = "auto"
	FormatEPUB = "epub"
	FormatAZW3 = "azw3"
)

// Assembler writes container files into one output directory.
type Assembler struct {
	outputDir string
}

// NewAssembler returns an assembler writing into outputDir, creating it when
// missing.
func NewAssembler(outputDir string) (*Assembler, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	return &Assembler{outputDir: outputDir}, nil
}

// Assemble writes the document in the preferred format and reports the path
// and the format actually produced. AZW3 requests fall back to EPUB when the
// transcoder is missing or fails; the caller always gets a file or an error,
// never a silent format surprise.
func (a *Assembler) Assemble(ctx context.Context, doc *Document, author, format string) (path, produced string, err error) {
	epubPath, err := a.writeEPUB(doc, author)
	if err != nil {
		return "", "", err
	}

	wantAZW3 := format == FormatAZW3 || format == FormatAuto
	if !wantAZW3 {
		return epubPath, FormatEPUB, nil
	}

	if !CalibreAvailable() {
		if format == FormatAZW3 {
			log.Warn().Str("title", doc.Title).Msg("ebook-convert not installed, producing epub instead of azw3")
		}
		return epubPath, FormatEPUB, nil
	}

	azw3Path, err := transcodeAZW3(ctx, epubPath)
	if err != nil {
		log.Warn().Err(err).Str("title", doc.Title).Msg("azw3 transcode failed, keeping epub")
		return epubPath, FormatEPUB, nil
	}

	// The intermediate epub is scratch once the azw3 exists.
	if err := os.Remove(epubPath); err != nil {
		log.Debug().Err(err).Str("path", epubPath).Msg("could not remove intermediate epub")
	}
	return azw3Path, FormatAZW3, nil
}

// writeEPUB builds the EPUB container. The stylesheet has to round-trip
// through a temp file because the container library only takes CSS by path.
func (a *Assembler) writeEPUB(doc *Document, author string) (string, error) {
	book, err := goepub.NewEpub(doc.Title)
	if err != nil {
		return "", fmt.Errorf("creating epub: %w", err)
	}
	if author != "" {
		book.SetAuthor(author)
	}

	cssPath := ""
	if doc.CSS != "" {
		tmp := filepath.Join(os.TempDir(), "newsletter-css-"+uuid.NewString()+".css")
		if err := os.WriteFile(tmp, []byte(doc.CSS), 0o600); err != nil {
			return "", fmt.Errorf("writing stylesheet: %w", err)
		}
		defer os.Remove(tmp)

		internal, err := book.AddCSS(tmp, "stylesheet.css")
		if err != nil {
			return "", fmt.Errorf("adding stylesheet: %w", err)
		}
		cssPath = internal
	}

	sectionTitle := doc.Title
	if doc.IsTableOfContents {
		sectionTitle = "Contents"
	}
	if _, err := book.AddSection(doc.BodyHTML, sectionTitle, "content.xhtml", cssPath); err != nil {
		return "", fmt.Errorf("adding content section: %w", err)
	}

	out := filepath.Join(a.outputDir, SanitizeFilename(doc.Title)+".epub")
	if err := book.Write(out); err != nil {
		return "", fmt.Errorf("writing epub: %w", err)
	}

	log.Info().Str("path", out).Msg("wrote epub")
	return out, nil
}

var unsafeFilenameRe = regexp.MustCompile(`[^\w\s.-]`)
var filenameSpaceRe = regexp.MustCompile(`\s+`)

// SanitizeFilename reduces a document title to a safe, reasonably short file
// stem.
func SanitizeFilename(title string) string {
	name := unsafeFilenameRe.ReplaceAllString(title, "")
	name = filenameSpaceRe.ReplaceAllString(strings.TrimSpace(name), "_")
	if len(name) > 80 {
		name = name[:80]
	}
	if name == "" {
		name = "newsletter-" + uuid.NewString()[:8]
	}
	return name
}
