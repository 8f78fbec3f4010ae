// Package convert wires the whole pipeline together: parse, classify,
// resolve images, clean, transform, normalize and assemble. Batch runs are
// sequential in input order; only image fetches inside one job run
// concurrently.
package convert

import (
	"context"
	"fmt"
	"html"
	"os"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"

	"github.com/felo/kindle-newsletter/internal/config"
	"github.com/felo/kindle-newsletter/internal/detect"
	"github.com/felo/kindle-newsletter/internal/epub"
	"github.com/felo/kindle-newsletter/internal/images"
	"github.com/felo/kindle-newsletter/internal/journal"
	"github.com/felo/kindle-newsletter/internal/normalize"
	"github.com/felo/kindle-newsletter/internal/parser"
	"github.com/felo/kindle-newsletter/internal/templates"
)

// Result describes one finished conversion attempt.
type Result struct {
	SourcePath     string
	OutputPath     string
	Title          string
	NewsletterType string
	Format         string
	Err            error
}

// BatchSummary tallies a batch run. Partial success is a normal outcome,
// not an error.
type BatchSummary struct {
	Total     int
	Succeeded int
	Failed    int
	Results   []Result
}

// Converter runs conversion jobs against one configuration.
type Converter struct {
	cfg       *config.Config
	assembler *epub.Assembler
	journal   *journal.Journal
}

// New builds a converter. The journal may be nil when outcome recording is
// not wanted.
func New(cfg *config.Config, jrnl *journal.Journal) (*Converter, error) {
	asm, err := epub.NewAssembler(cfg.OutputDir)
	if err != nil {
		return nil, err
	}
	return &Converter{cfg: cfg, assembler: asm, journal: jrnl}, nil
}

// ConvertFile converts a single .eml file into an ebook. Parse failures
// degrade to a stand-in document; only an unreadable/empty input or a
// document with no convertible content fails the job.
func (c *Converter) ConvertFile(ctx context.Context, path string) *Result {
	res := &Result{SourcePath: path}

	info, err := os.Stat(path)
	if err != nil {
		res.Err = fmt.Errorf("reading input: %w", err)
		return c.finish(res)
	}
	if info.Size() == 0 {
		res.Err = fmt.Errorf("input file is empty: %s", path)
		return c.finish(res)
	}

	msg, err := parser.ParseEMLFile(path)
	if err != nil {
		log.Warn().Err(err).Str("path", path).Msg("parse failed, using stand-in document")
		msg = standInMessage(path, err)
	}

	result := detect.Detect(&detect.Content{
		Subject: msg.Subject,
		From:    msg.From(),
		HTML:    msg.BodyHTML,
		Text:    msg.BodyText,
	})
	res.NewsletterType = result.Type
	log.Info().Str("path", path).Str("type", result.Type).
		Int("confidence", result.Confidence).Msg("classified newsletter")

	tmpl := templates.Get(result.Type)

	body, err := c.buildBody(ctx, msg, result.Type, tmpl)
	if err != nil {
		res.Err = err
		return c.finish(res)
	}

	res.Title = documentTitle(msg, result)
	doc := &epub.Document{
		Title:    res.Title,
		BodyHTML: body,
		CSS:      tmpl.CSS,
	}

	out, produced, err := c.assembler.Assemble(ctx, doc, authorName(msg), c.cfg.FormatPreference)
	if err != nil {
		res.Err = fmt.Errorf("assembling ebook: %w", err)
		return c.finish(res)
	}
	res.OutputPath = out
	res.Format = produced
	return c.finish(res)
}

// buildBody runs the markup pipeline for a message and returns normalized
// HTML ready for assembly.
func (c *Converter) buildBody(ctx context.Context, msg *parser.Message, newsletterType string, tmpl *templates.Template) (string, error) {
	var body string
	var records []*images.Record

	if strings.TrimSpace(msg.BodyHTML) != "" {
		ix := images.Build(msg)
		resolver := images.NewResolver(ix)
		body = resolver.Resolve(msg.BodyHTML)

		fetcher := images.NewFetcher(c.cfg.FetchConcurrency, time.Duration(c.cfg.FetchTimeoutSec)*time.Second)
		if c.cfg.FetchBlocking {
			fetcher.FetchAll(ctx, ix)
			body = resolver.Embed(body)
		} else {
			// Best-effort mode: assembly proceeds while fetches land (or
			// don't); unfinished images keep their URL fallback.
			go fetcher.FetchAll(context.WithoutCancel(ctx), ix)
		}
		records = ix.Embeddable()

		body = normalize.Preclean(body, newsletterType)
		body = tmpl.Transform(body)
	} else {
		body = textToHTML(normalize.PrecleanText(msg.BodyText))
	}

	body = normalize.New(records).Apply(body)

	if !hasConvertibleContent(body) {
		return "", fmt.Errorf("no convertible content in message %q", msg.Subject)
	}
	return body, nil
}

// ConvertBatch processes files sequentially in input order and, when more
// than one succeeds, writes a table-of-contents ebook listing the batch.
func (c *Converter) ConvertBatch(ctx context.Context, paths []string) *BatchSummary {
	summary := &BatchSummary{Total: len(paths)}

	for _, path := range paths {
		res := c.ConvertFile(ctx, path)
		summary.Results = append(summary.Results, *res)
		if res.Err != nil {
			summary.Failed++
			log.Error().Err(res.Err).Str("path", path).Msg("conversion failed")
		} else {
			summary.Succeeded++
		}
	}

	if summary.Succeeded > 1 {
		if err := c.writeBatchContents(ctx, summary); err != nil {
			log.Warn().Err(err).Msg("could not write batch contents ebook")
		}
	}

	log.Info().Int("total", summary.Total).Int("succeeded", summary.Succeeded).
		Int("failed", summary.Failed).Msg("batch finished")
	return summary
}

func (c *Converter) writeBatchContents(ctx context.Context, summary *BatchSummary) error {
	var b strings.Builder
	b.WriteString("<h1>Converted Newsletters</h1>\n<ol>\n")
	for _, r := range summary.Results {
		if r.Err != nil {
			continue
		}
		fmt.Fprintf(&b, "<li>%s <span class=\"toc-type\">(%s)</span></li>\n",
			html.EscapeString(r.Title), html.EscapeString(r.NewsletterType))
	}
	b.WriteString("</ol>\n")

	doc := &epub.Document{
		Title:             "Newsletter Digest Contents",
		BodyHTML:          b.String(),
		CSS:               templates.Get("generic").CSS,
		IsTableOfContents: true,
	}
	_, _, err := c.assembler.Assemble(ctx, doc, "", epub.FormatEPUB)
	return err
}

// finish records the outcome in the journal (when configured) and returns
// the result unchanged.
func (c *Converter) finish(res *Result) *Result {
	if c.journal == nil {
		return res
	}
	entry := &journal.Entry{
		SourcePath:     res.SourcePath,
		Title:          res.Title,
		NewsletterType: res.NewsletterType,
		OutputPath:     res.OutputPath,
		Format:         res.Format,
		OK:             res.Err == nil,
	}
	if res.Err != nil {
		entry.Error = res.Err.Error()
	}
	if err := c.journal.Record(entry); err != nil {
		log.Warn().Err(err).Msg("could not record conversion outcome")
	}
	return res
}

// standInMessage is what callers get when parsing fails outright: always
// something convertible.
func standInMessage(path string, parseErr error) *parser.Message {
	return &parser.Message{
		Subject: "Error parsing newsletter",
		BodyHTML: fmt.Sprintf(
			"<h1>Error parsing newsletter</h1><p>The email file could not be parsed.</p><p>File: %s</p><p>%s</p>",
			html.EscapeString(path), html.EscapeString(parseErr.Error())),
	}
}

func documentTitle(msg *parser.Message, result detect.Result) string {
	if t := strings.TrimSpace(msg.Subject); t != "" {
		return t
	}
	return result.Name
}

func authorName(msg *parser.Message) string {
	if msg.SenderName != "" {
		return msg.SenderName
	}
	if msg.Sender != "" {
		if i := strings.IndexByte(msg.Sender, '@'); i > 0 {
			return msg.Sender[:i]
		}
	}
	return "Newsletter"
}

// textToHTML renders cleaned plain text as simple paragraphs.
func textToHTML(text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}
	var b strings.Builder
	for _, para := range strings.Split(text, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		escaped := html.EscapeString(para)
		escaped = strings.ReplaceAll(escaped, "\n", "<br>")
		b.WriteString("<p>" + escaped + "</p>\n")
	}
	return b.String()
}

// hasConvertibleContent reports whether the normalized body still carries
// any visible text or image.
func hasConvertibleContent(body string) bool {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return strings.TrimSpace(body) != ""
	}
	if strings.TrimSpace(doc.Text()) != "" {
		return true
	}
	return doc.Find("img").Length() > 0
}
