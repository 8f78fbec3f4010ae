package images

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/felo/kindle-newsletter/internal/parser"
)

var (
	cidRefRe      = regexp.MustCompile(`(?i)cid:([^"'\s>)]+)`)
	filenameSrcRe = regexp.MustCompile(`(?i)src=["']([^"']+\.(?:jpg|jpeg|png|gif|webp|bmp|svg))["']`)
	anySrcRe      = regexp.MustCompile(`(?i)src=["']([^"']+)["']`)
	idCharsRe     = regexp.MustCompile(`[^\w-]`)
)

// Index maps every textual image reference (CID, filename, URL) found in a
// message to the attachment bytes behind it. Pure in-memory; no I/O.
type Index struct {
	records []*Record
	byAlias map[string]*Record
}

// Build constructs the lookup index for one parsed message. Alias keys are
// globally unique: the first record to claim a key keeps it.
func Build(msg *parser.Message) *Index {
	ix := &Index{byAlias: make(map[string]*Record)}

	referenced := collectReferences(msg.BodyHTML)

	ordinal := 0
	for i := range msg.Attachments {
		att := &msg.Attachments[i]
		if !att.IsImage() {
			continue
		}
		if len(att.Data) == 0 {
			log.Warn().Str("filename", att.Filename).Msg("skipping image attachment with no payload")
			ordinal++
			continue
		}

		rawID := att.ContentID
		if rawID == "" {
			rawID = att.Filename
		}
		if rawID == "" {
			rawID = fmt.Sprintf("image_%d", ordinal)
		}
		id := idCharsRe.ReplaceAllString(rawID, "_")

		if ix.byAlias[id] != nil || ix.byAlias["cid:"+id] != nil {
			ordinal++
			continue
		}

		filename := att.Filename
		if filename == "" {
			filename = id + "." + extFromType(att.ContentType)
		}

		rec := &Record{
			ID:          id,
			ContentType: att.ContentType,
			Filename:    filename,
		}
		rec.setInlineData(att.ContentType, att.Data)

		rec.Inline = att.Disposition == parser.DispositionInline ||
			referenced[id] || referenced["cid:"+id] ||
			referenced[rawID] || referenced["cid:"+rawID] ||
			referenced[att.Filename]

		ix.register(rec, id, "cid:"+id, rawID, "cid:"+rawID, att.Filename)
		ix.records = append(ix.records, rec)
		ordinal++

		log.Debug().Str("id", rec.ID).Str("filename", rec.Filename).Msg("indexed attachment image")
	}

	return ix
}

// collectReferences scans markup with three independent passes: cid: tokens,
// filename-like src values, and full src URLs. The tokens decide whether an
// attachment counts as inline; they never create records themselves.
func collectReferences(html string) map[string]bool {
	refs := make(map[string]bool)
	if html == "" {
		return refs
	}

	for _, m := range cidRefRe.FindAllStringSubmatch(html, -1) {
		token := strings.Trim(m[1], "<>")
		refs[token] = true
		refs["cid:"+token] = true
	}

	for _, m := range filenameSrcRe.FindAllStringSubmatch(html, -1) {
		refs[basename(m[1])] = true
	}

	for _, m := range anySrcRe.FindAllStringSubmatch(html, -1) {
		refs[m[1]] = true
		if name := basename(m[1]); name != "" {
			refs[name] = true
		}
	}

	return refs
}

func (ix *Index) register(rec *Record, keys ...string) {
	for _, key := range keys {
		if key == "" || key == "cid:" {
			continue
		}
		if _, taken := ix.byAlias[key]; taken {
			continue
		}
		ix.byAlias[key] = rec
	}
}

// AddExternal creates a pending record for an image referenced by remote URL
// only. Returns the existing record when the URL was seen before.
func (ix *Index) AddExternal(url string) *Record {
	if rec, ok := ix.byAlias[url]; ok {
		return rec
	}

	name := basename(url)
	id := idCharsRe.ReplaceAllString(name, "_")
	if id == "" {
		id = fmt.Sprintf("external_%d", len(ix.records))
	}
	if rec, ok := ix.byAlias[id]; ok {
		return rec
	}

	filename := name
	if filename == "" {
		filename = id
	}
	rec := &Record{
		ID:          id,
		ContentType: typeFromName(name),
		Filename:    filename,
		URL:         url,
		External:    true,
	}
	ix.register(rec, id, url, name)
	ix.records = append(ix.records, rec)

	log.Debug().Str("id", id).Str("url", url).Msg("indexed external image")
	return rec
}

// Lookup returns the record registered under the exact alias key, or nil.
func (ix *Index) Lookup(key string) *Record {
	return ix.byAlias[key]
}

// LookupFuzzy tries a last-resort substring match between the token and every
// registered alias. Used only after exact and prefix-stripped lookups miss.
func (ix *Index) LookupFuzzy(token string) *Record {
	for alias, rec := range ix.byAlias {
		if strings.Contains(token, alias) || strings.Contains(alias, token) {
			return rec
		}
	}
	return nil
}

// Records returns every indexed image in registration order.
func (ix *Index) Records() []*Record {
	return ix.records
}

// Embeddable returns records usable as placeholder targets: anything with a
// source that is not a tracking pixel.
func (ix *Index) Embeddable() []*Record {
	var out []*Record
	for _, rec := range ix.records {
		if !rec.Tracking && rec.Src() != "" {
			out = append(out, rec)
		}
	}
	return out
}

// basename extracts the last path segment of a URL or path, query stripped.
func basename(ref string) string {
	if i := strings.IndexAny(ref, "?#"); i >= 0 {
		ref = ref[:i]
	}
	if i := strings.LastIndex(ref, "/"); i >= 0 {
		ref = ref[i+1:]
	}
	return ref
}
