package images

import (
	"encoding/base64"
	"strings"
	"sync"
)

// Record is a resolved or pending image ready for embedding. A record starts
// out either with an inline data URI (decoded attachment) or with a remote
// URL; a successful fetch transitions the latter to the former in place.
type Record struct {
	ID          string
	ContentType string
	Filename    string
	URL         string
	External    bool
	Tracking    bool
	Inline      bool

	mu      sync.RWMutex
	dataURI string
}

// Src returns the best embeddable reference for the record: the inline data
// URI when available, otherwise the remote URL fallback.
func (r *Record) Src() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.dataURI != "" {
		return r.dataURI
	}
	return r.URL
}

// Pending reports whether the record still needs a remote fetch.
func (r *Record) Pending() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.dataURI == "" && r.URL != ""
}

// SetData stores fetched bytes as an inline data URI and updates the content
// type to what the fetch reported.
func (r *Record) SetData(contentType string, data []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if contentType == "" {
		contentType = r.ContentType
	}
	r.ContentType = contentType
	r.dataURI = "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

func (r *Record) setInlineData(contentType string, data []byte) {
	r.ContentType = contentType
	r.dataURI = "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

var extToMime = map[string]string{
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"gif":  "image/gif",
	"webp": "image/webp",
	"svg":  "image/svg+xml",
	"bmp":  "image/bmp",
	"tiff": "image/tiff",
}

var mimeToExt = map[string]string{
	"image/jpeg":    "jpg",
	"image/jpg":     "jpg",
	"image/png":     "png",
	"image/gif":     "gif",
	"image/webp":    "webp",
	"image/svg+xml": "svg",
	"image/bmp":     "bmp",
	"image/tiff":    "tiff",
}

// typeFromName guesses a MIME type from a filename extension, defaulting to
// JPEG the way newsletter images overwhelmingly are.
func typeFromName(name string) string {
	idx := strings.LastIndex(name, ".")
	if idx < 0 {
		return "image/jpeg"
	}
	if t, ok := extToMime[strings.ToLower(name[idx+1:])]; ok {
		return t
	}
	return "image/jpeg"
}

// extFromType returns a filename extension for a MIME type.
func extFromType(contentType string) string {
	if e, ok := mimeToExt[contentType]; ok {
		return e
	}
	return "bin"
}
