package parser

import "time"

// Disposition classifies how an attachment was declared in the MIME part.
type Disposition int

const (
	DispositionUnspecified Disposition = iota
	DispositionInline
	DispositionAttachment
)

// Message is the decoded result of parsing a single .eml file.
// It is built once per conversion job and never mutated afterwards.
type Message struct {
	Subject     string
	Sender      string
	SenderName  string
	Date        time.Time
	BodyHTML    string
	BodyText    string
	Attachments []Attachment
}

// From returns the sender formatted as "Name <address>", or just the
// address when no display name was present.
func (m *Message) From() string {
	if m.SenderName != "" {
		return m.SenderName + " <" + m.Sender + ">"
	}
	return m.Sender
}

// Attachment is one decoded MIME part carrying binary content.
type Attachment struct {
	ContentID   string // Content-ID with angle brackets stripped, may be empty
	Filename    string
	ContentType string
	Disposition Disposition
	Data        []byte
}

// IsImage reports whether the attachment declares an image content type.
func (a *Attachment) IsImage() bool {
	return len(a.ContentType) > 6 && a.ContentType[:6] == "image/"
}
