package parser

import (
	"fmt"
	"io"
	"mime"
	"os"
	"strings"
	"time"

	"github.com/emersion/go-message/charset"
	"github.com/emersion/go-message/mail"
	"github.com/rs/zerolog/log"
	"golang.org/x/text/encoding/charmap"
)

func init() {
	// Register additional charsets that are commonly used in emails
	charset.RegisterEncoding("windows-1252", charmap.Windows1252)
	charset.RegisterEncoding("iso-8859-1", charmap.ISO8859_1)
	charset.RegisterEncoding("iso-8859-15", charmap.ISO8859_15)
}

// ParseEMLFile parses an .eml file and returns the decoded Message.
func ParseEMLFile(filePath string) (*Message, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	return ParseEML(f)
}

// ParseEML parses an email from a reader. Individual malformed parts are
// skipped with a warning; only an unreadable message as a whole is an error.
func ParseEML(r io.Reader) (*Message, error) {
	mr, err := mail.CreateReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to create mail reader: %w", err)
	}

	msg := &Message{}

	header := mr.Header
	msg.Subject = decodeMIMEWord(header.Get("Subject"))

	if fromAddrs, err := header.AddressList("From"); err == nil && len(fromAddrs) > 0 {
		msg.Sender = fromAddrs[0].Address
		msg.SenderName = fromAddrs[0].Name
	}

	if date, err := header.Date(); err == nil {
		msg.Date = date
	} else {
		msg.Date = time.Now()
	}

	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Keep whatever decoded so far; one broken part must not
			// discard the rest of the message.
			log.Warn().Err(err).Msg("skipping unreadable message part")
			break
		}

		switch h := part.Header.(type) {
		case *mail.InlineHeader:
			contentType, params, _ := h.ContentType()

			// Inline images carry a Content-ID and belong with the
			// attachments so the image pipeline can resolve cid: refs.
			if strings.HasPrefix(contentType, "image/") {
				att, err := readImagePart(part.Body, h.Get("Content-Id"), params["name"], contentType, DispositionInline)
				if err != nil {
					log.Warn().Err(err).Msg("skipping unreadable inline image")
					continue
				}
				msg.Attachments = append(msg.Attachments, att)
				continue
			}

			body, err := io.ReadAll(part.Body)
			if err != nil {
				log.Warn().Err(err).Msg("skipping unreadable body part")
				continue
			}

			if strings.HasPrefix(contentType, "text/plain") {
				// Keep text even if we already have it (multipart emails have both)
				if msg.BodyText == "" {
					msg.BodyText = string(body)
				}
			} else if strings.HasPrefix(contentType, "text/html") {
				// Always prefer HTML if available
				msg.BodyHTML = string(body)
			}

		case *mail.AttachmentHeader:
			filename, _ := h.Filename()
			contentType, _, _ := h.ContentType()

			att, err := readImagePart(part.Body, h.Get("Content-Id"), filename, contentType, DispositionAttachment)
			if err != nil {
				log.Warn().Err(err).Str("filename", filename).Msg("skipping unreadable attachment")
				continue
			}
			msg.Attachments = append(msg.Attachments, att)
		}
	}

	return msg, nil
}

func readImagePart(body io.Reader, contentID, filename, contentType string, disp Disposition) (Attachment, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return Attachment{}, fmt.Errorf("failed to read part data: %w", err)
	}

	return Attachment{
		ContentID:   strings.Trim(strings.TrimSpace(contentID), "<>"),
		Filename:    filename,
		ContentType: contentType,
		Disposition: disp,
		Data:        data,
	}, nil
}

// decodeMIMEWord decodes MIME-encoded words (RFC 2047)
// Example: =?UTF-8?Q?Invitaci=C3=B3n?= -> Invitación
func decodeMIMEWord(s string) string {
	dec := new(mime.WordDecoder)
	decoded, err := dec.DecodeHeader(s)
	if err != nil {
		// If decoding fails, return original string
		return s
	}
	return decoded
}
