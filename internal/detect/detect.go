// Package detect identifies which publisher a newsletter came from by
// scoring sender, subject and body samples against a fixed signature
// registry. Detection never fails: anything unrecognized is "generic".
package detect

import (
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"
)

const (
	htmlSampleLen = 10000
	textSampleLen = 5000
)

// Content is the classifier's view of a message.
type Content struct {
	Subject string
	From    string
	HTML    string
	Text    string
}

// Result names the detected newsletter type and how confident the match is.
type Result struct {
	Type       string
	Name       string
	Confidence int
}

// Signature declares the patterns identifying one publisher. Registry order
// is significant: on equal scores the earlier entry wins.
type Signature struct {
	Type            string
	DisplayName     string
	Domains         []string
	SenderPatterns  []string
	SubjectPatterns []string
	BodyPatterns    []string
	// StructuralHints are markup fragments unique to the publisher; any
	// hit in the HTML sample adds a one-time bonus.
	StructuralHints []string
}

var fromDomainRe = regexp.MustCompile(`@([^>\s]+)`)

// Registry is the ordered set of known publisher signatures.
var Registry = []Signature{
	{
		Type:        "substack",
		DisplayName: "Substack Newsletter",
		Domains:     []string{"substack.com", "substackcdn.com"},
		SenderPatterns: []string{
			"@substack.com",
		},
		BodyPatterns: []string{
			"unsubscribe from this newsletter",
			"subscribe now",
			"substack.com",
			`class="post-content"`,
			`class="post-header"`,
		},
		StructuralHints: []string{"post-content", "post-header"},
	},
	{
		Type:            "stratechery",
		DisplayName:     "Stratechery",
		Domains:         []string{"stratechery.com"},
		SenderPatterns:  []string{"stratechery", "ben thompson", "@stratechery.com"},
		SubjectPatterns: []string{"stratechery"},
		BodyPatterns:    []string{"stratechery", "stratechery.com", "ben thompson"},
		StructuralHints: []string{"entry-content", "post-body"},
	},
	{
		Type:            "axios",
		DisplayName:     "Axios Newsletter",
		Domains:         []string{"axios.com"},
		SenderPatterns:  []string{"axios", "@axios.com", "newsletter@axios.com"},
		SubjectPatterns: []string{"axios"},
		BodyPatterns:    []string{"axios", "axios.com", `class="story"`, "go deeper", "axios newsletter"},
		StructuralHints: []string{`class="story"`, "go deeper"},
	},
	{
		Type:            "bulletinmedia",
		DisplayName:     "Bulletin Media Briefing",
		Domains:         []string{"bulletinmedia.com", "bulletin.com"},
		SenderPatterns:  []string{"bulletin media", "@bulletinmedia.com", "bulletin@"},
		SubjectPatterns: []string{"daily briefing", "morning briefing", "news summary"},
		BodyPatterns: []string{
			"bulletin media",
			"morning briefing",
			"summary of",
			"news briefs",
			"bulletin intelligence",
		},
		StructuralHints: []string{`class="headline"`, `class="brief"`},
	},
	{
		Type:            "onetech",
		DisplayName:     "OneTech Newsletter",
		Domains:         []string{"onetech.com", "1tech.com", "philliptech.com"},
		SenderPatterns:  []string{"onetech", "one tech", "phillip", "@onetech.com", "@philliptech.com"},
		SubjectPatterns: []string{"onetech", "tech digest", "phillip's tech"},
		BodyPatterns: []string{
			"onetech newsletter",
			"tech highlights",
			"weekly tech summary",
			"phillip's tech digest",
		},
		StructuralHints: []string{"tech digest", "onetech newsletter"},
	},
	{
		Type:            "jeffselingo",
		DisplayName:     "Jeff Selingo Newsletter",
		Domains:         []string{"jeffselingo.com", "selingo.com"},
		SenderPatterns:  []string{"jeff selingo", "selingo", "@jeffselingo.com"},
		SubjectPatterns: []string{"jeff selingo", "higher ed", "college"},
		BodyPatterns: []string{
			"jeff selingo",
			"higher education",
			"college admissions",
			"university trends",
			"next newsletter",
		},
		StructuralHints: []string{"jeff selingo", "higher education"},
	},
}

var genericResult = Result{Type: "generic", Name: "Newsletter", Confidence: 0}

// Detect scores the content against every registered signature and returns
// the best match, or the generic fallback when nothing scores above zero.
// It never returns an error and never panics outward.
func Detect(content *Content) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("newsletter detection failed, using generic")
			result = genericResult
		}
	}()

	if content == nil {
		return genericResult
	}

	fromDomain := ""
	if m := fromDomainRe.FindStringSubmatch(content.From); m != nil {
		fromDomain = strings.ToLower(m[1])
	}

	subject := strings.ToLower(content.Subject)
	from := strings.ToLower(content.From)
	htmlSample := strings.ToLower(truncate(content.HTML, htmlSampleLen))
	searchable := subject + " " + from + " " + strings.ToLower(truncate(content.Text, textSampleLen))

	best := genericResult
	for _, sig := range Registry {
		score := 0

		for _, domain := range sig.Domains {
			if fromDomain != "" && strings.Contains(fromDomain, domain) {
				score += 5
				break
			}
		}
		for _, pat := range sig.SenderPatterns {
			if from != "" && strings.Contains(from, strings.ToLower(pat)) {
				score += 3
			}
		}
		for _, pat := range sig.SubjectPatterns {
			if subject != "" && strings.Contains(subject, strings.ToLower(pat)) {
				score += 2
			}
		}
		for _, pat := range sig.BodyPatterns {
			p := strings.ToLower(pat)
			if strings.Contains(searchable, p) {
				score++
			}
			if htmlSample != "" && strings.Contains(htmlSample, p) {
				score++
			}
		}
		for _, hint := range sig.StructuralHints {
			if htmlSample != "" && strings.Contains(htmlSample, strings.ToLower(hint)) {
				score += 3
				break
			}
		}

		confidence := score * 10
		if confidence > 100 {
			confidence = 100
		}
		if confidence > best.Confidence {
			best = Result{
				Type:       sig.Type,
				Name:       displayName(sig, content.Subject),
				Confidence: confidence,
			}
		}
	}

	if best.Confidence == 0 {
		best.Name = GenericName(content.Subject)
	}

	return best
}

// displayName derives a friendly name for the detection result. Substack
// newsletters get the subject prefix before " - " since the platform hosts
// many distinct publications.
func displayName(sig Signature, subject string) string {
	if sig.Type == "substack" {
		if i := strings.Index(subject, " - "); i > 0 {
			return subject[:i]
		}
	}
	return sig.DisplayName
}

// GenericName derives a display name from the subject when no publisher
// matched: the part before a colon, else before " - ", else the whole
// subject when short, else the literal "Newsletter".
func GenericName(subject string) string {
	if subject == "" {
		return "Newsletter"
	}
	if i := strings.Index(subject, ":"); i > 0 {
		return subject[:i]
	}
	if i := strings.Index(subject, " - "); i > 0 {
		return subject[:i]
	}
	if len(subject) < 40 {
		return subject
	}
	return "Newsletter"
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
