/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/

// Package header parses and synthesizes the standard leading comment block
// of a catalogue script:
//
//	/**
//	 * @title Script Title Here
//	 * @description Description of what the script does, wrapped at
//	 *   seventy columns with indented continuation lines.
//	 * @status production
//	 * @link https://example.com/script.shelly.js
//	 */
//
// @status and @link are optional; the interactive checker only needs the
// title and description, the CI checker validates all four.
package header

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"
)

// WrapWidth is the column limit for generated description lines.
const WrapWidth = 70

// Recognized @status values.
const (
	StatusProduction       = "production"
	StatusUnderDevelopment = "under development"
)

var (
	// standardPattern matches a standard header at the very start of a file.
	// The description is lazy and may span continuation lines; @status and
	// @link are each optional and must appear in that order. Tag lines take
	// exactly one space after the asterisk, so a wrapped description line
	// that happens to start with a tag stays part of the description.
	standardPattern = regexp.MustCompile(`(?s)^/\*\*\s*\n` +
		`\s*\*\s*@title\s+(.+?)\n` +
		`\s*\*\s*@description\s+(.+?)\n` +
		`(?:[ \t]*\* @status[ \t]+(.+?)\n)?` +
		`(?:[ \t]*\* @link[ \t]+(.+?)\n)?` +
		`\s*\*/\s*\n`)

	// blockCommentPattern matches any leading block comment.
	blockCommentPattern = regexp.MustCompile(`(?s)^/\*\*?\s*\n(.*?)\*/\s*\n`)

	continuationPattern = regexp.MustCompile(`\n\s*\*\s*`)
)

// Header is the metadata carried by a standard header block.
type Header struct {
	Title       string
	Description string
	Status      string
	Link        string
}

// Parse reports whether content starts with a standard header and returns
// its fields. Wrapped description lines are folded back into single spaces.
func Parse(content string) (Header, bool) {
	m := standardPattern.FindStringSubmatch(content)
	if m == nil {
		return Header{}, false
	}
	desc := strings.TrimSpace(m[2])
	desc = continuationPattern.ReplaceAllString(desc, " ")
	return Header{
		Title:       strings.TrimSpace(m[1]),
		Description: desc,
		Status:      strings.TrimSpace(m[3]),
		Link:        strings.TrimSpace(m[4]),
	}, true
}

// Wrap splits text into words and greedily packs them into lines no longer
// than width characters. A single word longer than width gets its own line.
func Wrap(text string, width int) []string {
	var lines []string
	current := ""
	for _, word := range strings.Fields(text) {
		if current != "" && utf8.RuneCountInString(current)+utf8.RuneCountInString(word)+1 > width {
			lines = append(lines, current)
			current = word
			continue
		}
		if current == "" {
			current = word
		} else {
			current += " " + word
		}
	}
	if current != "" {
		lines = append(lines, current)
	}
	return lines
}

// Format renders h as a header block followed by one blank line.
func Format(h Header, width int) string {
	if width <= 0 {
		width = WrapWidth
	}
	var b strings.Builder
	b.WriteString("/**\n")
	b.WriteString(" * @title " + h.Title + "\n")

	lines := Wrap(h.Description, width)
	if len(lines) == 0 {
		lines = []string{""}
	}
	b.WriteString(" * @description " + lines[0] + "\n")
	for _, line := range lines[1:] {
		b.WriteString(" *   " + line + "\n")
	}

	if h.Status != "" {
		b.WriteString(" * @status " + h.Status + "\n")
	}
	if h.Link != "" {
		b.WriteString(" * @link " + h.Link + "\n")
	}
	b.WriteString(" */\n\n")
	return b.String()
}

// Generate renders a title/description header at the default width.
func Generate(title, description string) string {
	return Format(Header{Title: title, Description: description}, WrapWidth)
}

// Apply writes h into content: an existing standard header is replaced in
// place, otherwise a leading block comment is replaced, otherwise the header
// is prepended.
func Apply(content string, h Header, width int) (string, bool) {
	block := Format(h, width)

	var out string
	if loc := standardPattern.FindStringIndex(content); loc != nil {
		out = block + content[loc[1]:]
	} else if loc := blockCommentPattern.FindStringIndex(content); loc != nil {
		out = block + content[loc[1]:]
	} else {
		out = block + content
	}
	return out, out != content
}

// Update sets title and description, keeping any @status and @link an
// existing standard header already carries.
func Update(content, title, description string, width int) (string, bool) {
	h := Header{Title: title, Description: description}
	if existing, ok := Parse(content); ok {
		h.Status = existing.Status
		h.Link = existing.Link
	}
	return Apply(content, h, width)
}

// NormalizeStatus maps accepted spellings onto the canonical value. The
// hyphenated "under-development" is what many scripts in the catalogue use.
// Matching is case-sensitive: "Production" is not a valid status.
func NormalizeStatus(s string) string {
	s = strings.TrimSpace(s)
	if s == "under-development" {
		return StatusUnderDevelopment
	}
	return s
}

// IsProduction reports whether a status marks a release-quality script.
func IsProduction(status string) bool {
	return NormalizeStatus(status) == StatusProduction
}

// ValidateStatus checks @status against the allowed set.
func ValidateStatus(s string) error {
	switch NormalizeStatus(s) {
	case StatusProduction, StatusUnderDevelopment:
		return nil
	case "":
		return fmt.Errorf("missing @status")
	default:
		return fmt.Errorf("invalid @status: %s", s)
	}
}

// ValidateLink checks that @link is an absolute http(s) URL.
func ValidateLink(s string) error {
	u, err := url.Parse(s)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid @link: %s", s)
	}
	return nil
}
