// Package sanitize turns raw player names into short, safe display names.
package sanitize

import (
	"regexp"
	"strings"
)

// DefaultMaxLength is used when Sanitize receives a non-positive limit.
const DefaultMaxLength = 20

// Mask replaces each character of a censored word.
const Mask = '*'

var (
	linkPattern       = regexp.MustCompile(`(?i)(?:https?://|www\.)\S+`)
	emailPattern      = regexp.MustCompile(`(?i)[a-z0-9._%+\-]+@[a-z0-9\-]+(?:\.[a-z0-9\-]+)*\.[a-z]{2,}`)
	disallowedPattern = regexp.MustCompile(`[^A-Za-z0-9 ]+`)
)

// ProfanityFilter detects and masks profane words.
type ProfanityFilter interface {
	IsProfane(text string) bool
	Censor(text string) string
}

// Sanitizer cleans player names with an injected profanity filter.
type Sanitizer struct {
	filter ProfanityFilter
}

// New returns a Sanitizer. A nil filter disables censorship.
func New(filter ProfanityFilter) *Sanitizer {
	if filter == nil {
		filter = NopFilter{}
	}
	return &Sanitizer{filter: filter}
}

// Sanitize removes links and email addresses, drops everything except ASCII
// letters, digits and spaces, trims, censors profanity and truncates to
// maxLength. The result is empty when nothing valid remains.
func (s *Sanitizer) Sanitize(raw string, maxLength int) string {
	if maxLength <= 0 {
		maxLength = DefaultMaxLength
	}

	name := emailPattern.ReplaceAllString(raw, "")
	name = linkPattern.ReplaceAllString(name, "")
	name = disallowedPattern.ReplaceAllString(name, "")
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	name = s.filter.Censor(name)

	if len(name) > maxLength {
		name = name[:maxLength]
	}
	return name
}

// IsFullyMasked reports whether name holds nothing but mask characters and
// spaces, i.e. every word in it was censored.
func IsFullyMasked(name string) bool {
	if !strings.ContainsRune(name, Mask) {
		return false
	}
	return strings.Trim(name, string(Mask)+" ") == ""
}
