package sanitize

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"sort"
	"strings"

	goaway "github.com/TwiN/go-away"
)

// NopFilter never censors anything.
type NopFilter struct{}

// IsProfane implements ProfanityFilter.
func (NopFilter) IsProfane(string) bool { return false }

// Censor implements ProfanityFilter.
func (NopFilter) Censor(text string) string { return text }

// WordList matches whole words from a fixed list, case-insensitively, and
// masks each matched character with Mask.
type WordList struct {
	pattern *regexp.Regexp
}

// NewWordList builds a WordList. Blank entries are ignored.
func NewWordList(words []string) *WordList {
	cleaned := make([]string, 0, len(words))
	seen := make(map[string]struct{}, len(words))
	for _, word := range words {
		word = strings.ToLower(strings.TrimSpace(word))
		if word == "" {
			continue
		}
		if _, ok := seen[word]; ok {
			continue
		}
		seen[word] = struct{}{}
		cleaned = append(cleaned, regexp.QuoteMeta(word))
	}
	if len(cleaned) == 0 {
		return &WordList{}
	}
	// Longest first so alternation prefers the widest match.
	sort.Slice(cleaned, func(i, j int) bool {
		if len(cleaned[i]) != len(cleaned[j]) {
			return len(cleaned[i]) > len(cleaned[j])
		}
		return cleaned[i] < cleaned[j]
	})
	return &WordList{pattern: regexp.MustCompile(`(?i)\b(?:` + strings.Join(cleaned, "|") + `)\b`)}
}

// ReadWordList reads one word per line. Lines starting with # are comments.
func ReadWordList(r io.Reader) ([]string, error) {
	var words []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		words = append(words, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read word list: %w", err)
	}
	return words, nil
}

// IsProfane implements ProfanityFilter.
func (w *WordList) IsProfane(text string) bool {
	return w.pattern != nil && w.pattern.MatchString(text)
}

// Censor implements ProfanityFilter.
func (w *WordList) Censor(text string) string {
	if w.pattern == nil {
		return text
	}
	return w.pattern.ReplaceAllStringFunc(text, func(match string) string {
		return strings.Repeat(string(Mask), len(match))
	})
}

// Detector adapts go-away's profanity detector.
type Detector struct {
	detector *goaway.ProfanityDetector
}

// NewDetector returns a Detector using go-away's bundled dictionary.
func NewDetector() *Detector {
	return &Detector{detector: wordDetector()}
}

// wordDetector matches listed words as typed. Spaces are kept and digits are
// not read as letters, so "Pen Is" or "Player 455" are left alone.
func wordDetector() *goaway.ProfanityDetector {
	return goaway.NewProfanityDetector().
		WithSanitizeSpaces(false).
		WithSanitizeLeetSpeak(false)
}

// NewDetectorWithWords returns a Detector limited to the given words.
func NewDetectorWithWords(words []string) *Detector {
	profanities := make([]string, 0, len(words))
	for _, word := range words {
		if word = strings.ToLower(strings.TrimSpace(word)); word != "" {
			profanities = append(profanities, word)
		}
	}
	return &Detector{
		detector: wordDetector().WithCustomDictionary(profanities, nil, nil),
	}
}

// LoadDetector returns a Detector for the word list at path, or the bundled
// dictionary when path is empty.
func LoadDetector(path string) (*Detector, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return NewDetector(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open profanity word list: %w", err)
	}
	defer f.Close()
	words, err := ReadWordList(f)
	if err != nil {
		return nil, err
	}
	if len(words) == 0 {
		return nil, fmt.Errorf("profanity word list %s is empty", path)
	}
	return NewDetectorWithWords(words), nil
}

// IsProfane implements ProfanityFilter.
func (d *Detector) IsProfane(text string) bool {
	return d.detector.IsProfane(text)
}

// Censor implements ProfanityFilter.
func (d *Detector) Censor(text string) string {
	return d.detector.Censor(text)
}

var (
	_ ProfanityFilter = NopFilter{}
	_ ProfanityFilter = (*WordList)(nil)
	_ ProfanityFilter = (*Detector)(nil)
)
