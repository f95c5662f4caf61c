package sanitize

import (
	"regexp"
	"strings"
	"testing"
)

var onlyAllowed = regexp.MustCompile(`^[A-Za-z0-9 ]*$`)

func TestSanitizeSteps(t *testing.T) {
	t.Parallel()

	s := New(NewWordList([]string{"darn", "heck"}))
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "url and punctuation", raw: "Visit http://spam.com!!", want: "Visit"},
		{name: "https url", raw: "go HTTPS://Example.org/x?y=1 now", want: "go  now"},
		{name: "www link", raw: "see www.example.com", want: "see"},
		{name: "email", raw: "mail me a.b+c@example.co.uk ok", want: "mail me  ok"},
		{name: "email inside link", raw: "x user@www.site.com y", want: "x  y"},
		{name: "unicode stripped", raw: "Zoë ☃ Ñandú", want: "Zo  and"},
		{name: "tabs and newlines stripped", raw: "\tAce\nPilot ", want: "AcePilot"},
		{name: "profanity masked", raw: "Darn Good", want: "**** Good"},
		{name: "profanity whole words only", raw: "darnell", want: "darnell"},
		{name: "truncated", raw: "abcdefghijklmnopqrstuvwxyz", want: "abcdefghijklmnopqrst"},
		{name: "nothing left", raw: "!!! http://x.y @@@", want: ""},
		{name: "empty", raw: "", want: ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := s.Sanitize(tc.raw, 20); got != tc.want {
				t.Fatalf("Sanitize(%q) = %q, want %q", tc.raw, got, tc.want)
			}
		})
	}
}

func TestSanitizeDefaultsMaxLength(t *testing.T) {
	t.Parallel()

	got := New(nil).Sanitize(strings.Repeat("a", 50), 0)
	if len(got) != DefaultMaxLength {
		t.Fatalf("len = %d, want %d", len(got), DefaultMaxLength)
	}
}

func TestSanitizeOutputProperties(t *testing.T) {
	t.Parallel()

	s := New(NewWordList([]string{"darn"}))
	inputs := []string{
		"Visit http://spam.com!!",
		"contact: someone@example.com",
		"www.buy-now.biz best player",
		"<script>alert(1)</script>",
		"   spaced    out   ",
		"ÄÖÜ äöü ß",
		"darn darn darn darn darn darn",
		"1234567890 1234567890 1234567890",
		"http://a.b https://c.d www.e.f g@h.ij",
	}
	for _, raw := range inputs {
		for _, limit := range []int{5, 10, 20} {
			got := s.Sanitize(raw, limit)
			if !onlyAllowed.MatchString(strings.ReplaceAll(got, string(Mask), "")) {
				t.Fatalf("Sanitize(%q) = %q contains disallowed characters", raw, got)
			}
			if len(got) > limit {
				t.Fatalf("Sanitize(%q, %d) = %q exceeds limit", raw, limit, got)
			}
			lower := strings.ToLower(got)
			if strings.Contains(lower, "http") || strings.Contains(lower, "www") {
				t.Fatalf("Sanitize(%q) = %q still contains a link", raw, got)
			}
		}
	}
}

func TestSanitizeEntirelyProfaneIsFullyMasked(t *testing.T) {
	t.Parallel()

	s := New(NewWordList([]string{"darn", "heck"}))
	for _, raw := range []string{"darn", "Darn Heck", "heck!! darn??"} {
		got := s.Sanitize(raw, 20)
		if !IsFullyMasked(got) {
			t.Fatalf("Sanitize(%q) = %q, want only mask characters", raw, got)
		}
	}
}

func TestIsFullyMasked(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want bool
	}{
		{in: "****", want: true},
		{in: "**** ****", want: true},
		{in: "**** Good", want: false},
		{in: "", want: false},
		{in: "   ", want: false},
		{in: "Ace", want: false},
	}
	for _, tc := range tests {
		if got := IsFullyMasked(tc.in); got != tc.want {
			t.Fatalf("IsFullyMasked(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestSanitizeWithDetector(t *testing.T) {
	t.Parallel()

	s := New(NewDetector())
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "digits untouched", raw: "Player 455", want: "Player 455"},
		{name: "split words untouched", raw: "Pen Is Mighty", want: "Pen Is Mighty"},
		{name: "false positive kept", raw: "Mass Hole", want: "Mass Hole"},
		{name: "spaced letters untouched", raw: "as shole", want: "as shole"},
		{name: "leet digits untouched", raw: "Ace 455 Pilot", want: "Ace 455 Pilot"},
		{name: "listed word masked", raw: "Shit Happens", want: "**** Happens"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := s.Sanitize(tc.raw, 20); got != tc.want {
				t.Fatalf("Sanitize(%q) = %q, want %q", tc.raw, got, tc.want)
			}
		})
	}
}

func TestSanitizeWithDetectorFullyMasksListedWords(t *testing.T) {
	t.Parallel()

	s := New(NewDetector())
	for _, raw := range []string{"fuck shit", "Shit!! Fuck"} {
		got := s.Sanitize(raw, 20)
		if !IsFullyMasked(got) {
			t.Fatalf("Sanitize(%q) = %q, want only mask characters", raw, got)
		}
	}
}
