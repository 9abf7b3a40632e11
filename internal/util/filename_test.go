package util

import (
	"regexp"
	"strings"
	"testing"
)

func TestSanitizeBaseName(t *testing.T) {
	tests := []struct {
		name     string
		title    string
		artist   string
		fallback string
		expected string
	}{
		{
			name:     "artist prefixed when not in title",
			title:    "My Song",
			artist:   "Artist",
			fallback: "track",
			expected: "Artist - My Song",
		},
		{
			name:     "no duplicate prefix when title contains artist",
			title:    "Artist - My Song",
			artist:   "Artist",
			fallback: "track",
			expected: "Artist - My Song",
		},
		{
			name:     "artist match is case-insensitive",
			title:    "ARTIST - My Song",
			artist:   "artist",
			fallback: "track",
			expected: "ARTIST - My Song",
		},
		{
			name:     "special characters stripped",
			title:    `My/Song: "Live" <2024>?!`,
			artist:   "",
			fallback: "track",
			expected: "MySong Live 2024",
		},
		{
			name:     "whitespace collapsed and trimmed",
			title:    "  My    Song   ",
			artist:   "",
			fallback: "track",
			expected: "My Song",
		},
		{
			name:     "empty title falls back",
			title:    "",
			artist:   "",
			fallback: "track",
			expected: "track",
		},
		{
			name:     "title of only special characters falls back",
			title:    "!!!???",
			artist:   "",
			fallback: "video",
			expected: "video",
		},
		{
			name:     "empty artist means no prefix",
			title:    "My Song",
			artist:   "",
			fallback: "track",
			expected: "My Song",
		},
		{
			name:     "artist of only special characters means no prefix",
			title:    "My Song",
			artist:   "***",
			fallback: "track",
			expected: "My Song",
		},
		{
			name:     "hyphens survive",
			title:    "Half-Life Theme",
			artist:   "",
			fallback: "track",
			expected: "Half-Life Theme",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SanitizeBaseName(tt.title, tt.artist, tt.fallback)
			if got != tt.expected {
				t.Errorf("SanitizeBaseName(%q, %q, %q) = %q, want %q",
					tt.title, tt.artist, tt.fallback, got, tt.expected)
			}
		})
	}
}

func TestSanitizeBaseNameTruncation(t *testing.T) {
	longTitle := strings.Repeat("a", 150)
	got := SanitizeBaseName(longTitle, "", "track")
	if len([]rune(got)) != 100 {
		t.Errorf("title should truncate to 100 runes, got %d", len([]rune(got)))
	}

	longArtist := strings.Repeat("b", 80)
	got = SanitizeBaseName("Song", longArtist, "track")
	wantPrefix := strings.Repeat("b", 50) + " - Song"
	if got != wantPrefix {
		t.Errorf("artist should truncate to 50 runes, got %q", got)
	}
}

func TestSanitizeBaseNameCharset(t *testing.T) {
	safeRe := regexp.MustCompile(`^[\p{L}\p{N} -]+$`)
	inputs := []struct{ title, artist string }{
		{"Señor Coconut — ¡Olé!", "DJ Ünderground"},
		{`<>:"/\|?*`, "a*b"},
		{"tab\there", "new\nline"},
	}
	for _, in := range inputs {
		got := SanitizeBaseName(in.title, in.artist, "track")
		if !safeRe.MatchString(got) {
			t.Errorf("SanitizeBaseName(%q, %q) = %q contains unsafe characters", in.title, in.artist, got)
		}
	}
}

func TestSanitizeBaseNameDeterministic(t *testing.T) {
	a := SanitizeBaseName("Some Title (Official)", "Artist", "track")
	b := SanitizeBaseName("Some Title (Official)", "Artist", "track")
	if a != b {
		t.Errorf("not deterministic: %q vs %q", a, b)
	}
}
