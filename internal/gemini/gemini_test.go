package gemini

import (
	"strings"
	"testing"
)

func TestSanitizeResponse(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"clean text passes through", "The label signed the artist.", "The label signed the artist."},
		{"strips summary label", "Summary: The label signed the artist.", "The label signed the artist."},
		{"strips label case-insensitively", "here is a summary: Big tour announced.", "Big tour announced."},
		{"strips wrapping quotes", `"Big tour announced."`, "Big tour announced."},
		{"collapses whitespace", "Big  tour\n announced.", "Big tour announced."},
		{"empty input", "   ", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := sanitizeResponse(tc.in); got != tc.want {
				t.Errorf("sanitizeResponse(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestSanitizeContentBoundsLength(t *testing.T) {
	long := strings.Repeat("A fairly long sentence about the music business. ", 400)
	got := sanitizeContent(long)
	if len([]rune(got)) > maxPromptChars {
		t.Fatalf("content length %d exceeds bound", len([]rune(got)))
	}
	if !strings.HasSuffix(got, ".") {
		t.Errorf("expected sentence-boundary cut, got tail %q", got[len(got)-20:])
	}
}

func TestBuildPromptIncludesArticleFields(t *testing.T) {
	p := buildPrompt("Band reunites", "The band announced a reunion tour.", "https://example.com/x")
	for _, want := range []string{"Band reunites", "reunion tour", "https://example.com/x", "200 characters"} {
		if !strings.Contains(p, want) {
			t.Errorf("prompt missing %q:\n%s", want, p)
		}
	}
}
