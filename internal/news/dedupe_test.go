package news

import (
	"testing"
	"time"
)

func TestNormalizeURL(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"simple", "https://example.com/path", "https://example.com/path"},
		{"utm and fragment", "https://example.com/path?utm_source=feed#section", "https://example.com/path"},
		{"uppercase host", "HTTPS://Example.COM/News/", "https://example.com/News"},
		{"tracking params", "https://example.com/?fbclid=XYZ&gclid=ABC&utm_medium=1", "https://example.com"},
		{"real query survives", "https://example.com/a?id=5&utm_campaign=x", "https://example.com/a?id=5"},
		{"empty", "", ""},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := NormalizeURL(c.in); got != c.want {
				t.Fatalf("NormalizeURL(%q) = %q; want %q", c.in, got, c.want)
			}
		})
	}
}

func TestDedupeCollapsesTrackingVariants(t *testing.T) {
	now := time.Date(2025, 6, 24, 10, 0, 0, 0, time.UTC)
	raw := []RawArticle{
		{Title: "Band Announces Tour", Link: "https://example.com/news/tour?utm_source=rss", Source: "example.com", Published: now.Add(-2 * time.Hour)},
		{Title: "Band Announces Tour", Link: "HTTPS://EXAMPLE.COM/news/tour", Source: "example.com", Published: now.Add(-1 * time.Hour)},
	}

	got := Dedupe(raw, now)
	if len(got) != 1 {
		t.Fatalf("expected 1 canonical article, got %d", len(got))
	}
	if got[0].Published != now.Add(-2*time.Hour) {
		t.Errorf("expected earliest published date to win, got %v", got[0].Published)
	}
}

func TestDedupeMergeRules(t *testing.T) {
	now := time.Date(2025, 6, 24, 10, 0, 0, 0, time.UTC)
	raw := []RawArticle{
		{Title: "Festival Lineup", Link: "https://a.com/x", Source: "a.com", Description: "<p>Short</p>", Published: now.Add(-time.Hour)},
		{Title: "Festival Lineup", Link: "https://a.com/x?utm_medium=social", Source: "b.com",
			Description: "<p>A much longer description with actual detail about the festival lineup.</p>",
			Published:   now.Add(-3 * time.Hour)},
	}

	got := Dedupe(raw, now)
	if len(got) != 1 {
		t.Fatalf("expected merge into 1 article, got %d", len(got))
	}
	a := got[0]
	if a.Published != now.Add(-3*time.Hour) {
		t.Errorf("earliest date should win, got %v", a.Published)
	}
	if len(a.Description) < 40 {
		t.Errorf("longest clean description should win, got %q", a.Description)
	}
	if len(a.Sources) != 2 {
		t.Errorf("sources should union, got %v", a.Sources)
	}
}

func TestDedupeDropsEmptyTitles(t *testing.T) {
	now := time.Now()
	raw := []RawArticle{
		{Title: "  ", Link: "https://a.com/1", Source: "a.com"},
		{Title: "Kept", Link: "https://a.com/2", Source: "a.com"},
	}
	got := Dedupe(raw, now)
	if len(got) != 1 || got[0].Title != "Kept" {
		t.Fatalf("expected only the titled article, got %+v", got)
	}
}

func TestDedupeMissingDateIsEstimated(t *testing.T) {
	now := time.Date(2025, 6, 24, 10, 0, 0, 0, time.UTC)
	raw := []RawArticle{
		{Title: "No Date", Link: "https://a.com/nd", Source: "a.com", PublishedRaw: "not-a-date"},
	}
	got := Dedupe(raw, now)
	if len(got) != 1 {
		t.Fatalf("expected 1 article, got %d", len(got))
	}
	if !got[0].DateEstimated {
		t.Error("expected DateEstimated for a missing publish date")
	}
	if got[0].Published != now {
		t.Errorf("expected collection time fallback, got %v", got[0].Published)
	}
}

func TestDedupeIdempotent(t *testing.T) {
	now := time.Now()
	raw := []RawArticle{
		{Title: "One", Link: "https://a.com/1?utm_source=x", Source: "a.com"},
		{Title: "One", Link: "https://a.com/1", Source: "a.com"},
		{Title: "Two", Link: "https://a.com/2", Source: "a.com"},
		{Title: "Three", Link: "", Source: "b.com"},
	}

	first := Dedupe(raw, now)
	second := Dedupe(raw, now)

	ids := func(list []CanonicalArticle) map[string]bool {
		m := map[string]bool{}
		for _, a := range list {
			m[a.ID] = true
		}
		return m
	}

	a, b := ids(first), ids(second)
	if len(a) != len(b) {
		t.Fatalf("id set size changed between runs: %d vs %d", len(a), len(b))
	}
	for id := range a {
		if !b[id] {
			t.Errorf("id %s missing from second run", id)
		}
	}
}

func TestArticleIDStableWithoutURL(t *testing.T) {
	a := RawArticle{Title: "Some   Headline ", Source: "Pitchfork"}
	b := RawArticle{Title: "some headline", Source: "pitchfork"}
	if ArticleID(a) != ArticleID(b) {
		t.Error("title+source identity should be case and whitespace insensitive")
	}
}
