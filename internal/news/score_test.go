package news

import (
	"testing"
	"time"
)

func TestScoreBounds(t *testing.T) {
	s := NewScorer(nil, nil, 48*time.Hour)
	now := time.Now()

	cases := []CanonicalArticle{
		{Title: "Grammy winner tops Billboard chart with million sales", Source: "www.billboard.com",
			Description: "A very long description with plenty of detail about the award and the chart run.",
			Published:   now},
		{Title: "Tiny", Source: "unknown.example", Published: now.Add(-90 * 24 * time.Hour)},
		{Title: "Future dated", Source: "unknown.example", Published: now.Add(24 * time.Hour)},
	}

	for _, a := range cases {
		got := s.Score(a, now)
		if got < 0 || got > 1 {
			t.Errorf("score out of bounds for %q: %v", a.Title, got)
		}
	}
}

func TestScoreMonotonicInRecency(t *testing.T) {
	s := NewScorer(nil, nil, 48*time.Hour)
	now := time.Now()

	base := CanonicalArticle{
		Title:       "Label announces signing",
		Source:      "pitchfork.com",
		Description: "Some body text of moderate length for richness.",
	}

	newer := base
	newer.Published = now.Add(-1 * time.Hour)
	older := base
	older.Published = now.Add(-72 * time.Hour)

	if s.Score(newer, now) < s.Score(older, now) {
		t.Fatal("a more recent article must never score below an older one")
	}
}

func TestScoreUnknownSourceGetsDefault(t *testing.T) {
	s := NewScorer(nil, nil, 48*time.Hour)
	a := CanonicalArticle{Title: "x", Source: "nobody-heard-of.example"}
	if got := s.sourceWeight(a); got != s.Weights.Default {
		t.Fatalf("unknown source weight = %v; want default %v", got, s.Weights.Default)
	}
}

func TestScoreSourceWeightFromLink(t *testing.T) {
	s := NewScorer(nil, nil, 48*time.Hour)
	a := CanonicalArticle{Title: "x", Source: "", Link: "https://www.billboard.com/music/article"}
	if got := s.sourceWeight(a); got != 0.9 {
		t.Fatalf("billboard link weight = %v; want 0.9", got)
	}
}

func TestScoreDeterministic(t *testing.T) {
	s := NewScorer(nil, nil, 48*time.Hour)
	now := time.Now()
	a := CanonicalArticle{
		Title:       "Festival confirms headline act",
		Source:      "variety.com",
		Description: "Organizers confirm the final slot for this summer.",
		Published:   now.Add(-6 * time.Hour),
	}
	if s.Score(a, now) != s.Score(a, now) {
		t.Fatal("score is not deterministic for identical input")
	}
}
