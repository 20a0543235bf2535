package news

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

type stubAI struct {
	calls int
	text  string
	err   error
}

func (s *stubAI) Summarize(ctx context.Context, title, description, link string) (string, error) {
	s.calls++
	return s.text, s.err
}

func classified(title, desc string, importance float64) ClassifiedArticle {
	return ClassifiedArticle{
		CanonicalArticle: CanonicalArticle{ID: ArticleID(RawArticle{Title: title}), Title: title, Description: desc},
		Category:         CategoryNews,
		Importance:       importance,
	}
}

func TestSummarizeFallsBackWhenAIFails(t *testing.T) {
	ai := &stubAI{err: errors.New("upstream down")}
	s := NewSummarizer(ai, 10, time.Second)

	articles := []ClassifiedArticle{
		classified("Band announces tour", "The band releases dates today in London.", 0.9),
		classified("Quiet one", "", 0.1),
	}

	got := s.SummarizeAll(context.Background(), articles)
	if len(got) != 2 {
		t.Fatalf("expected 2 summarized articles, got %d", len(got))
	}
	for _, a := range got {
		if a.Summary == "" {
			t.Errorf("empty summary for %q", a.Title)
		}
		if a.SummaryType != SummaryRuleBased {
			t.Errorf("expected rule_based provenance for %q, got %s", a.Title, a.SummaryType)
		}
	}
}

func TestSummarizeBudgetLimitsAICalls(t *testing.T) {
	ai := &stubAI{text: "An AI produced summary."}
	s := NewSummarizer(ai, 2, time.Second)

	articles := []ClassifiedArticle{
		classified("First", "d", 0.9),
		classified("Second", "d", 0.8),
		classified("Third", "d", 0.7),
		classified("Fourth", "d", 0.6),
	}

	got := s.SummarizeAll(context.Background(), articles)
	if ai.calls != 2 {
		t.Fatalf("expected exactly 2 AI calls, got %d", ai.calls)
	}

	// Ranked output: the two most important carry AI provenance.
	if got[0].SummaryType != SummaryAIGenerated || got[1].SummaryType != SummaryAIGenerated {
		t.Error("top-ranked articles should use the AI summary")
	}
	if got[2].SummaryType != SummaryRuleBased || got[3].SummaryType != SummaryRuleBased {
		t.Error("articles beyond the budget should use the rule-based summary")
	}
}

func TestSummarizeEmptyAIResponseFallsBack(t *testing.T) {
	ai := &stubAI{text: "   "}
	s := NewSummarizer(ai, 1, time.Second)

	got := s.SummarizeAll(context.Background(), []ClassifiedArticle{classified("Solo", "", 0.5)})
	if got[0].SummaryType != SummaryRuleBased || got[0].Summary == "" {
		t.Fatalf("blank AI response must fall back, got %q (%s)", got[0].Summary, got[0].SummaryType)
	}
}

func TestSummarizeNilAIAlwaysRuleBased(t *testing.T) {
	s := NewSummarizer(nil, 5, time.Second)
	got := s.SummarizeAll(context.Background(), []ClassifiedArticle{classified("Only title", "", 0.5)})
	if got[0].SummaryType != SummaryRuleBased {
		t.Fatalf("nil AI must yield rule_based, got %s", got[0].SummaryType)
	}
	if got[0].Summary == "" {
		t.Fatal("summary must never be empty, even from title alone")
	}
}

func TestSummaryLengthCapped(t *testing.T) {
	long := strings.Repeat("An extremely verbose sentence about the music industry. ", 20)
	ai := &stubAI{text: long}
	s := NewSummarizer(ai, 1, time.Second)

	got := s.SummarizeAll(context.Background(), []ClassifiedArticle{classified("Long", "d", 0.9)})
	if n := len([]rune(got[0].Summary)); n > defaultSummaryMaxRunes+3 {
		t.Fatalf("summary too long: %d runes", n)
	}
}

func TestRuleBasedSummary5W1H(t *testing.T) {
	a := CanonicalArticle{
		Title:       "Arctic Monkeys announces new album",
		Description: "The band releases the record in Sheffield this week, with a launch show in London.",
	}
	got := RuleBasedSummary(a)

	if !strings.Contains(got, "Who:") {
		t.Errorf("expected a Who part, got %q", got)
	}
	if !strings.Contains(got, "What:") {
		t.Errorf("expected a What part, got %q", got)
	}
	if got != RuleBasedSummary(a) {
		t.Error("rule-based summary must be deterministic")
	}
}

func TestRuleBasedSummaryTitleOnlyFallback(t *testing.T) {
	a := CanonicalArticle{Title: "untagged lowercase headline without cues"}
	got := RuleBasedSummary(a)
	if got == "" {
		t.Fatal("rule-based summary must be non-empty for a title-only article")
	}
	if !strings.Contains(got, a.Title) {
		t.Errorf("fallback should carry the title, got %q", got)
	}
}
