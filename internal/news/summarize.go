package news

import (
	"context"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/sunghyun2815/music-news-automation/internal/logger"
	"github.com/sunghyun2815/music-news-automation/internal/metrics"
)

// AIGenerator is the external summarization capability. Implementations may
// fail for any reason; the pipeline always recovers with the rule-based path.
type AIGenerator interface {
	Summarize(ctx context.Context, title, description, link string) (string, error)
}

// Summarizer produces the display summary for every article. The top Budget
// articles by importance may spend one AI call each; everything else, and
// every AI failure, goes through the deterministic 5W1H generator.
type Summarizer struct {
	AI          AIGenerator // nil disables the AI tier entirely
	Budget      int
	MaxRunes    int
	CallTimeout time.Duration
}

const defaultSummaryMaxRunes = 200

func NewSummarizer(ai AIGenerator, budget int, callTimeout time.Duration) *Summarizer {
	if budget < 0 {
		budget = 0
	}
	if callTimeout <= 0 {
		callTimeout = 30 * time.Second
	}
	return &Summarizer{AI: ai, Budget: budget, MaxRunes: defaultSummaryMaxRunes, CallTimeout: callTimeout}
}

// SummarizeAll returns the articles ordered by importance descending, each
// with a non-empty summary and a provenance flag. A failing AI call never
// affects other articles and never aborts the run.
func (s *Summarizer) SummarizeAll(ctx context.Context, articles []ClassifiedArticle) []SummarizedArticle {
	ranked := make([]ClassifiedArticle, len(articles))
	copy(ranked, articles)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Importance > ranked[j].Importance
	})

	// Only the top Budget articles are AI-eligible; a failed call still
	// spends its unit so a flaky backend cannot exceed the per-run cost cap.
	out := make([]SummarizedArticle, 0, len(ranked))
	for i, a := range ranked {
		summary, kind := s.summarizeOne(ctx, a, i < s.Budget)
		if kind == SummaryAIGenerated {
			metrics.Global.IncrementAISummaries()
		} else {
			metrics.Global.IncrementFallbackSummaries()
		}
		out = append(out, SummarizedArticle{
			ClassifiedArticle: a,
			Summary:           summary,
			SummaryType:       kind,
		})
	}
	return out
}

func (s *Summarizer) summarizeOne(ctx context.Context, a ClassifiedArticle, eligible bool) (string, SummaryType) {
	if eligible && s.AI != nil {
		callCtx, cancel := context.WithTimeout(ctx, s.CallTimeout)
		text, err := s.AI.Summarize(callCtx, a.Title, a.Description, a.Link)
		cancel()
		text = strings.TrimSpace(text)
		if err == nil && text != "" {
			return s.capRunes(text), SummaryAIGenerated
		}
		if err != nil {
			logger.Warn("ai summary failed, using rule-based fallback", "title", a.Title, "error", err)
		} else {
			logger.Warn("ai summary empty, using rule-based fallback", "title", a.Title)
		}
	}
	return s.capRunes(RuleBasedSummary(a.CanonicalArticle)), SummaryRuleBased
}

// capRunes bounds the display summary, preferring to cut at a sentence end.
func (s *Summarizer) capRunes(text string) string {
	limit := s.MaxRunes
	if limit <= 0 {
		limit = defaultSummaryMaxRunes
	}
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	cut := string(runes[:limit])
	if idx := strings.LastIndex(cut, ". "); idx > limit/2 {
		return cut[:idx+1]
	}
	return strings.TrimRight(cut, " ") + "..."
}

var (
	properNameRe = regexp.MustCompile(`\b[A-Z][a-z]+(?:\s+[A-Z][a-z]+)*\b`)
	whenRe       = regexp.MustCompile(`\b(today|yesterday|tonight|this week|next week|this month|next month|this year|\d{4}|january|february|march|april|may|june|july|august|september|october|november|december)\b`)
	whereRe      = regexp.MustCompile(`\b(?:in|at)\s+([A-Z][a-z]+(?:\s+[A-Z][a-z]+)*)\b`)
)

var actionKeywords = []string{
	"releases", "announces", "performs", "collaborates", "signs", "debuts",
	"drops", "launches", "cancels", "reveals", "tours", "premieres",
}

// RuleBasedSummary builds a 5W1H-style line from the article fields alone.
// It never fails: with nothing else to work from it falls back to the title,
// which deduplication guarantees to be non-empty.
func RuleBasedSummary(a CanonicalArticle) string {
	text := a.Title + " " + a.Description
	lower := strings.ToLower(text)

	var parts []string

	if who := firstMatches(properNameRe.FindAllString(text, -1), 2); len(who) > 0 {
		parts = append(parts, "Who: "+strings.Join(who, ", "))
	}

	var actions []string
	for _, kw := range actionKeywords {
		if strings.Contains(lower, kw) {
			actions = append(actions, kw)
			if len(actions) == 2 {
				break
			}
		}
	}
	if len(actions) > 0 {
		parts = append(parts, "What: "+strings.Join(actions, ", "))
	}

	if when := firstMatches(whenRe.FindAllString(lower, -1), 2); len(when) > 0 {
		parts = append(parts, "When: "+strings.Join(when, ", "))
	}

	var places []string
	for _, m := range whereRe.FindAllStringSubmatch(text, -1) {
		places = append(places, m[1])
		if len(places) == 2 {
			break
		}
	}
	if len(places) > 0 {
		parts = append(parts, "Where: "+strings.Join(places, ", "))
	}

	if len(parts) == 0 {
		title := a.Title
		if r := []rune(title); len(r) > 120 {
			title = string(r[:120]) + "..."
		}
		return "Summary: " + title
	}
	return strings.Join(parts, " | ")
}

func firstMatches(matches []string, n int) []string {
	var out []string
	seen := map[string]bool{}
	for _, m := range matches {
		if seen[m] {
			continue
		}
		seen[m] = true
		out = append(out, m)
		if len(out) == n {
			break
		}
	}
	return out
}
