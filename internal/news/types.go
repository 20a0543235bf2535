// Package news implements the normalization and classification pipeline:
// deduplication of raw feed items, category and tag assignment, importance
// scoring, and two-tier summary generation.
package news

import "time"

// RawArticle is a single item as it arrives from a feed, before any
// normalization. Produced fresh each run by the rss collector.
type RawArticle struct {
	Title        string
	Link         string
	Source       string
	Description  string
	Published    time.Time // zero when the feed had no usable date
	PublishedRaw string
	Relevance    float64
}

// CanonicalArticle is the deduplicated unit of work. ID is stable across
// runs for the same real-world article so delivery-state lookups keep
// working between schedules.
type CanonicalArticle struct {
	ID             string
	Title          string
	Link           string
	Source         string
	Sources        []string
	Published      time.Time
	DateEstimated  bool // true when Published fell back to collection time
	DescriptionRaw string
	Description    string // HTML stripped, whitespace collapsed
}

// Category is the single mandatory classification of an article.
type Category string

const (
	CategoryNews      Category = "NEWS"
	CategoryReport    Category = "REPORT"
	CategoryInsight   Category = "INSIGHT"
	CategoryInterview Category = "INTERVIEW"
	CategoryColumn    Category = "COLUMN"
)

// CategoryPriority resolves overlapping category cues: the first matching
// category in this order wins, with NEWS as the catch-all.
var CategoryPriority = []Category{
	CategoryInterview,
	CategoryColumn,
	CategoryInsight,
	CategoryReport,
	CategoryNews,
}

// Categories lists all valid categories in display order.
var Categories = []Category{
	CategoryNews,
	CategoryReport,
	CategoryInsight,
	CategoryInterview,
	CategoryColumn,
}

// Tags holds the three independent facets. Empty slices are valid; nil is not
// emitted so the JSON feed always carries all three arrays.
type Tags struct {
	Genre    []string `json:"genre"`
	Industry []string `json:"industry"`
	Region   []string `json:"region"`
}

// ClassifiedArticle is a canonical article with derived classification.
type ClassifiedArticle struct {
	CanonicalArticle
	Category   Category
	Tags       Tags
	Importance float64
}

// SummaryType records which strategy produced the display summary.
type SummaryType string

const (
	SummaryAIGenerated SummaryType = "ai_generated"
	SummaryRuleBased   SummaryType = "rule_based"
)

// SummarizedArticle is the final per-article record emitted to the feed.
type SummarizedArticle struct {
	ClassifiedArticle
	Summary     string
	SummaryType SummaryType
}
