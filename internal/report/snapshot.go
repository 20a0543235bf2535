// Package report assembles the run's output feed: the JSON document
// downstream consumers read, plus a timestamped archive copy.
package report

import (
	"sort"
	"time"

	"github.com/sunghyun2815/music-news-automation/internal/news"
)

// Metadata describes the run that produced a snapshot.
type Metadata struct {
	GeneratedAt time.Time      `json:"generated_at"`
	TotalNews   int            `json:"total_news"`
	Categories  map[string]int `json:"categories"`
}

// Item is the per-article feed record.
type Item struct {
	ID            string           `json:"id"`
	Title         string           `json:"title"`
	Summary       string           `json:"summary"`
	URL           string           `json:"url"`
	Source        string           `json:"source"`
	PublishedDate string           `json:"published_date"`
	Importance    float64          `json:"importance_score"`
	Tags          news.Tags        `json:"tags"`
	Category      news.Category    `json:"category"`
	SummaryType   news.SummaryType `json:"summary_type"`
}

// TagSummary lists the most frequent tag values across the whole feed.
type TagSummary struct {
	TopGenres     []string `json:"top_genres"`
	TopRegions    []string `json:"top_regions"`
	TopIndustries []string `json:"top_industries"`
}

// Snapshot is the complete feed document.
type Snapshot struct {
	Metadata Metadata          `json:"metadata"`
	News     map[string][]Item `json:"news"`
	Summary  TagSummary        `json:"summary"`
}

const topTagCount = 5

// Assemble builds the snapshot. Articles within each category keep their
// input order, which the caller has already ranked by importance.
func Assemble(articles []news.SummarizedArticle, generatedAt time.Time) Snapshot {
	snap := Snapshot{
		Metadata: Metadata{
			GeneratedAt: generatedAt,
			TotalNews:   len(articles),
			Categories:  make(map[string]int),
		},
		News: make(map[string][]Item),
	}

	// Every category key is present even when empty so consumers never
	// have to guard against missing sections.
	for _, cat := range news.Categories {
		snap.News[string(cat)] = []Item{}
		snap.Metadata.Categories[string(cat)] = 0
	}

	var genres, regions, industries tagCounter
	for _, a := range articles {
		item := Item{
			ID:            a.ID,
			Title:         a.Title,
			Summary:       a.Summary,
			URL:           a.Link,
			Source:        a.Source,
			PublishedDate: a.Published.UTC().Format(time.RFC3339),
			Importance:    a.Importance,
			Tags:          normalizeTags(a.Tags),
			Category:      a.Category,
			SummaryType:   a.SummaryType,
		}
		key := string(a.Category)
		snap.News[key] = append(snap.News[key], item)
		snap.Metadata.Categories[key]++

		genres.addAll(a.Tags.Genre)
		regions.addAll(a.Tags.Region)
		industries.addAll(a.Tags.Industry)
	}

	snap.Summary = TagSummary{
		TopGenres:     genres.top(topTagCount),
		TopRegions:    regions.top(topTagCount),
		TopIndustries: industries.top(topTagCount),
	}
	return snap
}

// normalizeTags replaces nil facet slices with empty ones so the JSON
// always carries all three arrays.
func normalizeTags(t news.Tags) news.Tags {
	if t.Genre == nil {
		t.Genre = []string{}
	}
	if t.Industry == nil {
		t.Industry = []string{}
	}
	if t.Region == nil {
		t.Region = []string{}
	}
	return t
}

// tagCounter counts tag occurrences and remembers first-seen order for
// deterministic tie-breaking.
type tagCounter struct {
	counts map[string]int
	order  []string
}

func (c *tagCounter) addAll(tags []string) {
	if c.counts == nil {
		c.counts = make(map[string]int)
	}
	for _, t := range tags {
		if _, seen := c.counts[t]; !seen {
			c.order = append(c.order, t)
		}
		c.counts[t]++
	}
}

func (c *tagCounter) top(n int) []string {
	ranked := make([]string, len(c.order))
	copy(ranked, c.order)
	// Stable sort on a first-seen-ordered slice makes equal counts
	// resolve to whichever tag appeared first.
	sort.SliceStable(ranked, func(i, j int) bool {
		return c.counts[ranked[i]] > c.counts[ranked[j]]
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	if ranked == nil {
		ranked = []string{}
	}
	return ranked
}
