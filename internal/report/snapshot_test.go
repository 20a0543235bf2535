package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sunghyun2815/music-news-automation/internal/news"
)

func article(id, title string, cat news.Category, importance float64, tags news.Tags) news.SummarizedArticle {
	return news.SummarizedArticle{
		ClassifiedArticle: news.ClassifiedArticle{
			CanonicalArticle: news.CanonicalArticle{
				ID:        id,
				Title:     title,
				Link:      "https://example.com/" + id,
				Source:    "example.com",
				Published: time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC),
			},
			Category:   cat,
			Tags:       tags,
			Importance: importance,
		},
		Summary:     "Summary: " + title,
		SummaryType: news.SummaryRuleBased,
	}
}

func TestAssembleGroupsAndCounts(t *testing.T) {
	now := time.Date(2026, 8, 25, 9, 0, 0, 0, time.UTC)
	articles := []news.SummarizedArticle{
		article("a1", "First story", news.CategoryNews, 0.9, news.Tags{Genre: []string{"pop"}}),
		article("a2", "Second story", news.CategoryNews, 0.7, news.Tags{Genre: []string{"pop"}, Region: []string{"us"}}),
		article("a3", "Market report", news.CategoryReport, 0.8, news.Tags{Industry: []string{"streaming"}}),
	}

	snap := Assemble(articles, now)

	if snap.Metadata.TotalNews != 3 {
		t.Fatalf("TotalNews = %d, want 3", snap.Metadata.TotalNews)
	}
	if got := snap.Metadata.Categories["NEWS"]; got != 2 {
		t.Errorf("NEWS count = %d, want 2", got)
	}
	if got := snap.Metadata.Categories["COLUMN"]; got != 0 {
		t.Errorf("COLUMN count = %d, want 0", got)
	}

	// Every category section exists even when empty.
	for _, cat := range news.Categories {
		if _, ok := snap.News[string(cat)]; !ok {
			t.Errorf("missing category section %s", cat)
		}
	}

	items := snap.News["NEWS"]
	if len(items) != 2 || items[0].ID != "a1" || items[1].ID != "a2" {
		t.Fatalf("NEWS items out of order: %+v", items)
	}
	if items[0].PublishedDate != "2026-08-20T10:00:00Z" {
		t.Errorf("PublishedDate = %q", items[0].PublishedDate)
	}
}

func TestAssembleTopTagsFrequencyThenFirstSeen(t *testing.T) {
	now := time.Now()
	articles := []news.SummarizedArticle{
		article("a1", "One", news.CategoryNews, 0.9, news.Tags{Genre: []string{"hiphop", "pop"}}),
		article("a2", "Two", news.CategoryNews, 0.8, news.Tags{Genre: []string{"pop"}}),
		article("a3", "Three", news.CategoryNews, 0.7, news.Tags{Genre: []string{"rock"}}),
	}

	snap := Assemble(articles, now)

	got := snap.Summary.TopGenres
	want := []string{"pop", "hiphop", "rock"}
	if len(got) != len(want) {
		t.Fatalf("TopGenres = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("TopGenres = %v, want %v", got, want)
		}
	}
}

func TestAssembleEmptyInput(t *testing.T) {
	snap := Assemble(nil, time.Now())
	if snap.Metadata.TotalNews != 0 {
		t.Fatalf("TotalNews = %d, want 0", snap.Metadata.TotalNews)
	}
	if snap.Summary.TopGenres == nil || snap.Summary.TopRegions == nil || snap.Summary.TopIndustries == nil {
		t.Error("top tag lists must be empty, not null")
	}
	data, err := json.Marshal(snap)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	sections := decoded["news"].(map[string]interface{})
	if len(sections) != 5 {
		t.Errorf("news sections = %d, want 5", len(sections))
	}
}

func TestAssembleNilTagFacetsEmittedAsArrays(t *testing.T) {
	snap := Assemble([]news.SummarizedArticle{
		article("a1", "One", news.CategoryNews, 0.5, news.Tags{}),
	}, time.Now())

	data, err := json.Marshal(snap.News["NEWS"][0])
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	for _, key := range []string{`"genre":[]`, `"industry":[]`, `"region":[]`} {
		if !strings.Contains(string(data), key) {
			t.Errorf("item JSON missing %s: %s", key, data)
		}
	}
}

func TestWriteFeedAndArchive(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "music_news.json")
	archive := filepath.Join(dir, "archive")

	now := time.Date(2026, 8, 25, 9, 30, 0, 0, time.UTC)
	snap := Assemble([]news.SummarizedArticle{
		article("a1", "One", news.CategoryNews, 0.5, news.Tags{}),
	}, now)

	if err := Write(snap, out, archive); err != nil {
		t.Fatalf("Write: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read feed: %v", err)
	}
	var decoded Snapshot
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("feed is not valid JSON: %v", err)
	}
	if decoded.Metadata.TotalNews != 1 {
		t.Errorf("round-tripped TotalNews = %d", decoded.Metadata.TotalNews)
	}

	archived, err := os.ReadFile(filepath.Join(archive, "music_news_20260825_093000.json"))
	if err != nil {
		t.Fatalf("archive copy missing: %v", err)
	}
	if string(archived) != string(data) {
		t.Error("archive copy differs from feed")
	}
}
