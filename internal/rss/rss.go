// Package rss collects candidate articles from the configured music news
// feeds. Feed failures are isolated: one dead feed never aborts the run.
package rss

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/mmcdole/gofeed"
	"gopkg.in/yaml.v3"

	"github.com/sunghyun2815/music-news-automation/internal/logger"
	"github.com/sunghyun2815/music-news-automation/internal/metrics"
	"github.com/sunghyun2815/music-news-automation/internal/news"
)

// FeedsConfig is the YAML feed list:
//
//	feeds:
//	  - https://...
type FeedsConfig struct {
	Feeds []string `yaml:"feeds"`
}

// LoadFeeds reads the RSS feed list from a YAML file.
func LoadFeeds(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg FeedsConfig
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parse feeds config: %w", err)
	}
	if len(cfg.Feeds) == 0 {
		return nil, fmt.Errorf("feeds config %s lists no feeds", path)
	}
	return cfg.Feeds, nil
}

// Collector fetches feeds and filters items down to music-relevant
// candidates within the age window.
type Collector struct {
	Parser       *gofeed.Parser
	MaxPerFeed   int
	MaxAge       time.Duration
	MinRelevance float64
	now          func() time.Time
}

const (
	defaultMaxPerFeed   = 30
	defaultMaxAge       = 72 * time.Hour
	defaultMinRelevance = 0.3
)

func NewCollector() *Collector {
	return &Collector{
		Parser:       gofeed.NewParser(),
		MaxPerFeed:   defaultMaxPerFeed,
		MaxAge:       defaultMaxAge,
		MinRelevance: defaultMinRelevance,
		now:          time.Now,
	}
}

// CollectAll fetches every feed, converting items to raw articles. Errors
// are logged per feed; the function only fails when the context dies.
func (c *Collector) CollectAll(ctx context.Context, urls []string) ([]news.RawArticle, error) {
	var all []news.RawArticle
	okFeeds := 0

	for _, feedURL := range urls {
		if err := ctx.Err(); err != nil {
			return all, err
		}
		items, err := c.collectFeed(ctx, feedURL)
		if err != nil {
			logger.Error("feed fetch failed", "feed", feedURL, "error", err)
			continue
		}
		all = append(all, items...)
		okFeeds++
		logger.Info("feed collected", "feed", feedURL, "articles", len(items))
	}

	logger.Info("collection complete", "feeds_ok", okFeeds, "feeds_total", len(urls), "articles", len(all))
	metrics.Global.AddArticlesCollected(len(all))
	return all, nil
}

func (c *Collector) collectFeed(ctx context.Context, feedURL string) ([]news.RawArticle, error) {
	feed, err := c.Parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, err
	}

	source := sourceName(feedURL)
	cutoff := c.now().Add(-c.MaxAge)

	var out []news.RawArticle
	for _, item := range feed.Items {
		if len(out) >= c.MaxPerFeed {
			break
		}
		raw, ok := c.convert(item, source, cutoff)
		if !ok {
			continue
		}
		out = append(out, raw)
	}
	return out, nil
}

// convert filters one feed item. It drops items that are too old or not
// plausibly about the music industry.
func (c *Collector) convert(item *gofeed.Item, source string, cutoff time.Time) (news.RawArticle, bool) {
	title := strings.TrimSpace(item.Title)
	if title == "" || item.Link == "" {
		return news.RawArticle{}, false
	}

	published, rawDate := itemPublished(item)
	if !published.IsZero() && published.Before(cutoff) {
		return news.RawArticle{}, false
	}

	relevance := MusicRelevance(title + " " + item.Description)
	if relevance < c.MinRelevance {
		logger.Debug("item below relevance threshold", "title", title, "relevance", relevance)
		return news.RawArticle{}, false
	}

	return news.RawArticle{
		Title:        title,
		Link:         item.Link,
		Source:       source,
		Description:  item.Description,
		Published:    published,
		PublishedRaw: rawDate,
		Relevance:    relevance,
	}, true
}

// itemPublished resolves the item timestamp: the parser's own parsed value
// first, then a lenient reparse of the raw string for feeds with
// nonstandard date formats.
func itemPublished(item *gofeed.Item) (time.Time, string) {
	raw := item.Published
	if raw == "" {
		raw = item.Updated
	}
	if item.PublishedParsed != nil {
		return item.PublishedParsed.UTC(), raw
	}
	if item.UpdatedParsed != nil {
		return item.UpdatedParsed.UTC(), raw
	}
	if raw != "" {
		if t, err := dateparse.ParseAny(raw); err == nil {
			return t.UTC(), raw
		}
	}
	return time.Time{}, raw
}

// sourceName derives the source label from the feed URL host.
func sourceName(feedURL string) string {
	u, err := url.Parse(feedURL)
	if err != nil || u.Host == "" {
		return feedURL
	}
	return strings.TrimPrefix(strings.ToLower(u.Host), "www.")
}

// musicTerms is the relevance vocabulary. General-news feeds carry plenty
// of non-music items; an item needs a minimal density of these before it
// enters the pipeline.
var musicTerms = []string{
	"music", "song", "album", "artist", "band", "singer", "rapper",
	"concert", "tour", "festival", "billboard", "chart", "streaming",
	"spotify", "label", "record", "vinyl", "playlist", "grammy",
	"producer", "dj", "pop", "hip hop", "k pop", "kpop", "rock",
	"jazz", "classical", "edm", "r&b", "single", "soundtrack",
	"musician", "songwriter", "royalties", "licensing", "catalog",
	"a&r",
}

// MusicRelevance scores how strongly text looks like music-industry news:
// the fraction of relevance terms present, saturating at 3 distinct hits.
func MusicRelevance(text string) float64 {
	normalized := news.NormalizeText(text)
	if normalized == "" {
		return 0
	}
	padded := " " + normalized + " "

	hits := 0
	for _, term := range musicTerms {
		// Longer terms are unambiguous as substrings; short ones need
		// word boundaries so "pop" does not fire inside "popular".
		found := false
		if len(term) > 5 {
			found = strings.Contains(normalized, term)
		} else {
			found = strings.Contains(padded, " "+term+" ")
		}
		if found {
			hits++
			if hits >= 3 {
				return 1
			}
		}
	}
	return float64(hits) / 3
}
