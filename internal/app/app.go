// Package app wires the pipeline stages together: collect, dedupe,
// classify, score, summarize, publish, notify.
package app

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/sunghyun2815/music-news-automation/internal/config"
	"github.com/sunghyun2815/music-news-automation/internal/gemini"
	"github.com/sunghyun2815/music-news-automation/internal/logger"
	"github.com/sunghyun2815/music-news-automation/internal/metrics"
	"github.com/sunghyun2815/music-news-automation/internal/news"
	"github.com/sunghyun2815/music-news-automation/internal/notify"
	"github.com/sunghyun2815/music-news-automation/internal/report"
	"github.com/sunghyun2815/music-news-automation/internal/rss"
	"github.com/sunghyun2815/music-news-automation/internal/scraper"
	"github.com/sunghyun2815/music-news-automation/internal/storage"
)

// Run executes one complete pipeline pass.
func Run(ctx context.Context, cfg *config.Config) error {
	start := time.Now()
	defer func() {
		metrics.Global.RecordProcessingTime(time.Since(start))
		metrics.Global.SetLastRun()
	}()

	// Collect.
	feeds, err := rss.LoadFeeds(cfg.FeedsConfigPath)
	if err != nil {
		return fmt.Errorf("load feeds: %w", err)
	}
	collector := rss.NewCollector()
	collector.MaxPerFeed = cfg.MaxPerFeed
	collector.MaxAge = cfg.NewsMaxAge
	collector.MinRelevance = cfg.MinMusicRelevance

	raw, err := collector.CollectAll(ctx, feeds)
	if err != nil {
		return fmt.Errorf("collect feeds: %w", err)
	}
	if len(raw) == 0 {
		// Zero articles means feeds are misconfigured or the network is
		// gone; publishing an empty digest would mask that.
		return fmt.Errorf("no articles collected from %d feeds", len(feeds))
	}

	// Dedupe.
	canonical := news.Dedupe(raw, start)
	metrics.Global.AddDuplicatesMerged(len(raw) - len(canonical))
	logger.Info("deduplication complete", "raw", len(raw), "canonical", len(canonical))

	// Classify and score.
	classified, err := classifyAndScore(cfg, canonical, start)
	if err != nil {
		return err
	}

	// Rank and cap per category.
	selected := selectTop(classified, cfg.MaxPerCategory)
	logger.Info("selection complete", "classified", len(classified), "selected", len(selected))

	// Scrape full bodies for the articles headed to the AI.
	enrichForAI(ctx, cfg, selected)

	// Summarize.
	summarizer, closeAI, err := buildSummarizer(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeAI()
	summarized := summarizer.SummarizeAll(ctx, selected)

	// Publish the feed. This is the primary output; failure is fatal.
	snapshot := report.Assemble(summarized, start)
	if err := report.Write(snapshot, cfg.OutputJSONPath, cfg.ArchiveDir); err != nil {
		return fmt.Errorf("write feed: %w", err)
	}

	// Notify about articles not yet delivered.
	return deliver(ctx, cfg, summarized)
}

func classifyAndScore(cfg *config.Config, canonical []news.CanonicalArticle, now time.Time) ([]news.ClassifiedArticle, error) {
	lexicons, err := news.LoadLexicons(cfg.LexiconsPath)
	if err != nil {
		logger.Warn("using built-in lexicons", "path", cfg.LexiconsPath, "error", err)
		lexicons = news.DefaultLexicons()
	}
	weights, err := news.LoadSourceWeights(cfg.SourcesPath)
	if err != nil {
		logger.Warn("using built-in source weights", "path", cfg.SourcesPath, "error", err)
		weights = news.DefaultSourceWeights()
	}

	classifier := news.NewClassifier(lexicons)
	scorer := news.NewScorer(weights, news.DefaultSignalKeywords, cfg.RecencyHalfLife)

	classified := make([]news.ClassifiedArticle, 0, len(canonical))
	for _, a := range canonical {
		category, tags := classifier.Classify(a)
		classified = append(classified, news.ClassifiedArticle{
			CanonicalArticle: a,
			Category:         category,
			Tags:             tags,
			Importance:       scorer.Score(a, now),
		})
		metrics.Global.IncrementClassified()
	}
	return classified, nil
}

// selectTop keeps the maxPerCategory most important articles of each
// category and returns them ranked by importance across categories.
func selectTop(articles []news.ClassifiedArticle, maxPerCategory int) []news.ClassifiedArticle {
	byCategory := make(map[news.Category][]news.ClassifiedArticle)
	for _, a := range articles {
		byCategory[a.Category] = append(byCategory[a.Category], a)
	}

	var selected []news.ClassifiedArticle
	for _, cat := range news.Categories {
		group := byCategory[cat]
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].Importance > group[j].Importance
		})
		if len(group) > maxPerCategory {
			group = group[:maxPerCategory]
		}
		selected = append(selected, group...)
	}

	sort.SliceStable(selected, func(i, j int) bool {
		return selected[i].Importance > selected[j].Importance
	})
	return selected
}

// enrichForAI replaces feed teaser descriptions with scraped article bodies
// for the articles the AI summarizer will actually see.
func enrichForAI(ctx context.Context, cfg *config.Config, selected []news.ClassifiedArticle) {
	if !cfg.AIEnabled || cfg.AISummaryLimit < 1 {
		return
	}
	limit := cfg.AISummaryLimit
	if limit > len(selected) {
		limit = len(selected)
	}
	urls := make([]string, 0, limit)
	for _, a := range selected[:limit] {
		urls = append(urls, a.Link)
	}

	bodies := scraper.New(cfg.ScrapeConcurrency).FetchAll(ctx, urls)
	for i := range selected[:limit] {
		if body, ok := bodies[selected[i].Link]; ok && body.Content != "" {
			selected[i].Description = body.Content
		}
	}
	logger.Info("article bodies scraped", "requested", limit, "fetched", len(bodies))
}

func buildSummarizer(ctx context.Context, cfg *config.Config) (*news.Summarizer, func(), error) {
	if !cfg.AIEnabled {
		logger.Info("AI summaries disabled, using rule-based only")
		return news.NewSummarizer(nil, 0, cfg.AITimeout), func() {}, nil
	}
	client, err := gemini.NewClient(ctx, cfg.GeminiAPIKey, cfg.AIDailyLimit)
	if err != nil {
		return nil, nil, fmt.Errorf("init gemini: %w", err)
	}
	return news.NewSummarizer(client, cfg.AISummaryLimit, cfg.AITimeout), client.Close, nil
}

func deliver(ctx context.Context, cfg *config.Config, summarized []news.SummarizedArticle) error {
	dispatcher := buildDispatcher(cfg)
	if len(dispatcher.Channels) == 0 {
		logger.Info("no notification channels configured, skipping delivery")
		return nil
	}

	store := deliveryStore(cfg)
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("failed to close delivery state", "error", err)
		}
	}()

	return deliverWith(ctx, dispatcher, store, summarized)
}

// deliveryStore opens the configured backend. An unreachable backend
// degrades to in-memory state: a duplicate notification on the next run is
// the acceptable failure, a skipped delivery is not.
func deliveryStore(cfg *config.Config) storage.Store {
	store, err := openDeliveryStore(cfg)
	if err != nil {
		logger.Warn("delivery state unavailable, treating all articles as new",
			"backend", cfg.StateBackend, "error", err)
		return storage.NewMemoryStore()
	}
	return store
}

func deliverWith(ctx context.Context, dispatcher *notify.Dispatcher, store storage.Store, summarized []news.SummarizedArticle) error {
	pending := filterUnnotified(store, summarized)
	if len(pending) == 0 {
		logger.Info("all articles already delivered")
		return nil
	}

	result := dispatcher.Deliver(ctx, pending)
	if !result.AnySuccess() {
		// Nothing is marked, so the next run retries the whole batch.
		return fmt.Errorf("all notification channels failed: %v", result.Failed)
	}

	now := time.Now()
	for _, a := range pending {
		rec := storage.DeliveryRecord{
			ID:         a.ID,
			Title:      a.Title,
			Link:       a.Link,
			Category:   string(a.Category),
			Source:     a.Source,
			NotifiedAt: now,
		}
		if err := store.MarkNotified(rec); err != nil {
			logger.Error("failed to mark article notified", "id", a.ID, "error", err)
		}
	}
	logger.Info("delivery complete", "articles", len(pending), "channels_ok", result.Succeeded, "channels_failed", result.Failed)
	return nil
}

func buildDispatcher(cfg *config.Config) *notify.Dispatcher {
	var channels []notify.Channel
	if cfg.SlackConfigured() {
		channels = append(channels, notify.NewSlackChannel(cfg.SlackToken, cfg.SlackChannelID))
	}
	if cfg.EmailConfigured() {
		channels = append(channels, notify.NewEmailChannel(
			cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.EmailFrom, cfg.EmailTo))
	}
	d := notify.NewDispatcher(channels...)
	d.Retry.MaxAttempts = cfg.RetryAttempts
	d.Retry.Delay = cfg.RetryDelay
	return d
}

// filterUnnotified drops articles a previous run already delivered.
func filterUnnotified(store storage.Store, articles []news.SummarizedArticle) []news.SummarizedArticle {
	var pending []news.SummarizedArticle
	for _, a := range articles {
		if store.IsNotified(a.ID) {
			logger.Debug("already notified", "id", a.ID, "title", a.Title)
			continue
		}
		pending = append(pending, a)
	}
	return pending
}
