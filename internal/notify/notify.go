// Package notify delivers the run's top articles over the configured
// channels. Delivery is at-least-once: an article counts as notified when
// any channel succeeded, so a single dead channel cannot cause a
// re-notification storm on every following run.
package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sunghyun2815/music-news-automation/internal/logger"
	"github.com/sunghyun2815/music-news-automation/internal/metrics"
	"github.com/sunghyun2815/music-news-automation/internal/news"
	"github.com/sunghyun2815/music-news-automation/internal/retry"
)

// Channel is one notification transport.
type Channel interface {
	Name() string
	Send(ctx context.Context, articles []news.SummarizedArticle) error
}

// Result reports per-channel outcomes for one batch.
type Result struct {
	Succeeded []string
	Failed    []string
}

// AnySuccess is the mark-notified policy: true when at least one channel
// delivered the batch.
func (r Result) AnySuccess() bool {
	return len(r.Succeeded) > 0
}

// Dispatcher fans a batch out to every channel, isolating failures.
type Dispatcher struct {
	Channels []Channel
	Retry    retry.Config
}

func NewDispatcher(channels ...Channel) *Dispatcher {
	return &Dispatcher{
		Channels: channels,
		// One immediate retry per channel, nothing more; the next
		// scheduled run is the real retry path.
		Retry: retry.Config{MaxAttempts: 2, Delay: 2 * time.Second, Backoff: true},
	}
}

// Deliver sends the batch to all channels. A channel error never aborts the
// run and never affects the other channels.
func (d *Dispatcher) Deliver(ctx context.Context, articles []news.SummarizedArticle) Result {
	var res Result
	if len(articles) == 0 {
		return res
	}

	for _, ch := range d.Channels {
		err := retry.Do(ctx, d.Retry, func() error {
			return ch.Send(ctx, articles)
		})
		if err != nil {
			logger.Error("notification channel failed", "channel", ch.Name(), "error", err)
			metrics.Global.IncrementNotificationFailures()
			res.Failed = append(res.Failed, ch.Name())
			continue
		}
		logger.Info("notification delivered", "channel", ch.Name(), "articles", len(articles))
		metrics.Global.IncrementNotificationsSent()
		res.Succeeded = append(res.Succeeded, ch.Name())
	}
	return res
}

var categoryEmojis = map[news.Category]string{
	news.CategoryNews:      "📰",
	news.CategoryReport:    "📊",
	news.CategoryInsight:   "💡",
	news.CategoryInterview: "🎤",
	news.CategoryColumn:    "✍️",
}

// groupByCategory preserves input (importance) order within each category.
func groupByCategory(articles []news.SummarizedArticle) map[news.Category][]news.SummarizedArticle {
	grouped := make(map[news.Category][]news.SummarizedArticle)
	for _, a := range articles {
		grouped[a.Category] = append(grouped[a.Category], a)
	}
	return grouped
}

func formatTags(t news.Tags) string {
	var parts []string
	if len(t.Genre) > 0 {
		parts = append(parts, "genre: "+strings.Join(head(t.Genre, 3), ", "))
	}
	if len(t.Industry) > 0 {
		parts = append(parts, "industry: "+strings.Join(head(t.Industry, 3), ", "))
	}
	if len(t.Region) > 0 {
		parts = append(parts, "region: "+strings.Join(head(t.Region, 3), ", "))
	}
	if len(parts) == 0 {
		return "no tags"
	}
	return strings.Join(parts, " | ")
}

func head(list []string, n int) []string {
	if len(list) <= n {
		return list
	}
	return list[:n]
}

func digestTitle(now time.Time) string {
	return fmt.Sprintf("Music Industry News Briefing - %s", now.Format("2006-01-02"))
}
