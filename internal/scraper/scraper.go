// Package scraper fetches full article bodies for the stories headed to the
// AI summarizer. Feed descriptions are often a single teaser sentence; the
// scraped body gives the model enough material for a real summary.
package scraper

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"

	"github.com/sunghyun2815/music-news-automation/internal/logger"
)

// ArticleContent is one scraped article body.
type ArticleContent struct {
	Title   string
	Content string
	URL     string
}

const (
	requestTimeout = 15 * time.Second
	maxContentLen  = 8000
	minParagraph   = 10
	userAgent      = "Mozilla/5.0 (compatible; music-news-automation/1.0)"
)

// siteSelectors maps a host fragment to the CSS selectors tried in order.
// The big music outlets each rename their article container now and then,
// so every entry carries fallbacks.
var siteSelectors = map[string][]string{
	"billboard.com": {
		".a-content p",
		".pmc-paywall p",
		"article p",
	},
	"pitchfork.com": {
		".body__inner-container p",
		".contents p",
		"article p",
	},
	"rollingstone.com": {
		".a-content p",
		".pmc-paywall p",
		"article p",
	},
	"variety.com": {
		".vy-cx-body p",
		".a-content p",
		"article p",
	},
	"stereogum.com": {
		".article-content p",
		"article p",
	},
	"musicbusinessworldwide.com": {
		".pf-content p",
		".entry-content p",
		"article p",
	},
}

// genericSelectors are tried for any host without a dedicated entry.
var genericSelectors = []string{
	"article p",
	".article-body p",
	".post-content p",
	".entry-content p",
	".content p",
	"main p",
}

// Scraper fetches article bodies with bounded concurrency.
type Scraper struct {
	Client      *http.Client
	Concurrency int
}

func New(concurrency int) *Scraper {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Scraper{
		Client:      &http.Client{Timeout: requestTimeout},
		Concurrency: concurrency,
	}
}

// FetchAll scrapes the given URLs concurrently and returns the bodies it
// could extract, keyed by URL. Individual failures are logged and skipped.
func (s *Scraper) FetchAll(ctx context.Context, urls []string) map[string]ArticleContent {
	results := make(map[string]ArticleContent, len(urls))
	var mu sync.Mutex
	var wg sync.WaitGroup
	sem := make(chan struct{}, s.Concurrency)

	for _, u := range urls {
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		go func(u string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			content, err := s.Fetch(ctx, u)
			if err != nil {
				logger.Debug("scrape failed", "url", u, "error", err)
				return
			}
			mu.Lock()
			results[u] = *content
			mu.Unlock()
		}(u)
	}
	wg.Wait()
	return results
}

// Fetch downloads one page and extracts its article body: site-specific
// selectors first, then generic ones, then readability as the last resort.
func (s *Scraper) Fetch(ctx context.Context, pageURL string) (*ArticleContent, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("http status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	content := extractBySelectors(doc, selectorsFor(pageURL))
	if content == "" {
		content = extractBySelectors(doc, genericSelectors)
	}
	if content == "" {
		content = extractReadable(doc, pageURL)
	}
	if content == "" {
		return nil, fmt.Errorf("no article body found")
	}

	return &ArticleContent{
		Title:   strings.TrimSpace(doc.Find("h1").First().Text()),
		Content: truncate(content, maxContentLen),
		URL:     pageURL,
	}, nil
}

func selectorsFor(pageURL string) []string {
	for host, selectors := range siteSelectors {
		if strings.Contains(pageURL, host) {
			return selectors
		}
	}
	return nil
}

// extractBySelectors tries each selector until one yields paragraphs.
func extractBySelectors(doc *goquery.Document, selectors []string) string {
	for _, selector := range selectors {
		var paragraphs []string
		doc.Find(selector).Each(func(_ int, sel *goquery.Selection) {
			text := strings.TrimSpace(sel.Text())
			if len(text) > minParagraph {
				paragraphs = append(paragraphs, text)
			}
		})
		if len(paragraphs) > 0 {
			return strings.Join(paragraphs, "\n\n")
		}
	}
	return ""
}

// extractReadable runs readability over the already-parsed document. It
// handles layouts whose article body lives outside any common selector.
func extractReadable(doc *goquery.Document, pageURL string) string {
	html, err := doc.Html()
	if err != nil {
		return ""
	}
	article, err := readability.FromReader(strings.NewReader(html), nil)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(article.TextContent)
}

// truncate cuts at a word boundary near the limit; article tails past the
// limit add latency to the AI call without improving the summary.
func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := s[:limit]
	if idx := strings.LastIndexByte(cut, ' '); idx > limit/2 {
		cut = cut[:idx]
	}
	return cut
}
