// Package gemini generates article summaries with Google's Gemini API. It
// implements the summarizer's AIGenerator contract so the pipeline never
// depends on this package directly.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/sunghyun2815/music-news-automation/internal/cache"
	"github.com/sunghyun2815/music-news-automation/internal/logger"
	"github.com/sunghyun2815/music-news-automation/internal/ratelimit"
)

const (
	modelName      = "gemini-1.5-flash"
	maxPromptChars = 6000
	cacheTTL       = 24 * time.Hour
)

// ErrBudgetExhausted is returned when the daily call budget is spent; the
// summarizer treats it like any other failure and falls back.
var ErrBudgetExhausted = errors.New("gemini: daily call budget exhausted")

type Client struct {
	client  *genai.Client
	cache   *cache.Cache
	limiter *ratelimit.Limiter
}

// NewClient builds a Gemini-backed summary generator. dailyLimit <= 0
// disables the daily budget.
func NewClient(ctx context.Context, apiKey string, dailyLimit int) (*Client, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &Client{
		client:  client,
		cache:   cache.New(),
		limiter: ratelimit.New(dailyLimit, 24*time.Hour),
	}, nil
}

func (c *Client) Close() {
	if c.client != nil {
		c.client.Close()
	}
}

// Summarize produces a 2-3 sentence English summary of one article.
func (c *Client) Summarize(ctx context.Context, title, description, link string) (string, error) {
	content := sanitizeContent(description)

	key := cache.Key(title, content)
	if cached, ok := c.cache.Get(key); ok {
		logger.Debug("summary cache hit", "title", title)
		return cached, nil
	}

	if !c.limiter.Allow() {
		used, max := c.limiter.Stats()
		logger.Warn("gemini budget exhausted", "used", used, "max", max)
		return "", ErrBudgetExhausted
	}

	prompt := buildPrompt(title, content, link)
	model := c.client.GenerativeModel(modelName)

	c.limiter.Record()
	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	summary := sanitizeResponse(extractText(resp))
	if summary == "" {
		return "", fmt.Errorf("empty model response")
	}

	c.cache.Set(key, summary, cacheTTL)
	return summary, nil
}

func buildPrompt(title, content, link string) string {
	var b strings.Builder
	b.WriteString("You are a music industry news editor. Summarize this article in 2-3 plain English sentences, at most 200 characters total.\n")
	b.WriteString("Cover who did what, and when or where if stated. Keep artist, label, and company names exactly as written. Do not add opinions, labels like \"Summary:\", or quotation marks.\n\n")
	fmt.Fprintf(&b, "Title: %s\n", title)
	if content != "" {
		fmt.Fprintf(&b, "Article: %s\n", content)
	}
	fmt.Fprintf(&b, "URL: %s\n", link)
	return b.String()
}

// sanitizeContent normalizes whitespace and bounds prompt size, cutting at
// a sentence when possible.
func sanitizeContent(content string) string {
	content = strings.ReplaceAll(content, "\r", "")
	content = strings.Join(strings.Fields(content), " ")
	if utf8.RuneCountInString(content) <= maxPromptChars {
		return content
	}
	runes := []rune(content)
	trimmed := string(runes[:maxPromptChars])
	if idx := strings.LastIndex(trimmed, ". "); idx > maxPromptChars/4 {
		trimmed = trimmed[:idx+1]
	}
	return trimmed
}

var (
	labelPrefixRe = regexp.MustCompile(`(?i)^(summary|here is a summary|here's a summary)\s*:?\s*`)
)

// sanitizeResponse strips the framing models add despite instructions.
func sanitizeResponse(s string) string {
	s = strings.TrimSpace(s)
	s = labelPrefixRe.ReplaceAllString(s, "")
	s = strings.Trim(s, "\"'")
	s = strings.Join(strings.Fields(s), " ")
	return strings.TrimSpace(s)
}

func extractText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	var b strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				b.WriteString(string(text))
			}
		}
	}
	return b.String()
}
