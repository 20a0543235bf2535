package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sunghyun2815/music-news-automation/internal/news"
)

// Slack message hard limit is 40000 chars; stay well under it so a long
// digest stays readable in the channel.
const slackMessageLimit = 4000

// SlackChannel posts the digest via chat.postMessage with a bot token.
type SlackChannel struct {
	Token     string
	ChannelID string
	client    *http.Client
	now       func() time.Time
	endpoint  string
}

func NewSlackChannel(token, channelID string) *SlackChannel {
	return &SlackChannel{
		Token:     token,
		ChannelID: channelID,
		client:    &http.Client{Timeout: 30 * time.Second},
		now:       time.Now,
		endpoint:  "https://slack.com/api/chat.postMessage",
	}
}

func (s *SlackChannel) Name() string { return "slack" }

func (s *SlackChannel) Send(ctx context.Context, articles []news.SummarizedArticle) error {
	text := s.formatDigest(articles)
	for i, chunk := range splitMessage(text, slackMessageLimit) {
		if err := s.postMessage(ctx, chunk); err != nil {
			return fmt.Errorf("slack message %d: %w", i+1, err)
		}
	}
	return nil
}

func (s *SlackChannel) postMessage(ctx context.Context, text string) error {
	payload := map[string]interface{}{
		"channel":      s.ChannelID,
		"text":         text,
		"unfurl_links": false,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("Authorization", "Bearer "+s.Token)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("slack API status %d", resp.StatusCode)
	}

	// Slack reports request-level errors with 200 + ok:false.
	var apiResp struct {
		OK    bool   `json:"ok"`
		Error string `json:"error"`
	}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if err := json.Unmarshal(raw, &apiResp); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if !apiResp.OK {
		return fmt.Errorf("slack API error: %s", apiResp.Error)
	}
	return nil
}

func (s *SlackChannel) formatDigest(articles []news.SummarizedArticle) string {
	var b strings.Builder
	fmt.Fprintf(&b, "*%s*\n%d stories\n", digestTitle(s.now()), len(articles))

	grouped := groupByCategory(articles)
	for _, cat := range news.Categories {
		group := grouped[cat]
		if len(group) == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n%s *%s*\n", categoryEmojis[cat], cat)
		for _, a := range group {
			fmt.Fprintf(&b, "• <%s|%s>\n", a.Link, escapeSlack(a.Title))
			fmt.Fprintf(&b, "  %s\n", escapeSlack(a.Summary))
			fmt.Fprintf(&b, "  _%s_ · %s\n", escapeSlack(a.Source), formatTags(a.Tags))
		}
	}
	return b.String()
}

// escapeSlack escapes the three characters Slack mrkdwn reserves.
func escapeSlack(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return s
}

// splitMessage breaks text at line boundaries so no chunk exceeds limit.
// A single oversized line is cut mid-line rather than dropped.
func splitMessage(text string, limit int) []string {
	if len(text) <= limit {
		return []string{text}
	}
	var chunks []string
	var cur strings.Builder
	for _, line := range strings.Split(text, "\n") {
		for len(line) > limit {
			if cur.Len() > 0 {
				chunks = append(chunks, cur.String())
				cur.Reset()
			}
			cut := runeBoundary(line, limit)
			chunks = append(chunks, line[:cut])
			line = line[cut:]
		}
		if cur.Len() > 0 && cur.Len()+len(line)+1 > limit {
			chunks = append(chunks, cur.String())
			cur.Reset()
		}
		if cur.Len() > 0 {
			cur.WriteByte('\n')
		}
		cur.WriteString(line)
	}
	if cur.Len() > 0 {
		chunks = append(chunks, cur.String())
	}
	return chunks
}

// runeBoundary returns the largest cut <= limit that does not split a
// multi-byte rune.
func runeBoundary(s string, limit int) int {
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	if cut == 0 {
		return limit
	}
	return cut
}
