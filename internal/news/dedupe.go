package news

import (
	"crypto/sha256"
	"encoding/hex"
	"html"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/sunghyun2815/music-news-automation/internal/logger"
)

var htmlTagRe = regexp.MustCompile(`<[^>]*>`)

// NormalizeURL lowers scheme and host, drops the fragment and common tracking
// query parameters, and trims the trailing slash so that share links and
// campaign links for the same article collapse to one key.
func NormalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return strings.ToLower(raw)
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""

	q := u.Query()
	for k := range q {
		lk := strings.ToLower(k)
		if strings.HasPrefix(lk, "utm_") || lk == "fbclid" || lk == "gclid" || lk == "ref" {
			q.Del(k)
		}
	}
	u.RawQuery = q.Encode()

	return strings.TrimRight(u.String(), "/")
}

// CleanDescription strips markup and entities from a feed description and
// collapses whitespace. Empty input stays empty.
func CleanDescription(s string) string {
	s = htmlTagRe.ReplaceAllString(s, " ")
	s = html.UnescapeString(s)
	return strings.Join(strings.Fields(s), " ")
}

// ArticleID derives the stable identity for a raw article: the normalized URL
// when usable, otherwise normalized title plus source. The first 16 hex chars
// of the sha256 are plenty for a corpus this size and keep state files short.
func ArticleID(a RawArticle) string {
	key := dedupeKey(a)
	h := sha256.Sum256([]byte(key))
	return hex.EncodeToString(h[:])[:16]
}

func dedupeKey(a RawArticle) string {
	if nu := NormalizeURL(a.Link); nu != "" && strings.Contains(nu, "://") {
		return "url|" + nu
	}
	title := strings.Join(strings.Fields(strings.ToLower(a.Title)), " ")
	return "title|" + title + "|" + strings.ToLower(strings.TrimSpace(a.Source))
}

// Dedupe collapses near-identical raw articles into canonical records.
// Within a group it keeps the earliest valid publish date, the longest clean
// description and the union of contributing sources. Articles without a title
// are dropped: they cannot be classified or displayed. Output preserves
// first-seen order so downstream tie-breaks stay deterministic.
func Dedupe(raw []RawArticle, collectedAt time.Time) []CanonicalArticle {
	byID := make(map[string]*CanonicalArticle)
	var order []string

	for _, item := range raw {
		if strings.TrimSpace(item.Title) == "" {
			logger.Debug("dropping article without title", "link", item.Link)
			continue
		}

		id := ArticleID(item)
		clean := CleanDescription(item.Description)

		published := item.Published
		estimated := false
		if published.IsZero() {
			published = collectedAt
			estimated = true
			logger.Debug("article has no usable date, using collection time",
				"title", item.Title, "raw_date", item.PublishedRaw)
		}

		existing, ok := byID[id]
		if !ok {
			byID[id] = &CanonicalArticle{
				ID:             id,
				Title:          strings.TrimSpace(item.Title),
				Link:           item.Link,
				Source:         item.Source,
				Sources:        []string{item.Source},
				Published:      published,
				DateEstimated:  estimated,
				DescriptionRaw: item.Description,
				Description:    clean,
			}
			order = append(order, id)
			continue
		}

		// Merge duplicate: earliest real date wins over any estimate.
		if !estimated && (existing.DateEstimated || published.Before(existing.Published)) {
			existing.Published = published
			existing.DateEstimated = false
		}
		if len(clean) > len(existing.Description) {
			existing.Description = clean
			existing.DescriptionRaw = item.Description
		}
		if item.Source != "" && !containsString(existing.Sources, item.Source) {
			existing.Sources = append(existing.Sources, item.Source)
		}
	}

	out := make([]CanonicalArticle, 0, len(order))
	for _, id := range order {
		out = append(out, *byID[id])
	}
	return out
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
