// Package config loads pipeline settings from the environment with sane
// defaults, so an empty environment still yields a runnable offline
// pipeline (rule-based summaries, file-backed delivery state, no
// notification channels).
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Pipeline configuration files
	FeedsConfigPath string
	LexiconsPath    string
	SourcesPath     string

	// Collection
	MaxPerFeed        int
	NewsMaxAge        time.Duration
	MinMusicRelevance float64

	// Scoring
	RecencyHalfLife time.Duration

	// Summaries
	AIEnabled      bool
	GeminiAPIKey   string
	AISummaryLimit int // AI calls per run; the rest get rule-based summaries
	AIDailyLimit   int // AI calls per day across runs (0 = unlimited)
	AITimeout      time.Duration

	// Feed output
	MaxPerCategory int
	OutputJSONPath string
	ArchiveDir     string

	// Scraper
	ScrapeConcurrency int

	// Notifications
	SlackToken     string
	SlackChannelID string
	SMTPHost       string
	SMTPPort       int
	SMTPUsername   string
	SMTPPassword   string
	EmailFrom      string
	EmailTo        []string

	// Delivery state
	StateBackend  string // file | postgres | redis
	StateFilePath string
	DatabaseURL   string
	RedisAddr     string
	RedisPassword string
	StateTTL      time.Duration

	// App
	Debug         bool
	RetryAttempts int
	RetryDelay    time.Duration
	MonitorAddr   string // empty disables the health/metrics listener
}

func Load() (*Config, error) {
	cfg := &Config{
		FeedsConfigPath:   "configs/feeds.yaml",
		LexiconsPath:      "configs/lexicons.yaml",
		SourcesPath:       "configs/sources.yaml",
		MaxPerFeed:        30,
		NewsMaxAge:        72 * time.Hour,
		MinMusicRelevance: 0.3,
		RecencyHalfLife:   48 * time.Hour,
		AISummaryLimit:    10,
		AITimeout:         30 * time.Second,
		MaxPerCategory:    4,
		OutputJSONPath:    "music_news.json",
		ArchiveDir:        "archive",
		ScrapeConcurrency: 4,
		SMTPPort:          587,
		StateBackend:      "file",
		StateFilePath:     "notified_articles.json",
		RedisAddr:         "localhost:6379",
		StateTTL:          7 * 24 * time.Hour,
		RetryAttempts:     2,
		RetryDelay:        2 * time.Second,
	}

	cfg.FeedsConfigPath = envOrDefault("FEEDS_CONFIG_PATH", cfg.FeedsConfigPath)
	cfg.LexiconsPath = envOrDefault("LEXICONS_PATH", cfg.LexiconsPath)
	cfg.SourcesPath = envOrDefault("SOURCES_PATH", cfg.SourcesPath)

	cfg.MaxPerFeed = envIntOrDefault("MAX_PER_FEED", cfg.MaxPerFeed)
	if v := envIntOrDefault("NEWS_MAX_AGE_HOURS", 0); v > 0 {
		cfg.NewsMaxAge = time.Duration(v) * time.Hour
	}
	if v := os.Getenv("MIN_MUSIC_RELEVANCE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 && f <= 1 {
			cfg.MinMusicRelevance = f
		}
	}
	if v := envIntOrDefault("RECENCY_HALF_LIFE_HOURS", 0); v > 0 {
		cfg.RecencyHalfLife = time.Duration(v) * time.Hour
	}

	cfg.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	cfg.AIEnabled = cfg.GeminiAPIKey != "" && os.Getenv("AI_DISABLED") != "true"
	cfg.AISummaryLimit = envIntOrDefault("AI_SUMMARY_LIMIT", cfg.AISummaryLimit)
	cfg.AIDailyLimit = envIntOrDefault("AI_DAILY_LIMIT", cfg.AIDailyLimit)
	if v := envIntOrDefault("AI_TIMEOUT_SECONDS", 0); v > 0 {
		cfg.AITimeout = time.Duration(v) * time.Second
	}

	cfg.MaxPerCategory = envIntOrDefault("MAX_PER_CATEGORY", cfg.MaxPerCategory)
	cfg.OutputJSONPath = envOrDefault("OUTPUT_JSON_PATH", cfg.OutputJSONPath)
	cfg.ArchiveDir = envOrDefault("ARCHIVE_DIR", cfg.ArchiveDir)
	cfg.ScrapeConcurrency = envIntOrDefault("SCRAPE_CONCURRENCY", cfg.ScrapeConcurrency)

	cfg.SlackToken = os.Getenv("SLACK_BOT_TOKEN")
	cfg.SlackChannelID = os.Getenv("SLACK_CHANNEL_ID")
	cfg.SMTPHost = os.Getenv("SMTP_HOST")
	cfg.SMTPPort = envIntOrDefault("SMTP_PORT", cfg.SMTPPort)
	cfg.SMTPUsername = os.Getenv("SMTP_USERNAME")
	cfg.SMTPPassword = os.Getenv("SMTP_PASSWORD")
	cfg.EmailFrom = os.Getenv("EMAIL_FROM")
	if v := os.Getenv("EMAIL_TO"); v != "" {
		for _, addr := range strings.Split(v, ",") {
			if addr = strings.TrimSpace(addr); addr != "" {
				cfg.EmailTo = append(cfg.EmailTo, addr)
			}
		}
	}

	cfg.StateBackend = envOrDefault("STATE_BACKEND", cfg.StateBackend)
	cfg.StateFilePath = envOrDefault("STATE_FILE_PATH", cfg.StateFilePath)
	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	cfg.RedisAddr = envOrDefault("REDIS_ADDR", cfg.RedisAddr)
	cfg.RedisPassword = os.Getenv("REDIS_PASSWORD")
	if v := envIntOrDefault("STATE_TTL_HOURS", 0); v > 0 {
		cfg.StateTTL = time.Duration(v) * time.Hour
	}

	cfg.Debug = os.Getenv("DEBUG") == "true"
	cfg.RetryAttempts = envIntOrDefault("RETRY_ATTEMPTS", cfg.RetryAttempts)
	if v := envIntOrDefault("RETRY_DELAY_SECONDS", 0); v > 0 {
		cfg.RetryDelay = time.Duration(v) * time.Second
	}
	cfg.MonitorAddr = os.Getenv("MONITOR_ADDR")

	return cfg, cfg.Validate()
}

func (c *Config) Validate() error {
	switch c.StateBackend {
	case "file", "postgres", "redis":
	default:
		return fmt.Errorf("STATE_BACKEND must be file, postgres or redis (got %q)", c.StateBackend)
	}
	if c.StateBackend == "postgres" && c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required when STATE_BACKEND=postgres")
	}
	if c.SlackToken != "" && c.SlackChannelID == "" {
		return fmt.Errorf("SLACK_CHANNEL_ID is required when SLACK_BOT_TOKEN is set")
	}
	if c.SMTPHost != "" && (c.EmailFrom == "" || len(c.EmailTo) == 0) {
		return fmt.Errorf("EMAIL_FROM and EMAIL_TO are required when SMTP_HOST is set")
	}
	if c.AISummaryLimit < 0 {
		return fmt.Errorf("AI_SUMMARY_LIMIT must not be negative")
	}
	if c.MaxPerCategory < 1 {
		return fmt.Errorf("MAX_PER_CATEGORY must be at least 1")
	}
	return nil
}

// SlackConfigured reports whether the Slack channel can be wired.
func (c *Config) SlackConfigured() bool {
	return c.SlackToken != "" && c.SlackChannelID != ""
}

// EmailConfigured reports whether the email channel can be wired.
func (c *Config) EmailConfigured() bool {
	return c.SMTPHost != "" && c.EmailFrom != "" && len(c.EmailTo) > 0
}

func envOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func envIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
