package storage

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/sunghyun2815/music-news-automation/internal/logger"
)

// PostgresStore keeps delivery state in PostgreSQL, for deployments where the
// state must survive the runner's filesystem.
type PostgresStore struct {
	db  *sql.DB
	ttl time.Duration
}

func NewPostgresStore(connectionString string, ttl time.Duration) (*PostgresStore, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &PostgresStore{db: db, ttl: ttl}
	if err := store.initSchema(); err != nil {
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return store, nil
}

func (ps *PostgresStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS notified_articles (
		id SERIAL PRIMARY KEY,
		article_id VARCHAR(64) UNIQUE NOT NULL,
		title TEXT NOT NULL,
		link TEXT NOT NULL,
		category VARCHAR(50),
		source VARCHAR(100),
		notified_at TIMESTAMP NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_notified_articles_article_id ON notified_articles(article_id);
	CREATE INDEX IF NOT EXISTS idx_notified_articles_notified_at ON notified_articles(notified_at);
	`

	_, err := ps.db.Exec(schema)
	return err
}

// IsNotified reads the key set. Query errors degrade to "not notified" so a
// flaky database cannot suppress the feed; the worst case is a duplicate send.
func (ps *PostgresStore) IsNotified(id string) bool {
	cutoff := time.Time{}
	if ps.ttl > 0 {
		cutoff = time.Now().Add(-ps.ttl)
	}

	var count int
	err := ps.db.QueryRow(
		`SELECT COUNT(*) FROM notified_articles WHERE article_id = $1 AND notified_at > $2`,
		id, cutoff,
	).Scan(&count)
	if err != nil {
		logger.Warn("delivery state lookup failed", "article_id", id, "error", err)
		return false
	}
	return count > 0
}

// MarkNotified upserts so overlapping retried runs cannot race on insert.
func (ps *PostgresStore) MarkNotified(rec DeliveryRecord) error {
	query := `
		INSERT INTO notified_articles (article_id, title, link, category, source, notified_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (article_id) DO UPDATE SET notified_at = NOW()
	`
	if _, err := ps.db.Exec(query, rec.ID, rec.Title, rec.Link, rec.Category, rec.Source); err != nil {
		return fmt.Errorf("mark notified: %w", err)
	}
	return nil
}

// Cleanup removes records older than the TTL window.
func (ps *PostgresStore) Cleanup() error {
	if ps.ttl <= 0 {
		return nil
	}
	cutoff := time.Now().Add(-ps.ttl)
	result, err := ps.db.Exec(`DELETE FROM notified_articles WHERE notified_at < $1`, cutoff)
	if err != nil {
		return fmt.Errorf("cleanup delivery state: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows > 0 {
		logger.Info("cleaned up expired delivery records", "count", rows)
	}
	return nil
}

func (ps *PostgresStore) Close() error {
	if ps.db != nil {
		return ps.db.Close()
	}
	return nil
}
