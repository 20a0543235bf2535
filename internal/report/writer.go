package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sunghyun2815/music-news-automation/internal/logger"
)

// Write serializes the snapshot to outputPath and, when archiveDir is set,
// drops a timestamped copy there. The main file failing is fatal to the
// caller; a failed archive copy only logs.
func Write(snap Snapshot, outputPath, archiveDir string) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	if dir := filepath.Dir(outputPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := os.WriteFile(outputPath, data, 0644); err != nil {
		return fmt.Errorf("write feed: %w", err)
	}
	logger.Info("feed written", "path", outputPath, "articles", snap.Metadata.TotalNews)

	if archiveDir == "" {
		return nil
	}
	if err := os.MkdirAll(archiveDir, 0755); err != nil {
		logger.Warn("failed to create archive dir", "dir", archiveDir, "error", err)
		return nil
	}
	name := fmt.Sprintf("music_news_%s.json", snap.Metadata.GeneratedAt.UTC().Format("20060102_150405"))
	archivePath := filepath.Join(archiveDir, name)
	if err := os.WriteFile(archivePath, data, 0644); err != nil {
		logger.Warn("failed to write archive copy", "path", archivePath, "error", err)
		return nil
	}
	logger.Debug("archive copy written", "path", archivePath)
	return nil
}
