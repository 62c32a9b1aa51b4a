package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"loadtest-stats/internal/stats"
)

// FileWriter persists snapshot JSON files to a local directory
type FileWriter struct {
	dir    string
	logger *zap.Logger
}

// NewFileWriter creates a writer targeting the given directory, creating it
// if needed on first write
func NewFileWriter(dir string, logger *zap.Logger) *FileWriter {
	return &FileWriter{dir: dir, logger: logger}
}

// Write serializes the snapshot and writes it to the directory, returning
// the written file path
func (w *FileWriter) Write(snapshot *stats.AggregatedStats) (string, error) {
	data, err := snapshot.ToJSON()
	if err != nil {
		return "", fmt.Errorf("failed to serialize snapshot: %w", err)
	}

	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	path := filepath.Join(w.dir, snapshotFileName(snapshot))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write snapshot file: %w", err)
	}

	w.logger.Info("snapshot written", zap.String("path", path), zap.Int("tasks", len(snapshot.Tasks)))
	return path, nil
}

// Read loads and normalizes a previously written snapshot file
func Read(path string) (*stats.AggregatedStats, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot file: %w", err)
	}
	return stats.AggregatedStatsFromJSON(data)
}

// snapshotFileName derives a stable file name from the snapshot metadata
func snapshotFileName(snapshot *stats.AggregatedStats) string {
	tag := "stats"
	timestamp := time.Now().Unix()
	if md := snapshot.Metadata; md != nil {
		tag = md.Tag
		timestamp = md.Timestamp
	}
	return fmt.Sprintf("%s-%d.stats.json", tag, timestamp)
}
