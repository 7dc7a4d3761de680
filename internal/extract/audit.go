package extract

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// AuditWriter persists each successful raw CSV response verbatim for offline
// debugging. This is a side channel: a write failure is logged, never
// propagated into the extraction result.
type AuditWriter struct {
	dir    string
	logger *slog.Logger
}

// NewAuditWriter returns a writer rooted at dir; empty dir disables writes.
func NewAuditWriter(dir string, logger *slog.Logger) *AuditWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditWriter{dir: dir, logger: logger}
}

// Save writes content under a timestamp-keyed name and returns the path.
func (w *AuditWriter) Save(content string) string {
	if w.dir == "" {
		return ""
	}
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		w.logger.Warn("audit.mkdir_failed", "dir", w.dir, "error", err)
		return ""
	}
	name := fmt.Sprintf("receipt_%s_%s.csv",
		time.Now().UTC().Format("20060102_150405"),
		uuid.New().String()[:8])
	path := filepath.Join(w.dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		w.logger.Warn("audit.write_failed", "path", path, "error", err)
		return ""
	}
	w.logger.Debug("audit.saved", "path", path, "bytes", len(content))
	return path
}
