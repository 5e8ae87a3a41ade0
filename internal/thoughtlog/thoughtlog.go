package thoughtlog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Entry is one logged recursion step. Entries are append-only and never read
// back by the service.
type Entry struct {
	Timestamp string `json:"timestamp"`
	Input     string `json:"input"`
	Output    string `json:"output"`
	Mode      string `json:"mode"`
	Model     string `json:"model"`
}

// Writer appends newline-delimited JSON entries to a file per calendar day.
type Writer struct {
	dir    string
	now    func() time.Time
	mu     sync.Mutex
	logger *zap.Logger
}

// NewWriter creates the log directory if needed and returns a Writer.
func NewWriter(dir string, logger *zap.Logger) (*Writer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create log dir %s: %w", dir, err)
	}
	return &Writer{dir: dir, now: time.Now, logger: logger}, nil
}

// SetClock overrides the wall clock. Used by tests to pin the day.
func (w *Writer) SetClock(now func() time.Time) { w.now = now }

// Path returns the log file path for the given day.
func (w *Writer) Path(t time.Time) string {
	return filepath.Join(w.dir, fmt.Sprintf("thoughts_%s.ndjson", t.Format("20060102")))
}

// Append writes one entry as a single JSON line to today's file. The date is
// resolved per call so a long-lived process rolls over at midnight.
func (w *Writer) Append(e Entry) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal entry: %w", err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	f, err := os.OpenFile(w.Path(w.now()), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open thought log: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("append thought log: %w", err)
	}
	return nil
}
