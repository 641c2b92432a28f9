package retrieval

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// QueryLogEntry is one answered query as written to the query log.
type QueryLogEntry struct {
	Timestamp       time.Time     `json:"timestamp"`
	Question        string        `json:"question"`
	Candidates      int           `json:"candidates"`
	SourcePositions []int         `json:"source_positions"`
	Duration        time.Duration `json:"duration_ns"`
	LatencyMs       int64         `json:"latency_ms"`
	CorrelationID   string        `json:"correlation_id"`
}

// QueryLogger writes entries as JSON lines. It is safe for concurrent use.
type QueryLogger struct {
	mu  sync.Mutex
	enc *json.Encoder
	f   *os.File
}

func NewQueryLogger(w io.Writer) *QueryLogger {
	return &QueryLogger{enc: json.NewEncoder(w)}
}

// NewFileQueryLogger writes entries to stdout and appends them to path,
// creating its directory if needed.
func NewFileQueryLogger(path string) (*QueryLogger, error) {
	path = filepath.Clean(path)
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600) // #nosec G304 -- path is from application config, not user input
	if err != nil {
		return nil, err
	}
	l := NewQueryLogger(io.MultiWriter(os.Stdout, f))
	l.f = f
	return l, nil
}

func (l *QueryLogger) Log(entry QueryLogEntry) {
	entry.Timestamp = time.Now()
	entry.LatencyMs = entry.Duration.Milliseconds()
	if entry.SourcePositions == nil {
		entry.SourcePositions = []int{}
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.enc.Encode(entry); err != nil {
		slog.Error("failed to write query log entry", "error", err)
	}
}

// Close releases the log file, if any.
func (l *QueryLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.f == nil {
		return nil
	}
	err := l.f.Close()
	l.f = nil
	return err
}
