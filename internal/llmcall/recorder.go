package llmcall

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/jackzampolin/barback/internal/providers"
)

// Recorder appends Calls as JSON lines to a writer.
// A nil *Recorder is valid and records nothing.
type Recorder struct {
	mu     sync.Mutex
	w      *bufio.Writer
	closer io.Closer
	logger *slog.Logger
	count  int
}

// NewRecorder writes calls to w. The caller keeps ownership of w.
func NewRecorder(w io.Writer, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{w: bufio.NewWriter(w), logger: logger}
}

// OpenFile creates (or truncates) path and records calls into it.
func OpenFile(path string, logger *slog.Logger) (*Recorder, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open trace file: %w", err)
	}
	r := NewRecorder(f, logger)
	r.closer = f
	return r, nil
}

// Record captures one LLM call. Failures to write are logged, never returned:
// tracing must not change the outcome of a run.
func (r *Recorder) Record(result *providers.ChatResult, opts RecordOptions) {
	if r == nil {
		return
	}
	r.RecordCall(FromChatResult(result, opts))
}

// RecordCall captures an already-constructed Call.
func (r *Recorder) RecordCall(call *Call) {
	if r == nil || call == nil {
		return
	}

	data, err := json.Marshal(call)
	if err != nil {
		r.logger.Warn("failed to serialize LLM call record", "error", err, "call_id", call.ID)
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, err := r.w.Write(append(data, '\n')); err != nil {
		r.logger.Warn("failed to write LLM call record", "error", err, "call_id", call.ID)
		return
	}
	r.count++
}

// Count returns the number of calls recorded so far.
func (r *Recorder) Count() int {
	if r == nil {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}

// Close flushes buffered records and closes the file opened by OpenFile.
func (r *Recorder) Close() error {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.w.Flush(); err != nil {
		return fmt.Errorf("failed to flush trace: %w", err)
	}
	if r.closer != nil {
		return r.closer.Close()
	}
	return nil
}
