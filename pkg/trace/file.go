package trace

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/bramblebt/bramble/pkg/domain"
)

// FileLogger appends one JSON line per status transition to a file.
// The format is self-describing and greppable; replay tooling only needs a
// line-oriented JSON decoder.
type FileLogger struct {
	mu   sync.Mutex
	f    *os.File
	w    *bufio.Writer
	enc  *json.Encoder
	errs int
}

// NewFileLogger opens (or creates, truncating) the transition log at path.
func NewFileLogger(path string) (*FileLogger, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open trace file: %w", err)
	}
	w := bufio.NewWriter(f)
	return &FileLogger{f: f, w: w, enc: json.NewEncoder(w)}, nil
}

// Record writes one transition. I/O errors are counted, not propagated: a
// failing log target must not destabilize tree evaluation.
func (l *FileLogger) Record(tr domain.Transition) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.enc.Encode(tr); err != nil {
		l.errs++
	}
}

// DroppedWrites reports how many transitions failed to serialize.
func (l *FileLogger) DroppedWrites() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.errs
}

// Flush forces buffered lines to disk.
func (l *FileLogger) Flush() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Flush()
}

// Close flushes and closes the underlying file.
func (l *FileLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.w.Flush(); err != nil {
		l.f.Close()
		return err
	}
	return l.f.Close()
}
