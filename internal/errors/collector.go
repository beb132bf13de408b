package errors

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"microreport/internal/infrastructure"
)

// Entry is a recorded diagnostic with its severity.
type Entry struct {
	Time  time.Time
	Level slog.Level
	Err   *ProcessingError
}

// Collector accumulates diagnostics for the duration of a run.
// Every entry is echoed to the console logger when recorded and written to
// the error log on Flush.
type Collector struct {
	mu      sync.Mutex
	entries []Entry
	flushed int
	logger  *slog.Logger
	now     func() time.Time
}

// NewCollector creates an empty collector.
func NewCollector(logger *slog.Logger) *Collector {
	return &Collector{
		logger: infrastructure.WithComponent(logger, "diagnostics"),
		now:    time.Now,
	}
}

// Warn records a warning-level diagnostic.
func (c *Collector) Warn(ctx context.Context, err *ProcessingError) {
	c.Add(ctx, slog.LevelWarn, err)
}

// Error records an error-level diagnostic.
func (c *Collector) Error(ctx context.Context, err *ProcessingError) {
	c.Add(ctx, slog.LevelError, err)
}

// Add records a diagnostic at the given level.
func (c *Collector) Add(ctx context.Context, level slog.Level, err *ProcessingError) {
	if err == nil {
		return
	}

	c.mu.Lock()
	c.entries = append(c.entries, Entry{Time: c.now(), Level: level, Err: err})
	c.mu.Unlock()

	c.logger.LogAttrs(ctx, level, err.Message, attrs(err)...)
}

// Entries returns a copy of all recorded diagnostics.
func (c *Collector) Entries() []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Len returns the number of recorded diagnostics.
func (c *Collector) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Count returns the number of diagnostics of the given kind.
func (c *Collector) Count(kind Kind) int {
	n := 0
	for _, e := range c.Entries() {
		if e.Err.Kind == kind {
			n++
		}
	}
	return n
}

// CountByKind returns diagnostic counts keyed by kind. Kinds with no
// diagnostics are left out.
func (c *Collector) CountByKind() map[Kind]int {
	counts := make(map[Kind]int)
	for _, kind := range Kinds {
		if n := c.Count(kind); n > 0 {
			counts[kind] = n
		}
	}
	return counts
}

// ForSample returns the diagnostics recorded for one sample.
func (c *Collector) ForSample(sample string) []Entry {
	var out []Entry
	for _, e := range c.Entries() {
		if e.Err.Sample == sample {
			out = append(out, e)
		}
	}
	return out
}

// Flush appends every diagnostic not yet flushed to the JSON-lines log at
// path. Nothing is created when there is nothing to write.
func (c *Collector) Flush(ctx context.Context, path string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	pending := c.entries[c.flushed:]
	if len(pending) == 0 {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create error log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open error log %s: %w", path, err)
	}
	defer f.Close()

	handler := infrastructure.NewLogger(f, "debug", "json").Handler()
	for _, e := range pending {
		r := slog.NewRecord(e.Time, e.Level, e.Err.Message, 0)
		r.AddAttrs(attrs(e.Err)...)
		if err := handler.Handle(ctx, r); err != nil {
			return fmt.Errorf("failed to write error log entry: %w", err)
		}
	}

	c.flushed = len(c.entries)
	return nil
}

func attrs(err *ProcessingError) []slog.Attr {
	out := []slog.Attr{slog.String("kind", string(err.Kind))}
	if err.Sample != "" {
		out = append(out, slog.String("sample", err.Sample))
	}
	if err.Path != "" {
		out = append(out, slog.String("path", err.Path))
	}
	if err.EntryIndex >= 0 {
		out = append(out, slog.Int("entry_index", err.EntryIndex))
	}
	if err.Field != "" {
		out = append(out, slog.String("field", err.Field))
	}
	if err.Cause != nil {
		out = append(out, slog.String("error", err.Cause.Error()))
	}
	return out
}
