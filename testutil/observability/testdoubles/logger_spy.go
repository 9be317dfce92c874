package testdoubles

import (
	"context"
	"sync"
)

// LogRecord is one captured log call.
type LogRecord struct {
	Level   string
	Message string
	Args    []any
	Context context.Context
}

// Arg returns the value logged for key.
func (r LogRecord) Arg(key string) (any, bool) {
	for i := 0; i+1 < len(r.Args); i += 2 {
		if k, ok := r.Args[i].(string); ok && k == key {
			return r.Args[i+1], true
		}
	}

	return nil, false
}

// LoggerSpy satisfies both eventstore.Logger and eventstore.ContextualLogger.
// Calls without a context are recorded with a nil Context.
type LoggerSpy struct {
	mu      sync.Mutex
	records []LogRecord
}

func NewLoggerSpy() *LoggerSpy {
	return &LoggerSpy{}
}

func (s *LoggerSpy) Debug(msg string, args ...any) { s.record(nil, "debug", msg, args) }
func (s *LoggerSpy) Info(msg string, args ...any)  { s.record(nil, "info", msg, args) }
func (s *LoggerSpy) Warn(msg string, args ...any)  { s.record(nil, "warn", msg, args) }
func (s *LoggerSpy) Error(msg string, args ...any) { s.record(nil, "error", msg, args) }

func (s *LoggerSpy) DebugContext(ctx context.Context, msg string, args ...any) {
	s.record(ctx, "debug", msg, args)
}

func (s *LoggerSpy) InfoContext(ctx context.Context, msg string, args ...any) {
	s.record(ctx, "info", msg, args)
}

func (s *LoggerSpy) WarnContext(ctx context.Context, msg string, args ...any) {
	s.record(ctx, "warn", msg, args)
}

func (s *LoggerSpy) ErrorContext(ctx context.Context, msg string, args ...any) {
	s.record(ctx, "error", msg, args)
}

func (s *LoggerSpy) record(ctx context.Context, level, msg string, args []any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = append(s.records, LogRecord{Level: level, Message: msg, Args: args, Context: ctx})
}

// Records returns a copy of all records, optionally restricted to one level.
func (s *LoggerSpy) Records(level ...string) []LogRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]LogRecord, 0, len(s.records))

	for _, r := range s.records {
		if len(level) == 0 || r.Level == level[0] {
			out = append(out, r)
		}
	}

	return out
}

// HasMessage reports whether msg was logged at the given level.
func (s *LoggerSpy) HasMessage(level, msg string) bool {
	for _, r := range s.Records(level) {
		if r.Message == msg {
			return true
		}
	}

	return false
}

// Reset drops all records.
func (s *LoggerSpy) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = nil
}
