package testhelper

import (
	"fmt"
	"sync"

	"github.com/consensuslabs/extformatter/internal/logger"
)

// LogEntry represents a log entry with its message and fields
type LogEntry struct {
	Message string
	Fields  map[string]interface{}
}

type logSink struct {
	mu            sync.RWMutex
	infoMessages  []LogEntry
	errorMessages []LogEntry
	warnMessages  []LogEntry
	debugMessages []LogEntry
	debugEnabled  bool
}

// TestLogger records log entries for assertions. Loggers derived with
// WithFields share the same record.
type TestLogger struct {
	sink   *logSink
	fields map[string]interface{}
}

var _ logger.Logger = (*TestLogger)(nil)

// NewTestLogger creates a new test logger instance
func NewTestLogger(debugEnabled bool) *TestLogger {
	return &TestLogger{
		sink:   &logSink{debugEnabled: debugEnabled},
		fields: make(map[string]interface{}),
	}
}

// LogInfo implements logger.Logger
func (t *TestLogger) LogInfo(msg string, fields map[string]interface{}) {
	t.sink.mu.Lock()
	defer t.sink.mu.Unlock()
	t.sink.infoMessages = append(t.sink.infoMessages, LogEntry{Message: msg, Fields: t.mergeFields(fields)})
}

// LogError implements logger.Logger
func (t *TestLogger) LogError(err error, msg string) error {
	fields := map[string]interface{}{}
	if err != nil {
		fields["error"] = err.Error()
	}

	t.sink.mu.Lock()
	defer t.sink.mu.Unlock()
	t.sink.errorMessages = append(t.sink.errorMessages, LogEntry{Message: msg, Fields: t.mergeFields(fields)})
	return err
}

// LogErrorf implements logger.Logger
func (t *TestLogger) LogErrorf(err error, format string, args ...interface{}) error {
	return t.LogError(err, fmt.Sprintf(format, args...))
}

// LogFatal implements logger.Logger without exiting
func (t *TestLogger) LogFatal(err error, context string) {
	fields := map[string]interface{}{
		"context": context,
	}
	if err != nil {
		fields["error"] = err.Error()
	}

	t.sink.mu.Lock()
	defer t.sink.mu.Unlock()
	t.sink.errorMessages = append(t.sink.errorMessages, LogEntry{Message: "FATAL: " + context, Fields: t.mergeFields(fields)})
}

// LogDebug implements logger.Logger
func (t *TestLogger) LogDebug(message string, fields map[string]interface{}) {
	t.sink.mu.Lock()
	defer t.sink.mu.Unlock()
	if !t.sink.debugEnabled {
		return
	}
	t.sink.debugMessages = append(t.sink.debugMessages, LogEntry{Message: message, Fields: t.mergeFields(fields)})
}

// LogWarn implements logger.Logger
func (t *TestLogger) LogWarn(message string, fields map[string]interface{}) {
	t.sink.mu.Lock()
	defer t.sink.mu.Unlock()
	t.sink.warnMessages = append(t.sink.warnMessages, LogEntry{Message: message, Fields: t.mergeFields(fields)})
}

// WithFields implements logger.Logger
func (t *TestLogger) WithFields(fields map[string]interface{}) logger.Logger {
	return &TestLogger{
		sink:   t.sink,
		fields: t.mergeFields(fields),
	}
}

// GetInfoMessages returns all info level messages
func (t *TestLogger) GetInfoMessages() []LogEntry {
	t.sink.mu.RLock()
	defer t.sink.mu.RUnlock()
	return append([]LogEntry(nil), t.sink.infoMessages...)
}

// GetErrorMessages returns all error level messages
func (t *TestLogger) GetErrorMessages() []LogEntry {
	t.sink.mu.RLock()
	defer t.sink.mu.RUnlock()
	return append([]LogEntry(nil), t.sink.errorMessages...)
}

// GetWarnMessages returns all warning level messages
func (t *TestLogger) GetWarnMessages() []LogEntry {
	t.sink.mu.RLock()
	defer t.sink.mu.RUnlock()
	return append([]LogEntry(nil), t.sink.warnMessages...)
}

// GetDebugMessages returns all debug level messages
func (t *TestLogger) GetDebugMessages() []LogEntry {
	t.sink.mu.RLock()
	defer t.sink.mu.RUnlock()
	return append([]LogEntry(nil), t.sink.debugMessages...)
}

// HasInfo reports whether an info entry with the given message was recorded
func (t *TestLogger) HasInfo(msg string) bool {
	for _, e := range t.GetInfoMessages() {
		if e.Message == msg {
			return true
		}
	}
	return false
}

// ClearMessages clears all logged messages
func (t *TestLogger) ClearMessages() {
	t.sink.mu.Lock()
	defer t.sink.mu.Unlock()
	t.sink.infoMessages = nil
	t.sink.errorMessages = nil
	t.sink.warnMessages = nil
	t.sink.debugMessages = nil
}

// EnableDebug enables debug logging
func (t *TestLogger) EnableDebug() {
	t.sink.mu.Lock()
	defer t.sink.mu.Unlock()
	t.sink.debugEnabled = true
}

// DisableDebug disables debug logging
func (t *TestLogger) DisableDebug() {
	t.sink.mu.Lock()
	defer t.sink.mu.Unlock()
	t.sink.debugEnabled = false
}

func (t *TestLogger) mergeFields(fields map[string]interface{}) map[string]interface{} {
	merged := make(map[string]interface{}, len(t.fields)+len(fields))
	for k, v := range t.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return merged
}
