package log_test

import "github.com/steemkit/steembridge/pkg/log"

var _ log.Logger = &MockLogger{}

// MockLogger captures the last entry and the logger state for assertions.
type MockLogger struct {
	lastEntry MockLogEntry

	name          string
	keysAndValues []any
	callerSkip    int
}

func NewMockLogger() *MockLogger {
	return &MockLogger{name: "mock", keysAndValues: []any{}}
}

type MockLogEntry struct {
	Level         log.Level
	Message       string
	KeysAndValues []any
}

func (ml *MockLogger) Debug(msg string, keysAndValues ...any) {
	ml.record(log.LevelDebug, msg, keysAndValues...)
}

func (ml *MockLogger) Info(msg string, keysAndValues ...any) {
	ml.record(log.LevelInfo, msg, keysAndValues...)
}

func (ml *MockLogger) Warn(msg string, keysAndValues ...any) {
	ml.record(log.LevelWarn, msg, keysAndValues...)
}

func (ml *MockLogger) Error(msg string, keysAndValues ...any) {
	ml.record(log.LevelError, msg, keysAndValues...)
}

func (ml *MockLogger) Fatal(msg string, keysAndValues ...any) {
	ml.record(log.LevelFatal, msg, keysAndValues...)
}

func (ml *MockLogger) WithKV(key string, value any) log.Logger {
	ml.keysAndValues = append(ml.keysAndValues, key, value)
	return ml
}

func (ml *MockLogger) GetAllKV() []any { return ml.keysAndValues }

func (ml *MockLogger) WithName(name string) log.Logger {
	ml.name = name
	return ml
}

func (ml *MockLogger) Name() string { return ml.name }

func (ml *MockLogger) AddCallerSkip(skip int) log.Logger {
	ml.callerSkip += skip
	return ml
}

func (ml *MockLogger) CallerSkip() int { return ml.callerSkip }

func (ml *MockLogger) LastEntry() MockLogEntry { return ml.lastEntry }

func (ml *MockLogger) record(level log.Level, msg string, keysAndValues ...any) {
	kv := append([]any{}, ml.keysAndValues...)
	ml.lastEntry = MockLogEntry{
		Level:         level,
		Message:       msg,
		KeysAndValues: append(kv, keysAndValues...),
	}
}
