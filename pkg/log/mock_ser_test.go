package log_test

import "github.com/steemkit/steembridge/pkg/log"

var _ log.SpanEventRecorder = &MockSpanEventRecorder{}

// MockSpanEventRecorder keeps the last recorded event.
type MockSpanEventRecorder struct {
	traceID string
	spanID  string

	lastEvent MockSpanEvent
}

type MockSpanEvent struct {
	Name          string
	IsError       bool
	KeysAndValues []any
}

func NewMockSpanEventRecorder(traceID, spanID string) *MockSpanEventRecorder {
	return &MockSpanEventRecorder{traceID: traceID, spanID: spanID}
}

func (m *MockSpanEventRecorder) TraceID() string { return m.traceID }
func (m *MockSpanEventRecorder) SpanID() string { return m.spanID }

func (m *MockSpanEventRecorder) RecordEvent(name string, keysAndValues ...any) {
	m.lastEvent = MockSpanEvent{Name: name, KeysAndValues: keysAndValues}
}

func (m *MockSpanEventRecorder) RecordError(name string, keysAndValues ...any) {
	m.lastEvent = MockSpanEvent{Name: name, IsError: true, KeysAndValues: keysAndValues}
}

func (m *MockSpanEventRecorder) LastEvent() MockSpanEvent { return m.lastEvent }
