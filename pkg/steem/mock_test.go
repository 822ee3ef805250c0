package steem_test

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/steemkit/steembridge/pkg/log"
	"github.com/steemkit/steembridge/pkg/rpc"
)

var _ log.Logger = (*RecordingLogger)(nil)

// RecordingLogger keeps every entry, shared by all derived loggers.
type RecordingLogger struct {
	mu      *sync.Mutex
	entries *[]LogEntry
	name    string
	kv      []any
}

type LogEntry struct {
	Level         log.Level
	Name          string
	Message       string
	KeysAndValues []any
}

func NewRecordingLogger() *RecordingLogger {
	return &RecordingLogger{mu: &sync.Mutex{}, entries: &[]LogEntry{}, name: "test"}
}

func (rl *RecordingLogger) Debug(msg string, kv ...any) { rl.record(log.LevelDebug, msg, kv) }
func (rl *RecordingLogger) Info(msg string, kv ...any) { rl.record(log.LevelInfo, msg, kv) }
func (rl *RecordingLogger) Warn(msg string, kv ...any) { rl.record(log.LevelWarn, msg, kv) }
func (rl *RecordingLogger) Error(msg string, kv ...any) { rl.record(log.LevelError, msg, kv) }
func (rl *RecordingLogger) Fatal(msg string, kv ...any) { rl.record(log.LevelFatal, msg, kv) }

func (rl *RecordingLogger) WithKV(key string, value any) log.Logger {
	derived := *rl
	derived.kv = append(append([]any{}, rl.kv...), key, value)
	return &derived
}

func (rl *RecordingLogger) GetAllKV() []any { return rl.kv }

func (rl *RecordingLogger) WithName(name string) log.Logger {
	derived := *rl
	derived.name = name
	return &derived
}

func (rl *RecordingLogger) Name() string { return rl.name }

func (rl *RecordingLogger) AddCallerSkip(int) log.Logger { return rl }

func (rl *RecordingLogger) record(level log.Level, msg string, kv []any) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	all := append(append([]any{}, rl.kv...), kv...)
	*rl.entries = append(*rl.entries, LogEntry{Level: level, Name: rl.name, Message: msg, KeysAndValues: all})
}

// Entries returns the entries at level.
func (rl *RecordingLogger) Entries(level log.Level) []LogEntry {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	var out []LogEntry
	for _, e := range *rl.entries {
		if e.Level == level {
			out = append(out, e)
		}
	}
	return out
}

// Value returns the value logged under key.
func (e LogEntry) Value(key string) any {
	for i := 0; i+1 < len(e.KeysAndValues); i += 2 {
		if e.KeysAndValues[i] == key {
			return e.KeysAndValues[i+1]
		}
	}
	return nil
}

// MockInvoker answers calls from a table keyed by method and, for
// get_api_by_name, by the probed sub-API.
type MockInvoker struct {
	mu      sync.Mutex
	replies map[string]func() (*rpc.Response, error)
	calls   []MockCall
}

type MockCall struct {
	API    rpc.SubAPI
	Method rpc.Method
	Params []any
}

func NewMockInvoker() *MockInvoker {
	return &MockInvoker{replies: make(map[string]func() (*rpc.Response, error))}
}

func mockKey(method rpc.Method, arg string) string {
	return fmt.Sprintf("%s/%s", method, arg)
}

// Result makes method (with first argument arg) answer v.
func (m *MockInvoker) Result(method rpc.Method, arg string, v any) {
	raw, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	m.set(mockKey(method, arg), func() (*rpc.Response, error) {
		return &rpc.Response{Result: raw}, nil
	})
}

// RemoteError makes method answer an error object.
func (m *MockInvoker) RemoteError(method rpc.Method, arg string, code int, message string) {
	m.set(mockKey(method, arg), func() (*rpc.Response, error) {
		return &rpc.Response{Error: &rpc.ResponseError{Code: code, Message: message}}, nil
	})
}

// Fail makes method fail with err.
func (m *MockInvoker) Fail(method rpc.Method, arg string, err error) {
	m.set(mockKey(method, arg), func() (*rpc.Response, error) { return nil, err })
}

func (m *MockInvoker) set(key string, reply func() (*rpc.Response, error)) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.replies[key] = reply
}

func (m *MockInvoker) Calls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]MockCall(nil), m.calls...)
}

func (m *MockInvoker) Invoke(_ context.Context, api rpc.SubAPI, method rpc.Method, params ...any) (*rpc.Response, error) {
	m.mu.Lock()
	m.calls = append(m.calls, MockCall{API: api, Method: method, Params: params})
	arg := ""
	if len(params) > 0 {
		arg = fmt.Sprint(params[0])
	}
	reply, ok := m.replies[mockKey(method, arg)]
	m.mu.Unlock()

	if !ok {
		return &rpc.Response{Result: json.RawMessage("null")}, nil
	}
	return reply()
}
