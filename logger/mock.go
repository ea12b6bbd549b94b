package logger

import (
	"github.com/stretchr/testify/mock"
)

// MockLogger is a testify mock implementing Logger. Every method records its
// key/value pairs as a single []any argument, so expectations can match them
// with mock.Anything regardless of how many pairs a call site passes.
type MockLogger struct {
	mock.Mock
}

var _ Logger = (*MockLogger)(nil)

func NewMockLogger() *MockLogger {
	return &MockLogger{}
}

// AllowAll accepts any call, so a test can inspect the recorded calls with
// Messages instead of declaring every expectation. With returns the mock.
func (m *MockLogger) AllowAll() *MockLogger {
	for _, method := range []string{"Debug", "Info", "Warn", "Error", "Fatal"} {
		m.On(method, mock.Anything, mock.Anything).Maybe()
	}
	m.On("With", mock.Anything).Return(nil).Maybe()
	m.On("SetLevel", mock.Anything).Maybe()
	m.On("Level").Return(DebugLevel).Maybe()

	return m
}

// Messages returns the messages logged through method ("Debug", "Info", ...)
// in call order.
func (m *MockLogger) Messages(method string) []string {
	var msgs []string
	for _, c := range m.Calls {
		if c.Method != method || len(c.Arguments) == 0 {
			continue
		}
		if msg, ok := c.Arguments.Get(0).(string); ok {
			msgs = append(msgs, msg)
		}
	}

	return msgs
}

// Fields returns the key/value pairs of the first call to method with msg
// as a map, and false when there is none.
func (m *MockLogger) Fields(method string, msg string) (map[string]any, bool) {
	for _, c := range m.Calls {
		if c.Method != method || len(c.Arguments) < 2 || c.Arguments.Get(0) != msg {
			continue
		}

		kv, _ := c.Arguments.Get(1).([]any)
		fields := make(map[string]any, len(kv)/2)
		for i := 0; i+1 < len(kv); i += 2 {
			if key, ok := kv[i].(string); ok {
				fields[key] = kv[i+1]
			}
		}

		return fields, true
	}

	return nil, false
}

func (m *MockLogger) Debug(msg string, keysAndValues ...any) {
	m.Called(msg, keysAndValues)
}

func (m *MockLogger) Info(msg string, keysAndValues ...any) {
	m.Called(msg, keysAndValues)
}

func (m *MockLogger) Warn(msg string, keysAndValues ...any) {
	m.Called(msg, keysAndValues)
}

func (m *MockLogger) Error(msg string, keysAndValues ...any) {
	m.Called(msg, keysAndValues)
}

func (m *MockLogger) Fatal(msg string, keysAndValues ...any) {
	m.Called(msg, keysAndValues)
}

func (m *MockLogger) SetLevel(level Level) {
	m.Called(level)
}

func (m *MockLogger) Level() Level {
	args := m.Called()
	return args.Get(0).(Level)
}

// With returns the configured child, or the mock itself when the
// expectation returns nil.
func (m *MockLogger) With(keyValues ...any) Logger {
	args := m.Called(keyValues)
	if len(args) == 0 || args.Get(0) == nil {
		return m
	}

	return args.Get(0).(Logger)
}
