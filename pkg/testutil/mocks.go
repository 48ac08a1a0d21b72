// Package testutil provides thread-safe mocks shared by the hush test suites.
package testutil

import (
	"sync"

	"github.com/Veraticus/hush/pkg/notification"
	"github.com/Veraticus/hush/pkg/queue"
)

// SetCall records one write made through RecordingSequence.Set
type SetCall struct {
	Key   queue.Key
	Value any
	OK    bool
}

// RecordingSequence is a queue.Slice that records every Set it receives
type RecordingSequence struct {
	*queue.Slice

	mu    sync.Mutex
	calls []SetCall
}

// Ensure RecordingSequence implements Sequence
var _ queue.Sequence = (*RecordingSequence)(nil)

// NewRecordingSequence creates a recording sequence holding values
func NewRecordingSequence(values ...any) *RecordingSequence {
	return &RecordingSequence{Slice: queue.NewSlice(values...)}
}

// Set implements the Sequence interface
func (r *RecordingSequence) Set(key queue.Key, value any) bool {
	ok := r.Slice.Set(key, value)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, SetCall{Key: key, Value: value, OK: ok})
	return ok
}

// Append implements the Sequence interface, routing through Set
func (r *RecordingSequence) Append(values ...any) (int, error) {
	return queue.AppendVia(r, values...)
}

// Calls returns a copy of the recorded writes
func (r *RecordingSequence) Calls() []SetCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]SetCall, len(r.calls))
	copy(out, r.calls)
	return out
}

// Reset forgets recorded writes
func (r *RecordingSequence) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = nil
}

// MockHost is a minimal intercept.Host holding a queue reference
type MockHost struct {
	mu       sync.Mutex
	queue    queue.Sequence
	setCount int
}

// NewMockHost creates a host holding q
func NewMockHost(q queue.Sequence) *MockHost {
	return &MockHost{queue: q}
}

// Queue returns the live queue reference
func (h *MockHost) Queue() queue.Sequence {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.queue
}

// SetQueue replaces the live queue reference
func (h *MockHost) SetQueue(q queue.Sequence) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.queue = q
	h.setCount++
}

// GetSetCount returns how many times SetQueue was called
func (h *MockHost) GetSetCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.setCount
}

// MockNotifier records informational notifications
type MockNotifier struct {
	mu       sync.Mutex
	messages []string
	err      error
}

// NewMockNotifier creates a new mock notifier
func NewMockNotifier() *MockNotifier {
	return &MockNotifier{}
}

// Info implements intercept.Notifier
func (m *MockNotifier) Info(message string) (*notification.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, message)
	if m.err != nil {
		return nil, m.err
	}
	return &notification.Item{Message: message, Type: notification.TypeInfo, Console: true}, nil
}

// SetError sets the error to return on Info calls
func (m *MockNotifier) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// GetMessages returns a copy of the recorded messages
func (m *MockNotifier) GetMessages() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.messages))
	copy(out, m.messages)
	return out
}

// MockReloader counts reloads
type MockReloader struct {
	mu    sync.Mutex
	count int
	err   error
}

// NewMockReloader creates a new mock reloader
func NewMockReloader() *MockReloader {
	return &MockReloader{}
}

// Reload implements reload.Reloader
func (m *MockReloader) Reload() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.count++
	return m.err
}

// SetError sets the error to return on Reload calls
func (m *MockReloader) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// GetReloadCount returns how many times Reload was called
func (m *MockReloader) GetReloadCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.count
}

// MockRenderer records rendered notifications
type MockRenderer struct {
	mu       sync.Mutex
	rendered []notification.Item
	err      error
}

// NewMockRenderer creates a new mock renderer
func NewMockRenderer() *MockRenderer {
	return &MockRenderer{}
}

// Render implements notification.Renderer
func (m *MockRenderer) Render(item *notification.Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rendered = append(m.rendered, *item)
	return m.err
}

// SetError sets the error to return on Render calls
func (m *MockRenderer) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// GetRendered returns copies of the rendered notifications
func (m *MockRenderer) GetRendered() []notification.Item {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]notification.Item, len(m.rendered))
	copy(out, m.rendered)
	return out
}
