package testutil

import (
	"bytes"
	"sync"
)

// MockProcess is a mock implementation of interfaces.ProcessWrapper for testing
type MockProcess struct {
	mu       sync.Mutex
	command  string
	args     []string
	started  bool
	stopped  int
	exitCode int
	startErr error
	waitErr  error
	release  chan struct{}
	onStart  func()
}

// NewMockProcess creates a new mock process whose Wait returns immediately
func NewMockProcess() *MockProcess {
	return &MockProcess{}
}

// Start implements the ProcessWrapper interface
func (m *MockProcess) Start(command string, args []string) error {
	m.mu.Lock()
	if m.startErr != nil {
		m.mu.Unlock()
		return m.startErr
	}
	m.command = command
	m.args = append([]string(nil), args...)
	m.started = true
	onStart := m.onStart
	m.mu.Unlock()

	if onStart != nil {
		onStart()
	}
	return nil
}

// Wait implements the ProcessWrapper interface. It blocks until Exit is
// called when the mock was made with Hold.
func (m *MockProcess) Wait() error {
	m.mu.Lock()
	release := m.release
	m.mu.Unlock()

	if release != nil {
		<-release
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	return m.waitErr
}

// Stop implements the ProcessWrapper interface
func (m *MockProcess) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopped++
	return nil
}

// ExitCode implements the ProcessWrapper interface
func (m *MockProcess) ExitCode() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.exitCode
}

// Hold makes Wait block until Exit is called
func (m *MockProcess) Hold() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.release = make(chan struct{})
}

// Exit releases a held Wait with the given exit code
func (m *MockProcess) Exit(code int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.exitCode = code
	if m.release != nil {
		close(m.release)
		m.release = nil
	}
}

// OnStart sets a callback run after a successful Start
func (m *MockProcess) OnStart(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onStart = fn
}

// SetStartError sets the error to return from Start
func (m *MockProcess) SetStartError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.startErr = err
}

// SetWaitError sets the error to return from Wait
func (m *MockProcess) SetWaitError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.waitErr = err
}

// SetExitCode sets the exit code
func (m *MockProcess) SetExitCode(code int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.exitCode = code
}

// Command returns the command and arguments passed to Start
func (m *MockProcess) Command() (string, []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.command, append([]string(nil), m.args...)
}

// IsStarted returns whether Start was called
func (m *MockProcess) IsStarted() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.started
}

// GetStopCount returns how many times Stop was called
func (m *MockProcess) GetStopCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stopped
}

// MockDataHandler is a mock implementation of interfaces.DataHandler for testing
type MockDataHandler struct {
	mu      sync.Mutex
	data    bytes.Buffer
	flushes int
}

// NewMockDataHandler creates a new mock data handler
func NewMockDataHandler() *MockDataHandler {
	return &MockDataHandler{}
}

// HandleData implements the DataHandler interface
func (m *MockDataHandler) HandleData(data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data.Write(data)
}

// Flush implements the DataHandler interface
func (m *MockDataHandler) Flush() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.flushes++
}

// GetData returns everything passed to HandleData
func (m *MockDataHandler) GetData() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data.String()
}

// GetFlushCount returns how many times Flush was called
func (m *MockDataHandler) GetFlushCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.flushes
}
