// Package process runs the wrapped command inside a PTY and supervises it.
package process

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/Veraticus/hush/pkg/interfaces"
	"github.com/rs/zerolog"
)

// WrappedEnv is set in the child environment so hush never wraps itself.
const WrappedEnv = "HUSH_WRAPPED"

// ErrAlreadyWrapped is returned when hush is started from inside hush.
var ErrAlreadyWrapped = errors.New("already wrapped by hush")

// flushTimeout bounds how long Wait lets trailing output drain.
const flushTimeout = 500 * time.Millisecond

// Manager manages the wrapped process
type Manager struct {
	ptyManager    PTY
	outputHandler interfaces.DataHandler
	stdin         io.Reader
	stdout        io.Writer
	log           zerolog.Logger
	exitCode      int
	mu            sync.Mutex
	sigChan       chan os.Signal
	done          chan struct{}
	copied        chan struct{}
}

// Ensure Manager implements ProcessWrapper
var _ interfaces.ProcessWrapper = (*Manager)(nil)

// NewManager creates a new process manager. Output is mirrored to stdout and
// handed to outputHandler, which may be nil.
func NewManager(outputHandler interfaces.DataHandler, log zerolog.Logger) *Manager {
	return &Manager{
		ptyManager:    NewPTYManager(log),
		outputHandler: outputHandler,
		stdin:         os.Stdin,
		stdout:        os.Stdout,
		log:           log,
		done:          make(chan struct{}),
	}
}

// Start starts the process
func (m *Manager) Start(command string, args []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if os.Getenv(WrappedEnv) == "1" {
		return ErrAlreadyWrapped
	}

	env := append(os.Environ(), WrappedEnv+"=1")

	if err := m.ptyManager.Start(command, args, env); err != nil {
		return fmt.Errorf("failed to start process: %w", err)
	}

	m.copied = make(chan struct{})
	go func() {
		defer close(m.copied)
		var handler func([]byte)
		if m.outputHandler != nil {
			handler = m.outputHandler.HandleData
		}
		if err := m.ptyManager.CopyIO(m.stdin, m.stdout, handler); err != nil {
			m.log.Error().Err(err).Msg("I/O error")
		}
	}()

	m.setupSignalForwarding()

	return nil
}

// Wait waits for the process to exit
func (m *Manager) Wait() error {
	if m.ptyManager == nil {
		return fmt.Errorf("process not started")
	}

	err := m.ptyManager.Wait()

	m.mu.Lock()
	if state := m.ptyManager.ProcessState(); state != nil {
		m.exitCode = state.ExitCode()
	}
	copied := m.copied
	m.mu.Unlock()

	if copied != nil {
		select {
		case <-copied:
		case <-time.After(flushTimeout):
			m.log.Debug().Msg("output still draining after exit")
		}
	}
	if m.outputHandler != nil {
		m.outputHandler.Flush()
	}

	// Ensure terminal is restored
	_ = m.ptyManager.Stop()

	close(m.done)
	m.cleanupSignals()

	return err
}

// ExitCode returns the exit code of the process
func (m *Manager) ExitCode() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.exitCode
}

// setupSignalForwarding sets up signal forwarding to the child process
func (m *Manager) setupSignalForwarding() {
	m.sigChan = make(chan os.Signal, 1)
	signal.Notify(m.sigChan,
		syscall.SIGTERM,
		syscall.SIGINT,
		syscall.SIGHUP,
		syscall.SIGQUIT,
		syscall.SIGUSR1,
		syscall.SIGUSR2,
		syscall.SIGWINCH,
	)

	go m.forwardSignals()
}

// forwardSignals forwards signals to the child process
func (m *Manager) forwardSignals() {
	for {
		select {
		case sig, ok := <-m.sigChan:
			if !ok {
				return
			}
			if m.ptyManager != nil && m.ptyManager.Process() != nil {
				if err := m.ptyManager.Process().Signal(sig); err != nil && !errors.Is(err, os.ErrProcessDone) {
					m.log.Warn().Err(err).Str("signal", sig.String()).Msg("signal forward error")
				}
			}
		case <-m.done:
			return
		}
	}
}

// cleanupSignals stops signal forwarding
func (m *Manager) cleanupSignals() {
	if m.sigChan != nil {
		signal.Stop(m.sigChan)
	}
}

// Stop restores the terminal and asks the process to terminate
func (m *Manager) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ptyManager != nil {
		_ = m.ptyManager.Stop()

		if proc := m.ptyManager.Process(); proc != nil {
			// SIGTERM first, kill if it cannot be delivered
			if err := proc.Signal(syscall.SIGTERM); err != nil && !errors.Is(err, os.ErrProcessDone) {
				return proc.Kill()
			}
		}
	}

	return nil
}
