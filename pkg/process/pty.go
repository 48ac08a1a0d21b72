package process

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/creack/pty"
	"github.com/rs/zerolog"
	"golang.org/x/term"
)

// drainTimeout bounds how long Wait holds the PTY open for unread output.
const drainTimeout = 500 * time.Millisecond

// PTYManager handles PTY-based process execution
type PTYManager struct {
	cmd         *exec.Cmd
	pty         *os.File
	log         zerolog.Logger
	mu          sync.Mutex
	stopChan    chan struct{}
	drained     chan struct{}
	wg          sync.WaitGroup
	restoreFunc func()
}

// Ensure PTYManager implements PTY
var _ PTY = (*PTYManager)(nil)

// NewPTYManager creates a new PTY manager
func NewPTYManager(log zerolog.Logger) *PTYManager {
	return &PTYManager{
		log:      log,
		stopChan: make(chan struct{}),
	}
}

// Start starts a process with PTY
func (p *PTYManager) Start(command string, args []string, env []string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cmd != nil {
		return fmt.Errorf("process already started")
	}

	p.cmd = exec.Command(command, args...)
	p.cmd.Env = env

	var err error
	p.pty, err = pty.Start(p.cmd)
	if err != nil {
		p.cmd = nil
		return fmt.Errorf("failed to start PTY: %w", err)
	}

	// Not fatal: stdin is not a terminal under tests and pipes
	if err := p.copyTerminalSize(); err != nil {
		p.log.Debug().Err(err).Msg("failed to copy terminal size")
	}

	p.wg.Add(1)
	go p.monitorTerminalSize()

	return nil
}

// GetPTY returns the PTY file descriptor
func (p *PTYManager) GetPTY() *os.File {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pty
}

// Wait waits for the process to complete
func (p *PTYManager) Wait() error {
	p.mu.Lock()
	cmd := p.cmd
	p.mu.Unlock()
	if cmd == nil {
		return fmt.Errorf("process not started")
	}

	err := cmd.Wait()

	close(p.stopChan)
	p.wg.Wait()

	// Let CopyIO read what the child wrote before it exited
	p.mu.Lock()
	drained := p.drained
	p.mu.Unlock()
	if drained != nil {
		select {
		case <-drained:
		case <-time.After(drainTimeout):
		}
	}

	p.mu.Lock()
	if p.pty != nil {
		_ = p.pty.Close()
	}
	p.mu.Unlock()

	return err
}

// ProcessState returns the process state
func (p *PTYManager) ProcessState() *os.ProcessState {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cmd == nil {
		return nil
	}
	return p.cmd.ProcessState
}

// Process returns the underlying process
func (p *PTYManager) Process() *os.Process {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cmd == nil {
		return nil
	}
	return p.cmd.Process
}

// Stop restores the terminal state. It is safe to call more than once.
func (p *PTYManager) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.restoreFunc != nil {
		p.restoreFunc()
		p.restoreFunc = nil
	}

	return nil
}

// copyTerminalSize copies the terminal size from stdin to the PTY
func (p *PTYManager) copyTerminalSize() error {
	size, err := pty.GetsizeFull(os.Stdin)
	if err != nil {
		return err
	}

	return pty.Setsize(p.pty, size)
}

// monitorTerminalSize monitors for terminal size changes
func (p *PTYManager) monitorTerminalSize() {
	defer p.wg.Done()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGWINCH)
	defer signal.Stop(sigChan)

	for {
		select {
		case <-sigChan:
			p.mu.Lock()
			if p.pty != nil {
				if err := p.copyTerminalSize(); err != nil {
					p.log.Debug().Err(err).Msg("failed to resize PTY")
				}
			}
			p.mu.Unlock()
		case <-p.stopChan:
			return
		}
	}
}

// CopyIO mirrors stdin into the PTY and the PTY into stdout, passing every
// output chunk to handler. It returns once the output side closes, which
// happens when the process exits.
func (p *PTYManager) CopyIO(stdin io.Reader, stdout io.Writer, handler func([]byte)) error {
	p.mu.Lock()
	if p.pty == nil {
		p.mu.Unlock()
		return fmt.Errorf("PTY not initialized")
	}
	ptyFile := p.pty
	drained := make(chan struct{})
	p.drained = drained
	p.mu.Unlock()
	defer close(drained)

	if file, ok := stdin.(*os.File); ok && term.IsTerminal(int(file.Fd())) {
		fd := int(file.Fd())
		if state, err := term.MakeRaw(fd); err == nil {
			p.mu.Lock()
			p.restoreFunc = func() { _ = term.Restore(fd, state) }
			p.mu.Unlock()
			defer func() { _ = p.Stop() }()
		} else {
			p.log.Debug().Err(err).Msg("failed to enter raw mode")
		}
	}

	// The input side blocks on stdin for as long as the user is connected,
	// so only its errors are collected, never its completion.
	go func() {
		if _, err := io.Copy(ptyFile, stdin); err != nil && !errors.Is(err, os.ErrClosed) {
			p.log.Debug().Err(err).Msg("stdin copy ended")
		}
	}()

	var reader io.Reader = ptyFile
	if handler != nil {
		reader = &outputReader{reader: ptyFile, handler: handler}
	}

	_, err := io.Copy(stdout, reader)
	if err != nil && !isClosedPTY(err) {
		return fmt.Errorf("stdout copy error: %w", err)
	}
	return nil
}

// isClosedPTY reports whether err is the EIO Linux returns once the child
// side of the PTY is gone.
func isClosedPTY(err error) bool {
	var pathErr *os.PathError
	if errors.As(err, &pathErr) && errors.Is(pathErr.Err, syscall.EIO) {
		return true
	}
	return errors.Is(err, os.ErrClosed)
}

// outputReader wraps a reader and calls a handler for each chunk of data
type outputReader struct {
	reader  io.Reader
	handler func([]byte)
}

func (r *outputReader) Read(p []byte) (int, error) {
	n, err := r.reader.Read(p)
	if n > 0 {
		// The handler may retain the chunk; p is reused by io.Copy
		chunk := make([]byte, n)
		copy(chunk, p[:n])
		r.handler(chunk)
	}
	return n, err
}
