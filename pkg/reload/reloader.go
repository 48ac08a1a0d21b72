// Package reload provides the full-restart primitive used after a settings
// change, plus the debouncer that batches rapid edits into one restart.
package reload

import (
	"errors"
	"fmt"
	"os"
	"syscall"

	"github.com/rs/zerolog"
)

// Reloader restarts the running environment from scratch.
type Reloader interface {
	Reload() error
}

// ExecReloader replaces the current process image with a fresh copy of the
// same binary, arguments and environment.
type ExecReloader struct {
	path string
	argv []string
	env  func() []string
	log  zerolog.Logger

	before []func() error
	exec   func(argv0 string, argv []string, envv []string) error
}

// Ensure ExecReloader implements Reloader
var _ Reloader = (*ExecReloader)(nil)

// NewExecReloader resolves the running executable for later re-execution.
func NewExecReloader(log zerolog.Logger) (*ExecReloader, error) {
	path, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("failed to get our executable path: %w", err)
	}

	argv := make([]string, len(os.Args))
	copy(argv, os.Args)

	return &ExecReloader{
		path: path,
		argv: argv,
		env:  os.Environ,
		log:  log,
		exec: syscall.Exec,
	}, nil
}

// BeforeReload registers a hook run before the process is replaced, in
// registration order. Hooks release resources exec would otherwise leak,
// like a child process or a terminal in raw mode.
func (r *ExecReloader) BeforeReload(fn func() error) {
	r.before = append(r.before, fn)
}

// Reload runs the hooks and re-executes the binary. It only returns on failure.
func (r *ExecReloader) Reload() error {
	var errs []error
	for _, fn := range r.before {
		if err := fn(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		// Hooks are best effort; the restart still goes ahead
		r.log.Warn().Err(err).Msg("reload hook failed")
	}

	r.log.Info().Str("path", r.path).Msg("reloading")
	if err := r.exec(r.path, r.argv, r.env()); err != nil {
		return fmt.Errorf("failed to re-exec %s: %w", r.path, err)
	}
	return nil
}
