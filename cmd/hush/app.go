package main

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/Veraticus/hush/pkg/config"
	"github.com/Veraticus/hush/pkg/intercept"
	"github.com/Veraticus/hush/pkg/interfaces"
	"github.com/Veraticus/hush/pkg/monitor"
	"github.com/Veraticus/hush/pkg/notification"
	"github.com/Veraticus/hush/pkg/process"
	"github.com/Veraticus/hush/pkg/reload"
	"github.com/Veraticus/hush/pkg/settings"
	"github.com/rs/zerolog"
)

// eventBuffer is how many UI events may queue before producers block.
const eventBuffer = 64

// Dependencies holds all the dependencies for the application
type Dependencies struct {
	Config         *config.Config
	Log            zerolog.Logger
	Registry       *settings.Registry
	Notifications  *notification.Manager
	OutputMonitor  interfaces.DataHandler
	ProcessManager interfaces.ProcessWrapper
	Reloader       reload.Reloader
	ChangeHandler  *intercept.ChangeHandler

	// Notifications is single-threaded; every touch goes through events
	events    chan func()
	stopped   chan struct{}
	closeOnce sync.Once
	cancel    context.CancelFunc
}

// NewDependencies creates all dependencies with the given configuration.
// path is the config file the settings registry persists to and watches.
func NewDependencies(cfg *config.Config, path string, log zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config:   cfg,
		Log:      log,
		Registry: settings.NewRegistry(path, cfg, log),
		events:   make(chan func(), eventBuffer),
		stopped:  make(chan struct{}),
	}

	deps.Notifications = notification.NewManager(notification.NewStdoutRenderer(os.Stderr), log)

	outputMonitor := monitor.NewOutputMonitor(cfg, monitor.AnnouncerFunc(deps.announce), log)
	deps.OutputMonitor = outputMonitor
	pm := process.NewManager(outputMonitor, log)
	deps.ProcessManager = pm

	reloader, err := reload.NewExecReloader(log)
	if err != nil {
		return nil, err
	}
	// exec keeps neither the child nor the terminal mode tidy on its own
	reloader.BeforeReload(pm.Stop)
	deps.Reloader = reloader

	if err := deps.wire(); err != nil {
		return nil, err
	}
	return deps, nil
}

// wire registers the pattern setting and installs the notification filter.
// It must run before the event loop starts.
func (d *Dependencies) wire() error {
	d.ChangeHandler = intercept.NewChangeHandler(d.Notifications, d.Reloader, d.Config.ReloadDelay, d.Log)

	onChange := func(value string) {
		d.Post(func() {
			d.ChangeHandler.Handle(value)
			d.Notifications.Render()
		})
	}
	if err := intercept.RegisterSettings(d.Registry, onChange); err != nil {
		return fmt.Errorf("failed to register settings: %w", err)
	}

	if _, err := intercept.Setup(d.Notifications, d.Registry, d.Log); err != nil {
		return fmt.Errorf("failed to set up notification filter: %w", err)
	}
	return nil
}

// announce turns a monitored output line into a notification.
func (d *Dependencies) announce(message string, typ notification.Type) {
	d.Post(func() {
		opts := notification.Options{Permanent: typ == notification.TypeError}
		if _, err := d.Notifications.Notify(message, typ, opts); err != nil {
			d.Log.Warn().Err(err).Msg("failed to queue notification")
			return
		}
		d.Notifications.Render()
	})
}

// Start runs the event loop and the settings watcher until Close.
func (d *Dependencies) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	d.cancel = cancel

	go d.loop(ctx)

	if d.Registry.Path() != "" {
		go func() {
			if err := d.Registry.Watch(ctx); err != nil {
				d.Log.Warn().Err(err).Msg("settings watcher stopped; pattern edits need a restart")
			}
		}()
	}
}

func (d *Dependencies) loop(ctx context.Context) {
	defer close(d.stopped)
	for {
		select {
		case fn := <-d.events:
			fn()
		case <-ctx.Done():
			return
		}
	}
}

// Post schedules fn on the event loop. It is dropped once the loop stopped.
func (d *Dependencies) Post(fn func()) {
	select {
	case d.events <- fn:
	case <-d.stopped:
	}
}

// Sync waits until every event posted before it has run.
func (d *Dependencies) Sync() {
	done := make(chan struct{})
	d.Post(func() { close(done) })
	select {
	case <-done:
	case <-d.stopped:
	}
}

// Close stops the loop, the watcher and any pending reload. It is safe to
// call more than once.
func (d *Dependencies) Close() {
	d.closeOnce.Do(func() {
		if d.ChangeHandler != nil {
			d.ChangeHandler.Stop()
		}
		if d.cancel != nil {
			d.Sync()
			d.cancel()
			<-d.stopped
		}
	})
}

// Application represents the main application
type Application struct {
	deps *Dependencies
}

// NewApplication creates a new application with the given dependencies
func NewApplication(deps *Dependencies) *Application {
	return &Application{
		deps: deps,
	}
}

// Run starts the application with the given command and arguments
func (a *Application) Run(command string, args []string) error {
	a.deps.Start()

	if err := a.deps.ProcessManager.Start(command, args); err != nil {
		return err
	}

	err := a.deps.ProcessManager.Wait()

	// Show whatever the last lines of output announced
	a.deps.Sync()
	return err
}

// Stop gracefully stops the application
func (a *Application) Stop() error {
	return a.deps.ProcessManager.Stop()
}

// ExitCode returns the exit code of the wrapped process
func (a *Application) ExitCode() int {
	return a.deps.ProcessManager.ExitCode()
}
