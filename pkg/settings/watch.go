package settings

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/Veraticus/hush/pkg/reload"
	"github.com/fsnotify/fsnotify"
)

// watchDebounce absorbs the burst of events editors emit for one save.
const watchDebounce = 250 * time.Millisecond

// Watch reloads the registry whenever its backing file changes on disk, until
// ctx is cancelled. The parent directory is watched so editors that replace
// the file by rename are still seen.
func (r *Registry) Watch(ctx context.Context) error {
	if r.path == "" {
		return fmt.Errorf("settings: no file to watch")
	}

	dir := filepath.Dir(r.path)
	file := filepath.Base(r.path)

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = w.Close() }()

	if err := w.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	d := reload.NewDebouncer(watchDebounce, func() {
		if err := r.Reload(); err != nil {
			// Keep the last good config; the next save gets another chance
			r.log.Warn().Err(err).Str("path", r.path).Msg("settings reload failed")
		}
	})
	defer d.Stop()

	r.log.Debug().Str("dir", dir).Str("file", file).Msg("settings watcher started")

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return fmt.Errorf("settings watcher closed")
			}
			if !strings.EqualFold(filepath.Base(ev.Name), file) {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				d.Trigger()
			}
		case err, ok := <-w.Errors:
			if !ok {
				return fmt.Errorf("settings watcher closed")
			}
			r.log.Warn().Err(err).Str("dir", dir).Msg("settings watch error")
		}
	}
}
