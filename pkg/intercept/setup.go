package intercept

import (
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/hush/pkg/config"
	"github.com/Veraticus/hush/pkg/notification"
	"github.com/Veraticus/hush/pkg/patterns"
	"github.com/Veraticus/hush/pkg/reload"
	"github.com/Veraticus/hush/pkg/settings"
	"github.com/rs/zerolog"
)

const (
	// SettingKey is the registry key holding the raw pattern text.
	SettingKey = "hideNotificationPatterns"

	// UpdatedMessage is shown to the user before the reload that applies new patterns.
	UpdatedMessage = "Notification hiding patterns updated"
)

// Notifier shows an informational notification to the user.
type Notifier interface {
	Info(message string) (*notification.Item, error)
}

// RegisterSettings registers the pattern setting. onChange receives the new
// raw text whenever it changes.
func RegisterSettings(reg *settings.Registry, onChange func(value string)) error {
	return reg.Register(settings.Setting{
		Key:     SettingKey,
		Name:    "Hide Notification Patterns",
		Hint:    "Enter each notification pattern on a new line. Any notification containing these patterns will be hidden. Regular expressions are supported.",
		Default: strings.Join(config.DefaultHidePatterns, "\n"),
		Get: func(c *config.Config) string {
			return c.HideNotificationPatterns
		},
		Set: func(c *config.Config, v string) {
			c.HideNotificationPatterns = v
		},
		OnChange: onChange,
	})
}

// Setup compiles the registered patterns and installs the interceptor on
// host. It returns whether an interceptor was installed.
func Setup(host Host, reg *settings.Registry, log zerolog.Logger) (bool, error) {
	raw, err := reg.Get(SettingKey)
	if err != nil {
		return false, fmt.Errorf("failed to read patterns: %w", err)
	}

	ps := patterns.Compile(raw, log)
	_, installed := Install(host, ps)

	log.Debug().
		Int("patterns", len(ps)).
		Int("invalid", len(patterns.Invalid(ps))).
		Bool("installed", installed).
		Msg("notification filter setup")

	return installed, nil
}

// ChangeHandler reacts to pattern edits. An installed interceptor cannot be
// reconfigured, so every change ends in a full reload.
type ChangeHandler struct {
	notifier  Notifier
	debouncer *reload.Debouncer
	log       zerolog.Logger
}

// NewChangeHandler creates a handler that reloads through r after delay.
func NewChangeHandler(n Notifier, r reload.Reloader, delay time.Duration, log zerolog.Logger) *ChangeHandler {
	h := &ChangeHandler{
		notifier: n,
		log:      log,
	}
	h.debouncer = reload.NewDebouncer(delay, func() {
		if err := r.Reload(); err != nil {
			h.log.Error().Err(err).Msg("reload after pattern change failed")
		}
	})
	return h
}

// Handle tells the user the patterns changed and schedules the reload.
// Rapid successive edits collapse into a single reload.
func (h *ChangeHandler) Handle(string) {
	if h.notifier != nil {
		if _, err := h.notifier.Info(UpdatedMessage); err != nil {
			h.log.Warn().Err(err).Msg("failed to announce pattern update")
		}
	}
	h.debouncer.Trigger()
}

// Stop cancels a pending reload.
func (h *ChangeHandler) Stop() {
	h.debouncer.Stop()
}
