// Package notification provides the host's notification model and the
// manager that queues and displays notifications.
package notification

import "time"

// Type is the display category of a notification.
type Type string

const (
	TypeInfo    Type = "info"
	TypeWarning Type = "warning"
	TypeError   Type = "error"
	TypeSuccess Type = "success"

	// TypeHidden is not a display category. Renderers skip items carrying it.
	TypeHidden Type = "do-not-display"
)

// Displayable reports whether t is a category the renderer knows how to show.
func (t Type) Displayable() bool {
	switch t {
	case TypeInfo, TypeWarning, TypeError, TypeSuccess:
		return true
	default:
		return false
	}
}

// Item is one pending notification.
type Item struct {
	ID        int
	Message   string
	Type      Type
	Console   bool // log to the console when displayed
	Permanent bool // stay visible until dismissed
	Time      time.Time

	// Suppressed is set when a filter hid the item. It is kept next to the
	// TypeHidden sentinel so renderers do not depend on unknown-type handling.
	Suppressed bool
}

// NotificationMessage returns the item's message.
func (it *Item) NotificationMessage() (string, bool) {
	if it == nil {
		return "", false
	}
	return it.Message, true
}

// Suppress hides the item in place: no console output, no persistent display
// and a type the renderer does not show.
func (it *Item) Suppress() {
	it.Console = false
	it.Permanent = false
	it.Type = TypeHidden
	it.Suppressed = true
}

// Hidden reports whether the item must not be rendered.
func (it *Item) Hidden() bool {
	return it.Suppressed || !it.Type.Displayable()
}

// Options controls how Notify builds an item.
type Options struct {
	Permanent bool
	Console   bool
}

// DefaultOptions logs to the console and lets the item expire.
func DefaultOptions() Options {
	return Options{Console: true}
}

// Renderer shows notifications to the user.
type Renderer interface {
	Render(item *Item) error
}
