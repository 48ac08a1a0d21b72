package notification

import (
	"time"

	"github.com/Veraticus/hush/pkg/queue"
	"github.com/rs/zerolog"
)

// Manager queues notifications and displays them in FIFO order.
//
// The queue is exposed as a replaceable reference so other components can
// layer behaviour in front of it. Every enqueue and dequeue goes through the
// current reference. Manager is not safe for concurrent use; drive it from a
// single goroutine.
type Manager struct {
	queue    queue.Sequence
	renderer Renderer
	log      zerolog.Logger
	now      func() time.Time

	nextID int
	pinned []*Item
}

// NewManager creates a manager with an empty queue
func NewManager(renderer Renderer, log zerolog.Logger) *Manager {
	return &Manager{
		queue:    queue.NewSlice(),
		renderer: renderer,
		log:      log,
		now:      time.Now,
	}
}

// Queue returns the live queue reference.
func (m *Manager) Queue() queue.Sequence {
	return m.queue
}

// SetQueue replaces the live queue reference.
func (m *Manager) SetQueue(q queue.Sequence) {
	m.queue = q
}

// Notify enqueues a notification. It is displayed by the next Render.
func (m *Manager) Notify(message string, typ Type, opts Options) (*Item, error) {
	m.nextID++
	item := &Item{
		ID:        m.nextID,
		Message:   message,
		Type:      typ,
		Console:   opts.Console,
		Permanent: opts.Permanent,
		Time:      m.now(),
	}

	if _, err := m.queue.Append(item); err != nil {
		return nil, err
	}
	return item, nil
}

// Info enqueues an informational notification.
func (m *Manager) Info(message string) (*Item, error) {
	return m.Notify(message, TypeInfo, DefaultOptions())
}

// Warn enqueues a warning notification.
func (m *Manager) Warn(message string) (*Item, error) {
	return m.Notify(message, TypeWarning, DefaultOptions())
}

// Error enqueues an error notification.
func (m *Manager) Error(message string) (*Item, error) {
	return m.Notify(message, TypeError, DefaultOptions())
}

// Render drains the queue and displays each item. It returns how many items
// were shown to the user.
func (m *Manager) Render() int {
	shown := 0
	for m.queue.Len() > 0 {
		v, ok := m.queue.Shift()
		if !ok {
			break
		}
		item, ok := v.(*Item)
		if !ok || item == nil {
			continue
		}
		if m.display(item) {
			shown++
		}
	}
	return shown
}

func (m *Manager) display(item *Item) bool {
	if item.Console {
		m.logToConsole(item)
	}

	if item.Hidden() {
		m.log.Trace().Int("id", item.ID).Msg("notification not displayed")
		return false
	}

	if m.renderer != nil {
		if err := m.renderer.Render(item); err != nil {
			// Rendering is best effort; keep draining the queue
			m.log.Error().Err(err).Int("id", item.ID).Msg("failed to render notification")
		}
	}

	if item.Permanent {
		m.pinned = append(m.pinned, item)
	}
	return true
}

func (m *Manager) logToConsole(item *Item) {
	var ev *zerolog.Event
	switch item.Type {
	case TypeError:
		ev = m.log.Error()
	case TypeWarning:
		ev = m.log.Warn()
	default:
		ev = m.log.Info()
	}
	ev.Str("type", string(item.Type)).Msg(item.Message)
}

// Pinned returns the permanent notifications still on display.
func (m *Manager) Pinned() []*Item {
	out := make([]*Item, len(m.pinned))
	copy(out, m.pinned)
	return out
}

// Dismiss removes a pinned notification.
func (m *Manager) Dismiss(id int) bool {
	for i, item := range m.pinned {
		if item.ID == id {
			m.pinned = append(m.pinned[:i], m.pinned[i+1:]...)
			return true
		}
	}
	return false
}
