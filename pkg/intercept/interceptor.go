// Package intercept hides notifications that match user patterns by
// rewriting them as the host writes them into its queue.
//
// The host keeps ownership of its queue. Install layers an Interceptor in
// front of it and swaps the host's live reference, after which every write the
// host performs passes through Interceptor.Set. Matching notifications are
// suppressed in place rather than removed so the queue keeps its slot order.
package intercept

import (
	"iter"

	"github.com/Veraticus/hush/pkg/notification"
	"github.com/Veraticus/hush/pkg/patterns"
	"github.com/Veraticus/hush/pkg/queue"
)

// Host owns the live notification queue reference.
type Host interface {
	Queue() queue.Sequence
	SetQueue(q queue.Sequence)
}

// Suppressible is a queued value that carries a message and can hide itself.
type Suppressible interface {
	NotificationMessage() (string, bool)
	Suppress()
}

// Interceptor is a Sequence decorator that filters element writes.
type Interceptor struct {
	backing  queue.Sequence
	patterns []patterns.Pattern
}

// Ensure Interceptor implements Sequence
var _ queue.Sequence = (*Interceptor)(nil)

// Wrap layers an Interceptor over seq. The pattern slice is copied; later
// changes to the caller's slice do not affect the interceptor.
func Wrap(seq queue.Sequence, ps []patterns.Pattern) *Interceptor {
	captured := make([]patterns.Pattern, len(ps))
	copy(captured, ps)
	return &Interceptor{backing: seq, patterns: captured}
}

// Install wraps the host's queue and substitutes the wrapped queue as the
// host's live reference. With no patterns, no queue, or a queue that is
// already intercepted, the host is left untouched. It returns the host's
// queue and whether a new interceptor was installed.
func Install(host Host, ps []patterns.Pattern) (queue.Sequence, bool) {
	if host == nil {
		return nil, false
	}
	current := host.Queue()
	if len(ps) == 0 || current == nil {
		return current, false
	}
	if _, ok := current.(*Interceptor); ok {
		return current, false
	}

	wrapped := Wrap(current, ps)
	host.SetQueue(wrapped)
	return wrapped, true
}

// Unwrap returns the sequence the interceptor writes through to.
func (ic *Interceptor) Unwrap() queue.Sequence {
	return ic.backing
}

// Set commits a write to the backing sequence.
//
// Length writes and named property writes pass through untouched. Element
// writes are inspected first: a value with a string message that matches any
// pattern is suppressed in place before it is stored. Keys that are none of
// these are refused.
func (ic *Interceptor) Set(key queue.Key, value any) bool {
	if key.IsLength() {
		return ic.backing.Set(key, value)
	}

	if _, ok := key.NameValue(); ok {
		return ic.backing.Set(key, value)
	}

	if _, ok := key.IndexValue(); ok {
		if msg, ok := messageOf(value); ok && patterns.AnyMatch(ic.patterns, msg) {
			suppress(value)
		}
		return ic.backing.Set(key, value)
	}

	return false
}

// Append routes every element through Set, then writes the new length.
func (ic *Interceptor) Append(values ...any) (int, error) {
	return queue.AppendVia(ic, values...)
}

// Len implements Sequence
func (ic *Interceptor) Len() int {
	return ic.backing.Len()
}

// At implements Sequence
func (ic *Interceptor) At(i int) (any, bool) {
	return ic.backing.At(i)
}

// Prop implements Sequence
func (ic *Interceptor) Prop(name string) (any, bool) {
	return ic.backing.Prop(name)
}

// Shift implements Sequence
func (ic *Interceptor) Shift() (any, bool) {
	return ic.backing.Shift()
}

// Values implements Sequence
func (ic *Interceptor) Values() iter.Seq2[int, any] {
	return ic.backing.Values()
}

// messageOf extracts a string message from a queued value. Besides
// Suppressible values it accepts loosely typed objects decoded into maps.
func messageOf(value any) (string, bool) {
	switch v := value.(type) {
	case Suppressible:
		return v.NotificationMessage()
	case map[string]any:
		msg, ok := v["message"].(string)
		return msg, ok
	default:
		return "", false
	}
}

func suppress(value any) {
	switch v := value.(type) {
	case Suppressible:
		v.Suppress()
	case map[string]any:
		v["console"] = false
		v["permanent"] = false
		v["type"] = string(notification.TypeHidden)
		v["suppressed"] = true
	}
}
