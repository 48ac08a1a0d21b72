package queue

import (
	"errors"
	"fmt"
	"iter"
)

// ErrWriteRejected is returned by Append when an element write is refused.
var ErrWriteRejected = errors.New("queue: write rejected")

// Sequence is an ordered, append-capable, index-mutable collection with
// optional named properties.
//
// Every mutation is expressed as a Set. Append is defined as index writes
// followed by a length write, so a decorator that overrides Set observes
// appends too.
type Sequence interface {
	// Len returns the number of element slots.
	Len() int
	// At returns the element at i and whether i is in range.
	At(i int) (any, bool)
	// Prop returns a named property. "length" reports Len.
	Prop(name string) (any, bool)
	// Set writes value at key and reports whether the write was committed.
	Set(key Key, value any) bool
	// Append adds values at the end and returns the new length.
	Append(values ...any) (int, error)
	// Shift removes and returns the first element.
	Shift() (any, bool)
	// Values iterates the element slots in order.
	Values() iter.Seq2[int, any]
}

// Slice is the plain slice-backed Sequence owned by a host.
// It is not safe for concurrent use.
type Slice struct {
	items []any
	props map[string]any
}

// Ensure Slice implements Sequence
var _ Sequence = (*Slice)(nil)

// NewSlice creates a sequence holding values.
func NewSlice(values ...any) *Slice {
	items := make([]any, len(values))
	copy(items, values)
	return &Slice{items: items}
}

// Len implements Sequence
func (s *Slice) Len() int {
	return len(s.items)
}

// At implements Sequence
func (s *Slice) At(i int) (any, bool) {
	if i < 0 || i >= len(s.items) {
		return nil, false
	}
	return s.items[i], true
}

// Prop implements Sequence
func (s *Slice) Prop(name string) (any, bool) {
	if name == LengthProperty {
		return len(s.items), true
	}
	v, ok := s.props[name]
	return v, ok
}

// Set implements Sequence. Writing past the end grows the sequence and fills
// the gap with nil slots. A length write truncates or grows.
func (s *Slice) Set(key Key, value any) bool {
	if i, ok := key.IndexValue(); ok {
		if i >= len(s.items) {
			s.grow(i + 1)
		}
		s.items[i] = value
		return true
	}

	if key.IsLength() {
		n, ok := toLength(value)
		if !ok {
			return false
		}
		if n < len(s.items) {
			clear(s.items[n:])
			s.items = s.items[:n]
		} else {
			s.grow(n)
		}
		return true
	}

	if name, ok := key.NameValue(); ok {
		if s.props == nil {
			s.props = make(map[string]any)
		}
		s.props[name] = value
		return true
	}

	return false
}

// Append implements Sequence
func (s *Slice) Append(values ...any) (int, error) {
	return AppendVia(s, values...)
}

// Shift implements Sequence
func (s *Slice) Shift() (any, bool) {
	if len(s.items) == 0 {
		return nil, false
	}
	first := s.items[0]
	s.items[0] = nil
	s.items = s.items[1:]
	return first, true
}

// Values implements Sequence
func (s *Slice) Values() iter.Seq2[int, any] {
	return func(yield func(int, any) bool) {
		for i, v := range s.items {
			if !yield(i, v) {
				return
			}
		}
	}
}

func (s *Slice) grow(n int) {
	for len(s.items) < n {
		s.items = append(s.items, nil)
	}
}

// AppendVia appends values to seq using only Len and Set, the same way an
// array push does: one index write per value, then a length write.
func AppendVia(seq Sequence, values ...any) (int, error) {
	n := seq.Len()
	for _, v := range values {
		if !seq.Set(Index(n), v) {
			return seq.Len(), fmt.Errorf("%w: index %d", ErrWriteRejected, n)
		}
		n++
	}
	if !seq.Set(Length(), n) {
		return seq.Len(), fmt.Errorf("%w: %s", ErrWriteRejected, LengthProperty)
	}
	return n, nil
}

func toLength(value any) (int, bool) {
	switch n := value.(type) {
	case int:
		return n, n >= 0
	case int64:
		return int(n), n >= 0
	case uint:
		return int(n), true
	default:
		return 0, false
	}
}
