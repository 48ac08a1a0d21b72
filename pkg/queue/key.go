// Package queue defines the sequence contract shared by the host's
// notification queue and anything layered in front of it.
package queue

import (
	"math"
	"strconv"
)

// LengthProperty is the property name that addresses a sequence's length.
const LengthProperty = "length"

type keyKind int

const (
	kindInvalid keyKind = iota
	kindIndex
	kindLength
	kindName
)

// Key addresses an element slot, the length, or a named property of a Sequence.
// The zero Key is invalid and every write through it fails.
type Key struct {
	kind  keyKind
	index int
	name  string
}

// Index returns a key for the element at position i.
func Index(i int) Key {
	if i < 0 {
		return Key{}
	}
	return Key{kind: kindIndex, index: i}
}

// Length returns the key that addresses the sequence length.
func Length() Key {
	return Key{kind: kindLength, name: LengthProperty}
}

// Name returns a key for a named property. Numeric names are treated the same
// way ParseKey treats them.
func Name(name string) Key {
	return ParseKey(name)
}

// ParseKey interprets a raw property name the way an array-like structure does:
// "length" is the length, canonical non-negative integers are element indices,
// other finite numeric strings ("-1", "1.5", "01") are not valid keys, and
// anything else, "NaN" and "Infinity" included, is a named property.
func ParseKey(s string) Key {
	switch {
	case s == "":
		return Key{}
	case s == LengthProperty:
		return Length()
	}

	if n, err := strconv.Atoi(s); err == nil {
		if n < 0 || strconv.Itoa(n) != s {
			return Key{}
		}
		return Index(n)
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return Key{}
	}

	return Key{kind: kindName, name: s}
}

// IndexValue returns the element index and true when k addresses an element.
func (k Key) IndexValue() (int, bool) {
	if k.kind != kindIndex {
		return 0, false
	}
	return k.index, true
}

// IsLength reports whether k addresses the sequence length.
func (k Key) IsLength() bool {
	return k.kind == kindLength
}

// NameValue returns the property name and true when k is a named property.
func (k Key) NameValue() (string, bool) {
	if k.kind != kindName {
		return "", false
	}
	return k.name, true
}

// Valid reports whether k addresses anything at all.
func (k Key) Valid() bool {
	return k.kind != kindInvalid
}

func (k Key) String() string {
	switch k.kind {
	case kindIndex:
		return strconv.Itoa(k.index)
	case kindLength, kindName:
		return k.name
	default:
		return "<invalid>"
	}
}
