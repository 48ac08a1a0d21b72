// Package patterns compiles the user-supplied list of notification patterns.
//
// The configuration is a single string with one regular expression per line.
// A line that fails to compile never aborts compilation: it is replaced with a
// pattern that matches nothing and reported on the diagnostic logger.
package patterns

import (
	"regexp"
	"strings"

	"github.com/rs/zerolog"
)

// neverMatch requires one character outside the whole Unicode range, so it
// matches no input, including the empty string.
var neverMatch = regexp.MustCompile(`[^\x00-\x{10FFFF}]`)

// Pattern is one compiled configuration line.
type Pattern struct {
	source   string
	compiled *regexp.Regexp
	err      error
}

// Source returns the trimmed configuration line the pattern came from.
func (p Pattern) Source() string {
	return p.source
}

// Err returns the compile error for a malformed line, or nil.
func (p Pattern) Err() error {
	return p.err
}

// Valid reports whether the line compiled as written.
func (p Pattern) Valid() bool {
	return p.err == nil
}

// Matches reports whether the pattern matches any substring of text.
func (p Pattern) Matches(text string) bool {
	if p.compiled == nil {
		return false
	}
	return p.compiled.MatchString(text)
}

func (p Pattern) String() string {
	return p.source
}

// Matches reports whether p matches any substring of text.
func Matches(p Pattern, text string) bool {
	return p.Matches(text)
}

// AnyMatch reports whether at least one pattern matches text.
func AnyMatch(ps []Pattern, text string) bool {
	for _, p := range ps {
		if p.Matches(text) {
			return true
		}
	}
	return false
}

// Compile splits raw on newlines, trims every line, drops empty ones and
// compiles the rest in order. The result is never nil.
func Compile(raw string, log zerolog.Logger) []Pattern {
	lines := strings.Split(raw, "\n")
	compiled := make([]Pattern, 0, len(lines))

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		re, err := regexp.Compile(line)
		if err != nil {
			log.Warn().
				Str("pattern", line).
				Err(err).
				Msg("invalid notification pattern; it will match nothing")
			compiled = append(compiled, Pattern{source: line, compiled: neverMatch, err: err})
			continue
		}

		compiled = append(compiled, Pattern{source: line, compiled: re})
	}

	return compiled
}

// Invalid returns the patterns whose lines failed to compile.
func Invalid(ps []Pattern) []Pattern {
	var bad []Pattern
	for _, p := range ps {
		if !p.Valid() {
			bad = append(bad, p)
		}
	}
	return bad
}
