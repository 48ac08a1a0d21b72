// Package monitor turns the wrapped process output into notifications.
package monitor

import (
	"bytes"
	"regexp"
	"strings"
	"sync"

	"github.com/Veraticus/hush/pkg/config"
	"github.com/Veraticus/hush/pkg/interfaces"
	"github.com/Veraticus/hush/pkg/notification"
	"github.com/rs/zerolog"
)

// maxLineLength caps a buffered partial line; longer output is cut into
// several lines rather than growing without bound.
const maxLineLength = 4096

var (
	ansiPattern    = regexp.MustCompile(`\x1b\[[0-9;?]*[ -/]*[@-~]|\x1b\][^\x07\x1b]*(?:\x07|\x1b\\)|\x1b[@-Z\\-_]`)
	errorPattern   = regexp.MustCompile(`(?i)\b(error|fatal|panic|failed)\b`)
	warningPattern = regexp.MustCompile(`(?i)\b(warn|warning|deprecated)\b`)
)

// Announcer receives the output lines worth a notification.
type Announcer interface {
	Announce(message string, typ notification.Type)
}

// AnnouncerFunc adapts a function to Announcer.
type AnnouncerFunc func(message string, typ notification.Type)

// Announce calls f.
func (f AnnouncerFunc) Announce(message string, typ notification.Type) {
	f(message, typ)
}

// Ensure OutputMonitor implements DataHandler
var _ interfaces.DataHandler = (*OutputMonitor)(nil)

// OutputMonitor splits output into lines and announces warnings and errors
type OutputMonitor struct {
	config    *config.Config
	announcer Announcer
	log       zerolog.Logger

	mu         sync.Mutex
	lineBuffer bytes.Buffer
}

// NewOutputMonitor creates a new output monitor
func NewOutputMonitor(cfg *config.Config, announcer Announcer, log zerolog.Logger) *OutputMonitor {
	return &OutputMonitor{
		config:    cfg,
		announcer: announcer,
		log:       log,
	}
}

// HandleData processes raw output data
func (om *OutputMonitor) HandleData(data []byte) {
	om.mu.Lock()
	defer om.mu.Unlock()

	om.lineBuffer.Write(data)

	buffer := om.lineBuffer.Bytes()
	start := 0
	var lines []string
	for i := 0; i < len(buffer); i++ {
		if buffer[i] == '\n' {
			lines = append(lines, string(buffer[start:i]))
			start = i + 1
		}
	}

	rest := buffer[start:]
	for len(rest) > maxLineLength {
		lines = append(lines, string(rest[:maxLineLength]))
		rest = rest[maxLineLength:]
	}
	remaining := append([]byte(nil), rest...)
	om.lineBuffer.Reset()
	om.lineBuffer.Write(remaining)

	for _, line := range lines {
		om.processLine(line)
	}
}

// Flush processes any remaining data in the buffer
func (om *OutputMonitor) Flush() {
	om.mu.Lock()
	defer om.mu.Unlock()

	if om.lineBuffer.Len() > 0 {
		line := om.lineBuffer.String()
		om.lineBuffer.Reset()
		om.processLine(line)
	}
}

// processLine announces a single line. Callers hold om.mu.
func (om *OutputMonitor) processLine(raw string) {
	if om.config != nil && om.config.Quiet {
		return
	}

	line := Clean(raw)
	if line == "" {
		return
	}

	typ, ok := Classify(line)
	if !ok {
		return
	}

	om.log.Trace().Str("type", string(typ)).Str("line", line).Msg("announcing output line")
	if om.announcer != nil {
		om.announcer.Announce(line, typ)
	}
}

// Clean strips terminal escape sequences, carriage returns and surrounding
// whitespace from a line of output.
func Clean(line string) string {
	line = ansiPattern.ReplaceAllString(line, "")
	// A carriage return redraws the line; only the last segment is visible
	if i := strings.LastIndexByte(strings.TrimRight(line, "\r"), '\r'); i >= 0 {
		line = line[i+1:]
	}
	return strings.TrimSpace(strings.ReplaceAll(line, "\r", ""))
}

// Classify picks the notification type for a cleaned line. Only errors and
// warnings are worth announcing; everything else is already on screen.
func Classify(line string) (notification.Type, bool) {
	switch {
	case errorPattern.MatchString(line):
		return notification.TypeError, true
	case warningPattern.MatchString(line):
		return notification.TypeWarning, true
	default:
		return notification.TypeInfo, false
	}
}
