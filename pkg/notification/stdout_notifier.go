package notification

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// StdoutRenderer prints displayed notifications as single lines.
type StdoutRenderer struct {
	out io.Writer
}

// NewStdoutRenderer creates a renderer writing to w, or stdout when w is nil.
func NewStdoutRenderer(w io.Writer) *StdoutRenderer {
	if w == nil {
		w = os.Stdout
	}
	return &StdoutRenderer{out: w}
}

// Render prints the notification
func (r *StdoutRenderer) Render(item *Item) error {
	pin := ""
	if item.Permanent {
		pin = " (pinned)"
	}
	_, err := fmt.Fprintf(r.out, "[%s]%s %s\n", strings.ToUpper(string(item.Type)), pin, item.Message)
	return err
}
