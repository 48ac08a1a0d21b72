package notification

import (
	"bytes"
	"testing"
)

func TestStdoutRenderer_Render(t *testing.T) {
	tests := []struct {
		name string
		item Item
		want string
	}{
		{
			name: "info",
			item: Item{Message: "Something happened", Type: TypeInfo},
			want: "[INFO] Something happened\n",
		},
		{
			name: "permanent warning",
			item: Item{Message: "Disk nearly full", Type: TypeWarning, Permanent: true},
			want: "[WARNING] (pinned) Disk nearly full\n",
		},
		{
			name: "empty message",
			item: Item{Type: TypeError},
			want: "[ERROR] \n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			r := NewStdoutRenderer(&buf)
			if err := r.Render(&tt.item); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if buf.String() != tt.want {
				t.Errorf("expected %q but got %q", tt.want, buf.String())
			}
		})
	}
}

func TestNewStdoutRenderer_NilWriter(t *testing.T) {
	if r := NewStdoutRenderer(nil); r.out == nil {
		t.Error("expected stdout fallback")
	}
}
