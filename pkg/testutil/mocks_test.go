package testutil

import (
	"errors"
	"testing"

	"github.com/Veraticus/hush/pkg/notification"
	"github.com/Veraticus/hush/pkg/queue"
)

func TestRecordingSequence(t *testing.T) {
	seq := NewRecordingSequence("a")

	n, err := seq.Append("b")
	if err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if n != 2 {
		t.Errorf("Append() = %d, want 2", n)
	}

	calls := seq.Calls()
	if len(calls) != 2 {
		t.Fatalf("Calls() returned %d, want 2", len(calls))
	}
	if i, ok := calls[0].Key.IndexValue(); !ok || i != 1 || calls[0].Value != "b" {
		t.Errorf("first call = %+v, want index 1 = b", calls[0])
	}
	if !calls[1].Key.IsLength() || calls[1].Value != 2 {
		t.Errorf("second call = %+v, want length = 2", calls[1])
	}

	if seq.Set(queue.ParseKey("-1"), "x") {
		t.Error("expected invalid key to be rejected")
	}
	if calls := seq.Calls(); calls[len(calls)-1].OK {
		t.Error("expected the rejected call to be recorded as failed")
	}

	seq.Reset()
	if len(seq.Calls()) != 0 {
		t.Error("expected Reset to clear calls")
	}
}

func TestMockHost(t *testing.T) {
	first := queue.NewSlice()
	host := NewMockHost(first)
	if host.Queue() != first {
		t.Error("expected initial queue")
	}

	second := queue.NewSlice()
	host.SetQueue(second)
	if host.Queue() != second || host.GetSetCount() != 1 {
		t.Error("expected queue to be replaced once")
	}
}

func TestMockNotifier(t *testing.T) {
	mock := NewMockNotifier()
	if _, err := mock.Info("one"); err != nil {
		t.Errorf("Info() error = %v, want nil", err)
	}

	mockErr := errors.New("test error")
	mock.SetError(mockErr)
	if _, err := mock.Info("two"); err != mockErr {
		t.Errorf("Info() error = %v, want %v", err, mockErr)
	}

	if got := mock.GetMessages(); len(got) != 2 || got[1] != "two" {
		t.Errorf("GetMessages() = %v", got)
	}
}

func TestMockReloader(t *testing.T) {
	mock := NewMockReloader()
	_ = mock.Reload()
	mock.SetError(errors.New("boom"))
	if err := mock.Reload(); err == nil {
		t.Error("expected error")
	}
	if mock.GetReloadCount() != 2 {
		t.Errorf("GetReloadCount() = %d, want 2", mock.GetReloadCount())
	}
}

func TestMockRenderer(t *testing.T) {
	mock := NewMockRenderer()
	item := &notification.Item{Message: "m"}
	_ = mock.Render(item)
	item.Message = "changed"

	got := mock.GetRendered()
	if len(got) != 1 || got[0].Message != "m" {
		t.Errorf("GetRendered() = %+v, want a snapshot of the original item", got)
	}
}
