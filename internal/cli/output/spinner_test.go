package output

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"
)

// syncWriter guards a buffer against the spinner goroutine writing
// while the test reads.
type syncWriter struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (w *syncWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.buf.Write(p)
}

func (w *syncWriter) String() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.buf.String()
}

func TestNewSpinner(t *testing.T) {
	var buf bytes.Buffer
	s := NewSpinner(&buf, "Loading")

	if s.message != "Loading" {
		t.Errorf("message = %q, want %q", s.message, "Loading")
	}
	if len(s.frames) == 0 {
		t.Error("frames should not be empty")
	}
	if s.done == nil {
		t.Error("done channel should be initialized")
	}
}

func TestSpinner_StartStop(t *testing.T) {
	w := &syncWriter{}
	s := NewSpinner(w, "Processing")

	s.Start()
	time.Sleep(250 * time.Millisecond)
	s.Stop()

	out := w.String()
	if !strings.Contains(out, "Processing") {
		t.Errorf("output should contain the message, got %q", out)
	}
	if !strings.Contains(out, "\r") {
		t.Error("output should redraw with carriage returns")
	}
}

func TestSpinner_Success(t *testing.T) {
	w := &syncWriter{}
	s := NewSpinner(w, "Snapshotting")

	s.Start()
	time.Sleep(50 * time.Millisecond)
	s.Success("snapshot written")

	out := w.String()
	if !strings.Contains(out, "✓") {
		t.Error("Success output should contain a check mark")
	}
	if !strings.Contains(out, "snapshot written") {
		t.Error("Success output should contain the message")
	}
}

func TestSpinner_Fail(t *testing.T) {
	w := &syncWriter{}
	s := NewSpinner(w, "Snapshotting")

	s.Start()
	time.Sleep(50 * time.Millisecond)
	s.Fail("backend mismatch")

	out := w.String()
	if !strings.Contains(out, "✗") {
		t.Error("Fail output should contain a cross")
	}
	if !strings.Contains(out, "backend mismatch") {
		t.Error("Fail output should contain the message")
	}
}

func TestSpinner_StopWithoutStart(t *testing.T) {
	s := NewSpinner(&bytes.Buffer{}, "idle")
	s.Stop()
}

func TestSpinner_StopTwice(t *testing.T) {
	s := NewSpinner(&bytes.Buffer{}, "idle")
	s.Start()
	s.Stop()
	s.Stop()
	s.Success("still fine")
}
