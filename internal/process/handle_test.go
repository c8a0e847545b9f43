package process

import (
	"errors"
	"sync"
	"testing"
	"time"
)

// collectingHandler buffers HandleLine calls for inspection.
type collectingHandler struct {
	mu    sync.Mutex
	lines []string
}

func (c *collectingHandler) HandleLine(_, line string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = append(c.lines, line)
}

func (c *collectingHandler) snapshot() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.lines...)
}

func TestSpawnReturnsImmediately(t *testing.T) {
	start := time.Now()
	h, err := Spawn(`sh -c "sleep 5"`, OutputDiscard, nil, testLogger())
	if err != nil {
		t.Fatalf("Spawn failed: %v", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("Spawn blocked for %v, must be non-blocking", elapsed)
	}
	if h.PID <= 0 {
		t.Errorf("expected a valid pid, got %d", h.PID)
	}

	// Clean up the sleeper
	if h.cmd.Process != nil {
		_ = h.cmd.Process.Kill()
	}
}

func TestSpawnDiscardStreamsToHandler(t *testing.T) {
	handler := &collectingHandler{}
	_, err := Spawn(`sh -c "echo one; echo two"`, OutputDiscard, handler, testLogger())
	if err != nil {
		t.Fatalf("Spawn failed: %v", err)
	}

	deadline := time.After(2 * time.Second)
	for {
		if lines := handler.snapshot(); len(lines) >= 2 {
			if lines[0] != "one" || lines[1] != "two" {
				t.Errorf("lines = %v, want [one two]", lines)
			}
			return
		}
		select {
		case <-deadline:
			t.Fatalf("timeout waiting for output, got %v", handler.snapshot())
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestSpawnFailure(t *testing.T) {
	tests := []struct {
		name    string
		command string
	}{
		{"missing binary", "definitely-not-a-real-binary-xyz"},
		{"empty command", ""},
		{"unclosed quote", `echo "oops`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := Spawn(tt.command, OutputDiscard, nil, testLogger())
			if !errors.Is(err, ErrSpawn) {
				t.Fatalf("error = %v, want ErrSpawn", err)
			}
			if h != nil {
				t.Error("handle must be nil on spawn failure")
			}
		})
	}
}

func TestHandleUptime(t *testing.T) {
	h := &Handle{StartedAt: time.Now().Add(-time.Minute)}
	if up := h.Uptime(); up < 59*time.Second {
		t.Errorf("Uptime = %v, want about a minute", up)
	}
}

func TestOutputModeString(t *testing.T) {
	if OutputInherit.String() != "inherit" {
		t.Errorf("OutputInherit = %q", OutputInherit.String())
	}
	if OutputDiscard.String() != "discard" {
		t.Errorf("OutputDiscard = %q", OutputDiscard.String())
	}
}
