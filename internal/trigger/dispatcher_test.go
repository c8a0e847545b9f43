package trigger

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// chanSource is a Source backed by a plain channel for tests.
type chanSource struct {
	ch      chan Event
	stopped atomic.Bool
}

func newChanSource() *chanSource {
	return &chanSource{ch: make(chan Event, 16)}
}

func (c *chanSource) Start() (<-chan Event, error) { return c.ch, nil }
func (c *chanSource) Stop() error {
	c.stopped.Store(true)
	return nil
}

func (c *chanSource) fire(name string) { c.ch <- Event{Name: name} }

// runDispatcher runs d.Run in a goroutine and returns its result channel.
func runDispatcher(d *Dispatcher, quit string) <-chan error {
	done := make(chan error, 1)
	go func() {
		done <- d.Run(context.Background(), quit)
	}()
	return done
}

func waitDone(t *testing.T, done <-chan error) error {
	t.Helper()
	select {
	case err := <-done:
		return err
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for dispatcher to return")
		return nil
	}
}

func TestRegisterAndDispatch(t *testing.T) {
	src := newChanSource()
	d := NewDispatcher(src, testLogger())

	var fired atomic.Int32
	if err := d.Register("Ctrl+R", "restart", func() { fired.Add(1) }); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	done := runDispatcher(d, "alt+c")
	src.fire("ctrl+r")
	src.fire("ctrl+r")
	src.fire("alt+c")

	if err := waitDone(t, done); err != nil {
		t.Fatalf("Run returned %v", err)
	}
	if fired.Load() != 2 {
		t.Errorf("action fired %d times, want 2", fired.Load())
	}
	if !src.stopped.Load() {
		t.Error("source must be stopped when Run returns")
	}
}

func TestRegisterRejectsBadChords(t *testing.T) {
	d := NewDispatcher(newChanSource(), testLogger())

	tests := []string{"", "hyper+x", "ctrl+", "ctrl+enter"}
	for _, spec := range tests {
		if err := d.Register(spec, "bad", func() {}); !errors.Is(err, ErrBadBinding) {
			t.Errorf("Register(%q) error = %v, want ErrBadBinding", spec, err)
		}
	}

	if err := d.Register("alt+g", "ok", func() {}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if err := d.Register("option+G", "dup", func() {}); !errors.Is(err, ErrBadBinding) {
		t.Errorf("duplicate chord error = %v, want ErrBadBinding", err)
	}
}

func TestFailedBindingDoesNotAffectOthers(t *testing.T) {
	src := newChanSource()
	d := NewDispatcher(src, testLogger())

	var ok1, ok2 atomic.Bool
	specs := []struct {
		chord  string
		action func()
	}{
		{"ctrl+a", func() { ok1.Store(true) }},
		{"bogus+chord", func() {}},
		{"ctrl+b", func() { ok2.Store(true) }},
	}

	failures := 0
	for _, s := range specs {
		if err := d.Register(s.chord, "test", s.action); err != nil {
			failures++
		}
	}
	if failures != 1 {
		t.Fatalf("failures = %d, want 1", failures)
	}
	if len(d.Bindings()) != 2 {
		t.Fatalf("bindings = %d, want 2", len(d.Bindings()))
	}

	done := runDispatcher(d, "alt+c")
	src.fire("ctrl+a")
	src.fire("ctrl+b")
	src.fire("alt+c")
	waitDone(t, done)

	if !ok1.Load() || !ok2.Load() {
		t.Error("surviving bindings must remain active")
	}
}

func TestUnboundTriggerIgnored(t *testing.T) {
	src := newChanSource()
	d := NewDispatcher(src, testLogger())

	done := runDispatcher(d, "alt+c")
	src.fire("alt+z")
	src.fire("alt+c")

	if err := waitDone(t, done); err != nil {
		t.Errorf("Run returned %v", err)
	}
}

func TestActionPanicDoesNotKillLoop(t *testing.T) {
	src := newChanSource()
	d := NewDispatcher(src, testLogger())

	var after atomic.Bool
	d.Register("ctrl+p", "panics", func() { panic("boom") })
	d.Register("ctrl+k", "ok", func() { after.Store(true) })

	done := runDispatcher(d, "alt+c")
	src.fire("ctrl+p")
	src.fire("ctrl+k")
	src.fire("alt+c")

	if err := waitDone(t, done); err != nil {
		t.Fatalf("Run returned %v", err)
	}
	if !after.Load() {
		t.Error("dispatch must continue after a panicking action")
	}
}

func TestRunContextCancel(t *testing.T) {
	src := newChanSource()
	d := NewDispatcher(src, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- d.Run(ctx, "alt+c")
	}()

	cancel()
	if err := waitDone(t, done); !errors.Is(err, context.Canceled) {
		t.Errorf("Run returned %v, want context.Canceled", err)
	}
}

func TestRunSourceClosed(t *testing.T) {
	src := newChanSource()
	d := NewDispatcher(src, testLogger())

	done := runDispatcher(d, "alt+c")
	close(src.ch)

	if err := waitDone(t, done); err == nil {
		t.Error("Run must report a closed source")
	}
}

func TestSerializedDispatch(t *testing.T) {
	src := newChanSource()
	d := NewDispatcher(src, testLogger())

	var concurrent, maxConcurrent atomic.Int32
	d.Register("ctrl+x", "slow", func() {
		c := concurrent.Add(1)
		if c > maxConcurrent.Load() {
			maxConcurrent.Store(c)
		}
		time.Sleep(20 * time.Millisecond)
		concurrent.Add(-1)
	})

	done := runDispatcher(d, "alt+c")
	for range 5 {
		src.fire("ctrl+x")
	}
	src.fire("alt+c")
	waitDone(t, done)

	if maxConcurrent.Load() != 1 {
		t.Errorf("max concurrent handlers = %d, want 1", maxConcurrent.Load())
	}
}
