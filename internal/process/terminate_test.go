package process

import (
	"errors"
	"io"
	"log/slog"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeProc implements Proc for tests.
type fakeProc struct {
	pid        int32
	name       string
	nameErr    error
	termErr    error
	terminated int
}

func (f *fakeProc) Pid() int32            { return f.pid }
func (f *fakeProc) Name() (string, error) { return f.name, f.nameErr }
func (f *fakeProc) Terminate() error {
	if f.termErr != nil {
		return f.termErr
	}
	f.terminated++
	return nil
}

// fakeLister implements Lister for tests.
type fakeLister struct {
	procs []Proc
	err   error
}

func (f *fakeLister) Processes() ([]Proc, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.procs, nil
}

func TestTerminateAllByName_MatchesExactly(t *testing.T) {
	cargo1 := &fakeProc{pid: 100, name: "cargo"}
	cargo2 := &fakeProc{pid: 200, name: "cargo"}
	other := &fakeProc{pid: 300, name: "cargo-watch"}

	term := NewTerminatorWithLister(&fakeLister{procs: []Proc{cargo1, other, cargo2}}, testLogger())

	count, err := term.TerminateAllByName("cargo")
	if err != nil {
		t.Fatalf("TerminateAllByName failed: %v", err)
	}
	if count != 2 {
		t.Errorf("terminated count = %d, want 2", count)
	}
	if cargo1.terminated != 1 || cargo2.terminated != 1 {
		t.Errorf("each match should receive exactly one request, got %d and %d",
			cargo1.terminated, cargo2.terminated)
	}
	if other.terminated != 0 {
		t.Error("non-matching process must not be terminated")
	}
}

func TestTerminateAllByName_NoMatches(t *testing.T) {
	term := NewTerminatorWithLister(&fakeLister{procs: []Proc{
		&fakeProc{pid: 1, name: "init"},
	}}, testLogger())

	count, err := term.TerminateAllByName("cargo")
	if err != nil {
		t.Fatalf("TerminateAllByName failed: %v", err)
	}
	if count != 0 {
		t.Errorf("terminated count = %d, want 0", count)
	}
}

func TestTerminateAllByName_EnumerationError(t *testing.T) {
	term := NewTerminatorWithLister(&fakeLister{err: errors.New("permission denied")}, testLogger())

	count, err := term.TerminateAllByName("cargo")
	if !errors.Is(err, ErrEnumeration) {
		t.Fatalf("error = %v, want ErrEnumeration", err)
	}
	if count != 0 {
		t.Errorf("terminated count = %d, want 0", count)
	}
}

func TestTerminateAllByName_SkipsFailures(t *testing.T) {
	failing := &fakeProc{pid: 100, name: "cargo", termErr: errors.New("not permitted")}
	ok := &fakeProc{pid: 200, name: "cargo"}
	unnamed := &fakeProc{pid: 300, nameErr: errors.New("gone")}

	term := NewTerminatorWithLister(&fakeLister{procs: []Proc{failing, unnamed, ok}}, testLogger())

	count, err := term.TerminateAllByName("cargo")
	if err != nil {
		t.Fatalf("TerminateAllByName failed: %v", err)
	}
	if count != 1 {
		t.Errorf("terminated count = %d, want 1 (only the successful request)", count)
	}
}

func TestAnyRunning(t *testing.T) {
	lister := &fakeLister{procs: []Proc{&fakeProc{pid: 1, name: "cargo"}}}
	term := NewTerminatorWithLister(lister, testLogger())

	running, err := term.AnyRunning("cargo")
	if err != nil || !running {
		t.Fatalf("AnyRunning = %v, %v; want true, nil", running, err)
	}

	lister.procs = nil
	running, err = term.AnyRunning("cargo")
	if err != nil || running {
		t.Fatalf("AnyRunning = %v, %v; want false, nil", running, err)
	}
}
