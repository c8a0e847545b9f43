// Package supervisor composes runtime state and process control into the
// start/stop/restart protocol driven by trigger actions.
package supervisor

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/smazurov/easyrun/internal/events"
	"github.com/smazurov/easyrun/internal/logging"
	"github.com/smazurov/easyrun/internal/process"
	"github.com/smazurov/easyrun/internal/state"
)

const outputBufferSize = 200

// restartPollInterval is how often the bounded restart wait re-checks
// whether old processes are still running.
const restartPollInterval = 100 * time.Millisecond

// Terminator abstracts name-based process termination.
// *process.Terminator is the host-backed implementation.
type Terminator interface {
	TerminateAllByName(identity string) (int, error)
	AnyRunning(identity string) (bool, error)
}

// SpawnFunc launches a subprocess. process.Spawn is the default.
type SpawnFunc func(command string, mode process.OutputMode, handler process.OutputHandler, logger *slog.Logger) (*process.Handle, error)

// Options configures a new Supervisor.
type Options struct {
	// State is the runtime switch registry (required).
	State *state.State
	// Profile is the initial launch profile.
	Profile Profile
	// Bus receives lifecycle events. If nil, a private bus is created.
	Bus *events.Bus
	// Logger for supervisor operations. If nil, uses slog.Default().
	Logger *slog.Logger
	// Terminator overrides the host-backed process terminator (tests).
	Terminator Terminator
	// Spawn overrides process.Spawn (tests).
	Spawn SpawnFunc
}

// Supervisor owns the current process handle and the runtime state, and
// implements Start, Stop and Restart as guarded, composed operations.
// All methods are called from the single dispatcher goroutine; the mutex
// protects against the config watcher swapping the profile concurrently.
type Supervisor struct {
	mu      sync.Mutex
	state   *state.State
	profile Profile
	current *process.Handle

	term   Terminator
	spawn  SpawnFunc
	bus    *events.Bus
	logger *slog.Logger

	// Recent subprocess output captured while the console is quiet
	output *logging.RingBuffer
}

// New creates a Supervisor.
func New(opts *Options) *Supervisor {
	if opts == nil || opts.State == nil {
		panic("Options with State is required")
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	bus := opts.Bus
	if bus == nil {
		bus = events.New()
	}

	s := &Supervisor{
		state:   opts.State,
		profile: opts.Profile,
		bus:     bus,
		logger:  logger,
		output:  logging.NewRingBuffer(outputBufferSize),
	}

	s.term = opts.Terminator
	if s.term == nil {
		s.term = process.NewTerminator(logger)
	}

	s.spawn = opts.Spawn
	if s.spawn == nil {
		s.spawn = process.Spawn
	}

	return s
}

// ResolveCommand returns the command the current state selects.
func (s *Supervisor) ResolveCommand() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resolveCommandLocked()
}

func (s *Supervisor) resolveCommandLocked() string {
	alternate, _ := s.state.Get(state.KeyAlternateCommand)
	if alternate {
		return s.profile.FastCommand
	}
	return s.profile.OptimizedCommand
}

func (s *Supervisor) outputModeLocked() process.OutputMode {
	debug, _ := s.state.Get(state.KeyDebugOutput)
	if debug {
		return process.OutputInherit
	}
	return process.OutputDiscard
}

// Start spawns the subprocess selected by the current state and records
// it as the current handle. Start is always allowed, even when the
// active flag is off: the unconditional first launch depends on this.
func (s *Supervisor) Start() (*process.Handle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	command := s.resolveCommandLocked()
	mode := s.outputModeLocked()

	handle, err := s.spawn(command, mode, s.outputHandler(), s.logger)
	if err != nil {
		s.current = nil
		s.logger.Error("Failed to spawn process", "error", err, "command", command)
		s.bus.Publish(events.ProcessErrorEvent{Operation: "spawn", Error: err.Error()})
		return nil, err
	}

	s.current = handle
	s.bus.Publish(events.ProcessStartedEvent{Command: command, PID: handle.PID})
	return handle, nil
}

// Stop issues a terminate request to every process matching the profile's
// process name. No-op when supervision is inactive. Errors are demoted to
// warnings; Stop never fails its caller.
func (s *Supervisor) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

func (s *Supervisor) stopLocked() {
	if !s.state.IsActive() {
		s.logger.Debug("Supervision inactive, stop skipped")
		return
	}

	count, err := s.term.TerminateAllByName(s.profile.ProcessName)
	if err != nil {
		s.logger.Warn("Failed to enumerate processes", "error", err, "process_name", s.profile.ProcessName)
		s.bus.Publish(events.ProcessErrorEvent{Operation: "terminate", Error: err.Error()})
		return
	}

	// The old handle is abandoned, not awaited
	s.current = nil
	s.logger.Info("Stop requested", "process_name", s.profile.ProcessName, "terminated", count)
	s.bus.Publish(events.ProcessStoppedEvent{ProcessName: s.profile.ProcessName, Terminated: count})
}

// Restart performs Stop strictly before Start. No-op returning (nil, nil)
// when supervision is inactive. By default the new process may launch
// while the old one is still shutting down; a non-zero RestartWait in the
// profile bounds a poll for the old processes to disappear first.
func (s *Supervisor) Restart() (*process.Handle, error) {
	s.mu.Lock()

	if !s.state.IsActive() {
		s.mu.Unlock()
		s.logger.Debug("Supervision inactive, restart skipped")
		return nil, nil
	}

	s.stopLocked()

	if wait := s.profile.RestartWait; wait > 0 {
		s.waitForExitLocked(wait)
	}

	s.mu.Unlock()
	return s.Start()
}

// waitForExitLocked polls until no process matches the profile name or
// the deadline passes. Best effort: enumeration errors end the wait.
func (s *Supervisor) waitForExitLocked(wait time.Duration) {
	deadline := time.Now().Add(wait)
	for time.Now().Before(deadline) {
		running, err := s.term.AnyRunning(s.profile.ProcessName)
		if err != nil || !running {
			return
		}
		time.Sleep(restartPollInterval)
	}
	s.logger.Warn("Old process still running after restart wait", "process_name", s.profile.ProcessName, "wait", wait)
}

// Current returns the logically current process handle, or nil.
func (s *Supervisor) Current() *process.Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Profile returns the active launch profile.
func (s *Supervisor) Profile() Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profile
}

// SetProfile swaps the launch profile. The next Start picks it up;
// a running process is not touched.
func (s *Supervisor) SetProfile(p Profile) {
	s.mu.Lock()
	s.profile = p
	s.mu.Unlock()

	s.logger.Info("Launch profile updated", "process_name", p.ProcessName)
	s.bus.Publish(events.ProfileReloadedEvent{ProcessName: p.ProcessName})
}

// Describe renders the current state as human-readable key: value lines.
func (s *Supervisor) Describe() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var sb strings.Builder
	sb.WriteString("easyrun state:\n")
	snap := s.state.Snapshot()
	for _, key := range s.state.Keys() {
		fmt.Fprintf(&sb, "  %s: %v\n", key, snap[key])
	}
	fmt.Fprintf(&sb, "  command: %s\n", s.resolveCommandLocked())
	fmt.Fprintf(&sb, "  process_name: %s\n", s.profile.ProcessName)
	if s.current != nil {
		fmt.Fprintf(&sb, "  process: pid %d, up %s\n", s.current.PID, s.current.Uptime().Round(time.Second))
	} else {
		sb.WriteString("  process: none\n")
	}
	return sb.String()
}

// RecentOutput returns up to n recent subprocess output lines captured
// while output was hidden.
func (s *Supervisor) RecentOutput(n int) []string {
	entries := s.output.ReadLast("", n)
	lines := make([]string, len(entries))
	for i, e := range entries {
		lines[i] = logging.FormatLogLine(e)
	}
	return lines
}

// outputHandler buffers hidden subprocess output for later replay.
func (s *Supervisor) outputHandler() process.OutputHandler {
	return &bufferingHandler{buffer: s.output}
}

type bufferingHandler struct {
	buffer *logging.RingBuffer
}

func (b *bufferingHandler) HandleLine(source, line string) {
	b.buffer.Write(logging.LogEntry{
		Timestamp:  time.Now(),
		Level:      "debug",
		Module:     "subprocess",
		Message:    line,
		Attributes: map[string]any{"source": source},
	})
}
