package process

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"syscall"
	"time"
)

// OutputMode controls where a spawned child's stdout/stderr go.
type OutputMode int

// Output modes.
const (
	// OutputInherit attaches the child's streams to the parent console.
	OutputInherit OutputMode = iota
	// OutputDiscard keeps the console quiet; lines go to the OutputHandler
	// if one is configured, otherwise they are dropped.
	OutputDiscard
)

// String returns a human-readable mode name.
func (m OutputMode) String() string {
	if m == OutputInherit {
		return "inherit"
	}
	return "discard"
}

// OutputHandler receives output lines from a subprocess running in
// discard mode. Implementations can buffer lines for later replay.
type OutputHandler interface {
	HandleLine(source, line string)
}

// Handle describes one spawned subprocess. It is a record of the launch,
// not a lifetime guarantee: the child is never waited on by callers and
// may outlive or predecease this handle.
type Handle struct {
	Command   string
	PID       int
	StartedAt time.Time

	cmd *exec.Cmd
}

// Spawn launches the command asynchronously and returns immediately.
// The handler is only consulted in OutputDiscard mode and may be nil.
// A background goroutine reaps the child on exit so no zombie remains;
// nothing else synchronizes with the child after this call returns.
func Spawn(command string, mode OutputMode, handler OutputHandler, logger *slog.Logger) (*Handle, error) {
	args, err := splitCommand(command)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSpawn, err)
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("%w: empty command", ErrSpawn)
	}

	cmd := exec.Command(args[0], args[1:]...)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	var stdout, stderr io.ReadCloser
	switch mode {
	case OutputInherit:
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
	case OutputDiscard:
		if handler != nil {
			if stdout, err = cmd.StdoutPipe(); err != nil {
				return nil, fmt.Errorf("%w: stdout pipe: %v", ErrSpawn, err)
			}
			if stderr, err = cmd.StderrPipe(); err != nil {
				return nil, fmt.Errorf("%w: stderr pipe: %v", ErrSpawn, err)
			}
		}
		// nil Stdout/Stderr means the child writes to the null device
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrSpawn, command, err)
	}

	h := &Handle{
		Command:   command,
		PID:       cmd.Process.Pid,
		StartedAt: time.Now(),
		cmd:       cmd,
	}

	logger.Info("Process spawned", "pid", h.PID, "command", command, "output", mode.String())

	streamsDone := make(chan struct{}, 2)
	streams := 0
	if stdout != nil {
		streams++
		go func() {
			streamLines(stdout, "stdout", handler)
			streamsDone <- struct{}{}
		}()
	}
	if stderr != nil {
		streams++
		go func() {
			streamLines(stderr, "stderr", handler)
			streamsDone <- struct{}{}
		}()
	}

	// Reap the child once it exits. Wait must not run until the pipe
	// readers are finished, so drain streamsDone first.
	go func(n int) {
		for range n {
			<-streamsDone
		}
		if waitErr := cmd.Wait(); waitErr != nil {
			logger.Debug("Process exited", "pid", h.PID, "error", waitErr)
		} else {
			logger.Debug("Process exited", "pid", h.PID)
		}
	}(streams)

	return h, nil
}

// Uptime returns how long ago the process was spawned.
func (h *Handle) Uptime() time.Duration {
	return time.Since(h.StartedAt)
}

// streamLines forwards scanner lines to the handler.
func streamLines(reader io.Reader, source string, handler OutputHandler) {
	scanner := bufio.NewScanner(reader)
	for scanner.Scan() {
		handler.HandleLine(source, scanner.Text())
	}
}
