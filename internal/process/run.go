package process

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"os/signal"
	"syscall"
)

// Run launches the command in the foreground and blocks until it exits,
// returning the child's exit code. SIGINT and SIGTERM are forwarded to
// the child's process group so an interactive interrupt reaches the
// child first. The handler is only consulted in OutputDiscard mode.
func Run(command string, mode OutputMode, handler OutputHandler, logger *slog.Logger) (int, error) {
	args, err := splitCommand(command)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrSpawn, err)
	}
	if len(args) == 0 {
		return 0, fmt.Errorf("%w: empty command", ErrSpawn)
	}

	cmd := exec.Command(args[0], args[1:]...)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	var stdout, stderr io.ReadCloser
	switch mode {
	case OutputInherit:
		cmd.Stdin = os.Stdin
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
	case OutputDiscard:
		if handler != nil {
			if stdout, err = cmd.StdoutPipe(); err != nil {
				return 0, fmt.Errorf("%w: stdout pipe: %v", ErrSpawn, err)
			}
			if stderr, err = cmd.StderrPipe(); err != nil {
				return 0, fmt.Errorf("%w: stderr pipe: %v", ErrSpawn, err)
			}
		}
	}

	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("%w: %q: %v", ErrSpawn, command, err)
	}

	logger.Info("Running command", "pid", cmd.Process.Pid, "command", command)

	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	forwardDone := make(chan struct{})
	go func() {
		for {
			select {
			case sig := <-sigCh:
				// Negative pid targets the child's process group
				if killErr := syscall.Kill(-cmd.Process.Pid, sig.(syscall.Signal)); killErr != nil {
					logger.Warn("Failed to forward signal", "signal", sig, "error", killErr)
				}
			case <-forwardDone:
				return
			}
		}
	}()

	if stdout != nil {
		go streamLines(stdout, "stdout", handler)
	}
	if stderr != nil {
		go streamLines(stderr, "stderr", handler)
	}

	waitErr := cmd.Wait()
	close(forwardDone)

	if waitErr != nil {
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			return exitErr.ExitCode(), nil
		}
		return 0, fmt.Errorf("wait: %w", waitErr)
	}
	return 0, nil
}
