package process

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/shirou/gopsutil/v4/process"
)

// Proc is one enumerated host process.
type Proc interface {
	Pid() int32
	Name() (string, error)
	Terminate() error
}

// Lister enumerates host processes. The default implementation is backed
// by gopsutil; tests substitute fakes.
type Lister interface {
	Processes() ([]Proc, error)
}

// hostLister enumerates real host processes via gopsutil.
type hostLister struct{}

func (hostLister) Processes() ([]Proc, error) {
	procs, err := process.Processes()
	if err != nil {
		return nil, err
	}
	out := make([]Proc, len(procs))
	for i, p := range procs {
		out[i] = hostProc{p}
	}
	return out, nil
}

type hostProc struct {
	p *process.Process
}

func (h hostProc) Pid() int32            { return h.p.Pid }
func (h hostProc) Name() (string, error) { return h.p.Name() }
func (h hostProc) Terminate() error      { return h.p.Terminate() }

// Terminator issues terminate requests to host processes matched by name.
type Terminator struct {
	lister Lister
	logger *slog.Logger
}

// NewTerminator creates a Terminator backed by the host process table.
func NewTerminator(logger *slog.Logger) *Terminator {
	return NewTerminatorWithLister(hostLister{}, logger)
}

// NewTerminatorWithLister creates a Terminator with a custom process lister.
func NewTerminatorWithLister(lister Lister, logger *slog.Logger) *Terminator {
	return &Terminator{lister: lister, logger: logger}
}

// TerminateAllByName sends a terminate request to every running process
// whose name exactly equals identity and returns the number of requests
// issued. It matches any process with that name, including ones not
// spawned by this program. It does not wait for the processes to exit.
func (t *Terminator) TerminateAllByName(identity string) (int, error) {
	procs, err := t.lister.Processes()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrEnumeration, err)
	}

	self := int32(os.Getpid())
	terminated := 0
	for _, p := range procs {
		if p.Pid() == self {
			continue
		}
		name, nameErr := p.Name()
		if nameErr != nil {
			// Processes can vanish mid-enumeration
			continue
		}
		if name != identity {
			continue
		}
		if termErr := p.Terminate(); termErr != nil {
			t.logger.Warn("Failed to terminate process", "pid", p.Pid(), "name", name, "error", termErr)
			continue
		}
		t.logger.Info("Terminate requested", "pid", p.Pid(), "name", name)
		terminated++
	}

	return terminated, nil
}

// AnyRunning reports whether at least one process matches identity.
// Used by the opt-in bounded restart wait.
func (t *Terminator) AnyRunning(identity string) (bool, error) {
	procs, err := t.lister.Processes()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrEnumeration, err)
	}
	for _, p := range procs {
		if name, nameErr := p.Name(); nameErr == nil && name == identity {
			return true, nil
		}
	}
	return false, nil
}
