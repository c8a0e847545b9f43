// Package trigger maps named key chords to actions and runs the single
// event loop that drives the supervisor. Events are handled one at a
// time on the loop goroutine, so actions never overlap and shared state
// needs no locking beyond serialized dispatch.
package trigger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// ErrBadBinding indicates a trigger registration was rejected.
var ErrBadBinding = errors.New("invalid trigger binding")

// Event is one named trigger delivered by a Source.
type Event struct {
	Name string
}

// Source delivers trigger events from the host, e.g. keyboard input.
type Source interface {
	// Start begins capturing events and returns the delivery channel.
	Start() (<-chan Event, error)
	// Stop terminates capture and releases host resources.
	Stop() error
}

// Action is a zero-argument trigger handler.
type Action func()

// Binding associates a chord with an action and its description.
type Binding struct {
	Chord       string
	Description string
	Action      Action
}

// Dispatcher owns the registration table and the dispatch loop.
type Dispatcher struct {
	source   Source
	logger   *slog.Logger
	bindings map[string]Binding
	order    []string
}

// NewDispatcher creates a dispatcher reading from the given source.
func NewDispatcher(source Source, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		source:   source,
		logger:   logger,
		bindings: make(map[string]Binding),
	}
}

// Register binds a chord to an action. The chord is normalized first;
// a malformed or duplicate chord is rejected with ErrBadBinding and
// leaves previously registered bindings intact.
func (d *Dispatcher) Register(chord, description string, action Action) error {
	normalized, err := Normalize(chord)
	if err != nil {
		return err
	}
	if _, exists := d.bindings[normalized]; exists {
		return fmt.Errorf("%w: %q is already bound", ErrBadBinding, normalized)
	}

	d.bindings[normalized] = Binding{Chord: normalized, Description: description, Action: action}
	d.order = append(d.order, normalized)
	return nil
}

// Bindings returns all bindings in registration order.
func (d *Dispatcher) Bindings() []Binding {
	out := make([]Binding, 0, len(d.order))
	for _, chord := range d.order {
		out = append(out, d.bindings[chord])
	}
	return out
}

// Run starts the source and blocks dispatching events one at a time
// until the quit chord fires, the context is cancelled, or the source
// closes. This is the program's only blocking point. Actions run inline
// on the calling goroutine; a panicking action is logged and the loop
// continues.
func (d *Dispatcher) Run(ctx context.Context, quit string) error {
	quitChord, err := Normalize(quit)
	if err != nil {
		return err
	}

	eventsCh, err := d.source.Start()
	if err != nil {
		return fmt.Errorf("start trigger source: %w", err)
	}
	defer func() {
		if stopErr := d.source.Stop(); stopErr != nil {
			d.logger.Warn("Failed to stop trigger source", "error", stopErr)
		}
	}()

	d.logger.Info("Control bindings:")
	for _, b := range d.Bindings() {
		d.logger.Info("  " + b.Chord + ": " + b.Description)
	}
	d.logger.Info("  "+quitChord+": quit", "quit", quitChord)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-eventsCh:
			if !ok {
				return errors.New("trigger source closed")
			}
			if ev.Name == quitChord {
				d.logger.Info("Quit trigger received", "chord", quitChord)
				return nil
			}
			binding, bound := d.bindings[ev.Name]
			if !bound {
				d.logger.Debug("Unbound trigger ignored", "chord", ev.Name)
				continue
			}
			d.invoke(binding)
		}
	}
}

// invoke runs one action, containing panics so the loop survives.
func (d *Dispatcher) invoke(b Binding) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("Trigger action panicked", "chord", b.Chord, "panic", r)
		}
	}()
	b.Action()
}
