package trigger

import (
	"fmt"
	"log/slog"
	"os"
	"sync"

	"golang.org/x/term"
)

const keyboardBufferSize = 16

// KeyboardSource reads chords from stdin in raw mode. It delivers
// canonical chord names ("ctrl+r", "alt+o", "g") without taking over
// the screen, so an inherited subprocess keeps writing to the console.
type KeyboardSource struct {
	logger *slog.Logger

	mu       sync.Mutex
	events   chan Event
	oldState *term.State
	started  bool
}

// NewKeyboardSource creates a keyboard source for the process stdin.
func NewKeyboardSource(logger *slog.Logger) *KeyboardSource {
	return &KeyboardSource{logger: logger}
}

// Start switches stdin to raw mode and begins decoding key presses.
func (k *KeyboardSource) Start() (<-chan Event, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.started {
		return nil, fmt.Errorf("keyboard source already started")
	}

	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return nil, fmt.Errorf("stdin is not a terminal")
	}

	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("enable raw mode: %w", err)
	}

	k.oldState = oldState
	k.events = make(chan Event, keyboardBufferSize)
	k.started = true

	go k.readLoop()
	return k.events, nil
}

// Stop restores the terminal state. The read goroutine exits on the
// next read error after stdin is restored or the program ends; events
// already queued remain readable.
func (k *KeyboardSource) Stop() error {
	k.mu.Lock()
	defer k.mu.Unlock()

	if !k.started {
		return nil
	}
	k.started = false
	return term.Restore(int(os.Stdin.Fd()), k.oldState)
}

// readLoop reads raw bytes from stdin and emits decoded chords.
func (k *KeyboardSource) readLoop() {
	buf := make([]byte, 8)
	for {
		n, err := os.Stdin.Read(buf)
		if err != nil {
			k.logger.Debug("Keyboard read ended", "error", err)
			close(k.events)
			return
		}

		name, ok := decodeChord(buf[:n])
		if !ok {
			continue
		}

		select {
		case k.events <- Event{Name: name}:
		default:
			// Queue full: the dispatcher is stalled in a handler.
			// Dropping beats blocking the read loop.
			k.logger.Warn("Trigger queue full, dropping key", "chord", name)
		}
	}
}

// decodeChord converts one raw terminal read into a canonical chord name.
//
//	0x01..0x1a       ctrl+a .. ctrl+z
//	ESC <byte>       alt+<decoded byte>
//	printable ASCII  the lowercase rune itself
func decodeChord(buf []byte) (string, bool) {
	if len(buf) == 0 {
		return "", false
	}

	// Alt chords arrive as ESC followed by the key byte
	if buf[0] == 0x1b {
		if len(buf) < 2 {
			// Bare escape (or the start of an arrow-key sequence we
			// don't bind); ignore.
			return "", false
		}
		inner, ok := decodeChord(buf[1:2])
		if !ok {
			return "", false
		}
		return "alt+" + inner, true
	}

	b := buf[0]
	switch {
	case b >= 0x01 && b <= 0x1a:
		return "ctrl+" + string(rune('a'+b-1)), true
	case b >= 'A' && b <= 'Z':
		return string(rune(b - 'A' + 'a')), true
	case b > 0x20 && b < 0x7f:
		return string(rune(b)), true
	default:
		return "", false
	}
}
