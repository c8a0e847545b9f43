// Package state holds the runtime switches controlling the supervisor:
// whether supervision is active, which command variant launches, and
// whether subprocess output is visible. State lives for one program run
// and is owned by whoever constructs it; there are no package globals.
package state

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// Runtime state keys.
const (
	KeyActive           = "active"
	KeyAlternateCommand = "alternate_command"
	KeyDebugOutput      = "debug_output"
)

// ErrInvalidKey is returned when an operation references an unknown state key.
var ErrInvalidKey = errors.New("invalid state key")

// State is a registry of named boolean switches with atomic access.
type State struct {
	mu    sync.RWMutex
	flags map[string]bool
}

// New creates runtime state with defaults: supervision active, optimized
// command variant selected, subprocess output visible.
func New() *State {
	return &State{
		flags: map[string]bool{
			KeyActive:           true,
			KeyAlternateCommand: false,
			KeyDebugOutput:      true,
		},
	}
}

// Get returns the value of a boolean key.
func (s *State) Get(key string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.flags[key]
	if !ok {
		return false, fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return v, nil
}

// Set assigns a boolean key.
func (s *State) Set(key string, value bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.flags[key]; !ok {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	s.flags[key] = value
	return nil
}

// Toggle flips a boolean key and returns the new value.
// Toggling twice restores the prior value.
func (s *State) Toggle(key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.flags[key]
	if !ok {
		return false, fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	s.flags[key] = !v
	return !v, nil
}

// IsActive reports whether supervision is active. Equivalent to Get(KeyActive).
func (s *State) IsActive() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.flags[KeyActive]
}

// Snapshot returns a copy of all flags.
func (s *State) Snapshot() map[string]bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := make(map[string]bool, len(s.flags))
	for k, v := range s.flags {
		snap[k] = v
	}
	return snap
}

// Keys returns all known keys in sorted order.
func (s *State) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.flags))
	for k := range s.flags {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
