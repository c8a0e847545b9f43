package events

// Event type constants for kelindar/event.
const (
	TypeProcessStarted uint32 = iota + 1
	TypeProcessStopped
	TypeProcessError
	TypeStateChanged
	TypeProfileReloaded
)

// Event interface required by kelindar/event.
type Event interface {
	Type() uint32
}

// ProcessStartedEvent signals that the supervisor launched a new subprocess.
type ProcessStartedEvent struct {
	Command string `json:"command"`
	PID     int    `json:"pid"`
}

// Type returns the event type identifier for ProcessStartedEvent.
func (e ProcessStartedEvent) Type() uint32 { return TypeProcessStarted }

// ProcessStoppedEvent signals that a terminate request was issued for
// all processes matching the configured identity.
type ProcessStoppedEvent struct {
	ProcessName string `json:"process_name"`
	Terminated  int    `json:"terminated"`
}

// Type returns the event type identifier for ProcessStoppedEvent.
func (e ProcessStoppedEvent) Type() uint32 { return TypeProcessStopped }

// ProcessErrorEvent signals a spawn or termination failure.
type ProcessErrorEvent struct {
	Operation string `json:"operation"`
	Error     string `json:"error"`
}

// Type returns the event type identifier for ProcessErrorEvent.
func (e ProcessErrorEvent) Type() uint32 { return TypeProcessError }

// StateChangedEvent signals that a runtime state key was toggled or set.
type StateChangedEvent struct {
	Key      string `json:"key"`
	NewValue bool   `json:"new_value"`
}

// Type returns the event type identifier for StateChangedEvent.
func (e StateChangedEvent) Type() uint32 { return TypeStateChanged }

// ProfileReloadedEvent signals that the launcher profile was reloaded
// from the config file.
type ProfileReloadedEvent struct {
	ProcessName string `json:"process_name"`
}

// Type returns the event type identifier for ProfileReloadedEvent.
func (e ProfileReloadedEvent) Type() uint32 { return TypeProfileReloaded }
