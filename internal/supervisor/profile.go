package supervisor

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Default launch profile values. The two command variants must stay
// configurable, but out of the box they wrap a cargo build+run.
const (
	DefaultOptimizedCommand = "cargo run --release"
	DefaultFastCommand      = "cargo run"
	DefaultProcessName      = "cargo"
)

// Profile is the launcher configuration: the two command variants, the
// process identity used for termination, and the optional bounded wait
// before a restart's start phase.
type Profile struct {
	// OptimizedCommand is the slow-build, optimized-binary variant.
	OptimizedCommand string `toml:"optimized_command"`
	// FastCommand is the fast-build, unoptimized variant.
	FastCommand string `toml:"fast_command"`
	// ProcessName is the executable name matched during termination.
	ProcessName string `toml:"process_name"`
	// RestartWait bounds an opt-in poll for old processes to exit before
	// a restart spawns the new one. Zero keeps the default fire-and-forget
	// behavior.
	RestartWait time.Duration `toml:"-"`
}

// DefaultProfile returns the built-in launch profile.
func DefaultProfile() Profile {
	return Profile{
		OptimizedCommand: DefaultOptimizedCommand,
		FastCommand:      DefaultFastCommand,
		ProcessName:      DefaultProcessName,
	}
}

// LoadProfile reads the [launcher] table from a TOML config file.
// Missing fields keep their defaults. Used directly and as the loader
// for the config file watcher.
func LoadProfile(path string) (Profile, error) {
	profile := DefaultProfile()

	data, err := os.ReadFile(path)
	if err != nil {
		return profile, fmt.Errorf("read profile: %w", err)
	}

	var raw struct {
		Launcher struct {
			OptimizedCommand string `toml:"optimized_command"`
			FastCommand      string `toml:"fast_command"`
			ProcessName      string `toml:"process_name"`
			RestartWaitMs    int    `toml:"restart_wait_ms"`
		} `toml:"launcher"`
	}
	if err := toml.Unmarshal(data, &raw); err != nil {
		return profile, fmt.Errorf("parse profile: %w", err)
	}

	if raw.Launcher.OptimizedCommand != "" {
		profile.OptimizedCommand = raw.Launcher.OptimizedCommand
	}
	if raw.Launcher.FastCommand != "" {
		profile.FastCommand = raw.Launcher.FastCommand
	}
	if raw.Launcher.ProcessName != "" {
		profile.ProcessName = raw.Launcher.ProcessName
	}
	if raw.Launcher.RestartWaitMs > 0 {
		profile.RestartWait = time.Duration(raw.Launcher.RestartWaitMs) * time.Millisecond
	}

	return profile, nil
}
