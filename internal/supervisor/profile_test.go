package supervisor

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadProfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[launcher]
optimized_command = "cargo run --release -p engine"
fast_command = "cargo run -p engine"
process_name = "engine"
restart_wait_ms = 2000
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	p, err := LoadProfile(path)
	if err != nil {
		t.Fatalf("LoadProfile failed: %v", err)
	}

	if p.OptimizedCommand != "cargo run --release -p engine" {
		t.Errorf("OptimizedCommand = %q", p.OptimizedCommand)
	}
	if p.FastCommand != "cargo run -p engine" {
		t.Errorf("FastCommand = %q", p.FastCommand)
	}
	if p.ProcessName != "engine" {
		t.Errorf("ProcessName = %q", p.ProcessName)
	}
	if p.RestartWait != 2*time.Second {
		t.Errorf("RestartWait = %v", p.RestartWait)
	}
}

func TestLoadProfilePartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[launcher]\nprocess_name = \"mytool\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	p, err := LoadProfile(path)
	if err != nil {
		t.Fatalf("LoadProfile failed: %v", err)
	}

	if p.ProcessName != "mytool" {
		t.Errorf("ProcessName = %q", p.ProcessName)
	}
	if p.OptimizedCommand != DefaultOptimizedCommand {
		t.Errorf("OptimizedCommand = %q, want default", p.OptimizedCommand)
	}
	if p.RestartWait != 0 {
		t.Errorf("RestartWait = %v, want 0", p.RestartWait)
	}
}

func TestLoadProfileMissingFileReturnsDefaults(t *testing.T) {
	p, err := LoadProfile("/nonexistent/config.toml")
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	// Defaults still usable despite the error
	if p.OptimizedCommand != DefaultOptimizedCommand || p.ProcessName != DefaultProcessName {
		t.Errorf("expected default profile, got %+v", p)
	}
}
