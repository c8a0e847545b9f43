// Package process provides subprocess spawning and name-based termination.
//
// Spawn launches a command without waiting for it:
//   - Inherit mode attaches the child's stdout/stderr to the parent console
//   - Discard mode keeps the console quiet, optionally streaming output
//     lines to a handler for later replay
//
// Terminator finds and signals processes by executable name:
//   - Enumerates all host processes, not only ones this program spawned
//   - Exact name match, one terminate request per match
//   - Fire-and-forget: returning does not mean the processes have exited
//
// Name-based termination is a deliberate capability, not a shortcut. The
// supervised command (e.g. cargo) may have been started outside this
// program, and a build/run wrapper respawns its real child, so a held
// handle would go stale. Matching by name catches them all.
package process
