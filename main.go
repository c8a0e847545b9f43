package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/smazurov/easyrun/cmd"
	"github.com/smazurov/easyrun/internal/config"
	"github.com/smazurov/easyrun/internal/events"
	"github.com/smazurov/easyrun/internal/logging"
	"github.com/smazurov/easyrun/internal/state"
	"github.com/smazurov/easyrun/internal/supervisor"
	"github.com/smazurov/easyrun/internal/trigger"
	"github.com/smazurov/easyrun/internal/version"
)

// recentOutputLines bounds how much hidden subprocess output a state
// dump replays.
const recentOutputLines = 20

// Options for the CLI - flat structure with toml mapping.
type Options struct {
	Config string `help:"Path to configuration file" short:"c" default:"easyrun.toml"`

	// Launcher settings
	OptimizedCommand string `help:"Optimized launch command" default:"cargo run --release" toml:"launcher.optimized_command" env:"LAUNCHER_OPTIMIZED_COMMAND"`
	FastCommand      string `help:"Fast launch command" default:"cargo run" toml:"launcher.fast_command" env:"LAUNCHER_FAST_COMMAND"`
	ProcessName      string `help:"Executable name matched when terminating" default:"cargo" toml:"launcher.process_name" env:"LAUNCHER_PROCESS_NAME"`
	RestartWaitMs    int    `help:"Milliseconds to wait for old processes to exit before a restart launches (0 = do not wait)" default:"0" toml:"launcher.restart_wait_ms" env:"LAUNCHER_RESTART_WAIT_MS"`
	NoWatch          bool   `help:"Disable config file watching" default:"false" toml:"launcher.no_watch" env:"LAUNCHER_NO_WATCH"`

	// Trigger chords
	QuitChord          string `help:"Chord that exits easyrun" default:"alt+c" toml:"triggers.quit" env:"TRIGGERS_QUIT"`
	RestartChord       string `help:"Chord that restarts the process" default:"ctrl+r" toml:"triggers.restart" env:"TRIGGERS_RESTART"`
	StopChord          string `help:"Chord that stops the process" default:"alt+o" toml:"triggers.stop" env:"TRIGGERS_STOP"`
	ToggleActiveChord  string `help:"Chord that toggles supervision on/off" default:"alt+g" toml:"triggers.toggle_active" env:"TRIGGERS_TOGGLE_ACTIVE"`
	ToggleCommandChord string `help:"Chord that toggles the command variant" default:"alt+m" toml:"triggers.toggle_command" env:"TRIGGERS_TOGGLE_COMMAND"`
	ToggleOutputChord  string `help:"Chord that toggles subprocess output" default:"alt+d" toml:"triggers.toggle_output" env:"TRIGGERS_TOGGLE_OUTPUT"`
	DumpStateChord     string `help:"Chord that prints the runtime state" default:"alt+s" toml:"triggers.dump_state" env:"TRIGGERS_DUMP_STATE"`

	// Logging settings
	LoggingLevel      string `help:"Global logging level (debug, info, warn, error)" default:"info" toml:"logging.level" env:"LOGGING_LEVEL"`
	LoggingFormat     string `help:"Logging format (text, json)" default:"text" toml:"logging.format" env:"LOGGING_FORMAT"`
	LoggingSupervisor string `help:"Supervisor logging level" default:"info" toml:"logging.supervisor" env:"LOGGING_SUPERVISOR"`
	LoggingProcess    string `help:"Process logging level" default:"info" toml:"logging.process" env:"LOGGING_PROCESS"`
	LoggingTrigger    string `help:"Trigger logging level" default:"info" toml:"logging.trigger" env:"LOGGING_TRIGGER"`
	LoggingConfig     string `help:"Config watcher logging level" default:"info" toml:"logging.config" env:"LOGGING_CONFIG"`
}

func main() {
	var cli humacli.CLI
	cli = humacli.New(func(hooks humacli.Hooks, opts *Options) {
		// Load configuration automatically
		if loadErr := config.LoadConfig(opts, cli.Root()); loadErr != nil {
			logging.GetLogger("main").Warn("Failed to load config", "error", loadErr)
		}

		// Initialize logging: the [logging] table may carry levels for any
		// module; the dedicated flags override the common ones.
		loggingConfig := config.LoadLoggingConfig(opts.Config)
		loggingConfig.Level = opts.LoggingLevel
		loggingConfig.Format = opts.LoggingFormat
		loggingConfig.Modules["supervisor"] = opts.LoggingSupervisor
		loggingConfig.Modules["process"] = opts.LoggingProcess
		loggingConfig.Modules["trigger"] = opts.LoggingTrigger
		loggingConfig.Modules["config"] = opts.LoggingConfig
		logging.Initialize(loggingConfig)

		logger := logging.GetLogger("main")

		// Create event bus for in-process event handling
		eventBus := events.New()
		subscribeConsole(eventBus, logger)

		runtimeState := state.New()

		sup := supervisor.New(&supervisor.Options{
			State: runtimeState,
			Profile: supervisor.Profile{
				OptimizedCommand: opts.OptimizedCommand,
				FastCommand:      opts.FastCommand,
				ProcessName:      opts.ProcessName,
				RestartWait:      time.Duration(opts.RestartWaitMs) * time.Millisecond,
			},
			Bus:    eventBus,
			Logger: logging.GetLogger("supervisor"),
		})

		// Watch the config file and hot-swap the launch profile
		var watcher *config.Watcher[supervisor.Profile]
		if !opts.NoWatch {
			watcher = config.NewConfigWatcher(
				opts.Config,
				supervisor.LoadProfile,
				logging.GetLogger("config"),
			)
			watcher.OnReload(func(p supervisor.Profile) {
				p.RestartWait = time.Duration(opts.RestartWaitMs) * time.Millisecond
				sup.SetProfile(p)
			})
		}

		triggerLogger := logging.GetLogger("trigger")
		dispatcher := trigger.NewDispatcher(trigger.NewKeyboardSource(triggerLogger), triggerLogger)

		toggle := func(key string) trigger.Action {
			return func() {
				value, err := runtimeState.Toggle(key)
				if err != nil {
					logger.Error("Toggle failed", "key", key, "error", err)
					return
				}
				eventBus.Publish(events.StateChangedEvent{Key: key, NewValue: value})
			}
		}

		bindings := []struct {
			chord       string
			description string
			action      trigger.Action
		}{
			{opts.RestartChord, "restart process", func() {
				if _, err := sup.Restart(); err != nil {
					logger.Error("Restart failed", "error", err)
				}
			}},
			{opts.StopChord, "stop process", sup.Stop},
			{opts.ToggleActiveChord, "toggle supervision", toggle(state.KeyActive)},
			{opts.ToggleCommandChord, "toggle command variant", toggle(state.KeyAlternateCommand)},
			{opts.ToggleOutputChord, "toggle subprocess output", toggle(state.KeyDebugOutput)},
			{opts.DumpStateChord, "print runtime state", func() {
				logger.Info(sup.Describe())
				// While output is hidden, the dump also replays what the
				// child said recently
				if debug, err := runtimeState.Get(state.KeyDebugOutput); err == nil && !debug {
					for _, line := range sup.RecentOutput(recentOutputLines) {
						logger.Info(line)
					}
				}
			}},
		}

		// A bad chord disables only that binding; the rest stay active.
		for _, b := range bindings {
			if err := dispatcher.Register(b.chord, b.description, b.action); err != nil {
				logger.Error("Skipping trigger binding", "chord", b.chord, "error", err)
			}
		}

		ctx, cancel := context.WithCancel(context.Background())

		hooks.OnStart(func() {
			// Leave no orphans behind, whatever ends the trigger loop
			defer sup.Stop()

			if watcher != nil {
				if watchErr := watcher.Start(); watchErr != nil {
					logger.Warn("Config watching disabled", "error", watchErr)
				} else {
					defer func() {
						if stopErr := watcher.Stop(); stopErr != nil {
							logger.Warn("Failed to stop config watcher", "error", stopErr)
						}
					}()
				}
			}

			// Launch immediately; the first start ignores the active switch
			if _, startErr := sup.Start(); startErr != nil {
				logger.Error("Initial start failed", "error", startErr)
			}

			if runErr := dispatcher.Run(ctx, opts.QuitChord); runErr != nil && ctx.Err() == nil {
				logger.Error("Trigger loop ended", "error", runErr)
			}
		})

		hooks.OnStop(func() {
			cancel()
		})
	})

	cli.Root().Version = version.String()
	cli.Root().AddCommand(cmd.CreateExecCmd())

	// Run the CLI
	cli.Run()
}

// subscribeConsole mirrors lifecycle events to the console so the user
// sees what their key presses did.
func subscribeConsole(bus *events.Bus, logger *slog.Logger) {
	bus.Subscribe(func(e events.ProcessStartedEvent) {
		logger.Info("Process started", "command", e.Command, "pid", e.PID)
	})
	bus.Subscribe(func(e events.ProcessStoppedEvent) {
		logger.Info("Terminate requested", "process_name", e.ProcessName, "count", e.Terminated)
	})
	bus.Subscribe(func(e events.ProcessErrorEvent) {
		logger.Warn("Process operation failed", "operation", e.Operation, "error", e.Error)
	})
	bus.Subscribe(func(e events.StateChangedEvent) {
		logger.Info("State changed", "key", e.Key, "value", e.NewValue)
	})
	bus.Subscribe(func(e events.ProfileReloadedEvent) {
		logger.Info("Profile reloaded", "process_name", e.ProcessName)
	})
}
