package cmd

import (
	"os"

	"github.com/smazurov/easyrun/internal/logging"
	"github.com/smazurov/easyrun/internal/process"
	"github.com/smazurov/easyrun/internal/supervisor"
	"github.com/spf13/cobra"
)

// resolveExec picks the command variant and output mode for a one-shot run.
func resolveExec(profile supervisor.Profile, fast, quiet bool) (string, process.OutputMode) {
	command := profile.OptimizedCommand
	if fast {
		command = profile.FastCommand
	}
	mode := process.OutputInherit
	if quiet {
		mode = process.OutputDiscard
	}
	return command, mode
}

// CreateExecCmd creates the exec command.
func CreateExecCmd() *cobra.Command {
	var configFile string
	var fast bool
	var quiet bool
	var logJSON bool

	cmd := &cobra.Command{
		Use:   "exec",
		Short: "Run the configured command once in the foreground",
		Long: `Runs the launch command from the config file a single time, without ` +
			`supervision or key triggers. Blocks until the command exits and exits ` +
			`with its exit code. Interrupts are forwarded to the command's process group.`,
		Args: cobra.NoArgs,
		Run: func(_ *cobra.Command, _ []string) {
			loggingConfig := logging.Config{
				Level:  "info",
				Format: "text",
			}
			if logJSON {
				loggingConfig.Format = "json"
			}
			logging.Initialize(loggingConfig)
			logger := logging.GetLogger("exec")

			profile, err := supervisor.LoadProfile(configFile)
			if err != nil {
				logger.Warn("Using default profile", "error", err, "config", configFile)
			}

			command, mode := resolveExec(profile, fast, quiet)

			code, runErr := process.Run(command, mode, nil, logger)
			if runErr != nil {
				logger.Error("Command failed", "error", runErr)
				os.Exit(1)
			}
			os.Exit(code)
		},
	}

	cmd.Flags().StringVarP(&configFile, "config", "c", "easyrun.toml", "Path to configuration file")
	cmd.Flags().BoolVar(&fast, "fast", false, "Use the fast command variant")
	cmd.Flags().BoolVar(&quiet, "quiet", false, "Discard the command's output")
	cmd.Flags().BoolVar(&logJSON, "log-json", false, "Output logs in JSON format")

	return cmd
}
