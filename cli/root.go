// ABOUTME: Root cobra command and shared flags
// ABOUTME: Loads configuration and the logger before any subcommand runs
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/whitefoxstudios/onboarding/config"
	"github.com/whitefoxstudios/onboarding/logging"
)

type rootFlags struct {
	configPath string
	dbPath     string
	verbose    bool
	output     string
}

// NewRootCommand builds the onboard command tree.
func NewRootCommand(version string) *cobra.Command {
	flags := &rootFlags{}
	a := &app{version: version}

	root := &cobra.Command{
		Use:           "onboard",
		Short:         "Reconcile onboarding form submissions into users, contacts and clients",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(flags.configPath)
			if err != nil {
				return err
			}
			if flags.dbPath != "" {
				cfg.DBPath = flags.dbPath
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			level := cfg.LogLevel
			if flags.verbose {
				level = "debug"
			}
			logger, err := logging.New(level, flags.verbose)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}

			a.cfg = cfg
			a.logger = logger
			a.out = cmd.OutOrStdout()
			a.format = flags.output
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			a.close()
		},
	}

	root.PersistentFlags().StringVar(&flags.configPath, "config", "", "config file (default: $XDG_CONFIG_HOME/onboard/config.yaml)")
	root.PersistentFlags().StringVar(&flags.dbPath, "db-path", "", "database path (default: $XDG_DATA_HOME/onboard/onboard.db)")
	root.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "debug logging")
	root.PersistentFlags().StringVarP(&flags.output, "output", "o", formatAuto, "output format: auto, json or table")

	root.AddCommand(
		newServeCommand(a),
		newMCPCommand(a),
		newSubmitCommand(a),
		newReplayCommand(a),
		newSettingsCommand(a),
		newUsersCommand(a),
		newContactsCommand(a),
		newClientsCommand(a),
		newSubmissionsCommand(a),
	)
	return root
}

// Execute runs the command tree with process arguments.
func Execute(version string) error {
	return NewRootCommand(version).Execute()
}
