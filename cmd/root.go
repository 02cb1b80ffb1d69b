package cmd

import (
	"github.com/apex/log"
	"github.com/spf13/cobra"

	"github.com/0xh4ty/emacs-solidity-server/internal/logging"
	"github.com/0xh4ty/emacs-solidity-server/pkg/config"
)

var (
	// Global flags
	configFile string
	verbose    bool
	quiet      bool

	settings  config.Settings
	closeLogs = func() {}
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "solidity-server",
	Short: "Solidity compiler toolchain manager",
	Long: `solidity-server maintains a local cache of Solidity compiler binaries for the
editor integration: it syncs the latest release of every minor series, pins
exact versions requested by source files, and resolves a source file's
version pragma to a ready-to-run compiler.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		settings, err = config.LoadOrDefault(configFile)
		if err != nil {
			return err
		}

		closeLogs, err = logging.Setup(verbose, quiet, settings.LogFile)
		if err != nil {
			return err
		}
		log.Debugf("settings file: %s", configFile)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		closeLogs()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() error {
	return RootCmd.Execute()
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Path to settings file (default: built-in settings)")
	RootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Increase log verbosity")
	RootCmd.PersistentFlags().BoolVar(&quiet, "quiet", false, "Only log errors")

	RootCmd.AddCommand(SyncCommand)
	RootCmd.AddCommand(ResolveCommand)
	RootCmd.AddCommand(PruneCommand)
}
