package cmd

import (
	"github.com/apex/log"
	"github.com/spf13/cobra"

	"github.com/0xh4ty/emacs-solidity-server/pkg/platform"
	"github.com/0xh4ty/emacs-solidity-server/pkg/toolchain"
)

// SyncCommand runs one reconciliation cycle in the foreground. The server
// runs the same cycle as a detached task at startup; the command exists for
// warming the cache ahead of time and for debugging sync problems.
var SyncCommand = &cobra.Command{
	Use:   "sync",
	Short: "Reconcile the rolling compiler cache against the release catalog",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		plat, err := platform.Detect()
		if err != nil {
			return err
		}

		_, err = toolchain.Sync(cmd.Context(), toolchain.SyncOptions{
			CacheDir:      settings.CacheDir,
			ExactCacheDir: settings.ExactCacheDir,
			Platform:      plat,
			DistBase:      settings.DistributionBase,
			Retry:         settings.Retry(),
			Retention:     settings.Retention(),
		})
		if err != nil {
			return err
		}

		log.WithField("cache", settings.CacheDir).Info("sync complete")
		return nil
	},
}
