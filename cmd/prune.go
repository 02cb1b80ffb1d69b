package cmd

import (
	"os"
	"path/filepath"

	"github.com/apex/log"
	"github.com/spf13/cobra"

	"github.com/0xh4ty/emacs-solidity-server/pkg/catalog"
	"github.com/0xh4ty/emacs-solidity-server/pkg/platform"
	"github.com/0xh4ty/emacs-solidity-server/pkg/toolchain"
)

// PruneCommand sweeps both cache tiers: exact pins past their retention
// window, and rolling-cache entries no longer in the latest-per-minor set of
// the locally cached manifest. It performs no network requests.
var PruneCommand = &cobra.Command{
	Use:   "prune",
	Short: "Remove stale compiler binaries from both cache tiers",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := toolchain.CleanUnusedExactVersions(settings.ExactCacheDir, settings.Retention()); err != nil {
			return err
		}

		manifestPath := filepath.Join(settings.CacheDir, toolchain.ManifestName)
		if _, err := os.Stat(manifestPath); os.IsNotExist(err) {
			log.Debug("no cached manifest, skipping rolling cache prune")
			return nil
		}

		cat, err := catalog.Load(manifestPath)
		if err != nil {
			return err
		}

		plat, err := platform.Detect()
		if err != nil {
			return err
		}

		m := toolchain.NewManager(settings.CacheDir, cat, toolchain.Options{
			Platform: plat,
			DistBase: settings.DistributionBase,
		})
		return m.CleanOldVersions(cat.LatestPerMinor())
	},
}
