package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/0xh4ty/emacs-solidity-server/pkg/platform"
	"github.com/0xh4ty/emacs-solidity-server/pkg/resolve"
)

// ResolveCommand resolves a source file's version pragma to a compiler
// binary and prints the path. Exactly what the request handler does per
// compile, minus the protocol front end.
var ResolveCommand = &cobra.Command{
	Use:   "resolve <source-file>",
	Short: "Resolve a source file's pragma to a local compiler binary",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		plat, err := platform.Detect()
		if err != nil {
			return err
		}

		resolver := &resolve.Resolver{
			RollingDir: settings.CacheDir,
			ExactDir:   settings.ExactCacheDir,
			Platform:   plat,
			DistBase:   settings.DistributionBase,
			Retry:      settings.Retry(),
		}

		path, err := resolver.Resolve(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}
