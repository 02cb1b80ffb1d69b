package main

import (
	"os"

	"github.com/0xh4ty/emacs-solidity-server/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
