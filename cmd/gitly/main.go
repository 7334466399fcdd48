package main

import (
	"errors"
	"os"

	"gitly.dev/gitly/internal/cli"
	"gitly.dev/gitly/internal/cli/helpers"
	"gitly.dev/gitly/internal/output"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := cli.NewRootCmd(version, commit, date)
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, helpers.ErrSilent) {
			output.NewSplog(os.Stderr).Error("%v", err)
		}
		os.Exit(1)
	}
}
