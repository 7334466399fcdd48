package helpers

import (
	"errors"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"gitly.dev/gitly/internal/config"
	"gitly.dev/gitly/internal/runtime"
)

const (
	// ConfigFlag is the persistent flag selecting an explicit config file
	ConfigFlag = "config"
	// RepoFlag is the flag selecting the repository a command works on
	RepoFlag = "repo"
	// JSONFlag switches a command to machine-readable output
	JSONFlag = "json"
)

// ErrSilent is returned by commands that already reported their failure
var ErrSilent = errors.New("command failed")

// Run is a helper that provides a runtime context to a command's execution function
func Run(cmd *cobra.Command, fn func(ctx *runtime.Context) error) error {
	configFile, _ := cmd.Flags().GetString(ConfigFlag)
	cfg, err := config.Load(config.LoadOptions{ConfigFile: configFile})
	if err != nil {
		return err
	}

	ctx, err := runtime.NewContext(cfg, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer ctx.Close()

	// keep stdout parseable; messages still reach the log file
	if asJSON, err := cmd.Flags().GetBool(JSONFlag); err == nil && asJSON {
		ctx.Splog.SetQuiet(true)
	}
	ctx.Splog.FileLogger().Debug("command", "name", cmd.CommandPath())
	return fn(ctx)
}

// AddRepoFlag registers -C/--repo on cmd
func AddRepoFlag(cmd *cobra.Command) {
	cmd.Flags().StringP(RepoFlag, "C", ".", "Run as if gitly was started in this repository")
}

// RepoPath returns the value of -C, defaulting to the working directory
func RepoPath(cmd *cobra.Command) string {
	path, err := cmd.Flags().GetString(RepoFlag)
	if err != nil || path == "" {
		return "."
	}
	return path
}

// IsInteractive reports whether stdin is a terminal a prompt can use
func IsInteractive() bool {
	fd := os.Stdin.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
