package cli

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"gitly.dev/gitly/internal/cli/helpers"
	"gitly.dev/gitly/internal/git"
	"gitly.dev/gitly/internal/runtime"
)

// newInitCmd creates the init command
func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Create an empty repository and remember it",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "."
			if len(args) == 1 {
				path = args[0]
			}

			return helpers.Run(cmd, func(ctx *runtime.Context) error {
				if err := git.Init(path); err != nil {
					return err
				}
				abs, err := filepath.Abs(path)
				if err != nil {
					return err
				}
				if _, err := ctx.Recent.Add(abs); err != nil {
					ctx.Splog.Warn("Could not remember %s: %v", abs, err)
				}
				ctx.Splog.Info("Initialized empty repository in %s", abs)
				return nil
			})
		},
	}
	return cmd
}
