package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"gitly.dev/gitly/internal/cli/helpers"
	"gitly.dev/gitly/internal/launcher"
	"gitly.dev/gitly/internal/runtime"
)

// newLaunchCmd creates the launch command
func newLaunchCmd() *cobra.Command {
	var guiPath string

	cmd := &cobra.Command{
		Use:   "launch",
		Short: "Start the Gitly desktop app without waiting for it",
		Long: `Start the Gitly desktop app without waiting for it.

The executable is looked up in order: --gui-path, the "path" config key
(or GITLY_PATH), then the platform's standard install location.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return launch(cmd, guiPath)
		},
	}
	cmd.Flags().StringVar(&guiPath, "gui-path", "", "Path to the Gitly desktop executable")
	return cmd
}

func launch(cmd *cobra.Command, guiPath string) error {
	return helpers.Run(cmd, func(ctx *runtime.Context) error {
		path, err := launcher.Resolve(launcher.Options{
			Override:   guiPath,
			Configured: ctx.Config.Path,
		})
		if err != nil {
			if errors.Is(err, launcher.ErrExecutableNotFound) {
				ctx.Splog.Tip("Point gitly at the app with --gui-path or the GITLY_PATH environment variable.")
			}
			return err
		}

		pid, err := launcher.Launch(path)
		if err != nil {
			return err
		}
		ctx.Splog.FileLogger().Info("launched", "path", path, "pid", pid)
		ctx.Splog.Info("Launched Gitly!")
		return nil
	})
}
