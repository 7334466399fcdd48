// Package cli implements the gitly command line.
package cli

import (
	"github.com/spf13/cobra"

	"gitly.dev/gitly/internal/cli/branch"
	"gitly.dev/gitly/internal/cli/helpers"
)

// NewRootCmd creates the root cobra command. Without a subcommand it launches the GUI.
func NewRootCmd(version, commit, date string) *cobra.Command {
	var guiPath string

	rootCmd := &cobra.Command{
		Use:   "gitly",
		Short: "Gitly is a desktop Git client; this tool launches it and serves its commands",
		Long: `Gitly is a desktop Git client.

Run without arguments to start the desktop app. The subcommands expose the
same repository operations the app uses, from the terminal or over a local
WebSocket bridge.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return launch(cmd, guiPath)
		},
	}
	rootCmd.PersistentFlags().String(helpers.ConfigFlag, "", "Config file (default ~/.gitly/config.yaml)")
	rootCmd.Flags().StringVar(&guiPath, "gui-path", "", "Path to the Gitly desktop executable")

	rootCmd.AddCommand(
		newLaunchCmd(),
		newServeCmd(),
		newInvokeCmd(),
		newGraphCmd(),
		newLogCmd(),
		branch.NewBranchCmd(),
		newInitCmd(),
		newRecentCmd(),
		newVersionCmd(version, commit, date),
	)

	return rootCmd
}
