package branch

import (
	"fmt"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"gitly.dev/gitly/internal/cli/helpers"
	"gitly.dev/gitly/internal/git"
	"gitly.dev/gitly/internal/runtime"
)

// NewDeleteCmd creates the delete command
func NewDeleteCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a local branch (local-only)",
		Long: `Delete a local branch and its tracking configuration.

The checked out branch cannot be deleted. When run from a terminal, asks for
confirmation unless --yes is given. Remote branches are never touched.`,
		Aliases:           []string{"rm"},
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: helpers.CompleteBranches,
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			return helpers.Run(cmd, func(ctx *runtime.Context) error {
				if !yes && helpers.IsInteractive() {
					confirmed := false
					prompt := &survey.Confirm{
						Message: fmt.Sprintf("Delete branch %s?", name),
						Default: false,
					}
					if err := survey.AskOne(prompt, &confirmed); err != nil {
						return err
					}
					if !confirmed {
						ctx.Splog.Info("Aborted.")
						return nil
					}
				}

				err := git.WithRepository(helpers.RepoPath(cmd), func(r *git.Repository) error {
					return r.DeleteBranch(name)
				})
				if err != nil {
					return err
				}
				ctx.Splog.Info("Deleted branch %s.", ctx.Styles.BranchName(name, false))
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	helpers.AddRepoFlag(cmd)
	return cmd
}
