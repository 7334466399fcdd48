package branch

import (
	"github.com/spf13/cobra"

	"gitly.dev/gitly/internal/cli/helpers"
	"gitly.dev/gitly/internal/git"
	"gitly.dev/gitly/internal/runtime"
)

// NewCreateCmd creates the create command
func NewCreateCmd() *cobra.Command {
	var checkout bool

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a branch at the current commit",
		Long: `Create a local branch pointing at the commit HEAD is on.

HEAD stays where it is unless --checkout is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			return helpers.Run(cmd, func(ctx *runtime.Context) error {
				err := git.WithRepository(helpers.RepoPath(cmd), func(r *git.Repository) error {
					if err := r.CreateBranch(name); err != nil {
						return err
					}
					if checkout {
						return r.CheckoutBranch(name)
					}
					return nil
				})
				if err != nil {
					return err
				}
				ctx.Splog.Info("Created branch %s.", ctx.Styles.BranchName(name, checkout))
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&checkout, "checkout", "c", false, "Switch to the new branch")
	helpers.AddRepoFlag(cmd)
	return cmd
}
