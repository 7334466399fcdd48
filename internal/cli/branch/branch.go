// Package branch provides the gitly branch subcommands.
package branch

import (
	"github.com/spf13/cobra"

	"gitly.dev/gitly/internal/cli/helpers"
	"gitly.dev/gitly/internal/git"
	"gitly.dev/gitly/internal/output"
	"gitly.dev/gitly/internal/runtime"
)

// NewBranchCmd creates the branch command and its subcommands
func NewBranchCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "branch",
		Short: "List, create, delete and switch branches",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return listBranches(cmd, asJSON)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print branches as JSON")
	helpers.AddRepoFlag(cmd)

	cmd.AddCommand(
		newListCmd(),
		newCurrentCmd(),
		NewCreateCmd(),
		NewDeleteCmd(),
		newCheckoutCmd(),
	)
	return cmd
}

func newListCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:     "list",
		Short:   "List local branches followed by remote-tracking branches",
		Aliases: []string{"ls"},
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return listBranches(cmd, asJSON)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print branches as JSON")
	helpers.AddRepoFlag(cmd)
	return cmd
}

func listBranches(cmd *cobra.Command, asJSON bool) error {
	return helpers.Run(cmd, func(ctx *runtime.Context) error {
		return git.WithRepository(helpers.RepoPath(cmd), func(r *git.Repository) error {
			branches, err := r.ListBranches()
			if err != nil {
				return err
			}
			if asJSON {
				return output.WriteJSON(ctx.Out, branches)
			}
			// a detached or unborn HEAD just means nothing is marked current
			current, _ := r.CurrentBranch()
			return output.RenderBranches(ctx.Out, ctx.Styles, branches, current)
		})
	})
}

func newCurrentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "current",
		Short: "Print the checked out branch",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return helpers.Run(cmd, func(ctx *runtime.Context) error {
				return git.WithRepository(helpers.RepoPath(cmd), func(r *git.Repository) error {
					name, err := r.CurrentBranch()
					if err != nil {
						return err
					}
					ctx.Splog.Info(name)
					return nil
				})
			})
		},
	}
	helpers.AddRepoFlag(cmd)
	return cmd
}

func newCheckoutCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:               "checkout <name>",
		Short:             "Switch the working tree to a local branch",
		Aliases:           []string{"co"},
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: helpers.CompleteBranches,
		RunE: func(cmd *cobra.Command, args []string) error {
			return helpers.Run(cmd, func(ctx *runtime.Context) error {
				err := git.WithRepository(helpers.RepoPath(cmd), func(r *git.Repository) error {
					return r.CheckoutBranch(args[0])
				})
				if err != nil {
					return err
				}
				ctx.Splog.Info("Switched to %s.", ctx.Styles.BranchName(args[0], true))
				return nil
			})
		},
	}
	helpers.AddRepoFlag(cmd)
	return cmd
}
