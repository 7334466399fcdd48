package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"gitly.dev/gitly/internal/cli/helpers"
	"gitly.dev/gitly/internal/git"
	"gitly.dev/gitly/internal/output"
	"gitly.dev/gitly/internal/runtime"
)

// newLogCmd creates the log command
func newLogCmd() *cobra.Command {
	var (
		asJSON bool
		limit  int
	)

	cmd := &cobra.Command{
		Use:               "log [branch]",
		Short:             "Show the history of one branch, or of HEAD",
		Aliases:           []string{"l"},
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: helpers.CompleteBranches,
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit < 0 {
				return fmt.Errorf("--max-count must not be negative")
			}
			opts := git.ListCommitsOptions{Limit: limit}
			if len(args) == 1 {
				opts.Branch = &args[0]
			}

			return helpers.Run(cmd, func(ctx *runtime.Context) error {
				return git.WithRepository(helpers.RepoPath(cmd), func(r *git.Repository) error {
					commits, err := r.ListCommits(opts)
					if err != nil {
						return err
					}
					if asJSON {
						return output.WriteJSON(ctx.Out, commits)
					}
					return output.RenderLog(ctx.Out, ctx.Styles, commits)
				})
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print commits as JSON")
	cmd.Flags().IntVarP(&limit, "max-count", "n", 0, "Limit the number of commits (0 for all)")
	helpers.AddRepoFlag(cmd)
	return cmd
}
