package cli

import (
	"github.com/spf13/cobra"

	"gitly.dev/gitly/internal/cli/helpers"
	"gitly.dev/gitly/internal/git"
	"gitly.dev/gitly/internal/output"
	"gitly.dev/gitly/internal/runtime"
)

// newGraphCmd creates the graph command
func newGraphCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Show every commit reachable from any branch, newest first, with branch labels",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return helpers.Run(cmd, func(ctx *runtime.Context) error {
				return git.WithRepository(helpers.RepoPath(cmd), func(r *git.Repository) error {
					nodes, err := git.BuildCommitGraph(r)
					if err != nil {
						return err
					}
					if asJSON {
						return output.WriteJSON(ctx.Out, nodes)
					}
					current, _ := r.CurrentBranch()
					return output.RenderGraph(ctx.Out, ctx.Styles, nodes, current)
				})
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the graph as JSON")
	helpers.AddRepoFlag(cmd)
	return cmd
}
