// Package helpers provides shared helper functions for CLI commands.
package helpers

import (
	"github.com/spf13/cobra"

	"gitly.dev/gitly/internal/git"
)

// CompleteBranches is a helper for cobra.ValidArgsFunction and RegisterFlagCompletionFunc
// that returns the local branch names of the repository selected with -C.
func CompleteBranches(cmd *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	var names []string
	err := git.WithRepository(RepoPath(cmd), func(r *git.Repository) error {
		refs, err := r.BranchRefs(git.BranchScopeLocal)
		if err != nil {
			return err
		}
		for _, ref := range refs {
			names = append(names, ref.Name)
		}
		return nil
	})
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	return names, cobra.ShellCompDirectiveNoFileComp
}
