package commands

import (
	"context"
	"strings"

	gitlyerrors "gitly.dev/gitly/internal/errors"
	"gitly.dev/gitly/internal/git"
	"gitly.dev/gitly/internal/recent"
)

// RecentRepos is the recently opened repositories list
type RecentRepos interface {
	List() ([]recent.Entry, error)
	Add(path string) ([]recent.Entry, error)
	Remove(path string) ([]recent.Entry, error)
}

// Deps are the collaborators of the default command set
type Deps struct {
	Recent RecentRepos
}

// PathArgs carries the repository path every repository command needs
type PathArgs struct {
	Path string `json:"path"`
}

// BranchArgs names a branch inside a repository
type BranchArgs struct {
	Path   string `json:"path"`
	Branch string `json:"branch"`
}

// ListCommitsArgs selects the history list_commits returns
type ListCommitsArgs struct {
	Path   string  `json:"path"`
	Branch *string `json:"branch,omitempty"`
	Limit  int     `json:"limit,omitempty"`
}

// Default returns the registry the GUI talks to
func Default(deps Deps) *Registry {
	return NewRegistry(DefaultCommands(deps)...)
}

// DefaultCommands returns the command set of Default. The recent repository
// commands are only included when deps.Recent is set.
func DefaultCommands(deps Deps) []Command {
	cmds := []Command{
		Typed("is_git_repo", isGitRepo),
		Typed("init_git_repo", initGitRepo),
		Typed("list_branches", listBranches),
		Typed("get_current_branch", getCurrentBranch),
		Typed("list_commits", listCommits),
		Typed("list_all_commits_with_refs", listAllCommitsWithRefs),
		Typed("create_branch", createBranch),
		Typed("delete_branch", deleteBranch),
		Typed("checkout_branch", checkoutBranch),
	}
	if deps.Recent != nil {
		cmds = append(cmds, recentCommands(deps.Recent)...)
	}
	return cmds
}

func requirePath(path string) error {
	if strings.TrimSpace(path) == "" {
		return gitlyerrors.New(gitlyerrors.KindInvalidArgument, "path is required", nil)
	}
	return nil
}

func requireBranch(args BranchArgs) error {
	if err := requirePath(args.Path); err != nil {
		return err
	}
	if args.Branch == "" {
		return gitlyerrors.New(gitlyerrors.KindInvalidArgument, "branch is required", nil)
	}
	return nil
}

// withRepo opens the repository for the duration of fn
func withRepo[T any](path string, fn func(*git.Repository) (T, error)) (any, error) {
	if err := requirePath(path); err != nil {
		return nil, err
	}
	var result T
	err := git.WithRepository(path, func(repo *git.Repository) error {
		var err error
		result, err = fn(repo)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func isGitRepo(_ context.Context, args PathArgs) (any, error) {
	if err := requirePath(args.Path); err != nil {
		return nil, err
	}
	return git.IsRepository(args.Path), nil
}

func initGitRepo(_ context.Context, args PathArgs) (any, error) {
	if err := requirePath(args.Path); err != nil {
		return nil, err
	}
	return nil, git.Init(args.Path)
}

func listBranches(_ context.Context, args PathArgs) (any, error) {
	return withRepo(args.Path, func(r *git.Repository) ([]git.BranchInfo, error) {
		return r.ListBranches()
	})
}

func getCurrentBranch(_ context.Context, args PathArgs) (any, error) {
	return withRepo(args.Path, func(r *git.Repository) (string, error) {
		return r.CurrentBranch()
	})
}

func listCommits(_ context.Context, args ListCommitsArgs) (any, error) {
	if args.Limit < 0 {
		return nil, gitlyerrors.Newf(gitlyerrors.KindInvalidArgument, "limit must not be negative, got %d", args.Limit)
	}
	return withRepo(args.Path, func(r *git.Repository) ([]git.CommitInfo, error) {
		return r.ListCommits(git.ListCommitsOptions{Branch: args.Branch, Limit: args.Limit})
	})
}

func listAllCommitsWithRefs(_ context.Context, args PathArgs) (any, error) {
	return withRepo(args.Path, func(r *git.Repository) ([]git.CommitGraphNode, error) {
		return git.BuildCommitGraph(r)
	})
}

func createBranch(_ context.Context, args BranchArgs) (any, error) {
	return branchOp(args, (*git.Repository).CreateBranch)
}

func deleteBranch(_ context.Context, args BranchArgs) (any, error) {
	return branchOp(args, (*git.Repository).DeleteBranch)
}

func checkoutBranch(_ context.Context, args BranchArgs) (any, error) {
	return branchOp(args, (*git.Repository).CheckoutBranch)
}

func branchOp(args BranchArgs, op func(*git.Repository, string) error) (any, error) {
	if err := requireBranch(args); err != nil {
		return nil, err
	}
	err := git.WithRepository(args.Path, func(r *git.Repository) error {
		return op(r, args.Branch)
	})
	return nil, err
}

func recentCommands(store RecentRepos) []Command {
	return []Command{
		Typed("list_recent_repos", func(context.Context, struct{}) (any, error) {
			return store.List()
		}),
		Typed("remember_repo", func(_ context.Context, args PathArgs) (any, error) {
			root, err := withRepo(args.Path, func(r *git.Repository) (string, error) {
				return r.Path(), nil
			})
			if err != nil {
				return nil, err
			}
			return store.Add(root.(string))
		}),
		Typed("forget_repo", func(_ context.Context, args PathArgs) (any, error) {
			if err := requirePath(args.Path); err != nil {
				return nil, err
			}
			return store.Remove(args.Path)
		}),
	}
}
