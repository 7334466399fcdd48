package git

import (
	"errors"
	"fmt"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"

	gitlyerrors "gitly.dev/gitly/internal/errors"
)

// ListCommitsOptions selects where a log starts and how long it runs
type ListCommitsOptions struct {
	// Branch is a local branch name; nil means HEAD.
	Branch *string
	// Limit caps the number of commits; 0 means no limit.
	Limit int
}

// ListCommits walks history from a single branch (or HEAD) in the walker's
// default order.
func (r *Repository) ListCommits(opts ListCommitsOptions) ([]CommitInfo, error) {
	start, err := r.resolveLogStart(opts.Branch)
	if err != nil {
		return nil, err
	}

	iter, err := r.Log(&git.LogOptions{From: start})
	if err != nil {
		return nil, storeError("walk history", err)
	}
	defer iter.Close()

	commits := []CommitInfo{}
	err = iter.ForEach(func(c *object.Commit) error {
		commits = append(commits, newCommitInfo(c))
		if opts.Limit > 0 && len(commits) >= opts.Limit {
			return storer.ErrStop
		}
		return nil
	})
	if err != nil {
		return nil, storeError("walk history", err)
	}

	return commits, nil
}

// resolveLogStart returns the commit a log starts from
func (r *Repository) resolveLogStart(branch *string) (plumbing.Hash, error) {
	var (
		ref *plumbing.Reference
		err error
	)

	if branch != nil {
		ref, err = r.Reference(plumbing.NewBranchReferenceName(*branch), true)
		if err != nil {
			if errors.Is(err, plumbing.ErrReferenceNotFound) {
				return plumbing.ZeroHash, gitlyerrors.NewBranchNotFoundError(*branch)
			}
			return plumbing.ZeroHash, storeError(fmt.Sprintf("resolve branch %s", *branch), err)
		}
	} else {
		ref, err = r.Head()
		if err != nil {
			if errors.Is(err, plumbing.ErrReferenceNotFound) {
				return plumbing.ZeroHash, gitlyerrors.New(gitlyerrors.KindInvalidReference, "HEAD has no commit", nil)
			}
			return plumbing.ZeroHash, storeError("resolve HEAD", err)
		}
	}

	if ref.Type() != plumbing.HashReference || ref.Hash().IsZero() {
		return plumbing.ZeroHash, gitlyerrors.New(gitlyerrors.KindInvalidReference, fmt.Sprintf("reference %s has no target", ref.Name()), nil)
	}
	return ref.Hash(), nil
}
