package git

import (
	"errors"
	"fmt"
	"sort"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	gitlyerrors "gitly.dev/gitly/internal/errors"
)

// BranchScope separates local branches from remote-tracking branches
type BranchScope string

const (
	BranchScopeLocal  BranchScope = "local"
	BranchScopeRemote BranchScope = "remote"
)

// BranchRef is a branch name with the commit its tip points to.
// Target is zero when the reference is symbolic (origin/HEAD) and has no direct tip.
type BranchRef struct {
	Name   string
	Scope  BranchScope
	Target plumbing.Hash
}

// BranchInfo is the serialized form of a branch
type BranchInfo struct {
	Name     string `json:"name"`
	IsRemote bool   `json:"is_remote"`
}

// Info returns the serialized form of the reference
func (b BranchRef) Info() BranchInfo {
	return BranchInfo{Name: b.Name, IsRemote: b.Scope == BranchScopeRemote}
}

// BranchRefs returns all branches of the given scope sorted by name
func (r *Repository) BranchRefs(scope BranchScope) ([]BranchRef, error) {
	iter, err := r.References()
	if err != nil {
		return nil, storeError(fmt.Sprintf("list %s branches", scope), err)
	}

	var refs []BranchRef
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		name := ref.Name()
		switch {
		case scope == BranchScopeLocal && name.IsBranch():
		case scope == BranchScopeRemote && name.IsRemote():
		default:
			return nil
		}

		branch := BranchRef{Name: name.Short(), Scope: scope}
		if ref.Type() == plumbing.HashReference {
			branch.Target = ref.Hash()
		}
		refs = append(refs, branch)
		return nil
	})
	if err != nil {
		return nil, storeError(fmt.Sprintf("iterate %s branches", scope), err)
	}

	sort.Slice(refs, func(i, j int) bool { return refs[i].Name < refs[j].Name })
	return refs, nil
}

// ListBranches returns all local branches followed by all remote-tracking branches
func (r *Repository) ListBranches() ([]BranchInfo, error) {
	branches := []BranchInfo{}
	for _, scope := range []BranchScope{BranchScopeLocal, BranchScopeRemote} {
		refs, err := r.BranchRefs(scope)
		if err != nil {
			return nil, err
		}
		for _, ref := range refs {
			branches = append(branches, ref.Info())
		}
	}
	return branches, nil
}

// CurrentBranch returns the name of the checked out branch
func (r *Repository) CurrentBranch() (string, error) {
	head, err := r.Head()
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return "", gitlyerrors.New(gitlyerrors.KindNotOnABranch, "HEAD is unborn", nil)
		}
		return "", storeError("get HEAD", err)
	}

	if !head.Name().IsBranch() {
		return "", gitlyerrors.New(gitlyerrors.KindNotOnABranch, "HEAD is not on a branch", nil)
	}

	return head.Name().Short(), nil
}

// CreateBranch creates a local branch at the commit HEAD points to.
// HEAD is not moved.
func (r *Repository) CreateBranch(name string) error {
	if err := validateBranchName(name); err != nil {
		return err
	}

	head, err := r.Head()
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return gitlyerrors.New(gitlyerrors.KindInvalidReference, "HEAD has no commit to branch from", nil)
		}
		return storeError("get HEAD", err)
	}

	refName := plumbing.NewBranchReferenceName(name)
	if _, err := r.Reference(refName, false); err == nil {
		return gitlyerrors.New(gitlyerrors.KindAlreadyExists, fmt.Sprintf("branch %s already exists", name), nil)
	} else if !errors.Is(err, plumbing.ErrReferenceNotFound) {
		return storeError(fmt.Sprintf("look up branch %s", name), err)
	}

	if err := r.Storer.SetReference(plumbing.NewHashReference(refName, head.Hash())); err != nil {
		return storeError(fmt.Sprintf("create branch %s", name), err)
	}
	return nil
}

// DeleteBranch deletes a local branch and its tracking config.
// The currently checked out branch cannot be deleted.
func (r *Repository) DeleteBranch(name string) error {
	refName := plumbing.NewBranchReferenceName(name)
	if _, err := r.Reference(refName, false); err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return gitlyerrors.NewBranchNotFoundError(name)
		}
		return storeError(fmt.Sprintf("look up branch %s", name), err)
	}

	if head, err := r.Storer.Reference(plumbing.HEAD); err == nil {
		if head.Type() == plumbing.SymbolicReference && head.Target() == refName {
			return gitlyerrors.New(gitlyerrors.KindInvalidOperation, fmt.Sprintf("cannot delete branch %s: it is checked out", name), nil)
		}
	}

	if err := r.Storer.RemoveReference(refName); err != nil {
		return storeError(fmt.Sprintf("delete branch %s", name), err)
	}

	// Tracking config may not exist for branches that never had an upstream
	if err := r.Repository.DeleteBranch(name); err != nil && !errors.Is(err, git.ErrBranchNotFound) {
		return storeError(fmt.Sprintf("delete config for branch %s", name), err)
	}
	return nil
}

// CheckoutBranch updates the working tree to a local branch and points HEAD at it
func (r *Repository) CheckoutBranch(name string) error {
	refName := plumbing.NewBranchReferenceName(name)
	ref, err := r.Reference(refName, true)
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return gitlyerrors.NewBranchNotFoundError(name)
		}
		return storeError(fmt.Sprintf("look up branch %s", name), err)
	}
	if ref.Hash().IsZero() {
		return gitlyerrors.New(gitlyerrors.KindInvalidReference, fmt.Sprintf("branch %s has no commit", name), nil)
	}

	wt, err := r.Worktree()
	if err != nil {
		return storeError("get worktree", err)
	}
	if err := wt.Checkout(&git.CheckoutOptions{Branch: refName}); err != nil {
		return storeError(fmt.Sprintf("checkout branch %s", name), err)
	}
	return nil
}

// validateBranchName rejects names git itself would refuse for a ref
func validateBranchName(name string) error {
	// refs/heads/HEAD is a legal ref but makes HEAD ambiguous
	if name == "HEAD" {
		return gitlyerrors.New(gitlyerrors.KindInvalidArgument, "invalid branch name \"HEAD\": reserved", nil)
	}
	if err := plumbing.NewBranchReferenceName(name).Validate(); err != nil {
		if errors.Is(err, plumbing.ErrInvalidReferenceName) {
			return gitlyerrors.New(gitlyerrors.KindInvalidArgument, fmt.Sprintf("invalid branch name %q", name), err)
		}
		return storeError(fmt.Sprintf("validate branch name %q", name), err)
	}
	return nil
}
