package testhelpers

import (
	"fmt"
	"time"

	"github.com/go-git/go-billy/v5/memfs"
	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/cache"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/storage/filesystem"
)

// BaseTime is the author time of the first commit made through a GitRepo.
// Every following commit is one minute later unless an explicit time is given.
var BaseTime = time.Date(2024, time.January, 1, 12, 0, 0, 0, time.UTC)

// GitRepo is a repository built commit by commit for tests.
// Commits get deterministic signatures so ordering assertions are stable.
type GitRepo struct {
	Dir  string
	Repo *gogit.Repository

	clock   time.Time
	changes int
}

// NewGitRepo initializes a repository with a working tree in dir whose HEAD
// points at the unborn branch main.
func NewGitRepo(dir string) (*GitRepo, error) {
	repo, err := gogit.PlainInit(dir, false)
	if err != nil {
		return nil, fmt.Errorf("failed to init repo: %w", err)
	}
	r := &GitRepo{Dir: dir, Repo: repo, clock: BaseTime}
	if err := r.pointHeadAtMain(); err != nil {
		return nil, err
	}
	return r, nil
}

// NewMemoryGitRepo initializes a repository whose object store and working
// tree both live in memory.
func NewMemoryGitRepo() (*GitRepo, error) {
	storer := filesystem.NewStorage(memfs.New(), cache.NewObjectLRUDefault())
	repo, err := gogit.Init(storer, memfs.New())
	if err != nil {
		return nil, fmt.Errorf("failed to init in-memory repo: %w", err)
	}
	r := &GitRepo{Repo: repo, clock: BaseTime}
	if err := r.pointHeadAtMain(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *GitRepo) pointHeadAtMain() error {
	head := plumbing.NewSymbolicReference(plumbing.HEAD, plumbing.NewBranchReferenceName("main"))
	if err := r.Repo.Storer.SetReference(head); err != nil {
		return fmt.Errorf("failed to point HEAD at main: %w", err)
	}
	return nil
}

func signature(when time.Time) *object.Signature {
	return &object.Signature{Name: "Test User", Email: "test@example.com", When: when}
}

// Commit records a change on the current branch one minute after the previous commit
func (r *GitRepo) Commit(message string) (plumbing.Hash, error) {
	r.clock = r.clock.Add(time.Minute)
	return r.CommitAt(message, r.clock)
}

// CommitAt records a change on the current branch with the given author time
func (r *GitRepo) CommitAt(message string, when time.Time) (plumbing.Hash, error) {
	return r.commit(message, when, nil)
}

// CommitMerge records a commit with explicit parents on the current branch
func (r *GitRepo) CommitMerge(message string, parents ...plumbing.Hash) (plumbing.Hash, error) {
	r.clock = r.clock.Add(time.Minute)
	return r.commit(message, r.clock, parents)
}

func (r *GitRepo) commit(message string, when time.Time, parents []plumbing.Hash) (plumbing.Hash, error) {
	wt, err := r.Repo.Worktree()
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("failed to get worktree: %w", err)
	}

	r.changes++
	fileName := fmt.Sprintf("change_%d.txt", r.changes)
	f, err := wt.Filesystem.Create(fileName)
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("failed to create file: %w", err)
	}
	if _, err := f.Write([]byte(message + "\n")); err != nil {
		_ = f.Close()
		return plumbing.ZeroHash, fmt.Errorf("failed to write file: %w", err)
	}
	if err := f.Close(); err != nil {
		return plumbing.ZeroHash, fmt.Errorf("failed to close file: %w", err)
	}

	if _, err := wt.Add(fileName); err != nil {
		return plumbing.ZeroHash, fmt.Errorf("failed to stage file: %w", err)
	}

	hash, err := wt.Commit(message, &gogit.CommitOptions{
		Author:    signature(when),
		Committer: signature(when),
		Parents:   parents,
	})
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("failed to commit: %w", err)
	}
	return hash, nil
}

// CreateBranch creates a branch at HEAD without checking it out
func (r *GitRepo) CreateBranch(name string) error {
	head, err := r.Repo.Head()
	if err != nil {
		return fmt.Errorf("failed to resolve HEAD: %w", err)
	}
	return r.CreateBranchAt(name, head.Hash())
}

// CreateBranchAt creates or moves a local branch to point at hash
func (r *GitRepo) CreateBranchAt(name string, hash plumbing.Hash) error {
	ref := plumbing.NewHashReference(plumbing.NewBranchReferenceName(name), hash)
	if err := r.Repo.Storer.SetReference(ref); err != nil {
		return fmt.Errorf("failed to create branch %s: %w", name, err)
	}
	return nil
}

// CreateAndCheckoutBranch creates a branch at HEAD and checks it out
func (r *GitRepo) CreateAndCheckoutBranch(name string) error {
	if err := r.CreateBranch(name); err != nil {
		return err
	}
	return r.CheckoutBranch(name)
}

// CheckoutBranch checks out an existing local branch
func (r *GitRepo) CheckoutBranch(name string) error {
	wt, err := r.Repo.Worktree()
	if err != nil {
		return fmt.Errorf("failed to get worktree: %w", err)
	}
	if err := wt.Checkout(&gogit.CheckoutOptions{Branch: plumbing.NewBranchReferenceName(name)}); err != nil {
		return fmt.Errorf("failed to checkout %s: %w", name, err)
	}
	return nil
}

// CheckoutDetached points HEAD directly at a commit
func (r *GitRepo) CheckoutDetached(hash plumbing.Hash) error {
	wt, err := r.Repo.Worktree()
	if err != nil {
		return fmt.Errorf("failed to get worktree: %w", err)
	}
	if err := wt.Checkout(&gogit.CheckoutOptions{Hash: hash}); err != nil {
		return fmt.Errorf("failed to checkout %s: %w", hash, err)
	}
	return nil
}

// SetRemoteBranch creates a remote-tracking branch refs/remotes/<remote>/<name>
func (r *GitRepo) SetRemoteBranch(remote, name string, hash plumbing.Hash) error {
	ref := plumbing.NewHashReference(plumbing.NewRemoteReferenceName(remote, name), hash)
	if err := r.Repo.Storer.SetReference(ref); err != nil {
		return fmt.Errorf("failed to create remote branch %s/%s: %w", remote, name, err)
	}
	return nil
}

// SetRemoteHead creates the symbolic refs/remotes/<remote>/HEAD pointing at a remote branch
func (r *GitRepo) SetRemoteHead(remote, name string) error {
	ref := plumbing.NewSymbolicReference(
		plumbing.NewRemoteHEADReferenceName(remote),
		plumbing.NewRemoteReferenceName(remote, name),
	)
	if err := r.Repo.Storer.SetReference(ref); err != nil {
		return fmt.Errorf("failed to create %s/HEAD: %w", remote, err)
	}
	return nil
}

// Head returns the commit HEAD resolves to
func (r *GitRepo) Head() (plumbing.Hash, error) {
	head, err := r.Repo.Head()
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("failed to resolve HEAD: %w", err)
	}
	return head.Hash(), nil
}
