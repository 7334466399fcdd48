package git

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	gitlyerrors "gitly.dev/gitly/internal/errors"
)

// Repository wraps a go-git repository
type Repository struct {
	*git.Repository
	path string
}

// Open opens the git repository containing path
func Open(path string) (*Repository, error) {
	// Resolve to absolute path
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, gitlyerrors.New(gitlyerrors.KindInvalidArgument, "resolve path", err)
	}

	repo, err := git.PlainOpenWithOptions(absPath, &git.PlainOpenOptions{
		DetectDotGit: true,
	})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return nil, gitlyerrors.New(gitlyerrors.KindRepositoryNotFound, fmt.Sprintf("not a git repository: %s", absPath), nil)
		}
		return nil, storeError("open repository", err)
	}

	root := absPath
	if wt, err := repo.Worktree(); err == nil {
		root = wt.Filesystem.Root()
	}

	return &Repository{
		Repository: repo,
		path:       root,
	}, nil
}

// NewRepository wraps an already opened go-git repository.
// Used for in-memory repositories where there is no path on disk.
func NewRepository(repo *git.Repository, path string) *Repository {
	return &Repository{Repository: repo, path: path}
}

// WithRepository opens the repository at path, runs fn and releases the
// handle on every exit path.
func WithRepository(path string, fn func(*Repository) error) (err error) {
	repo, err := Open(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := repo.Close(); cerr != nil && err == nil {
			err = storeError("close repository", cerr)
		}
	}()
	return fn(repo)
}

// IsRepository reports whether path is inside a git repository
func IsRepository(path string) bool {
	return WithRepository(path, func(*Repository) error { return nil }) == nil
}

// Init creates a new repository with a working tree at path
func Init(path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return gitlyerrors.New(gitlyerrors.KindInvalidArgument, "resolve path", err)
	}

	repo, err := git.PlainInit(absPath, false)
	if err != nil {
		if errors.Is(err, git.ErrRepositoryAlreadyExists) {
			return gitlyerrors.New(gitlyerrors.KindAlreadyExists, fmt.Sprintf("repository already exists at %s", absPath), nil)
		}
		return storeError("init repository", err)
	}
	return NewRepository(repo, absPath).Close()
}

// Path returns the root directory of the repository
func (r *Repository) Path() string {
	return r.path
}

// Close releases any file descriptors held by the object store
func (r *Repository) Close() error {
	if c, ok := r.Storer.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// storeError tags a go-git failure with the closest error kind
func storeError(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, plumbing.ErrReferenceNotFound):
		return gitlyerrors.New(gitlyerrors.KindReferenceNotFound, op, err)
	case gitlyerrors.KindOf(err) != gitlyerrors.KindStoreError:
		return err
	default:
		return gitlyerrors.New(gitlyerrors.KindStoreError, op, err)
	}
}
