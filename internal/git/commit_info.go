package git

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	gitlyerrors "gitly.dev/gitly/internal/errors"
)

// CommitInfo is an immutable snapshot of a commit as sent to the GUI
type CommitInfo struct {
	ID      string   `json:"id"`
	Message string   `json:"message"`
	Author  string   `json:"author"`
	Time    int64    `json:"time"`
	Parents []string `json:"parents"`
}

// CommitRecord looks up a commit by id
func (r *Repository) CommitRecord(id plumbing.Hash) (CommitInfo, error) {
	commit, err := r.CommitObject(id)
	if err != nil {
		if errors.Is(err, plumbing.ErrObjectNotFound) {
			return CommitInfo{}, gitlyerrors.New(gitlyerrors.KindStoreError, fmt.Sprintf("commit %s not found", id), err)
		}
		return CommitInfo{}, storeError(fmt.Sprintf("read commit %s", id), err)
	}
	return newCommitInfo(commit), nil
}

func newCommitInfo(commit *object.Commit) CommitInfo {
	parents := make([]string, 0, len(commit.ParentHashes))
	for _, p := range commit.ParentHashes {
		parents = append(parents, p.String())
	}

	return CommitInfo{
		ID:      commit.Hash.String(),
		Message: Summary(commit.Message),
		Author:  commit.Author.Name,
		Time:    commit.Author.When.Unix(),
		Parents: parents,
	}
}

// Summary returns the first paragraph of a commit message with its lines
// joined by single spaces.
func Summary(message string) string {
	message = strings.ReplaceAll(message, "\r\n", "\n")
	message = strings.TrimLeft(message, " \t\n")
	if i := strings.Index(message, "\n\n"); i >= 0 {
		message = message[:i]
	}

	lines := strings.Split(message, "\n")
	parts := lines[:0]
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			parts = append(parts, line)
		}
	}
	return strings.Join(parts, " ")
}

// ShortID returns the abbreviated form of a commit id
func ShortID(id string) string {
	if len(id) > 7 {
		return id[:7]
	}
	return id
}
