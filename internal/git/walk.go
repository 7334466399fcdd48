package git

import (
	"fmt"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// WalkAncestry visits every commit reachable from seeds, following parent
// links. A commit is passed to fn at most once across all seeds. Returning an
// error from fn stops the walk and returns that error.
func (r *Repository) WalkAncestry(seeds []plumbing.Hash, fn func(plumbing.Hash) error) error {
	visited := make(map[plumbing.Hash]bool)

	for _, seed := range seeds {
		if visited[seed] {
			continue
		}

		start, err := r.CommitObject(seed)
		if err != nil {
			return storeError(fmt.Sprintf("read commit %s", seed), err)
		}

		// visited is consulted by the iterator before descending, so history
		// shared with an earlier seed is pruned rather than re-walked
		iter := object.NewCommitPreorderIter(start, visited, nil)
		err = iter.ForEach(func(c *object.Commit) error {
			visited[c.Hash] = true
			return fn(c.Hash)
		})
		if err != nil {
			return storeError("walk ancestry", err)
		}
	}

	return nil
}
