// Package testhelpers provides testing utilities for gitly,
// including a scene system, Git repository helpers, and custom assertions.
package testhelpers

import (
	"sort"
	"testing"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/stretchr/testify/require"
)

// Must is a generic helper function that panics if err is not nil,
// otherwise returns the value. This is useful for test setup code
// where errors are not expected and should halt execution immediately.
func Must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}

// ExpectBranches asserts that the repository has exactly the expected local branches.
func ExpectBranches(t *testing.T, repo *GitRepo, expected []string) {
	t.Helper()

	iter, err := repo.Repo.Branches()
	require.NoError(t, err, "Failed to list branches")

	branches := []string{}
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		branches = append(branches, ref.Name().Short())
		return nil
	})
	require.NoError(t, err, "Failed to iterate branches")

	sort.Strings(branches)
	sortedExpected := append([]string(nil), expected...)
	sort.Strings(sortedExpected)

	require.Equal(t, sortedExpected, branches, "Branch mismatch")
}

// Reachable returns every commit id reachable from the given tips by a plain
// breadth-first walk over parent links. Tests compare it against the graph
// builder's output.
func Reachable(t *testing.T, repo *GitRepo, tips ...plumbing.Hash) map[string]bool {
	t.Helper()

	reachable := make(map[string]bool)
	queue := append([]plumbing.Hash(nil), tips...)
	for len(queue) > 0 {
		hash := queue[0]
		queue = queue[1:]
		if reachable[hash.String()] {
			continue
		}
		reachable[hash.String()] = true

		commit, err := repo.Repo.CommitObject(hash)
		require.NoError(t, err, "Failed to read commit %s", hash)
		queue = append(queue, commit.ParentHashes...)
	}
	return reachable
}
