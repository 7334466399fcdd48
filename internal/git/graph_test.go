package git_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gitlyerrors "gitly.dev/gitly/internal/errors"
	"gitly.dev/gitly/internal/git"
	"gitly.dev/gitly/testhelpers"
)

func openScene(t *testing.T, scene *testhelpers.Scene) *git.Repository {
	t.Helper()
	repo, err := git.Open(scene.Dir)
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func nodeByID(nodes []git.CommitGraphNode) map[string]git.CommitGraphNode {
	byID := make(map[string]git.CommitGraphNode, len(nodes))
	for _, n := range nodes {
		byID[n.ID] = n
	}
	return byID
}

func TestBuildCommitGraph(t *testing.T) {
	t.Run("empty repository yields an empty graph", func(t *testing.T) {
		scene := testhelpers.NewScene(t, nil)

		nodes, err := git.BuildCommitGraph(openScene(t, scene))
		require.NoError(t, err)
		require.NotNil(t, nodes)
		require.Empty(t, nodes)
	})

	t.Run("single branch at a root commit", func(t *testing.T) {
		scene := testhelpers.NewScene(t, nil)
		c1 := testhelpers.Must(scene.Repo.Commit("root"))

		nodes, err := git.BuildCommitGraph(openScene(t, scene))
		require.NoError(t, err)
		require.Len(t, nodes, 1)

		node := nodes[0]
		require.Equal(t, c1.String(), node.ID)
		require.Empty(t, node.Parents)
		require.Equal(t, []string{"main"}, node.Branches)
		require.Equal(t, "root", node.Message)
		require.Equal(t, "Test User", node.Author)
		require.Equal(t, testhelpers.BaseTime.Unix()+60, node.Time)
	})

	t.Run("two branches at the same commit share one node", func(t *testing.T) {
		scene := testhelpers.NewScene(t, nil)
		c1 := testhelpers.Must(scene.Repo.Commit("root"))
		require.NoError(t, scene.Repo.CreateBranch("feature"))

		nodes, err := git.BuildCommitGraph(openScene(t, scene))
		require.NoError(t, err)
		require.Len(t, nodes, 1)
		require.Equal(t, c1.String(), nodes[0].ID)
		require.ElementsMatch(t, []string{"main", "feature"}, nodes[0].Branches)
	})

	t.Run("diverged branches annotate only their tips", func(t *testing.T) {
		scene := testhelpers.NewScene(t, nil)
		c1 := testhelpers.Must(scene.Repo.Commit("c1"))
		c2 := testhelpers.Must(scene.Repo.Commit("c2"))
		require.NoError(t, scene.Repo.CreateBranchAt("feature", c1))
		require.NoError(t, scene.Repo.CheckoutBranch("feature"))
		c3 := testhelpers.Must(scene.Repo.Commit("c3"))

		nodes, err := git.BuildCommitGraph(openScene(t, scene))
		require.NoError(t, err)
		require.Len(t, nodes, 3)

		// c3 is the newest, then c2, then their common parent
		require.Equal(t, []string{c3.String(), c2.String(), c1.String()},
			[]string{nodes[0].ID, nodes[1].ID, nodes[2].ID})

		byID := nodeByID(nodes)
		require.Empty(t, byID[c1.String()].Branches)
		require.Equal(t, []string{"main"}, byID[c2.String()].Branches)
		require.Equal(t, []string{"feature"}, byID[c3.String()].Branches)
		require.Equal(t, []string{c1.String()}, byID[c2.String()].Parents)
		require.Equal(t, []string{c1.String()}, byID[c3.String()].Parents)
	})

	t.Run("merge commits keep parent order and shared history appears once", func(t *testing.T) {
		scene := testhelpers.NewScene(t, nil)
		base := testhelpers.Must(scene.Repo.Commit("base"))
		require.NoError(t, scene.Repo.CreateAndCheckoutBranch("feature"))
		f1 := testhelpers.Must(scene.Repo.Commit("f1"))
		f2 := testhelpers.Must(scene.Repo.Commit("f2"))
		require.NoError(t, scene.Repo.CheckoutBranch("main"))
		m1 := testhelpers.Must(scene.Repo.Commit("m1"))
		merge := testhelpers.Must(scene.Repo.CommitMerge("merge feature", m1, f2))

		nodes, err := git.BuildCommitGraph(openScene(t, scene))
		require.NoError(t, err)

		byID := nodeByID(nodes)
		require.Len(t, byID, len(nodes), "every commit must appear once")
		require.Len(t, nodes, 5)
		require.Equal(t, []string{m1.String(), f2.String()}, byID[merge.String()].Parents)
		require.Equal(t, []string{"main"}, byID[merge.String()].Branches)
		require.Equal(t, []string{"feature"}, byID[f2.String()].Branches)
		require.Empty(t, byID[f1.String()].Branches)
		require.Empty(t, byID[base.String()].Branches)
	})

	t.Run("remote branches are annotated and symbolic remote HEAD is skipped", func(t *testing.T) {
		scene := testhelpers.NewScene(t, nil)
		c1 := testhelpers.Must(scene.Repo.Commit("c1"))
		c2 := testhelpers.Must(scene.Repo.Commit("c2"))
		require.NoError(t, scene.Repo.SetRemoteBranch("origin", "main", c1))
		require.NoError(t, scene.Repo.SetRemoteHead("origin", "main"))

		nodes, err := git.BuildCommitGraph(openScene(t, scene))
		require.NoError(t, err)
		require.Len(t, nodes, 2)

		byID := nodeByID(nodes)
		require.Equal(t, []string{"origin/main"}, byID[c1.String()].Branches)
		require.Equal(t, []git.BranchInfo{{Name: "origin/main", IsRemote: true}}, byID[c1.String()].Refs)
		require.Equal(t, []git.BranchInfo{{Name: "main", IsRemote: false}}, byID[c2.String()].Refs)
	})

	t.Run("remote-only history is included", func(t *testing.T) {
		scene := testhelpers.NewScene(t, nil)
		c1 := testhelpers.Must(scene.Repo.Commit("c1"))
		require.NoError(t, scene.Repo.CreateAndCheckoutBranch("topic"))
		c2 := testhelpers.Must(scene.Repo.Commit("c2"))
		require.NoError(t, scene.Repo.SetRemoteBranch("upstream", "topic", c2))
		require.NoError(t, scene.Repo.CheckoutBranch("main"))
		require.NoError(t, openScene(t, scene).DeleteBranch("topic"))

		nodes, err := git.BuildCommitGraph(openScene(t, scene))
		require.NoError(t, err)

		byID := nodeByID(nodes)
		require.Contains(t, byID, c2.String())
		require.Equal(t, []string{"upstream/topic"}, byID[c2.String()].Branches)
		require.Equal(t, []string{"main"}, byID[c1.String()].Branches)
	})

	t.Run("same short name in both scopes is listed once with both refs", func(t *testing.T) {
		scene := testhelpers.NewScene(t, nil)
		c1 := testhelpers.Must(scene.Repo.Commit("c1"))
		require.NoError(t, scene.Repo.CreateBranchAt("origin/main", c1))
		require.NoError(t, scene.Repo.SetRemoteBranch("origin", "main", c1))

		nodes, err := git.BuildCommitGraph(openScene(t, scene))
		require.NoError(t, err)
		require.Len(t, nodes, 1)
		require.Equal(t, []string{"main", "origin/main"}, nodes[0].Branches)
		require.Equal(t, []git.BranchInfo{
			{Name: "main", IsRemote: false},
			{Name: "origin/main", IsRemote: false},
			{Name: "origin/main", IsRemote: true},
		}, nodes[0].Refs)
	})
}

func TestBuildCommitGraphProperties(t *testing.T) {
	scene := testhelpers.NewScene(t, nil)
	r := scene.Repo
	c1 := testhelpers.Must(r.Commit("c1"))
	require.NoError(t, r.CreateAndCheckoutBranch("a"))
	a1 := testhelpers.Must(r.Commit("a1"))
	a2 := testhelpers.Must(r.Commit("a2"))
	require.NoError(t, r.CreateAndCheckoutBranch("b"))
	b1 := testhelpers.Must(r.Commit("b1"))
	require.NoError(t, r.CheckoutBranch("main"))
	m1 := testhelpers.Must(r.CommitAt("m1 with an old timestamp", testhelpers.BaseTime.Add(-24*time.Hour)))
	merge := testhelpers.Must(r.CommitMerge("merge a", m1, a2))
	require.NoError(t, r.CreateBranchAt("tied", a1))
	require.NoError(t, r.SetRemoteBranch("origin", "b", b1))

	tips := map[string]plumbing.Hash{"main": merge, "a": a2, "b": b1, "tied": a1}
	repo := openScene(t, scene)

	first, err := git.BuildCommitGraph(repo)
	require.NoError(t, err)

	t.Run("result is exactly the reachable set without duplicates", func(t *testing.T) {
		want := testhelpers.Reachable(t, r, merge, a2, b1, a1, c1)
		got := make(map[string]bool)
		for _, n := range first {
			require.False(t, got[n.ID], "duplicate node %s", n.ID)
			got[n.ID] = true
		}
		require.Equal(t, want, got)
	})

	t.Run("nodes are ordered by time descending", func(t *testing.T) {
		for i := 1; i < len(first); i++ {
			require.GreaterOrEqual(t, first[i-1].Time, first[i].Time, "node %d out of order", i)
		}
		require.Equal(t, m1.String(), first[len(first)-1].ID, "backdated commit sorts last")
	})

	t.Run("branch annotations equal the tips exactly", func(t *testing.T) {
		want := make(map[string][]string)
		for name, hash := range tips {
			want[hash.String()] = append(want[hash.String()], name)
		}
		want[b1.String()] = append(want[b1.String()], "origin/b")

		for _, n := range first {
			if names, ok := want[n.ID]; ok {
				assert.ElementsMatch(t, names, n.Branches, "branches of %s", n.ID)
			} else {
				assert.Empty(t, n.Branches, "branches of %s", n.ID)
			}
		}
	})

	t.Run("building twice yields identical results", func(t *testing.T) {
		second, err := git.BuildCommitGraph(repo)
		require.NoError(t, err)
		require.Equal(t, first, second)
	})
}

// fakeStore is an in-memory GraphStore whose walker deliberately yields a
// commit once per seed that reaches it.
type fakeStore struct {
	branches   map[git.BranchScope][]git.BranchRef
	branchErrs map[git.BranchScope]error
	commits    map[plumbing.Hash]git.CommitInfo
	parents    map[plumbing.Hash][]plumbing.Hash
	lookupErrs map[plumbing.Hash]error
	lookups    int
}

func hashOf(n int) plumbing.Hash {
	return plumbing.NewHash(fmt.Sprintf("%040x", n))
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		branches:   make(map[git.BranchScope][]git.BranchRef),
		branchErrs: make(map[git.BranchScope]error),
		commits:    make(map[plumbing.Hash]git.CommitInfo),
		parents:    make(map[plumbing.Hash][]plumbing.Hash),
		lookupErrs: make(map[plumbing.Hash]error),
	}
}

func (f *fakeStore) addCommit(id plumbing.Hash, time int64, parents ...plumbing.Hash) {
	ps := []string{}
	for _, p := range parents {
		ps = append(ps, p.String())
	}
	f.commits[id] = git.CommitInfo{ID: id.String(), Message: "commit " + id.String()[36:], Time: time, Parents: ps}
	f.parents[id] = parents
}

func (f *fakeStore) addBranch(scope git.BranchScope, name string, target plumbing.Hash) {
	f.branches[scope] = append(f.branches[scope], git.BranchRef{Name: name, Scope: scope, Target: target})
}

func (f *fakeStore) BranchRefs(scope git.BranchScope) ([]git.BranchRef, error) {
	if err := f.branchErrs[scope]; err != nil {
		return nil, err
	}
	return f.branches[scope], nil
}

func (f *fakeStore) WalkAncestry(seeds []plumbing.Hash, fn func(plumbing.Hash) error) error {
	for _, seed := range seeds {
		visited := make(map[plumbing.Hash]bool)
		stack := []plumbing.Hash{seed}
		for len(stack) > 0 {
			id := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if visited[id] {
				continue
			}
			visited[id] = true
			if err := fn(id); err != nil {
				return err
			}
			stack = append(stack, f.parents[id]...)
		}
	}
	return nil
}

func (f *fakeStore) CommitRecord(id plumbing.Hash) (git.CommitInfo, error) {
	f.lookups++
	if err := f.lookupErrs[id]; err != nil {
		return git.CommitInfo{}, err
	}
	info, ok := f.commits[id]
	if !ok {
		return git.CommitInfo{}, errors.New("missing object")
	}
	return info, nil
}

func TestBuildCommitGraphWithFakeStore(t *testing.T) {
	newDiamond := func() *fakeStore {
		f := newFakeStore()
		f.addCommit(hashOf(1), 100)
		f.addCommit(hashOf(2), 200, hashOf(1))
		f.addCommit(hashOf(3), 300, hashOf(1))
		f.addBranch(git.BranchScopeLocal, "left", hashOf(2))
		f.addBranch(git.BranchScopeLocal, "right", hashOf(3))
		return f
	}

	t.Run("deduplicates commits the walker yields more than once", func(t *testing.T) {
		f := newDiamond()

		nodes, err := git.BuildCommitGraph(f)
		require.NoError(t, err)
		require.Len(t, nodes, 3)
		require.Equal(t, 3, f.lookups, "each commit is looked up once")
		require.Equal(t, []string{hashOf(3).String(), hashOf(2).String(), hashOf(1).String()},
			[]string{nodes[0].ID, nodes[1].ID, nodes[2].ID})
	})

	t.Run("ties in time are ordered by id", func(t *testing.T) {
		f := newFakeStore()
		f.addCommit(hashOf(9), 500)
		f.addCommit(hashOf(4), 500)
		f.addBranch(git.BranchScopeLocal, "x", hashOf(9))
		f.addBranch(git.BranchScopeLocal, "y", hashOf(4))

		nodes, err := git.BuildCommitGraph(f)
		require.NoError(t, err)
		require.Equal(t, []string{hashOf(4).String(), hashOf(9).String()}, []string{nodes[0].ID, nodes[1].ID})
	})

	t.Run("unresolved tips are skipped", func(t *testing.T) {
		f := newDiamond()
		f.addBranch(git.BranchScopeRemote, "origin/HEAD", plumbing.ZeroHash)

		nodes, err := git.BuildCommitGraph(f)
		require.NoError(t, err)
		require.Len(t, nodes, 3)
		for _, n := range nodes {
			require.NotContains(t, n.Branches, "origin/HEAD")
		}
	})

	t.Run("duplicate refs in one scope are annotated once", func(t *testing.T) {
		f := newDiamond()
		f.addBranch(git.BranchScopeLocal, "left", hashOf(2))

		nodes, err := git.BuildCommitGraph(f)
		require.NoError(t, err)
		require.Equal(t, []string{"left"}, nodeByID(nodes)[hashOf(2).String()].Branches)
	})

	t.Run("branch enumeration failure fails the build", func(t *testing.T) {
		f := newDiamond()
		f.branchErrs[git.BranchScopeRemote] = gitlyerrors.New(gitlyerrors.KindStoreError, "read packed-refs", errors.New("permission denied"))

		nodes, err := git.BuildCommitGraph(f)
		require.Error(t, err)
		require.Nil(t, nodes)
		require.Equal(t, gitlyerrors.KindStoreError, gitlyerrors.KindOf(err))
		require.Zero(t, f.lookups, "no commits are read after enumeration fails")
	})

	t.Run("commit lookup failure fails the build without a partial result", func(t *testing.T) {
		f := newDiamond()
		f.lookupErrs[hashOf(1)] = gitlyerrors.New(gitlyerrors.KindStoreError, "corrupt object", nil)

		nodes, err := git.BuildCommitGraph(f)
		require.Error(t, err)
		require.Nil(t, nodes)
		require.ErrorIs(t, err, gitlyerrors.ErrStore)
	})

	t.Run("untagged lookup failures are reported as store errors", func(t *testing.T) {
		f := newDiamond()
		delete(f.commits, hashOf(3))

		_, err := git.BuildCommitGraph(f)
		require.Error(t, err)
		require.Equal(t, gitlyerrors.KindStoreError, gitlyerrors.KindOf(err))
	})
}
