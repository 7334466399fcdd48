package git

import (
	"sort"

	"github.com/go-git/go-git/v5/plumbing"

	gitlyerrors "gitly.dev/gitly/internal/errors"
)

// GraphStore is the part of a repository the commit graph builder reads from.
// *Repository implements it.
type GraphStore interface {
	BranchRefs(scope BranchScope) ([]BranchRef, error)
	WalkAncestry(seeds []plumbing.Hash, fn func(plumbing.Hash) error) error
	CommitRecord(id plumbing.Hash) (CommitInfo, error)
}

// CommitGraphNode is a commit annotated with the branches whose tip it is
type CommitGraphNode struct {
	CommitInfo
	// Branches holds each branch name pointing exactly at this commit, sorted.
	Branches []string `json:"branches"`
	// Refs holds the same tips with their scope, local before remote.
	Refs []BranchInfo `json:"refs"`
}

// BuildCommitGraph returns every commit reachable from any local or remote
// branch tip, once each, annotated with the branches pointing at it and
// ordered by time, most recent first.
func BuildCommitGraph(store GraphStore) ([]CommitGraphNode, error) {
	var refs []BranchRef
	for _, scope := range []BranchScope{BranchScopeLocal, BranchScopeRemote} {
		branches, err := store.BranchRefs(scope)
		if err != nil {
			return nil, gitlyerrors.New(gitlyerrors.KindOf(err), "build commit graph", err)
		}
		for _, b := range branches {
			// symbolic refs such as origin/HEAD have no tip of their own
			if b.Target.IsZero() {
				continue
			}
			refs = append(refs, b)
		}
	}

	tips := make(map[plumbing.Hash][]BranchRef)
	var seeds []plumbing.Hash
	for _, ref := range refs {
		if _, ok := tips[ref.Target]; !ok {
			seeds = append(seeds, ref.Target)
		}
		tips[ref.Target] = appendBranchRef(tips[ref.Target], ref)
	}

	seen := make(map[plumbing.Hash]struct{})
	nodes := []CommitGraphNode{}
	err := store.WalkAncestry(seeds, func(id plumbing.Hash) error {
		if _, ok := seen[id]; ok {
			return nil
		}
		seen[id] = struct{}{}

		info, err := store.CommitRecord(id)
		if err != nil {
			return err
		}
		nodes = append(nodes, newGraphNode(info, tips[id]))
		return nil
	})
	if err != nil {
		return nil, gitlyerrors.New(gitlyerrors.KindOf(err), "build commit graph", err)
	}

	sort.SliceStable(nodes, func(i, j int) bool {
		if nodes[i].Time != nodes[j].Time {
			return nodes[i].Time > nodes[j].Time
		}
		return nodes[i].ID < nodes[j].ID
	})
	return nodes, nil
}

// appendBranchRef adds ref unless the same (scope, name) is already present
func appendBranchRef(refs []BranchRef, ref BranchRef) []BranchRef {
	for _, r := range refs {
		if r.Scope == ref.Scope && r.Name == ref.Name {
			return refs
		}
	}
	return append(refs, ref)
}

func newGraphNode(info CommitInfo, tips []BranchRef) CommitGraphNode {
	node := CommitGraphNode{
		CommitInfo: info,
		Branches:   []string{},
		Refs:       []BranchInfo{},
	}

	names := make(map[string]struct{}, len(tips))
	for _, ref := range tips {
		node.Refs = append(node.Refs, ref.Info())
		if _, ok := names[ref.Name]; !ok {
			names[ref.Name] = struct{}{}
			node.Branches = append(node.Branches, ref.Name)
		}
	}

	sort.Strings(node.Branches)
	sort.SliceStable(node.Refs, func(i, j int) bool {
		if node.Refs[i].IsRemote != node.Refs[j].IsRemote {
			return !node.Refs[i].IsRemote
		}
		return node.Refs[i].Name < node.Refs[j].Name
	})
	return node
}
