package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"gitly.dev/gitly/internal/git"
)

const timeLayout = "2006-01-02 15:04"

// WriteJSON writes v as indented JSON followed by a newline
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	return nil
}

// RenderGraph writes one line per node: marker, short id, branch labels,
// message, author and time. current is the checked out branch, if any.
func RenderGraph(w io.Writer, s *Styles, nodes []git.CommitGraphNode, current string) error {
	for _, node := range nodes {
		marker := "◯"
		labels := make([]string, 0, len(node.Refs))
		for _, ref := range node.Refs {
			if ref.IsRemote {
				labels = append(labels, s.RemoteBranchName(ref.Name))
				continue
			}
			if ref.Name == current {
				marker = "◉"
			}
			labels = append(labels, s.BranchName(ref.Name, ref.Name == current))
		}

		line := marker + " " + s.Hash(git.ShortID(node.ID))
		if len(labels) > 0 {
			line += " (" + strings.Join(labels, ", ") + ")"
		}
		line += " " + node.Message + " " + s.Dim(byline(node.CommitInfo))
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderLog writes one line per commit in walk order
func RenderLog(w io.Writer, s *Styles, commits []git.CommitInfo) error {
	for _, c := range commits {
		if _, err := fmt.Fprintf(w, "%s %s %s\n", s.Hash(git.ShortID(c.ID)), c.Message, s.Dim(byline(c))); err != nil {
			return err
		}
	}
	return nil
}

// RenderBranches writes local branches then remote-tracking branches
func RenderBranches(w io.Writer, s *Styles, branches []git.BranchInfo, current string) error {
	for _, b := range branches {
		name := s.RemoteBranchName(b.Name)
		if !b.IsRemote {
			name = s.BranchName(b.Name, b.Name == current)
		}
		if _, err := fmt.Fprintln(w, name); err != nil {
			return err
		}
	}
	return nil
}

func byline(c git.CommitInfo) string {
	return fmt.Sprintf("%s, %s", c.Author, time.Unix(c.Time, 0).UTC().Format(timeLayout))
}
