package output

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
)

// Styles renders text for one output stream
type Styles struct {
	renderer *lipgloss.Renderer
}

// NewStyles returns styles for w. Color is disabled unless w is a terminal.
func NewStyles(w io.Writer) *Styles {
	r := lipgloss.NewRenderer(w)
	if !isTerminal(w) {
		r.SetColorProfile(termenv.Ascii)
	}
	return &Styles{renderer: r}
}

// PlainStyles returns styles that never emit escape sequences
func PlainStyles() *Styles {
	r := lipgloss.NewRenderer(io.Discard)
	r.SetColorProfile(termenv.Ascii)
	return &Styles{renderer: r}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// BranchName colors a local branch name; the current branch is marked
func (s *Styles) BranchName(name string, isCurrent bool) string {
	if isCurrent {
		return s.renderer.NewStyle().
			Foreground(lipgloss.Color("6")).
			Bold(true).
			Render(name + " (current)")
	}
	c := branchPalette[paletteIndex(name)]
	return s.renderer.NewStyle().
		Foreground(lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", c[0], c[1], c[2]))).
		Render(name)
}

// RemoteBranchName colors a remote-tracking branch name
func (s *Styles) RemoteBranchName(name string) string {
	return s.renderer.NewStyle().
		Foreground(lipgloss.Color("1")).
		Render(name)
}

// Hash colors an abbreviated commit id
func (s *Styles) Hash(id string) string {
	return s.renderer.NewStyle().
		Foreground(lipgloss.Color("3")).
		Render(id)
}

// Dim makes text dim/gray
func (s *Styles) Dim(text string) string {
	return s.renderer.NewStyle().
		Foreground(lipgloss.Color("8")).
		Render(text)
}
