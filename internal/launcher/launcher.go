// Package launcher finds the Gitly desktop executable and starts it.
package launcher

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// ErrExecutableNotFound is returned when no candidate path holds the GUI
var ErrExecutableNotFound = errors.New("gitly executable not found")

// NotFoundError lists every path that was tried
type NotFoundError struct {
	Candidates []string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%v (tried %s); set GITLY_PATH or install it to the standard location for your OS",
		ErrExecutableNotFound, strings.Join(e.Candidates, ", "))
}

// Is returns true if the target error is ErrExecutableNotFound
func (e *NotFoundError) Is(target error) bool {
	return target == ErrExecutableNotFound
}

// Options are the sources of candidate paths, highest priority first
type Options struct {
	// Override is an explicit path, from --gui-path.
	Override string
	// Configured is the path from config or GITLY_PATH.
	Configured string
	// Default replaces the platform default; used by tests.
	Default string
	// Self is the running executable, never launched; empty means os.Executable.
	Self string
}

// DefaultPath is where the GUI is installed on this platform
func DefaultPath() string {
	return defaultPath
}

// Candidates returns the paths to try in order, without blanks or duplicates
func Candidates(opts Options) []string {
	def := opts.Default
	if def == "" {
		def = defaultPath
	}

	var out []string
	seen := make(map[string]bool)
	for _, p := range []string{opts.Override, opts.Configured, def} {
		p = strings.TrimSpace(p)
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}

// Resolve returns the first candidate that is an existing regular file and
// not the running executable.
func Resolve(opts Options) (string, error) {
	self := opts.Self
	if self == "" {
		if exe, err := os.Executable(); err == nil {
			self = exe
		}
	}

	candidates := Candidates(opts)
	for _, p := range candidates {
		info, err := os.Stat(p)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		if self != "" && samePath(p, self) {
			continue
		}
		return p, nil
	}
	return "", &NotFoundError{Candidates: candidates}
}

func samePath(a, b string) bool {
	ra, err := filepath.EvalSymlinks(a)
	if err != nil {
		return false
	}
	rb, err := filepath.EvalSymlinks(b)
	if err != nil {
		return false
	}
	if ra == rb {
		return true
	}
	ia, errA := os.Stat(ra)
	ib, errB := os.Stat(rb)
	return errA == nil && errB == nil && os.SameFile(ia, ib)
}

// Launch starts the executable at path detached from this process and
// returns without waiting for it.
func Launch(path string, args ...string) (int, error) {
	cmd := exec.Command(path, args...)
	cmd.Stdin = nil
	cmd.Stdout = nil
	cmd.Stderr = nil
	detach(cmd)

	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("failed to launch %s: %w", path, err)
	}
	pid := cmd.Process.Pid
	if err := cmd.Process.Release(); err != nil {
		return pid, fmt.Errorf("failed to release %s: %w", path, err)
	}
	return pid, nil
}
