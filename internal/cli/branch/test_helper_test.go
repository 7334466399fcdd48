package branch_test

import (
	"bytes"
	"testing"

	"gitly.dev/gitly/internal/cli/branch"
)

// runBranchCmd executes `gitly branch <args>` in-process with an isolated home
func runBranchCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	cmd := branch.NewBranchCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}
