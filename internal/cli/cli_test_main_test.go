package cli_test

import (
	"bytes"
	"testing"

	"gitly.dev/gitly/internal/cli"
)

// runCLI executes gitly in-process with args and an isolated home directory
func runCLI(t *testing.T, home string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", home)
	t.Setenv("GITLY_PATH", "")

	cmd := cli.NewRootCmd("1.2.3", "abc123", "2024-01-01")
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}
