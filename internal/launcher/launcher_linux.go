//go:build linux

package launcher

import (
	"os/exec"
	"syscall"
)

const defaultPath = "/usr/local/bin/gitly"

// detach starts the GUI in its own session so it outlives the terminal
func detach(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
}
