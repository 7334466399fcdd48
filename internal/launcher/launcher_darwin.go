//go:build darwin

package launcher

import (
	"os/exec"
	"syscall"
)

const defaultPath = "/Applications/Gitly.app/Contents/MacOS/Gitly"

// detach starts the GUI in its own session so it outlives the terminal
func detach(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
}
