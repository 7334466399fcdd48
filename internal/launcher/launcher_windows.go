//go:build windows

package launcher

import (
	"os/exec"
	"syscall"
)

const defaultPath = `C:\Program Files\Gitly\gitly.exe`

// createNewConsole is CREATE_NEW_CONSOLE from the Win32 process creation flags
const createNewConsole = 0x00000010

// detach gives the GUI its own console
func detach(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{CreationFlags: createNewConsole}
}
