//go:build !darwin && !linux && !windows

package launcher

import "os/exec"

// no standard install location
const defaultPath = ""

func detach(*exec.Cmd) {}
