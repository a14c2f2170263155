//go:build !windows

package executor

import (
	"os/exec"
	"syscall"
)

func hideWindow(*exec.Cmd) {}

func detach(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}
