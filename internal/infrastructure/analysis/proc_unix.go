//go:build !windows

package analysis

import (
	"os/exec"
	"syscall"
)

// configureProcess puts the script in its own process group so a timeout
// kills any helpers it spawned as well.
func configureProcess(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		if cmd.Process == nil {
			return nil
		}
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
}
