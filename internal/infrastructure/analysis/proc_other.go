//go:build windows

package analysis

import "os/exec"

func configureProcess(cmd *exec.Cmd) {}
