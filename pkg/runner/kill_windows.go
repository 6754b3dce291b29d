//go:build windows

package runner

import "os/exec"

// setProcessGroup is a no-op on Windows; children are killed directly.
func setProcessGroup(cmd *exec.Cmd) {}

// killProcess terminates the child process.
func killProcess(cmd *exec.Cmd) error {
	if cmd == nil || cmd.Process == nil {
		return nil
	}
	return cmd.Process.Kill()
}
