//go:build windows

package assets

import (
	"os/exec"
	"syscall"
)

// hideWindow keeps a console window from flashing up for each ffmpeg run.
func hideWindow(cmd *exec.Cmd) *exec.Cmd {
	cmd.SysProcAttr = &syscall.SysProcAttr{HideWindow: true}
	return cmd
}
