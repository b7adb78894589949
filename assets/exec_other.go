//go:build !windows

package assets

import "os/exec"

func hideWindow(cmd *exec.Cmd) *exec.Cmd {
	return cmd
}
