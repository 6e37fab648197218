//go:build !windows

package ui

import (
	"fmt"
	"os/exec"
	"runtime"
)

// OpenFileInDefaultApp opens path with the desktop's default handler.
func OpenFileInDefaultApp(path string) error {
	name := "xdg-open"
	if runtime.GOOS == "darwin" {
		name = "open"
	}
	cmd := exec.Command(name, path)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start %s: %w", name, err)
	}
	go func() { _ = cmd.Wait() }()
	return nil
}
