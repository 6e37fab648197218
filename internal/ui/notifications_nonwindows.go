//go:build !windows

package ui

import "github.com/gen2brain/beeep"

func (n *Notifications) platformNotify(title, message string) error {
	return beeep.Notify(title, message, "")
}
