//go:build windows

package hotkey

import "golang.design/x/hotkey"

// modifierFor maps modifier names to Windows modifiers; cmd is the Windows
// key.
func modifierFor(name string) (hotkey.Modifier, bool) {
	switch name {
	case "ctrl", "control":
		return hotkey.ModCtrl, true
	case "alt":
		return hotkey.ModAlt, true
	case "shift":
		return hotkey.ModShift, true
	case "super", "win", "cmd":
		return hotkey.ModWin, true
	default:
		return 0, false
	}
}
