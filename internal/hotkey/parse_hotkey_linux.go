//go:build linux

package hotkey

import "golang.design/x/hotkey"

// modifierFor maps modifier names to X11 masks. Alt is Mod1 and Super is
// Mod4 on virtually every keymap.
func modifierFor(name string) (hotkey.Modifier, bool) {
	switch name {
	case "ctrl", "control":
		return hotkey.ModCtrl, true
	case "alt":
		return hotkey.Mod1, true
	case "shift":
		return hotkey.ModShift, true
	case "super", "win", "cmd":
		return hotkey.Mod4, true
	default:
		return 0, false
	}
}
