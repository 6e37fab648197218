//go:build linux

package hotkey

import "golang.design/x/hotkey"

// linuxCapsLockMask is X11's LockMask. NumLock is usually Mod2.
const linuxCapsLockMask hotkey.Modifier = 1 << 1

// expandModifiers returns modifiers combined with every NumLock/CapsLock
// state. XGrabKey matches the exact mask, so a grab without them stops
// firing as soon as a lock key is on.
func expandModifiers(modifiers []hotkey.Modifier) [][]hotkey.Modifier {
	with := func(extra ...hotkey.Modifier) []hotkey.Modifier {
		return append(append([]hotkey.Modifier(nil), modifiers...), extra...)
	}
	return [][]hotkey.Modifier{
		with(),
		with(hotkey.Mod2),
		with(linuxCapsLockMask),
		with(hotkey.Mod2, linuxCapsLockMask),
	}
}
