package hotkey

import (
	"os"
	"runtime"
)

// DisplayServer is the windowing system hotkeys are grabbed from.
type DisplayServer int

const (
	DisplayServerUnknown DisplayServer = iota
	DisplayServerWindows
	DisplayServerX11
	DisplayServerWayland
	DisplayServerMacOS
)

func (ds DisplayServer) String() string {
	switch ds {
	case DisplayServerWindows:
		return "Windows"
	case DisplayServerX11:
		return "X11"
	case DisplayServerWayland:
		return "Wayland"
	case DisplayServerMacOS:
		return "macOS"
	default:
		return "Unknown"
	}
}

// DetectDisplayServer inspects the OS and session environment.
func DetectDisplayServer() DisplayServer {
	return detect(runtime.GOOS, os.Getenv)
}

func detect(goos string, getenv func(string) string) DisplayServer {
	switch goos {
	case "windows":
		return DisplayServerWindows
	case "darwin":
		return DisplayServerMacOS
	}
	// Wayland sessions usually set DISPLAY too, for XWayland.
	if getenv("WAYLAND_DISPLAY") != "" {
		return DisplayServerWayland
	}
	if getenv("DISPLAY") != "" {
		return DisplayServerX11
	}
	return DisplayServerUnknown
}
