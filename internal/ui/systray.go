// Package ui is the desktop surface: tray menu, notifications, dialogs and
// the diff viewer.
package ui

import (
	"fmt"

	"github.com/getlantern/systray"
	"go.uber.org/zap"

	"github.com/TanaroSch/clipboard-anonymizer/internal/replace"
)

// TrayActions are the callbacks behind the tray menu. Nil entries hide or
// disable their menu item.
type TrayActions struct {
	SetMode        func(replace.Mode)
	TogglePause    func()
	AddPair        func()
	ReloadPairs    func()
	OpenPairs      func()
	OpenConfig     func()
	ViewLastChange func()
	AddSecret      func()
	ListSecrets    func()
	RemoveSecret   func()
	Quit           func()
}

// Tray is the system tray icon and menu.
type Tray struct {
	title   string
	icon    []byte
	actions TrayActions
	post    func(func())
	logger  *zap.Logger

	ready      chan struct{}
	miStatus   *systray.MenuItem
	miPause    *systray.MenuItem
	miLastDiff *systray.MenuItem
	modeItems  map[replace.Mode]*systray.MenuItem
}

// NewTray creates the tray. Menu callbacks are handed to post, which runs
// them on the application's dispatch loop.
func NewTray(title string, icon []byte, actions TrayActions, post func(func()), logger *zap.Logger) *Tray {
	if post == nil {
		post = func(fn func()) { fn() }
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tray{
		title:     title,
		icon:      icon,
		actions:   actions,
		post:      post,
		logger:    logger.Named("tray"),
		ready:     make(chan struct{}),
		modeItems: make(map[replace.Mode]*systray.MenuItem),
	}
}

// Run shows the tray and blocks until Quit. It must be called from the main
// goroutine.
func (t *Tray) Run(onReady func()) {
	systray.Run(func() {
		t.build()
		close(t.ready)
		if onReady != nil {
			onReady()
		}
	}, func() {
		t.logger.Info("Systray exiting")
	})
}

// Quit closes the tray, which makes Run return.
func (t *Tray) Quit() {
	systray.Quit()
}

// SetMode moves the checkmark to mode.
func (t *Tray) SetMode(mode replace.Mode) {
	if !t.isReady() {
		return
	}
	for m, item := range t.modeItems {
		item.SetTitle(checkLabel(m == mode, m.Description()))
	}
	systray.SetTooltip(fmt.Sprintf("%s (%s)", t.title, mode.Description()))
}

// SetPaused updates the pause item and status line.
func (t *Tray) SetPaused(paused bool) {
	if !t.isReady() {
		return
	}
	t.miPause.SetTitle(checkLabel(paused, "Pause Anonymizing"))
	if paused {
		t.miStatus.SetTitle("Status: Paused")
	} else {
		t.miStatus.SetTitle("Status: Active")
	}
}

// SetStopped shows that clipboard monitoring gave up.
func (t *Tray) SetStopped() {
	if !t.isReady() {
		return
	}
	t.miStatus.SetTitle("Status: Monitoring stopped")
}

// SetLastChangeAvailable enables the diff viewer item.
func (t *Tray) SetLastChangeAvailable(ok bool) {
	if !t.isReady() || t.miLastDiff == nil {
		return
	}
	if ok {
		t.miLastDiff.Enable()
	} else {
		t.miLastDiff.Disable()
	}
}

func (t *Tray) isReady() bool {
	select {
	case <-t.ready:
		return true
	default:
		return false
	}
}

func (t *Tray) build() {
	systray.SetTitle(t.title)
	systray.SetTooltip(t.title)
	if len(t.icon) > 0 {
		systray.SetIcon(t.icon)
	} else {
		t.logger.Warn("No icon data for systray")
	}

	header := systray.AddMenuItem(t.title, t.title)
	header.Disable()
	t.miStatus = systray.AddMenuItem("Status: Active", "Clipboard monitoring state")
	t.miStatus.Disable()
	systray.AddSeparator()

	t.miPause = systray.AddMenuItem(checkLabel(false, "Pause Anonymizing"), "Stop rewriting the clipboard until resumed")
	t.handle(t.miPause, "Pause", t.actions.TogglePause)

	miMode := systray.AddMenuItem("Replacement Mode", "Which direction pairs are applied in")
	for _, m := range replace.Modes() {
		m := m
		item := miMode.AddSubMenuItem(checkLabel(false, m.Description()), "Use "+m.String()+" replacement")
		t.modeItems[m] = item
		var pick func()
		if t.actions.SetMode != nil {
			pick = func() { t.actions.SetMode(m) }
		}
		t.handle(item, "Mode "+m.String(), pick)
	}
	systray.AddSeparator()

	t.handle(systray.AddMenuItem("Add Pair...", "Add an original/replacement pair"), "Add Pair", t.actions.AddPair)
	t.handle(systray.AddMenuItem("Reload Pairs", "Re-read the pairs file"), "Reload Pairs", t.actions.ReloadPairs)
	t.handle(systray.AddMenuItem("Open Pairs File", "Edit the pairs file in the default editor"), "Open Pairs", t.actions.OpenPairs)

	miSecrets := systray.AddMenuItem("Manage Secrets", "Values kept in the OS keychain")
	t.handle(miSecrets.AddSubMenuItem("Add/Update Secret...", "Store a sensitive value"), "Add Secret", t.actions.AddSecret)
	t.handle(miSecrets.AddSubMenuItem("List Secret Names", "Show names of stored secrets"), "List Secrets", t.actions.ListSecrets)
	t.handle(miSecrets.AddSubMenuItem("Remove Secret...", "Delete a stored secret"), "Remove Secret", t.actions.RemoveSecret)
	systray.AddSeparator()

	t.handle(systray.AddMenuItem("Open Config File", "Open the configuration in the default editor"), "Open Config", t.actions.OpenConfig)
	t.miLastDiff = systray.AddMenuItem("View Last Change Details", "Show what the last substitution changed")
	t.miLastDiff.Disable()
	t.handle(t.miLastDiff, "View Last Change", t.actions.ViewLastChange)
	systray.AddSeparator()

	miQuit := systray.AddMenuItem("Quit", "Exit the application")
	go func() {
		<-miQuit.ClickedCh
		t.logger.Info("Quit menu item clicked")
		if t.actions.Quit != nil {
			t.post(t.actions.Quit)
		}
		systray.Quit()
	}()

	t.logger.Info("Systray ready")
}

// handle wires item to fn, or disables it when fn is nil.
func (t *Tray) handle(item *systray.MenuItem, name string, fn func()) {
	if fn == nil {
		item.Disable()
		return
	}
	go func() {
		for range item.ClickedCh {
			t.logger.Debug("Menu item clicked", zap.String("item", name))
			t.post(fn)
		}
	}()
}

func checkLabel(checked bool, label string) string {
	if checked {
		return "✓ " + label
	}
	return "   " + label
}
