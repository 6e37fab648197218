// Package app wires the clipboard pipeline to the desktop UI.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/TanaroSch/clipboard-anonymizer/internal/clipboard"
	"github.com/TanaroSch/clipboard-anonymizer/internal/config"
	"github.com/TanaroSch/clipboard-anonymizer/internal/engine"
	"github.com/TanaroSch/clipboard-anonymizer/internal/hotkey"
	"github.com/TanaroSch/clipboard-anonymizer/internal/pairs"
	"github.com/TanaroSch/clipboard-anonymizer/internal/replace"
	"github.com/TanaroSch/clipboard-anonymizer/internal/resources"
	"github.com/TanaroSch/clipboard-anonymizer/internal/ui"
)

const appName = "Clipboard Anonymizer"

// Application is the tray application.
type Application struct {
	config  *config.Config
	version string
	logger  *zap.Logger

	engine  *engine.Engine
	notify  *ui.Notifications
	dialogs ui.Dialogs
	tray    *ui.Tray
	hotkeys *hotkey.Manager

	mu   sync.Mutex
	last *change
}

type change struct {
	original, modified string
}

// New builds the application on the OS clipboard.
func New(cfg *config.Config, version string, logger *zap.Logger) (*Application, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	clip, err := clipboard.NewSystem()
	if err != nil {
		return nil, err
	}

	icon, err := resources.GetIcon()
	if err != nil {
		logger.Warn("Failed to load embedded icon", zap.Error(err))
	}

	a := &Application{
		config:  cfg,
		version: version,
		logger:  logger,
		notify:  ui.NewNotifications(appName, icon, cfg.UseNotifications, logger),
		dialogs: ui.Dialogs{AppName: appName},
	}
	a.engine = engine.New(cfg, engine.Options{
		Clipboard:     clip,
		Notifier:      a,
		OnFailure:     a.onMonitorFailed,
		OnPairsLoaded: a.onPairsLoaded,
	}, logger)

	a.tray = ui.NewTray(fmt.Sprintf("%s %s", appName, version), icon, ui.TrayActions{
		SetMode:        a.onSetMode,
		TogglePause:    a.onTogglePause,
		AddPair:        a.onAddPair,
		ReloadPairs:    a.onReloadPairs,
		OpenPairs:      a.onOpenPairs,
		OpenConfig:     a.onOpenConfig,
		ViewLastChange: a.onViewLastChange,
		AddSecret:      a.onAddSecret,
		ListSecrets:    a.onListSecrets,
		RemoveSecret:   a.onRemoveSecret,
		Quit:           a.onQuit,
	}, a.engine.Post, logger)

	return a, nil
}

// Run shows the tray and blocks until the user quits or ctx is cancelled.
// It must be called from the main goroutine.
func (a *Application) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var startErr error
	a.tray.Run(func() {
		if err := a.engine.Start(ctx); err != nil {
			startErr = err
			a.tray.Quit()
			return
		}
		a.tray.SetMode(a.engine.Service().Mode())
		a.tray.SetPaused(false)
		a.registerHotkeys()

		go func() {
			<-ctx.Done()
			a.tray.Quit()
		}()
	})

	cancel()
	if a.hotkeys != nil {
		a.hotkeys.UnregisterAll()
	}
	a.engine.Stop()
	return startErr
}

func (a *Application) registerHotkeys() {
	backend, err := hotkey.SelectBackend(a.logger)
	if err != nil {
		a.logger.Warn("Global hotkeys unavailable", zap.Error(err))
		return
	}
	a.hotkeys = hotkey.NewManager(backend, a.engine.Post, a.logger)

	var errs []error
	if err := a.hotkeys.Bind("toggle pause", a.config.ToggleHotkey, a.onTogglePause); err != nil {
		errs = append(errs, err)
	}
	if err := a.hotkeys.Bind("cycle mode", a.config.CycleModeHotkey, a.onCycleMode); err != nil {
		errs = append(errs, err)
	}
	if err := errors.Join(errs...); err != nil {
		a.logger.Warn("Failed to register some hotkeys", zap.Error(err))
		a.notify.ShowAdminNotification(ui.LevelWarn, "Hotkey Registration Issue", err.Error())
	}
}

// ContentDetected implements anonymize.Notifier.
func (a *Application) ContentDetected(content string) {
	a.logger.Debug("Clipboard content detected", zap.Int("length", len(content)))
}

// ContentModified implements anonymize.Notifier.
func (a *Application) ContentModified(original, modified string, applied []replace.Applied) {
	a.mu.Lock()
	a.last = &change{original: original, modified: modified}
	a.mu.Unlock()
	a.tray.SetLastChangeAvailable(true)

	n := replace.Total(applied)
	noun := "replacements"
	if n == 1 {
		noun = "replacement"
	}
	a.notify.ShowReplacementNotification("Text anonymized", fmt.Sprintf("%d %s applied (%s)", n, noun, a.engine.Service().Mode().Description()))
}

// WriteFailed implements anonymize.Notifier.
func (a *Application) WriteFailed(err error) {
	a.notify.ShowAdminNotification(ui.LevelError, "Clipboard Error", fmt.Sprintf("Failed to update clipboard: %v", err))
}

func (a *Application) onMonitorFailed(err error) {
	a.tray.SetStopped()
	a.notify.ShowAdminNotification(ui.LevelError, "Monitoring stopped",
		fmt.Sprintf("Clipboard monitoring stopped after repeated errors: %v", err))
}

func (a *Application) onPairsLoaded(res engine.PairsResult, err error) {
	if err != nil {
		a.notify.ShowAdminNotification(ui.LevelError, "Pairs Error", fmt.Sprintf("Failed to load %s: %v", res.Path, err))
		return
	}
	if n := len(res.Report.Issues); n > 0 {
		msg := res.Report.Issues[0].String()
		if n > 1 {
			msg = fmt.Sprintf("%s (and %d more)", msg, n-1)
		}
		a.notify.ShowAdminNotification(ui.LevelWarn, "Invalid Pairs Ignored", msg)
	}
	if len(res.Missing) > 0 {
		a.notify.ShowAdminNotification(ui.LevelWarn, "Unknown Secrets",
			"Not stored in keychain: "+strings.Join(res.Missing, ", "))
	}
}

func (a *Application) onSetMode(mode replace.Mode) {
	a.engine.SetMode(mode)
	a.tray.SetMode(mode)
	a.notify.ShowAdminNotification(ui.LevelInfo, "Mode Changed", mode.Description())
}

func (a *Application) onCycleMode() {
	a.onSetMode(a.engine.Service().Mode().Next())
}

func (a *Application) onTogglePause() {
	paused := a.engine.TogglePause()
	a.tray.SetPaused(paused)
	if paused {
		a.notify.ShowAdminNotification(ui.LevelInfo, "Anonymizing Paused", "Clipboard content is left untouched.")
	} else {
		a.notify.ShowAdminNotification(ui.LevelInfo, "Anonymizing Resumed", a.engine.Service().Mode().Description())
	}
}

func (a *Application) onReloadPairs() {
	res, err := a.engine.ReloadPairs()
	a.onPairsLoaded(res, err)
	if err == nil {
		a.notify.ShowAdminNotification(ui.LevelInfo, "Pairs Reloaded",
			fmt.Sprintf("%d active pairs", len(res.Report.ValidPairs())))
	}
}

// Dialog handlers prompt on their own goroutine and apply the answer back on
// the dispatch loop, so clipboard changes keep being processed meanwhile.

func (a *Application) onAddPair() {
	var (
		p   replace.Pair
		err error
	)
	a.engine.Loop().Async(func() {
		p, err = a.dialogs.PromptPair()
	}, func() {
		if err != nil {
			a.dialogFailed("Add Pair", err)
			return
		}
		a.addPair(p)
	})
}

func (a *Application) addPair(p replace.Pair) {
	res, err := a.engine.AddPair(p)
	var rejected *engine.RejectedPairError
	switch {
	case errors.As(err, &rejected):
		a.notify.ShowAdminNotification(ui.LevelWarn, "Pair Not Added", rejected.Issue.Message)
	case err != nil:
		a.notify.ShowAdminNotification(ui.LevelError, "Save Error", err.Error())
	default:
		a.onPairsLoaded(res, nil)
		a.notify.ShowAdminNotification(ui.LevelInfo, "Pair Added",
			fmt.Sprintf("%d active pairs", len(res.Report.ValidPairs())))
	}
}

func (a *Application) onOpenPairs() {
	path := a.config.PairsPath()
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := pairs.Save(path, nil); err != nil {
			a.notify.ShowAdminNotification(ui.LevelWarn, "Error Opening File", err.Error())
			return
		}
	}
	a.openFile(path)
}

func (a *Application) onOpenConfig() {
	a.openFile(a.config.GetConfigPath())
}

func (a *Application) openFile(path string) {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	if err := ui.OpenFileInDefaultApp(abs); err != nil {
		a.logger.Warn("Could not open file", zap.String("path", abs), zap.Error(err))
		a.notify.ShowAdminNotification(ui.LevelWarn, "Error Opening File", fmt.Sprintf("Could not open %s: %v", abs, err))
	}
}

func (a *Application) onViewLastChange() {
	a.mu.Lock()
	last := a.last
	a.mu.Unlock()
	if last == nil {
		a.notify.ShowAdminNotification(ui.LevelInfo, "View Changes", "No changes recorded yet.")
		a.tray.SetLastChangeAvailable(false)
		return
	}
	if err := ui.ShowDiffViewer(last.original, last.modified, a.config.DiffContextLines, a.logger); err != nil {
		a.notify.ShowAdminNotification(ui.LevelWarn, "Diff View Error", err.Error())
	}
}

func (a *Application) onAddSecret() {
	var (
		name, value string
		err         error
	)
	a.engine.Loop().Async(func() {
		name, value, err = a.dialogs.PromptSecret()
	}, func() {
		if err != nil {
			a.dialogFailed("Add Secret", err)
			return
		}
		if err := a.config.AddSecretReference(name, value); err != nil {
			a.logger.Error("Failed to store secret", zap.String("name", name), zap.Error(err))
			a.notify.ShowAdminNotification(ui.LevelError, "Error", fmt.Sprintf("Failed to store secret '%s': %v", name, err))
			return
		}
		a.notify.ShowAdminNotification(ui.LevelInfo, "Secret Stored",
			fmt.Sprintf("Use {{%s}} in the pairs file to reference it.", name))
		a.onReloadPairs()
	})
}

func (a *Application) onListSecrets() {
	names := a.config.SecretNames()
	msg := "No secrets are currently managed."
	if len(names) > 0 {
		msg = fmt.Sprintf("Managed secrets (%d):\n- %s", len(names), strings.Join(names, "\n- "))
	}
	a.engine.Loop().Async(func() {
		if err := a.dialogs.Info("Managed Secrets", msg); err != nil {
			a.logger.Warn("Failed to show dialog", zap.Error(err))
		}
	}, nil)
}

func (a *Application) onRemoveSecret() {
	names := a.config.SecretNames()
	if len(names) == 0 {
		a.notify.ShowAdminNotification(ui.LevelInfo, "Remove Secret", "No secrets are currently managed.")
		return
	}

	var (
		name string
		ok   bool
		err  error
	)
	a.engine.Loop().Async(func() {
		if name, err = a.dialogs.PickSecret(names); err != nil {
			return
		}
		ok, err = a.dialogs.Confirm("Confirm Removal",
			fmt.Sprintf("Remove the secret '%s' from the OS keychain?\nPairs using {{%s}} stop matching.", name, name), "Remove")
	}, func() {
		if err != nil || !ok {
			a.dialogFailed("Remove Secret", err)
			return
		}
		if err := a.config.RemoveSecretReference(name); err != nil {
			a.notify.ShowAdminNotification(ui.LevelError, "Error", fmt.Sprintf("Failed to remove secret '%s': %v", name, err))
			return
		}
		a.notify.ShowAdminNotification(ui.LevelInfo, "Secret Removed", fmt.Sprintf("Secret '%s' removed.", name))
		a.onReloadPairs()
	})
}

// dialogFailed reports a dialog that did not complete. A nil error or a
// cancellation is the user's choice.
func (a *Application) dialogFailed(step string, err error) {
	switch {
	case err == nil, errors.Is(err, ui.ErrCanceled):
		a.logger.Debug("Dialog canceled", zap.String("step", step))
	case errors.Is(err, ui.ErrInvalidName):
		a.notify.ShowAdminNotification(ui.LevelWarn, "Invalid Input", err.Error())
	default:
		a.logger.Warn("Dialog failed", zap.String("step", step), zap.Error(err))
		a.notify.ShowAdminNotification(ui.LevelWarn, "Input Error", fmt.Sprintf("%s failed: %v", step, err))
	}
}

func (a *Application) onQuit() {
	a.logger.Info("Quit requested")
}
