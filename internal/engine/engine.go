// Package engine runs the headless clipboard pipeline: monitor, anonymizing
// service, pairs watcher and the dispatch loop their callbacks run on.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/TanaroSch/clipboard-anonymizer/internal/anonymize"
	"github.com/TanaroSch/clipboard-anonymizer/internal/clipboard"
	"github.com/TanaroSch/clipboard-anonymizer/internal/config"
	"github.com/TanaroSch/clipboard-anonymizer/internal/dispatch"
	"github.com/TanaroSch/clipboard-anonymizer/internal/pairs"
	"github.com/TanaroSch/clipboard-anonymizer/internal/replace"
)

// ErrPairRejected is matched by the error AddPair returns for a pair that
// does not validate.
var ErrPairRejected = errors.New("pair rejected")

// RejectedPairError carries the validation issue of a rejected pair.
type RejectedPairError struct {
	Issue replace.Issue
}

func (e *RejectedPairError) Error() string {
	return "pair rejected: " + e.Issue.Message
}

func (e *RejectedPairError) Is(target error) bool {
	return target == ErrPairRejected
}

// PairsResult is a loaded, resolved and validated pairs file.
type PairsResult struct {
	Path    string
	Report  replace.Report
	Missing []string // secret names referenced but not stored
}

// LoadPairs reads the configured pairs file, substitutes secrets and
// validates the result.
func LoadPairs(cfg *config.Config) (PairsResult, error) {
	path := cfg.PairsPath()
	list, err := pairs.Load(path)
	if err != nil {
		return PairsResult{Path: path}, err
	}
	resolved, missing := pairs.Resolve(list, cfg.GetResolvedSecrets())
	return PairsResult{Path: path, Report: replace.Validate(resolved), Missing: missing}, nil
}

// Options configures an Engine. Every field is optional except Clipboard.
type Options struct {
	Clipboard clipboard.Clipboard
	Notifier  anonymize.Notifier
	// OnFailure runs on the dispatch loop when monitoring stops for good.
	OnFailure func(error)
	// OnPairsLoaded runs on the dispatch loop after every pairs reload.
	OnPairsLoaded func(PairsResult, error)
}

// Engine owns the clipboard pipeline.
type Engine struct {
	cfg    *config.Config
	opts   Options
	logger *zap.Logger

	loop    *dispatch.Loop
	monitor *clipboard.Monitor
	service *anonymize.Service
	watcher *pairs.Watcher

	stopOnce sync.Once
}

// New wires the pipeline without starting it.
func New(cfg *config.Config, opts Options, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Engine{cfg: cfg, opts: opts, logger: logger}

	e.loop = dispatch.NewLoop(logger)
	e.service = anonymize.NewService(opts.Clipboard, cfg.ReplacementMode(), cfg.WriteBack, opts.Notifier, logger)
	e.monitor = clipboard.NewMonitor(opts.Clipboard, cfg.Monitor, e.service.HandleChange, e.monitorFailed, e.loop.Post, logger)
	e.service.SetHook(e.monitor)

	if cfg.WatchPairsFile && cfg.PairsPath() != "" {
		e.watcher = pairs.NewWatcher(cfg.PairsPath(), 0, func() {
			e.loop.Post(func() { e.reload() })
		}, logger)
	}
	return e
}

// Start loads the pairs and begins monitoring the clipboard.
func (e *Engine) Start(ctx context.Context) error {
	res, err := e.ReloadPairs()
	if e.opts.OnPairsLoaded != nil {
		e.loop.Post(func() { e.opts.OnPairsLoaded(res, err) })
	}
	if err != nil {
		return err
	}

	if e.watcher != nil {
		if err := e.watcher.Start(ctx); err != nil {
			e.logger.Warn("Pairs file will not be reloaded automatically", zap.Error(err))
		}
	}
	e.monitor.Start(ctx)
	e.logger.Info("Clipboard anonymizer started",
		zap.Stringer("mode", e.service.Mode()),
		zap.Int("pairs", len(e.service.Pairs())))
	return nil
}

// Stop ends monitoring, waits for pending write-backs and drains the
// dispatch loop. It must not be called from a posted function.
func (e *Engine) Stop() {
	e.stopOnce.Do(func() {
		if e.watcher != nil {
			e.watcher.Stop()
		}
		e.monitor.Stop()
		// Drain the loop first: a queued change may still start a write-back.
		e.loop.Close()
		e.service.Wait()
		e.logger.Info("Clipboard anonymizer stopped")
	})
}

// Post runs fn on the dispatch loop.
func (e *Engine) Post(fn func()) {
	e.loop.Post(fn)
}

// Loop returns the dispatch loop UI callbacks run on.
func (e *Engine) Loop() *dispatch.Loop {
	return e.loop
}

// Service returns the anonymizing service.
func (e *Engine) Service() *anonymize.Service {
	return e.service
}

// Monitor returns the clipboard monitor.
func (e *Engine) Monitor() *clipboard.Monitor {
	return e.monitor
}

// ReloadPairs re-reads the pairs file and activates the pairs that pass
// validation.
func (e *Engine) ReloadPairs() (PairsResult, error) {
	res, err := LoadPairs(e.cfg)
	if err != nil {
		e.logger.Error("Failed to load pairs", zap.String("path", res.Path), zap.Error(err))
		return res, fmt.Errorf("loading pairs: %w", err)
	}

	for _, issue := range res.Report.Issues {
		e.logger.Warn("Ignoring invalid pair", zap.String("issue", issue.String()))
	}
	if len(res.Missing) > 0 {
		e.logger.Warn("Pairs reference unknown secrets", zap.Strings("names", res.Missing))
	}
	e.service.SetPairs(res.Report.ValidPairs())
	return res, nil
}

// AddPair appends p to the pairs file and reloads. The pair is rejected with
// a *RejectedPairError when it would be invalid once secrets are resolved.
func (e *Engine) AddPair(p replace.Pair) (PairsResult, error) {
	path := e.cfg.PairsPath()
	list, err := pairs.Load(path)
	if err != nil {
		return PairsResult{Path: path}, fmt.Errorf("loading pairs: %w", err)
	}
	if issue, bad := checkNewPair(list, p, e.cfg.GetResolvedSecrets()); bad {
		return PairsResult{Path: path}, &RejectedPairError{Issue: issue}
	}
	if err := pairs.Append(path, p); err != nil {
		return PairsResult{Path: path}, err
	}
	e.logger.Info("Pair added", zap.String("path", path))
	return e.ReloadPairs()
}

// checkNewPair validates p appended to list the way LoadPairs will see it.
func checkNewPair(list []replace.Pair, p replace.Pair, secrets map[string]string) (replace.Issue, bool) {
	candidate := append(append([]replace.Pair(nil), list...), p)
	resolved, _ := pairs.Resolve(candidate, secrets)
	return replace.Validate(resolved).IssueFor(len(resolved) - 1)
}

// SetMode switches the replacement mode and persists it.
func (e *Engine) SetMode(mode replace.Mode) {
	e.service.SetMode(mode)
	e.cfg.Mode = mode.String()
	if e.cfg.GetConfigPath() == "" {
		return
	}
	if err := e.cfg.Save(); err != nil {
		e.logger.Warn("Failed to persist mode", zap.Error(err))
	}
}

// CycleMode advances to the next mode and returns it.
func (e *Engine) CycleMode() replace.Mode {
	next := e.service.Mode().Next()
	e.SetMode(next)
	return next
}

// TogglePause flips the pause flag and returns the new state.
func (e *Engine) TogglePause() bool {
	paused := !e.service.Paused()
	e.service.SetPaused(paused)
	e.logger.Info("Anonymizing paused state changed", zap.Bool("paused", paused))
	return paused
}

func (e *Engine) reload() {
	res, err := e.ReloadPairs()
	if e.opts.OnPairsLoaded != nil {
		e.opts.OnPairsLoaded(res, err)
	}
}

func (e *Engine) monitorFailed(err error) {
	e.logger.Error("Clipboard monitoring stopped", zap.Error(err))
	if e.opts.OnFailure != nil {
		e.opts.OnFailure(err)
	}
}

// LogNotifier reports anonymizer events to the log only.
type LogNotifier struct {
	Logger *zap.Logger
}

func (n LogNotifier) ContentDetected(content string) {
	n.Logger.Debug("Clipboard content detected", zap.Int("length", len(content)))
}

func (n LogNotifier) ContentModified(_, modified string, applied []replace.Applied) {
	n.Logger.Info("Text anonymized",
		zap.Int("replacements", replace.Total(applied)),
		zap.String("preview", clipboard.Preview(modified, 50)))
}

func (n LogNotifier) WriteFailed(err error) {
	n.Logger.Error("Failed to update clipboard", zap.Error(err))
}
