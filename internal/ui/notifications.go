package ui

import (
	"sync/atomic"

	"go.uber.org/zap"
)

// Level is the severity of an administrative notification.
type Level int

const (
	LevelInfo Level = iota
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

// Notifications shows desktop notifications. Replacement notifications obey
// the use_notifications setting; warnings and errors are always shown.
type Notifications struct {
	appName string
	icon    []byte
	logger  *zap.Logger
	enabled atomic.Bool
}

// NewNotifications creates the notification sink.
func NewNotifications(appName string, icon []byte, enabled bool, logger *zap.Logger) *Notifications {
	if logger == nil {
		logger = zap.NewNop()
	}
	n := &Notifications{appName: appName, icon: icon, logger: logger.Named("notify")}
	n.enabled.Store(enabled)
	return n
}

// SetEnabled toggles replacement and info notifications.
func (n *Notifications) SetEnabled(enabled bool) {
	n.enabled.Store(enabled)
}

// ShowAdminNotification reports application state to the user.
func (n *Notifications) ShowAdminNotification(level Level, title, message string) {
	log := n.logger.With(zap.Stringer("level", level), zap.String("title", title))
	if level == LevelInfo && !n.enabled.Load() {
		log.Debug("Notification suppressed", zap.String("message", message))
		return
	}
	n.push(log, title, message)
}

// ShowReplacementNotification reports a clipboard substitution.
func (n *Notifications) ShowReplacementNotification(title, message string) {
	log := n.logger.With(zap.String("title", title))
	if !n.enabled.Load() {
		log.Debug("Notification suppressed", zap.String("message", message))
		return
	}
	n.push(log, title, message)
}

func (n *Notifications) push(log *zap.Logger, title, message string) {
	if err := n.platformNotify(title, message); err != nil {
		log.Warn("Failed to show notification", zap.Error(err))
		return
	}
	log.Debug("Notification sent")
}
