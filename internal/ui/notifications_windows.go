//go:build windows

package ui

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-toast/toast"
	"go.uber.org/zap"
)

func (n *Notifications) platformNotify(title, message string) error {
	icon := n.toastIcon()

	notification := toast.Notification{
		AppID:   n.appName,
		Title:   title,
		Message: message,
		Icon:    icon,
	}
	if err := notification.Push(); err != nil {
		if strings.Contains(err.Error(), "notification platform is unavailable") {
			n.logger.Warn("Toast platform unavailable, notifications may be disabled in Windows settings")
		}
		return err
	}
	return nil
}

// toastIcon returns a path to an icon file. Toast needs a file on disk, so
// the embedded icon is written to a temporary file removed shortly after.
func (n *Notifications) toastIcon() string {
	if _, err := os.Stat("icon.png"); err == nil {
		if abs, err := filepath.Abs("icon.png"); err == nil {
			return abs
		}
		return "icon.png"
	}
	if len(n.icon) == 0 {
		return ""
	}

	path, err := writeTempIcon(n.icon)
	if err != nil {
		n.logger.Warn("Failed to write temporary icon", zap.Error(err))
		return ""
	}
	time.AfterFunc(10*time.Second, func() {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			n.logger.Debug("Failed to remove temporary icon", zap.String("path", path), zap.Error(err))
		}
	})
	return path
}

func writeTempIcon(data []byte) (string, error) {
	if len(data) == 0 {
		return "", errors.New("cannot write empty icon data")
	}
	f, err := os.CreateTemp("", "clipanon-icon-*.ico")
	if err != nil {
		return "", err
	}
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		_ = os.Remove(f.Name())
		return "", err
	}
	if abs, err := filepath.Abs(f.Name()); err == nil {
		return abs, nil
	}
	return f.Name(), nil
}
