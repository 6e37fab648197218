// Package resources holds assets compiled into the binary.
package resources

import (
	_ "embed"
	"errors"
)

// ErrIconNotFound is returned when the binary was built without an icon.
var ErrIconNotFound = errors.New("embedded icon is empty")

//go:embed icon.ico
var iconData []byte

// GetIcon returns the tray and notification icon.
func GetIcon() ([]byte, error) {
	if len(iconData) == 0 {
		return nil, ErrIconNotFound
	}
	return iconData, nil
}
