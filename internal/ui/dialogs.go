package ui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ncruces/zenity"

	"github.com/TanaroSch/clipboard-anonymizer/internal/pairs"
	"github.com/TanaroSch/clipboard-anonymizer/internal/replace"
)

// ErrCanceled is returned when the user dismisses a dialog.
var ErrCanceled = zenity.ErrCanceled

// ErrInvalidName is returned for secret names that cannot appear in a
// {{name}} placeholder.
var ErrInvalidName = errors.New("invalid secret name")

// Dialogs shows modal prompts titled with the application name.
type Dialogs struct {
	AppName string
}

func (d Dialogs) title(step string) zenity.Option {
	return zenity.Title(d.AppName + " - " + step)
}

// PromptPair asks for a new substitution pair.
func (d Dialogs) PromptPair() (replace.Pair, error) {
	original, err := zenity.Entry(
		"Enter the text to hide\n(matched literally, use {{name}} for a stored secret)",
		d.title("Add Pair"),
		zenity.DisallowEmpty(),
	)
	if err != nil {
		return replace.Pair{}, err
	}
	replacement, err := zenity.Entry(
		fmt.Sprintf("Enter the placeholder that replaces '%s'", original),
		d.title("Add Pair"),
		zenity.DisallowEmpty(),
	)
	if err != nil {
		return replace.Pair{}, err
	}
	return replace.Pair{Original: strings.TrimSpace(original), Replacement: strings.TrimSpace(replacement)}, nil
}

// PromptSecret asks for a secret name and its value.
func (d Dialogs) PromptSecret() (name, value string, err error) {
	name, err = zenity.Entry(
		"Step 1: Enter logical name\n(letters, digits, '_', '.' or '-', e.g. employer)",
		d.title("Add/Update Secret"),
	)
	if err != nil {
		return "", "", err
	}
	name = strings.TrimSpace(name)
	if !pairs.ValidName(name) {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}

	_, value, err = zenity.Password(d.title("Step 2: Enter secret value for '" + name + "'"))
	if err != nil {
		return "", "", err
	}
	if value == "" {
		return "", "", ErrCanceled
	}
	return name, value, nil
}

// PickSecret lets the user choose one of names.
func (d Dialogs) PickSecret(names []string) (string, error) {
	name, err := zenity.List("Select secret to remove:", names, d.title("Remove Secret"))
	if err != nil {
		return "", err
	}
	if name == "" {
		return "", ErrCanceled
	}
	return name, nil
}

// Confirm asks a yes/no question. It returns false when the user declines.
func (d Dialogs) Confirm(step, question, okLabel string) (bool, error) {
	err := zenity.Question(question,
		d.title(step),
		zenity.WarningIcon,
		zenity.OKLabel(okLabel),
		zenity.CancelLabel("Cancel"),
	)
	if errors.Is(err, zenity.ErrCanceled) {
		return false, nil
	}
	return err == nil, err
}

// Info shows a message box.
func (d Dialogs) Info(step, message string) error {
	return zenity.Info(message, d.title(step), zenity.InfoIcon)
}
