package ui

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/TanaroSch/clipboard-anonymizer/internal/diffutil"
)

// diffFileLifetime is how long the rendered page stays on disk: long enough
// for a browser to load it.
const diffFileLifetime = time.Minute

// ShowDiffViewer renders the change from original to modified as HTML and
// opens it in the default browser.
func ShowDiffViewer(original, modified string, contextLines int, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	if contextLines <= 0 {
		contextLines = 3
	}

	page := diffutil.RenderHTML(diffutil.Compare(original, modified), contextLines)

	f, err := os.CreateTemp("", "clipdiff-*.html")
	if err != nil {
		return fmt.Errorf("could not create temporary file: %w", err)
	}
	path := f.Name()
	if _, err := f.WriteString(page); err != nil {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("could not write diff page: %w", err)
	}
	if err := f.Close(); err != nil {
		logger.Warn("Error closing diff page", zap.Error(err))
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	logger.Info("Diff view saved", zap.String("path", path))

	time.AfterFunc(diffFileLifetime, func() {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			logger.Warn("Error deleting diff page", zap.String("path", path), zap.Error(err))
		}
	})

	if err := OpenFileInDefaultApp(path); err != nil {
		return fmt.Errorf("could not open browser, page saved at %s: %w", path, err)
	}
	return nil
}
