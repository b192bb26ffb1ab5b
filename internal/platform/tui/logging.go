package tui

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
)

// NewFileLogger opens (appending) a log file for a terminal session. The
// screen belongs to Bubble Tea, so interactive commands never log to
// stderr. The returned closer closes the file.
func NewFileLogger(path string, level log.Level, prefix string) (*log.Logger, io.Closer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("cannot create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot open log file: %w", err)
	}
	logger := log.NewWithOptions(f, log.Options{
		ReportTimestamp: true,
		Level:           level,
		Prefix:          prefix,
	})
	return logger, f, nil
}
