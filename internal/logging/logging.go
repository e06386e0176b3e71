// Package logging builds the process logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
)

// New returns a logger writing to w (stderr when nil) at the given level.
// An empty level means warn.
func New(level string, w io.Writer) (*log.Logger, error) {
	if w == nil {
		w = os.Stderr
	}
	if strings.TrimSpace(level) == "" {
		level = "warn"
	}

	lvl, err := log.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	logger := log.NewWithOptions(w, log.Options{
		Level:           lvl,
		ReportTimestamp: lvl == log.DebugLevel,
		Prefix:          "tend",
	})
	return logger, nil
}
