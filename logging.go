package main

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	gap "github.com/muesli/go-app-paths"
)

// setupLog routes log output to a file when one is configured, keeping
// stdout clean for command output. Returns a closer for the log file.
func setupLog() (func() error, error) {
	log.SetOutput(os.Stderr)
	log.SetReportTimestamp(false)

	path := os.Getenv("VOICES_LOGFILE")
	if path == "" {
		return func() error { return nil }, nil
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}

	log.SetDefault(log.NewWithOptions(io.MultiWriter(os.Stderr, f), log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
	}))
	return f.Close, nil
}

// defaultLogPath is where the watch command suggests keeping a log.
func defaultLogPath() string {
	scope := gap.NewScope(gap.User, "voices")
	path, err := scope.LogPath("voices.log")
	if err != nil {
		return ""
	}
	return path
}
