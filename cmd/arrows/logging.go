package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var logFile io.Closer

// resolveLogLevel picks the level from the flag, then the environment, then
// the config file.
func resolveLogLevel(flagValue string, flagChanged bool, env string, file *string) string {
	if flagChanged {
		return flagValue
	}
	if env = strings.TrimSpace(env); env != "" {
		return env
	}
	if file != nil && strings.TrimSpace(*file) != "" {
		return *file
	}
	return flagValue
}

// setupLogging points the global logger at a file so the alt screen stays clean.
func setupLogging(level, path string) error {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	zerolog.SetGlobalLevel(lvl)

	out, err := openLogFile(path)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "logging disabled: %v\n", err)
		log.Logger = zerolog.Nop()
		return nil
	}
	closeLogging()
	logFile = out
	log.Logger = zerolog.New(zerolog.ConsoleWriter{
		Out:        out,
		NoColor:    true,
		TimeFormat: time.RFC3339,
	}).With().Timestamp().Logger()
	return nil
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return f, nil
}

func closeLogging() {
	if logFile == nil {
		return
	}
	if err := logFile.Close(); err != nil {
		// Best-effort close of the log file.
		_ = err
	}
	logFile = nil
}
