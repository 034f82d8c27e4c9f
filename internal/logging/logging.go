package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/tessro/lookout/internal/config"
)

// Mode selects where log output goes.
type Mode int

const (
	// ModeConsole writes human readable lines to stderr, and to the log
	// file as well when one is configured.
	ModeConsole Mode = iota
	// ModeFile writes only to the log file. Used while the terminal UI owns
	// the screen.
	ModeFile
)

// DefaultFile returns the log file used when none is configured.
func DefaultFile() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "lookout.log")
	}
	return filepath.Join(dir, "lookout", "lookout.log")
}

// ParseLevel maps a config level name to a zerolog level.
func ParseLevel(level string) zerolog.Level {
	switch level {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// Setup configures the global logger. The returned closer releases the log
// file, if one was opened, and is never nil.
func Setup(cfg config.LogConfig, mode Mode) (io.Closer, error) {
	zerolog.SetGlobalLevel(ParseLevel(cfg.Level))
	zerolog.TimeFieldFormat = time.RFC3339Nano

	path := cfg.File
	if path == "" && mode == ModeFile {
		path = DefaultFile()
	}

	var file *os.File
	if path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nopCloser{}, fmt.Errorf("failed to create log directory: %w", err)
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nopCloser{}, fmt.Errorf("failed to open log file: %w", err)
		}
		file = f
	}

	var out io.Writer
	switch {
	case mode == ModeFile:
		out = file
	case file != nil:
		out = zerolog.MultiLevelWriter(consoleWriter(os.Stderr), file)
	default:
		out = consoleWriter(os.Stderr)
	}

	log.Logger = zerolog.New(out).With().Timestamp().Logger()

	if file == nil {
		return nopCloser{}, nil
	}
	return file, nil
}

func consoleWriter(w io.Writer) zerolog.ConsoleWriter {
	return zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
