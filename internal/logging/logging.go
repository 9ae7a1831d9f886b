// Package logging configures the process-wide structured logger.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"time"

	"github.com/google/uuid"
)

// Logger is shared by all packages. Until Initialize runs it writes warnings
// to stderr so recoverable problems are never silently dropped.
var Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

// Options controls Initialize.
type Options struct {
	Debug       bool
	DebugFile   string
	MaxLogFiles int
	// Stderr overrides os.Stderr, mainly for tests.
	Stderr io.Writer
}

// Initialize sets up Logger.
//
// Without debug, warnings go to stderr as text. With debug, everything from
// DEBUG up is written as JSON to DebugFile, or to a fresh file in the state
// directory when DebugFile is empty.
func Initialize(opts Options) error {
	if os.Getenv("BURNLINE_DEBUG") == "1" {
		opts.Debug = true
	}
	if env := os.Getenv("BURNLINE_DEBUG_FILE"); env != "" && opts.DebugFile == "" {
		opts.DebugFile = env
	}
	stderr := opts.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}

	if !opts.Debug && opts.DebugFile == "" {
		Logger = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
		return nil
	}

	logFilePath := opts.DebugFile
	if logFilePath == "" {
		logDir, err := logDir()
		if err != nil {
			return fmt.Errorf("resolving log directory: %w", err)
		}
		if err := os.MkdirAll(logDir, 0o750); err != nil {
			return fmt.Errorf("creating log directory: %w", err)
		}
		if opts.MaxLogFiles > 0 {
			if err := rotateLogs(logDir, opts.MaxLogFiles); err != nil {
				fmt.Fprintf(stderr, "Warning: log rotation failed: %v\n", err)
			}
		}
		logFilePath = filepath.Join(logDir, uuid.New().String()+".log")
	} else if err := os.MkdirAll(filepath.Dir(logFilePath), 0o750); err != nil {
		return fmt.Errorf("creating log directory: %w", err)
	}

	f, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600) //nolint:gosec // path from flag or state dir
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}

	Logger = slog.New(slog.NewJSONHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}))
	Logger.Debug("debug logging initialized", "log_file", logFilePath)
	return nil
}

// rotateLogs keeps at most maxFiles-1 .log files so the next one fits.
func rotateLogs(dir string, maxFiles int) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading log directory: %w", err)
	}

	type logFile struct {
		path    string
		modTime time.Time
	}
	var files []logFile
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".log" {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		files = append(files, logFile{path: filepath.Join(dir, e.Name()), modTime: info.ModTime()})
	}
	if len(files) < maxFiles {
		return nil
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].modTime.Before(files[j].modTime)
	})
	for _, f := range files[:len(files)-maxFiles+1] {
		_ = os.Remove(f.path)
	}
	return nil
}

func logDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Logs", "burnline"), nil
	case "windows":
		local := os.Getenv("LOCALAPPDATA")
		if local == "" {
			local = filepath.Join(home, "AppData", "Local")
		}
		return filepath.Join(local, "burnline", "logs"), nil
	default:
		state := os.Getenv("XDG_STATE_HOME")
		if state == "" {
			state = filepath.Join(home, ".local", "state")
		}
		return filepath.Join(state, "burnline"), nil
	}
}
