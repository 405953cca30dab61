// Package logging wraps sirupsen/logrus behind the same small surface the
// original file-maintenance tool exposed, so call sites elsewhere in this
// module don't need to know logrus is underneath. Grounded on
// internal/logging/logger.go's original shape (LogSettings, level-gate
// config, daily rolling files, COUNT/ERROR side files). Lines are
// formatted through a logrus formatter; level gating and the writing of
// stdout and the daily files are done by this package itself.
package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// LogSettings controls where logs go.
//
// Modes:
// - NoLogs=true  => console-only (stdout). No log files are created.
// - NoLogs=false => write logs to files under LogDir.
type LogSettings struct {
	NoLogs bool
	LogDir string
}

// customLevel names the two levels logrus doesn't have natively but the
// original logger did: SUCCESS and COUNT. Both are logged at logrus's
// InfoLevel internally, tagged with a "level_name" field so the formatter
// and file hooks can still tell them apart.
type customLevel string

const (
	levelSuccess customLevel = "SUCCESS"
	levelCount   customLevel = "COUNT"
)

// Logger is a goroutine-safe logger backed by one *logrus.Logger per
// instance, matching the original's "single shared instance across the
// app" usage pattern.
type Logger struct {
	ConfigDir string

	settings LogSettings
	levels   map[string]bool

	base *logrus.Logger
	mu   sync.Mutex
}

// New initializes a Logger. It reads configDir/logging.json (if present)
// to determine enabled log levels, then wires a logrus.Logger used to
// format lines. Log prints each line to stdout (NoLogs) or appends it to
// daily rolling files under settings.LogDir.
func New(configDir string, settings LogSettings) (*Logger, error) {
	levels, err := loadLevels(configDir)
	if err != nil {
		return nil, err
	}

	if !settings.NoLogs {
		if settings.LogDir == "" {
			return nil, fmt.Errorf("log dir is empty (settings.LogDir)")
		}
		if err := os.MkdirAll(settings.LogDir, os.ModePerm); err != nil {
			return nil, fmt.Errorf("create log directory: %w", err)
		}
	}

	base := logrus.New()
	base.SetFormatter(&lineFormatter{})
	base.SetLevel(logrus.DebugLevel) // level gating happens in Enabled/Log, not logrus

	l := &Logger{
		ConfigDir: configDir,
		settings:  settings,
		levels:    levels,
		base:      base,
	}

	if settings.NoLogs {
		base.SetOutput(os.Stdout)
	} else {
		base.SetOutput(io.Discard) // actual writing goes through Log, which rotates daily files itself
	}

	return l, nil
}

// lineFormatter reproduces the original plain-text line shape:
// "[MM/DD/YY HH:MM:SS] [LEVEL] -> message".
type lineFormatter struct{}

func (f *lineFormatter) Format(e *logrus.Entry) ([]byte, error) {
	name, _ := e.Data["level_name"].(string)
	if name == "" {
		name = strings.ToUpper(e.Level.String())
	}
	line := fmt.Sprintf("[%s] [%s] -> %s\n", e.Time.Format("01/02/06 15:04:05"), name, e.Message)
	return []byte(line), nil
}

func loadLevels(configDir string) (map[string]bool, error) {
	path := filepath.Join(configDir, "logging.json")

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return map[string]bool{
				"DEBUG":   false,
				"COUNT":   true,
				"INFO":    true,
				"WARN":    true,
				"ERROR":   true,
				"SUCCESS": true,
				"FATAL":   true,
			}, nil
		}
		return nil, fmt.Errorf("stat logging config: %w", err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read logging config: %w", err)
	}

	var levels map[string]bool
	if err := json.Unmarshal(b, &levels); err != nil {
		return nil, fmt.Errorf("parse logging config: %w", err)
	}
	return levels, nil
}

// Enabled returns whether a log level is enabled; an unknown level is
// fail-open (enabled), so a newly introduced level isn't silently dropped
// until logging.json catches up.
func (l *Logger) Enabled(level string) bool {
	level = strings.ToUpper(strings.TrimSpace(level))
	enabled, ok := l.levels[level]
	if ok && !enabled {
		return false
	}
	return true
}

// Log formats one line through logrus's formatter, then prints it to
// stdout (NoLogs) or appends it to the daily main/count/error files the
// original tool produced.
func (l *Logger) Log(level, msg string) {
	level = strings.ToUpper(strings.TrimSpace(level))
	if !l.Enabled(level) {
		return
	}

	entry := l.base.WithField("level_name", level)
	line := formatLine(entry, msg)

	if l.settings.NoLogs {
		fmt.Print(line)
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	date := time.Now().Format("2006-01-02")
	mainFile := filepath.Join(l.settings.LogDir, fmt.Sprintf("maintenance_%s.log", date))
	if err := appendLine(mainFile, line); err != nil {
		fmt.Printf("Error writing to log file: %v\n", err)
		return
	}

	if level == string(levelCount) {
		countFile := filepath.Join(l.settings.LogDir, fmt.Sprintf("count_%s.log", date))
		if err := appendLine(countFile, line); err != nil {
			fmt.Printf("Error writing to count log file: %v\n", err)
		}
	}

	if level == "ERROR" {
		errorFile := filepath.Join(l.settings.LogDir, fmt.Sprintf("errors_%s.log", date))
		if err := appendLine(errorFile, line); err != nil {
			fmt.Printf("Error writing to error log file: %v\n", err)
		}
	}
}

func formatLine(entry *logrus.Entry, msg string) string {
	entry.Message = msg
	entry.Time = time.Now()
	b, err := entry.Logger.Formatter.Format(entry)
	if err != nil {
		return fmt.Sprintf("[%s] -> %s\n", entry.Time.Format("01/02/06 15:04:05"), msg)
	}
	return string(b)
}

func appendLine(path, line string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.WriteString(line)
	return err
}

func (l *Logger) Debug(msg string)   { l.Log("DEBUG", msg) }
func (l *Logger) Info(msg string)    { l.Log("INFO", msg) }
func (l *Logger) Warn(msg string)    { l.Log("WARN", msg) }
func (l *Logger) Error(msg string)   { l.Log("ERROR", msg) }
func (l *Logger) Success(msg string) { l.Log(string(levelSuccess), msg) }
func (l *Logger) Count(msg string)   { l.Log(string(levelCount), msg) }

// Fatal logs the message and exits the process with code 1.
func (l *Logger) Fatal(msg string) { l.Log("FATAL", msg); os.Exit(1) }

func (l *Logger) Debugf(format string, args ...any)   { l.Debug(fmt.Sprintf(format, args...)) }
func (l *Logger) Infof(format string, args ...any)    { l.Info(fmt.Sprintf(format, args...)) }
func (l *Logger) Warnf(format string, args ...any)    { l.Warn(fmt.Sprintf(format, args...)) }
func (l *Logger) Errorf(format string, args ...any)   { l.Error(fmt.Sprintf(format, args...)) }
func (l *Logger) Successf(format string, args ...any) { l.Success(fmt.Sprintf(format, args...)) }
func (l *Logger) Countf(format string, args ...any)   { l.Count(fmt.Sprintf(format, args...)) }
func (l *Logger) Fatalf(format string, args ...any)   { l.Fatal(fmt.Sprintf(format, args...)) }
