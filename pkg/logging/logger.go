package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/gookit/slog"
	"github.com/gookit/slog/handler"
)

// Logger provides structured logging for pagekit components.
// All logs are written as JSON lines to a session-specific file in
// ~/.pagekit/logs/, one file shared by every component of a process.
type Logger struct {
	sessionID string
	component string
	file      *os.File
	logger    *slog.Logger
	logPath   string
	closeOnce sync.Once
}

// Fields carries structured key/value pairs for a single entry.
type Fields map[string]any

var (
	// Global session ID for the current execution
	sessionID     string
	sessionIDOnce sync.Once

	// logDir is the directory where log files are stored
	logDir string

	// initOnce ensures directory initialization happens once
	initOnce sync.Once

	// initErr stores any error from directory initialization
	initErr error

	levelMu sync.RWMutex
	level   = slog.InfoLevel
)

// SetLevel sets the minimum level for loggers created afterwards.
// Unknown names fall back to info.
func SetLevel(name string) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = "info"
	}

	levelMu.Lock()
	defer levelMu.Unlock()
	level = slog.LevelByName(name)
}

func currentLevels() slog.Levels {
	levelMu.RLock()
	defer levelMu.RUnlock()

	var levels slog.Levels
	for _, lv := range slog.AllLevels {
		if lv <= level {
			levels = append(levels, lv)
		}
	}
	return levels
}

// getSessionID returns or creates the session ID for this execution
func getSessionID() string {
	sessionIDOnce.Do(func() {
		sessionID = uuid.New().String()
	})
	return sessionID
}

// initLogDirectory ensures the log directory exists
func initLogDirectory() error {
	initOnce.Do(func() {
		if logDir == "" {
			homeDir, err := os.UserHomeDir()
			if err != nil {
				initErr = fmt.Errorf("failed to get home directory: %w", err)
				return
			}
			logDir = filepath.Join(homeDir, ".pagekit", "logs")
		}

		if err := os.MkdirAll(logDir, 0750); err != nil {
			initErr = fmt.Errorf("failed to create log directory: %w", err)
			return
		}
	})
	return initErr
}

// NewLogger creates a new logger for a specific component.
// The logger writes to ~/.pagekit/logs/<session-id>-pagekit.log
//
// If the log directory cannot be created or the log file cannot be opened,
// it returns a fallback logger that writes to stderr along with the error.
func NewLogger(component string) (*Logger, error) {
	if err := initLogDirectory(); err != nil {
		return newFallbackLogger(component, err), err
	}

	sessID := getSessionID()
	logPath := filepath.Join(logDir, fmt.Sprintf("%s-pagekit.log", sessID))

	// Append mode: every component of the session shares the file.
	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		err = fmt.Errorf("failed to open log file: %w", err)
		return newFallbackLogger(component, err), err
	}

	return &Logger{
		sessionID: sessID,
		component: component,
		file:      file,
		logger:    newSlog(file),
		logPath:   logPath,
	}, nil
}

// New returns a logger that writes to w. Intended for tests and for
// processes that log to stdout.
func New(component string, w io.Writer) *Logger {
	return &Logger{
		sessionID: getSessionID(),
		component: component,
		logger:    newSlog(w),
	}
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return New("nop", io.Discard)
}

// newFallbackLogger creates a logger that writes to stderr when file logging fails
func newFallbackLogger(component string, err error) *Logger {
	l := New(component, os.Stderr)
	l.Warnf("failed to initialize file logging: %v", err)
	l.Warnf("falling back to stderr logging")
	return l
}

func newSlog(w io.Writer) *slog.Logger {
	h := handler.NewIOWriterHandler(w, currentLevels())
	h.SetFormatter(slog.NewJSONFormatter(func(f *slog.JSONFormatter) {
		f.Fields = []string{
			slog.FieldKeyDatetime,
			slog.FieldKeyLevel,
			slog.FieldKeyMessage,
		}
		f.Aliases = slog.StringMap{
			slog.FieldKeyDatetime: "datetime",
			slog.FieldKeyLevel:    "level",
			slog.FieldKeyMessage:  "message",
		}
		f.TimeFormat = "2006-01-02T15:04:05.000"
	}))
	return slog.NewWithHandlers(h)
}

func (l *Logger) record(fields Fields) *slog.Record {
	m := slog.M{"component": l.component}
	for k, v := range fields {
		m[k] = v
	}
	return l.logger.WithFields(m)
}

// Debugf logs a debug-level message
func (l *Logger) Debugf(format string, v ...any) {
	l.record(nil).Debugf(format, v...)
}

// Infof logs an info-level message
func (l *Logger) Infof(format string, v ...any) {
	l.record(nil).Infof(format, v...)
}

// Warnf logs a warning-level message
func (l *Logger) Warnf(format string, v ...any) {
	l.record(nil).Warnf(format, v...)
}

// Errorf logs an error-level message
func (l *Logger) Errorf(format string, v ...any) {
	l.record(nil).Errorf(format, v...)
}

// InfoWithFields logs msg with additional structured fields.
func (l *Logger) InfoWithFields(msg string, fields Fields) {
	l.record(fields).Info(msg)
}

// ErrorWithFields logs msg at error level with additional structured fields.
func (l *Logger) ErrorWithFields(msg string, fields Fields) {
	l.record(fields).Error(msg)
}

// Component returns the component name
func (l *Logger) Component() string {
	return l.component
}

// SessionID returns the current session ID
func (l *Logger) SessionID() string {
	return l.sessionID
}

// LogPath returns the path to the log file, empty when not logging to a file.
func (l *Logger) LogPath() string {
	return l.logPath
}

// Close flushes and closes the log file. Safe to call multiple times.
func (l *Logger) Close() error {
	var err error
	l.closeOnce.Do(func() {
		_ = l.logger.Flush()
		if l.file != nil {
			err = l.file.Close()
		}
	})
	return err
}

// GetSessionID returns the current global session ID
func GetSessionID() string {
	return getSessionID()
}

// GetLogDirectory returns the directory where logs are stored
func GetLogDirectory() (string, error) {
	if err := initLogDirectory(); err != nil {
		return "", err
	}
	return logDir, nil
}
