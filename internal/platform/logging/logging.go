package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Config captures logging configuration options.
type Config struct {
	Level    string
	Dir      string
	Filename string
}

var (
	colorReset = "\x1b[0m"
	colorTime  = "\x1b[90m" // timestamp: grey
	colorDebug = "\x1b[36m" // DEBUG: cyan
	colorInfo  = "\x1b[32m" // INFO: green
	colorWarn  = "\x1b[33m" // WARN: yellow
	colorError = "\x1b[31m" // ERROR: red
)

// Module tag colors for console output.
var moduleColors = map[string]string{
	"[boot]":    "\x1b[96m",
	"[http]":    "\x1b[95m",
	"[scanner]": "\x1b[92m",
	"[scan]":    "\x1b[94m",
	"[gateway]": "\x1b[34m",
	"[session]": "\x1b[35m",
	"[stats]":   "\x1b[36m",
	"[storage]": "\x1b[90m",
}

// consoleHandler renders human readable, colored log lines.
type consoleHandler struct {
	writer io.Writer
	level  slog.Level
	mu     sync.Mutex
}

func (h *consoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *consoleHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	timeStr := r.Time.Format("2006-01-02 15:04:05.000")

	var levelColor string
	switch r.Level {
	case slog.LevelDebug:
		levelColor = colorDebug
	case slog.LevelInfo:
		levelColor = colorInfo
	case slog.LevelWarn:
		levelColor = colorWarn
	case slog.LevelError:
		levelColor = colorError
	default:
		levelColor = colorReset
	}

	msg := r.Message
	var output string
	if tagColor, ok := tagColor(msg); ok {
		output = fmt.Sprintf("%s[%s]%s %s%s%s",
			colorTime, timeStr, colorReset,
			tagColor, msg, colorReset)
	} else {
		output = fmt.Sprintf("%s[%s]%s %s[%s]%s %s",
			colorTime, timeStr, colorReset,
			levelColor, r.Level.String(), colorReset,
			msg)
	}

	if r.NumAttrs() > 0 {
		output += " {"
		r.Attrs(func(a slog.Attr) bool {
			output += fmt.Sprintf(" %s=%v", a.Key, a.Value)
			return true
		})
		output += " }"
	}
	output += "\n"

	_, err := h.writer.Write([]byte(output))
	return err
}

func (h *consoleHandler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h *consoleHandler) WithGroup(string) slog.Handler      { return h }

func tagColor(msg string) (string, bool) {
	for tag, color := range moduleColors {
		if strings.HasPrefix(msg, tag) {
			return color, true
		}
	}
	return "", false
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Logger writes colored text to the console and JSON lines to a file.
type Logger struct {
	console *slog.Logger
	file    *slog.Logger
	logFile *os.File
}

// New creates a Logger. The file sink is optional; an empty Dir keeps
// logging console-only.
func New(cfg Config) (*Logger, error) {
	level := parseLevel(cfg.Level)

	l := &Logger{
		console: slog.New(&consoleHandler{writer: os.Stdout, level: level}),
	}

	if cfg.Dir != "" {
		if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
			return nil, fmt.Errorf("create log dir: %w", err)
		}
		name := cfg.Filename
		if name == "" {
			name = "tixgate.log"
		}
		f, err := os.OpenFile(
			filepath.Join(cfg.Dir, name),
			os.O_CREATE|os.O_WRONLY|os.O_APPEND,
			0o644,
		)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		l.logFile = f
		l.file = slog.New(slog.NewJSONHandler(f, &slog.HandlerOptions{Level: level}))
	}

	return l, nil
}

// Slog exposes the console structured logger for integrations that want
// the slog API directly.
func (l *Logger) Slog() *slog.Logger {
	return l.console
}

func (l *Logger) log(level slog.Level, tag, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if tag != "" {
		msg = tag + " " + msg
	}
	l.console.Log(context.Background(), level, msg)
	if l.file != nil {
		l.file.Log(context.Background(), level, msg)
	}
}

func (l *Logger) Debug(format string, args ...any) { l.log(slog.LevelDebug, "", format, args...) }
func (l *Logger) Info(format string, args ...any)  { l.log(slog.LevelInfo, "", format, args...) }
func (l *Logger) Warn(format string, args ...any)  { l.log(slog.LevelWarn, "", format, args...) }
func (l *Logger) Error(format string, args ...any) { l.log(slog.LevelError, "", format, args...) }

// Tagged variants prefix the message with a module tag so the console
// handler can color whole subsystems consistently.
func (l *Logger) DebugTag(tag, format string, args ...any) {
	l.log(slog.LevelDebug, "["+tag+"]", format, args...)
}

func (l *Logger) InfoTag(tag, format string, args ...any) {
	l.log(slog.LevelInfo, "["+tag+"]", format, args...)
}

func (l *Logger) WarnTag(tag, format string, args ...any) {
	l.log(slog.LevelWarn, "["+tag+"]", format, args...)
}

func (l *Logger) ErrorTag(tag, format string, args ...any) {
	l.log(slog.LevelError, "["+tag+"]", format, args...)
}

// Close flushes and releases the file sink.
func (l *Logger) Close() {
	if l.logFile != nil {
		_ = l.logFile.Sync()
		_ = l.logFile.Close()
		l.logFile = nil
		l.file = nil
	}
}

// Timestamp helper shared by transports that print their own banner lines.
func Timestamp() string {
	return time.Now().Format("2006-01-02 15:04:05.000")
}
