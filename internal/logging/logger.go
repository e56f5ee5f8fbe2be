// Package logging provides structured logging for gridwatch.
// It supports debug, info, warn, error levels with file rotation and cleanup.
package logging

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Level represents log severity levels.
type Level int

const (
	// LevelDebug is for detailed debugging information.
	LevelDebug Level = iota
	// LevelInfo is for informational messages.
	LevelInfo
	// LevelWarn is for warning messages.
	LevelWarn
	// LevelError is for error messages.
	LevelError
)

// String returns the string representation of the level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel maps a level name to a Level. Unknown names report false
// and fall back to info.
func ParseLevel(s string) (Level, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, true
	case "info":
		return LevelInfo, true
	case "warn", "warning":
		return LevelWarn, true
	case "error":
		return LevelError, true
	default:
		return LevelInfo, false
	}
}

// toZapLevel converts our Level to zapcore.Level.
func (l Level) toZapLevel() zapcore.Level {
	switch l {
	case LevelDebug:
		return zapcore.DebugLevel
	case LevelInfo:
		return zapcore.InfoLevel
	case LevelWarn:
		return zapcore.WarnLevel
	case LevelError:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// Config configures the logger.
type Config struct {
	// Level is the minimum log level to output.
	Level Level
	// LogDir is the directory to write log files (e.g., ".gridwatch/logs").
	LogDir string
	// MaxLogFiles is the maximum number of log files to keep.
	MaxLogFiles int
	// MaxLogAge is the maximum age of log files before cleanup.
	MaxLogAge time.Duration
	// Console enables logging to stderr in addition to file.
	Console bool
	// JSONFormat uses JSON output format for structured logs.
	JSONFormat bool
}

// DefaultConfig returns default logging configuration.
func DefaultConfig() *Config {
	return &Config{
		Level:       LevelInfo,
		LogDir:      ".gridwatch/logs",
		MaxLogFiles: 10,
		MaxLogAge:   7 * 24 * time.Hour, // 7 days
		Console:     false,
		JSONFormat:  false,
	}
}

// Logger is a structured logger for gridwatch built on zap.
type Logger struct {
	zl      *zap.Logger
	sugar   *zap.SugaredLogger
	config  *Config
	logFile *os.File
	logPath string
	mu      sync.Mutex
}

// buildCore assembles the zap core for the given sink and config.
func buildCore(config *Config, file zapcore.WriteSyncer) zapcore.Core {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var enc zapcore.Encoder
	if config.JSONFormat {
		enc = zapcore.NewJSONEncoder(encCfg)
	} else {
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		enc = zapcore.NewConsoleEncoder(encCfg)
	}

	level := zap.NewAtomicLevelAt(config.Level.toZapLevel())

	cores := []zapcore.Core{zapcore.NewCore(enc, file, level)}
	if config.Console {
		cores = append(cores, zapcore.NewCore(enc, zapcore.Lock(os.Stderr), level))
	}
	return zapcore.NewTee(cores...)
}

// New creates a new logger with the given configuration.
// It creates a log file in the configured log directory.
func New(config *Config) (*Logger, error) {
	if config == nil {
		config = DefaultConfig()
	}

	logger := &Logger{
		config: config,
	}

	// Create log directory if it doesn't exist
	if err := os.MkdirAll(config.LogDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	// Create log file with timestamp
	logPath := filepath.Join(config.LogDir, fmt.Sprintf("gridwatch_%s.log", time.Now().Format("20060102_150405")))
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to create log file: %w", err)
	}

	logger.logFile = logFile
	logger.logPath = logPath

	logger.zl = zap.New(buildCore(config, zapcore.AddSync(logFile)))
	logger.sugar = logger.zl.Sugar()

	// Run initial cleanup
	go logger.Cleanup()

	return logger, nil
}

// NewNoop creates a no-op logger that discards all output.
// Useful for testing or when logging is disabled.
func NewNoop() *Logger {
	zl := zap.NewNop()
	return &Logger{
		zl:     zl,
		sugar:  zl.Sugar(),
		config: DefaultConfig(),
	}
}

// LogPath returns the path to the current log file.
func (l *Logger) LogPath() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.logPath
}

// Close syncs and closes the log file.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	_ = l.zl.Sync()
	if l.logFile != nil {
		return l.logFile.Close()
	}
	return nil
}

// Zap returns the underlying zap logger for call sites that want typed fields.
func (l *Logger) Zap() *zap.Logger {
	return l.zl
}

// Debug logs a debug message with alternating key-value args.
func (l *Logger) Debug(msg string, args ...any) {
	l.sugar.Debugw(msg, args...)
}

// Info logs an info message with alternating key-value args.
func (l *Logger) Info(msg string, args ...any) {
	l.sugar.Infow(msg, args...)
}

// Warn logs a warning message with alternating key-value args.
func (l *Logger) Warn(msg string, args ...any) {
	l.sugar.Warnw(msg, args...)
}

// Error logs an error message with alternating key-value args.
func (l *Logger) Error(msg string, args ...any) {
	l.sugar.Errorw(msg, args...)
}

// With returns a new logger with the given attributes added.
func (l *Logger) With(args ...any) *Logger {
	sugar := l.sugar.With(args...)
	return &Logger{
		zl:      sugar.Desugar(),
		sugar:   sugar,
		config:  l.config,
		logFile: l.logFile,
		logPath: l.logPath,
	}
}

// WithContext logs with context values.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	sugar := l.sugar

	if frame, ok := ctx.Value(ContextKeyFrame).(string); ok && frame != "" {
		sugar = sugar.With("frame", frame)
	}
	if requestID, ok := ctx.Value(ContextKeyRequestID).(string); ok && requestID != "" {
		sugar = sugar.With("request_id", requestID)
	}

	return &Logger{
		zl:      sugar.Desugar(),
		sugar:   sugar,
		config:  l.config,
		logFile: l.logFile,
		logPath: l.logPath,
	}
}

// Context keys for logging.
type contextKey string

const (
	// ContextKeyFrame is the context key for the frame name.
	ContextKeyFrame contextKey = "frame"
	// ContextKeyRequestID is the context key for HTTP request correlation.
	ContextKeyRequestID contextKey = "request_id"
)

// WithFrame adds a frame name to the context.
func WithFrame(ctx context.Context, frame string) context.Context {
	return context.WithValue(ctx, ContextKeyFrame, frame)
}

// WithRequestID adds a request ID to the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}

// Writer returns an io.Writer that logs each line at the given level.
// Useful for capturing output from hook commands.
func (l *Logger) Writer(level Level) io.Writer {
	return &logWriter{
		logger: l,
		level:  level,
	}
}

// logWriter adapts the logger to io.Writer.
type logWriter struct {
	logger *Logger
	level  Level
	buf    []byte
}

// Write implements io.Writer, logging each complete line.
func (w *logWriter) Write(p []byte) (n int, err error) {
	w.buf = append(w.buf, p...)
	for {
		idx := indexOf(w.buf, '\n')
		if idx < 0 {
			break
		}
		line := string(w.buf[:idx])
		w.buf = w.buf[idx+1:]

		switch w.level {
		case LevelDebug:
			w.logger.Debug(line)
		case LevelInfo:
			w.logger.Info(line)
		case LevelWarn:
			w.logger.Warn(line)
		case LevelError:
			w.logger.Error(line)
		}
	}
	return len(p), nil
}

// Flush writes any remaining buffered data.
func (w *logWriter) Flush() {
	if len(w.buf) > 0 {
		line := string(w.buf)
		w.buf = nil
		switch w.level {
		case LevelDebug:
			w.logger.Debug(line)
		case LevelInfo:
			w.logger.Info(line)
		case LevelWarn:
			w.logger.Warn(line)
		case LevelError:
			w.logger.Error(line)
		}
	}
}

func indexOf(b []byte, c byte) int {
	for i, v := range b {
		if v == c {
			return i
		}
	}
	return -1
}

// Cleanup removes old log files based on MaxLogFiles and MaxLogAge.
func (l *Logger) Cleanup() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.config.LogDir == "" {
		return nil
	}

	entries, err := os.ReadDir(l.config.LogDir)
	if err != nil {
		return fmt.Errorf("failed to read log directory: %w", err)
	}

	// Collect log files with their info
	type logFileInfo struct {
		path    string
		modTime time.Time
	}
	var logFiles []logFileInfo

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		// Match gridwatch_*.log pattern
		if len(name) > 10 && name[:10] == "gridwatch_" && name[len(name)-4:] == ".log" {
			info, err := entry.Info()
			if err != nil {
				continue
			}
			logFiles = append(logFiles, logFileInfo{
				path:    filepath.Join(l.config.LogDir, name),
				modTime: info.ModTime(),
			})
		}
	}

	// Sort by modification time (newest first)
	sort.Slice(logFiles, func(i, j int) bool {
		return logFiles[i].modTime.After(logFiles[j].modTime)
	})

	now := time.Now()
	var removed int

	for i, lf := range logFiles {
		// Skip the current log file
		if lf.path == l.logPath {
			continue
		}

		// Remove if exceeds max count or max age
		shouldRemove := false
		if l.config.MaxLogFiles > 0 && i >= l.config.MaxLogFiles {
			shouldRemove = true
		}
		if l.config.MaxLogAge > 0 && now.Sub(lf.modTime) > l.config.MaxLogAge {
			shouldRemove = true
		}

		if shouldRemove {
			if err := os.Remove(lf.path); err == nil {
				removed++
			}
		}
	}

	if removed > 0 {
		l.sugar.Debugw("cleaned up old log files", "count", removed)
	}

	return nil
}

// Rotate closes the current log file and creates a new one.
// Useful for long-running sessions that want to start a fresh log.
func (l *Logger) Rotate() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	// Close existing file
	if l.logFile != nil {
		_ = l.zl.Sync()
		if err := l.logFile.Close(); err != nil {
			return fmt.Errorf("failed to close log file: %w", err)
		}
	}

	// Create new log file
	logPath := filepath.Join(l.config.LogDir, fmt.Sprintf("gridwatch_%s.log", time.Now().Format("20060102_150405")))
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}

	l.logFile = logFile
	l.logPath = logPath

	l.zl = zap.New(buildCore(l.config, zapcore.AddSync(logFile)))
	l.sugar = l.zl.Sugar()

	return nil
}
