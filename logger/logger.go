package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"goaltracker/config"

	"gopkg.in/natefinch/lumberjack.v2"
)

type contextKey string

const (
	RequestIDKey contextKey = "request_id"
	UsernameKey  contextKey = "username"
)

var defaultLogger *slog.Logger

// Init builds the process-wide logger from cfg and installs it as the slog default.
func Init(cfg config.LogConfig) error {
	writer, err := newWriter(cfg)
	if err != nil {
		return err
	}
	defaultLogger = New(writer, cfg.Format, parseLevel(cfg.Level))
	slog.SetDefault(defaultLogger)
	return nil
}

// New returns a logger writing to w in the given format ("json" or "text").
func New(w io.Writer, format string, level slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if format == "text" {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

func newWriter(cfg config.LogConfig) (io.Writer, error) {
	writers := []io.Writer{}

	if cfg.Output == "stdout" || cfg.Output == "both" || cfg.Output == "" {
		writers = append(writers, os.Stdout)
	}

	if cfg.Output == "file" || cfg.Output == "both" {
		if err := os.MkdirAll(filepath.Dir(cfg.FilePath), 0o755); err != nil {
			return nil, err
		}
		writers = append(writers, &lumberjack.Logger{
			Filename:   cfg.FilePath,
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge,
			Compress:   true,
		})
	}

	if len(writers) == 1 {
		return writers[0], nil
	}
	return io.MultiWriter(writers...), nil
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func GetLogger() *slog.Logger {
	if defaultLogger == nil {
		return slog.Default()
	}
	return defaultLogger
}

// FromContext returns the default logger annotated with the request id and
// acting username stored in ctx, when present.
func FromContext(ctx context.Context) *slog.Logger {
	l := GetLogger()
	if ctx == nil {
		return l
	}
	if requestID, ok := ctx.Value(RequestIDKey).(string); ok && requestID != "" {
		l = l.With("request_id", requestID)
	}
	if username, ok := ctx.Value(UsernameKey).(string); ok && username != "" {
		l = l.With("user", username)
	}
	return l
}

func ContextWithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

func ContextWithUsername(ctx context.Context, username string) context.Context {
	return context.WithValue(ctx, UsernameKey, username)
}

func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(RequestIDKey).(string); ok {
		return requestID
	}
	return ""
}

func Debug(msg string, args ...any) { GetLogger().Debug(msg, args...) }
func Info(msg string, args ...any)  { GetLogger().Info(msg, args...) }
func Warn(msg string, args ...any)  { GetLogger().Warn(msg, args...) }
func Error(msg string, args ...any) { GetLogger().Error(msg, args...) }

func DebugContext(ctx context.Context, msg string, args ...any) {
	FromContext(ctx).Debug(msg, args...)
}

func InfoContext(ctx context.Context, msg string, args ...any) {
	FromContext(ctx).Info(msg, args...)
}

func WarnContext(ctx context.Context, msg string, args ...any) {
	FromContext(ctx).Warn(msg, args...)
}

func ErrorContext(ctx context.Context, msg string, args ...any) {
	FromContext(ctx).Error(msg, args...)
}
