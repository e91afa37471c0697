package logging

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

type ctxKey string

// RunIDKey carries the per-invocation run id used to correlate log lines.
const RunIDKey ctxKey = "run_id"

// Loggers start as no-ops so packages can log before InitLogger runs (tests, library use).
var (
	AppLogger     = zap.NewNop()
	RequestLogger = zap.NewNop()
	TimerLogger   = zap.NewNop()
	ErrorLogger   = zap.NewNop()
)

type Options struct {
	Dir   string
	Level string
	// Console mirrors app and error logs to stderr. stdout is never used:
	// the MCP transport owns it.
	Console bool
}

// ensureLogsDir makes sure the log folder exists
func ensureLogsDir(dir string) error {
	return os.MkdirAll(dir, os.ModePerm)
}

func InitLogger(opts Options) error {
	if opts.Dir == "" {
		opts.Dir = "./logs"
	}
	if err := ensureLogsDir(opts.Dir); err != nil {
		return err
	}

	level := zap.NewAtomicLevelAt(zap.InfoLevel)
	if opts.Level != "" {
		if err := level.UnmarshalText([]byte(opts.Level)); err != nil {
			level.SetLevel(zap.InfoLevel)
		}
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoder := zapcore.NewJSONEncoder(encoderConfig)

	consoleConfig := zap.NewDevelopmentEncoderConfig()
	consoleConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	console := zapcore.NewCore(zapcore.NewConsoleEncoder(consoleConfig), zapcore.Lock(os.Stderr), level)

	fileCore := func(name string, maxSize, maxAge int, lvl zapcore.LevelEnabler) zapcore.Core {
		return zapcore.NewCore(encoder,
			zapcore.AddSync(&lumberjack.Logger{
				Filename: filepath.Join(opts.Dir, name), MaxSize: maxSize, MaxAge: maxAge, Compress: true,
			}),
			lvl,
		)
	}

	// app.log (general logs)
	appCore := fileCore("app.log", 100, 28, level)
	// error.log
	errorCore := fileCore("error.log", 100, 30, zap.ErrorLevel)
	if opts.Console {
		appCore = zapcore.NewTee(appCore, console)
		errorCore = zapcore.NewTee(errorCore, console)
	}

	AppLogger = zap.New(appCore)
	ErrorLogger = zap.New(errorCore, zap.AddStacktrace(zap.ErrorLevel))
	RequestLogger = zap.New(fileCore("request.log", 50, 7, zap.InfoLevel))
	TimerLogger = zap.New(fileCore("timer.log", 50, 7, zap.InfoLevel))
	return nil
}

// Sync flushes every logger; call it on shutdown.
func Sync() {
	for _, l := range []*zap.Logger{AppLogger, RequestLogger, TimerLogger, ErrorLogger} {
		_ = l.Sync()
	}
}

// WithRunID stores a run id on ctx for LogDuration and RunFields.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, RunIDKey, runID)
}

// RunFields returns the run id field for ctx, if any.
func RunFields(ctx context.Context) []zap.Field {
	if runID, _ := ctx.Value(RunIDKey).(string); runID != "" {
		return []zap.Field{zap.String("run_id", runID)}
	}
	return nil
}

// LogDuration lets you do: defer logging.LogDuration(ctx, "FuncName")()
func LogDuration(ctx context.Context, name string) func() {
	start := time.Now()

	return func() {
		duration := time.Since(start).Milliseconds()
		fields := []zap.Field{
			zap.String("func", name),
			zap.Int64("duration_ms", duration),
		}
		fields = append(fields, RunFields(ctx)...)

		// write ONLY to timer.log
		TimerLogger.Info("Function timed", fields...)
	}
}
