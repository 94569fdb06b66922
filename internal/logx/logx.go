package logx

import (
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu   sync.RWMutex
	base = newLogger("info", useColor())
)

// detecta color mode
func useColor() bool {
	return os.Getenv("APP_ENV") == "local" || os.Getenv("APP_ENV") == "dev"
}

func newLogger(level string, color bool) *zap.Logger {
	lvl, err := zapcore.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		lvl = zapcore.InfoLevel
	}

	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.TimeKey = "ts"
	encCfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000")
	encCfg.CallerKey = ""
	if color {
		encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	}

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encCfg),
		zapcore.Lock(os.Stderr),
		lvl,
	)
	return zap.New(core)
}

// Init rebuilds the process logger for the given level ("debug", "info", "warn", "error").
func Init(level string) {
	SetLogger(newLogger(level, useColor()))
}

// SetLogger replaces the backend and returns a func restoring the previous one.
func SetLogger(l *zap.Logger) (restore func()) {
	mu.Lock()
	prev := base
	base = l
	mu.Unlock()
	return func() {
		mu.Lock()
		base = prev
		mu.Unlock()
	}
}

// Sync flushes buffered entries.
func Sync() {
	mu.RLock()
	l := base
	mu.RUnlock()
	_ = l.Sync()
}

func sugar(component string, fields ...any) *zap.SugaredLogger {
	mu.RLock()
	l := base
	mu.RUnlock()
	return l.Sugar().With(append([]any{"component", component}, fields...)...)
}

// --- Public API ---

func Debug(component, msg string, args ...any) {
	sugar(component).Debugf(msg, args...)
}

func Info(component, msg string, args ...any) {
	sugar(component).Infof(msg, args...)
}

func Warn(component, msg string, args ...any) {
	sugar(component).Warnf(msg, args...)
}

func Error(component, msg string, args ...any) {
	sugar(component).Errorf(msg, args...)
}

// L logs at info level tagged with a run id.
func L(id, component, msg string, args ...any) {
	sugar(component, "run_id", id).Infof(msg, args...)
}

// LW is L at warn level.
func LW(id, component, msg string, args ...any) {
	sugar(component, "run_id", id).Warnf(msg, args...)
}
