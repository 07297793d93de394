// Package logger provides the process-wide structured logger.
package logger

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu    sync.Mutex
	sugar *zap.SugaredLogger
)

// Init builds the global logger at the given level ("debug", "info", "warn",
// "error"). Output is human-readable and goes to stderr so it never mixes
// with command output. Init may be called again to change the level.
func Init(level string) error {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return err
	}

	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	cfg.DisableStacktrace = true

	base, err := cfg.Build()
	if err != nil {
		return err
	}

	mu.Lock()
	defer mu.Unlock()
	sugar = base.Sugar()
	return nil
}

// Get returns the global sugared logger.
// If Init has not been called, it returns a logger that drops everything.
func Get() *zap.SugaredLogger {
	mu.Lock()
	defer mu.Unlock()
	if sugar == nil {
		sugar = zap.NewNop().Sugar()
	}
	return sugar
}

// Sync flushes any buffered log entries. Call this before application exit.
func Sync() {
	mu.Lock()
	defer mu.Unlock()
	if sugar != nil {
		_ = sugar.Sync()
	}
}
