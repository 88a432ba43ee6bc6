// Package logger holds the process-wide sugared zap logger.
package logger

import (
	"sync"

	"go.uber.org/zap"
)

var (
	global *zap.SugaredLogger
	once   sync.Once
)

// Init builds the global logger once. "production" gets the JSON encoder,
// "test" gets a nop logger so test output stays readable, and everything
// else gets the console encoder.
func Init(env string) {
	once.Do(func() {
		global = build(env).Sugar()
	})
}

func build(env string) *zap.Logger {
	switch env {
	case "production":
		base, err := zap.NewProduction()
		if err != nil {
			return zap.NewNop()
		}
		return base
	case "test":
		return zap.NewNop()
	default:
		base, err := zap.NewDevelopment()
		if err != nil {
			return zap.NewNop()
		}
		return base
	}
}

// Get returns the global logger, initializing a development one when Init
// was never called.
func Get() *zap.SugaredLogger {
	if global == nil {
		Init("development")
	}
	return global
}

// Sync flushes buffered entries. Deferred from main.
func Sync() {
	if global != nil {
		_ = global.Sync()
	}
}
