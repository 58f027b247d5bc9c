package logger

import (
	"log/slog"

	"go.uber.org/zap"
	"go.uber.org/zap/exp/zapslog"
	"go.uber.org/zap/zapcore"
)

// New creates a slog.Logger that writes zap's production JSON encoding.
// Unknown levels fall back to info.
func New(level string) *slog.Logger {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.Sampling = nil

	core := zapcore.NewNopCore()
	if z, err := cfg.Build(); err == nil {
		core = z.Core()
	}

	return slog.New(zapslog.NewHandler(core, zapslog.WithCaller(true)))
}
