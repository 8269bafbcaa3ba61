package main

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/san-kum/swingsim/internal/config"
)

// newLogger builds a production JSON logger in production and a console
// logger otherwise.
func newLogger(env *config.Env) (*zap.Logger, error) {
	var cfg zap.Config
	if env.Production() {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
	}

	level, err := zapcore.ParseLevel(env.LogLevel)
	if err != nil {
		level = zapcore.InfoLevel
	}
	cfg.Level = zap.NewAtomicLevelAt(level)

	return cfg.Build()
}
