// Package logger configures the process-wide zap logger.
package logger

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Init builds a logger for env and installs it as zap's global logger.
// Production environments get JSON output at info level; everything else
// gets the colored development console.
func Init(env string) error {
	var cfg zap.Config
	switch strings.ToLower(env) {
	case "prod", "production":
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.TimeKey = "time"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	default:
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	l, err := cfg.Build()
	if err != nil {
		return err
	}
	zap.ReplaceGlobals(l.With(zap.String("env", env)))
	return nil
}

// Sync flushes buffered entries.  Errors from syncing stderr on some
// platforms are ignored.
func Sync() {
	_ = zap.L().Sync()
}
