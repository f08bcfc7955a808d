// Package logging configures the process-wide slog logger
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	slogzap "github.com/samber/slog-zap/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/navikt/roombook/internal/config"
)

// Backends
const (
	BackendStd = "std" // text handler, meant for local development
	BackendZap = "zap" // JSON through zap, meant for stage/prod
)

// New builds a logger for the given configuration writing to w.
// The backend defaults to std in dev and zap everywhere else.
func New(cfg config.LoggingConfig, w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}

	backend := strings.ToLower(cfg.Backend)
	if backend == "" {
		backend = BackendStd
		if cfg.Env != "" && cfg.Env != "dev" {
			backend = BackendZap
		}
	}

	var h slog.Handler
	switch backend {
	case BackendZap:
		h = newZapHandler(w, level)
	default:
		h = slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	}

	return slog.New(h.WithAttrs(commonAttrs(cfg)))
}

// Init builds a stdout logger and installs it as the slog default
func Init(cfg config.LoggingConfig) *slog.Logger {
	logger := New(cfg, os.Stdout)
	slog.SetDefault(logger)
	return logger
}

func newZapHandler(w io.Writer, level slog.Level) slog.Handler {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "ts"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	core := zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), zapcore.AddSync(w), toZapLevel(level))
	// sample bursts of identical messages
	core = zapcore.NewSamplerWithOptions(core, time.Second, 100, 10)

	return slogzap.Option{Level: level, Logger: zap.New(core)}.NewZapHandler()
}

func toZapLevel(lvl slog.Level) zapcore.Level {
	switch {
	case lvl <= slog.LevelDebug:
		return zapcore.DebugLevel
	case lvl == slog.LevelInfo:
		return zapcore.InfoLevel
	case lvl == slog.LevelWarn:
		return zapcore.WarnLevel
	default:
		return zapcore.ErrorLevel
	}
}

func commonAttrs(cfg config.LoggingConfig) []slog.Attr {
	return []slog.Attr{
		slog.String("service", cfg.Service),
		slog.String("env", cfg.Env),
		slog.String("version", cfg.Version),
		slog.String("instance_id", instanceID()),
	}
}

func instanceID() string {
	hn, _ := os.Hostname()
	return hn + "-" + uuid.NewString()[:8]
}
