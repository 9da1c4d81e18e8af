package logger

import (
	"log/slog"
	"os"
	"strings"

	"github.com/digimonpay/wallet-ledger/internal/config"
)

// NewLogger builds the process-wide JSON logger. An unrecognized level
// falls back to info; source locations are only attached at debug where
// the extra cost is acceptable.
func NewLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Logging.Level) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, opts))
	logger.Info("Logger ready", "level", level)

	return logger
}
