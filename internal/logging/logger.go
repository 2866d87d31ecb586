package logging

import (
	"log/slog"
	"os"

	"gorm.io/gorm"
)

// Setup initializes the global slog logger with JSON output to stdout.
func Setup() {
	slog.SetDefault(slog.New(stdoutHandler()))
}

// WithDatabase makes the default logger also persist ERROR+ records. The
// returned handler must be stopped on shutdown.
func WithDatabase(db *gorm.DB) *DBHandler {
	dbHandler := NewDBHandler(db, flushInterval)
	slog.SetDefault(slog.New(NewMultiHandler(stdoutHandler(), dbHandler)))
	return dbHandler
}

func stdoutHandler() slog.Handler {
	return slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
}
