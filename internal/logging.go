package internal

import (
	"io"
	"log/slog"

	"github.com/m-mizutani/clog"
)

// Log formats accepted in app.log_format.
const (
	LogFormatJSON    = "json"
	LogFormatConsole = "console"
)

// newLogger builds the process logger for cfg, writing to w.
func newLogger(cfg ApplicationConfig, w io.Writer) *slog.Logger {
	if cfg.LogFormat == LogFormatConsole {
		return slog.New(clog.New(
			clog.WithWriter(w),
			clog.WithLevel(cfg.LogLevel),
			clog.WithTimeFmt("15:04:05"),
			clog.WithSource(false),
		))
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
}
