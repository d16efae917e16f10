// Package logger configures the process-wide slog logger.
package logger

import (
	"io"
	"log/slog"
	"strings"

	"github.com/getsentry/sentry-go"
	slogmulti "github.com/samber/slog-multi"
	slogsentry "github.com/samber/slog-sentry/v2"
)

// Options selects the log format, level and optional Sentry reporting.
type Options struct {
	Dev       bool
	Level     string
	SentryDSN string
}

// ParseLevel maps a LOG_LEVEL value to a slog level. Empty or unknown
// values fall back to def.
func ParseLevel(s string, def slog.Level) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return def
	}
}

// New builds a logger writing text (development) or JSON (production) to w.
// When a Sentry DSN is given, error records are also sent to Sentry.
func New(w io.Writer, opts Options) *slog.Logger {
	def := slog.LevelInfo
	if opts.Dev {
		def = slog.LevelDebug
	}
	handlerOpts := &slog.HandlerOptions{Level: ParseLevel(opts.Level, def)}

	var handlers []slog.Handler
	if opts.Dev {
		handlers = append(handlers, slog.NewTextHandler(w, handlerOpts))
	} else {
		handlers = append(handlers, slog.NewJSONHandler(w, handlerOpts))
	}

	if opts.SentryDSN != "" {
		err := sentry.Init(sentry.ClientOptions{Dsn: opts.SentryDSN})
		if err == nil {
			handlers = append(handlers, slogsentry.Option{
				Level: slog.LevelError,
			}.NewSentryHandler())
		} else {
			slog.New(handlers[0]).Warn("sentry disabled", "error", err)
		}
	}

	if len(handlers) == 1 {
		return slog.New(handlers[0])
	}
	return slog.New(slogmulti.Fanout(handlers...))
}

// Init installs a logger built by New as the slog default.
func Init(w io.Writer, opts Options) *slog.Logger {
	log := New(w, opts)
	slog.SetDefault(log)
	return log
}
