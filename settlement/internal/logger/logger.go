package logger

import (
	"io"
	"log/slog"
	"os"

	"custody/settlement/internal/config"

	"github.com/golang-cz/devslog"
)

// Init builds the process logger and makes it the slog default.
func Init(config *config.Config) *slog.Logger {
	logger := New(os.Stdout, config.Prod_env)
	slog.SetDefault(logger)
	return logger
}

// New returns a JSON logger at info level for prod, a devslog logger at
// debug level otherwise.
func New(w io.Writer, prod bool) *slog.Logger {
	slogOpts := &slog.HandlerOptions{}

	if prod {
		slogOpts.Level = slog.LevelInfo
		return slog.New(slog.NewJSONHandler(w, slogOpts))
	}

	slogOpts.Level = slog.LevelDebug

	opts := &devslog.Options{
		HandlerOptions:    slogOpts,
		MaxSlicePrintSize: 4,
		SortKeys:          true,
		NewLineAfterLog:   true,
	}

	return slog.New(devslog.NewHandler(w, opts))
}

func TemplNatsError(l *slog.Logger, message, natsUrl string, err error) {
	l.Error(message, "component", "nats", "nats_url", natsUrl, "error", err)
}

func TemplNatsInfo(l *slog.Logger, message, natsUrl string) {
	l.Info(message, "component", "nats", "nats_url", natsUrl)
}

func TemplRequestError(l *slog.Logger, subject, code string, err error) {
	l.Warn("request failed", "component", "nats", "subject", subject, "code", code, "error", err)
}
