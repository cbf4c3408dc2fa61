// Package logger provides structured logging shared by the client, the search
// service and the ingestion tool.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
)

// Logger wraps slog.Logger with the event helpers used across the module.
type Logger struct {
	*slog.Logger
}

// New creates a logger writing to stdout. Development environments get a
// text handler at debug level, everything else JSON at info level.
func New(env string) *Logger {
	return NewWithWriter(env, os.Stdout)
}

func NewWithWriter(env string, w io.Writer) *Logger {
	var handler slog.Handler

	opts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}

	if strings.EqualFold(env, "development") {
		opts.Level = slog.LevelDebug
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}

	return &Logger{
		Logger: slog.New(handler),
	}
}

// Nop returns a logger that discards everything. Handy in tests.
func Nop() *Logger {
	return &Logger{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

func (l *Logger) WithRequestID(requestID string) *Logger {
	return &Logger{
		Logger: l.With(slog.String("request_id", requestID)),
	}
}

func (l *Logger) HTTPRequest(method, path string, status int, latency time.Duration, clientIP string) {
	l.Info("http_request",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", status),
		slog.Float64("latency_ms", float64(latency.Microseconds())/1000),
		slog.String("client_ip", clientIP),
	)
}

func (l *Logger) SearchSubmitted(token uint64, query string, radiusKm float64) {
	l.Debug("search_submitted",
		slog.Uint64("token", token),
		slog.String("query", query),
		slog.Float64("radius_km", radiusKm),
	)
}

// SearchResolved logs the outcome of a submission. err is nil on success.
func (l *Logger) SearchResolved(token uint64, results int, err error) {
	if err != nil {
		l.Warn("search_failed",
			slog.Uint64("token", token),
			slog.String("error", err.Error()),
		)
		return
	}
	l.Debug("search_succeeded",
		slog.Uint64("token", token),
		slog.Int("results", results),
	)
}

func (l *Logger) StaleResponse(token, latest uint64) {
	l.Info("stale_search_response_discarded",
		slog.Uint64("token", token),
		slog.Uint64("latest_token", latest),
	)
}

func (l *Logger) RateLimitExceeded(clientIP, path string) {
	l.Warn("rate_limit_exceeded",
		slog.String("client_ip", clientIP),
		slog.String("path", path),
	)
}
