package middlewares

import (
	"log/slog"
	"time"

	"github.com/dmitrymomot/postcard/internal"
)

// LoggingConfig configures the request logging middleware.
type LoggingConfig struct {
	// SkipPaths are not logged, e.g. health probes.
	SkipPaths map[string]bool
}

// LoggingOption configures LoggingConfig.
type LoggingOption func(*LoggingConfig)

// WithLoggingSkipPaths excludes exact request paths from logging.
func WithLoggingSkipPaths(paths ...string) LoggingOption {
	return func(cfg *LoggingConfig) {
		for _, p := range paths {
			cfg.SkipPaths[p] = true
		}
	}
}

// Logging logs one line per request with method, path, status, size and
// duration. 5xx responses log at error level and 4xx at warn. Handler errors
// are logged by the app error handler, not here.
func Logging(opts ...LoggingOption) internal.Middleware {
	cfg := &LoggingConfig{SkipPaths: map[string]bool{}}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			r := c.Request()
			if cfg.SkipPaths[r.URL.Path] {
				return next(c)
			}

			start := time.Now()
			err := next(c)

			status, size := 0, int64(0)
			if rw := c.ResponseWriter(); rw != nil {
				status, size = rw.Status(), rw.Size()
			}
			if !c.Written() {
				if httpErr := internal.AsHTTPError(err); httpErr != nil {
					status = httpErr.Code
				} else if err != nil {
					status = 500
				}
			}

			level := slog.LevelInfo
			switch {
			case status >= 500:
				level = slog.LevelError
			case status >= 400:
				level = slog.LevelWarn
			}

			c.Logger().Log(c, level, "http request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", status),
				slog.Int64("size", size),
				slog.Duration("duration", time.Since(start)),
			)
			return err
		}
	}
}
