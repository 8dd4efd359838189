// Package middlewares provides the HTTP middleware used by the postcard app.
//
// # Request ID
//
// RequestID reuses X-Request-ID or X-Correlation-ID from the client, or
// generates a UUIDv4, and echoes it in the X-Request-ID response header.
// RequestIDExtractor adds it to every log line:
//
//	log := logger.New(cfg.Log, middlewares.RequestIDExtractor())
//
// # Logging
//
// Logging writes one line per request with method, path, status, size and
// duration. Health probes can be skipped with WithLoggingSkipPaths.
//
// # Recover
//
// Recover converts panics into a 500 *internal.HTTPError whose cause is a
// *PanicError, so the error handler renders a generic page:
//
//	if pe, ok := middlewares.AsPanicError(err); ok {
//		c.LogError("panic", "value", pe.Value)
//	}
//
// Register them outermost first:
//
//	internal.WithMiddleware(
//		middlewares.RequestID(),
//		middlewares.Logging(middlewares.WithLoggingSkipPaths("/health/live", "/health/ready")),
//		middlewares.Recover(),
//	)
package middlewares
