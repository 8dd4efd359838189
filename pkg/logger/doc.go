// Package logger builds the service's slog logger: JSON to stdout, request-scoped
// attributes pulled from context, and optional Sentry forwarding.
//
// # Basic Usage
//
//	log := logger.New(cfg.Log, middlewares.RequestIDExtractor())
//	log.InfoContext(ctx, "postcard sent", slog.String("postcard_id", id))
//	// {"level":"INFO","msg":"postcard sent","postcard_id":"...","request_id":"..."}
//
// Context extractors run on every log call, so values stored in the request
// context (such as the request ID) are attached without passing them around.
//
// # Sentry
//
// Setting SENTRY_DSN forwards warnings and errors to Sentry in addition to
// stdout; errors become Sentry issues. Without a DSN, or if the SDK fails to
// initialise, logging stays local. Call Flush before the process exits.
//
// # Levels
//
// LOG_LEVEL accepts debug, info, warn and error. Unknown values mean info.
package logger
