// Package internal is the HTTP application core of the postcard service.
//
// # Core Types
//
//   - App: routing, middleware, error handling and graceful shutdown
//   - Context: request/response access and response helpers
//   - Router: the interface handlers use to declare routes
//   - Handler: types that declare routes on a router
//   - HandlerFunc: a route handler that returns an error
//   - Middleware: wraps handlers for request IDs, recovery and logging
//   - HTTPError: an error carrying status, user message and field errors
//
// # Context as context.Context
//
// Context embeds context.Context, so it can be passed straight to blocking
// calls such as the mailer:
//
//	func (h *Postcard) send(c internal.Context) error {
//		id, err := h.mailer.SendPostcard(c, delivery)
//		...
//	}
//
// # Application Structure
//
//	app := internal.New(
//		internal.WithLogger(log),
//		internal.WithMiddleware(middlewares.RequestID(), middlewares.Logging(), middlewares.Recover()),
//		internal.WithHandlers(handlers.NewPostcard(renderer, mailer, cfg)),
//		internal.WithHealthChecks(internal.WithReadinessCheck("assets", store.Ping)),
//		internal.WithErrorHandler(handlers.ErrorHandler),
//	)
//
//	err := app.Run(":8080", internal.ShutdownTimeout(10*time.Second))
//
// # Errors
//
// Handlers return errors instead of writing failure responses. An *HTTPError
// keeps its status code and user-facing message; anything else becomes a 500.
// The underlying cause is logged, never shown. Once a response has been
// written, later errors are only logged.
//
// # HTMX
//
// For requests with HX-Request: true, the ResponseWriter always sends 200 so
// HTMX swaps error fragments, while Status() still reports the real code for
// logging. Render options from pkg/htmx only apply to such requests.
package internal
