// Package health provides liveness and readiness HTTP handlers.
//
// [LivenessHandler] always answers OK. [ReadinessHandler] runs named
// [Checks] in parallel with a shared timeout and answers 503 if any fails.
//
//	r.Get("/health/live", health.LivenessHandler())
//	r.Get("/health/ready", health.ReadinessHandler(health.Checks{
//		"assets": store.Ping,
//		"mailer": mailerConfigured,
//	}, health.WithLogger(log)))
//
// Responses are plain text ("OK" / "Service Unavailable") unless the client
// asks for JSON with ?format=json or Accept: application/json:
//
//	{"status":"unhealthy","checks":{"assets":{"status":"unhealthy","error":"..."}}}
//
// [Run] executes the same checks outside HTTP, for example at startup;
// [Response.Err] turns a failed result into an error matching ErrCheckFailed.
// Checks that fail after the timeout report ErrCheckTimeout.
package health
