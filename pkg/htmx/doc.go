// Package htmx detects HTMX requests and sets HTMX response headers.
//
// The postcard form posts with hx-post and swaps the returned fragment, so
// the preview updates without a full page load. Without JavaScript the same
// routes return full pages.
//
//	if htmx.IsHTMX(r) {
//		cfg := htmx.NewConfig(htmx.WithRetarget("#postcard-form"), htmx.WithReswap(htmx.SwapOuterHTML))
//		cfg.ApplyHeaders(w)
//	}
//
// [RedirectWithStatus] answers HTMX requests with HX-Redirect instead of a 3xx.
package htmx
