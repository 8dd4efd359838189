package htmx

import "net/http"

// RedirectWithStatus redirects regular requests with status and HTMX
// requests with an HX-Redirect header and 200, since HTMX ignores 3xx.
func RedirectWithStatus(w http.ResponseWriter, r *http.Request, targetURL string, status int) {
	if IsHTMX(r) {
		w.Header().Set(HeaderHXRedirect, targetURL)
		w.WriteHeader(http.StatusOK)
		return
	}

	http.Redirect(w, r, targetURL, status)
}
