package sanitizer

import (
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	strictPolicy *bluemonday.Policy
	initOnce     sync.Once
)

func initPolicies() {
	initOnce.Do(func() {
		strictPolicy = bluemonday.StrictPolicy()
	})
}

// StripHTML removes every HTML element, script and style body from s and
// returns plain text with entities decoded. Use it on user text before it
// is interpolated into an email or page template.
func StripHTML(s string) string {
	if s == "" {
		return ""
	}
	initPolicies()
	return html.UnescapeString(strictPolicy.Sanitize(s))
}

// PlainText is StripHTML followed by trimming, for single-line fields such as names.
func PlainText(s string) string {
	return strings.TrimSpace(StripHTML(s))
}
