// Package emails holds the email templates the service sends.
//
// Templates are markdown with YAML frontmatter and are rendered by
// mailer.Renderer into layouts/*.html.
package emails

import "embed"

// FS contains *.md templates and layouts/*.html.
//
//go:embed *.md layouts/*.html
var FS embed.FS
