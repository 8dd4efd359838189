package views

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// ErrorPage is a full error page.
func ErrorPage(v ErrorView) templ.Component {
	return layout(v.Title(), templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if err := ErrorAlert(v).Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, `    <p><a href="/">Back to the form</a></p>`)
		return err
	}))
}

// ErrorAlert is the error box alone, for HTMX responses.
func ErrorAlert(v ErrorView) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		var m markup
		m.raw(`<div class="notice notice-error" role="alert">`, "\n", "  <strong>")
		m.text(v.Heading())
		m.raw("</strong>\n  <p>")
		m.text(v.Message)
		m.raw("</p>\n")
		if v.RequestID != "" {
			m.raw("  <small>Request ID: ")
			m.text(v.RequestID)
			m.raw("</small>\n")
		}
		m.raw("</div>\n")
		return m.flush(w)
	})
}
