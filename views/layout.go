package views

import (
	"context"
	"io"
	"strings"

	"github.com/a-h/templ"
)

// layout wraps body in the document shell.
func layout(title string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		head := `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>` + templ.EscapeString(title) + `</title>
  <link rel="stylesheet" href="/static/style.css">
  <script src="https://unpkg.com/htmx.org@2.0.4" defer></script>
</head>
<body>
  <main class="container">
    <h1>📮 Send a Postcard</h1>
    <div id="alerts" aria-live="polite"></div>
`
		if _, err := io.WriteString(w, head); err != nil {
			return err
		}
		if err := body.Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, "\n  </main>\n</body>\n</html>\n")
		return err
	})
}

// markup accumulates a component's HTML before it is written out.
type markup struct {
	strings.Builder
}

// raw writes trusted markup.
func (m *markup) raw(parts ...string) {
	for _, p := range parts {
		m.WriteString(p)
	}
}

// text writes escaped text.
func (m *markup) text(s string) {
	m.WriteString(templ.EscapeString(s))
}

func (m *markup) flush(w io.Writer) error {
	_, err := io.WriteString(w, m.String())
	return err
}
