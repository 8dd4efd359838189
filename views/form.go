package views

import (
	"context"
	"io"
	"strconv"

	"github.com/a-h/templ"
)

// Page is the full form page.
func Page(v FormView) templ.Component {
	return layout(v.Title(), Form(v))
}

// Form is the form section alone, swapped in by HTMX.
func Form(v FormView) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		var m markup
		m.raw(`<section id="postcard">`, "\n")
		if v.Notice != "" {
			m.raw(`  <p class="notice notice-success" role="status">`)
			m.text(v.Notice)
			m.raw("</p>\n")
		}
		if v.Alert != "" {
			m.raw(`  <p class="notice notice-error" role="alert">`)
			m.text(v.Alert)
			m.raw("</p>\n")
		}

		m.raw(`  <form method="post" action="/preview" enctype="multipart/form-data"`,
			` hx-post="/preview" hx-encoding="multipart/form-data"`,
			` hx-target="#postcard" hx-swap="outerHTML" hx-disabled-elt="find button">`, "\n")

		textInput(&m, v, "to", "To", "text", v.To)
		textInput(&m, v, "from", "From", "text", v.From)

		m.raw(`    <label for="message">Message</label>`, "\n")
		m.raw(`    <textarea id="message" name="message" rows="5"`)
		if v.MaxMessageLength > 0 {
			m.raw(` maxlength="`, strconv.Itoa(v.MaxMessageLength), `"`)
		}
		invalid(&m, v, "message")
		m.raw(` required>`)
		m.text(v.Message)
		m.raw("</textarea>\n")
		fieldError(&m, v, "message")

		textInput(&m, v, "email", "Recipient Email", "email", v.Email)

		m.raw(`    <label for="photo">Photo (optional)</label>`, "\n")
		m.raw(`    <input id="photo" name="photo" type="file" accept="image/png,image/jpeg,image/gif,image/webp"`)
		invalid(&m, v, "photo")
		m.raw(">\n")
		if v.PhotoData != "" {
			m.raw(`    <input type="hidden" name="photo_data" value="`)
			m.text(v.PhotoData)
			m.raw(`">`, "\n")
			m.raw(`    <small class="hint">Your photo is kept. Choose another to replace it.</small>`, "\n")
		}
		fieldError(&m, v, "photo")

		m.raw(`    <div class="actions">
      <button type="submit" class="secondary">👀 Preview</button>
      <button type="submit" formaction="/send" hx-post="/send">📨 Send Postcard</button>
    </div>
  </form>
`)

		if v.PreviewURI != "" {
			m.raw(`  <figure class="preview">`, "\n", `    <img src="`)
			m.text(string(v.PreviewURI))
			m.raw(`" alt="Postcard preview">`, "\n", "  </figure>\n")
		}
		m.raw("</section>\n")
		return m.flush(w)
	})
}

func textInput(m *markup, v FormView, name, label, typ, value string) {
	m.raw(`    <label for="`, name, `">`)
	m.text(label)
	m.raw("</label>\n")
	m.raw(`    <input id="`, name, `" name="`, name, `" type="`, typ, `" value="`)
	m.text(value)
	m.raw(`"`)
	invalid(m, v, name)
	m.raw(" required>\n")
	fieldError(m, v, name)
}

func invalid(m *markup, v FormView, field string) {
	if v.Errors.Has(field) {
		m.raw(` aria-invalid="true"`)
	}
}

func fieldError(m *markup, v FormView, field string) {
	if msg := v.Errors.First(field); msg != "" {
		m.raw(`    <small class="field-error">`)
		m.text(msg)
		m.raw("</small>\n")
	}
}
