// Package views renders the postcard pages as templ components.
package views

import (
	"embed"
	"net/http"

	"github.com/a-h/templ"

	"github.com/dmitrymomot/postcard/pkg/validator"
)

// StaticFS holds static/ assets served under /static/.
//
//go:embed static
var StaticFS embed.FS

const pageTitle = "Send a Postcard 💌"

// FormView is everything the postcard form shows. Values are echoed back
// into the inputs so a failed submit keeps what the user typed.
type FormView struct {
	To      string
	From    string
	Message string
	Email   string

	// PhotoData is the previewed photo as a base64 PNG, posted back with
	// the next submit.
	PhotoData string

	Errors           validator.ValidationErrors
	MaxMessageLength int

	// PreviewURI is a data: URL of the rendered postcard, empty when there is no preview.
	PreviewURI templ.SafeURL

	Notice string // success message
	Alert  string // form-level failure message
}

// Title is the document title.
func (FormView) Title() string {
	return pageTitle
}

// PreviewDataURI wraps PNG bytes, already base64-encoded, as an image URL.
func PreviewDataURI(b64 string) templ.SafeURL {
	return templ.SafeURL("data:image/png;base64," + b64)
}

// ErrorView describes a failed request.
type ErrorView struct {
	Code      int
	Message   string
	RequestID string
}

// Title is the document title.
func (v ErrorView) Title() string {
	return v.Heading() + " · " + pageTitle
}

// Heading is the status text for Code.
func (v ErrorView) Heading() string {
	if text := http.StatusText(v.Code); text != "" {
		return text
	}
	return "Error"
}
