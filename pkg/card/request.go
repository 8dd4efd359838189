package card

import (
	"errors"
	"image"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/dmitrymomot/postcard/pkg/validator"
)

// DefaultMaxMessageLength is the message cap in runes.
const DefaultMaxMessageLength = 500

// Request is everything needed to compose one postcard.
// Values are supplied fresh by the caller on every render.
type Request struct {
	To         string
	From       string
	Message    string
	Email      string
	Decoration image.Image // optional photo
}

// Normalize trims surrounding whitespace and converts text fields to NFC
// so that composed and decomposed input render identically.
func (r Request) Normalize() Request {
	r.To = normalizeText(r.To)
	r.From = normalizeText(r.From)
	r.Message = normalizeText(r.Message)
	r.Email = strings.TrimSpace(r.Email)
	return r
}

// Validate checks the request as submitted through the form: all four
// fields present, message within maxMessageLength runes, email shaped
// like local@domain.tld. Failures match ErrInvalidInput and carry
// validator.ValidationErrors.
func (r Request) Validate(maxMessageLength int) error {
	if maxMessageLength <= 0 {
		maxMessageLength = DefaultMaxMessageLength
	}
	err := validator.Apply(
		validator.RequiredString("to", r.To),
		validator.RequiredString("from", r.From),
		validator.RequiredString("message", r.Message),
		validator.MaxRunes("message", r.Message, maxMessageLength),
		validator.RequiredString("email", r.Email),
		validator.EmailShape("email", r.Email),
	)
	if err != nil {
		return errors.Join(ErrInvalidInput, err)
	}
	return nil
}

// validateRenderable checks only what the renderer draws.
func (r Request) validateRenderable(maxMessageLength int) error {
	err := validator.Apply(
		validator.RequiredString("to", r.To),
		validator.RequiredString("from", r.From),
		validator.MaxRunes("message", r.Message, maxMessageLength),
	)
	if err != nil {
		return errors.Join(ErrInvalidInput, err)
	}
	return nil
}

func normalizeText(s string) string {
	return strings.TrimSpace(norm.NFC.String(s))
}
