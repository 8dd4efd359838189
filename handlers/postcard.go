// Package handlers serves the postcard web UI and image endpoint.
package handlers

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/png"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/postcard/internal"
	"github.com/dmitrymomot/postcard/pkg/card"
	"github.com/dmitrymomot/postcard/pkg/mailer"
	"github.com/dmitrymomot/postcard/pkg/validator"
	"github.com/dmitrymomot/postcard/views"
)

// User-facing messages.
const (
	msgSent          = "Postcard sent 💖"
	msgFixFields     = "Please fill all fields"
	msgInvalidEmail  = "Invalid email address"
	msgCheckFields   = "Please check the highlighted fields"
	msgGenericFailed = "Something went wrong. Please try again later."
)

// Renderer draws postcards. *card.Renderer implements it.
type Renderer interface {
	Render(req card.Request) (*card.Postcard, error)
	FitPhoto(img image.Image) image.Image
	MaxMessageLength() int
}

// PostcardSender delivers a rendered postcard. *mailer.Mailer implements it.
type PostcardSender interface {
	SendPostcard(ctx context.Context, d mailer.Delivery) (string, error)
}

// Postcard serves the postcard form, previews and delivery.
// It keeps no state between requests.
type Postcard struct {
	renderer  Renderer
	sender    PostcardSender
	maxUpload int64
}

// NewPostcard creates the postcard handler.
func NewPostcard(renderer Renderer, sender PostcardSender, cfg Config) *Postcard {
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = DefaultMaxUploadBytes
	}
	return &Postcard{
		renderer:  renderer,
		sender:    sender,
		maxUpload: cfg.MaxUploadBytes,
	}
}

// Routes implements internal.Handler.
func (h *Postcard) Routes(r internal.Router) {
	r.GET("/", h.form)
	r.POST("/preview", h.preview)
	r.Match([]string{http.MethodGet, http.MethodPost}, "/postcard.png", h.image)
	r.POST("/send", h.send)
}

// sentPath is the redirect target after a successful send.
const sentPath = "/?sent=1"

func (h *Postcard) form(c internal.Context) error {
	v := h.view(card.Request{}, nil)
	if c.QueryDefault("sent", "0") == "1" {
		v.Notice = msgSent
	}
	return c.RenderPartial(http.StatusOK, views.Page(v), views.Form(v))
}

func (h *Postcard) preview(c internal.Context) error {
	req, errs, err := h.bind(c)
	if err != nil {
		return err
	}
	if errs = h.validate(req, errs); !errs.IsEmpty() {
		return h.invalid(c, req, errs)
	}

	pc, err := h.render(req)
	if err != nil {
		return err
	}
	data, err := pc.PNG()
	if err != nil {
		return internal.ErrInternal(msgGenericFailed, internal.WithError(err))
	}

	v := h.view(req, nil)
	v.PreviewURI = views.PreviewDataURI(base64.StdEncoding.EncodeToString(data))
	return c.RenderPartial(http.StatusOK, views.Page(v), views.Form(v))
}

// image returns the raw PNG. Only the fields drawn on the card are
// required here; email is not.
func (h *Postcard) image(c internal.Context) error {
	req, errs, err := h.bind(c)
	if err != nil {
		return err
	}
	if !errs.IsEmpty() {
		return internal.ErrUnprocessable(msgFixFields, internal.WithFields(errs))
	}

	pc, err := h.render(req)
	if err != nil {
		return err
	}
	data, err := pc.PNG()
	if err != nil {
		return internal.ErrInternal(msgGenericFailed, internal.WithError(err))
	}

	c.SetHeader("Cache-Control", "no-store")
	return c.Blob(http.StatusOK, "image/png", data)
}

func (h *Postcard) send(c internal.Context) error {
	req, errs, err := h.bind(c)
	if err != nil {
		return err
	}
	if errs = h.validate(req, errs); !errs.IsEmpty() {
		return h.invalid(c, req, errs)
	}

	pc, err := h.render(req)
	if err != nil {
		return err
	}
	data, err := pc.PNG()
	if err != nil {
		return internal.ErrInternal(msgGenericFailed, internal.WithError(err))
	}

	id, err := h.sender.SendPostcard(c, mailer.Delivery{
		Email:   req.Email,
		To:      req.To,
		From:    req.From,
		Message: req.Message,
		PNG:     data,
	})
	if err != nil {
		return internal.ErrBadGateway(msgGenericFailed, internal.WithError(err))
	}

	c.LogInfo("postcard sent", slog.String("postcard_id", id))

	return c.Redirect(http.StatusSeeOther, sentPath)
}

// validate runs the full form rules and merges them after any photo errors.
func (h *Postcard) validate(req card.Request, errs validator.ValidationErrors) validator.ValidationErrors {
	if err := req.Validate(h.renderer.MaxMessageLength()); err != nil {
		errs = append(errs, validator.ExtractValidationErrors(err)...)
	}
	return errs
}

// render maps renderer failures to HTTP errors. Input problems surface as
// 422 with field errors; anything else is an internal failure.
func (h *Postcard) render(req card.Request) (*card.Postcard, error) {
	pc, err := h.renderer.Render(req)
	if err == nil {
		return pc, nil
	}
	if errors.Is(err, card.ErrInvalidInput) {
		return nil, internal.ErrUnprocessable(msgFixFields,
			internal.WithFields(validator.ExtractValidationErrors(err)),
			internal.WithError(err),
		)
	}
	return nil, internal.ErrInternal(msgGenericFailed, internal.WithError(err))
}

func (h *Postcard) invalid(c internal.Context, req card.Request, errs validator.ValidationErrors) error {
	v := h.view(req, errs)
	v.Alert = alertFor(req, errs)
	return c.RenderPartial(http.StatusUnprocessableEntity, views.Page(v), views.Form(v))
}

func alertFor(req card.Request, errs validator.ValidationErrors) string {
	switch {
	case req.To == "" || req.From == "" || req.Message == "" || req.Email == "":
		return msgFixFields
	case errs.Has("email"):
		return msgInvalidEmail
	default:
		return msgCheckFields
	}
}

func (h *Postcard) view(req card.Request, errs validator.ValidationErrors) views.FormView {
	return views.FormView{
		To:               req.To,
		From:             req.From,
		Message:          req.Message,
		Email:            req.Email,
		PhotoData:        h.photoData(req.Decoration),
		Errors:           errs,
		MaxMessageLength: h.renderer.MaxMessageLength(),
	}
}

// photoData encodes the photo as it will be drawn, for fieldPhotoData.
// A photo that cannot be encoded is dropped and has to be uploaded again.
func (h *Postcard) photoData(img image.Image) string {
	fitted := h.renderer.FitPhoto(img)
	if fitted == nil {
		return ""
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, fitted); err != nil {
		return ""
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}
