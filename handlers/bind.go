package handlers

import (
	"bytes"
	"encoding/base64"
	"errors"
	"image"
	"mime"
	"mime/multipart"
	"net/http"

	"github.com/dmitrymomot/postcard/internal"
	"github.com/dmitrymomot/postcard/pkg/card"
	"github.com/dmitrymomot/postcard/pkg/storage"
	"github.com/dmitrymomot/postcard/pkg/validator"
)

// Form field names.
const (
	fieldTo      = "to"
	fieldFrom    = "from"
	fieldMessage = "message"
	fieldEmail   = "email"
	fieldPhoto   = "photo"

	// fieldPhotoData carries the previewed photo to the next submit as a
	// base64 PNG, so /send draws the same card the preview showed.
	fieldPhotoData = "photo_data"
)

// formOverhead is allowed on top of the photo cap for text fields and multipart framing.
const formOverhead = 1 << 20

// multipartMemory is kept in memory before parts spill to temp files.
const multipartMemory = 8 << 20

// maxCarriedSide bounds a carried photo's dimensions before it is decoded.
const maxCarriedSide = 4096

// bind reads the submitted form into a normalized card.Request.
// Photo problems are returned as field errors, not as err; err is
// reserved for requests that cannot be read at all.
func (h *Postcard) bind(c internal.Context) (card.Request, validator.ValidationErrors, error) {
	r := c.Request()
	r.Body = http.MaxBytesReader(c.Response(), r.Body, h.maxUpload+formOverhead)

	if err := parseForm(r); err != nil {
		return card.Request{}, nil, err
	}

	req := card.Request{
		To:      c.Form(fieldTo),
		From:    c.Form(fieldFrom),
		Message: c.Form(fieldMessage),
		Email:   c.Form(fieldEmail),
	}.Normalize()

	var errs validator.ValidationErrors
	var uploaded bool
	if r.MultipartForm != nil {
		defer func() { _ = r.MultipartForm.RemoveAll() }()

		if files := r.MultipartForm.File[fieldPhoto]; len(files) > 0 {
			uploaded = true
			img, msg := h.decodePhoto(files[0])
			if msg != "" {
				errs.Add(fieldPhoto, msg)
			}
			req.Decoration = img
		}
	}

	// A new upload replaces the carried photo.
	if data := c.Form(fieldPhotoData); !uploaded && data != "" {
		img, msg := h.decodePhotoData(data)
		if msg != "" {
			errs.Add(fieldPhoto, msg)
		}
		req.Decoration = img
	}

	return req, errs, nil
}

func parseForm(r *http.Request) error {
	var err error
	if mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type")); mediaType == "multipart/form-data" {
		err = r.ParseMultipartForm(multipartMemory)
	} else {
		err = r.ParseForm()
	}
	if err == nil {
		return nil
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return internal.ErrRequestTooLarge("The upload is too large.", internal.WithError(err))
	}
	return internal.ErrBadRequest("The form could not be read.", internal.WithError(err))
}

// decodePhoto validates the upload by content and decodes it. A non-empty
// message means the photo was rejected.
func (h *Postcard) decodePhoto(fh *multipart.FileHeader) (image.Image, string) {
	mimeType := storage.DetectMIME(fh)
	err := storage.ValidateFile(fh, mimeType,
		storage.NotEmpty(),
		storage.MaxSize(h.maxUpload),
		storage.PhotoOnly(),
	)
	switch {
	case errors.Is(err, storage.ErrEmptyFile):
		return nil, "photo is empty"
	case errors.Is(err, storage.ErrFileTooLarge):
		return nil, "photo is too large"
	case errors.Is(err, storage.ErrInvalidMIME):
		return nil, "photo must be a PNG, JPEG, GIF or WebP image"
	case err != nil:
		return nil, "could not read the photo"
	}

	f, err := fh.Open()
	if err != nil {
		return nil, "could not read the photo"
	}
	defer f.Close()

	decoded, err := card.DecodeImage(f)
	if err != nil {
		return nil, "could not read the photo"
	}
	return decoded, ""
}

// decodePhotoData decodes a photo carried in fieldPhotoData. Only PNGs are
// accepted since that is what the preview emits.
func (h *Postcard) decodePhotoData(s string) (image.Image, string) {
	if int64(base64.StdEncoding.DecodedLen(len(s))) > h.maxUpload {
		return nil, "photo is too large"
	}
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, "could not read the photo"
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil || format != "png" || cfg.Width > maxCarriedSide || cfg.Height > maxCarriedSide {
		return nil, "could not read the photo"
	}

	decoded, err := card.DecodeImage(bytes.NewReader(data))
	if err != nil {
		return nil, "could not read the photo"
	}
	return decoded, ""
}
