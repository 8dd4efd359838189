package storage

import (
	"io"
	"mime/multipart"
	"net/http"
	"strings"
)

// MIME type constants.
const (
	MIMEOctetStream    = "application/octet-stream"
	mimeDetectionBytes = 512 // http.DetectContentType reads at most 512 bytes
)

// imageTypes contains the image MIME types recognised by magic bytes.
var imageTypes = map[string]struct{}{
	"image/jpeg":   {},
	"image/png":    {},
	"image/gif":    {},
	"image/webp":   {},
	"image/bmp":    {},
	"image/x-icon": {},
}

// DetectMIME detects the MIME type of an uploaded file from its magic bytes.
// Returns "application/octet-stream" if detection fails.
func DetectMIME(fh *multipart.FileHeader) string {
	if fh == nil {
		return MIMEOctetStream
	}

	f, err := fh.Open()
	if err != nil {
		return MIMEOctetStream
	}
	defer f.Close()

	return detectMIMEFromReader(f)
}

// IsImage checks if the file is an image based on magic bytes.
func IsImage(fh *multipart.FileHeader) bool {
	return isImageMIME(DetectMIME(fh))
}

func detectMIMEFromReader(r io.Reader) string {
	buf := make([]byte, mimeDetectionBytes)
	n, err := io.ReadFull(r, buf)
	if n == 0 && err != nil {
		return MIMEOctetStream
	}
	return http.DetectContentType(buf[:n])
}

// normalizeMIME strips parameters such as charset and lowercases the type.
func normalizeMIME(mimeType string) string {
	mimeType, _, _ = strings.Cut(mimeType, ";")
	return strings.TrimSpace(strings.ToLower(mimeType))
}

func isImageMIME(mimeType string) bool {
	_, ok := imageTypes[normalizeMIME(mimeType)]
	return ok
}

// matchesMIME checks a MIME type against allowed patterns. "image/*" style
// wildcards are supported.
func matchesMIME(mimeType string, allowed []string) bool {
	mimeType = normalizeMIME(mimeType)

	for _, pattern := range allowed {
		pattern = strings.TrimSpace(strings.ToLower(pattern))

		if mimeType == pattern {
			return true
		}

		if prefix, ok := strings.CutSuffix(pattern, "*"); ok && strings.HasSuffix(prefix, "/") {
			if strings.HasPrefix(mimeType, prefix) {
				return true
			}
		}
	}

	return false
}
