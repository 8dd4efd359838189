package storage

import (
	"fmt"
	"mime/multipart"
)

// FileValidationError describes why an uploaded file was rejected.
// It matches the corresponding sentinel (ErrFileTooLarge, ErrEmptyFile,
// ErrInvalidMIME) with errors.Is.
type FileValidationError struct {
	Details map[string]any // Error-specific data
	Field   string         // Form field name (e.g., "photo")
	Code    string         // Error code (e.g., "file_too_large")
	Message string         // Human-readable message
	err     error
}

func (e *FileValidationError) Error() string {
	return e.Message
}

func (e *FileValidationError) Unwrap() error {
	return e.err
}

// Error codes for FileValidationError.
const (
	ErrCodeFileTooLarge = "file_too_large"
	ErrCodeInvalidMIME  = "invalid_mime"
	ErrCodeEmptyFile    = "empty_file"
)

// ValidationRule is a check applied to an uploaded file.
type ValidationRule interface {
	Validate(fh *multipart.FileHeader, mimeType string) error
}

// ValidateFile runs rules in order and returns the first failure.
// mimeType should come from DetectMIME, not from the client's header.
func ValidateFile(fh *multipart.FileHeader, mimeType string, rules ...ValidationRule) error {
	for _, rule := range rules {
		if err := rule.Validate(fh, mimeType); err != nil {
			return err
		}
	}
	return nil
}

type maxSizeRule struct {
	maxBytes int64
}

// MaxSize rejects files larger than the given number of bytes.
func MaxSize(bytes int64) ValidationRule {
	return &maxSizeRule{maxBytes: bytes}
}

func (r *maxSizeRule) Validate(fh *multipart.FileHeader, _ string) error {
	if fh.Size > r.maxBytes {
		return &FileValidationError{
			Field:   "file",
			Code:    ErrCodeFileTooLarge,
			Message: fmt.Sprintf("file size %d exceeds limit of %d bytes", fh.Size, r.maxBytes),
			Details: map[string]any{
				"limit": r.maxBytes,
				"got":   fh.Size,
			},
			err: ErrFileTooLarge,
		}
	}
	return nil
}

type notEmptyRule struct{}

// NotEmpty rejects empty files.
func NotEmpty() ValidationRule {
	return &notEmptyRule{}
}

func (r *notEmptyRule) Validate(fh *multipart.FileHeader, _ string) error {
	if fh == nil || fh.Size == 0 {
		return &FileValidationError{
			Field:   "file",
			Code:    ErrCodeEmptyFile,
			Message: "file is empty",
			Details: map[string]any{},
			err:     ErrEmptyFile,
		}
	}
	return nil
}

type allowedTypesRule struct {
	patterns []string
}

// AllowedTypes accepts only files matching the given MIME patterns ("image/*" works).
func AllowedTypes(patterns ...string) ValidationRule {
	return &allowedTypesRule{patterns: patterns}
}

func (r *allowedTypesRule) Validate(_ *multipart.FileHeader, mimeType string) error {
	if !matchesMIME(mimeType, r.patterns) {
		return &FileValidationError{
			Field:   "file",
			Code:    ErrCodeInvalidMIME,
			Message: fmt.Sprintf("file type %q is not allowed", mimeType),
			Details: map[string]any{
				"type":    mimeType,
				"allowed": r.patterns,
			},
			err: ErrInvalidMIME,
		}
	}
	return nil
}

// PhotoTypes are the upload formats the postcard renderer can decode.
var PhotoTypes = []string{"image/png", "image/jpeg", "image/gif", "image/webp"}

// PhotoOnly accepts only PhotoTypes.
func PhotoOnly() ValidationRule {
	return AllowedTypes(PhotoTypes...)
}
