// Package storage provides read-only access to an S3-compatible bucket and
// validation for uploaded files.
//
// The postcard service uses the bucket as an alternative asset source: fonts,
// background templates and decorations can live in S3 instead of on local
// disk. Nothing is ever written.
//
// # Basic Usage
//
//	store, err := storage.New(storage.Config{
//		Bucket:    "postcard-assets",
//		Prefix:    "v1",
//		AccessKey: os.Getenv("S3_ACCESS_KEY"),
//		SecretKey: os.Getenv("S3_SECRET_KEY"),
//	})
//	if err != nil {
//		return err
//	}
//
//	rc, err := store.Get(ctx, "fonts/hand.ttf")
//	if errors.Is(err, storage.ErrNotFound) {
//		// asset missing
//	}
//	defer rc.Close()
//
// For MinIO or other S3-compatible services set Endpoint and PathStyle.
//
// Keys are cleaned before the prefix is applied, so "../" cannot escape it.
//
// # Upload Validation
//
// Uploaded photos are checked by magic bytes, not by the client-supplied
// Content-Type:
//
//	mimeType := storage.DetectMIME(fh)
//	err := storage.ValidateFile(fh, mimeType,
//		storage.NotEmpty(),
//		storage.MaxSize(10<<20),
//		storage.PhotoOnly(),
//	)
//
// Failures are *FileValidationError and match ErrEmptyFile, ErrFileTooLarge
// or ErrInvalidMIME with errors.Is.
//
// # Errors
//
// S3 error codes are mapped to sentinels: ErrNotFound (NoSuchKey, NotFound,
// NoSuchBucket), ErrAccessDenied (AccessDenied, Forbidden) and ErrReadFailed
// for everything else. ErrInvalidConfig is returned by New.
package storage
