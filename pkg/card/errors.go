package card

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput indicates a required text field is empty or the message exceeds its cap.
	ErrInvalidInput = errors.New("card: invalid input")

	// ErrAssetMissing indicates a font, template or decoration asset could not be located.
	ErrAssetMissing = errors.New("card: asset missing")

	// ErrRenderFailed indicates compositing failed (corrupt image, unparsable font, encoding error).
	ErrRenderFailed = errors.New("card: render failed")

	// ErrInvalidLayout indicates the layout configuration cannot be rendered.
	ErrInvalidLayout = errors.New("card: invalid layout")
)

// AssetMissingError names the asset that could not be located.
// It matches ErrAssetMissing with errors.Is.
type AssetMissingError struct {
	Name string // Asset name as referenced by the layout
	Err  error  // Underlying lookup error
}

func (e *AssetMissingError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("card: asset missing: %s: %v", e.Name, e.Err)
	}
	return "card: asset missing: " + e.Name
}

func (e *AssetMissingError) Is(target error) bool {
	return target == ErrAssetMissing
}

func (e *AssetMissingError) Unwrap() error {
	return e.Err
}

// AsAssetMissing extracts the AssetMissingError from err if present.
func AsAssetMissing(err error) (*AssetMissingError, bool) {
	var ame *AssetMissingError
	if errors.As(err, &ame) {
		return ame, true
	}
	return nil, false
}
