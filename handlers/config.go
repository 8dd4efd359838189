package handlers

// DefaultMaxUploadBytes caps the optional photo upload.
const DefaultMaxUploadBytes int64 = 10 << 20

// Config holds web handler settings.
type Config struct {
	MaxUploadBytes int64 `env:"CARD_MAX_UPLOAD_BYTES" envDefault:"10485760"`
}
