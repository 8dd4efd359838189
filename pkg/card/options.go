package card

import (
	"log/slog"

	"github.com/dmitrymomot/postcard/pkg/logger"
)

// Option configures a Renderer.
type Option func(*Renderer)

// WithLogger sets the logger used for asset loading warnings.
func WithLogger(l *slog.Logger) Option {
	return func(r *Renderer) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithMaxMessageLength overrides the message cap in runes.
func WithMaxMessageLength(n int) Option {
	return func(r *Renderer) {
		if n > 0 {
			r.maxMessageLength = n
		}
	}
}

func defaultRenderer() *Renderer {
	return &Renderer{
		maxMessageLength: DefaultMaxMessageLength,
		logger:           logger.Discard(),
	}
}
