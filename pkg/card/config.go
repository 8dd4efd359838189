package card

import (
	"fmt"
	"os"
)

// Config holds renderer settings.
// Embed this in your app config for env parsing with caarlos0/env.
type Config struct {
	LayoutFile       string `env:"CARD_LAYOUT_FILE"`
	AssetsDir        string `env:"CARD_ASSETS_DIR" envDefault:"assets"`
	MaxMessageLength int    `env:"CARD_MAX_MESSAGE_LENGTH" envDefault:"500"`
}

// LoadLayout returns the layout from LayoutFile, or DefaultLayout when unset.
func (c Config) LoadLayout() (Layout, error) {
	if c.LayoutFile == "" {
		return DefaultLayout(), nil
	}
	data, err := os.ReadFile(c.LayoutFile)
	if err != nil {
		return Layout{}, fmt.Errorf("%w: read %s: %v", ErrInvalidLayout, c.LayoutFile, err)
	}
	return ParseLayout(data)
}
