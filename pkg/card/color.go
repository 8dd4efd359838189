package card

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
	"gopkg.in/yaml.v3"
)

// Color is a layout colour. In YAML it is written either as a hex string
// (#rgb, #rrggbb, #rrggbbaa) or as an SVG colour name ("ivory", "firebrick").
type Color struct {
	color.NRGBA
}

// Hex builds a Color from a hex string and panics on malformed input.
// Intended for compile-time layout literals.
func Hex(s string) Color {
	c, err := ParseColor(s)
	if err != nil {
		panic(err)
	}
	return c
}

// ParseColor parses a hex string or an SVG colour name.
func ParseColor(s string) (Color, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return Color{}, fmt.Errorf("%w: empty color", ErrInvalidLayout)
	}

	if !strings.HasPrefix(s, "#") {
		named, ok := colornames.Map[s]
		if !ok {
			return Color{}, fmt.Errorf("%w: unknown color name %q", ErrInvalidLayout, s)
		}
		return Color{color.NRGBA{R: named.R, G: named.G, B: named.B, A: named.A}}, nil
	}

	hex := s[1:]
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	if len(hex) != 8 {
		return Color{}, fmt.Errorf("%w: malformed color %q", ErrInvalidLayout, s)
	}

	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("%w: malformed color %q", ErrInvalidLayout, s)
	}

	return Color{color.NRGBA{
		R: uint8(v >> 24),
		G: uint8(v >> 16),
		B: uint8(v >> 8),
		A: uint8(v),
	}}, nil
}

// String returns the colour as #rrggbbaa.
func (c Color) String() string {
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}

// IsZero reports whether the colour was never set.
func (c Color) IsZero() bool {
	return c.NRGBA == color.NRGBA{}
}

func (c *Color) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return fmt.Errorf("%w: color must be a string", ErrInvalidLayout)
	}
	parsed, err := ParseColor(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

func (c Color) MarshalYAML() (any, error) {
	return c.String(), nil
}
