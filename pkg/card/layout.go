package card

import (
	"fmt"
	"io/fs"
	"strings"

	"gopkg.in/yaml.v3"
)

// Builtin font names. They resolve to the Go font family without any I/O.
const (
	FontRegular    = "builtin:go-regular"
	FontBold       = "builtin:go-bold"
	FontItalic     = "builtin:go-italic"
	FontBoldItalic = "builtin:go-bold-italic"
)

// Layout describes where every element of the postcard is drawn.
// Coordinates are in pixels from the top-left corner; text Y is the baseline.
type Layout struct {
	Width        int          `yaml:"width"`
	Height       int          `yaml:"height"`
	Background   Background   `yaml:"background"`
	Border       Border       `yaml:"border"`
	Recipient    TextStyle    `yaml:"recipient"`
	Sender       TextStyle    `yaml:"sender"`
	Message      MessageStyle `yaml:"message"`
	Photo        Box          `yaml:"photo"`
	Stamp        *Stamp       `yaml:"stamp,omitempty"`
	Decorations  []Decoration `yaml:"decorations,omitempty"`
	FallbackFont string       `yaml:"fallback_font,omitempty"`
}

type Background struct {
	Color    Color  `yaml:"color"`
	Template string `yaml:"template,omitempty"`
}

type Border struct {
	Width int   `yaml:"width"`
	Inset int   `yaml:"inset"`
	Color Color `yaml:"color"`
}

// TextStyle is a single-line text region. Prefix is drawn before the value.
type TextStyle struct {
	X      int     `yaml:"x"`
	Y      int     `yaml:"y"`
	Font   string  `yaml:"font"`
	Size   float64 `yaml:"size"`
	Color  Color   `yaml:"color"`
	Prefix string  `yaml:"prefix,omitempty"`
}

// MessageStyle is the wrapped message block. Line i is drawn at Y + i*LineHeight.
type MessageStyle struct {
	X          int     `yaml:"x"`
	Y          int     `yaml:"y"`
	Font       string  `yaml:"font"`
	Size       float64 `yaml:"size"`
	Color      Color   `yaml:"color"`
	MaxWidth   int     `yaml:"max_width"`
	LineHeight int     `yaml:"line_height"`
}

// Box is a bounding box an image is fitted into, preserving aspect ratio.
// A zero MaxWidth or MaxHeight disables the box.
type Box struct {
	X         int `yaml:"x"`
	Y         int `yaml:"y"`
	MaxWidth  int `yaml:"max_width"`
	MaxHeight int `yaml:"max_height"`
}

// Enabled reports whether the box can hold an image.
func (b Box) Enabled() bool {
	return b.MaxWidth > 0 && b.MaxHeight > 0
}

type Stamp struct {
	X      int   `yaml:"x"`
	Y      int   `yaml:"y"`
	Width  int   `yaml:"width"`
	Height int   `yaml:"height"`
	Color  Color `yaml:"color"`
}

// Decoration is a static image asset placed on every postcard.
type Decoration struct {
	Asset string `yaml:"asset"`
	Box   `yaml:",inline"`
}

// DefaultLayout returns the classic 1000x800 postcard: greeting top-left,
// message below it, signature bottom-left, photo and stamp on the right.
func DefaultLayout() Layout {
	ink := Hex("#2b2b2b")
	return Layout{
		Width:  1000,
		Height: 800,
		Background: Background{
			Color: Hex("#fdf6e3"),
		},
		Border: Border{
			Width: 6,
			Inset: 20,
			Color: Hex("#b5651d"),
		},
		Recipient: TextStyle{
			X:      80,
			Y:      150,
			Font:   FontBold,
			Size:   44,
			Color:  ink,
			Prefix: "Dear ",
		},
		Message: MessageStyle{
			X:          80,
			Y:          240,
			Font:       FontRegular,
			Size:       30,
			Color:      ink,
			MaxWidth:   500,
			LineHeight: 42,
		},
		Sender: TextStyle{
			X:      80,
			Y:      720,
			Font:   FontItalic,
			Size:   36,
			Color:  ink,
			Prefix: "With love, ",
		},
		Photo: Box{
			X:         620,
			Y:         240,
			MaxWidth:  320,
			MaxHeight: 480,
		},
		Stamp: &Stamp{
			X:      820,
			Y:      50,
			Width:  120,
			Height: 150,
			Color:  Hex("firebrick"),
		},
	}
}

// ParseLayout decodes YAML on top of DefaultLayout, so a file only needs the
// fields it changes, and validates the result.
func ParseLayout(data []byte) (Layout, error) {
	l := DefaultLayout()
	if err := yaml.Unmarshal(data, &l); err != nil {
		return Layout{}, fmt.Errorf("%w: %v", ErrInvalidLayout, err)
	}
	if err := l.Validate(); err != nil {
		return Layout{}, err
	}
	return l, nil
}

// LoadLayout reads and parses a layout file from fsys.
func LoadLayout(fsys fs.FS, name string) (Layout, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return Layout{}, fmt.Errorf("%w: read %s: %v", ErrInvalidLayout, name, err)
	}
	return ParseLayout(data)
}

// Validate checks that the layout can be rendered.
func (l Layout) Validate() error {
	var problems []string
	add := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if l.Width <= 0 || l.Height <= 0 {
		add("canvas size must be positive, got %dx%d", l.Width, l.Height)
	}
	for _, r := range []struct {
		name  string
		style TextStyle
	}{{"recipient", l.Recipient}, {"sender", l.Sender}} {
		if r.style.Font == "" {
			add("%s: font is required", r.name)
		}
		if r.style.Size <= 0 {
			add("%s: size must be positive", r.name)
		}
	}
	if l.Message.Font == "" {
		add("message: font is required")
	}
	if l.Message.Size <= 0 {
		add("message: size must be positive")
	}
	if l.Message.MaxWidth <= 0 {
		add("message: max_width must be positive")
	}
	if l.Message.LineHeight <= 0 {
		add("message: line_height must be positive")
	}
	if l.Photo.MaxWidth < 0 || l.Photo.MaxHeight < 0 {
		add("photo: box size must not be negative")
	}
	if l.Border.Width < 0 || l.Border.Inset < 0 {
		add("border: width and inset must not be negative")
	}
	if l.Stamp != nil && (l.Stamp.Width <= 0 || l.Stamp.Height <= 0) {
		add("stamp: size must be positive")
	}
	for i, d := range l.Decorations {
		if d.Asset == "" {
			add("decorations[%d]: asset is required", i)
		}
		if !d.Enabled() {
			add("decorations[%d]: box size must be positive", i)
		}
	}
	if l.FallbackFont != "" && !isBuiltinFont(l.FallbackFont) {
		add("fallback_font must be a builtin font, got %q", l.FallbackFont)
	}

	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrInvalidLayout, strings.Join(problems, "; "))
}

// fontNames returns the distinct font names referenced by the layout.
func (l Layout) fontNames() []string {
	seen := make(map[string]struct{}, 3)
	names := make([]string, 0, 3)
	for _, n := range []string{l.Recipient.Font, l.Sender.Font, l.Message.Font} {
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		names = append(names, n)
	}
	return names
}
