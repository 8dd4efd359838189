package card

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"log/slog"

	"github.com/disintegration/imaging"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// Region names reported in Postcard.Regions.
const (
	RegionRecipient = "recipient"
	RegionMessage   = "message"
	RegionSender    = "sender"
)

// Renderer composes postcards for one layout and one set of loaded assets.
// It holds no per-request state and is safe for concurrent use.
type Renderer struct {
	layout           Layout
	assets           *Assets
	maxMessageLength int
	logger           *slog.Logger
}

// New validates the layout, loads its assets and returns a long-lived Renderer.
func New(ctx context.Context, src Source, layout Layout, opts ...Option) (*Renderer, error) {
	r := defaultRenderer()
	for _, opt := range opts {
		opt(r)
	}

	if err := layout.Validate(); err != nil {
		return nil, err
	}

	assets, err := LoadAssets(ctx, src, layout, r.logger)
	if err != nil {
		return nil, err
	}

	r.layout = layout
	r.assets = assets
	return r, nil
}

// Render loads assets and renders a single postcard.
func Render(ctx context.Context, src Source, layout Layout, req Request, opts ...Option) (*Postcard, error) {
	r, err := New(ctx, src, layout, opts...)
	if err != nil {
		return nil, err
	}
	return r.Render(req)
}

// Layout returns the layout the renderer draws.
func (r *Renderer) Layout() Layout {
	return r.layout
}

// MaxMessageLength returns the message cap in runes.
func (r *Renderer) MaxMessageLength() int {
	return r.maxMessageLength
}

// FitPhoto scales img to the layout's photo box the way Render draws it.
// It returns nil when img is nil or the layout has no photo box.
func (r *Renderer) FitPhoto(img image.Image) image.Image {
	if img == nil || !r.layout.Photo.Enabled() {
		return nil
	}
	return fit(img, r.layout.Photo)
}

// Render composes the request onto a fresh canvas. Input is validated before
// anything is drawn; on error no image is returned.
func (r *Renderer) Render(req Request) (*Postcard, error) {
	req = req.Normalize()
	if err := req.validateRenderable(r.maxMessageLength); err != nil {
		return nil, err
	}
	if req.Decoration != nil {
		if req.Decoration.Bounds().Empty() {
			return nil, fmt.Errorf("%w: decoration image has zero size", ErrRenderFailed)
		}
		if !r.layout.Photo.Enabled() {
			return nil, fmt.Errorf("%w: layout has no photo box", ErrRenderFailed)
		}
	}

	l := r.layout
	canvas := image.NewRGBA(image.Rect(0, 0, l.Width, l.Height))

	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(l.Background.Color), image.Point{}, draw.Src)
	if tmpl := r.assets.template; tmpl != nil {
		draw.CatmullRom.Scale(canvas, canvas.Bounds(), tmpl, tmpl.Bounds(), draw.Over, nil)
	}
	drawBorder(canvas, l.Border)
	if l.Stamp != nil {
		drawStamp(canvas, *l.Stamp, l.Background.Color)
	}
	for _, d := range l.Decorations {
		drawFitted(canvas, r.assets.decorations[d.Asset], d.Box)
	}

	faces, err := r.newFaces()
	if err != nil {
		return nil, err
	}
	defer faces.close()

	pc := &Postcard{Image: canvas}

	recipient := drawText(canvas, faces.recipient, l.Recipient.Color, l.Recipient.X, l.Recipient.Y, l.Recipient.Prefix+req.To)
	pc.Regions = append(pc.Regions, TextRegion{Name: RegionRecipient, Bounds: recipient})

	measure := func(s string) int {
		return font.MeasureString(faces.message, s).Ceil()
	}
	pc.Lines = Wrap(req.Message, l.Message.MaxWidth, measure)
	if len(pc.Lines) > 0 {
		var block image.Rectangle
		for i, line := range pc.Lines {
			b := drawText(canvas, faces.message, l.Message.Color, l.Message.X, l.Message.Y+i*l.Message.LineHeight, line)
			block = block.Union(b)
		}
		pc.Regions = append(pc.Regions, TextRegion{Name: RegionMessage, Bounds: block})
	}

	sender := drawText(canvas, faces.sender, l.Sender.Color, l.Sender.X, l.Sender.Y, l.Sender.Prefix+req.From)
	pc.Regions = append(pc.Regions, TextRegion{Name: RegionSender, Bounds: sender})

	if req.Decoration != nil {
		drawFitted(canvas, req.Decoration, l.Photo)
	}

	return pc, nil
}

// faceSet holds the per-render font faces. Faces carry glyph caches and are
// not safe for concurrent use, so each render gets its own.
type faceSet struct {
	recipient, sender, message font.Face
	all                        []font.Face
}

func (r *Renderer) newFaces() (*faceSet, error) {
	set := &faceSet{}
	mk := func(name string, size float64) (font.Face, error) {
		f, ok := r.assets.Font(name)
		if !ok {
			return nil, &AssetMissingError{Name: name}
		}
		face, err := opentype.NewFace(f, &opentype.FaceOptions{
			Size:    size,
			DPI:     72,
			Hinting: font.HintingFull,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: font face %s: %v", ErrRenderFailed, name, err)
		}
		set.all = append(set.all, face)
		return face, nil
	}

	var err error
	if set.recipient, err = mk(r.layout.Recipient.Font, r.layout.Recipient.Size); err != nil {
		set.close()
		return nil, err
	}
	if set.sender, err = mk(r.layout.Sender.Font, r.layout.Sender.Size); err != nil {
		set.close()
		return nil, err
	}
	if set.message, err = mk(r.layout.Message.Font, r.layout.Message.Size); err != nil {
		set.close()
		return nil, err
	}
	return set, nil
}

func (s *faceSet) close() {
	for _, f := range s.all {
		_ = f.Close()
	}
}

// drawText draws s with its baseline origin at (x, y) and returns the
// pixel bounds of the inked area.
func drawText(dst *image.RGBA, face font.Face, c Color, x, y int, s string) image.Rectangle {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(x, y),
	}
	b, _ := d.BoundString(s)
	d.DrawString(s)
	return image.Rect(b.Min.X.Floor(), b.Min.Y.Floor(), b.Max.X.Ceil(), b.Max.Y.Ceil())
}

func drawBorder(dst *image.RGBA, b Border) {
	if b.Width <= 0 {
		return
	}
	outer := dst.Bounds().Inset(b.Inset)
	if outer.Empty() {
		return
	}
	inner := outer.Inset(b.Width)
	src := image.NewUniform(b.Color)
	for _, r := range []image.Rectangle{
		image.Rect(outer.Min.X, outer.Min.Y, outer.Max.X, inner.Min.Y),
		image.Rect(outer.Min.X, inner.Max.Y, outer.Max.X, outer.Max.Y),
		image.Rect(outer.Min.X, inner.Min.Y, inner.Min.X, inner.Max.Y),
		image.Rect(inner.Max.X, inner.Min.Y, outer.Max.X, inner.Max.Y),
	} {
		draw.Draw(dst, r, src, image.Point{}, draw.Over)
	}
}

const (
	stampMargin     = 8
	stampPerfRadius = 4
	stampPerfStep   = 14
)

// drawStamp draws a postage stamp: white paper, coloured face and a
// perforated edge punched out in the background colour.
func drawStamp(dst *image.RGBA, s Stamp, bg Color) {
	paper := image.Rect(s.X, s.Y, s.X+s.Width, s.Y+s.Height)
	draw.Draw(dst, paper, image.NewUniform(color.White), image.Point{}, draw.Src)

	face := paper.Inset(stampMargin)
	if !face.Empty() {
		draw.Draw(dst, face, image.NewUniform(s.Color), image.Point{}, draw.Src)
	}

	hole := image.NewUniform(bg)
	punch := func(cx, cy int) {
		c := &circle{center: image.Pt(cx, cy), r: stampPerfRadius}
		draw.DrawMask(dst, c.Bounds(), hole, image.Point{}, c, c.Bounds().Min, draw.Over)
	}
	for x := paper.Min.X; x <= paper.Max.X; x += stampPerfStep {
		punch(x, paper.Min.Y)
		punch(x, paper.Max.Y)
	}
	for y := paper.Min.Y; y <= paper.Max.Y; y += stampPerfStep {
		punch(paper.Min.X, y)
		punch(paper.Max.X, y)
	}
}

// circle is an alpha mask of a filled disc.
type circle struct {
	center image.Point
	r      int
}

func (c *circle) ColorModel() color.Model { return color.AlphaModel }

func (c *circle) Bounds() image.Rectangle {
	return image.Rect(c.center.X-c.r, c.center.Y-c.r, c.center.X+c.r, c.center.Y+c.r)
}

func (c *circle) At(x, y int) color.Color {
	dx, dy := x-c.center.X, y-c.center.Y
	if dx*dx+dy*dy <= c.r*c.r {
		return color.Alpha{A: 255}
	}
	return color.Alpha{}
}

// drawFitted scales img to fit the box preserving aspect ratio and draws it
// at the box origin.
func drawFitted(dst *image.RGBA, img image.Image, box Box) {
	if img == nil || !box.Enabled() {
		return
	}
	fitted := fit(img, box)
	at := image.Rect(box.X, box.Y, box.X+fitted.Bounds().Dx(), box.Y+fitted.Bounds().Dy())
	draw.Draw(dst, at, fitted, fitted.Bounds().Min, draw.Over)
}

// fit never upscales, so fitting an already fitted image is lossless.
func fit(img image.Image, box Box) *image.NRGBA {
	return imaging.Fit(img, box.MaxWidth, box.MaxHeight, imaging.Lanczos)
}

// TextRegion is the pixel area occupied by one block of text.
type TextRegion struct {
	Name   string
	Bounds image.Rectangle
}

// Postcard is one rendered card.
type Postcard struct {
	Image   *image.RGBA
	Regions []TextRegion
	Lines   []string // wrapped message lines
}

// Region returns the named text region.
func (p *Postcard) Region(name string) (TextRegion, bool) {
	for _, r := range p.Regions {
		if r.Name == name {
			return r, true
		}
	}
	return TextRegion{}, false
}

// PNG encodes the postcard image.
func (p *Postcard) PNG() ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, p.Image); err != nil {
		return nil, fmt.Errorf("%w: encode png: %v", ErrRenderFailed, err)
	}
	return buf.Bytes(), nil
}
