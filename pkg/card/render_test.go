package card

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"strings"
	"sync"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"

	"github.com/dmitrymomot/postcard/pkg/validator"
)

func newTestRenderer(t *testing.T, layout Layout, opts ...Option) *Renderer {
	t.Helper()
	r, err := New(context.Background(), NewFSSource(fstest.MapFS{}), layout, opts...)
	require.NoError(t, err)
	return r
}

func TestRender_EndToEnd(t *testing.T) {
	t.Parallel()

	layout := DefaultLayout()
	pc, err := Render(context.Background(), NewFSSource(fstest.MapFS{}), layout, Request{
		To:      "Mia",
		From:    "Sam",
		Message: "See you soon",
	})
	require.NoError(t, err)

	assert.Equal(t, image.Rect(0, 0, layout.Width, layout.Height), pc.Image.Bounds())
	assert.Equal(t, []string{"See you soon"}, pc.Lines)

	require.Len(t, pc.Regions, 3)
	for i, a := range pc.Regions {
		assert.False(t, a.Bounds.Empty(), "region %s is empty", a.Name)
		assert.True(t, a.Bounds.In(pc.Image.Bounds()), "region %s outside canvas", a.Name)
		for _, b := range pc.Regions[i+1:] {
			assert.False(t, a.Bounds.Overlaps(b.Bounds), "%s overlaps %s", a.Name, b.Name)
		}
	}

	data, err := pc.PNG()
	require.NoError(t, err)
	require.NotEmpty(t, data)

	decoded, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, pc.Image.Bounds(), decoded.Bounds())
}

func TestRender_Deterministic(t *testing.T) {
	t.Parallel()

	r := newTestRenderer(t, DefaultLayout())
	req := Request{
		To:      "Mia",
		From:    "Sam",
		Message: "Greetings from the seaside. The weather is lovely and the ice cream even better.",
	}

	first, err := r.Render(req)
	require.NoError(t, err)
	second, err := r.Render(req)
	require.NoError(t, err)

	assert.True(t, bytes.Equal(first.Image.Pix, second.Image.Pix))
	assert.Equal(t, first.Regions, second.Regions)
}

func TestRender_ConcurrentCallsAreIndependent(t *testing.T) {
	t.Parallel()

	r := newTestRenderer(t, DefaultLayout())
	want, err := r.Render(Request{To: "Mia", From: "Sam", Message: "See you soon"})
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]*Postcard, 8)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			pc, err := r.Render(Request{To: "Mia", From: "Sam", Message: "See you soon"})
			if err == nil {
				results[i] = pc
			}
		}()
	}
	wg.Wait()

	for _, pc := range results {
		require.NotNil(t, pc)
		assert.True(t, bytes.Equal(want.Image.Pix, pc.Image.Pix))
	}
}

func TestRender_WrapsWithinMaxWidth(t *testing.T) {
	t.Parallel()

	layout := DefaultLayout()
	r := newTestRenderer(t, layout)
	pc, err := r.Render(Request{
		To:      "Mia",
		From:    "Sam",
		Message: strings.Repeat("lorem ipsum dolor sit amet ", 8),
	})
	require.NoError(t, err)
	require.Greater(t, len(pc.Lines), 1)

	f, ok := r.assets.Font(layout.Message.Font)
	require.True(t, ok)
	face, err := opentype.NewFace(f, &opentype.FaceOptions{Size: layout.Message.Size, DPI: 72, Hinting: font.HintingFull})
	require.NoError(t, err)
	defer face.Close()

	for _, line := range pc.Lines {
		assert.LessOrEqual(t, font.MeasureString(face, line).Ceil(), layout.Message.MaxWidth, "line %q", line)
	}

	msg, ok := pc.Region(RegionMessage)
	require.True(t, ok)
	sender, ok := pc.Region(RegionSender)
	require.True(t, ok)
	assert.Less(t, msg.Bounds.Max.Y, sender.Bounds.Min.Y)
}

func TestRender_OversizedToken(t *testing.T) {
	t.Parallel()

	r := newTestRenderer(t, DefaultLayout())
	long := strings.Repeat("w", 60)
	pc, err := r.Render(Request{To: "Mia", From: "Sam", Message: "hi " + long + " bye"})
	require.NoError(t, err)
	assert.Equal(t, []string{"hi", long, "bye"}, pc.Lines)
}

func TestRender_EmptyMessage(t *testing.T) {
	t.Parallel()

	r := newTestRenderer(t, DefaultLayout())
	pc, err := r.Render(Request{To: "Mia", From: "Sam", Message: "   "})
	require.NoError(t, err)

	assert.Empty(t, pc.Lines)
	_, ok := pc.Region(RegionMessage)
	assert.False(t, ok)
	_, ok = pc.Region(RegionRecipient)
	assert.True(t, ok)
	_, ok = pc.Region(RegionSender)
	assert.True(t, ok)
}

func TestRender_InvalidInput(t *testing.T) {
	t.Parallel()

	r := newTestRenderer(t, DefaultLayout(), WithMaxMessageLength(10))

	tests := []struct {
		name  string
		req   Request
		field string
	}{
		{"empty to", Request{To: " ", From: "Sam", Message: "hi"}, "to"},
		{"empty from", Request{To: "Mia", From: "", Message: "hi"}, "from"},
		{"message over cap", Request{To: "Mia", From: "Sam", Message: "12345678901"}, "message"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			pc, err := r.Render(tt.req)
			require.ErrorIs(t, err, ErrInvalidInput)
			assert.Nil(t, pc)
			assert.True(t, validator.ExtractValidationErrors(err).Has(tt.field))
		})
	}
}

func TestRender_MissingFont(t *testing.T) {
	t.Parallel()

	layout := DefaultLayout()
	layout.Recipient.Font = "/nonexistent/font.ttf"

	pc, err := Render(context.Background(), NewFSSource(fstest.MapFS{}), layout, Request{To: "Mia", From: "Sam", Message: "hi"})
	require.ErrorIs(t, err, ErrAssetMissing)
	assert.Nil(t, pc)

	ame, ok := AsAssetMissing(err)
	require.True(t, ok)
	assert.Equal(t, "/nonexistent/font.ttf", ame.Name)
}

func TestRender_Photo(t *testing.T) {
	t.Parallel()

	layout := DefaultLayout()
	r := newTestRenderer(t, layout)

	photo := image.NewNRGBA(image.Rect(0, 0, 800, 400))
	red := color.NRGBA{R: 255, A: 255}
	for y := range 400 {
		for x := range 800 {
			photo.SetNRGBA(x, y, red)
		}
	}

	pc, err := r.Render(Request{To: "Mia", From: "Sam", Message: "hi", Decoration: photo})
	require.NoError(t, err)

	// 800x400 fitted into 320x480 keeps the 2:1 ratio: 320x160.
	inside := pc.Image.RGBAAt(layout.Photo.X+160, layout.Photo.Y+80)
	assert.Greater(t, inside.R, uint8(250))
	assert.Less(t, inside.G, uint8(5))

	below := pc.Image.RGBAAt(layout.Photo.X+160, layout.Photo.Y+200)
	assert.NotEqual(t, inside, below)
}

func TestRenderer_FitPhoto(t *testing.T) {
	t.Parallel()

	layout := DefaultLayout()
	r := newTestRenderer(t, layout)

	fitted := r.FitPhoto(image.NewNRGBA(image.Rect(0, 0, 800, 400)))
	require.NotNil(t, fitted)
	assert.Equal(t, image.Rect(0, 0, 320, 160), fitted.Bounds())

	small := image.NewNRGBA(image.Rect(0, 0, 40, 30))
	assert.Equal(t, small.Bounds(), r.FitPhoto(small).Bounds(), "small photos are not upscaled")

	assert.Nil(t, r.FitPhoto(nil))

	layout.Photo = Box{}
	assert.Nil(t, newTestRenderer(t, layout).FitPhoto(small))
}

func TestRender_ZeroSizedPhoto(t *testing.T) {
	t.Parallel()

	r := newTestRenderer(t, DefaultLayout())
	pc, err := r.Render(Request{To: "Mia", From: "Sam", Message: "hi", Decoration: image.NewRGBA(image.Rectangle{})})
	require.ErrorIs(t, err, ErrRenderFailed)
	assert.Nil(t, pc)
}

func TestRender_PhotoWithoutBox(t *testing.T) {
	t.Parallel()

	layout := DefaultLayout()
	layout.Photo = Box{}
	r := newTestRenderer(t, layout)

	_, err := r.Render(Request{To: "Mia", From: "Sam", Message: "hi", Decoration: image.NewRGBA(image.Rect(0, 0, 2, 2))})
	require.ErrorIs(t, err, ErrRenderFailed)
}

func TestRender_BackgroundAndBorder(t *testing.T) {
	t.Parallel()

	layout := DefaultLayout()
	layout.Stamp = nil
	r := newTestRenderer(t, layout)

	pc, err := r.Render(Request{To: "Mia", From: "Sam", Message: "hi"})
	require.NoError(t, err)

	bg := pc.Image.RGBAAt(5, 5)
	assert.Equal(t, color.RGBA{R: 0xfd, G: 0xf6, B: 0xe3, A: 0xff}, bg)

	edge := pc.Image.RGBAAt(layout.Border.Inset+1, layout.Height/2)
	assert.Equal(t, color.RGBA{R: 0xb5, G: 0x65, B: 0x1d, A: 0xff}, edge)
}

func TestRender_Template(t *testing.T) {
	t.Parallel()

	layout := DefaultLayout()
	layout.Background.Template = "images/paper.png"
	fsys := fstest.MapFS{
		"images/paper.png": &fstest.MapFile{Data: solidPNG(t, 10, 8, color.NRGBA{B: 255, A: 255})},
	}

	pc, err := Render(context.Background(), NewFSSource(fsys), layout, Request{To: "Mia", From: "Sam", Message: "hi"})
	require.NoError(t, err)

	px := pc.Image.RGBAAt(5, 5)
	assert.Greater(t, px.B, uint8(250))
	assert.Less(t, px.R, uint8(5))
}
