package card

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"io/fs"
	"log/slog"
	"path"
	"strings"
	"sync"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	_ "golang.org/x/image/webp"
	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/postcard/pkg/logger"
)

// Source opens named assets (fonts, background templates, decorations).
// Implementations return an error matching ErrAssetMissing when the name does not exist.
type Source interface {
	Open(ctx context.Context, name string) (io.ReadCloser, error)
}

// FSSource reads assets from an fs.FS such as os.DirFS or embed.FS.
type FSSource struct {
	fsys fs.FS
}

func NewFSSource(fsys fs.FS) *FSSource {
	return &FSSource{fsys: fsys}
}

func (s *FSSource) Open(_ context.Context, name string) (io.ReadCloser, error) {
	f, err := s.fsys.Open(name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrInvalid) {
			return nil, &AssetMissingError{Name: name, Err: err}
		}
		return nil, fmt.Errorf("open asset %s: %w", name, err)
	}
	return f, nil
}

// ObjectGetter is the part of an object store an asset source needs.
// storage.S3Storage satisfies it.
type ObjectGetter interface {
	Get(ctx context.Context, key string) (io.ReadCloser, error)
}

// StorageSource reads assets from an object store, optionally under a key prefix.
type StorageSource struct {
	store     ObjectGetter
	prefix    string
	isMissing func(error) bool
}

// NewStorageSource creates a Source over store. isMissing classifies the
// store's not-found errors, e.g. func(err error) bool { return errors.Is(err, storage.ErrNotFound) }.
func NewStorageSource(store ObjectGetter, prefix string, isMissing func(error) bool) *StorageSource {
	return &StorageSource{
		store:     store,
		prefix:    strings.Trim(prefix, "/"),
		isMissing: isMissing,
	}
}

func (s *StorageSource) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	key := name
	if s.prefix != "" {
		key = path.Join(s.prefix, name)
	}
	rc, err := s.store.Get(ctx, key)
	if err != nil {
		if s.isMissing != nil && s.isMissing(err) {
			return nil, &AssetMissingError{Name: name, Err: err}
		}
		return nil, fmt.Errorf("open asset %s: %w", name, err)
	}
	return rc, nil
}

// Assets holds everything a layout references, decoded once.
// It is immutable after LoadAssets and safe to share between renders.
type Assets struct {
	fonts       map[string]*opentype.Font
	template    image.Image
	decorations map[string]image.Image
}

// Font returns the parsed font registered under name.
func (a *Assets) Font(name string) (*opentype.Font, bool) {
	f, ok := a.fonts[name]
	return f, ok
}

var builtinFonts = map[string][]byte{
	FontRegular:    goregular.TTF,
	FontBold:       gobold.TTF,
	FontItalic:     goitalic.TTF,
	FontBoldItalic: gobolditalic.TTF,
}

func isBuiltinFont(name string) bool {
	_, ok := builtinFonts[name]
	return ok
}

// LoadAssets resolves every font, template and decoration the layout refers to.
// Loads run in parallel; the first failure cancels the rest.
func LoadAssets(ctx context.Context, src Source, layout Layout, log *slog.Logger) (*Assets, error) {
	if log == nil {
		log = logger.Discard()
	}

	assets := &Assets{
		fonts:       make(map[string]*opentype.Font),
		decorations: make(map[string]image.Image),
	}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)

	for _, name := range layout.fontNames() {
		g.Go(func() error {
			f, err := loadFont(gctx, src, name)
			if err != nil && errors.Is(err, ErrAssetMissing) && layout.FallbackFont != "" {
				log.WarnContext(gctx, "font asset missing, using fallback",
					slog.String("font", name),
					slog.String("fallback", layout.FallbackFont),
				)
				f, err = parseFont(layout.FallbackFont, builtinFonts[layout.FallbackFont])
			}
			if err != nil {
				return err
			}
			mu.Lock()
			assets.fonts[name] = f
			mu.Unlock()
			return nil
		})
	}

	if layout.Background.Template != "" {
		g.Go(func() error {
			img, err := loadImage(gctx, src, layout.Background.Template)
			if err != nil {
				return err
			}
			mu.Lock()
			assets.template = img
			mu.Unlock()
			return nil
		})
	}

	for _, d := range layout.Decorations {
		g.Go(func() error {
			img, err := loadImage(gctx, src, d.Asset)
			if err != nil {
				return err
			}
			mu.Lock()
			assets.decorations[d.Asset] = img
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	log.DebugContext(ctx, "postcard assets loaded",
		slog.Int("fonts", len(assets.fonts)),
		slog.Int("decorations", len(assets.decorations)),
		slog.Bool("template", assets.template != nil),
	)

	return assets, nil
}

func loadFont(ctx context.Context, src Source, name string) (*opentype.Font, error) {
	if data, ok := builtinFonts[name]; ok {
		return parseFont(name, data)
	}
	data, err := readAsset(ctx, src, name)
	if err != nil {
		return nil, err
	}
	return parseFont(name, data)
}

func parseFont(name string, data []byte) (*opentype.Font, error) {
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%w: parse font %s: %v", ErrRenderFailed, name, err)
	}
	return f, nil
}

func loadImage(ctx context.Context, src Source, name string) (image.Image, error) {
	data, err := readAsset(ctx, src, name)
	if err != nil {
		return nil, err
	}
	img, err := DecodeImage(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("asset %s: %w", name, err)
	}
	return img, nil
}

func readAsset(ctx context.Context, src Source, name string) ([]byte, error) {
	rc, err := src.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read asset %s: %w", name, err)
	}
	return data, nil
}

// DecodeImage decodes PNG, JPEG, GIF or WebP data, applying EXIF orientation.
// Empty or undecodable images yield ErrRenderFailed.
func DecodeImage(r io.Reader) (image.Image, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: decode image: %v", ErrRenderFailed, err)
	}
	if img.Bounds().Empty() {
		return nil, fmt.Errorf("%w: image has zero size", ErrRenderFailed)
	}
	return img, nil
}
