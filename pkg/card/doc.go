// Package card renders postcards: recipient and sender names, a word-wrapped
// message and an optional photo composited onto a fixed-size raster canvas.
//
// # Architecture
//
// The package consists of three parts:
//
//   - Layout: where every element goes, loadable from YAML
//   - Assets: fonts, background template and decorations, loaded once from a Source
//   - Renderer: composes a Request onto a fresh canvas using the shared Assets
//
// # Usage
//
//	layout, err := card.LoadLayout(os.DirFS("."), "layout.yaml")
//	if err != nil {
//		return err
//	}
//
//	r, err := card.New(ctx, card.NewFSSource(os.DirFS("assets")), layout,
//		card.WithLogger(log),
//		card.WithMaxMessageLength(500),
//	)
//	if err != nil {
//		return err
//	}
//
//	pc, err := r.Render(card.Request{To: "Mia", From: "Sam", Message: "See you soon"})
//	if err != nil {
//		return err
//	}
//	data, err := pc.PNG()
//
// # Fonts
//
// Font names starting with "builtin:" resolve to the Go font family
// (go-regular, go-bold, go-italic, go-bold-italic) without I/O. Any other
// name is read from the Source and parsed as TrueType/OpenType.
//
// A missing font fails with *AssetMissingError unless the layout sets
// fallback_font to a builtin font, in which case the substitution is logged
// as a warning.
//
// # Concurrency
//
// Assets are immutable after loading and shared by every render. Font faces
// are created per render and closed when it finishes.
//
// # Errors
//
//   - ErrInvalidInput: empty name, message over the cap (wraps validator.ValidationErrors)
//   - ErrAssetMissing: asset not found; use AsAssetMissing for the name
//   - ErrRenderFailed: unparsable font, undecodable or empty image, encoding failure
//   - ErrInvalidLayout: layout cannot be rendered
package card
