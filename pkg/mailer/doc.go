// Package mailer sends postcards by email through a pluggable provider.
//
// The package separates delivery (Sender, implemented per provider) from
// template rendering (Renderer), so the provider can change without touching
// templates.
//
// # Architecture
//
//   - Sender: interface that email providers implement (see mailer/resend)
//   - Renderer: converts markdown templates with YAML frontmatter to HTML
//   - Mailer: combines both and knows how to deliver a postcard
//
// # Usage
//
//	sender := resend.New(resend.Config{
//		APIKey:      os.Getenv("RESEND_API_KEY"),
//		SenderEmail: "onboarding@resend.dev",
//		SenderName:  "Postcard",
//	})
//
//	renderer, err := mailer.NewRenderer(emails.FS, mailer.RendererConfig{})
//	if err != nil {
//		return err
//	}
//
//	m := mailer.New(sender, renderer, mailer.Config{
//		FallbackSubject: "You received a postcard",
//		DefaultLayout:   "base.html",
//	})
//
//	id, err := m.SendPostcard(ctx, mailer.Delivery{
//		Email:   "mia@example.com",
//		To:      "Mia",
//		From:    "Sam",
//		Message: "See you soon",
//		PNG:     png,
//	})
//
// # Templates
//
// Templates are markdown files with optional YAML frontmatter:
//
//	---
//	Subject: You received a postcard 💌
//	---
//	**{{literal .To}}**, you have mail.
//
//	[!inline|Your postcard](cid:{{.ImageCID}})
//
//	{{literal .Message}}
//
//	With love, {{literal .From}}
//
// All templates and layouts are parsed by NewRenderer. The "literal"
// function escapes markdown punctuation in the HTML part and is a no-op in
// the plain-text part, so user text always renders as typed.
//
// The [!inline|Alt](src) syntax renders an email-safe <img> tag; only cid:,
// https:// and http:// sources are accepted.
//
// # Postcards
//
// SendPostcard strips markup from the names and message, attaches the PNG
// as postcard.png with Content-ID "postcard" and tags the message with
// "postcard" and a fresh "postcard_id". It does not retry.
//
// # Errors
//
//   - ErrNoRecipient: No recipient specified
//   - ErrNoSubject: No subject in params, frontmatter or config
//   - ErrNoContent: Empty postcard image
//   - ErrTemplateNotFound: Template file not found
//   - ErrLayoutNotFound: Layout file not found
//   - ErrRenderFailed: Template rendering failed
//   - ErrSendFailed: Provider failed to deliver
//   - ErrInvalidFrontmatter: Invalid YAML frontmatter
package mailer
