package mailer

import "fmt"

// Tags are provider-side labels attached to a message. Values are either
// presence-only (struct{}{}) or key-value strings; each provider adapter
// converts them to its own format.
type Tags map[string]any

// SimpleTags creates presence-only tags from a list of tag names.
func SimpleTags(names ...string) Tags {
	t := make(Tags, len(names))
	for _, n := range names {
		t[n] = struct{}{}
	}
	return t
}

// Recipient formats a name and email into RFC 5322 address format.
// Returns "Name <email>" if name is provided, otherwise just email.
func Recipient(name, email string) string {
	if name == "" {
		return email
	}
	return fmt.Sprintf("%s <%s>", name, email)
}

// Email is a fully-prepared message ready for a Sender.
type Email struct {
	Headers     map[string]string // Custom headers
	Tags        Tags              // Provider-side tags
	Subject     string            // Email subject
	HTML        string            // HTML body content
	Text        string            // Plain text alternative
	From        string            // Override default sender (if provider allows)
	ReplyTo     string            // Reply-to address
	To          []string          // Recipients (at least one required)
	Attachments []Attachment      // File attachments
}

// Attachment is a file sent with the email. A non-empty ContentID makes it
// an inline part that the HTML body can reference as cid:<ContentID>.
type Attachment struct {
	Filename    string // Display name for the attachment
	ContentType string // MIME type (e.g., "image/png")
	ContentID   string // Content-ID for inline attachments
	Content     []byte // Raw file content
}

// Inline reports whether the attachment is referenced from the HTML body.
func (a Attachment) Inline() bool {
	return a.ContentID != ""
}
