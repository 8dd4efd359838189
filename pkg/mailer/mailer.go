package mailer

import (
	"bytes"
	"context"
	"errors"
	"strings"
	texttemplate "text/template"

	"github.com/google/uuid"

	"github.com/dmitrymomot/postcard/pkg/sanitizer"
)

// Postcard attachment constants. The HTML body embeds the image as cid:postcard.
const (
	PostcardFilename    = "postcard.png"
	PostcardContentType = "image/png"
	PostcardContentID   = "postcard"
)

// Mailer provides high-level email sending with template rendering.
type Mailer struct {
	sender   Sender
	renderer *Renderer
	config   Config
	newID    func() string
}

// New creates a new Mailer with the given sender and renderer.
func New(sender Sender, renderer *Renderer, cfg Config) *Mailer {
	if cfg.PostcardTemplate == "" {
		cfg.PostcardTemplate = "postcard.md"
	}
	return &Mailer{
		sender:   sender,
		renderer: renderer,
		config:   cfg,
		newID:    uuid.NewString,
	}
}

// SendParams contains parameters for sending a templated email.
type SendParams struct {
	To       string // Single recipient
	Template string // Template filename (e.g., "postcard.md")
	Data     any    // Template data

	// Optional overrides
	Subject     string       // Override template subject
	Layout      string       // Override default layout
	From        string       // Override default sender
	ReplyTo     string       // Reply-to address
	Tags        Tags         // Provider-side tags
	Attachments []Attachment // File attachments
}

// Send renders a template and sends an email.
// Subject resolution: params.Subject > template metadata > config fallback.
func (m *Mailer) Send(ctx context.Context, params SendParams) error {
	if strings.TrimSpace(params.To) == "" {
		return ErrNoRecipient
	}

	layout := params.Layout
	if layout == "" {
		layout = m.config.DefaultLayout
	}

	result, err := m.renderer.Render(layout, params.Template, params.Data)
	if err != nil {
		return errors.Join(ErrRenderFailed, err)
	}

	subject := params.Subject
	if subject == "" {
		if fromMeta, ok := result.Metadata["Subject"].(string); ok && fromMeta != "" {
			subject = fromMeta
		} else {
			subject = m.config.FallbackSubject
		}
	}
	if subject == "" {
		return ErrNoSubject
	}

	// Subjects may reference template data: "{{.From}} sent you a postcard"
	processedSubject, err := m.processSubject(subject, params.Data)
	if err != nil {
		return errors.Join(ErrRenderFailed, err)
	}

	email := &Email{
		To:          []string{strings.TrimSpace(params.To)},
		Subject:     processedSubject,
		HTML:        result.HTML,
		Text:        result.Text,
		From:        params.From,
		ReplyTo:     params.ReplyTo,
		Tags:        params.Tags,
		Attachments: params.Attachments,
	}

	if err := m.sender.Send(ctx, email); err != nil {
		return errors.Join(ErrSendFailed, err)
	}

	return nil
}

// Delivery is a rendered postcard and the names that go with it.
type Delivery struct {
	Email   string // Recipient address
	To      string // Recipient name
	From    string // Sender name
	Message string
	PNG     []byte // Encoded postcard image
}

// PostcardData is the data the postcard template is executed with.
// Text values are stripped of markup; use {{literal .Message}} in the
// template to keep markdown punctuation from being interpreted.
type PostcardData struct {
	To       string
	From     string
	Message  string
	ImageCID string
}

// SendPostcard emails the postcard image as an inline attachment and
// returns the postcard ID it was tagged with. Failures are terminal;
// nothing is retried.
func (m *Mailer) SendPostcard(ctx context.Context, d Delivery) (string, error) {
	if strings.TrimSpace(d.Email) == "" {
		return "", ErrNoRecipient
	}
	if len(d.PNG) == 0 {
		return "", ErrNoContent
	}

	id := m.newID()
	tags := SimpleTags("postcard")
	tags["postcard_id"] = id

	err := m.Send(ctx, SendParams{
		To:       d.Email,
		Template: m.config.PostcardTemplate,
		Data: PostcardData{
			To:       sanitizer.PlainText(d.To),
			From:     sanitizer.PlainText(d.From),
			Message:  sanitizer.StripHTML(d.Message),
			ImageCID: PostcardContentID,
		},
		Tags: tags,
		Attachments: []Attachment{{
			Filename:    PostcardFilename,
			ContentType: PostcardContentType,
			ContentID:   PostcardContentID,
			Content:     d.PNG,
		}},
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

func (m *Mailer) processSubject(subject string, data any) (string, error) {
	if !strings.Contains(subject, "{{") {
		return subject, nil
	}

	tmpl, err := texttemplate.New("subject").Parse(subject)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}
