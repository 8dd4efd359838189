package mailer

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"path"
	"strings"
	texttemplate "text/template"

	"github.com/yuin/goldmark"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

// Renderer converts markdown templates with YAML frontmatter to HTML.
// Every template and layout is read and parsed once by NewRenderer;
// afterwards the Renderer is read-only and safe for concurrent use.
type Renderer struct {
	md        goldmark.Markdown
	templates map[string]*parsedTemplate
	layouts   map[string]*template.Template
}

// parsedTemplate holds a template body parsed twice: the markdown variant
// escapes literal values so user text cannot inject markdown, the text
// variant inserts them verbatim for the plain-text part.
type parsedTemplate struct {
	metadata map[string]any
	markdown *texttemplate.Template
	text     *texttemplate.Template
}

// RendererConfig configures the renderer.
type RendererConfig struct {
	TemplateDir string // Default: "."
	LayoutDir   string // Default: "layouts"
	ImageWidth  string // Width attribute of inline images. Default: "600"
}

// NewRenderer parses every *.md template under TemplateDir (excluding
// LayoutDir) and every *.html layout in LayoutDir.
func NewRenderer(filesystem fs.FS, cfg RendererConfig) (*Renderer, error) {
	if cfg.TemplateDir == "" {
		cfg.TemplateDir = "."
	}
	if cfg.LayoutDir == "" {
		cfg.LayoutDir = "layouts"
	}

	r := &Renderer{
		md: goldmark.New(
			goldmark.WithExtensions(&InlineImageExtension{Width: cfg.ImageWidth}),
			goldmark.WithRendererOptions(gmhtml.WithHardWraps()),
		),
		templates: make(map[string]*parsedTemplate),
		layouts:   make(map[string]*template.Template),
	}

	layoutNames, err := fs.Glob(filesystem, path.Join(cfg.LayoutDir, "*.html"))
	if err != nil {
		return nil, fmt.Errorf("%w: list layouts: %v", ErrLayoutNotFound, err)
	}
	for _, p := range layoutNames {
		content, err := fs.ReadFile(filesystem, p)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrLayoutNotFound, p, err)
		}
		name := path.Base(p)
		tmpl, err := template.New(name).Parse(string(content))
		if err != nil {
			return nil, fmt.Errorf("%w: parse layout %s: %v", ErrRenderFailed, name, err)
		}
		r.layouts[name] = tmpl
	}

	err = fs.WalkDir(filesystem, cfg.TemplateDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if p == cfg.LayoutDir {
				return fs.SkipDir
			}
			return nil
		}
		if path.Ext(p) != ".md" {
			return nil
		}

		name := strings.TrimPrefix(p, cfg.TemplateDir+"/")
		if cfg.TemplateDir == "." {
			name = p
		}
		content, err := fs.ReadFile(filesystem, p)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrTemplateNotFound, name, err)
		}
		parsed, err := parseBody(name, content)
		if err != nil {
			return err
		}
		r.templates[name] = parsed
		return nil
	})
	if err != nil {
		return nil, err
	}

	return r, nil
}

func parseBody(name string, content []byte) (*parsedTemplate, error) {
	tmpl, err := ParseTemplate(content)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrRenderFailed, name, err)
	}

	md, err := texttemplate.New(name).
		Funcs(texttemplate.FuncMap{"literal": EscapeMarkdown}).
		Parse(tmpl.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: parse template %s: %v", ErrRenderFailed, name, err)
	}
	txt, err := texttemplate.New(name).
		Funcs(texttemplate.FuncMap{"literal": func(s string) string { return s }}).
		Parse(tmpl.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: parse template %s: %v", ErrRenderFailed, name, err)
	}

	return &parsedTemplate{metadata: tmpl.Metadata, markdown: md, text: txt}, nil
}

// RenderResult contains the rendered HTML, plain text, and extracted metadata.
type RenderResult struct {
	Metadata map[string]any
	HTML     string
	Text     string
}

// Has reports whether a template with the given name was loaded.
func (r *Renderer) Has(templateName string) bool {
	_, ok := r.templates[templateName]
	return ok
}

// Render executes a template with data, converts it to HTML and wraps it in layout.
func (r *Renderer) Render(layout, templateName string, data any) (*RenderResult, error) {
	tmpl, ok := r.templates[templateName]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, templateName)
	}
	layoutTmpl, ok := r.layouts[layout]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLayoutNotFound, layout)
	}

	var markdown bytes.Buffer
	if err := tmpl.markdown.Execute(&markdown, data); err != nil {
		return nil, fmt.Errorf("%w: execute template: %v", ErrRenderFailed, err)
	}

	var plain bytes.Buffer
	if err := tmpl.text.Execute(&plain, data); err != nil {
		return nil, fmt.Errorf("%w: execute template: %v", ErrRenderFailed, err)
	}

	var content bytes.Buffer
	if err := r.md.Convert(markdown.Bytes(), &content); err != nil {
		return nil, fmt.Errorf("%w: convert markdown: %v", ErrRenderFailed, err)
	}

	var out bytes.Buffer
	err := layoutTmpl.Execute(&out, map[string]any{
		"Content":  template.HTML(content.String()),
		"Metadata": tmpl.metadata,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: execute layout: %v", ErrRenderFailed, err)
	}

	return &RenderResult{
		HTML:     out.String(),
		Text:     plain.String(),
		Metadata: tmpl.metadata,
	}, nil
}

// markdownPunct is the ASCII punctuation CommonMark allows to be backslash-escaped.
const markdownPunct = "\\`*_{}[]()<>#+-=.!|~&"

// EscapeMarkdown backslash-escapes markdown punctuation so s renders as literal
// text. The first whitespace of each line becomes a character reference, so
// indentation cannot open a code block.
func EscapeMarkdown(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	lineStart := true
	for _, r := range s {
		switch {
		case lineStart && r == ' ':
			b.WriteString("&#32;")
		case lineStart && r == '\t':
			b.WriteString("&#9;")
		default:
			if r < 0x80 && strings.ContainsRune(markdownPunct, r) {
				b.WriteByte('\\')
			}
			b.WriteRune(r)
		}
		lineStart = r == '\n'
	}
	return b.String()
}
