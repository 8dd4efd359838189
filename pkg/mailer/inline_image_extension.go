package mailer

import (
	"bytes"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// InlineImageNode is an email-safe image block in the AST.
type InlineImageNode struct {
	ast.BaseInline
	Src []byte
	Alt []byte
}

func (n *InlineImageNode) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, nil, nil)
}

// KindInlineImage is the node kind for InlineImageNode.
var KindInlineImage = ast.NewNodeKind("InlineImage")

func (n *InlineImageNode) Kind() ast.NodeKind {
	return KindInlineImage
}

// inlineImagePrefix triggers the syntax [!inline|Alt text](cid:postcard).
const inlineImagePrefix = "[!inline|"

// allowed image sources; anything else is left to the default link parser.
var inlineImageSchemes = [][]byte{
	[]byte("cid:"),
	[]byte("https://"),
	[]byte("http://"),
}

type inlineImageParser struct{}

// NewInlineImageParser creates the inline image parser.
func NewInlineImageParser() parser.InlineParser {
	return &inlineImageParser{}
}

func (p *inlineImageParser) Trigger() []byte {
	return []byte{'['}
}

func (p *inlineImageParser) Parse(parent ast.Node, block text.Reader, pc parser.Context) ast.Node {
	line, _ := block.PeekLine()
	if !bytes.HasPrefix(line, []byte(inlineImagePrefix)) {
		return nil
	}

	rest := line[len(inlineImagePrefix):]
	alt, after, ok := bytes.Cut(rest, []byte("]("))
	if !ok {
		return nil
	}
	src, _, ok := bytes.Cut(after, []byte(")"))
	if !ok || !hasAllowedScheme(src) {
		return nil
	}

	block.Advance(len(inlineImagePrefix) + len(alt) + 2 + len(src) + 1)

	return &InlineImageNode{Src: src, Alt: alt}
}

func hasAllowedScheme(src []byte) bool {
	for _, s := range inlineImageSchemes {
		if bytes.HasPrefix(src, s) && len(src) > len(s) {
			return true
		}
	}
	return false
}

type inlineImageRenderer struct {
	html.Config
	width string
}

// NewInlineImageRenderer creates the renderer for InlineImageNode.
func NewInlineImageRenderer(width string, opts ...html.Option) renderer.NodeRenderer {
	r := &inlineImageRenderer{
		Config: html.NewConfig(),
		width:  width,
	}
	for _, opt := range opts {
		opt.SetHTMLOption(&r.Config)
	}
	return r
}

func (r *inlineImageRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(KindInlineImage, r.renderInlineImage)
}

func (r *inlineImageRenderer) renderInlineImage(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}

	n := node.(*InlineImageNode)

	_, _ = w.WriteString(`<img src="`)
	_, _ = w.Write(util.EscapeHTML(n.Src))
	_, _ = w.WriteString(`" alt="`)
	_, _ = w.Write(util.EscapeHTML(n.Alt))
	_, _ = w.WriteString(`" width="`)
	_, _ = w.WriteString(r.width)
	_, _ = w.WriteString(`" class="inline-image" style="display:block;max-width:100%;height:auto;border:0">`)

	return ast.WalkContinue, nil
}

// InlineImageExtension adds [!inline|Alt](src) to goldmark. Mail clients
// ignore most CSS, so the image carries its width and style attributes.
type InlineImageExtension struct {
	Width string
}

func (e *InlineImageExtension) Extend(m goldmark.Markdown) {
	width := e.Width
	if width == "" {
		width = "600"
	}
	m.Parser().AddOptions(parser.WithInlineParsers(
		util.Prioritized(NewInlineImageParser(), 50),
	))
	m.Renderer().AddOptions(renderer.WithNodeRenderers(
		util.Prioritized(NewInlineImageRenderer(width), 50),
	))
}

// NewInlineImageExtension creates the extension with the default 600px width.
func NewInlineImageExtension() goldmark.Extender {
	return &InlineImageExtension{}
}
