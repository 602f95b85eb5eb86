// Package render turns lesson markdown into a self-contained HTML document.
//
// Output is deterministic: the same input always yields byte-identical HTML.
// Raw HTML in the markdown is omitted, never passed through.
package render

import (
	"bytes"
	"fmt"
	"html"
	"log/slog"
	"strings"

	"github.com/adrg/frontmatter"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// EmptyPlaceholder is returned for null or empty input
const EmptyPlaceholder = `<p class="empty">No content available.</p>`

// DefaultTitle is the document title when the lesson declares none
const DefaultTitle = "Lesson"

// Renderer converts markdown to HTML. It holds no per-call state and is safe
// for concurrent use.
type Renderer struct {
	md        goldmark.Markdown
	title     string
	wrapEmpty bool
	logger    *slog.Logger
}

// Option configures a Renderer
type Option func(*Renderer)

// WithTitle sets the fallback document title
func WithTitle(title string) Option {
	return func(r *Renderer) {
		if title != "" {
			r.title = title
		}
	}
}

// WithWrapEmpty makes empty input produce a full document around the
// placeholder instead of the bare placeholder fragment.
func WithWrapEmpty(wrap bool) Option {
	return func(r *Renderer) {
		r.wrapEmpty = wrap
	}
}

// WithLogger sets the logger for conversion failures
func WithLogger(l *slog.Logger) Option {
	return func(r *Renderer) {
		r.logger = l
	}
}

// New creates a renderer with GFM (tables, strikethrough, task lists,
// autolinks), heading anchors and callout blockquotes.
func New(opts ...Option) *Renderer {
	r := &Renderer{
		title:  DefaultTitle,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}

	r.md = goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
			parser.WithASTTransformers(util.Prioritized(calloutTransformer{}, 500)),
		),
	)
	return r
}

type frontMatter struct {
	Title string `yaml:"title"`
}

// Render returns the HTML document for markdown. It never fails: empty input
// yields EmptyPlaceholder and a conversion error yields a document showing
// the escaped source.
func (r *Renderer) Render(markdown string) string {
	out, err := r.RenderDocument(markdown)
	if err != nil {
		r.logger.Warn("markdown conversion failed", "error", err)
		return r.fallback(markdown)
	}
	return out
}

// RenderBytes is Render for byte input; nil is treated as empty
func (r *Renderer) RenderBytes(src []byte) string {
	return r.Render(string(src))
}

// RenderDocument is Render with conversion errors reported
func (r *Renderer) RenderDocument(markdown string) (string, error) {
	if isEmpty(markdown) {
		if r.wrapEmpty {
			return wrap(r.title, EmptyPlaceholder)
		}
		return EmptyPlaceholder, nil
	}

	body, title, err := r.convert(markdown)
	if err != nil {
		return "", err
	}
	doc, err := wrap(title, body)
	if err != nil {
		return "", fmt.Errorf("wrap document: %w", err)
	}
	return doc, nil
}

// Fragment returns only the rendered body, without the document template
func (r *Renderer) Fragment(markdown string) (string, error) {
	if isEmpty(markdown) {
		return EmptyPlaceholder, nil
	}
	body, _, err := r.convert(markdown)
	return body, err
}

// Title returns the title Render would use for markdown: the frontmatter
// title, else the first level-one heading, else the configured default.
func (r *Renderer) Title(markdown string) string {
	src, meta := stripFrontMatter([]byte(markdown))
	if meta.Title != "" {
		return meta.Title
	}
	doc := r.md.Parser().Parse(text.NewReader(src))
	if t := firstHeading(doc, src); t != "" {
		return t
	}
	return r.title
}

func (r *Renderer) convert(markdown string) (body, title string, err error) {
	src, meta := stripFrontMatter([]byte(markdown))

	doc := r.md.Parser().Parse(text.NewReader(src))

	var buf bytes.Buffer
	if err := r.md.Renderer().Render(&buf, src, doc); err != nil {
		return "", "", fmt.Errorf("render markdown: %w", err)
	}

	title = meta.Title
	if title == "" {
		title = firstHeading(doc, src)
	}
	if title == "" {
		title = r.title
	}
	return buf.String(), title, nil
}

func (r *Renderer) fallback(markdown string) string {
	body := "<pre>" + html.EscapeString(markdown) + "</pre>"
	doc, err := wrap(r.title, body)
	if err != nil {
		return body
	}
	return doc
}

// stripFrontMatter removes a leading YAML block. Input whose frontmatter
// cannot be parsed is returned unchanged.
func stripFrontMatter(src []byte) ([]byte, frontMatter) {
	var meta frontMatter
	body, err := frontmatter.Parse(bytes.NewReader(src), &meta)
	if err != nil {
		return src, frontMatter{}
	}
	return body, meta
}

func firstHeading(doc ast.Node, source []byte) string {
	var title string
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if h, ok := n.(*ast.Heading); ok && entering && h.Level == 1 {
			title = strings.TrimSpace(string(h.Text(source)))
			return ast.WalkStop, nil
		}
		return ast.WalkContinue, nil
	})
	return title
}

func isEmpty(markdown string) bool {
	return strings.TrimSpace(markdown) == ""
}
