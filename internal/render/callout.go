package render

import (
	"bytes"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// calloutKinds maps a "> [!KIND]" marker to its CSS class
var calloutKinds = map[string]string{
	"NOTE":      "info",
	"INFO":      "info",
	"TIP":       "success",
	"SUCCESS":   "success",
	"IMPORTANT": "warning",
	"WARNING":   "warning",
	"CAUTION":   "warning",
}

// calloutTransformer turns blockquotes whose first line is a marker such as
// [!WARNING] into <blockquote class="callout warning"> and drops the marker.
type calloutTransformer struct{}

func (calloutTransformer) Transform(doc *ast.Document, reader text.Reader, pc parser.Context) {
	source := reader.Source()

	var quotes []*ast.Blockquote
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if q, ok := n.(*ast.Blockquote); ok && entering {
			quotes = append(quotes, q)
		}
		return ast.WalkContinue, nil
	})

	for _, q := range quotes {
		para, ok := q.FirstChild().(*ast.Paragraph)
		if !ok || para.Lines().Len() == 0 {
			continue
		}
		line := para.Lines().At(0)
		kind, ok := calloutKind(line.Value(source))
		if !ok {
			continue
		}

		// Drop the inline nodes that make up the marker line
		for c := para.FirstChild(); c != nil; {
			next := c.NextSibling()
			t, ok := c.(*ast.Text)
			if !ok || t.Segment.Start < line.Start || t.Segment.Stop > line.Stop {
				break
			}
			para.RemoveChild(para, c)
			c = next
		}
		if para.ChildCount() == 0 {
			q.RemoveChild(q, para)
		}

		q.SetAttributeString("class", []byte("callout "+kind))
	}
}

func calloutKind(line []byte) (string, bool) {
	line = bytes.TrimSpace(line)
	if !bytes.HasPrefix(line, []byte("[!")) || !bytes.HasSuffix(line, []byte("]")) {
		return "", false
	}
	name := string(bytes.ToUpper(line[2 : len(line)-1]))
	kind, ok := calloutKinds[name]
	return kind, ok
}
