package ingest

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	gmtext "github.com/yuin/goldmark/text"

	"edumate/internal/port"
)

var _ port.Normaliser = (*Markdown)(nil)

// Markdown strips markup by walking the goldmark AST and keeping only text
// content, with block boundaries preserved as blank lines.
type Markdown struct {
	md goldmark.Markdown
}

func NewMarkdown() *Markdown {
	return &Markdown{md: goldmark.New()}
}

func (n *Markdown) MIMETypes() []string {
	return []string{"text/markdown", "text/x-markdown"}
}

func (n *Markdown) Normalise(sourceName string, data []byte) (string, error) {
	root := n.md.Parser().Parse(gmtext.NewReader(data))

	var buf bytes.Buffer
	err := ast.Walk(root, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		switch t := node.(type) {
		case *ast.Text:
			if entering {
				buf.Write(t.Segment.Value(data))
				if t.SoftLineBreak() || t.HardLineBreak() {
					buf.WriteByte('\n')
				}
			}
		case *ast.AutoLink:
			if entering {
				buf.Write(t.URL(data))
			}
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			if entering {
				writeLines(&buf, data, node)
			}
		default:
			if !entering && node.Type() == ast.TypeBlock {
				buf.WriteString("\n\n")
			}
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return "", fmt.Errorf("parsing markdown %s: %w", sourceName, err)
	}

	return buf.String(), nil
}

func writeLines(buf *bytes.Buffer, source []byte, node ast.Node) {
	lines := node.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		buf.Write(seg.Value(source))
	}
}
