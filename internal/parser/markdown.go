package parser

import (
	"bytes"
	"io"
	"strconv"
	"strings"

	"github.com/dgallion1/essaygest/internal/doctree"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownParser handles typed answers written in Markdown.
type MarkdownParser struct{}

func (p *MarkdownParser) Parse(r io.Reader, filename string) (*doctree.DocTree, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	doc := goldmark.New().Parser().Parse(text.NewReader(src))
	title := strings.TrimSuffix(strings.TrimSuffix(filename, ".md"), ".markdown")
	b := newTreeBuilder(title)

	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		switch node := n.(type) {
		case *ast.Heading:
			b.heading(node.Level, blockText(node, src))
		case *ast.List:
			// One paragraph per item keeps numbered answers apart.
			for item := node.FirstChild(); item != nil; item = item.NextSibling() {
				b.paragraph(listItemText(node, item, src))
			}
		default:
			b.paragraph(blockText(n, src))
		}
	}
	return b.tree(title), nil
}

func listItemText(list *ast.List, item ast.Node, src []byte) string {
	t := blockText(item, src)
	if t == "" {
		return ""
	}
	if list.IsOrdered() {
		return strconv.Itoa(list.Start+indexOf(list, item)) + ". " + t
	}
	return "- " + t
}

func indexOf(parent, child ast.Node) int {
	i := 0
	for c := parent.FirstChild(); c != nil && c != child; c = c.NextSibling() {
		i++
	}
	return i
}

// blockText gets the text content of a goldmark AST node. Soft line breaks
// are kept as newlines so the flat segmenter can rejoin hyphenated words.
func blockText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	if n.Type() == ast.TypeBlock && n.ChildCount() == 0 {
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			line := lines.At(i)
			buf.Write(line.Value(src))
		}
	}
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			buf.Write(t.Segment.Value(src))
			if t.HardLineBreak() || t.SoftLineBreak() {
				buf.WriteByte('\n')
			}
			continue
		}
		if c.Type() == ast.TypeBlock && buf.Len() > 0 {
			buf.WriteByte('\n')
		}
		buf.WriteString(blockText(c, src))
	}
	return strings.TrimSpace(buf.String())
}
