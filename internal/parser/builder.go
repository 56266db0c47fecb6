package parser

import (
	"strings"

	"github.com/dgallion1/essaygest/internal/doctree"
)

// treeBuilder nests text blocks under the most recent heading of a lower
// level. Markdown, HTML and DOCX parsers all feed it.
type treeBuilder struct {
	root  *doctree.DocNode
	stack []builderEntry
	text  strings.Builder
}

type builderEntry struct {
	node  *doctree.DocNode
	level int
}

func newTreeBuilder(title string) *treeBuilder {
	root := &doctree.DocNode{Title: title}
	return &treeBuilder{
		root:  root,
		stack: []builderEntry{{node: root, level: 0}},
	}
}

// heading opens a section at level (1-6).
func (b *treeBuilder) heading(level int, title string) {
	b.flush()
	n := &doctree.DocNode{Title: title}
	for len(b.stack) > 1 && b.stack[len(b.stack)-1].level >= level {
		b.stack = b.stack[:len(b.stack)-1]
	}
	parent := b.stack[len(b.stack)-1].node
	parent.Children = append(parent.Children, n)
	b.stack = append(b.stack, builderEntry{node: n, level: level})
}

// paragraph appends a text block to the open section.
func (b *treeBuilder) paragraph(t string) {
	t = strings.TrimSpace(t)
	if t == "" {
		return
	}
	if b.text.Len() > 0 {
		b.text.WriteString("\n\n")
	}
	b.text.WriteString(t)
}

func (b *treeBuilder) flush() {
	t := strings.TrimSpace(b.text.String())
	b.text.Reset()
	if t == "" {
		return
	}
	top := b.stack[len(b.stack)-1].node
	if top.Text != "" {
		top.Text += "\n\n" + t
	} else {
		top.Text = t
	}
}

// tree finishes the build. Text outside any heading becomes the first child
// so it is not lost when headings follow it.
func (b *treeBuilder) tree(title string) *doctree.DocTree {
	b.flush()
	t := &doctree.DocTree{Title: title}
	if b.root.Text != "" {
		t.Children = append(t.Children, &doctree.DocNode{Text: b.root.Text})
	}
	t.Children = append(t.Children, b.root.Children...)
	return t
}
