package doctree

import "strings"

// DocTree is the root of a parsed question or answer document.
type DocTree struct {
	Title    string     // Document title (from metadata or filename)
	Children []*DocNode // Top-level sections
}

// DocNode is a recursive section in the document tree.
type DocNode struct {
	Title    string     // Section heading (empty for leaf text)
	Text     string     // Text content of this node (may be empty for container nodes)
	Page     int        // Source page (0 if N/A)
	Children []*DocNode // Subsections
}

// Paragraphs returns headings and text blocks in document order. Text
// blocks that hold several "\n\n"-separated paragraphs are split.
func (t *DocTree) Paragraphs() []string {
	var out []string
	var walk func(nodes []*DocNode)
	walk = func(nodes []*DocNode) {
		for _, n := range nodes {
			if h := strings.TrimSpace(n.Title); h != "" {
				out = append(out, h)
			}
			for _, p := range strings.Split(n.Text, "\n\n") {
				if p = strings.TrimSpace(p); p != "" {
					out = append(out, p)
				}
			}
			walk(n.Children)
		}
	}
	walk(t.Children)
	return out
}

// Text flattens the tree into blank-line separated paragraphs.
func (t *DocTree) Text() string {
	return strings.Join(t.Paragraphs(), "\n\n")
}
