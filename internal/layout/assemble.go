package layout

import "strings"

// Assemble groups the fragments of a decoded provider response into lines.
// It returns Unrecognized and no lines when the response carries no usable
// line or field structure. Lines are in discovery order.
func Assemble(raw any) (Shape, []Line) {
	obj, ok := raw.(map[string]any)
	if !ok {
		return Unrecognized, nil
	}
	c := container(obj)
	if c == nil {
		return Unrecognized, nil
	}
	for _, p := range probes {
		lines := BuildLines(p.extract(c))
		if len(lines) > 0 {
			return p.shape, lines
		}
	}
	return Unrecognized, nil
}

// BuildLines turns each fragment group into a Line. Fragment texts are
// joined with single spaces in the given order; the line geometry spans
// every fragment box. Groups with no text are skipped. A group with no
// geometry at all is placed at the origin.
func BuildLines(groups [][]Fragment) []Line {
	lines := make([]Line, 0, len(groups))
	for _, g := range groups {
		if ln, ok := buildLine(g); ok {
			lines = append(lines, ln)
		}
	}
	return lines
}

func buildLine(frags []Fragment) (Line, bool) {
	var (
		texts []string
		ln    Line
		seen  bool
	)
	for _, f := range frags {
		if t := strings.TrimSpace(f.Text); t != "" {
			texts = append(texts, t)
		}
		x, top, bottom, ok := f.Box.bounds()
		if !ok {
			continue
		}
		if !seen {
			ln.XLeft, ln.YTop, ln.YBottom = x, top, bottom
			seen = true
			continue
		}
		ln.XLeft = min(ln.XLeft, x)
		ln.YTop = min(ln.YTop, top)
		ln.YBottom = max(ln.YBottom, bottom)
	}
	if len(texts) == 0 {
		return Line{}, false
	}
	ln.Text = strings.Join(texts, " ")
	return ln, true
}
