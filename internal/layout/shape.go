package layout

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Shape identifies which structure of provider response was recognized.
type Shape int

const (
	// Unrecognized means no fragment geometry could be found.
	Unrecognized Shape = iota
	// LinesShape is images[0].lines[] with per-line words[].
	LinesShape
	// FieldsShape is images[0].fields[], one fragment per field.
	FieldsShape
)

func (s Shape) String() string {
	switch s {
	case LinesShape:
		return "lines"
	case FieldsShape:
		return "fields"
	default:
		return "unrecognized"
	}
}

// probe extracts fragment groups from an image container. Each group
// becomes one Line.
type probe struct {
	shape   Shape
	extract func(container map[string]any) [][]Fragment
}

// probes are tried in order; the first one producing a non-empty line wins.
var probes = []probe{
	{shape: LinesShape, extract: lineGroups},
	{shape: FieldsShape, extract: fieldGroups},
}

// container returns images[0] when present, otherwise the response itself
// so responses that put lines or fields at the top level still work.
func container(raw map[string]any) map[string]any {
	if images, ok := raw["images"].([]any); ok {
		if len(images) == 0 {
			return nil
		}
		img, _ := images[0].(map[string]any)
		return img
	}
	return raw
}

func lineGroups(c map[string]any) [][]Fragment {
	lines, ok := c["lines"].([]any)
	if !ok {
		return nil
	}
	groups := make([][]Fragment, 0, len(lines))
	for _, ln := range lines {
		m, _ := ln.(map[string]any)
		words, _ := m["words"].([]any)
		group := make([]Fragment, 0, len(words))
		for _, w := range words {
			wm, ok := w.(map[string]any)
			if !ok {
				continue
			}
			group = append(group, Fragment{
				Text: fragmentText(wm, "text", "inferText"),
				Box:  vertices(wm),
			})
		}
		groups = append(groups, group)
	}
	return groups
}

func fieldGroups(c map[string]any) [][]Fragment {
	fields, ok := c["fields"].([]any)
	if !ok {
		return nil
	}
	groups := make([][]Fragment, 0, len(fields))
	for _, f := range fields {
		fm, ok := f.(map[string]any)
		if !ok {
			continue
		}
		groups = append(groups, []Fragment{{
			Text: fragmentText(fm, "inferText", "text"),
			Box:  vertices(fm),
		}})
	}
	return groups
}

// fragmentText returns the first non-empty string under keys.
func fragmentText(m map[string]any, keys ...string) string {
	for _, k := range keys {
		switch v := m[k].(type) {
		case string:
			if v != "" {
				return v
			}
		case float64, json.Number, bool:
			return toString(v)
		}
	}
	return ""
}

func toString(v any) string {
	switch x := v.(type) {
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case json.Number:
		return x.String()
	case bool:
		return strconv.FormatBool(x)
	}
	return ""
}

// vertices finds a vertex array under the key paths providers use.
func vertices(m map[string]any) Quad {
	var arr []any
	switch {
	case isArray(m["vertices"]):
		arr = m["vertices"].([]any)
	case isArray(nested(m, "boundingPoly", "vertices")):
		arr = nested(m, "boundingPoly", "vertices").([]any)
	case isArray(nested(m, "boundingBox", "vertices")):
		arr = nested(m, "boundingBox", "vertices").([]any)
	case isArray(m["boundingBox"]):
		arr = m["boundingBox"].([]any)
	default:
		return nil
	}
	q := make(Quad, 0, len(arr))
	for _, p := range arr {
		pm, _ := p.(map[string]any)
		q = append(q, Point{X: number(pm["x"]), Y: number(pm["y"])})
	}
	return q
}

func nested(m map[string]any, keys ...string) any {
	var cur any = m
	for _, k := range keys {
		cm, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur = cm[k]
	}
	return cur
}

func isArray(v any) bool {
	_, ok := v.([]any)
	return ok
}

// number converts a decoded JSON scalar to float64. Anything missing or
// non-numeric is 0.
func number(v any) float64 {
	switch x := v.(type) {
	case float64:
		return x
	case float32:
		return float64(x)
	case int:
		return float64(x)
	case int64:
		return float64(x)
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return 0
		}
		return f
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0
		}
		return f
	}
	return 0
}
