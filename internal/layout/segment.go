package layout

import (
	"math"
	"regexp"
	"sort"
	"strings"
)

// listMarker matches a leading "1)", "2.", "3-" or "-" followed by
// whitespace, or a leading bullet glyph.
var listMarker = regexp.MustCompile(`^(?:[0-9]+[).\-]\s+|-\s+|[\x{2022}\x{25CF}\x{25E6}]\s*)`)

// StartsListItem reports whether text begins with a list or numbering marker.
func StartsListItem(text string) bool {
	return listMarker.MatchString(text)
}

// Segment orders lines into reading order and groups them into paragraphs.
func Segment(lines []Line, cal Calibration) Document {
	if len(lines) == 0 {
		return Document{}
	}
	cal = cal.normalized()

	sorted := SortLines(lines)
	threshold := GapThreshold(sorted, cal)

	st := segmentState{}
	for _, ln := range sorted {
		st = st.step(ln, threshold)
	}
	st = st.flush()

	doc := Document{Paragraphs: make([]string, 0, len(st.paragraphs))}
	for _, p := range st.paragraphs {
		if text := renderParagraph(p); text != "" {
			doc.Paragraphs = append(doc.Paragraphs, text)
		}
	}
	return doc
}

// SortLines returns a copy of lines ordered top-to-bottom, then left-to-right.
func SortLines(lines []Line) []Line {
	sorted := make([]Line, len(lines))
	copy(sorted, lines)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].YTop == sorted[j].YTop {
			return sorted[i].XLeft < sorted[j].XLeft
		}
		return sorted[i].YTop < sorted[j].YTop
	})
	return sorted
}

// MedianLineHeight returns the median of the floored line heights.
func MedianLineHeight(lines []Line, cal Calibration) float64 {
	cal = cal.normalized()
	if len(lines) == 0 {
		return cal.DefaultLineHeight
	}
	heights := make([]float64, len(lines))
	for i, ln := range lines {
		heights[i] = math.Max(cal.MinLineHeight, ln.height())
	}
	sort.Float64s(heights)
	m := heights[len(heights)/2]
	if m <= 0 {
		return cal.DefaultLineHeight
	}
	return m
}

// GapThreshold is the bottom-to-top distance above which two consecutive
// lines belong to different paragraphs.
func GapThreshold(lines []Line, cal Calibration) float64 {
	cal = cal.normalized()
	return math.Max(cal.MinGap, math.Round(MedianLineHeight(lines, cal)*cal.GapRatio))
}

// segmentState is the accumulator of the paragraph fold.
type segmentState struct {
	paragraphs [][]Line
	current    []Line
	prev       *Line
}

func (s segmentState) step(ln Line, threshold float64) segmentState {
	if s.prev != nil && breaksBefore(*s.prev, ln, threshold) {
		s = s.flush()
	}
	s.current = append(s.current, ln)
	s.prev = &ln
	return s
}

func (s segmentState) flush() segmentState {
	if len(s.current) == 0 {
		return s
	}
	s.paragraphs = append(s.paragraphs, s.current)
	s.current = nil
	return s
}

func breaksBefore(prev, curr Line, threshold float64) bool {
	if curr.YTop-prev.YBottom > threshold {
		return true
	}
	return StartsListItem(curr.Text)
}

func renderParagraph(lines []Line) string {
	parts := make([]string, len(lines))
	for i, ln := range lines {
		parts[i] = ln.Text
	}
	return normalizeSpace(strings.Join(parts, " "))
}
