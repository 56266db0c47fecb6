// Package layout rebuilds readable paragraphs from OCR output.
//
// OCR providers return recognized text as fragments with optional
// bounding boxes. The reconstructor groups fragments into lines, orders
// them top-to-bottom and left-to-right, and splits paragraphs at large
// vertical gaps or list markers. When no usable geometry is present it
// falls back to a text-only paragraph splitter over the provider's flat
// transcript.
package layout

import (
	"strings"
)

// Point is a vertex in image pixel coordinates.
type Point struct {
	X float64
	Y float64
}

// Quad holds the vertices of a fragment's bounding box. Providers normally
// send four points; only the extremes are used and rotation is ignored.
type Quad []Point

// bounds returns the left edge and vertical extent of the quad.
func (q Quad) bounds() (xLeft, yTop, yBottom float64, ok bool) {
	if len(q) == 0 {
		return 0, 0, 0, false
	}
	xLeft, yTop, yBottom = q[0].X, q[0].Y, q[0].Y
	for _, p := range q[1:] {
		xLeft = min(xLeft, p.X)
		yTop = min(yTop, p.Y)
		yBottom = max(yBottom, p.Y)
	}
	return xLeft, yTop, yBottom, true
}

// Fragment is one OCR-detected unit of text. Box is nil when the provider
// returned no geometry for it.
type Fragment struct {
	Text string
	Box  Quad
}

// Line is a row of fragments with its combined geometry.
type Line struct {
	XLeft   float64
	YTop    float64
	YBottom float64
	Text    string
}

func (l Line) height() float64 {
	return l.YBottom - l.YTop
}

// Document is the reconstructed paragraph sequence.
type Document struct {
	Paragraphs []string
}

// String joins paragraphs with a blank line.
func (d Document) String() string {
	return strings.Join(d.Paragraphs, "\n\n")
}

// Empty reports whether the document has no paragraphs.
func (d Document) Empty() bool {
	return len(d.Paragraphs) == 0
}

// Calibration holds the segmentation constants. They were tuned against
// Clova OCR output at typical phone-camera resolutions and may need
// adjusting for providers with a different coordinate scale.
type Calibration struct {
	// GapRatio scales the median line height into the paragraph gap threshold.
	GapRatio float64
	// MinGap is the smallest gap threshold in pixels.
	MinGap float64
	// MinLineHeight is the floor applied to every measured line height.
	MinLineHeight float64
	// DefaultLineHeight is used when no line height can be measured.
	DefaultLineHeight float64
}

// DefaultCalibration returns the stock segmentation constants.
func DefaultCalibration() Calibration {
	return Calibration{
		GapRatio:          0.9,
		MinGap:            12,
		MinLineHeight:     8,
		DefaultLineHeight: 16,
	}
}

// normalized replaces unset or non-positive fields with defaults.
func (c Calibration) normalized() Calibration {
	d := DefaultCalibration()
	if c.GapRatio <= 0 {
		c.GapRatio = d.GapRatio
	}
	if c.MinGap <= 0 {
		c.MinGap = d.MinGap
	}
	if c.MinLineHeight <= 0 {
		c.MinLineHeight = d.MinLineHeight
	}
	if c.DefaultLineHeight <= 0 {
		c.DefaultLineHeight = d.DefaultLineHeight
	}
	return c
}

// normalizeSpace collapses every whitespace run to a single space and trims.
func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
