//go:build tesseract

package ocr

import (
	"context"
	"fmt"
	"image"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// TesseractRecognizer runs OCR locally through libtesseract. Its raw result
// mimics the Clova lines/words shape so layout reconstruction works the
// same offline.
type TesseractRecognizer struct {
	languages     []string
	clientFactory func() *gosseract.Client
}

// NewTesseractRecognizer returns a local recognizer for languages
// (e.g. "kor", "eng").
func NewTesseractRecognizer(languages []string) (*TesseractRecognizer, error) {
	return &TesseractRecognizer{languages: languages, clientFactory: gosseract.NewClient}, nil
}

func (t *TesseractRecognizer) Name() string { return "tesseract" }

func (t *TesseractRecognizer) Recognize(ctx context.Context, img Image) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c := t.clientFactory()
	defer c.Close()

	if err := c.SetImageFromBytes(img.Data); err != nil {
		return nil, fmt.Errorf("set image: %w", err)
	}
	if len(t.languages) > 0 {
		if err := c.SetLanguage(t.languages...); err != nil {
			return nil, fmt.Errorf("set languages: %w", err)
		}
	}
	boxes, err := c.GetBoundingBoxesVerbose()
	if err != nil {
		return nil, fmt.Errorf("recognize words: %w", err)
	}

	raw := linesShape(boxes)
	return &Result{Text: ExtractText(raw), Raw: raw, Provider: t.Name()}, nil
}

type lineKey struct{ block, par, line int }

// linesShape groups word boxes by (block, paragraph, line) into
// images[0].lines[].words[] with boundingPoly vertices.
func linesShape(boxes []gosseract.BoundingBox) map[string]any {
	var (
		order  []lineKey
		groups = map[lineKey][]gosseract.BoundingBox{}
	)
	for _, b := range boxes {
		if strings.TrimSpace(b.Word) == "" {
			continue
		}
		k := lineKey{b.BlockNum, b.ParNum, b.LineNum}
		if _, seen := groups[k]; !seen {
			order = append(order, k)
		}
		groups[k] = append(groups[k], b)
	}

	lines := make([]any, 0, len(order))
	for _, k := range order {
		words := make([]any, 0, len(groups[k]))
		texts := make([]string, 0, len(groups[k]))
		for _, b := range groups[k] {
			words = append(words, map[string]any{
				"text":         b.Word,
				"confidence":   b.Confidence / 100,
				"boundingPoly": map[string]any{"vertices": vertices(b.Box)},
			})
			texts = append(texts, b.Word)
		}
		lines = append(lines, map[string]any{
			"inferText": strings.Join(texts, " "),
			"words":     words,
		})
	}
	return map[string]any{
		"images": []any{map[string]any{"lines": lines}},
	}
}

func vertices(r image.Rectangle) []any {
	pt := func(x, y int) any { return map[string]any{"x": float64(x), "y": float64(y)} }
	return []any{
		pt(r.Min.X, r.Min.Y),
		pt(r.Max.X, r.Min.Y),
		pt(r.Max.X, r.Max.Y),
		pt(r.Min.X, r.Max.Y),
	}
}
