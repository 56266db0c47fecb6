package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime"
	"path/filepath"
	"strings"

	"github.com/dgallion1/essaygest/internal/layout"
	"github.com/dgallion1/essaygest/internal/ocr"
	"github.com/dgallion1/essaygest/internal/parser"
)

// Source is one job input: an uploaded file or typed text.
type Source struct {
	Filename    string
	ContentType string
	Data        []byte
	Text        string
}

// Empty reports whether the source carries no input.
func (s Source) Empty() bool {
	return len(s.Data) == 0 && strings.TrimSpace(s.Text) == ""
}

// Recognized is a source after OCR or document parsing, before layout
// reconstruction.
type Recognized struct {
	Text string
	// Raw is the OCR provider response, nil for parsed or typed input.
	Raw      any
	Provider string
	Mock     bool
}

// Reader turns job sources into paragraph text.
type Reader struct {
	OCR           ocr.Recognizer
	Layout        *layout.Reconstructor
	ParserOptions parser.Options
}

// Recognize runs OCR for images, parses documents, and passes typed text
// through.
func (r *Reader) Recognize(ctx context.Context, src Source) (Recognized, error) {
	if len(src.Data) == 0 {
		if strings.TrimSpace(src.Text) == "" {
			return Recognized{}, errors.New("empty source")
		}
		return Recognized{Text: src.Text}, nil
	}

	switch parser.KindOf(src.Filename) {
	case parser.KindImage:
		res, err := r.OCR.Recognize(ctx, ocr.Image{
			Name:        src.Filename,
			ContentType: contentType(src),
			Data:        src.Data,
		})
		if err != nil {
			return Recognized{}, fmt.Errorf("ocr %s: %w", src.Filename, err)
		}
		return Recognized{Text: res.Text, Raw: res.Raw, Provider: res.Provider, Mock: res.Mock}, nil
	case parser.KindDocument:
		text, err := parser.ParseText(bytes.NewReader(src.Data), src.Filename, r.ParserOptions)
		if err != nil {
			return Recognized{}, err
		}
		return Recognized{Text: text}, nil
	default:
		return Recognized{}, fmt.Errorf("unsupported file type: %s", src.Filename)
	}
}

// Reconstruct rebuilds paragraphs. OCR output goes through the geometry
// path; everything else through the flat-text segmenter.
func (r *Reader) Reconstruct(rec Recognized) layout.Result {
	if rec.Raw != nil {
		return r.Layout.Reconstruct(rec.Raw, rec.Text)
	}
	return layout.Result{Document: layout.SplitFlat(rec.Text), Fallback: true}
}

// Read recognizes and reconstructs src.
func (r *Reader) Read(ctx context.Context, src Source) (layout.Result, error) {
	rec, err := r.Recognize(ctx, src)
	if err != nil {
		return layout.Result{}, err
	}
	res := r.Reconstruct(rec)
	if res.Document.Empty() {
		return res, ocr.ErrNoText
	}
	return res, nil
}

func contentType(src Source) string {
	if src.ContentType != "" && src.ContentType != "application/octet-stream" {
		return src.ContentType
	}
	if ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(src.Filename))); ct != "" {
		return ct
	}
	return "image/jpeg"
}
