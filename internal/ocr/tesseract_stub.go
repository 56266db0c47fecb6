//go:build !tesseract

package ocr

import (
	"context"
	"errors"
)

// ErrTesseractUnavailable is returned when the binary was built without the
// tesseract build tag.
var ErrTesseractUnavailable = errors.New("ocr: built without tesseract support (rebuild with -tags tesseract)")

// TesseractRecognizer is unavailable in this build.
type TesseractRecognizer struct{}

func NewTesseractRecognizer(languages []string) (*TesseractRecognizer, error) {
	return nil, ErrTesseractUnavailable
}

func (t *TesseractRecognizer) Name() string { return "tesseract" }

func (t *TesseractRecognizer) Recognize(context.Context, Image) (*Result, error) {
	return nil, ErrTesseractUnavailable
}
