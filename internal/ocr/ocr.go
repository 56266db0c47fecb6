// Package ocr talks to OCR providers and turns their responses into flat
// transcript text. Paragraph reconstruction from the raw response lives in
// the layout package.
package ocr

import (
	"context"
	"errors"
	"fmt"
)

// ErrNoText is returned when a provider answered but no text could be found.
var ErrNoText = errors.New("ocr: no text extracted")

// NoTextMessage is shown in place of an empty transcript.
const NoTextMessage = "텍스트를 추출할 수 없습니다."

// Image is an uploaded image to recognize.
type Image struct {
	Name        string
	ContentType string
	Data        []byte
}

// Result is a provider response. Raw is the decoded JSON body (or the body
// as a string when the provider did not answer with JSON) and is passed
// untouched to the layout reconstructor.
type Result struct {
	Text     string `json:"text"`
	Raw      any    `json:"rawResult"`
	Provider string `json:"provider"`
	Mock     bool   `json:"mock"`
}

// Recognizer runs OCR on a single image.
type Recognizer interface {
	Recognize(ctx context.Context, img Image) (*Result, error)
	Name() string
}

// ProviderError is a non-2xx provider response.
type ProviderError struct {
	StatusCode int
	Status     string
	Body       any
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("ocr provider status %d: %s", e.StatusCode, e.Status)
}

// Retryable reports whether the request may succeed if repeated.
func (e *ProviderError) Retryable() bool {
	return e.StatusCode == 429 || e.StatusCode >= 500
}

// Select returns the recognizer for provider ("clova" or "tesseract"). Clova
// without a URL or secret selects MockRecognizer.
func Select(provider, clovaURL, clovaSecret string, languages []string) (Recognizer, error) {
	switch provider {
	case "", "clova":
		if clovaURL == "" || clovaSecret == "" {
			return MockRecognizer{}, nil
		}
		return NewClovaClient(clovaURL, clovaSecret), nil
	case "tesseract":
		return NewTesseractRecognizer(languages)
	default:
		return nil, fmt.Errorf("unknown ocr provider %q", provider)
	}
}
