package ocr

import "context"

// MockText is returned by MockRecognizer in place of real OCR output.
const MockText = "환경변수가 미설정되어 Mock 텍스트를 반환합니다. 실제 OCR 응답 대신입니다."

// MockRecognizer stands in for the OCR provider when no credentials are
// configured so the rest of the service still runs end to end.
type MockRecognizer struct{}

func (MockRecognizer) Name() string { return "mock" }

func (MockRecognizer) Recognize(_ context.Context, img Image) (*Result, error) {
	return &Result{
		Text: MockText,
		Raw: map[string]any{
			"mock":     true,
			"reason":   "MISSING_ENV",
			"fileName": img.Name,
			"size":     len(img.Data),
		},
		Provider: "mock",
		Mock:     true,
	}, nil
}
