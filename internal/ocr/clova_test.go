package ocr

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClovaClient_RequestAndLinesResponse(t *testing.T) {
	var got clovaRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-OCR-SECRET") != "s3cret" {
			t.Errorf("expected secret header, got %q", r.Header.Get("X-OCR-SECRET"))
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json;charset=UTF-8")
		w.Write([]byte(`{"images":[{"lines":[{"inferText":"첫째, 상담을"},{"inferText":"둘째,"}]}]}`))
	}))
	defer srv.Close()

	c := NewClovaClient(srv.URL, "s3cret")
	res, err := c.Recognize(context.Background(), Image{Name: "answer.png", ContentType: "image/png", Data: []byte("PNGDATA")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got.Version != "V2" {
		t.Errorf("expected version V2, got %q", got.Version)
	}
	if got.RequestID == "" || got.Timestamp == 0 {
		t.Errorf("expected requestId and timestamp, got %+v", got)
	}
	if len(got.Images) != 1 || got.Images[0].Format != "PNG" || got.Images[0].Name != "answer.png" {
		t.Fatalf("unexpected images payload: %+v", got.Images)
	}
	data, _ := base64.StdEncoding.DecodeString(got.Images[0].Data)
	if string(data) != "PNGDATA" {
		t.Errorf("expected base64 image data, got %q", data)
	}

	if res.Text != "첫째, 상담을\n둘째," {
		t.Errorf("unexpected text %q", res.Text)
	}
	if _, ok := res.Raw.(map[string]any); !ok {
		t.Errorf("expected decoded JSON raw result, got %T", res.Raw)
	}
	if res.Provider != "clova" || res.Mock {
		t.Errorf("unexpected provider metadata: %+v", res)
	}
}

func TestClovaClient_NonJSONBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("plain body"))
	}))
	defer srv.Close()

	res, err := NewClovaClient(srv.URL, "k").Recognize(context.Background(), Image{Name: "a.jpg"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Raw != "plain body" {
		t.Errorf("expected raw string body, got %#v", res.Raw)
	}
	if res.Text != "" {
		t.Errorf("expected no extracted text for non-JSON body, got %q", res.Text)
	}
}

func TestClovaClient_ProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"code":"0500","message":"busy"}`))
	}))
	defer srv.Close()

	_, err := NewClovaClient(srv.URL, "k").Recognize(context.Background(), Image{Name: "a.jpg"})
	var pe *ProviderError
	if !errors.As(err, &pe) {
		t.Fatalf("expected *ProviderError, got %v", err)
	}
	if pe.StatusCode != http.StatusServiceUnavailable || !pe.Retryable() {
		t.Errorf("unexpected provider error: %+v", pe)
	}
	body, ok := pe.Body.(map[string]any)
	if !ok || body["message"] != "busy" {
		t.Errorf("expected decoded error body, got %#v", pe.Body)
	}
}

func TestImageFormat(t *testing.T) {
	tests := map[string]string{
		"image/png":                "PNG",
		"image/jpeg":               "JPEG",
		"image/tiff; charset=utf8": "TIFF",
		"":                         "JPG",
		"application":              "JPG",
	}
	for in, want := range tests {
		if got := imageFormat(in); got != want {
			t.Errorf("imageFormat(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSelect(t *testing.T) {
	r, err := Select("clova", "", "", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := r.(MockRecognizer); !ok {
		t.Errorf("expected mock recognizer without credentials, got %T", r)
	}
	r, err = Select("", "http://ocr", "k", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := r.(*ClovaClient); !ok {
		t.Errorf("expected clova client, got %T", r)
	}
	if _, err := Select("bogus", "", "", nil); err == nil {
		t.Error("expected error for unknown provider")
	}
}

func TestMockRecognizer(t *testing.T) {
	res, err := MockRecognizer{}.Recognize(context.Background(), Image{Name: "scan.jpg", Data: make([]byte, 42)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Mock || res.Text != MockText {
		t.Errorf("unexpected mock result: %+v", res)
	}
	raw := res.Raw.(map[string]any)
	if raw["reason"] != "MISSING_ENV" || raw["fileName"] != "scan.jpg" || raw["size"] != 42 {
		t.Errorf("unexpected mock raw result: %#v", raw)
	}
}
