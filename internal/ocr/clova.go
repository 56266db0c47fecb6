package ocr

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ClovaClient calls the Naver Clova general OCR API (V2 JSON + base64).
type ClovaClient struct {
	url        string
	secret     string
	httpClient *http.Client
	now        func() time.Time
}

func NewClovaClient(url, secret string) *ClovaClient {
	return &ClovaClient{
		url:    url,
		secret: secret,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		now: time.Now,
	}
}

type clovaImage struct {
	Format string `json:"format"`
	Name   string `json:"name"`
	Data   string `json:"data"`
}

type clovaRequest struct {
	Version   string       `json:"version"`
	RequestID string       `json:"requestId"`
	Timestamp int64        `json:"timestamp"`
	Images    []clovaImage `json:"images"`
}

func (c *ClovaClient) Name() string { return "clova" }

// Recognize uploads img and extracts a flat transcript from the response.
func (c *ClovaClient) Recognize(ctx context.Context, img Image) (*Result, error) {
	reqBody := clovaRequest{
		Version:   "V2",
		RequestID: uuid.NewString(),
		Timestamp: c.now().UnixMilli(),
		Images: []clovaImage{{
			Format: imageFormat(img.ContentType),
			Name:   img.Name,
			Data:   base64.StdEncoding.EncodeToString(img.Data),
		}},
	}
	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json; charset=utf-8")
	httpReq.Header.Set("X-OCR-SECRET", c.secret)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("clova ocr: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	raw := decodeBody(resp.Header.Get("Content-Type"), respBody)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &ProviderError{
			StatusCode: resp.StatusCode,
			Status:     http.StatusText(resp.StatusCode),
			Body:       raw,
		}
	}

	res := &Result{Raw: raw, Provider: c.Name()}
	if _, isText := raw.(string); !isText {
		res.Text = ExtractText(raw)
	}
	return res, nil
}

// Close releases resources.
func (c *ClovaClient) Close() {
	c.httpClient.CloseIdleConnections()
}

// imageFormat maps "image/png" to "PNG". Unknown types default to JPG.
func imageFormat(contentType string) string {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mt = contentType
	}
	_, sub, ok := strings.Cut(mt, "/")
	if !ok || sub == "" {
		return "JPG"
	}
	return strings.ToUpper(sub)
}

// decodeBody returns the decoded JSON value for JSON responses and the body
// as a string otherwise. A JSON content type with an undecodable body also
// falls back to the string.
func decodeBody(contentType string, body []byte) any {
	if strings.Contains(contentType, "application/json") {
		var v any
		if err := json.Unmarshal(body, &v); err == nil {
			return v
		}
	}
	return string(body)
}
