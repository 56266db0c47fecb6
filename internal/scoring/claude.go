package scoring

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const anthropicURL = "https://api.anthropic.com/v1/messages"

// ClaudeModel calls the Anthropic Messages API.
type ClaudeModel struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

func NewClaudeModel(apiKey, model string) *ClaudeModel {
	return &ClaudeModel{
		apiKey:  apiKey,
		model:   model,
		baseURL: anthropicURL,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	System    string             `json:"system,omitempty"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Usage struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *ClaudeModel) Name() string { return c.model }

// Generate sends a single-turn prompt and returns the first text block.
func (c *ClaudeModel) Generate(ctx context.Context, req Request) (Generation, error) {
	body, err := json.Marshal(anthropicRequest{
		Model:     c.model,
		MaxTokens: 4096,
		System:    "Respond with a single JSON object and no other text.",
		Messages:  []anthropicMessage{{Role: "user", Content: req.Prompt}},
	})
	if err != nil {
		return Generation{}, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return Generation{}, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.apiKey)
	httpReq.Header.Set("anthropic-version", "2023-06-01")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return Generation{}, fmt.Errorf("claude api: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Generation{}, fmt.Errorf("read response: %w", err)
	}

	// 529 is Anthropic's "overloaded" status and is covered by >= 500.
	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return Generation{}, &RetryableError{
			StatusCode: resp.StatusCode,
			Message:    string(respBody),
		}
	}
	if resp.StatusCode != http.StatusOK {
		return Generation{}, fmt.Errorf("claude api status %d: %s", resp.StatusCode, truncate(string(respBody), 200))
	}

	var apiResp anthropicResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return Generation{}, fmt.Errorf("decode response: %w", err)
	}
	if apiResp.Error != nil {
		return Generation{}, fmt.Errorf("claude error: %s: %s", apiResp.Error.Type, apiResp.Error.Message)
	}
	if len(apiResp.Content) == 0 {
		return Generation{}, fmt.Errorf("empty response from claude")
	}

	return Generation{
		Text:         apiResp.Content[0].Text,
		PromptTokens: apiResp.Usage.InputTokens,
		OutputTokens: apiResp.Usage.OutputTokens,
	}, nil
}

// ListModels reports the configured model only.
func (c *ClaudeModel) ListModels(context.Context) ([]ModelInfo, error) {
	return []ModelInfo{{Name: c.model, SupportedMethods: []string{"messages"}}}, nil
}

// Close releases resources.
func (c *ClaudeModel) Close() {
	c.httpClient.CloseIdleConnections()
}
