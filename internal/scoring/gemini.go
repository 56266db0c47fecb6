package scoring

import (
	"context"
	"errors"
	"fmt"
	"slices"

	genai "google.golang.org/genai"
)

// GeminiModel calls the Gemini API through the genai SDK.
type GeminiModel struct {
	client *genai.Client
	model  string
}

func NewGeminiModel(ctx context.Context, apiKey, model string) (*GeminiModel, error) {
	if apiKey == "" {
		return nil, errors.New("missing GEMINI_API_KEY")
	}
	if model == "" {
		model = "gemini-2.5-flash"
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey, Backend: genai.BackendGeminiAPI})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &GeminiModel{client: c, model: model}, nil
}

func (g *GeminiModel) Name() string { return g.model }

// Generate asks for a JSON response to a single user prompt.
func (g *GeminiModel) Generate(ctx context.Context, req Request) (Generation, error) {
	res, err := g.client.Models.GenerateContent(ctx, g.model, []*genai.Content{
		genai.NewContentFromText(req.Prompt, genai.RoleUser),
	}, &genai.GenerateContentConfig{ResponseMIMEType: "application/json"})
	if err != nil {
		return Generation{}, classifyGeminiError(err)
	}

	gen := Generation{Text: res.Text()}
	if u := res.UsageMetadata; u != nil {
		gen.PromptTokens = int(u.PromptTokenCount)
		gen.OutputTokens = int(u.CandidatesTokenCount)
	}
	if gen.Text == "" {
		return Generation{}, fmt.Errorf("empty response from gemini")
	}
	return gen, nil
}

// ListModels returns the models that support generateContent.
func (g *GeminiModel) ListModels(ctx context.Context) ([]ModelInfo, error) {
	var out []ModelInfo
	for m, err := range g.client.Models.All(ctx) {
		if err != nil {
			return nil, fmt.Errorf("list gemini models: %w", classifyGeminiError(err))
		}
		if !slices.Contains(m.SupportedActions, "generateContent") {
			continue
		}
		out = append(out, ModelInfo{
			Name:             m.Name,
			DisplayName:      m.DisplayName,
			Description:      m.Description,
			SupportedMethods: m.SupportedActions,
		})
	}
	return out, nil
}

// classifyGeminiError marks rate limits and server errors retryable.
func classifyGeminiError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) && (apiErr.Code == 429 || apiErr.Code >= 500) {
		return &RetryableError{StatusCode: apiErr.Code, Message: apiErr.Message}
	}
	return fmt.Errorf("gemini api: %w", err)
}
