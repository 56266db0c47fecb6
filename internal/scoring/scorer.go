package scoring

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dgallion1/essaygest/internal/textsplit"
)

// EnrichRequest is the input of Scorer.Enrich.
type EnrichRequest struct {
	Strengths        []string         `json:"strengths"`
	Weaknesses       []string         `json:"weaknesses"`
	Improvements     []string         `json:"improvements"`
	DetailedAnalysis DetailedAnalysis `json:"detailedAnalysis"`
	QuestionTitle    string           `json:"questionTitle"`
	Preferences      Preferences      `json:"preferences"`
}

// Preferences steer the variety of enrichment explanations.
type Preferences struct {
	Theories     []string `json:"theories"`
	StatsSources []string `json:"statsSources"`
	Domains      []string `json:"domains"`
	Tone         string   `json:"tone"`
}

// ImproveRequest is the input of Scorer.ImproveSentences.
type ImproveRequest struct {
	QuestionText string   `json:"questionText"`
	AnswerText   string   `json:"answerText"`
	Weaknesses   []string `json:"weaknesses"`
	Improvements []string `json:"improvements"`
}

// Options tunes a Scorer.
type Options struct {
	// PromptTokenBudget caps the question and answer text sent to the model.
	// 0 disables truncation.
	PromptTokenBudget int
	// MaxRetries bounds attempts on transient provider errors.
	MaxRetries int
	// Backoff returns the wait before retry n. Defaults to Backoff.
	Backoff func(attempt int) time.Duration
}

// Scorer turns questions and answers into model prompts and parses the
// results.
type Scorer struct {
	model Model
	log   *slog.Logger
	opts  Options

	Stats *LLMStats
}

func NewScorer(model Model, log *slog.Logger, opts Options) *Scorer {
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = MaxRetries
	}
	if opts.Backoff == nil {
		opts.Backoff = Backoff
	}
	return &Scorer{
		model: model,
		log:   log,
		opts:  opts,
		Stats: NewLLMStats(time.Hour),
	}
}

// Model returns the configured model's name.
func (s *Scorer) Model() string {
	return s.model.Name()
}

// ListModels returns the provider's generateContent-capable models.
func (s *Scorer) ListModels(ctx context.Context) ([]ModelInfo, error) {
	if l, ok := s.model.(ModelLister); ok {
		return l.ListModels(ctx)
	}
	return []ModelInfo{{Name: s.model.Name()}}, nil
}

// Analyze scores answer against question.
func (s *Scorer) Analyze(ctx context.Context, question, answer string) (Analysis, error) {
	question, answer = strings.TrimSpace(question), strings.TrimSpace(answer)
	if question == "" || answer == "" {
		return Analysis{}, ErrMissingInput
	}
	question = s.fit("question", question, 3)
	answer = s.fit("answer", answer, 3.0/2)

	gen, err := s.generate(ctx, Request{Task: TaskAnalyze, Prompt: BuildAnalyzePrompt(question, answer)})
	if err != nil {
		return Analysis{}, err
	}
	a, err := ParseAnalysis(gen.Text)
	if err != nil {
		return Analysis{}, fmt.Errorf("parse analysis: %w (raw: %s)", err, truncate(gen.Text, 200))
	}
	return a, nil
}

// Enrich expands an analysis into per-item explanations.
func (s *Scorer) Enrich(ctx context.Context, req EnrichRequest) (Enrichment, error) {
	gen, err := s.generate(ctx, Request{Task: TaskEnrich, Prompt: BuildEnrichPrompt(req)})
	if err != nil {
		return Enrichment{}, err
	}
	obj, err := extractJSONObject(gen.Text)
	if err != nil {
		return Enrichment{}, fmt.Errorf("parse enrichment: %w", err)
	}
	var e Enrichment
	if err := json.Unmarshal([]byte(obj), &e); err != nil {
		return Enrichment{}, fmt.Errorf("parse enrichment: %w", err)
	}
	e.StrengthsDetails = alignDetails(e.StrengthsDetails, len(req.Strengths))
	e.WeaknessesDetails = alignDetails(e.WeaknessesDetails, len(req.Weaknesses))
	e.ImprovementsDetails = alignDetails(e.ImprovementsDetails, len(req.Improvements))
	return e, nil
}

// ImproveSentences suggests rewrites for individual answer sentences.
// Suggestions pointing outside the sentence list are dropped.
func (s *Scorer) ImproveSentences(ctx context.Context, req ImproveRequest) ([]SentenceImprovement, error) {
	if strings.TrimSpace(req.AnswerText) == "" {
		return nil, ErrMissingInput
	}
	sentences := textsplit.Sentences(req.AnswerText)

	gen, err := s.generate(ctx, Request{Task: TaskImprove, Prompt: BuildImprovePrompt(req, sentences)})
	if err != nil {
		return nil, err
	}
	obj, err := extractJSONObject(gen.Text)
	if err != nil {
		return nil, fmt.Errorf("parse sentence improvements: %w", err)
	}
	var parsed struct {
		Improvements []SentenceImprovement `json:"improvements"`
	}
	if err := json.Unmarshal([]byte(obj), &parsed); err != nil {
		return nil, fmt.Errorf("parse sentence improvements: %w", err)
	}

	out := make([]SentenceImprovement, 0, len(parsed.Improvements))
	for _, imp := range parsed.Improvements {
		if imp.Position < 0 || imp.Position >= len(sentences) || strings.TrimSpace(imp.ImprovedSentence) == "" {
			continue
		}
		imp.OriginalSentence = sentences[imp.Position].Text
		out = append(out, imp)
	}
	return out, nil
}

// fit truncates text to budget/div tokens.
func (s *Scorer) fit(name, text string, div float64) string {
	if s.opts.PromptTokenBudget <= 0 {
		return text
	}
	out, truncated := textsplit.Fit(text, int(float64(s.opts.PromptTokenBudget)/div))
	if truncated {
		s.log.Warn("prompt text truncated", "field", name, "tokens", textsplit.EstimateTokens(text))
	}
	return out
}

// generate calls the model, retrying transient failures.
func (s *Scorer) generate(ctx context.Context, req Request) (Generation, error) {
	log := s.log.With("task", string(req.Task), "model", s.model.Name())
	var lastErr error
	for attempt := range s.opts.MaxRetries {
		start := time.Now()
		gen, err := s.model.Generate(ctx, req)
		s.Stats.Record(req.Task, time.Since(start).Milliseconds(), gen.PromptTokens, gen.OutputTokens, err)
		if err == nil {
			return gen, nil
		}
		lastErr = err
		if !IsRetryable(err) {
			return Generation{}, err
		}
		if attempt == s.opts.MaxRetries-1 {
			break
		}
		log.Warn("retryable model error", "attempt", attempt, "error", err)
		select {
		case <-time.After(s.opts.Backoff(attempt)):
		case <-ctx.Done():
			return Generation{}, ctx.Err()
		}
	}
	return Generation{}, fmt.Errorf("%w: %w", ErrOverloaded, lastErr)
}

// alignDetails pads or trims details to one entry per input item.
func alignDetails(details [][]string, n int) [][]string {
	out := make([][]string, n)
	for i := range out {
		if i < len(details) && details[i] != nil {
			out[i] = details[i]
		} else {
			out[i] = []string{}
		}
	}
	return out
}
