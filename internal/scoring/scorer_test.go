package scoring

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"
)

type fakeModel struct {
	responses []string
	errs      []error
	calls     int
	prompts   []string
}

func (f *fakeModel) Name() string { return "fake" }

func (f *fakeModel) Generate(_ context.Context, req Request) (Generation, error) {
	i := f.calls
	f.calls++
	f.prompts = append(f.prompts, req.Prompt)
	if i < len(f.errs) && f.errs[i] != nil {
		return Generation{}, f.errs[i]
	}
	if i < len(f.responses) {
		return Generation{Text: f.responses[i], PromptTokens: 3, OutputTokens: 2}, nil
	}
	return Generation{Text: f.responses[len(f.responses)-1]}, nil
}

func testScorer(m Model) *Scorer {
	return NewScorer(m, slog.New(slog.NewTextHandler(io.Discard, nil)), Options{
		Backoff: func(int) time.Duration { return 0 },
	})
}

func TestAnalyze_MissingInput(t *testing.T) {
	s := testScorer(&fakeModel{responses: []string{"{}"}})
	if _, err := s.Analyze(context.Background(), "  ", "answer"); !errors.Is(err, ErrMissingInput) {
		t.Fatalf("expected ErrMissingInput, got %v", err)
	}
	if _, err := s.Analyze(context.Background(), "question", ""); !errors.Is(err, ErrMissingInput) {
		t.Fatalf("expected ErrMissingInput, got %v", err)
	}
}

func TestAnalyze_ParsesModelAnswer(t *testing.T) {
	m := &fakeModel{responses: []string{`{"score": 14, "maxScore": 20, "strengths": ["clear"]}`}}
	s := testScorer(m)

	a, err := s.Analyze(context.Background(), "문제", "답안")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Score != 14 || len(a.Strengths) != 1 {
		t.Errorf("unexpected analysis: %+v", a)
	}
	if !strings.Contains(m.prompts[0], "문제") || !strings.Contains(m.prompts[0], "답안") {
		t.Errorf("prompt does not contain question and answer: %q", m.prompts[0])
	}
	if snap := s.Stats.Snapshot(); snap.Count != 1 || snap.PromptTokens != 3 {
		t.Errorf("expected one recorded call, got %+v", snap)
	}
}

func TestAnalyze_RetriesTransientErrors(t *testing.T) {
	m := &fakeModel{
		errs:      []error{&RetryableError{StatusCode: 503, Message: "busy"}, nil},
		responses: []string{"", `{"score": 10}`},
	}
	s := testScorer(m)

	a, err := s.Analyze(context.Background(), "q", "a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.calls != 2 {
		t.Errorf("expected 2 calls, got %d", m.calls)
	}
	if a.Score != 10 {
		t.Errorf("expected score 10, got %v", a.Score)
	}
}

func TestAnalyze_ExhaustedRetriesAreOverloaded(t *testing.T) {
	busy := &RetryableError{StatusCode: 529, Message: "overloaded"}
	m := &fakeModel{errs: []error{busy, busy, busy, busy}, responses: []string{""}}
	s := testScorer(m)

	_, err := s.Analyze(context.Background(), "q", "a")
	if !errors.Is(err, ErrOverloaded) {
		t.Fatalf("expected ErrOverloaded, got %v", err)
	}
	var retryErr *RetryableError
	if !errors.As(err, &retryErr) || retryErr.StatusCode != 529 {
		t.Errorf("expected the last provider error in the chain, got %v", err)
	}
	if m.calls != MaxRetries {
		t.Errorf("expected %d calls, got %d", MaxRetries, m.calls)
	}
	if snap := s.Stats.Snapshot(); snap.Errors != MaxRetries {
		t.Errorf("expected %d recorded errors, got %d", MaxRetries, snap.Errors)
	}
}

func TestAnalyze_PermanentErrorNotRetried(t *testing.T) {
	m := &fakeModel{errs: []error{errors.New("invalid api key")}, responses: []string{""}}
	s := testScorer(m)

	if _, err := s.Analyze(context.Background(), "q", "a"); err == nil || errors.Is(err, ErrOverloaded) {
		t.Fatalf("expected a permanent error, got %v", err)
	}
	if m.calls != 1 {
		t.Errorf("expected 1 call, got %d", m.calls)
	}
}

func TestEnrich_AlignsDetails(t *testing.T) {
	m := &fakeModel{responses: []string{`{"strengthsDetails": [["why", "how"]], "detailed": {"contentAnalysis": "deep"}}`}}
	s := testScorer(m)

	e, err := s.Enrich(context.Background(), EnrichRequest{
		Strengths:  []string{"a", "b"},
		Weaknesses: []string{"c"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(e.StrengthsDetails) != 2 || len(e.StrengthsDetails[0]) != 2 || len(e.StrengthsDetails[1]) != 0 {
		t.Errorf("unexpected strengths details: %#v", e.StrengthsDetails)
	}
	if len(e.WeaknessesDetails) != 1 || e.WeaknessesDetails[0] == nil {
		t.Errorf("unexpected weaknesses details: %#v", e.WeaknessesDetails)
	}
	if e.ImprovementsDetails == nil || len(e.ImprovementsDetails) != 0 {
		t.Errorf("expected empty improvements details, got %#v", e.ImprovementsDetails)
	}
	if e.Detailed.ContentAnalysis != "deep" {
		t.Errorf("expected detailed content, got %q", e.Detailed.ContentAnalysis)
	}
}

func TestImproveSentences_DropsOutOfRange(t *testing.T) {
	m := &fakeModel{responses: []string{`{"improvements": [
		{"position": 0, "originalSentence": "ignored", "improvedSentence": "더 나은 첫 문장입니다.", "reason": "명확성"},
		{"position": 5, "improvedSentence": "없는 문장", "reason": "x"},
		{"position": 1, "improvedSentence": "", "reason": "빈 제안"}
	]}`}}
	s := testScorer(m)

	got, err := s.ImproveSentences(context.Background(), ImproveRequest{
		QuestionText: "문제",
		AnswerText:   "첫 문장입니다. 둘째 문장입니다.",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 improvement, got %d: %+v", len(got), got)
	}
	if got[0].OriginalSentence != "첫 문장입니다." {
		t.Errorf("expected original sentence from the answer, got %q", got[0].OriginalSentence)
	}
	if !strings.Contains(m.prompts[0], "[1] 둘째 문장입니다.") {
		t.Errorf("prompt missing numbered sentence: %q", m.prompts[0])
	}
}

func TestImproveSentences_EmptyAnswer(t *testing.T) {
	s := testScorer(&fakeModel{responses: []string{"{}"}})
	if _, err := s.ImproveSentences(context.Background(), ImproveRequest{}); !errors.Is(err, ErrMissingInput) {
		t.Fatalf("expected ErrMissingInput, got %v", err)
	}
}

func TestScorer_MockModel(t *testing.T) {
	s := testScorer(MockModel{})
	a, err := s.Analyze(context.Background(), "q", "a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Score != 15 || a.MaxScore != 20 {
		t.Errorf("expected canned 15/20, got %v/%v", a.Score, a.MaxScore)
	}
	models, err := s.ListModels(context.Background())
	if err != nil || len(models) != 1 || models[0].Name != "mock" {
		t.Errorf("unexpected models: %+v, %v", models, err)
	}
}
