package api

import (
	"errors"
	"net/http"
	"slices"

	"github.com/dgallion1/essaygest/internal/scoring"
)

const (
	overloadedMessage = "AI 서버가 일시적으로 과부하 상태입니다. 잠시 후 다시 시도해주세요."
	overloadedDetails = "The model provider is temporarily overloaded. Please try again later."
)

type analyzeRequest struct {
	QuestionText string `json:"questionText"`
	AnswerText   string `json:"answerText"`
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	a, err := s.scorer.Analyze(r.Context(), req.QuestionText, req.AnswerText)
	if err != nil {
		s.scoringError(w, "analyze", err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (s *Server) handleEnrich(w http.ResponseWriter, r *http.Request) {
	var req scoring.EnrichRequest
	if err := decodeJSON(w, r, &req); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	e, err := s.scorer.Enrich(r.Context(), req)
	if err != nil {
		s.scoringError(w, "enrich", err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (s *Server) handleImproveSentences(w http.ResponseWriter, r *http.Request) {
	var req scoring.ImproveRequest
	if err := decodeJSON(w, r, &req); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	improvements, err := s.scorer.ImproveSentences(r.Context(), req)
	if err != nil {
		if errors.Is(err, scoring.ErrMissingInput) {
			jsonError(w, "answerText is required", http.StatusBadRequest)
			return
		}
		s.scoringError(w, "improve_sentences", err)
		return
	}
	if improvements == nil {
		improvements = []scoring.SentenceImprovement{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"improvements": improvements})
}

func (s *Server) handleListModels(w http.ResponseWriter, r *http.Request) {
	models, err := s.scorer.ListModels(r.Context())
	if err != nil {
		s.log.Error("list models failed", "error", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{
			"error":   "Failed to list models",
			"details": err.Error(),
		})
		return
	}

	generate := make([]scoring.ModelInfo, 0, len(models))
	for _, m := range models {
		if len(m.SupportedMethods) == 0 || slices.Contains(m.SupportedMethods, "generateContent") {
			generate = append(generate, m)
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"model":                 s.scorer.Model(),
		"totalModels":           len(models),
		"generateContentModels": generate,
		"allModels":             models,
	})
}

func (s *Server) handleLLMStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"model": s.scorer.Model(),
		"stats": s.scorer.Stats.Snapshot(),
	})
}

// scoringError maps scorer failures onto HTTP responses.
func (s *Server) scoringError(w http.ResponseWriter, task string, err error) {
	switch {
	case errors.Is(err, scoring.ErrMissingInput):
		jsonError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, scoring.ErrOverloaded):
		s.log.Warn("model overloaded", "task", task, "error", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"error":     overloadedMessage,
			"details":   overloadedDetails,
			"retryable": true,
		})
	default:
		s.log.Error("scoring failed", "task", task, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error":   "Failed to " + task,
			"details": err.Error(),
		})
	}
}
