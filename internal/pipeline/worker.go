package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dgallion1/essaygest/internal/history"
	"github.com/dgallion1/essaygest/internal/scoring"
)

// Analyzer scores an answer against its question.
type Analyzer interface {
	Analyze(ctx context.Context, question, answer string) (scoring.Analysis, error)
}

// HistorySaver persists completed analyses.
type HistorySaver interface {
	Save(ctx context.Context, rec history.Record) (history.Record, error)
}

// Worker processes a single analysis job.
type Worker struct {
	reader  *Reader
	scorer  Analyzer
	history HistorySaver
	log     *slog.Logger
}

func NewWorker(reader *Reader, scorer Analyzer, hist HistorySaver, log *slog.Logger) *Worker {
	return &Worker{
		reader:  reader,
		scorer:  scorer,
		history: hist,
		log:     log,
	}
}

// Process runs recognition, reconstruction, scoring and optional storage
// for a job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "user_id", job.UserID)
	question, answer := job.Sources()

	// Phase 1: OCR or parse both sources concurrently.
	job.SetStatus(StatusRecognizing, "recognizing")
	type recognizeResult struct {
		rec Recognized
		err error
		idx int
	}
	sources := []Source{question, answer}
	results := make(chan recognizeResult, len(sources))
	for i, src := range sources {
		go func(i int, src Source) {
			rec, err := w.reader.Recognize(ctx, src)
			results <- recognizeResult{rec: rec, err: err, idx: i}
		}(i, src)
	}

	recognized := make([]Recognized, len(sources))
	failed := false
	for range sources {
		r := <-results
		if r.err != nil {
			log.Error("recognition failed", "source", sourceName(r.idx), "error", r.err)
			job.AddError(fmt.Sprintf("%s: %s", sourceName(r.idx), r.err))
			failed = true
			continue
		}
		recognized[r.idx] = r.rec
	}
	job.releaseSources()
	if failed {
		job.SetStatus(StatusFailed, "recognizing")
		return
	}

	// Phase 2: Rebuild paragraphs.
	job.SetStatus(StatusReconstructing, "reconstructing")
	texts := make([]string, len(recognized))
	for i, rec := range recognized {
		res := w.reader.Reconstruct(rec)
		geometry := rec.Raw != nil
		job.IncrRecognized(geometry && res.Fallback)
		if geometry {
			log.Debug("reconstructed", "source", sourceName(i), "shape", res.Shape.String(),
				"paragraphs", len(res.Document.Paragraphs), "fallback", res.Fallback, "reason", res.Err)
		}
		if res.Document.Empty() {
			job.Fail("reconstructing", fmt.Errorf("%s: no text extracted", sourceName(i)))
			return
		}
		texts[i] = res.Text()
	}

	// Phase 3: Score.
	job.SetStatus(StatusScoring, "scoring")
	analysis, err := w.scorer.Analyze(ctx, texts[0], texts[1])
	if err != nil {
		log.Error("scoring failed", "error", err)
		job.Fail("scoring", err)
		return
	}
	result := Result{QuestionText: texts[0], AnswerText: texts[1], Analysis: analysis}
	log.Info("scored", "score", analysis.Score, "max_score", analysis.MaxScore)

	// Phase 4: Save to history when requested.
	if job.Save {
		job.SetStatus(StatusStoring, "storing")
		rec, err := w.history.Save(ctx, history.Record{
			UserID:       job.UserID,
			Title:        job.Title,
			Memo:         job.Memo,
			QuestionText: result.QuestionText,
			AnswerText:   result.AnswerText,
			Analysis:     analysis,
		})
		if err != nil {
			log.Error("history save failed", "error", err)
			job.SetResult(result)
			job.Fail("storing", err)
			return
		}
		result.RecordID = rec.ID
	}

	job.SetResult(result)
	job.SetStatus(StatusCompleted, "done")
}

func sourceName(idx int) string {
	if idx == 0 {
		return "question"
	}
	return "answer"
}
