package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/dgallion1/essaygest/internal/parser"
	"github.com/dgallion1/essaygest/internal/pipeline"
)

func (s *Server) handleSubmitJob(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(s.cfg.MaxUploadBytes); err != nil {
		jsonError(w, "request too large or invalid multipart", http.StatusBadRequest)
		return
	}

	question, err := jobSource(r, "question")
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	answer, err := jobSource(r, "answer")
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if question.Empty() || answer.Empty() {
		jsonError(w, "question and answer are required (file or *_text field)", http.StatusBadRequest)
		return
	}

	save := false
	if v := r.FormValue("save"); v != "" {
		save, err = strconv.ParseBool(v)
		if err != nil {
			jsonError(w, "save must be a boolean", http.StatusBadRequest)
			return
		}
	}
	title := strings.TrimSpace(r.FormValue("title"))
	if save && title == "" {
		jsonError(w, "title is required when save is set", http.StatusBadRequest)
		return
	}
	if save && s.history == nil {
		jsonError(w, "history storage is not configured", http.StatusServiceUnavailable)
		return
	}

	job := pipeline.NewJob(r.FormValue("user_id"), title, question, answer, save)
	job.Memo = r.FormValue("memo")

	if err := s.orchestrator.Submit(job); err != nil {
		switch {
		case errors.Is(err, pipeline.ErrQueueFull), errors.Is(err, pipeline.ErrStopped):
			jsonError(w, err.Error(), http.StatusServiceUnavailable)
		default:
			jsonError(w, err.Error(), http.StatusBadRequest)
		}
		return
	}

	s.log.Info("job submitted", "job_id", job.ID, "user_id", job.UserID, "save", save)
	writeJSON(w, http.StatusAccepted, map[string]string{
		"job_id":   job.ID,
		"status":   string(pipeline.StatusQueued),
		"poll_url": "/api/jobs/" + job.ID,
	})
}

func (s *Server) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	job := s.orchestrator.GetJob(jobID)
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, job.Snapshot())
}

// jobSource reads an uploaded <name> file or, failing that, the <name>_text
// form field.
func jobSource(r *http.Request, name string) (pipeline.Source, error) {
	src, err := formSource(r, name)
	if err != nil {
		return src, err
	}
	if !src.Empty() {
		if parser.KindOf(src.Filename) == parser.KindUnsupported {
			return src, fmt.Errorf("unsupported file type for %s: %s", name, src.Filename)
		}
		return src, nil
	}
	return pipeline.Source{Text: r.FormValue(name + "_text")}, nil
}
