package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/dgallion1/essaygest/internal/history"
	"github.com/dgallion1/essaygest/internal/report"
)

func (s *Server) handleSaveHistory(w http.ResponseWriter, r *http.Request) {
	var rec history.Record
	if err := decodeJSON(w, r, &rec); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	saved, err := s.history.Save(r.Context(), rec)
	if err != nil {
		s.historyError(w, err)
		return
	}
	s.log.Info("history saved", "id", saved.ID, "user_id", saved.UserID)
	writeJSON(w, http.StatusCreated, saved)
}

func (s *Server) handleListHistory(w http.ResponseWriter, r *http.Request) {
	userID := strings.TrimSpace(r.URL.Query().Get("user_id"))
	if userID == "" {
		jsonError(w, "user_id is required", http.StatusBadRequest)
		return
	}
	records, err := s.history.List(r.Context(), userID)
	if err != nil {
		s.historyError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"records": records,
		"count":   len(records),
	})
}

func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	rec, err := s.history.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.historyError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

type updateNotesRequest struct {
	Title string `json:"title"`
	Memo  string `json:"memo"`
}

func (s *Server) handleUpdateHistory(w http.ResponseWriter, r *http.Request) {
	var req updateNotesRequest
	if err := decodeJSON(w, r, &req); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	rec, err := s.history.UpdateNotes(r.Context(), chi.URLParam(r, "id"), req.Title, req.Memo)
	if err != nil {
		s.historyError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleDeleteHistory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.history.Delete(r.Context(), id); err != nil {
		s.historyError(w, err)
		return
	}
	s.log.Info("history deleted", "id", id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleHistoryReport(w http.ResponseWriter, r *http.Request) {
	format, err := report.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	rec, err := s.history.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.historyError(w, err)
		return
	}
	body, err := report.Render(report.FromRecord(rec), format)
	if err != nil {
		s.log.Error("render report failed", "id", rec.ID, "error", err)
		jsonError(w, "failed to render report", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", format.ContentType())
	w.Write(body)
}

func (s *Server) historyError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, history.ErrNotFound):
		jsonError(w, "record not found", http.StatusNotFound)
	case errors.Is(err, history.ErrInvalidRecord):
		jsonError(w, err.Error(), http.StatusBadRequest)
	default:
		s.log.Error("history storage failed", "error", err)
		jsonError(w, "history storage failed", http.StatusInternalServerError)
	}
}
