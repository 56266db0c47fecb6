package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/dgallion1/essaygest/internal/layout"
	"github.com/dgallion1/essaygest/internal/ocr"
	"github.com/dgallion1/essaygest/internal/parser"
	"github.com/dgallion1/essaygest/internal/pipeline"
)

type ocrResponse struct {
	Text          string   `json:"text"`
	RawResult     any      `json:"rawResult"`
	Reconstructed string   `json:"reconstructed"`
	Paragraphs    []string `json:"paragraphs"`
	Shape         string   `json:"shape"`
	Fallback      bool     `json:"fallback"`
	Provider      string   `json:"provider,omitempty"`
	Mock          bool     `json:"mock"`
}

func (s *Server) handleOCR(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(s.cfg.MaxUploadBytes); err != nil {
		jsonError(w, "file 필드가 필요합니다.", http.StatusBadRequest)
		return
	}
	src, err := formSource(r, "file")
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if src.Empty() {
		jsonError(w, "file 필드가 필요합니다.", http.StatusBadRequest)
		return
	}
	if parser.KindOf(src.Filename) == parser.KindUnsupported {
		jsonError(w, fmt.Sprintf("unsupported file type: %s", src.Filename), http.StatusBadRequest)
		return
	}

	rec, err := s.reader.Recognize(r.Context(), src)
	if err != nil {
		var perr *ocr.ProviderError
		if errors.As(err, &perr) {
			s.log.Warn("ocr provider error", "file", src.Filename, "status", perr.StatusCode)
			writeJSON(w, http.StatusBadGateway, map[string]any{
				"error":      "OCR 요청 실패",
				"status":     perr.StatusCode,
				"statusText": perr.Status,
				"rawResult":  perr.Body,
				"details":    fmt.Sprintf("HTTP %d: %s", perr.StatusCode, perr.Status),
			})
			return
		}
		s.log.Error("ocr failed", "file", src.Filename, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error":   "OCR 처리 중 오류가 발생했습니다.",
			"details": err.Error(),
		})
		return
	}

	res := s.reader.Reconstruct(rec)
	s.log.Debug("ocr reconstructed",
		"file", src.Filename,
		"provider", rec.Provider,
		"shape", res.Shape.String(),
		"paragraphs", len(res.Document.Paragraphs),
		"fallback", res.Fallback,
		"reason", res.Err,
	)
	text := rec.Text
	if text == "" {
		text = ocr.NoTextMessage
	}
	writeJSON(w, http.StatusOK, ocrResponse{
		Text:          text,
		RawResult:     rec.Raw,
		Reconstructed: res.Text(),
		Paragraphs:    paragraphs(res.Document),
		Shape:         res.Shape.String(),
		Fallback:      res.Fallback,
		Provider:      rec.Provider,
		Mock:          rec.Mock,
	})
}

type reconstructRequest struct {
	RawResult    any    `json:"rawResult"`
	FallbackText string `json:"fallbackText"`
}

type reconstructResponse struct {
	Text       string   `json:"text"`
	Paragraphs []string `json:"paragraphs"`
	Shape      string   `json:"shape"`
	Fallback   bool     `json:"fallback"`
}

func (s *Server) handleReconstruct(w http.ResponseWriter, r *http.Request) {
	var req reconstructRequest
	if err := decodeJSON(w, r, &req); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	res := s.reader.Layout.Reconstruct(req.RawResult, req.FallbackText)
	if res.Err != nil {
		s.log.Debug("reconstruct fell back to flat text", "reason", res.Err)
	}
	writeJSON(w, http.StatusOK, reconstructResponse{
		Text:       res.Text(),
		Paragraphs: paragraphs(res.Document),
		Shape:      res.Shape.String(),
		Fallback:   res.Fallback,
	})
}

// formSource reads an uploaded file field into a pipeline source. A missing
// field yields an empty source.
func formSource(r *http.Request, field string) (pipeline.Source, error) {
	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return pipeline.Source{}, nil
	}
	if err != nil {
		return pipeline.Source{}, fmt.Errorf("read %s: %w", field, err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return pipeline.Source{}, fmt.Errorf("read %s: %w", field, err)
	}
	return pipeline.Source{
		Filename:    sanitizeFilename(header.Filename),
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

func paragraphs(doc layout.Document) []string {
	if doc.Paragraphs == nil {
		return []string{}
	}
	return doc.Paragraphs
}
