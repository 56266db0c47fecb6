package api

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dgallion1/essaygest/internal/pipeline"
)

func waitForJob(t *testing.T, env testEnv, id string) pipeline.JobSnapshot {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		rec := env.do(t, http.MethodGet, "/api/jobs/"+id, nil, "")
		if rec.Code != http.StatusOK {
			t.Fatalf("poll status = %d", rec.Code)
		}
		snap := decode[pipeline.JobSnapshot](t, rec)
		if snap.Status.Terminal() {
			return snap
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("job %s did not finish", id)
	return pipeline.JobSnapshot{}
}

func TestSubmitJobText(t *testing.T) {
	env := newTestEnv(t, envOptions{})
	body, ct := multipartBody(t, map[string]string{
		"user_id":       "u1",
		"question_text": "교사의 역할을 논하시오.",
		"answer_text":   "교사는 학생의 성장을 돕는다.",
	})
	rec := env.do(t, http.MethodPost, "/api/jobs", body, ct)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}
	resp := decode[map[string]string](t, rec)
	if resp["poll_url"] != "/api/jobs/"+resp["job_id"] {
		t.Errorf("poll_url = %q", resp["poll_url"])
	}

	snap := waitForJob(t, env, resp["job_id"])
	if snap.Status != pipeline.StatusCompleted {
		t.Fatalf("status = %s errors = %v", snap.Status, snap.Progress.Errors)
	}
	if snap.Result == nil || snap.Result.AnswerText != "교사는 학생의 성장을 돕는다." {
		t.Fatalf("result = %+v", snap.Result)
	}
	if snap.Result.RecordID != "" {
		t.Errorf("unsaved job has record id %q", snap.Result.RecordID)
	}
}

func TestSubmitJobImageAndSave(t *testing.T) {
	env := newTestEnv(t, envOptions{})
	body, ct := multipartBody(t, map[string]string{
		"user_id":       "u1",
		"title":         "모의고사 1회",
		"memo":          "첫 시도",
		"save":          "true",
		"question_text": "교사의 역할을 논하시오.",
	}, formFile{"answer", "answer.png", []byte("png")})
	rec := env.do(t, http.MethodPost, "/api/jobs", body, ct)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}
	id := decode[map[string]string](t, rec)["job_id"]

	snap := waitForJob(t, env, id)
	if snap.Status != pipeline.StatusCompleted {
		t.Fatalf("status = %s errors = %v", snap.Status, snap.Progress.Errors)
	}
	if snap.Progress.OCRFallbacks != 1 {
		t.Errorf("ocr fallbacks = %d, want 1", snap.Progress.OCRFallbacks)
	}
	if snap.Result.RecordID == "" {
		t.Fatal("saved job has no record id")
	}

	saved, err := env.history.Get(context.Background(), snap.Result.RecordID)
	if err != nil {
		t.Fatalf("get saved record: %v", err)
	}
	if saved.Title != "모의고사 1회" || saved.Memo != "첫 시도" || saved.UserID != "u1" {
		t.Errorf("saved = %+v", saved)
	}
}

func TestSubmitJobValidation(t *testing.T) {
	env := newTestEnv(t, envOptions{})
	tests := []struct {
		name   string
		fields map[string]string
		files  []formFile
	}{
		{"missing answer", map[string]string{"question_text": "q"}, nil},
		{"save without title", map[string]string{"question_text": "q", "answer_text": "a", "save": "true"}, nil},
		{"bad save flag", map[string]string{"question_text": "q", "answer_text": "a", "save": "maybe"}, nil},
		{"unsupported file", map[string]string{"question_text": "q"}, []formFile{{"answer", "a.exe", []byte("x")}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, ct := multipartBody(t, tt.fields, tt.files...)
			rec := env.do(t, http.MethodPost, "/api/jobs", body, ct)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d body = %s", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestJobNotFound(t *testing.T) {
	env := newTestEnv(t, envOptions{})
	rec := env.do(t, http.MethodGet, "/api/jobs/nope", nil, "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
}
