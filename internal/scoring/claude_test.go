package scoring

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClaudeModel_Generate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-api-key") != "key" {
			t.Errorf("missing api key header")
		}
		var req anthropicRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Model != "claude-test" || len(req.Messages) != 1 || req.Messages[0].Content != "hello" {
			t.Errorf("unexpected request: %+v", req)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"content":[{"type":"text","text":"{\"score\":1}"}],"usage":{"input_tokens":7,"output_tokens":4}}`))
	}))
	defer srv.Close()

	c := NewClaudeModel("key", "claude-test")
	c.baseURL = srv.URL

	gen, err := c.Generate(context.Background(), Request{Task: TaskAnalyze, Prompt: "hello"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gen.Text != `{"score":1}` || gen.PromptTokens != 7 || gen.OutputTokens != 4 {
		t.Errorf("unexpected generation: %+v", gen)
	}
}

func TestClaudeModel_OverloadedIsRetryable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(529)
		w.Write([]byte(`{"type":"error","error":{"type":"overloaded_error","message":"Overloaded"}}`))
	}))
	defer srv.Close()

	c := NewClaudeModel("key", "claude-test")
	c.baseURL = srv.URL

	_, err := c.Generate(context.Background(), Request{Prompt: "hello"})
	var retryErr *RetryableError
	if !errors.As(err, &retryErr) || retryErr.StatusCode != 529 {
		t.Fatalf("expected retryable 529, got %v", err)
	}
}

func TestClaudeModel_ClientErrorNotRetryable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"bad"}`))
	}))
	defer srv.Close()

	c := NewClaudeModel("key", "claude-test")
	c.baseURL = srv.URL

	_, err := c.Generate(context.Background(), Request{Prompt: "hello"})
	if err == nil || IsRetryable(err) {
		t.Fatalf("expected non-retryable error, got %v", err)
	}
}
