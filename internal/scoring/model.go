// Package scoring sends reconstructed exam answers to a generative model
// for rubric-based scoring and feedback.
package scoring

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"
)

// Task identifies what a prompt asks the model for.
type Task string

const (
	TaskAnalyze Task = "analyze"
	TaskEnrich  Task = "enrich"
	TaskImprove Task = "improve_sentences"
)

// Request is one model call.
type Request struct {
	Task   Task
	Prompt string
}

// Generation is the model's text answer plus token usage when reported.
type Generation struct {
	Text         string
	PromptTokens int
	OutputTokens int
}

// Model is a text generation backend.
type Model interface {
	Generate(ctx context.Context, req Request) (Generation, error)
	Name() string
}

// ModelInfo describes a model available to the configured provider.
type ModelInfo struct {
	Name             string   `json:"name"`
	DisplayName      string   `json:"displayName,omitempty"`
	Description      string   `json:"description,omitempty"`
	SupportedMethods []string `json:"supportedMethods,omitempty"`
}

// ModelLister is implemented by models that can enumerate their provider's
// catalog.
type ModelLister interface {
	ListModels(ctx context.Context) ([]ModelInfo, error)
}

var (
	// ErrMissingInput is returned when the question or answer is empty.
	ErrMissingInput = errors.New("questionText and answerText are required")
	// ErrOverloaded is returned when the provider stayed unavailable after retries.
	ErrOverloaded = errors.New("model provider is temporarily overloaded")
	// ErrBadResponse is returned when the model answer holds no usable JSON.
	ErrBadResponse = errors.New("model returned no usable JSON")
)

// RetryableError indicates a transient failure that can be retried.
type RetryableError struct {
	StatusCode int
	Message    string
}

func (e *RetryableError) Error() string {
	return fmt.Sprintf("retryable error (status %d): %s", e.StatusCode, truncate(e.Message, 200))
}

// IsRetryable checks if an error is worth retrying.
func IsRetryable(err error) bool {
	var retryErr *RetryableError
	if errors.As(err, &retryErr) {
		return true
	}
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "overloaded")
}

// Backoff returns a duration for attempt n (0-indexed) with jitter.
func Backoff(attempt int) time.Duration {
	base := time.Duration(1<<uint(attempt)) * time.Second
	if base > 30*time.Second {
		base = 30 * time.Second
	}
	jitter := time.Duration(rand.Int64N(int64(base) / 2))
	return base + jitter
}

const MaxRetries = 3

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
