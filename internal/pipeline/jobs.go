package pipeline

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dgallion1/essaygest/internal/scoring"
)

// JobStatus represents the state of an analysis job.
type JobStatus string

const (
	StatusQueued         JobStatus = "queued"
	StatusRecognizing    JobStatus = "recognizing"
	StatusReconstructing JobStatus = "reconstructing"
	StatusScoring        JobStatus = "scoring"
	StatusStoring        JobStatus = "storing"
	StatusCompleted      JobStatus = "completed"
	StatusFailed         JobStatus = "failed"
)

// Terminal reports whether no further transitions happen.
func (s JobStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Job tracks the state of a single question/answer analysis.
type Job struct {
	mu sync.Mutex

	ID     string `json:"job_id"`
	UserID string `json:"user_id"`

	Status JobStatus `json:"status"`
	Phase  string    `json:"phase"`
	Title  string    `json:"title"`
	Memo   string    `json:"memo,omitempty"`
	Save   bool      `json:"save"`

	Progress Progress `json:"progress"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Internal: not serialized.
	question Source
	answer   Source
	result   *Result
	errors   []string
}

// Progress tracks processing progress.
type Progress struct {
	SourcesTotal      int      `json:"sources_total"`
	SourcesRecognized int      `json:"sources_recognized"`
	OCRFallbacks      int      `json:"ocr_fallbacks"`
	Errors            []string `json:"errors"`
}

// Result is the output of a completed job.
type Result struct {
	QuestionText string           `json:"questionText"`
	AnswerText   string           `json:"answerText"`
	Analysis     scoring.Analysis `json:"analysis"`
	RecordID     string           `json:"recordId,omitempty"`
}

// NewJob creates a queued job for question and answer.
func NewJob(userID, title string, question, answer Source, save bool) *Job {
	now := time.Now()
	return &Job{
		ID:        uuid.NewString(),
		UserID:    userID,
		Status:    StatusQueued,
		Phase:     "queued",
		Title:     title,
		Save:      save,
		Progress:  Progress{SourcesTotal: 2},
		CreatedAt: now,
		UpdatedAt: now,
		question:  question,
		answer:    answer,
	}
}

// JobStore is a thread-safe in-memory job registry with TTL eviction.
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		jobs: make(map[string]*Job),
		ttl:  ttl,
	}
}

func (s *JobStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *JobStore) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

// Len returns the number of tracked jobs.
func (s *JobStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

// Cleanup removes expired jobs.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		if now.Sub(job.lastUpdate()) > s.ttl {
			delete(s.jobs, id)
		}
	}
}

func (j *Job) lastUpdate() time.Time {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.UpdatedAt
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// AddError records an error.
func (j *Job) AddError(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, err)
	j.Progress.Errors = j.errors
	j.UpdatedAt = time.Now()
}

// Fail records err and marks the job failed in phase.
func (j *Job) Fail(phase string, err error) {
	j.AddError(err.Error())
	j.SetStatus(StatusFailed, phase)
}

// IncrRecognized counts a source turned into text. fallback marks OCR
// output that had to go through the flat-text segmenter.
func (j *Job) IncrRecognized(fallback bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.SourcesRecognized++
	if fallback {
		j.Progress.OCRFallbacks++
	}
	j.UpdatedAt = time.Now()
}

// SetResult stores the job output.
func (j *Job) SetResult(r Result) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.result = &r
	j.UpdatedAt = time.Now()
}

// Sources returns the question and answer inputs.
func (j *Job) Sources() (question, answer Source) {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.question, j.answer
}

// releaseSources drops uploaded bytes once they have been read.
func (j *Job) releaseSources() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.question.Data = nil
	j.answer.Data = nil
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID        string    `json:"job_id"`
	UserID    string    `json:"user_id"`
	Status    JobStatus `json:"status"`
	Phase     string    `json:"phase"`
	Title     string    `json:"title"`
	Save      bool      `json:"save"`
	Progress  Progress  `json:"progress"`
	Result    *Result   `json:"result,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	errs := make([]string, len(j.Progress.Errors))
	copy(errs, j.Progress.Errors)
	snap := JobSnapshot{
		ID:     j.ID,
		UserID: j.UserID,
		Status: j.Status,
		Phase:  j.Phase,
		Title:  j.Title,
		Save:   j.Save,
		Progress: Progress{
			SourcesTotal:      j.Progress.SourcesTotal,
			SourcesRecognized: j.Progress.SourcesRecognized,
			OCRFallbacks:      j.Progress.OCRFallbacks,
			Errors:            errs,
		},
		CreatedAt: j.CreatedAt,
		UpdatedAt: j.UpdatedAt,
	}
	if j.result != nil {
		r := *j.result
		snap.Result = &r
	}
	return snap
}
