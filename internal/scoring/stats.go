package scoring

import (
	"sort"
	"sync"
	"time"
)

type sample struct {
	timestamp    time.Time
	task         Task
	durationMs   int64
	promptTokens int
	outputTokens int
	failed       bool
}

// StatsSnapshot is a point-in-time aggregate of model call samples.
type StatsSnapshot struct {
	Count        int          `json:"count"`
	Errors       int          `json:"errors"`
	MinMs        int64        `json:"min_ms"`
	MaxMs        int64        `json:"max_ms"`
	AvgMs        float64      `json:"avg_ms"`
	P50Ms        float64      `json:"p50_ms"`
	P95Ms        float64      `json:"p95_ms"`
	P99Ms        float64      `json:"p99_ms"`
	PromptTokens int          `json:"prompt_tokens"`
	OutputTokens int          `json:"output_tokens"`
	ByTask       map[Task]int `json:"by_task"`
}

// LLMStats tracks recent model calls within a rolling window.
type LLMStats struct {
	mu      sync.Mutex
	samples []sample
	maxAge  time.Duration
	now     func() time.Time
}

func NewLLMStats(maxAge time.Duration) *LLMStats {
	if maxAge <= 0 {
		maxAge = time.Hour
	}
	return &LLMStats{
		samples: make([]sample, 0, 256),
		maxAge:  maxAge,
		now:     time.Now,
	}
}

// Record adds one call. err marks the call as failed.
func (s *LLMStats) Record(task Task, durationMs int64, promptTokens, outputTokens int, err error) {
	if durationMs < 0 {
		durationMs = 0
	}
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.pruneLocked(now)
	s.samples = append(s.samples, sample{
		timestamp:    now,
		task:         task,
		durationMs:   durationMs,
		promptTokens: promptTokens,
		outputTokens: outputTokens,
		failed:       err != nil,
	})
}

func (s *LLMStats) Snapshot() StatsSnapshot {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.pruneLocked(now)
	snap := StatsSnapshot{ByTask: map[Task]int{}}
	if len(s.samples) == 0 {
		return snap
	}

	values := make([]int64, 0, len(s.samples))
	var sum int64
	for _, sm := range s.samples {
		values = append(values, sm.durationMs)
		sum += sm.durationMs
		snap.PromptTokens += sm.promptTokens
		snap.OutputTokens += sm.outputTokens
		snap.ByTask[sm.task]++
		if sm.failed {
			snap.Errors++
		}
	}
	sort.Slice(values, func(i, j int) bool { return values[i] < values[j] })

	snap.Count = len(values)
	snap.MinMs = values[0]
	snap.MaxMs = values[len(values)-1]
	snap.AvgMs = float64(sum) / float64(len(values))
	snap.P50Ms = percentile(values, 50)
	snap.P95Ms = percentile(values, 95)
	snap.P99Ms = percentile(values, 99)
	return snap
}

func (s *LLMStats) pruneLocked(now time.Time) {
	cutoff := now.Add(-s.maxAge)
	writeIdx := 0
	for _, sm := range s.samples {
		if !sm.timestamp.Before(cutoff) {
			s.samples[writeIdx] = sm
			writeIdx++
		}
	}
	s.samples = s.samples[:writeIdx]
}

func percentile(sortedValues []int64, pct float64) float64 {
	if len(sortedValues) == 0 {
		return 0
	}
	if pct <= 0 {
		return float64(sortedValues[0])
	}
	if pct >= 100 {
		return float64(sortedValues[len(sortedValues)-1])
	}

	index := (float64(len(sortedValues)-1) * pct) / 100.0
	lower := int(index)
	upper := lower + 1
	if upper >= len(sortedValues) {
		return float64(sortedValues[lower])
	}
	weight := index - float64(lower)
	lo := float64(sortedValues[lower])
	hi := float64(sortedValues[upper])
	return lo + ((hi - lo) * weight)
}
