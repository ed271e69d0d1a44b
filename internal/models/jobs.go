package models

import "time"

// JobRun records one execution of a background or CLI-triggered job.
type JobRun struct {
	ID          string    `json:"id"`
	JobType     string    `json:"job_type"`
	Ticker      string    `json:"ticker"`
	Status      string    `json:"status"` // "pending", "running", "completed", "failed"
	CreatedAt   time.Time `json:"created_at"`
	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at"`
	Error       string    `json:"error,omitempty"`
	DurationMS  int64     `json:"duration_ms"`
}

// Job type constants
const (
	JobTypeCollectMarketData = "collect_market_data"
	JobTypeAnalyze           = "analyze"
	JobTypeRenderChart       = "render_chart"
)

// Job status constants
const (
	JobStatusPending   = "pending"
	JobStatusRunning   = "running"
	JobStatusCompleted = "completed"
	JobStatusFailed    = "failed"
)
