package queue

import "time"

// RefreshTask asks a worker to fetch and re-extract one symbol.
type RefreshTask struct {
	ID        string    `json:"id"`
	Symbol    string    `json:"symbol"`
	Source    string    `json:"source,omitempty"` // "scheduler" or "api"
	CreatedAt time.Time `json:"created_at"`
}

// RefreshResult reports what one refresh attempt ended up with.
// EmptyExtraction distinguishes "page reachable but nothing extracted"
// (format likely changed) from a transport-level failure.
type RefreshResult struct {
	TaskID          string    `json:"task_id"`
	Symbol          string    `json:"symbol"`
	Success         bool      `json:"success"`
	FieldsFound     int       `json:"fields_found"`
	EmptyExtraction bool      `json:"empty_extraction,omitempty"`
	FromCache       bool      `json:"from_cache,omitempty"`
	Error           string    `json:"error,omitempty"`
	FinishedAt      time.Time `json:"finished_at"`
}
