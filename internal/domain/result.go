package domain

import "time"

// RunState tracks a pipeline run through its stages. Normalization and
// filtering stream inside the fetch tasks, so one state covers both.
type RunState string

const (
	StateIdle        RunState = "idle"
	StateFetching    RunState = "fetching"
	StateFiltering   RunState = "filtering"
	StateDeduping    RunState = "deduping"
	StateAggregating RunState = "aggregating"
	StateDone        RunState = "done"
	StateFailed      RunState = "failed"
)

// ErrorKind classifies the soft failures a run can accumulate.
type ErrorKind string

const (
	KindSourceNotFound    ErrorKind = "source_not_found"
	KindSourceUnavailable ErrorKind = "source_unavailable"
	KindMalformedRecord   ErrorKind = "malformed_record"
	KindRunTimedOut       ErrorKind = "run_timed_out"
)

// FetchError records one failure without aborting the run.
type FetchError struct {
	Source  Source    `json:"source"`
	Company string    `json:"company"`
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
}

// SummaryStats is the aggregate view over one finished run.
type SummaryStats struct {
	TotalRaw          int            `json:"total_raw"`
	TotalUnique       int            `json:"total_unique"`
	DuplicatesRemoved int            `json:"duplicates_removed"`
	FilteredOut       int            `json:"filtered_out"`
	BySource          map[Source]int `json:"by_source"`
	ByCategory        map[string]int `json:"by_category"`
}

// Result is everything a run produced: the surviving jobs in
// first-seen order plus the stats block and the accumulated errors.
type Result struct {
	RunID      string       `json:"run_id"`
	State      RunState     `json:"state"`
	Jobs       []Job        `json:"jobs"`
	Stats      SummaryStats `json:"stats"`
	Errors     []FetchError `json:"errors"`
	TimedOut   bool         `json:"timed_out"`
	StartedAt  time.Time    `json:"started_at"`
	FinishedAt time.Time    `json:"finished_at"`
}
