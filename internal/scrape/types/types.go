package types

import (
	"context"
	"errors"
	"time"

	"github.com/Hemanthreddy410/job-scraping-tool/internal/domain"
)

// ErrBoardNotFound marks a company that does not exist on a provider:
// an HTTP 404 or the provider's own not-found payload. It is a soft
// failure; the pair yields zero postings and the run continues.
var ErrBoardNotFound = errors.New("board not found")

// Company is one configured board on a provider. For company-scoped
// providers Slug is the board token; for feed providers it is a feed
// tag and Name labels the feed.
type Company struct {
	Slug string
	Name string
}

// RawPosting is one job exactly as a provider reports it, before
// normalization. Location may arrive as a single string, as structured
// parts, or both; Description may carry HTML.
type RawPosting struct {
	ID          string
	Title       string
	Company     string // provider-reported employer, empty when the board implies it
	Location    string
	City        string
	Region      string
	Country     string
	Remote      bool
	URL         string
	PostedAt    *time.Time
	Description string
}

// Fetcher lists postings for one company, streaming each page's rows
// through emit. Implementations paginate lazily, stop only on their
// provider's end-of-data signal, and start over from the first page on
// every call. An emit error aborts the listing and is returned as-is.
type Fetcher interface {
	Source() domain.Source
	ListPostings(ctx context.Context, company Company, emit func(RawPosting) error) error
}

// ClientConfig carries the HTTP knobs shared by every provider adapter.
// Zero values fall back to adapter defaults.
type ClientConfig struct {
	Timeout    time.Duration // per-request budget
	Delay      time.Duration // minimum gap between requests to one company
	MaxRetries int           // extra attempts after a transient failure
	PerPage    int
}

// RunStatus is the mutable view of the runner's lifecycle, published
// for the status endpoint and the poller log line.
type RunStatus struct {
	Running   bool   `json:"running"`
	LastRunID string `json:"last_run_id"`
	LastRunAt string `json:"last_run_at"`
	LastOkAt  string `json:"last_ok_at"`
	LastError string `json:"last_error"`
	LastJobs  int    `json:"last_jobs"`
}
