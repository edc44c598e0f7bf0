package httpapi

import (
	"github.com/Hemanthreddy410/job-scraping-tool/internal/domain"
	"github.com/Hemanthreddy410/job-scraping-tool/internal/store"
)

// RunDetail is the full payload for one archived run.
type RunDetail struct {
	Run    store.RunRow        `json:"run"`
	Jobs   []domain.Job        `json:"jobs"`
	Errors []domain.FetchError `json:"errors"`
}
