package scrape

import (
	"github.com/Hemanthreddy410/job-scraping-tool/internal/domain"
	"github.com/Hemanthreddy410/job-scraping-tool/internal/rank"
)

// Summarize folds a finished run's counters into the stats block.
// Categories come from the same rules the filter matched on.
func Summarize(jobs []domain.Job, raw, dupes, filtered int, roles *rank.Categorizer) domain.SummaryStats {
	stats := domain.SummaryStats{
		TotalRaw:          raw,
		TotalUnique:       len(jobs),
		DuplicatesRemoved: dupes,
		FilteredOut:       filtered,
		BySource:          make(map[domain.Source]int),
		ByCategory:        make(map[string]int),
	}
	for _, j := range jobs {
		stats.BySource[j.Source]++
		stats.ByCategory[roles.Category(j.Title)]++
	}
	return stats
}
