// Package poll drives pipeline runs on a schedule and archives their
// results.
package poll

import (
	"context"
	"database/sql"
	"log"
	"time"

	"github.com/Hemanthreddy410/job-scraping-tool/internal/config"
	"github.com/Hemanthreddy410/job-scraping-tool/internal/domain"
	"github.com/Hemanthreddy410/job-scraping-tool/internal/events"
	"github.com/Hemanthreddy410/job-scraping-tool/internal/scrape"
	"github.com/Hemanthreddy410/job-scraping-tool/internal/store"
)

// RunOnce executes one full pipeline run and archives the result.
// Archiving failures are logged, not returned; the run's data is already
// in hand and the caller should still see it.
func RunOnce(ctx context.Context, db *sql.DB, cfg config.Config, hub *events.Hub) (domain.Result, error) {
	res, runErr := scrape.Run(ctx, cfg, hub)

	if db != nil {
		// Archive on a fresh context. A run that hit its deadline still
		// carries partial data worth keeping.
		insertCtx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		if err := store.SaveRun(insertCtx, db, res); err != nil {
			log.Printf("[poll] archive run=%s err=%v", res.RunID, err)
		}
	}

	return res, runErr
}
