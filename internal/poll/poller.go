package poll

import (
	"context"
	"database/sql"
	"log"
	"sync/atomic"
	"time"

	"github.com/Hemanthreddy410/job-scraping-tool/internal/config"
	"github.com/Hemanthreddy410/job-scraping-tool/internal/events"
	"github.com/Hemanthreddy410/job-scraping-tool/internal/scheduler"
	"github.com/Hemanthreddy410/job-scraping-tool/internal/scrape/types"
	"github.com/Hemanthreddy410/job-scraping-tool/internal/store"
)

// StartPoller launches the periodic run loop and a daily archive prune.
// The interval is read once at startup; config edits to it apply after a
// restart, while everything else is reloaded on each tick.
func StartPoller(ctx context.Context, db *sql.DB, cfgVal *atomic.Value, status *atomic.Value, hub *events.Hub) {
	cfgAny := cfgVal.Load()
	if cfgAny == nil {
		return
	}
	interval := cfgAny.(config.Config).PollInterval()

	go scheduler.Every(ctx, interval, "poll", func(ctx context.Context) error {
		cfgAny := cfgVal.Load()
		if cfgAny == nil {
			return nil
		}
		cfg := cfgAny.(config.Config)

		st := loadStatus(status)
		st.Running = true
		st.LastRunAt = time.Now().UTC().Format(time.RFC3339)
		status.Store(st)

		res, err := RunOnce(ctx, db, cfg, hub)

		st = loadStatus(status)
		st.Running = false
		st.LastRunID = res.RunID
		st.LastJobs = len(res.Jobs)
		if err != nil {
			st.LastError = err.Error()
			log.Printf("[poll] run=%s err=%v", res.RunID, err)
		} else {
			st.LastError = ""
			st.LastOkAt = time.Now().UTC().Format(time.RFC3339)
			log.Printf("[poll] ok run=%s jobs=%d dupes=%d filtered=%d",
				res.RunID, len(res.Jobs), res.Stats.DuplicatesRemoved, res.Stats.FilteredOut)
		}
		status.Store(st)

		// Run failures surface through status and the archive, never the loop.
		return nil
	})

	if db != nil {
		go scheduler.Every(ctx, 24*time.Hour, "cleanup", func(ctx context.Context) error {
			n, err := store.CleanupOldRuns(db)
			if err != nil {
				return err
			}
			if n > 0 {
				log.Printf("[cleanup] pruned runs=%d", n)
			}
			return nil
		})
	}
}

func loadStatus(v *atomic.Value) types.RunStatus {
	if st, ok := v.Load().(types.RunStatus); ok {
		return st
	}
	return types.RunStatus{}
}
