package scrape

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/Hemanthreddy410/job-scraping-tool/internal/config"
	"github.com/Hemanthreddy410/job-scraping-tool/internal/domain"
	"github.com/Hemanthreddy410/job-scraping-tool/internal/events"
	"github.com/Hemanthreddy410/job-scraping-tool/internal/scrape/greenhouse"
	"github.com/Hemanthreddy410/job-scraping-tool/internal/scrape/lever"
	"github.com/Hemanthreddy410/job-scraping-tool/internal/scrape/remoteok"
	"github.com/Hemanthreddy410/job-scraping-tool/internal/scrape/types"
)

// ErrAllSourcesFailed is returned when every (provider, company) pair
// failed outright and the run produced nothing.
var ErrAllSourcesFailed = errors.New("all sources failed")

var timeNow = time.Now

type task struct {
	fetcher types.Fetcher
	company types.Company
}

// taskResult is written only by the goroutine that owns the slot.
type taskResult struct {
	jobs       []domain.Job
	errs       []domain.FetchError
	raw        int
	filtered   int
	sourceDown bool // the pair failed before yielding anything
}

// BuildFetchers assembles one adapter per enabled provider.
func BuildFetchers(cfg config.Config) []types.Fetcher {
	cc := types.ClientConfig{
		Timeout:    cfg.RequestTimeout(),
		Delay:      cfg.RequestDelay(),
		MaxRetries: cfg.Scraper.MaxRetries,
		PerPage:    cfg.Scraper.PerPage,
	}
	var fs []types.Fetcher
	if cfg.Sources.Greenhouse.Enabled {
		fs = append(fs, greenhouse.New(cc))
	}
	if cfg.Sources.Lever.Enabled {
		fs = append(fs, lever.New(cc))
	}
	if cfg.Sources.RemoteOK.Enabled {
		fs = append(fs, remoteok.New(cc))
	}
	return fs
}

// Run executes the whole pipeline over the configured sources.
func Run(ctx context.Context, cfg config.Config, hub *events.Hub) (domain.Result, error) {
	return RunWith(ctx, cfg, hub, BuildFetchers(cfg))
}

// RunWith is Run with injected fetchers.
//
// One task per (provider, company) pair runs under a bounded pool;
// pagination inside a pair stays sequential. Each task owns one slot
// of a pre-sized results slice and slots are concatenated in
// submission order, so identical upstream data yields identical
// results no matter how tasks interleave. A failing pair never stops
// its siblings.
func RunWith(ctx context.Context, cfg config.Config, hub *events.Hub, fetchers []types.Fetcher) (domain.Result, error) {
	res := domain.Result{
		RunID:     uuid.NewString(),
		StartedAt: timeNow().UTC(),
	}
	setState(&res, hub, domain.StateIdle)

	if t := cfg.RunTimeout(); t > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t)
		defer cancel()
	}

	var tasks []task
	for _, f := range fetchers {
		for _, co := range companiesFor(cfg, f.Source()) {
			tasks = append(tasks, task{fetcher: f, company: co})
		}
	}

	filter := NewFilter(cfg)
	slots := make([]taskResult, len(tasks))

	setState(&res, hub, domain.StateFetching)

	limit := cfg.Scraper.MaxConcurrent
	if limit <= 0 {
		limit = 4
	}
	var g errgroup.Group
	g.SetLimit(limit)

	for i, t := range tasks {
		i, t := i, t
		g.Go(func() error {
			slots[i] = runTask(ctx, t, filter)
			publish(hub, res.RunID, events.TypeSourceDone, sourceDonePayload{
				Source:  t.fetcher.Source(),
				Company: t.company.Name,
				Raw:     slots[i].raw,
				Kept:    len(slots[i].jobs),
				Failed:  slots[i].sourceDown,
			})
			return nil // pair failures are data, never group errors
		})
	}
	_ = g.Wait()

	setState(&res, hub, domain.StateFiltering)

	var all []domain.Job
	raw, filtered, down := 0, 0, 0
	for _, tr := range slots {
		all = append(all, tr.jobs...)
		res.Errors = append(res.Errors, tr.errs...)
		raw += tr.raw
		filtered += tr.filtered
		if tr.sourceDown {
			down++
		}
	}

	setState(&res, hub, domain.StateDeduping)
	jobs, dupes := Dedupe(all, cfg.DedupeWindow())

	setState(&res, hub, domain.StateAggregating)
	res.Jobs = jobs
	res.Stats = Summarize(jobs, raw, dupes, filtered, filter.Roles())
	res.TimedOut = errors.Is(ctx.Err(), context.DeadlineExceeded)
	res.FinishedAt = timeNow().UTC()

	if len(tasks) > 0 && down == len(tasks) {
		setState(&res, hub, domain.StateFailed)
		publish(hub, res.RunID, events.TypeRunSummary, summaryPayload(res))
		return res, ErrAllSourcesFailed
	}

	setState(&res, hub, domain.StateDone)
	publish(hub, res.RunID, events.TypeRunSummary, summaryPayload(res))
	return res, nil
}

func runTask(ctx context.Context, t task, f *Filter) taskResult {
	var tr taskResult
	src := t.fetcher.Source()

	err := t.fetcher.ListPostings(ctx, t.company, func(raw types.RawPosting) error {
		tr.raw++
		job, nerr := Normalize(raw, src, t.company.Name)
		if nerr != nil {
			tr.errs = append(tr.errs, domain.FetchError{
				Source:  src,
				Company: t.company.Name,
				Kind:    domain.KindMalformedRecord,
				Message: nerr.Error(),
			})
			return nil // skip the record, keep the page
		}
		if !f.Matches(job) {
			tr.filtered++
			return nil
		}
		tr.jobs = append(tr.jobs, job)
		return nil
	})
	if err != nil {
		kind := domain.KindSourceUnavailable
		switch {
		case errors.Is(err, types.ErrBoardNotFound):
			kind = domain.KindSourceNotFound
		case ctx.Err() != nil:
			kind = domain.KindRunTimedOut
		}
		tr.errs = append(tr.errs, domain.FetchError{
			Source:  src,
			Company: t.company.Name,
			Kind:    kind,
			Message: err.Error(),
		})
		// a timed-out pair keeps whatever pages it completed and does
		// not count toward all-sources-failed
		tr.sourceDown = tr.raw == 0 && kind != domain.KindRunTimedOut
		log.Printf("[ats:%s] company=%q slug=%q err=%v", src, t.company.Name, t.company.Slug, err)
		return tr
	}

	log.Printf("[ats:%s] company=%q raw=%d kept=%d filtered=%d", src, t.company.Name, tr.raw, len(tr.jobs), tr.filtered)
	return tr
}

func companiesFor(cfg config.Config, src domain.Source) []types.Company {
	var in []config.Company
	switch src {
	case domain.SourceGreenhouse:
		in = cfg.Sources.Greenhouse.Companies
	case domain.SourceLever:
		in = cfg.Sources.Lever.Companies
	case domain.SourceRemoteOK:
		in = cfg.Sources.RemoteOK.Companies
	}
	out := make([]types.Company, 0, len(in))
	for _, c := range in {
		out = append(out, types.Company{Slug: c.Slug, Name: c.Name})
	}
	return out
}

type sourceDonePayload struct {
	Source  domain.Source `json:"source"`
	Company string        `json:"company"`
	Raw     int           `json:"raw"`
	Kept    int           `json:"kept"`
	Failed  bool          `json:"failed"`
}

type runSummaryPayload struct {
	State     domain.RunState `json:"state"`
	TimedOut  bool            `json:"timed_out"`
	TotalRaw  int             `json:"total_raw"`
	Unique    int             `json:"unique"`
	Dupes     int             `json:"duplicates_removed"`
	Filtered  int             `json:"filtered_out"`
	ErrorsLen int             `json:"errors"`
}

func summaryPayload(res domain.Result) runSummaryPayload {
	return runSummaryPayload{
		State:     res.State,
		TimedOut:  res.TimedOut,
		TotalRaw:  res.Stats.TotalRaw,
		Unique:    res.Stats.TotalUnique,
		Dupes:     res.Stats.DuplicatesRemoved,
		Filtered:  res.Stats.FilteredOut,
		ErrorsLen: len(res.Errors),
	}
}

func setState(res *domain.Result, hub *events.Hub, s domain.RunState) {
	res.State = s
	publish(hub, res.RunID, events.TypeRunState, map[string]string{"state": string(s)})
}

func publish(hub *events.Hub, runID, typ string, data any) {
	if hub == nil {
		return
	}
	hub.Publish(events.MakeEvent(runID, typ, 1, data))
}
