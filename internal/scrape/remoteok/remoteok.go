package remoteok

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/Hemanthreddy410/job-scraping-tool/internal/domain"
	"github.com/Hemanthreddy410/job-scraping-tool/internal/scrape/types"
	"github.com/Hemanthreddy410/job-scraping-tool/internal/scrape/util"
)

const defaultBase = "https://remoteok.com/api"

// Scraper reads the RemoteOK feed. The feed is global rather than
// company-scoped, so the configured "company" slug is a feed tag
// (for example data-science) and each row names its own employer.
type Scraper struct {
	hc    *http.Client
	pacer *util.Pacer
	retry util.Retry

	// Base may be pointed at a test server before first use.
	Base string
}

func New(cfg types.ClientConfig) *Scraper {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Scraper{
		hc:    &http.Client{Timeout: cfg.Timeout},
		pacer: util.NewPacer(cfg.Delay),
		retry: util.Retry{Max: cfg.MaxRetries, Delay: time.Second, Factor: 2},
		Base:  defaultBase,
	}
}

func (s *Scraper) Source() domain.Source { return domain.SourceRemoteOK }

type feedRow struct {
	ID          string   `json:"id"`
	Slug        string   `json:"slug"`
	Company     string   `json:"company"`
	Position    string   `json:"position"`
	Location    string   `json:"location"`
	URL         string   `json:"url"`
	Date        string   `json:"date"`
	Epoch       int64    `json:"epoch"`
	Tags        []string `json:"tags"`
	Description string   `json:"description"` // html
	Legal       string   `json:"legal"`       // set only on the metadata row
}

// ListPostings emits the whole feed for one tag. The feed has no
// pagination; one response is the complete answer.
func (s *Scraper) ListPostings(ctx context.Context, co types.Company, emit func(types.RawPosting) error) error {
	var rows []feedRow
	err := s.retry.Do(ctx, nil, func() error {
		return s.fetchFeed(ctx, co.Slug, &rows)
	})
	if err != nil {
		return err
	}

	for _, row := range rows {
		if row.ID == "" || row.Legal != "" {
			// the feed's first element is an API notice, not a job
			continue
		}

		jobURL := row.URL
		if jobURL == "" && row.Slug != "" {
			jobURL = "https://remoteok.com/remote-jobs/" + row.Slug
		}

		raw := types.RawPosting{
			ID:          row.ID,
			Title:       row.Position,
			Company:     row.Company,
			Location:    row.Location,
			Remote:      true,
			URL:         jobURL,
			Description: row.Description,
		}
		if t, perr := time.Parse(time.RFC3339, row.Date); perr == nil {
			tt := t.UTC()
			raw.PostedAt = &tt
		} else if row.Epoch > 0 {
			tt := time.Unix(row.Epoch, 0).UTC()
			raw.PostedAt = &tt
		}
		if err := emit(raw); err != nil {
			return err
		}
	}
	return nil
}

func (s *Scraper) fetchFeed(ctx context.Context, tag string, out *[]feedRow) error {
	if err := s.pacer.Wait(ctx, tag); err != nil {
		return err
	}

	u := s.Base
	if tag != "" {
		u = fmt.Sprintf("%s?tag=%s", s.Base, url.QueryEscape(tag))
	}
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	req.Header.Set("User-Agent", "job-scraping-tool/1.0 (+local)")
	req.Header.Set("Accept", "application/json")

	res, err := s.hc.Do(req)
	if err != nil {
		return fmt.Errorf("remoteok get: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode >= 400 {
		return fmt.Errorf("remoteok status %d", res.StatusCode)
	}

	*out = nil
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("remoteok decode: %w", err)
	}
	return nil
}
