package greenhouse

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/Hemanthreddy410/job-scraping-tool/internal/domain"
	"github.com/Hemanthreddy410/job-scraping-tool/internal/scrape/types"
	"github.com/Hemanthreddy410/job-scraping-tool/internal/scrape/util"
)

const defaultBase = "https://boards-api.greenhouse.io/v1/boards"

type Scraper struct {
	hc      *http.Client
	pacer   *util.Pacer
	retry   util.Retry
	perPage int

	// Base may be pointed at a test server before first use.
	Base string
}

func New(cfg types.ClientConfig) *Scraper {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.PerPage <= 0 {
		cfg.PerPage = 100
	}
	return &Scraper{
		hc:      &http.Client{Timeout: cfg.Timeout},
		pacer:   util.NewPacer(cfg.Delay),
		retry:   util.Retry{Max: cfg.MaxRetries, Delay: time.Second, Factor: 2},
		perPage: cfg.PerPage,
		Base:    defaultBase,
	}
}

func (s *Scraper) Source() domain.Source { return domain.SourceGreenhouse }

// Job Board API schema. Content arrives entity-escaped.
type jobsResponse struct {
	Jobs []posting `json:"jobs"`
	Meta struct {
		Total int `json:"total"`
	} `json:"meta"`
}

type posting struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	UpdatedAt   string `json:"updated_at"`
	AbsoluteURL string `json:"absolute_url"`
	Content     string `json:"content"`
	Location    struct {
		Name string `json:"name"`
	} `json:"location"`
	Offices []struct {
		Name string `json:"name"`
	} `json:"offices"`
}

func (s *Scraper) ListPostings(ctx context.Context, co types.Company, emit func(types.RawPosting) error) error {
	seen := map[int64]bool{}
	fetched := 0

	for page := 1; ; page++ {
		var pr jobsResponse
		err := s.retry.Do(ctx, isPermanent, func() error {
			return s.fetchPage(ctx, co.Slug, page, &pr)
		})
		if err != nil {
			return err
		}
		if len(pr.Jobs) == 0 {
			return nil
		}

		for _, p := range pr.Jobs {
			if seen[p.ID] {
				// boards shift between pages; an id repeats rather than drops
				continue
			}
			seen[p.ID] = true

			raw := types.RawPosting{
				ID:          strconv.FormatInt(p.ID, 10),
				Title:       p.Title,
				Location:    p.Location.Name,
				URL:         p.AbsoluteURL,
				Description: p.Content,
			}
			if raw.Location == "" && len(p.Offices) > 0 {
				raw.Location = p.Offices[0].Name
			}
			if t, err := time.Parse(time.RFC3339, p.UpdatedAt); err == nil {
				raw.PostedAt = &t
			}
			if err := emit(raw); err != nil {
				return err
			}
		}

		fetched += len(pr.Jobs)
		if pr.Meta.Total > 0 && fetched >= pr.Meta.Total {
			return nil
		}
		if len(pr.Jobs) < s.perPage {
			return nil
		}
	}
}

func (s *Scraper) fetchPage(ctx context.Context, slug string, page int, out *jobsResponse) error {
	if err := s.pacer.Wait(ctx, slug); err != nil {
		return err
	}

	u := fmt.Sprintf("%s/%s/jobs?content=true&page=%d&per_page=%d",
		s.Base, url.PathEscape(slug), page, s.perPage)
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	req.Header.Set("User-Agent", "job-scraping-tool/1.0 (+local)")
	req.Header.Set("Accept", "application/json")

	res, err := s.hc.Do(req)
	if err != nil {
		return fmt.Errorf("greenhouse get: %w", err)
	}
	defer res.Body.Close()

	switch {
	case res.StatusCode == http.StatusNotFound:
		return fmt.Errorf("greenhouse board %q: %w", slug, types.ErrBoardNotFound)
	case res.StatusCode >= 400:
		return fmt.Errorf("greenhouse status %d", res.StatusCode)
	}

	*out = jobsResponse{}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("greenhouse decode: %w", err)
	}
	return nil
}

func isPermanent(err error) bool {
	return errors.Is(err, types.ErrBoardNotFound)
}
