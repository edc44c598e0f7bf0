package lever

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Hemanthreddy410/job-scraping-tool/internal/domain"
	"github.com/Hemanthreddy410/job-scraping-tool/internal/scrape/types"
	"github.com/Hemanthreddy410/job-scraping-tool/internal/scrape/util"
)

const defaultBase = "https://api.lever.co/v0/postings"

type Scraper struct {
	hc    *http.Client
	pacer *util.Pacer
	retry util.Retry
	limit int

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
		hc:    &http.Client{Timeout: cfg.Timeout},
		pacer: util.NewPacer(cfg.Delay),
		retry: util.Retry{Max: cfg.MaxRetries, Delay: time.Second, Factor: 2},
		limit: cfg.PerPage,
		Base:  defaultBase,
	}
}

func (s *Scraper) Source() domain.Source { return domain.SourceLever }

type leverPosting struct {
	ID         string `json:"id"`
	Text       string `json:"text"` // title
	HostedURL  string `json:"hostedUrl"`
	CreatedAt  int64  `json:"createdAt"` // ms epoch
	Country    string `json:"country"`
	Workplace  string `json:"workplaceType"` // remote / on-site / hybrid / unspecified
	Categories struct {
		Location string `json:"location"`
		Team     string `json:"team"`
	} `json:"categories"`
	Description      string `json:"description"` // html
	DescriptionPlain string `json:"descriptionPlain"`
}

func (s *Scraper) ListPostings(ctx context.Context, co types.Company, emit func(types.RawPosting) error) error {
	seen := map[string]bool{}

	for skip := 0; ; skip += s.limit {
		var postings []leverPosting
		err := s.retry.Do(ctx, isPermanent, func() error {
			return s.fetchPage(ctx, co.Slug, skip, &postings)
		})
		if err != nil {
			return err
		}
		if len(postings) == 0 {
			return nil
		}

		for _, p := range postings {
			if p.ID == "" || seen[p.ID] {
				continue
			}
			seen[p.ID] = true

			raw := types.RawPosting{
				ID:          p.ID,
				Title:       p.Text,
				Location:    p.Categories.Location,
				Country:     p.Country,
				Remote:      strings.EqualFold(p.Workplace, "remote"),
				URL:         p.HostedURL,
				Description: firstNonEmpty(p.DescriptionPlain, p.Description),
			}
			if p.CreatedAt > 0 {
				t := time.UnixMilli(p.CreatedAt).UTC()
				raw.PostedAt = &t
			}
			if err := emit(raw); err != nil {
				return err
			}
		}

		if len(postings) < s.limit {
			return nil
		}
	}
}

func (s *Scraper) fetchPage(ctx context.Context, slug string, skip int, out *[]leverPosting) error {
	if err := s.pacer.Wait(ctx, slug); err != nil {
		return err
	}

	u := fmt.Sprintf("%s/%s?mode=json&skip=%d&limit=%d",
		s.Base, url.PathEscape(slug), skip, s.limit)
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	req.Header.Set("User-Agent", "job-scraping-tool/1.0 (+local)")
	req.Header.Set("Accept", "application/json")

	res, err := s.hc.Do(req)
	if err != nil {
		return fmt.Errorf("lever get: %w", err)
	}
	defer res.Body.Close()

	switch {
	case res.StatusCode == http.StatusNotFound:
		return fmt.Errorf("lever board %q: %w", slug, types.ErrBoardNotFound)
	case res.StatusCode >= 400:
		return fmt.Errorf("lever status %d", res.StatusCode)
	}

	*out = nil
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("lever decode: %w", err)
	}
	return nil
}

func isPermanent(err error) bool {
	return errors.Is(err, types.ErrBoardNotFound)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
