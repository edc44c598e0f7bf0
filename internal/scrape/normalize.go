package scrape

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Hemanthreddy410/job-scraping-tool/internal/domain"
	"github.com/Hemanthreddy410/job-scraping-tool/internal/scrape/types"
	"github.com/Hemanthreddy410/job-scraping-tool/internal/scrape/util"
)

// ErrMalformedPosting marks a raw record missing a required field.
// Such records are rejected rather than guessed at; a job with an
// empty URL or id would poison dedup downstream.
var ErrMalformedPosting = errors.New("malformed posting")

// Normalize converts one provider record to canonical form. company is
// the configured display name, used when the record does not name its
// own employer. Rejections are the only errors; any syntactically
// complete record normalizes.
func Normalize(raw types.RawPosting, src domain.Source, company string) (domain.Job, error) {
	jobURL := strings.TrimSpace(raw.URL)
	id := strings.TrimSpace(raw.ID)
	co := util.CleanText(raw.Company)
	if co == "" {
		co = util.CleanText(company)
	}

	switch {
	case jobURL == "":
		return domain.Job{}, fmt.Errorf("%w: missing url", ErrMalformedPosting)
	case id == "":
		return domain.Job{}, fmt.Errorf("%w: missing external id", ErrMalformedPosting)
	case co == "":
		return domain.Job{}, fmt.Errorf("%w: missing company", ErrMalformedPosting)
	}

	loc := raw.Location
	if strings.TrimSpace(loc) == "" {
		loc = util.JoinLocation(raw.City, raw.Region, raw.Country)
	} else if raw.Country != "" {
		loc = loc + ", " + raw.Country
	}
	loc = util.NormalizeLocation(loc)
	if raw.Remote || util.LooksRemote(loc) {
		loc = util.Remote
	}

	var posted *time.Time
	if raw.PostedAt != nil {
		t := raw.PostedAt.UTC()
		posted = &t
	}

	return domain.Job{
		Company:     co,
		Title:       util.CleanText(raw.Title),
		Location:    loc,
		URL:         util.CanonicalizeURL(jobURL),
		PostedAt:    posted,
		Source:      src,
		ExternalID:  id,
		Description: util.StripHTML(raw.Description),
	}, nil
}
