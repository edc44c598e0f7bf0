package scrape

import (
	"strings"

	"github.com/Hemanthreddy410/job-scraping-tool/internal/config"
	"github.com/Hemanthreddy410/job-scraping-tool/internal/domain"
	"github.com/Hemanthreddy410/job-scraping-tool/internal/rank"
	"github.com/Hemanthreddy410/job-scraping-tool/internal/scrape/util"
)

// Filter holds the compiled role and location predicates. It runs on
// normalized jobs, before dedup, so duplicate counting only ever sees
// relevant postings.
type Filter struct {
	roles     *rank.Categorizer
	remoteOK  bool
	locations []string // folded tokens
}

func NewFilter(cfg config.Config) *Filter {
	f := &Filter{
		roles:    rank.NewCategorizer(cfg.Filters.Roles),
		remoteOK: cfg.Filters.RemoteOK,
	}
	for _, l := range cfg.Filters.Locations {
		if l = strings.TrimSpace(l); l != "" {
			f.locations = append(f.locations, util.Fold(l))
		}
	}
	return f
}

// Roles exposes the categorizer so the aggregator counts with the same
// taxonomy the filter matched on.
func (f *Filter) Roles() *rank.Categorizer { return f.roles }

// Matches requires both predicates: a role phrase in the title and an
// acceptable location.
func (f *Filter) Matches(j domain.Job) bool {
	return f.matchesRole(j) && f.matchesLocation(j)
}

// Role is judged on the title alone. Descriptions name every team and
// tool the role touches and would match almost anything.
func (f *Filter) matchesRole(j domain.Job) bool {
	return f.roles.Match(j.Title)
}

func (f *Filter) matchesLocation(j domain.Job) bool {
	if j.Location == util.Remote {
		return f.remoteOK || f.hasToken(util.Fold(util.Remote))
	}
	if len(f.locations) == 0 {
		return true
	}
	loc := util.Fold(j.Location)
	if loc == "" {
		return false
	}
	for _, want := range f.locations {
		if strings.Contains(loc, want) {
			return true
		}
	}
	return false
}

func (f *Filter) hasToken(tok string) bool {
	for _, l := range f.locations {
		if l == tok {
			return true
		}
	}
	return false
}
