package scrape

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Hemanthreddy410/job-scraping-tool/internal/config"
	"github.com/Hemanthreddy410/job-scraping-tool/internal/domain"
)

func filterCfg(mut func(*config.Config)) config.Config {
	var cfg config.Config
	cfg.Filters.RemoteOK = true
	cfg.Filters.Locations = []string{"New York", "San Francisco", "United States"}
	cfg.Filters.Roles = []config.RoleRule{
		{Tag: "AI/ML", Any: []string{"Machine Learning Engineer", "ML Engineer"}},
		{Tag: "Data Engineering", Any: []string{"Data Engineer"}},
		{Tag: "Data Science", Any: []string{"Data Scientist"}},
	}
	if mut != nil {
		mut(&cfg)
	}
	return cfg
}

func TestFilterRoleIsTitleOnly(t *testing.T) {
	f := NewFilter(filterCfg(nil))

	in := domain.Job{Title: "Senior Data Engineer", Location: "New York, NY"}
	out := domain.Job{
		Title:       "Senior Backend Engineer",
		Location:    "New York, NY",
		Description: "will work closely with the Data Engineer team",
	}

	assert.True(t, f.Matches(in))
	// the description mentions a role phrase but the title decides
	assert.False(t, f.Matches(out))
}

func TestFilterRoleMatchingIsCaseInsensitive(t *testing.T) {
	f := NewFilter(filterCfg(nil))

	assert.True(t, f.Matches(domain.Job{Title: "senior DATA engineer", Location: "New York"}))
	assert.True(t, f.Matches(domain.Job{Title: "Staff ML Engineer, Ads", Location: "San Francisco"}))
	assert.False(t, f.Matches(domain.Job{Title: "Engineering Manager", Location: "New York"}))
}

func TestFilterLocation(t *testing.T) {
	t.Run("token match against configured locations", func(t *testing.T) {
		f := NewFilter(filterCfg(nil))
		assert.True(t, f.Matches(domain.Job{Title: "Data Engineer", Location: "New York, NY, United States"}))
		assert.False(t, f.Matches(domain.Job{Title: "Data Engineer", Location: "London, United Kingdom"}))
	})

	t.Run("remote accepted when remote_ok", func(t *testing.T) {
		f := NewFilter(filterCfg(nil))
		assert.True(t, f.Matches(domain.Job{Title: "Data Engineer", Location: "Remote"}))
	})

	t.Run("remote rejected when remote_ok is off", func(t *testing.T) {
		f := NewFilter(filterCfg(func(c *config.Config) { c.Filters.RemoteOK = false }))
		assert.False(t, f.Matches(domain.Job{Title: "Data Engineer", Location: "Remote"}))
	})

	t.Run("remote passes without remote_ok when locations lists remote", func(t *testing.T) {
		f := NewFilter(filterCfg(func(c *config.Config) {
			c.Filters.RemoteOK = false
			c.Filters.Locations = []string{"Remote"}
		}))
		assert.True(t, f.Matches(domain.Job{Title: "Data Engineer", Location: "Remote"}))
	})

	t.Run("empty location list accepts any onsite location", func(t *testing.T) {
		f := NewFilter(filterCfg(func(c *config.Config) { c.Filters.Locations = nil }))
		assert.True(t, f.Matches(domain.Job{Title: "Data Engineer", Location: "Reykjavik, Iceland"}))
	})

	t.Run("unknown location fails a configured list", func(t *testing.T) {
		f := NewFilter(filterCfg(nil))
		assert.False(t, f.Matches(domain.Job{Title: "Data Engineer", Location: ""}))
	})
}

func TestFilterNoRolesRejectsEverything(t *testing.T) {
	f := NewFilter(filterCfg(func(c *config.Config) { c.Filters.Roles = nil }))
	assert.False(t, f.Matches(domain.Job{Title: "Data Engineer", Location: "New York"}))
}
